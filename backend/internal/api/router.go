// Package api exposes the services over HTTP with gin.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"growth-graph/backend/internal/auth"
	"growth-graph/backend/internal/media"
	"growth-graph/backend/internal/service"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// PhotoPresigner hands out direct upload URLs for profile photos
type PhotoPresigner interface {
	PresignUpload(ctx context.Context, userID, contentType string) (*media.Upload, error)
}

// Options configures the router. A nil Photos leaves the upload route unmounted.
type Options struct {
	ClientURL      string
	RequestTimeout time.Duration
	Logger         *zap.Logger
	Photos         PhotoPresigner
}

type handler struct {
	svc    *service.Services
	photos PhotoPresigner
	log    *zap.Logger
}

// NewRouter builds the gin engine with every route mounted under /api.
func NewRouter(svc *service.Services, tokens *auth.Tokens, opts Options) *gin.Engine {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	h := &handler{svc: svc, photos: opts.Photos, log: log}

	router := gin.New()
	router.Use(ginLogger(log))
	router.Use(gin.Recovery())
	router.Use(cors(opts.ClientURL))
	router.Use(limitBody(maxBodyBytes))
	if opts.RequestTimeout > 0 {
		router.Use(requestTimeout(opts.RequestTimeout))
	}

	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		authGroup := api.Group("/auth")
		authGroup.POST("/register", h.register)
		authGroup.POST("/login", h.login)
		authGroup.GET("/me", requireAuth(tokens), h.me)
		authGroup.PUT("/me", requireAuth(tokens), h.updateMe)
		if opts.Photos != nil {
			authGroup.POST("/me/photo", requireAuth(tokens), h.presignPhoto)
		}

		achievements := api.Group("/achievements", requireAuth(tokens))
		achievements.POST("", h.createAchievement)
		achievements.GET("", h.listAchievements)
		achievements.PUT("/:id", h.updateAchievement)
		achievements.DELETE("/:id", h.deleteAchievement)

		connections := api.Group("/connections", requireAuth(tokens))
		connections.POST("", h.createConnection)
		connections.GET("", h.listConnections)
		connections.DELETE("/:id", h.deleteConnection)

		narrative := api.Group("/narrative", requireAuth(tokens))
		narrative.POST("/generate", h.generateNarrative)
		narrative.PUT("/custom", h.saveCustomNarrative)
		narrative.DELETE("/custom", h.clearCustomNarrative)

		public := api.Group("/public")
		public.GET("/achievements", h.publicAchievements)
		public.GET("/connections", h.publicConnections)
		public.POST("/narrative/generate", h.publicNarrative)
		public.GET("/profile/:username", h.profile)
		public.GET("/profile/:username/achievements", h.profileAchievements)
		public.GET("/profile/:username/connections", h.profileConnections)
		public.POST("/profile/:username/narrative/generate", h.profileNarrative)
	}

	return router
}
