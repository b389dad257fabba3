package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"growth-graph/backend/internal/service"
)

// ============================================================================
// Auth
// ============================================================================

func (h *handler) register(c *gin.Context) {
	var req service.RegisterInput
	if !h.bind(c, &req) {
		return
	}

	session, err := h.svc.Accounts.Register(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

func (h *handler) login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if !h.bind(c, &req) {
		return
	}

	session, err := h.svc.Accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *handler) me(c *gin.Context) {
	account, err := h.svc.Accounts.Me(c.Request.Context(), currentUser(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": account})
}

func (h *handler) updateMe(c *gin.Context) {
	var req service.ProfileUpdate
	if !h.bind(c, &req) {
		return
	}

	account, err := h.svc.Accounts.UpdateProfile(c.Request.Context(), currentUser(c), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": account})
}

func (h *handler) presignPhoto(c *gin.Context) {
	var req struct {
		ContentType string `json:"content_type" binding:"required"`
	}
	if !h.bind(c, &req) {
		return
	}

	upload, err := h.photos.PresignUpload(c.Request.Context(), currentUser(c), req.ContentType)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, upload)
}

// ============================================================================
// Achievements
// ============================================================================

func (h *handler) createAchievement(c *gin.Context) {
	var req service.AchievementInput
	if !h.bind(c, &req) {
		return
	}

	a, err := h.svc.Achievements.Create(c.Request.Context(), currentUser(c), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (h *handler) listAchievements(c *gin.Context) {
	list, err := h.svc.Achievements.List(c.Request.Context(), currentUser(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *handler) updateAchievement(c *gin.Context) {
	var req service.AchievementPatch
	if !h.bind(c, &req) {
		return
	}

	a, err := h.svc.Achievements.Update(c.Request.Context(), currentUser(c), c.Param("id"), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *handler) deleteAchievement(c *gin.Context) {
	removed, err := h.svc.Achievements.Delete(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "achievement deleted", "connections_removed": removed})
}

// ============================================================================
// Connections
// ============================================================================

func (h *handler) createConnection(c *gin.Context) {
	var req service.ConnectionInput
	if !h.bind(c, &req) {
		return
	}

	conn, err := h.svc.Connections.Create(c.Request.Context(), currentUser(c), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, conn)
}

func (h *handler) listConnections(c *gin.Context) {
	list, err := h.svc.Connections.List(c.Request.Context(), currentUser(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *handler) deleteConnection(c *gin.Context) {
	if err := h.svc.Connections.Delete(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "connection deleted"})
}

// ============================================================================
// Narrative
// ============================================================================

func (h *handler) generateNarrative(c *gin.Context) {
	n, err := h.svc.Narratives.ForOwner(c.Request.Context(), currentUser(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

func (h *handler) saveCustomNarrative(c *gin.Context) {
	var req struct {
		Story string `json:"story"`
	}
	if !h.bind(c, &req) {
		return
	}

	story, err := h.svc.Narratives.SaveCustom(c.Request.Context(), currentUser(c), req.Story)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"story": story})
}

func (h *handler) clearCustomNarrative(c *gin.Context) {
	if err := h.svc.Narratives.ClearCustom(c.Request.Context(), currentUser(c)); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"story": ""})
}

// ============================================================================
// Public
// ============================================================================

func (h *handler) publicAchievements(c *gin.Context) {
	list, err := h.svc.Profiles.FeedAchievements(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *handler) publicConnections(c *gin.Context) {
	list, err := h.svc.Profiles.FeedConnections(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *handler) publicNarrative(c *gin.Context) {
	n, err := h.svc.Narratives.PublicFeed(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

func (h *handler) profile(c *gin.Context) {
	p, err := h.svc.Profiles.Profile(c.Request.Context(), c.Param("username"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": p})
}

func (h *handler) profileAchievements(c *gin.Context) {
	list, err := h.svc.Profiles.Achievements(c.Request.Context(), c.Param("username"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *handler) profileConnections(c *gin.Context) {
	list, err := h.svc.Profiles.Connections(c.Request.Context(), c.Param("username"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *handler) profileNarrative(c *gin.Context) {
	n, err := h.svc.Profiles.Narrative(c.Request.Context(), c.Param("username"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}
