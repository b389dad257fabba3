package main

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"growth-graph/backend/internal/auth"
	"growth-graph/backend/internal/bootstrap"
	"growth-graph/backend/internal/domain"
	"growth-graph/backend/internal/service"
	"growth-graph/backend/pkg/config"
	apperrors "growth-graph/backend/pkg/errors"
	"growth-graph/backend/pkg/logger"
)

//go:embed demo.yaml
var demoGraph []byte

// seedGraph is the YAML shape of a demo graph. Connections refer to
// achievements by key.
type seedGraph struct {
	Achievements []struct {
		Key   string                   `yaml:"key"`
		Input service.AchievementInput `yaml:",inline"`
	} `yaml:"achievements"`
	Connections []struct {
		From     string              `yaml:"from"`
		To       string              `yaml:"to"`
		Relation domain.RelationKind `yaml:"relation"`
		Story    string              `yaml:"story"`
	} `yaml:"connections"`
}

type seedOptions struct {
	email    string
	name     string
	password string
	file     string
	reset    bool
}

func main() {
	opts := seedOptions{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed a demo user with a linked achievement graph",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts)
		},
		SilenceUsage: true,
	}
	cmd.Flags().StringVar(&opts.email, "email", "demo@example.com", "Email of the demo user")
	cmd.Flags().StringVar(&opts.name, "name", "Demo User", "Display name of the demo user")
	cmd.Flags().StringVar(&opts.password, "password", "demo1234", "Password of the demo user")
	cmd.Flags().StringVar(&opts.file, "file", "", "YAML graph to seed instead of the built-in demo")
	cmd.Flags().BoolVar(&opts.reset, "reset", false, "Delete the demo user's achievements before seeding")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, opts seedOptions) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Env, cfg.LogLevel); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting database seeding...", zap.String("store", cfg.StoreDriver))

	raw := demoGraph
	if opts.file != "" {
		if raw, err = os.ReadFile(opts.file); err != nil {
			return fmt.Errorf("failed to read %s: %w", opts.file, err)
		}
	}
	graph, err := parseGraph(raw)
	if err != nil {
		return err
	}

	st, err := bootstrap.OpenStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close(context.Background())

	svc := service.New(st, auth.NewTokens([]byte(cfg.JWTSecret), cfg.TokenTTL), auth.NewPasswords(cfg.BcryptCost))

	session, err := svc.Accounts.Login(ctx, opts.email, opts.password)
	if apperrors.IsErrorType(err, apperrors.ErrorTypeUnauthorized) {
		session, err = svc.Accounts.Register(ctx, service.RegisterInput{Name: opts.name, Email: opts.email, Password: opts.password})
	}
	if err != nil {
		return fmt.Errorf("failed to sign in demo user: %w", err)
	}
	ownerID := session.User.ID
	log.Info("Demo user ready", zap.String("user_id", ownerID), zap.String("username", session.User.Username))

	existing, err := svc.Achievements.List(ctx, ownerID)
	if err != nil {
		return err
	}
	if len(existing) > 0 && !opts.reset {
		log.Info("Demo user already has achievements, skipping (use --reset to recreate)", zap.Int("count", len(existing)))
		return printNarrative(ctx, svc, ownerID)
	}
	for _, a := range existing {
		if _, err := svc.Achievements.Delete(ctx, ownerID, a.ID); err != nil {
			return fmt.Errorf("failed to delete achievement %s: %w", a.ID, err)
		}
	}

	if err := seed(ctx, svc, ownerID, graph); err != nil {
		return err
	}

	log.Info("Seeding complete",
		zap.Int("achievements", len(graph.Achievements)),
		zap.Int("connections", len(graph.Connections)),
	)
	return printNarrative(ctx, svc, ownerID)
}

func parseGraph(raw []byte) (*seedGraph, error) {
	var graph seedGraph
	if err := yaml.Unmarshal(raw, &graph); err != nil {
		return nil, fmt.Errorf("failed to parse seed graph: %w", err)
	}

	keys := make(map[string]bool, len(graph.Achievements))
	for _, a := range graph.Achievements {
		if a.Key == "" || keys[a.Key] {
			return nil, fmt.Errorf("achievement %q: key must be unique and non-empty", a.Input.Title)
		}
		keys[a.Key] = true
	}
	for _, c := range graph.Connections {
		if !keys[c.From] || !keys[c.To] {
			return nil, fmt.Errorf("connection %s -> %s references an unknown achievement", c.From, c.To)
		}
	}
	return &graph, nil
}

func seed(ctx context.Context, svc *service.Services, ownerID string, graph *seedGraph) error {
	ids := make(map[string]string, len(graph.Achievements))
	for _, a := range graph.Achievements {
		created, err := svc.Achievements.Create(ctx, ownerID, a.Input)
		if err != nil {
			return fmt.Errorf("failed to create achievement %q: %w", a.Input.Title, err)
		}
		ids[a.Key] = created.ID
	}

	for _, c := range graph.Connections {
		_, err := svc.Connections.Create(ctx, ownerID, service.ConnectionInput{
			FromID: ids[c.From], ToID: ids[c.To], Relation: c.Relation, StoryText: c.Story,
		})
		if err != nil {
			return fmt.Errorf("failed to connect %s -> %s: %w", c.From, c.To, err)
		}
	}
	return nil
}

func printNarrative(ctx context.Context, svc *service.Services, ownerID string) error {
	n, err := svc.Narratives.ForOwner(ctx, ownerID)
	if err != nil {
		return err
	}
	fmt.Println(n.Story)
	return nil
}
