package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/andrewpaige1/apex-defense-api/advisor"
	"github.com/andrewpaige1/apex-defense-api/auth"
	"github.com/andrewpaige1/apex-defense-api/config"
	"github.com/andrewpaige1/apex-defense-api/forces"
	"github.com/andrewpaige1/apex-defense-api/handlers"
	"github.com/andrewpaige1/apex-defense-api/middleware"
	"github.com/andrewpaige1/apex-defense-api/models"
	"github.com/andrewpaige1/apex-defense-api/secret"
	"github.com/andrewpaige1/apex-defense-api/seed"
	"github.com/andrewpaige1/apex-defense-api/store"
)

const shutdownTimeout = 15 * time.Second

func init() {
	// Load .env file if not in production environment
	if os.Getenv("RAILWAY_ENVIRONMENT_NAME") == "" {
		err := godotenv.Load()
		if err != nil {
			log.Printf("Warning: .env file not found, environment variables might not be loaded: %v", err)
		}
	}
}

var rootCmd = &cobra.Command{
	Use:           "apex",
	Short:         "Apex Global Defense API",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE:  runMigrate,
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the reference countries, branches and equipment",
	RunE:  runSeed,
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an access token for local development",
	RunE:  runToken,
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage provisioned users",
}

var userActivateCmd = &cobra.Command{
	Use:   "activate <subject>",
	Short: "Allow a token subject to use the API again",
	Args:  cobra.ExactArgs(1),
	RunE:  runSetActive(true),
}

var userDeactivateCmd = &cobra.Command{
	Use:   "deactivate <subject>",
	Short: "Refuse every authenticated request from a token subject",
	Args:  cobra.ExactArgs(1),
	RunE:  runSetActive(false),
}

var (
	tokenSubject string
	tokenEmail   string
	tokenName    string
	tokenRole    string
)

func init() {
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "", "Token subject (required)")
	tokenCmd.Flags().StringVar(&tokenEmail, "email", "", "Email claim")
	tokenCmd.Flags().StringVar(&tokenName, "name", "", "Name claim")
	tokenCmd.Flags().StringVar(&tokenRole, "role", string(models.RoleAnalyst), "Role claim")
	tokenCmd.MarkFlagRequired("subject")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(tokenCmd)

	userCmd.AddCommand(userActivateCmd)
	userCmd.AddCommand(userDeactivateCmd)
	rootCmd.AddCommand(userCmd)
}

func main() {
	if len(os.Args) == 1 {
		rootCmd.SetArgs([]string{"serve"})
	}
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// bootstrap loads settings, builds the logger and opens a migrated database.
func bootstrap() (config.Settings, *zap.Logger, *gorm.DB, error) {
	settings, err := config.Load()
	if err != nil {
		return config.Settings{}, nil, nil, err
	}
	logger, err := config.NewLogger(settings)
	if err != nil {
		return config.Settings{}, nil, nil, err
	}
	if settings.GeneratedSecret {
		logger.Warn("bootstrap: SECRET_KEY is not set, using a key generated for this process")
	}
	db, err := config.Connect(settings.Database, logger)
	if err != nil {
		return config.Settings{}, nil, nil, err
	}
	if err := config.Migrate(db); err != nil {
		return config.Settings{}, nil, nil, err
	}
	return settings, logger, db, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	settings, logger, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync()

	sealer, err := secret.FromSecret(settings.SecretKey)
	if err != nil {
		return err
	}

	providerHTTP := &http.Client{Timeout: settings.AI.RequestTimeout}
	clients := map[models.Provider]advisor.Client{
		models.ProviderOpenAI:    advisor.NewOpenAIClient(settings.AI.OpenAIURL, providerHTTP),
		models.ProviderAnthropic: advisor.NewAnthropicClient(settings.AI.AnthropicURL, providerHTTP),
		models.ProviderGemini:    advisor.NewGeminiClient(settings.AI.GeminiBaseURL, providerHTTP),
		models.ProviderLocal:     advisor.NewLocalClient(settings.AI.LocalModelURL, providerHTTP),
	}

	aiConfigs := store.NewAIConfigStore(db, sealer, advisor.IsFeature)
	h := &handlers.Handler{
		Countries: store.NewCountryStore(db),
		Projects:  store.NewProjectStore(db),
		Scenarios: store.NewScenarioStore(db),
		AIConfigs: aiConfigs,
		Forces:    forces.NewAggregator(db, logger),
		Advisor:   advisor.NewGateway(aiConfigs, sealer, clients, settings.AI.RequestTimeout, logger),
		Settings:  settings,
		Log:       logger,
	}

	router, err := handlers.NewRouter(h, store.NewUserStore(db), middleware.TokenConfig{
		Secret:   []byte(settings.SecretKey),
		Issuer:   settings.TokenIssuer,
		Audience: settings.TokenAudience,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:              net.JoinHostPort("0.0.0.0", settings.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("runServe: listening",
			zap.String("addr", server.Addr),
			zap.String("environment", settings.Environment),
			zap.String("api_prefix", settings.APIPrefix))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("runServe: shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	})
	return g.Wait()
}

func runMigrate(cmd *cobra.Command, args []string) error {
	_, logger, _, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync()
	logger.Info("runMigrate: schema is up to date")
	return nil
}

func runSeed(cmd *cobra.Command, args []string) error {
	_, logger, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ds, err := seed.Default()
	if err != nil {
		return err
	}
	report, err := seed.Load(cmd.Context(), db, ds, logger)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "seeded %d countries, %d branches, %d equipment entries (%d already present)\n",
		report.Countries, report.Branches, report.Equipment, report.Skipped)
	return nil
}

func runSetActive(active bool) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		_, logger, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer logger.Sync()

		subject := args[0]
		if err := store.NewUserStore(db).SetActive(cmd.Context(), subject, active); err != nil {
			return fmt.Errorf("user %s: %w", subject, err)
		}
		logger.Info("runSetActive: user updated", zap.String("subject", subject), zap.Bool("active", active))
		return nil
	}
}

func runToken(cmd *cobra.Command, args []string) error {
	settings, err := config.Load()
	if err != nil {
		return err
	}
	if settings.GeneratedSecret {
		return errors.New("SECRET_KEY must be set to issue tokens the server will accept")
	}
	if !models.UserRole(tokenRole).Valid() {
		return fmt.Errorf("unknown role %q", tokenRole)
	}

	issuer := auth.Issuer{
		Secret:   []byte(settings.SecretKey),
		Issuer:   settings.TokenIssuer,
		Audience: settings.TokenAudience,
		TTL:      settings.AccessTokenTTL,
	}
	token, err := issuer.CreateToken(auth.Subject{
		ID:    tokenSubject,
		Email: tokenEmail,
		Name:  tokenName,
		Role:  tokenRole,
	}, time.Now())
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
