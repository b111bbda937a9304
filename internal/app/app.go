package app

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/anchorapp/anchor/internal/http"
	"github.com/anchorapp/anchor/internal/service"
	"github.com/anchorapp/anchor/internal/store"
	"github.com/anchorapp/anchor/internal/store/drivers/sqlite"
	"github.com/anchorapp/anchor/pkg/datex"
	"github.com/anchorapp/anchor/pkg/jwtx"
	"github.com/anchorapp/anchor/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the anchor service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db       store.Store
	verifier jwtx.Verifier

	inviteService       *service.InviteService
	relationshipService *service.RelationshipService
	streakService       *service.StreakService
	profileService      *service.ProfileService
	outboxService       *service.OutboxService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "anchor",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initVerifier(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.outboxService.Start()

	app.logger.Info("anchor service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down anchor service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.outboxService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("anchor service stopped")
	return nil
}

func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initVerifier loads the token verification key. Tokens are minted by the
// identity provider; this service only verifies them. Without a configured
// key an ephemeral dev keypair is generated and a short-lived token logged
// so the API is callable locally.
func (app *Application) initVerifier() error {
	if app.cfg.JWTPublicKeyFile != "" {
		pemKey, err := os.ReadFile(app.cfg.JWTPublicKeyFile)
		if err != nil {
			return fmt.Errorf("failed to read JWT public key: %w", err)
		}
		verifier, err := jwtx.NewVerifierEdDSA(pemKey, app.cfg.Issuer)
		if err != nil {
			return fmt.Errorf("failed to parse JWT public key: %w", err)
		}
		app.verifier = verifier
		return nil
	}

	if app.cfg.Env != "dev" {
		return fmt.Errorf("ANCHOR_JWT_PUBLIC_KEY_FILE is required outside dev")
	}

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return fmt.Errorf("failed to generate dev keypair: %w", err)
	}
	app.verifier = jwtx.NewVerifierFromKey(pub, app.cfg.Issuer)

	signer := jwtx.NewSignerFromKey(priv)
	token, err := signer.Sign(jwtx.NewUserClaims(
		"dev-user", "Dev User", app.cfg.Issuer, 12*time.Hour, time.Now(),
	))
	if err != nil {
		return fmt.Errorf("failed to sign dev token: %w", err)
	}

	app.logger.Warn("no JWT public key configured, using ephemeral dev keypair")
	app.logger.Info("dev bearer token", "token", token)
	return nil
}

func (app *Application) initServices() {
	clock := datex.SystemClock()

	app.inviteService = &service.InviteService{Store: app.db, Clock: clock}
	app.relationshipService = &service.RelationshipService{Store: app.db, Clock: clock}
	app.streakService = &service.StreakService{Store: app.db, Clock: clock}
	app.profileService = &service.ProfileService{Store: app.db, Clock: clock}

	app.outboxService = service.NewOutboxService(
		app.db,
		&service.LogNotifier{Logger: app.logger},
		app.logger,
		app.cfg.OutboxInterval,
	)
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.verifier,
		BuildVersion,
		app.db,
		app.logger,
	)

	router.InviteService = app.inviteService
	router.RelationshipService = app.relationshipService
	router.StreakService = app.streakService
	router.ProfileService = app.profileService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
