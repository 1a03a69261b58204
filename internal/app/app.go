package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"identity-api/internal/avatar"
	"identity-api/internal/config"
	"identity-api/internal/database"
	"identity-api/internal/handler"
	"identity-api/internal/mailer"
	"identity-api/internal/middleware"
	"identity-api/internal/repository"
	"identity-api/internal/router"
	"identity-api/internal/service"
	"identity-api/internal/syncclient"
	"identity-api/internal/token"
)

type App struct {
	server       *http.Server
	db           *database.DB
	cleanupFuncs []func()
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	slog.Info("connecting to PostgreSQL")
	db, err := database.New(context.Background(), cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.EnsureSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure database schema: %w", err)
	}

	pool := db.Pool
	userRepo := repository.NewUserRepository(pool)
	resetRepo := repository.NewResetTokenRepository(pool)
	slog.Info("database ready")

	tokenEngine := token.NewEngine(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTAccessTTL, cfg.JWTConfirmTTL)
	authMiddleware := middleware.NewAuthMiddleware(tokenEngine)

	avatarService, err := avatar.NewService(cfg.AvatarRoot)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize avatar storage: %w", err)
	}

	mailSender := mailer.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom, cfg.TemplatesDir)

	// The sync client forwards the caller's bearer token, so the profile
	// service sees the same principal that made the request here.
	syncClient := syncclient.New(cfg.SyncBaseURL, cfg.SyncTimeout, middleware.BearerFromContext)

	authService := service.NewAuthService(userRepo, tokenEngine, cfg.RefreshTTLLogin, cfg.RefreshTTLRefresh)
	accountService := service.NewAccountService(
		userRepo,
		resetRepo,
		tokenEngine,
		mailSender,
		syncClient,
		avatarService,
		cfg.LegacyClientPassword,
		cfg.ConfirmEmailURL,
		cfg.ResetPasswordURL,
		cfg.ResetTokenTTL,
	)
	settingsService := service.NewSettingsService(userRepo, syncClient, avatarService)

	appRouter := router.New(cfg, authMiddleware, router.Handlers{
		Auth:     handler.NewAuthHandler(authService),
		Account:  handler.NewAccountHandler(accountService),
		User:     handler.NewUserHandler(authService),
		Settings: handler.NewSettingsHandler(settingsService),
		Avatar:   handler.NewAvatarHandler(settingsService),
	})

	janitorCtx, janitorCancel := context.WithCancel(context.Background())
	go runResetTokenJanitor(janitorCtx, resetRepo, cfg.ResetTokenTTL)

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{
		server: server,
		db:     db,
		cleanupFuncs: []func(){
			func() {
				janitorCancel()
			},
			func() {
				db.Close()
			},
		},
	}, nil
}

// runResetTokenJanitor sweeps expired password-reset grants. Expired grants
// are already refused at use time; this just keeps the table from growing.
func runResetTokenJanitor(ctx context.Context, resets *repository.ResetTokenRepository, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := resets.DeleteExpired(ctx)
			if err != nil {
				slog.Error("reset token sweep failed", "error", err)
				continue
			}
			if removed > 0 {
				slog.Info("expired reset tokens removed", "count", removed)
			}
		}
	}
}

func (a *App) Run() error {
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, cleanup := range a.cleanupFuncs {
		cleanup()
	}

	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
