package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mberkey/authflow/internal/config"
	"github.com/mberkey/authflow/internal/handler"
	"github.com/mberkey/authflow/internal/repository"
	"github.com/mberkey/authflow/internal/service"
	"github.com/mberkey/authflow/internal/utils"
	"github.com/mberkey/authflow/pkg/observability"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	infra  Infrastructure
	config *config.Config
	router *gin.Engine
	server *http.Server
}

func NewApp(infra Infrastructure, cfg *config.Config) *App {
	repos := repository.NewRepositories(infra.Postgres(), infra.Redis())

	jwtManager := utils.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry.Duration,
	)

	rateLimiter := service.NewRateLimiter(infra.Redis())
	healthChecker := NewHealthChecker(infra)
	googleVerifier := service.NewGoogleVerifier(cfg.Google.TokenInfoURL)

	credentialStore := service.NewCredentialStore(
		repos.Account,
		repos.ResetToken,
		googleVerifier,
		jwtManager,
		cfg.Security.BCryptCost,
		cfg.Security.MinPasswordLength,
		cfg.Security.ResetTokenExpiry.Duration,
		infra.Logger(),
	)

	onboardingManager := service.NewOnboardingManager(repos.Profile, infra.Logger())
	workflow := service.NewWorkflow(credentialStore, repos.Profile, infra.Logger(), nil)

	authHandler := handler.NewAuthHandler(workflow, credentialStore, onboardingManager)

	router := gin.Default()
	router.Use(otelgin.Middleware("authflow"))
	router.Use(handler.LoggerMiddleware(infra.Logger()))
	router.Use(handler.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.CORS.AllowedMethods, cfg.CORS.AllowedHeaders))

	setupRoutes(router, cfg, authHandler, credentialStore, rateLimiter, healthChecker, infra.MetricsHandler())

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
	}

	return &App{
		infra:  infra,
		config: cfg,
		router: router,
		server: srv,
	}
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func setupRoutes(
	router *gin.Engine,
	cfg *config.Config,
	authHandler *handler.AuthHandler,
	credentialStore service.CredentialStore,
	rateLimiter *service.RateLimiter,
	healthChecker *HealthChecker,
	metricsHandler http.Handler,
) {
	router.GET("/metrics", observability.PrometheusHandler(metricsHandler))
	router.GET("/health", healthChecker.Handler)

	submitLimit := handler.RateLimitMiddleware(rateLimiter, cfg.Security.RateLimitRequests, cfg.Security.RateLimitWindow.Duration, handler.IPBasedKey)

	api := router.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", submitLimit, authHandler.Login)
			auth.POST("/register", submitLimit, authHandler.Register)
			auth.POST("/google", submitLimit, authHandler.Google)
			auth.POST("/password-reset", submitLimit, authHandler.PasswordReset)
			auth.POST("/password-reset/confirm", submitLimit, authHandler.ConfirmPasswordReset)
			auth.POST("/logout", handler.AuthMiddleware(credentialStore), authHandler.Logout)
		}

		api.GET("/me", handler.AuthMiddleware(credentialStore), authHandler.GetMe)
		api.POST("/onboarding/dismiss", handler.AuthMiddleware(credentialStore), authHandler.DismissOnboarding)
	}
}

func (a *App) Run(ctx context.Context) error {
	errChan := make(chan error, 1)

	go func() {
		a.infra.Logger().Info("Application starting",
			zap.String("host", a.config.Server.Host),
			zap.String("port", a.config.Server.Port),
		)

		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.infra.Logger().Error("Server error", zap.Error(err))
			errChan <- err
		}
	}()

	var serverErr error
	select {
	case err := <-errChan:
		a.infra.Logger().Error("Application failed to start", zap.Error(err))
		serverErr = err
	case <-ctx.Done():
		a.infra.Logger().Info("Application stopped by context")
	}

	if err := a.Shutdown(); err != nil {
		a.infra.Logger().Error("Shutdown error", zap.Error(err))
		if serverErr != nil {
			return errors.Join(serverErr, err)
		}
		return err
	}

	return serverErr
}

func (a *App) Shutdown() error {
	a.infra.Logger().Info("Application shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	errs := make(chan error, 2)

	go func() {
		errs <- a.server.Shutdown(ctx)
	}()

	go func() {
		errs <- a.infra.Shutdown(ctx)
	}()

	err := errors.Join(<-errs, <-errs)
	if err != nil {
		a.infra.Logger().Error("Shutdown failed", zap.Error(err))
		return err
	}

	a.infra.Logger().Info("Application exited successfully")
	return nil
}
