package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/elakbay/elakbay/internal/config"
	"github.com/elakbay/elakbay/internal/handler"
	"github.com/elakbay/elakbay/pkg/observability"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	infra  Infrastructure
	config *config.Config
	router *gin.Engine
	server *http.Server
}

func NewApp(infra Infrastructure, cfg *config.Config) *App {
	authHandler := handler.NewAuthHandler(infra.Coordinator())
	catalogHandler := handler.NewCatalogHandler(infra.Catalog(), infra.Coordinator())
	weatherHandler := handler.NewWeatherHandler(infra.Weather())
	analyticsHandler := handler.NewAnalyticsHandler(infra.Reporter(), infra.Coordinator())
	shellHandler := handler.NewShellHandler(infra.Shell(), infra.Coordinator())
	rateLimiter := handler.NewRateLimiter(cfg.Security.RateLimitRequests, cfg.Security.RateLimitWindow.Duration)
	healthChecker := NewHealthChecker(infra)

	router := gin.Default()
	router.Use(otelgin.Middleware("elakbay"))
	router.Use(handler.LoggerMiddleware(infra.Logger()))
	router.Use(handler.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.CORS.AllowedMethods, cfg.CORS.AllowedHeaders))

	setupRoutes(router, cfg, authHandler, catalogHandler, weatherHandler, analyticsHandler, shellHandler, rateLimiter, healthChecker, infra.MetricsHandler())

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
	catalogHandler *handler.CatalogHandler,
	weatherHandler *handler.WeatherHandler,
	analyticsHandler *handler.AnalyticsHandler,
	shellHandler *handler.ShellHandler,
	rateLimiter *handler.RateLimiter,
	healthChecker *HealthChecker,
	metricsHandler http.Handler,
) {
	router.GET("/metrics", observability.PrometheusHandler(metricsHandler))
	router.GET("/health", healthChecker.Handler)

	api := router.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login",
				handler.RateLimitMiddleware(rateLimiter, cfg.Security.RateLimitRequests),
				authHandler.Login,
			)
			auth.POST("/signup",
				handler.RateLimitMiddleware(rateLimiter, cfg.Security.RateLimitRequests),
				authHandler.Signup,
			)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/google", authHandler.Google)
			auth.GET("/me", authHandler.Me)
			auth.POST("/profile/refresh", authHandler.RefreshProfile)
		}

		api.GET("/destinations", catalogHandler.ListDestinations)
		api.POST("/destinations", catalogHandler.CreateDestination)
		api.POST("/destinations/:id/rating", catalogHandler.RateDestination)

		api.GET("/products", catalogHandler.ListProducts)
		api.POST("/products", catalogHandler.CreateProduct)
		api.POST("/products/:id/rating", catalogHandler.RateProduct)

		api.GET("/municipalities", catalogHandler.ListMunicipalities)

		sh := api.Group("/shell")
		{
			sh.GET("", shellHandler.State)
			sh.PUT("/view", shellHandler.SetView)
			sh.PUT("/profile", shellHandler.SelectProfile)
			sh.DELETE("/profile", shellHandler.ClearProfile)
			sh.POST("/jump", shellHandler.Jump)
			sh.POST("/scroll", shellHandler.Scroll)
		}

		api.GET("/weather", weatherHandler.Current)
		api.POST("/events", analyticsHandler.Track)
	}
}

// Run hydrates session state, follows auth changes and serves until ctx
// is done.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go a.infra.Coordinator().Watch(ctx)
	a.infra.Coordinator().Hydrate(ctx)

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
