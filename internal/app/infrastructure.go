package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"

	"github.com/elakbay/elakbay/internal/analytics"
	"github.com/elakbay/elakbay/internal/catalog"
	"github.com/elakbay/elakbay/internal/config"
	"github.com/elakbay/elakbay/internal/session"
	"github.com/elakbay/elakbay/internal/shell"
	"github.com/elakbay/elakbay/internal/supabase"
	"github.com/elakbay/elakbay/internal/weather"
	"github.com/elakbay/elakbay/pkg/observability"
	"github.com/elakbay/elakbay/pkg/storage"
)

type Infrastructure interface {
	Logger() *zap.Logger
	Store() storage.Store
	Supabase() *supabase.Client
	Weather() *weather.Client
	Coordinator() *session.Coordinator
	Reporter() *analytics.Reporter
	Catalog() *catalog.Service
	Shell() *shell.Router
	MetricsHandler() http.Handler
	MeterProvider() *metric.MeterProvider

	Shutdown(ctx context.Context) error
}

type infrastructure struct {
	logger         *zap.Logger
	store          storage.Store
	supabase       *supabase.Client
	weather        *weather.Client
	coordinator    *session.Coordinator
	reporter       *analytics.Reporter
	catalog        *catalog.Service
	shell          *shell.Router
	metricsHandler http.Handler
	meterProvider  *metric.MeterProvider
}

var _ Infrastructure = &infrastructure{}

func NewInfrastructure(ctx context.Context, cfg config.Config) (*infrastructure, error) {
	i := &infrastructure{}

	logger, err := observability.InitLogger(cfg.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	i.logger = logger

	store, err := storage.NewFileStore(cfg.StatePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open state file: %w", err)
	}
	i.store = store

	i.supabase = supabase.NewClient(cfg.Supabase, store, logger)
	i.weather = weather.NewClient(cfg.Weather, logger)

	i.coordinator = session.NewCoordinator(
		i.supabase,
		i.supabase,
		session.NewLogNotifier(logger),
		logger,
		session.Options{
			FetchAttempts:  cfg.Profile.FetchAttempts,
			FetchDelay:     cfg.Profile.FetchDelay.Duration,
			RedirectOrigin: cfg.Supabase.RedirectOrigin,
		},
	)

	i.reporter = analytics.NewReporter(i.supabase, store, logger, cfg.Analytics.PrivatePrefixes)
	i.catalog = catalog.NewService(i.supabase)

	i.shell = shell.NewRouter(store, shell.NewLogScroller(logger), shell.HomeSections(), logger,
		shell.Options{
			ScrollTopThreshold: cfg.Shell.ScrollTopThreshold,
			AnchorPollDelay:    cfg.Shell.AnchorPollDelay.Duration,
			AnchorPollAttempts: cfg.Shell.AnchorPollAttempts,
		})

	meterProvider, metricsHandler, err := observability.InitTelemetry("elakbay")
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	i.meterProvider = meterProvider
	i.metricsHandler = metricsHandler

	return i, nil
}

func (i *infrastructure) Logger() *zap.Logger {
	return i.logger
}

func (i *infrastructure) Store() storage.Store {
	return i.store
}

func (i *infrastructure) Supabase() *supabase.Client {
	return i.supabase
}

func (i *infrastructure) Weather() *weather.Client {
	return i.weather
}

func (i *infrastructure) Coordinator() *session.Coordinator {
	return i.coordinator
}

func (i *infrastructure) Reporter() *analytics.Reporter {
	return i.reporter
}

func (i *infrastructure) Catalog() *catalog.Service {
	return i.catalog
}

func (i *infrastructure) Shell() *shell.Router {
	return i.shell
}

func (i *infrastructure) MetricsHandler() http.Handler {
	return i.metricsHandler
}

func (i *infrastructure) MeterProvider() *metric.MeterProvider {
	return i.meterProvider
}

func (i *infrastructure) Shutdown(ctx context.Context) error {
	errs := make(chan error, 2)

	go func() { errs <- i.logger.Sync() }()
	go func() { errs <- observability.Shutdown(ctx, i.meterProvider, i.logger) }()

	return errors.Join(<-errs, <-errs)
}
