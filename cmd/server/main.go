package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/psaworks/psa/internal/api"
	v1 "github.com/psaworks/psa/internal/api/v1"
	"github.com/psaworks/psa/internal/cache"
	"github.com/psaworks/psa/internal/config"
	"github.com/psaworks/psa/internal/domain/proration"
	"github.com/psaworks/psa/internal/logger"
	"github.com/psaworks/psa/internal/metrics"
	"github.com/psaworks/psa/internal/postgres"
	"github.com/psaworks/psa/internal/pyroscope"
	"github.com/psaworks/psa/internal/repository"
	"github.com/psaworks/psa/internal/sentry"
	"github.com/psaworks/psa/internal/service"
	"github.com/psaworks/psa/internal/types"
	"github.com/psaworks/psa/internal/validator"
	"go.uber.org/fx"
)

// @title PSA Billing API
// @version 1.0
// @description Billing, time period and time entry rollover API
// @BasePath /v1
// @schemes http https
// @securityDefinitions.apikey TenantHeader
// @in header
// @name X-Tenant-ID

func init() {
	time.Local = time.UTC
}

func main() {
	var opts []fx.Option

	opts = append(opts,
		fx.Provide(
			config.NewConfig,
			logger.NewLogger,

			cache.NewInMemoryCache,

			// Postgres
			postgres.NewDB,
			provideDBClient,

			// Repositories
			repository.NewCompanyRepository,
			repository.NewBillingPlanRepository,
			repository.NewServiceCatalogRepository,
			repository.NewTimeEntryRepository,
			repository.NewUsageRepository,
			repository.NewBucketRepository,
			repository.NewDiscountRepository,
			repository.NewTaxRateRepository,
			repository.NewTimePeriodSettingsRepository,
			repository.NewTimePeriodRepository,

			proration.NewCalculator,
		),
	)

	// Monitoring
	opts = append(opts, sentry.Module(), pyroscope.Module())

	opts = append(opts,
		fx.Provide(
			service.NewServiceParams,
			service.NewBillingService,
			service.NewTimePeriodService,
			service.NewRolloverService,
		),
	)

	opts = append(opts,
		fx.Provide(
			provideHandlers,
			provideRouter,
		),
		fx.Invoke(
			registerValidator,
			registerMetrics,
			startServer,
		),
	)

	app := fx.New(opts...)
	app.Run()
}

// provideDBClient is the transaction entry point services use, traced in sentry
func provideDBClient(db *postgres.DB, sentrySvc *sentry.Service, log *logger.Logger) postgres.IClient {
	return postgres.NewSentryClient(db, sentrySvc, log)
}

func provideHandlers(
	db *postgres.DB,
	logger *logger.Logger,
	billingService service.BillingService,
	timePeriodService service.TimePeriodService,
	rolloverService service.RolloverService,
) api.Handlers {
	return api.Handlers{
		Health:     v1.NewHealthHandler(db, logger),
		Billing:    v1.NewBillingHandler(billingService, logger),
		TimePeriod: v1.NewTimePeriodHandler(timePeriodService, logger),
		TimeEntry:  v1.NewTimeEntryHandler(rolloverService, logger),
	}
}

func provideRouter(handlers api.Handlers, cfg *config.Configuration, logger *logger.Logger, pyroscopeSvc *pyroscope.Service) *gin.Engine {
	return api.NewRouter(handlers, cfg, logger, pyroscopeSvc)
}

// registerValidator builds the shared validator the request DTOs validate with
func registerValidator() {
	validator.NewValidator()
}

func registerMetrics(cfg *config.Configuration, db *postgres.DB) {
	if cfg.Metrics.Enabled {
		metrics.Init(db.DB.DB)
	}
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	db *postgres.DB,
	log *logger.Logger,
) {
	mode := cfg.Deployment.Mode
	if mode == "" {
		mode = types.ModeLocal
	}

	switch mode {
	case types.ModeLocal, types.ModeAPI:
		startAPIServer(lc, r, cfg, log)
	default:
		log.Fatalf("Unknown deployment mode: %s", mode)
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Info("Closing database connections")
			db.Close()
			return nil
		},
	})
}

func startAPIServer(
	lc fx.Lifecycle,
	r *gin.Engine,
	cfg *config.Configuration,
	log *logger.Logger,
) {
	srv := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("Starting API server", "address", cfg.Server.Address, "mode", cfg.Deployment.Mode)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			return srv.Shutdown(ctx)
		},
	})
}
