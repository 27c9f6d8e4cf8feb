package service

import (
	"github.com/psaworks/psa/internal/cache"
	"github.com/psaworks/psa/internal/config"
	"github.com/psaworks/psa/internal/domain/billingplan"
	"github.com/psaworks/psa/internal/domain/bucket"
	"github.com/psaworks/psa/internal/domain/company"
	"github.com/psaworks/psa/internal/domain/discount"
	"github.com/psaworks/psa/internal/domain/proration"
	"github.com/psaworks/psa/internal/domain/servicecatalog"
	"github.com/psaworks/psa/internal/domain/tax"
	"github.com/psaworks/psa/internal/domain/timeentry"
	"github.com/psaworks/psa/internal/domain/timeperiod"
	"github.com/psaworks/psa/internal/domain/usage"
	"github.com/psaworks/psa/internal/logger"
	"github.com/psaworks/psa/internal/postgres"
	"github.com/psaworks/psa/internal/pyroscope"
	"github.com/psaworks/psa/internal/sentry"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	DB     postgres.IClient
	Cache  cache.Cache

	// Repositories
	CompanyRepo            company.Repository
	BillingPlanRepo        billingplan.Repository
	ServiceCatalogRepo     servicecatalog.Repository
	TimeEntryRepo          timeentry.Repository
	UsageRepo              usage.Repository
	BucketRepo             bucket.Repository
	DiscountRepo           discount.Repository
	TaxRateRepo            tax.Repository
	TimePeriodSettingsRepo timeperiod.SettingsRepository
	TimePeriodRepo         timeperiod.Repository

	ProrationCalculator proration.Calculator

	// Monitoring
	Sentry    *sentry.Service
	Pyroscope *pyroscope.Service
}

// Common service params
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	db postgres.IClient,
	cache cache.Cache,
	companyRepo company.Repository,
	billingPlanRepo billingplan.Repository,
	serviceCatalogRepo servicecatalog.Repository,
	timeEntryRepo timeentry.Repository,
	usageRepo usage.Repository,
	bucketRepo bucket.Repository,
	discountRepo discount.Repository,
	taxRateRepo tax.Repository,
	timePeriodSettingsRepo timeperiod.SettingsRepository,
	timePeriodRepo timeperiod.Repository,
	prorationCalculator proration.Calculator,
	sentry *sentry.Service,
	pyroscope *pyroscope.Service,
) ServiceParams {
	return ServiceParams{
		Logger:                 logger,
		Config:                 config,
		DB:                     db,
		Cache:                  cache,
		CompanyRepo:            companyRepo,
		BillingPlanRepo:        billingPlanRepo,
		ServiceCatalogRepo:     serviceCatalogRepo,
		TimeEntryRepo:          timeEntryRepo,
		UsageRepo:              usageRepo,
		BucketRepo:             bucketRepo,
		DiscountRepo:           discountRepo,
		TaxRateRepo:            taxRateRepo,
		TimePeriodSettingsRepo: timePeriodSettingsRepo,
		TimePeriodRepo:         timePeriodRepo,
		ProrationCalculator:    prorationCalculator,
		Sentry:                 sentry,
		Pyroscope:              pyroscope,
	}
}
