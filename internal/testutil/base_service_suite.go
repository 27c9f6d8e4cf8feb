package testutil

import (
	"context"
	"time"

	"github.com/psaworks/psa/internal/cache"
	"github.com/psaworks/psa/internal/config"
	"github.com/psaworks/psa/internal/domain/company"
	"github.com/psaworks/psa/internal/logger"
	"github.com/psaworks/psa/internal/pyroscope"
	"github.com/psaworks/psa/internal/sentry"
	"github.com/psaworks/psa/internal/types"
	"github.com/psaworks/psa/internal/validator"
	"github.com/stretchr/testify/suite"
)

// Stores holds the in-memory repositories for testing
type Stores struct {
	CompanyRepo            *InMemoryCompanyStore
	BillingPlanRepo        *InMemoryBillingPlanStore
	ServiceCatalogRepo     *InMemoryServiceCatalogStore
	TimeEntryRepo          *InMemoryTimeEntryStore
	UsageRepo              *InMemoryUsageStore
	BucketRepo             *InMemoryBucketStore
	DiscountRepo           *InMemoryDiscountStore
	TaxRateRepo            *InMemoryTaxRateStore
	TimePeriodSettingsRepo *InMemoryTimePeriodSettingsStore
	TimePeriodRepo         *InMemoryTimePeriodStore
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx       context.Context
	stores    Stores
	db        *MockPostgresClient
	cache     cache.Cache
	logger    *logger.Logger
	config    *config.Configuration
	sentry    *sentry.Service
	pyroscope *pyroscope.Service
	now       time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	validator.NewValidator()
	s.logger = logger.NewNopLogger()
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.config = config.GetDefaultConfig()
	s.setupContext()
	s.setupStores()
	s.cache = cache.NewInMemoryCache(s.config)
	s.sentry = sentry.NewSentryService(s.config, s.logger)
	s.pyroscope = pyroscope.NewPyroscopeService(s.config, s.logger)
	s.now = time.Now().UTC()
}

func (s *BaseServiceTestSuite) setupContext() {
	s.ctx = SetupContext()
}

func (s *BaseServiceTestSuite) setupStores() {
	s.stores = Stores{
		CompanyRepo:            NewInMemoryCompanyStore(),
		BillingPlanRepo:        NewInMemoryBillingPlanStore(),
		ServiceCatalogRepo:     NewInMemoryServiceCatalogStore(),
		TimeEntryRepo:          NewInMemoryTimeEntryStore(),
		UsageRepo:              NewInMemoryUsageStore(),
		BucketRepo:             NewInMemoryBucketStore(),
		DiscountRepo:           NewInMemoryDiscountStore(),
		TaxRateRepo:            NewInMemoryTaxRateStore(),
		TimePeriodSettingsRepo: NewInMemoryTimePeriodSettingsStore(),
		TimePeriodRepo:         NewInMemoryTimePeriodStore(),
	}

	s.db = NewMockPostgresClient(s.logger,
		s.stores.TimeEntryRepo,
		s.stores.TimePeriodRepo,
	)
}

// GetContext returns the tenant scoped test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

func (s *BaseServiceTestSuite) GetDB() *MockPostgresClient {
	return s.db
}

func (s *BaseServiceTestSuite) GetCache() cache.Cache {
	return s.cache
}

func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

func (s *BaseServiceTestSuite) GetSentry() *sentry.Service {
	return s.sentry
}

func (s *BaseServiceTestSuite) GetPyroscope() *pyroscope.Service {
	return s.pyroscope
}

// TenantID is the tenant of the test context
func (s *BaseServiceTestSuite) TenantID() string {
	return types.GetTenantID(s.ctx)
}

// CreateCompany stores a company of the test tenant
func (s *BaseServiceTestSuite) CreateCompany(id, taxRegion string, taxExempt bool) *company.Company {
	c := &company.Company{
		ID:          id,
		TenantID:    s.TenantID(),
		Name:        "Company " + id,
		TaxRegion:   taxRegion,
		IsTaxExempt: taxExempt,
		CreatedAt:   s.now,
		UpdatedAt:   s.now,
	}
	s.Require().NoError(s.stores.CompanyRepo.Add(s.ctx, c))
	return c
}
