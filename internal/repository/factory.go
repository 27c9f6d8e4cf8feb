package repository

import (
	"github.com/psaworks/psa/internal/domain/billingplan"
	"github.com/psaworks/psa/internal/domain/bucket"
	"github.com/psaworks/psa/internal/domain/company"
	"github.com/psaworks/psa/internal/domain/discount"
	"github.com/psaworks/psa/internal/domain/servicecatalog"
	"github.com/psaworks/psa/internal/domain/tax"
	"github.com/psaworks/psa/internal/domain/timeentry"
	"github.com/psaworks/psa/internal/domain/timeperiod"
	"github.com/psaworks/psa/internal/domain/usage"
	"github.com/psaworks/psa/internal/logger"
	"github.com/psaworks/psa/internal/postgres"
	postgresRepo "github.com/psaworks/psa/internal/repository/postgres"
)

func NewCompanyRepository(db *postgres.DB, logger *logger.Logger) company.Repository {
	return postgresRepo.NewCompanyRepository(db, logger)
}

func NewBillingPlanRepository(db *postgres.DB, logger *logger.Logger) billingplan.Repository {
	return postgresRepo.NewBillingPlanRepository(db, logger)
}

func NewServiceCatalogRepository(db *postgres.DB, logger *logger.Logger) servicecatalog.Repository {
	return postgresRepo.NewServiceCatalogRepository(db, logger)
}

func NewTimeEntryRepository(db *postgres.DB, logger *logger.Logger) timeentry.Repository {
	return postgresRepo.NewTimeEntryRepository(db, logger)
}

func NewUsageRepository(db *postgres.DB, logger *logger.Logger) usage.Repository {
	return postgresRepo.NewUsageRepository(db, logger)
}

func NewBucketRepository(db *postgres.DB, logger *logger.Logger) bucket.Repository {
	return postgresRepo.NewBucketRepository(db, logger)
}

func NewDiscountRepository(db *postgres.DB, logger *logger.Logger) discount.Repository {
	return postgresRepo.NewDiscountRepository(db, logger)
}

func NewTaxRateRepository(db *postgres.DB, logger *logger.Logger) tax.Repository {
	return postgresRepo.NewTaxRateRepository(db, logger)
}

func NewTimePeriodSettingsRepository(db *postgres.DB, logger *logger.Logger) timeperiod.SettingsRepository {
	return postgresRepo.NewTimePeriodSettingsRepository(db, logger)
}

func NewTimePeriodRepository(db *postgres.DB, logger *logger.Logger) timeperiod.Repository {
	return postgresRepo.NewTimePeriodRepository(db, logger)
}
