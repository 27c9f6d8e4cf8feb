package servicecatalog

import (
	"time"

	"github.com/psaworks/psa/internal/types"
	"github.com/shopspring/decimal"
)

// Service is a service catalog entry
type Service struct {
	ID          string            `db:"service_id" json:"service_id"`
	TenantID    string            `db:"tenant" json:"tenant"`
	ServiceName string            `db:"service_name" json:"service_name"`
	ServiceType types.ServiceType `db:"service_type" json:"service_type"`
	DefaultRate decimal.Decimal   `db:"default_rate" json:"default_rate"`
	CategoryID  *string           `db:"category_id" json:"category_id,omitempty"`
	// IsTaxable is nullable, a missing flag counts as taxable
	IsTaxable *bool `db:"is_taxable" json:"is_taxable,omitempty"`
	// TaxRate is a percentage, 10 means 10%
	TaxRate   *decimal.Decimal `db:"tax_rate" json:"tax_rate,omitempty"`
	TaxRegion *string          `db:"tax_region" json:"tax_region,omitempty"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt time.Time        `db:"updated_at" json:"updated_at"`
}

func (s *Service) Taxable() bool {
	return s.IsTaxable == nil || *s.IsTaxable
}

// TaxPercentage returns the service tax rate in percent, zero when unset
func (s *Service) TaxPercentage() decimal.Decimal {
	if s.TaxRate == nil {
		return decimal.Zero
	}
	return *s.TaxRate
}

// PlanService is a catalog service attached to a plan with the plan's
// quantity and optional custom rate
type PlanService struct {
	Service
	Quantity   decimal.Decimal  `db:"quantity" json:"quantity"`
	CustomRate *decimal.Decimal `db:"custom_rate" json:"custom_rate,omitempty"`
}

func (p *PlanService) Rate() decimal.Decimal {
	return EffectiveRate(p.CustomRate, p.DefaultRate)
}

// EffectiveRate picks the custom rate when it is set and non zero, the
// default rate otherwise
func EffectiveRate(custom *decimal.Decimal, defaultRate decimal.Decimal) decimal.Decimal {
	if custom != nil && !custom.IsZero() {
		return *custom
	}
	return defaultRate
}
