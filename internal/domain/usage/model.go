package usage

import (
	"context"
	"time"

	"github.com/psaworks/psa/internal/domain/servicecatalog"
	"github.com/psaworks/psa/internal/types"
	"github.com/shopspring/decimal"
)

// Record is a usage tracking row joined with its service and plan rate
type Record struct {
	ID          string           `db:"usage_id" json:"usage_id"`
	TenantID    string           `db:"tenant" json:"tenant"`
	CompanyID   string           `db:"company_id" json:"company_id"`
	ServiceID   string           `db:"service_id" json:"service_id"`
	UsageDate   time.Time        `db:"usage_date" json:"usage_date"`
	Quantity    decimal.Decimal  `db:"quantity" json:"quantity"`
	TaxRegion   *string          `db:"tax_region" json:"tax_region,omitempty"`
	ServiceName string           `db:"service_name" json:"service_name"`
	DefaultRate decimal.Decimal  `db:"default_rate" json:"default_rate"`
	CustomRate  *decimal.Decimal `db:"custom_rate" json:"custom_rate,omitempty"`
}

func (r *Record) Rate() decimal.Decimal {
	return servicecatalog.EffectiveRate(r.CustomRate, r.DefaultRate)
}

// PlanFilter selects the usage a plan bills for. Both period bounds are inclusive.
type PlanFilter struct {
	CompanyID       string
	PlanID          string
	ServiceCategory *string
	Period          types.BillingPeriod
}

type Repository interface {
	ListForPlan(ctx context.Context, filter PlanFilter) ([]*Record, error)
}
