package company

import (
	"context"
	"time"
)

// Company is the billable customer. Only the fields billing reads are mapped.
type Company struct {
	ID          string    `db:"company_id" json:"company_id"`
	TenantID    string    `db:"tenant" json:"tenant"`
	Name        string    `db:"company_name" json:"company_name"`
	TaxRegion   string    `db:"tax_region" json:"tax_region"`
	IsTaxExempt bool      `db:"is_tax_exempt" json:"is_tax_exempt"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Repository reads companies of the tenant in context
type Repository interface {
	Get(ctx context.Context, id string) (*Company, error)
}
