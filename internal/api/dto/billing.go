package dto

import (
	"github.com/psaworks/psa/internal/domain/billing"
	"github.com/psaworks/psa/internal/domain/discount"
	"github.com/psaworks/psa/internal/types"
	"github.com/psaworks/psa/internal/validator"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// CalculateBillingRequest asks for the billing of one company over [start_date, end_date)
type CalculateBillingRequest struct {
	CompanyID string `json:"company_id" validate:"required"`
	// start_date is a UTC timestamp, e.g. 2024-01-01T00:00:00.000Z
	StartDate string `json:"start_date" validate:"required,utc_timestamp"`
	EndDate   string `json:"end_date" validate:"required,utc_timestamp"`
}

func (r *CalculateBillingRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	_, err := r.ToBillingPeriod()
	return err
}

func (r *CalculateBillingRequest) ToBillingPeriod() (types.BillingPeriod, error) {
	return parsePeriod(r.StartDate, r.EndDate)
}

// ChargeResponse is a billing charge flattened with its type tag. Only the
// fields of the charge's variant are set.
type ChargeResponse struct {
	Type        types.ChargeType `json:"type"`
	ServiceID   string           `json:"service_id"`
	ServiceName string           `json:"service_name"`
	Rate        decimal.Decimal  `json:"rate"`
	Total       decimal.Decimal  `json:"total"`
	TaxRate     decimal.Decimal  `json:"tax_rate"`
	TaxAmount   decimal.Decimal  `json:"tax_amount"`
	TaxRegion   string           `json:"tax_region,omitempty"`

	Quantity     *decimal.Decimal `json:"quantity,omitempty"`
	Duration     *int64           `json:"duration,omitempty"`
	UserID       string           `json:"user_id,omitempty"`
	HoursUsed    *decimal.Decimal `json:"hours_used,omitempty"`
	OverageHours *decimal.Decimal `json:"overage_hours,omitempty"`
	OverageRate  *decimal.Decimal `json:"overage_rate,omitempty"`
}

func NewChargeResponse(c *billing.Charge) *ChargeResponse {
	resp := &ChargeResponse{
		Type:        c.Type,
		ServiceID:   c.ServiceID,
		ServiceName: c.ServiceName,
		Rate:        c.Rate,
		Total:       c.Total,
		TaxRate:     c.TaxRate,
		TaxAmount:   c.TaxAmount,
		TaxRegion:   c.TaxRegion,
	}

	switch {
	case c.Fixed != nil:
		resp.Quantity = lo.ToPtr(c.Fixed.Quantity)
	case c.Time != nil:
		resp.Duration = lo.ToPtr(c.Time.Duration)
		resp.UserID = c.Time.UserID
	case c.Usage != nil:
		resp.Quantity = lo.ToPtr(c.Usage.Quantity)
	case c.Bucket != nil:
		resp.HoursUsed = lo.ToPtr(c.Bucket.HoursUsed)
		resp.OverageHours = lo.ToPtr(c.Bucket.OverageHours)
		resp.OverageRate = lo.ToPtr(c.Bucket.OverageRate)
	}
	return resp
}

type DiscountResponse struct {
	DiscountID   string             `json:"discount_id"`
	DiscountName string             `json:"discount_name"`
	DiscountType types.DiscountType `json:"discount_type"`
	Value        decimal.Decimal    `json:"value"`
	Amount       decimal.Decimal    `json:"amount"`
}

type AdjustmentResponse struct {
	Amount decimal.Decimal `json:"amount"`
	Reason string          `json:"reason"`
}

// BillingResultResponse is the outcome of a billing run. Amounts are decimal
// strings. tax_total is informational and is not part of final_amount.
type BillingResultResponse struct {
	CompanyID     string                `json:"company_id"`
	StartDate     string                `json:"start_date"`
	EndDate       string                `json:"end_date"`
	BillingCycle  types.BillingCycle    `json:"billing_cycle"`
	Charges       []*ChargeResponse     `json:"charges"`
	TotalAmount   decimal.Decimal       `json:"total_amount"`
	TaxTotal      decimal.Decimal       `json:"tax_total"`
	Discounts     []*DiscountResponse   `json:"discounts"`
	Adjustments   []*AdjustmentResponse `json:"adjustments"`
	DiscountTotal decimal.Decimal       `json:"discount_total"`
	FinalAmount   decimal.Decimal       `json:"final_amount"`
}

func NewBillingResultResponse(r *billing.Result) *BillingResultResponse {
	return &BillingResultResponse{
		CompanyID:    r.CompanyID,
		StartDate:    types.FormatTimestamp(r.Period.Start),
		EndDate:      types.FormatTimestamp(r.Period.End),
		BillingCycle: r.BillingCycle,
		Charges: lo.Map(r.Charges, func(c *billing.Charge, _ int) *ChargeResponse {
			return NewChargeResponse(c)
		}),
		TotalAmount: r.TotalAmount,
		TaxTotal:    r.TaxTotal(),
		Discounts: lo.Map(r.Discounts, func(d *discount.Discount, _ int) *DiscountResponse {
			return &DiscountResponse{
				DiscountID:   d.ID,
				DiscountName: d.DiscountName,
				DiscountType: d.DiscountType,
				Value:        d.Value,
				Amount:       d.Amount,
			}
		}),
		Adjustments: lo.Map(r.Adjustments, func(a *discount.Adjustment, _ int) *AdjustmentResponse {
			return &AdjustmentResponse{Amount: a.Amount, Reason: a.Reason}
		}),
		DiscountTotal: r.DiscountTotal,
		FinalAmount:   r.FinalAmount,
	}
}

func parsePeriod(start, end string) (types.BillingPeriod, error) {
	startTime, err := types.ParseTimestamp(start)
	if err != nil {
		return types.BillingPeriod{}, err
	}
	endTime, err := types.ParseTimestamp(end)
	if err != nil {
		return types.BillingPeriod{}, err
	}
	return types.NewBillingPeriod(startTime, endTime)
}
