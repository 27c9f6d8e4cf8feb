package service

import (
	"context"

	"github.com/psaworks/psa/internal/domain/billing"
	"github.com/psaworks/psa/internal/domain/discount"
	"github.com/psaworks/psa/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// DiscountEngineService applies plan discounts to a billing result
type DiscountEngineService struct {
	ServiceParams
}

// NewDiscountEngineService creates a new discount engine service
func NewDiscountEngineService(params ServiceParams) *DiscountEngineService {
	return &DiscountEngineService{ServiceParams: params}
}

// Apply loads the company's active discounts for the period and computes each
// against the undiscounted total, so discounts never compound. Adjustments
// are subtracted the same way; none are sourced yet so the list stays empty.
func (s *DiscountEngineService) Apply(ctx context.Context, result *billing.Result, companyID string, period types.BillingPeriod) (*billing.Result, error) {
	var discounts []*discount.Discount
	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		var err error
		discounts, err = s.DiscountRepo.ListActiveForCompany(ctx, companyID, period)
		return err
	})
	if err != nil {
		return nil, err
	}

	discountTotal := decimal.Zero
	for _, d := range discounts {
		amount, err := d.AmountFor(result.TotalAmount)
		if err != nil {
			return nil, err
		}
		d.Amount = amount
		discountTotal = discountTotal.Add(amount)
	}

	if result.Adjustments == nil {
		result.Adjustments = []*discount.Adjustment{}
	}
	adjustmentTotal := lo.Reduce(result.Adjustments, func(acc decimal.Decimal, a *discount.Adjustment, _ int) decimal.Decimal {
		return acc.Add(a.Amount)
	}, decimal.Zero)

	result.Discounts = lo.Ternary(discounts == nil, []*discount.Discount{}, discounts)
	result.DiscountTotal = discountTotal
	result.FinalAmount = result.TotalAmount.Sub(discountTotal).Sub(adjustmentTotal)

	s.Logger.Debugw("applied discounts",
		"company_id", companyID,
		"discounts", len(result.Discounts),
		"adjustments", len(result.Adjustments),
		"discount_total", discountTotal.String(),
		"final_amount", result.FinalAmount.String(),
	)
	return result, nil
}
