package types

import (
	ierr "github.com/psaworks/psa/internal/errors"
	"github.com/samber/lo"
)

// DiscountType decides how a discount value is read
type DiscountType string

const (
	// DiscountTypePercentage takes value percent of the undiscounted total
	DiscountTypePercentage DiscountType = "percentage"
	// DiscountTypeFixed takes value as a flat amount
	DiscountTypeFixed DiscountType = "fixed"
)

func (d DiscountType) Validate() error {
	allowed := []DiscountType{DiscountTypePercentage, DiscountTypeFixed}
	if !lo.Contains(allowed, d) {
		return ierr.NewError("invalid discount type").
			WithHint("Discount type must be percentage or fixed").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
				"value":   d,
			}).
			Mark(ierr.ErrDataIntegrity)
	}
	return nil
}
