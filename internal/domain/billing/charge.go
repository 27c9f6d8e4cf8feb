package billing

import (
	ierr "github.com/psaworks/psa/internal/errors"
	"github.com/psaworks/psa/internal/types"
	"github.com/shopspring/decimal"
)

// Charge is one billed line. Exactly one of the variant details is set and it
// matches Type.
type Charge struct {
	Type        types.ChargeType
	ServiceID   string
	ServiceName string
	Rate        decimal.Decimal
	// Total is pre-tax
	Total     decimal.Decimal
	TaxRate   decimal.Decimal
	TaxAmount decimal.Decimal
	TaxRegion string

	Fixed  *FixedDetails
	Time   *TimeDetails
	Usage  *UsageDetails
	Bucket *BucketDetails
}

type FixedDetails struct {
	Quantity decimal.Decimal
}

type TimeDetails struct {
	// Duration is in whole hours
	Duration int64
	UserID   string
}

type UsageDetails struct {
	Quantity decimal.Decimal
}

type BucketDetails struct {
	HoursUsed    decimal.Decimal
	OverageHours decimal.Decimal
	OverageRate  decimal.Decimal
}

func NewFixedCharge(serviceID, serviceName string, quantity, rate decimal.Decimal) *Charge {
	return &Charge{
		Type:        types.ChargeTypeFixed,
		ServiceID:   serviceID,
		ServiceName: serviceName,
		Rate:        rate,
		Total:       rate.Mul(quantity),
		Fixed:       &FixedDetails{Quantity: quantity},
	}
}

func NewTimeCharge(serviceID, serviceName, userID string, hours int64, rate decimal.Decimal, taxRegion string) *Charge {
	return &Charge{
		Type:        types.ChargeTypeTime,
		ServiceID:   serviceID,
		ServiceName: serviceName,
		Rate:        rate,
		Total:       rate.Mul(decimal.NewFromInt(hours)),
		TaxRegion:   taxRegion,
		Time:        &TimeDetails{Duration: hours, UserID: userID},
	}
}

func NewUsageCharge(serviceID, serviceName string, quantity, rate decimal.Decimal, taxRegion string) *Charge {
	return &Charge{
		Type:        types.ChargeTypeUsage,
		ServiceID:   serviceID,
		ServiceName: serviceName,
		Rate:        rate,
		Total:       quantity.Mul(rate),
		TaxRegion:   taxRegion,
		Usage:       &UsageDetails{Quantity: quantity},
	}
}

// NewBucketCharge bills overage hours. Tax is rounded up to a whole unit,
// unlike every other charge type.
func NewBucketCharge(serviceID, serviceName string, hoursUsed, overageHours, overageRate, taxRate decimal.Decimal, taxRegion string) *Charge {
	total := overageHours.Mul(overageRate)
	return &Charge{
		Type:        types.ChargeTypeBucket,
		ServiceID:   serviceID,
		ServiceName: serviceName,
		Rate:        overageRate,
		Total:       total,
		TaxRate:     taxRate,
		TaxAmount:   taxRate.Mul(total).Ceil(),
		TaxRegion:   taxRegion,
		Bucket: &BucketDetails{
			HoursUsed:    hoursUsed,
			OverageHours: overageHours,
			OverageRate:  overageRate,
		},
	}
}

// ApplyTax sets the tax from a percentage rate on the current total
func (c *Charge) ApplyTax(percentage decimal.Decimal) {
	c.TaxRate = percentage
	c.TaxAmount = c.Total.Mul(percentage).Div(decimal.NewFromInt(100))
}

// WithTotal returns a copy of the charge with a new total. Tax is left as is.
func (c *Charge) WithTotal(total decimal.Decimal) *Charge {
	cp := *c
	cp.Total = total
	return &cp
}

func (c *Charge) Validate() error {
	variants := map[types.ChargeType]bool{
		types.ChargeTypeFixed:  c.Fixed != nil,
		types.ChargeTypeTime:   c.Time != nil,
		types.ChargeTypeUsage:  c.Usage != nil,
		types.ChargeTypeBucket: c.Bucket != nil,
	}

	set := 0
	for _, ok := range variants {
		if ok {
			set++
		}
	}
	if set != 1 || !variants[c.Type] {
		return ierr.NewErrorf("charge %s for service %s has inconsistent details", c.Type, c.ServiceID).
			WithHint("Charge details do not match the charge type").
			WithReportableDetails(map[string]any{
				"type":       c.Type,
				"service_id": c.ServiceID,
			}).
			Mark(ierr.ErrDataIntegrity)
	}
	return nil
}
