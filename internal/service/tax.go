package service

import (
	"context"
	"time"

	"github.com/psaworks/psa/internal/cache"
	ierr "github.com/psaworks/psa/internal/errors"
	"github.com/psaworks/psa/internal/types"
	"github.com/shopspring/decimal"
)

type TaxService interface {
	// GetCompanyTaxRate returns the rate of region in effect at asOf as a
	// fraction (8.25% is 0.0825). Regions without a configured rate are
	// untaxed and yield zero.
	GetCompanyTaxRate(ctx context.Context, region string, asOf time.Time) (decimal.Decimal, error)
}

type taxService struct {
	ServiceParams
}

func NewTaxService(params ServiceParams) TaxService {
	return &taxService{ServiceParams: params}
}

func (s *taxService) GetCompanyTaxRate(ctx context.Context, region string, asOf time.Time) (decimal.Decimal, error) {
	if region == "" {
		return decimal.Zero, nil
	}

	key := cache.GenerateKey(cache.PrefixTaxRate, types.GetTenantID(ctx), region, asOf.UTC().Format(time.DateOnly))
	span := cache.StartCacheSpan(ctx, "tax_rate", "get", map[string]interface{}{
		"region": region,
	})
	defer cache.FinishSpan(span)

	if cached, ok := s.Cache.Get(ctx, key); ok {
		if rate, ok := cached.(decimal.Decimal); ok {
			cache.SetSpanHit(span, true)
			return rate, nil
		}
	}
	cache.SetSpanHit(span, false)

	var rate decimal.Decimal
	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		taxRate, err := s.TaxRateRepo.GetForRegion(ctx, region, asOf)
		if err != nil {
			if ierr.IsNotFound(err) {
				s.Logger.Warnw("no tax rate configured for region, treating as untaxed",
					"region", region,
					"as_of", types.FormatTimestamp(asOf),
				)
				rate = decimal.Zero
				return nil
			}
			return err
		}
		rate = taxRate.Fraction()
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}

	s.Cache.Set(ctx, key, rate, s.Config.Cache.TaxRateTTL)
	return rate, nil
}
