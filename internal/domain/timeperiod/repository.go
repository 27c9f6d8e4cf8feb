package timeperiod

import (
	"context"
	"time"

	"github.com/psaworks/psa/internal/types"
)

// SettingsRepository reads the tenant's period configuration
type SettingsRepository interface {
	Create(ctx context.Context, settings *Settings) error
	Get(ctx context.Context, id string) (*Settings, error)
	// ListActive returns active settings, most recent effective_from first
	ListActive(ctx context.Context) ([]*Settings, error)
}

// Repository persists generated time periods
type Repository interface {
	Create(ctx context.Context, period *TimePeriod) error
	CreateMany(ctx context.Context, periods []*TimePeriod) error
	Get(ctx context.Context, id string) (*TimePeriod, error)
	// FindByDate returns the period containing t or ErrNotFound
	FindByDate(ctx context.Context, t time.Time) (*TimePeriod, error)
	// GetLatest returns the period with the greatest end date or ErrNotFound
	GetLatest(ctx context.Context) (*TimePeriod, error)
	List(ctx context.Context, filter *types.TimePeriodFilter) ([]*TimePeriod, error)
	// ListOverlapping returns stored periods sharing any instant with [start, end)
	ListOverlapping(ctx context.Context, start, end time.Time) ([]*TimePeriod, error)
}
