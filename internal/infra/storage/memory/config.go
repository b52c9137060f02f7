package memory

import (
	"context"

	"github.com/m04kA/SMC-SlotBooking/internal/domain"
	"github.com/m04kA/SMC-SlotBooking/internal/infra/storage/config"
)

// ConfigRepository конфигурация календаря в памяти
type ConfigRepository struct {
	store *Store
}

func (r *ConfigRepository) Get(ctx context.Context) (*domain.CalendarConfig, error) {
	defer r.store.lock(ctx)()

	if r.store.config == nil {
		return nil, config.ErrConfigNotFound
	}

	cfg := r.store.config.Clone()
	cfg.Normalize()
	return cfg, nil
}

func (r *ConfigRepository) Save(ctx context.Context, cfg *domain.CalendarConfig) (*domain.CalendarConfig, error) {
	defer r.store.lock(ctx)()

	cfg.Normalize()

	now := r.store.now()
	cfg.ID = 1
	if r.store.config != nil {
		cfg.CreatedAt = r.store.config.CreatedAt
	} else {
		cfg.CreatedAt = now
	}
	cfg.UpdatedAt = now

	r.store.config = cfg.Clone()
	return cfg, nil
}
