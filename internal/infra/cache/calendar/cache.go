package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-SlotBooking/internal/domain"
	"github.com/m04kA/SMC-SlotBooking/pkg/types"
)

const cacheKey = "slotbooking:calendar_config:v1"

var (
	// ErrCacheMiss возвращается, если конфигурации нет в кэше
	ErrCacheMiss = errors.New("calendar.cache: miss")

	// ErrCache возвращается при ошибке Redis или сериализации
	ErrCache = errors.New("calendar.cache: redis error")
)

// Cache кэш нормализованной конфигурации календаря в Redis
type Cache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewCache(client redis.Cmdable, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

type cachedConfig struct {
	ID             int64                         `json:"id"`
	Timezone       string                        `json:"timezone"`
	SlotMinutes    int                           `json:"slot_minutes"`
	MinLeadDays    int                           `json:"min_lead_days"`
	ClosedWeekdays []int                         `json:"closed_weekdays"`
	DefaultHours   []types.TimeString            `json:"default_hours"`
	Overrides      map[string][]types.TimeString `json:"overrides"`
	Holidays       []string                      `json:"holidays"`
	MaxConcurrent  int                           `json:"max_concurrent"`
	CreatedAt      time.Time                     `json:"created_at"`
	UpdatedAt      time.Time                     `json:"updated_at"`
}

// Get читает конфигурацию из кэша
func (c *Cache) Get(ctx context.Context) (*domain.CalendarConfig, error) {
	raw, err := c.client.Get(ctx, cacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Get: %v", ErrCache, err)
	}

	var cached cachedConfig
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, fmt.Errorf("%w: Get - decode: %v", ErrCache, err)
	}

	cfg := &domain.CalendarConfig{
		ID:             cached.ID,
		Timezone:       cached.Timezone,
		SlotMinutes:    cached.SlotMinutes,
		MinLeadDays:    cached.MinLeadDays,
		ClosedWeekdays: cached.ClosedWeekdays,
		DefaultHours:   cached.DefaultHours,
		Overrides:      domain.HourOverrides(cached.Overrides),
		Holidays:       cached.Holidays,
		MaxConcurrent:  cached.MaxConcurrent,
		CreatedAt:      cached.CreatedAt,
		UpdatedAt:      cached.UpdatedAt,
	}
	cfg.Normalize()
	return cfg, nil
}

// Set кладёт конфигурацию в кэш с TTL
func (c *Cache) Set(ctx context.Context, cfg *domain.CalendarConfig) error {
	raw, err := json.Marshal(cachedConfig{
		ID:             cfg.ID,
		Timezone:       cfg.Timezone,
		SlotMinutes:    cfg.SlotMinutes,
		MinLeadDays:    cfg.MinLeadDays,
		ClosedWeekdays: cfg.ClosedWeekdays,
		DefaultHours:   cfg.DefaultHours,
		Overrides:      cfg.Overrides,
		Holidays:       cfg.Holidays,
		MaxConcurrent:  cfg.MaxConcurrent,
		CreatedAt:      cfg.CreatedAt,
		UpdatedAt:      cfg.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("%w: Set - encode: %v", ErrCache, err)
	}

	if err := c.client.Set(ctx, cacheKey, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("%w: Set: %v", ErrCache, err)
	}
	return nil
}

// Invalidate удаляет конфигурацию из кэша
func (c *Cache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, cacheKey).Err(); err != nil {
		return fmt.Errorf("%w: Invalidate: %v", ErrCache, err)
	}
	return nil
}
