package calendar

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SlotBooking/internal/domain"
	cacheCalendar "github.com/m04kA/SMC-SlotBooking/internal/infra/cache/calendar"
	configRepo "github.com/m04kA/SMC-SlotBooking/internal/infra/storage/config"
	"github.com/m04kA/SMC-SlotBooking/internal/service/calendar/models"
)

// Service сервис конфигурации календаря.
// Чтения идут через кэш (если он подключён), запись сохраняет в БД и сбрасывает кэш
type Service struct {
	configRepo ConfigRepository
	cache      ConfigCache
	logger     Logger
}

// NewService создает новый экземпляр сервиса. cache может быть nil
func NewService(configRepo ConfigRepository, cache ConfigCache, logger Logger) *Service {
	return &Service{
		configRepo: configRepo,
		cache:      cache,
		logger:     logger,
	}
}

// Get возвращает нормализованную конфигурацию (кэш -> БД -> значения по умолчанию)
func (s *Service) Get(ctx context.Context) (*domain.CalendarConfig, error) {
	if s.cache != nil {
		cfg, err := s.cache.Get(ctx)
		if err == nil {
			return cfg, nil
		}
		if !errors.Is(err, cacheCalendar.ErrCacheMiss) {
			s.logger.Warn("Get: cache read failed, falling back to storage: %v", err)
		}
	}

	cfg, err := s.GetFresh(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cfg); err != nil {
			s.logger.Warn("Get: cache write failed: %v", err)
		}
	}

	return cfg, nil
}

// GetFresh читает конфигурацию из хранилища в обход кэша.
// Если конфигурация ещё не сохранялась, возвращает значения по умолчанию
func (s *Service) GetFresh(ctx context.Context) (*domain.CalendarConfig, error) {
	cfg, err := s.configRepo.Get(ctx)
	if err != nil {
		if errors.Is(err, configRepo.ErrConfigNotFound) {
			cfg = domain.NewDefaultCalendarConfig()
			cfg.Normalize()
			return cfg, nil
		}
		s.logger.Error("GetFresh: repository error: %v", err)
		return nil, fmt.Errorf("%w: GetFresh - repository error: %v", ErrInternal, err)
	}

	return cfg, nil
}

// Update частично обновляет конфигурацию. Сливаются только известные поля, overrides заменяется целиком
func (s *Service) Update(ctx context.Context, req *models.UpdateCalendarRequest) (*domain.CalendarConfig, error) {
	s.logger.Info("Update: updating calendar config")

	// 1. Нужно хотя бы одно известное поле, значения приводит нормализация
	if req == nil || req.IsEmpty() {
		s.logger.Warn("Update: empty update request")
		return nil, fmt.Errorf("%w: no recognized fields", ErrInvalidInput)
	}

	// 2. Читаем актуальную конфигурацию в обход кэша
	cfg, err := s.GetFresh(ctx)
	if err != nil {
		return nil, err
	}

	// 3. Сливаем изменения и сохраняем (нормализация выполняется в репозитории)
	req.ApplyTo(cfg)

	saved, err := s.configRepo.Save(ctx, cfg)
	if err != nil {
		s.logger.Error("Update: repository error: %v", err)
		return nil, fmt.Errorf("%w: Update - repository error: %v", ErrInternal, err)
	}

	// 4. Сбрасываем кэш
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.logger.Error("Update: cache invalidation failed: %v", err)
		}
	}

	s.logger.Info("Update: calendar config saved, timezone=%s, capacity=%d, overrides=%d",
		saved.Timezone, saved.Capacity(), len(saved.Overrides))
	return saved, nil
}
