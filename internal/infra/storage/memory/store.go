package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m04kA/SMC-SlotBooking/internal/domain"
)

// Store хранилище в памяти для всех репозиториев сервиса.
// Все операции сериализуются одним мьютексом. Транзакция держит мьютекс целиком
// и при ошибке восстанавливает снимок данных, поэтому откат работает как в Postgres
type Store struct {
	mu sync.Mutex

	config   *domain.CalendarConfig
	bookings map[int64]*domain.Booking
	counters map[domain.SlotKey]*domain.SlotCounter
	nextID   int64

	now func() time.Time
}

// NewStore создает пустое хранилище
func NewStore() *Store {
	return &Store{
		bookings: make(map[int64]*domain.Booking),
		counters: make(map[domain.SlotKey]*domain.SlotCounter),
		nextID:   1,
		now:      time.Now,
	}
}

// Bookings возвращает репозиторий бронирований поверх хранилища
func (s *Store) Bookings() *BookingRepository {
	return &BookingRepository{store: s}
}

// SlotCounters возвращает репозиторий счетчиков слотов
func (s *Store) SlotCounters() *SlotCounterRepository {
	return &SlotCounterRepository{store: s}
}

// Config возвращает репозиторий конфигурации календаря
func (s *Store) Config() *ConfigRepository {
	return &ConfigRepository{store: s}
}

// TxManager возвращает менеджер транзакций
func (s *Store) TxManager() *TxManager {
	return &TxManager{store: s}
}

type txKey struct{}

func inTx(ctx context.Context) bool {
	v, _ := ctx.Value(txKey{}).(bool)
	return v
}

// lock берёт мьютекс, если вызов не внутри транзакции (там он уже взят)
func (s *Store) lock(ctx context.Context) func() {
	if inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

type snapshot struct {
	config   *domain.CalendarConfig
	bookings map[int64]*domain.Booking
	counters map[domain.SlotKey]*domain.SlotCounter
	nextID   int64
}

func (s *Store) snapshot() snapshot {
	snap := snapshot{
		bookings: make(map[int64]*domain.Booking, len(s.bookings)),
		counters: make(map[domain.SlotKey]*domain.SlotCounter, len(s.counters)),
		nextID:   s.nextID,
	}
	if s.config != nil {
		snap.config = s.config.Clone()
	}
	for id, b := range s.bookings {
		snap.bookings[id] = cloneBooking(b)
	}
	for k, c := range s.counters {
		cp := *c
		snap.counters[k] = &cp
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.config = snap.config
	s.bookings = snap.bookings
	s.counters = snap.counters
	s.nextID = snap.nextID
}

func cloneBooking(b *domain.Booking) *domain.Booking {
	cp := *b
	cp.Images = append([]string{}, b.Images...)
	cp.StatusHistory = append([]domain.StatusChange{}, b.StatusHistory...)
	if b.CancellationReason != nil {
		reason := *b.CancellationReason
		cp.CancellationReason = &reason
	}
	return &cp
}
