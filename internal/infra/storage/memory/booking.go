package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/m04kA/SMC-SlotBooking/internal/domain"
	"github.com/m04kA/SMC-SlotBooking/internal/infra/storage/booking"
)

// BookingRepository бронирования в памяти
type BookingRepository struct {
	store *Store
}

func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	defer r.store.lock(ctx)()

	for _, existing := range r.store.bookings {
		if existing.BookingNumber == b.BookingNumber {
			return nil, booking.ErrDuplicateBookingNumber
		}
	}

	now := r.store.now()
	b.ID = r.store.nextID
	b.CreatedAt = now
	b.UpdatedAt = now
	if b.Images == nil {
		b.Images = []string{}
	}
	if b.StatusHistory == nil {
		b.StatusHistory = []domain.StatusChange{}
	}
	r.store.nextID++

	r.store.bookings[b.ID] = cloneBooking(b)
	return b, nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	defer r.store.lock(ctx)()

	b, ok := r.store.bookings[id]
	if !ok {
		return nil, booking.ErrBookingNotFound
	}
	return cloneBooking(b), nil
}

func (r *BookingRepository) GetByIDAndAccount(ctx context.Context, id, accountID int64) (*domain.Booking, error) {
	defer r.store.lock(ctx)()

	b, ok := r.store.bookings[id]
	if !ok || b.AccountID != accountID {
		return nil, booking.ErrBookingNotFound
	}
	return cloneBooking(b), nil
}

func (r *BookingRepository) GetByAccountID(ctx context.Context, accountID int64) ([]*domain.Booking, error) {
	defer r.store.lock(ctx)()

	return r.collect(func(b *domain.Booking) bool { return b.AccountID == accountID }), nil
}

func (r *BookingRepository) FindUpcomingForAddress(
	ctx context.Context,
	accountID, addressID int64,
	from time.Time,
	excludeID *int64,
) (*domain.Booking, error) {
	defer r.store.lock(ctx)()

	found := r.collect(func(b *domain.Booking) bool {
		if excludeID != nil && b.ID == *excludeID {
			return false
		}
		return b.AccountID == accountID &&
			b.AddressID == addressID &&
			b.IsLive() &&
			!b.SlotAt.Before(from)
	})
	if len(found) == 0 {
		return nil, booking.ErrBookingNotFound
	}
	return found[0], nil
}

func (r *BookingRepository) GetWithFilter(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error) {
	defer r.store.lock(ctx)()

	return r.collect(func(b *domain.Booking) bool {
		if filter.AccountID != nil && b.AccountID != *filter.AccountID {
			return false
		}
		if filter.AddressID != nil && b.AddressID != *filter.AddressID {
			return false
		}
		if filter.From != nil && b.SlotAt.Before(*filter.From) {
			return false
		}
		if filter.To != nil && !b.SlotAt.Before(*filter.To) {
			return false
		}
		if filter.Status != nil {
			return strings.EqualFold(string(b.Status), string(*filter.Status))
		}
		return filter.IncludeInactive || b.IsLive()
	}), nil
}

func (r *BookingRepository) GetLiveBetween(ctx context.Context, from, to time.Time) ([]*domain.Booking, error) {
	defer r.store.lock(ctx)()

	return r.collect(func(b *domain.Booking) bool {
		return b.IsLive() && !b.SlotAt.Before(from) && b.SlotAt.Before(to)
	}), nil
}

func (r *BookingRepository) CountLiveAt(ctx context.Context, instant time.Time) (int, error) {
	defer r.store.lock(ctx)()

	count := 0
	for _, b := range r.store.bookings {
		if b.IsLive() && b.SlotAt.Equal(instant) {
			count++
		}
	}
	return count, nil
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus, change domain.StatusChange) error {
	defer r.store.lock(ctx)()

	b, ok := r.store.bookings[id]
	if !ok {
		return booking.ErrBookingNotFound
	}
	if b.Status != change.Status {
		return booking.ErrStatusChanged
	}
	b.Status = status
	b.StatusHistory = append(b.StatusHistory, change)
	b.UpdatedAt = r.store.now()
	return nil
}

func (r *BookingRepository) SetCancellationReason(ctx context.Context, id int64, reason string) error {
	defer r.store.lock(ctx)()

	b, ok := r.store.bookings[id]
	if !ok {
		return booking.ErrBookingNotFound
	}
	b.CancellationReason = &reason
	return nil
}

func (r *BookingRepository) Delete(ctx context.Context, id int64, status domain.BookingStatus) error {
	defer r.store.lock(ctx)()

	b, ok := r.store.bookings[id]
	if !ok {
		return booking.ErrBookingNotFound
	}
	if b.Status != status {
		return booking.ErrStatusChanged
	}
	delete(r.store.bookings, id)
	return nil
}

// LockAccountAddress внутри транзакции хранилище уже заблокировано целиком
func (r *BookingRepository) LockAccountAddress(ctx context.Context, accountID, addressID int64) error {
	return nil
}

// collect возвращает копии подходящих бронирований по возрастанию времени слота
func (r *BookingRepository) collect(match func(b *domain.Booking) bool) []*domain.Booking {
	out := make([]*domain.Booking, 0)
	for _, b := range r.store.bookings {
		if match(b) {
			out = append(out, cloneBooking(b))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].SlotAt.Equal(out[j].SlotAt) {
			return out[i].SlotAt.Before(out[j].SlotAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
