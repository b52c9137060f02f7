package domain

import (
	"errors"
	"strings"
	"time"
)

// ErrUnknownStatus возвращается для статуса, не входящего в известный набор
var ErrUnknownStatus = errors.New("domain: unknown booking status")

// BookingStatus статус бронирования
type BookingStatus string

const (
	StatusPending   BookingStatus = "Pending"
	StatusConfirmed BookingStatus = "Confirmed"
	StatusCompleted BookingStatus = "Completed"
	StatusCanceled  BookingStatus = "Canceled"
)

// AdminStatuses статусы, которые может выставить администратор
var AdminStatuses = []BookingStatus{StatusPending, StatusConfirmed, StatusCompleted, StatusCanceled}

// terminalStatuses статусы (в нижнем регистре, включая унаследованные синонимы),
// при которых бронирование не занимает слот
var terminalStatuses = map[string]struct{}{
	"canceled":  {},
	"cancelled": {},
	"completed": {},
	"complete":  {},
	"done":      {},
	"failed":    {},
	"no-show":   {},
	"noshow":    {},
}

// TerminalStatusValues возвращает терминальные статусы в нижнем регистре (для SQL-фильтров)
func TerminalStatusValues() []string {
	out := make([]string, 0, len(terminalStatuses))
	for s := range terminalStatuses {
		out = append(out, s)
	}
	return out
}

// ParseBookingStatus парсит статус без учета регистра, поддерживая унаследованные синонимы
func ParseBookingStatus(s string) (BookingStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending":
		return StatusPending, nil
	case "confirmed":
		return StatusConfirmed, nil
	case "completed", "complete", "done":
		return StatusCompleted, nil
	case "canceled", "cancelled":
		return StatusCanceled, nil
	default:
		return "", ErrUnknownStatus
	}
}

// IsLive сообщает, что статус занимает слот
func (s BookingStatus) IsLive() bool {
	_, terminal := terminalStatuses[strings.ToLower(string(s))]
	return !terminal
}

func (s BookingStatus) IsCanceled() bool {
	v := strings.ToLower(string(s))
	return v == "canceled" || v == "cancelled"
}

// IsFreelyDeletable сообщает, что владелец может удалить бронирование физически
func (s BookingStatus) IsFreelyDeletable() bool {
	switch strings.ToLower(string(s)) {
	case "pending", "completed", "complete":
		return true
	default:
		return false
	}
}

// StatusChange запись истории статусов
type StatusChange struct {
	Status    BookingStatus `json:"status"`
	ChangedAt time.Time     `json:"changedAt"`
}

// AddressSnapshot копия адреса на момент бронирования
type AddressSnapshot struct {
	Line1  string
	City   string
	State  string
	Zip    string
	County string
}

// Booking бронирование слота
type Booking struct {
	ID            int64
	BookingNumber string
	AccountID     int64
	AddressID     int64
	SlotAt        time.Time // момент начала слота
	SlotKey       SlotKey   // ключ счетчика, на который взята вместимость
	Service       string
	Note          string
	Images        []string

	// Денормализованные данные на момент бронирования
	CustomerName string
	Email        string
	Phone        string
	Address      AddressSnapshot
	Plan         string

	Status             BookingStatus
	StatusHistory      []StatusChange
	CancellationReason *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsLive сообщает, что бронирование занимает слот
func (b *Booking) IsLive() bool {
	return b.Status.IsLive()
}

// IsUpcoming сообщает, что бронирование живое и ещё не наступило
func (b *Booking) IsUpcoming(now time.Time) bool {
	return b.IsLive() && !b.SlotAt.Before(now)
}

// BookingsFilter фильтр списка бронирований для администратора
type BookingsFilter struct {
	AccountID       *int64
	AddressID       *int64
	From            *time.Time
	To              *time.Time
	Status          *BookingStatus
	IncludeInactive bool
}
