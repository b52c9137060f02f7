package models

import (
	"time"

	"github.com/m04kA/SMC-SlotBooking/internal/domain"
)

// Действия при отмене бронирования владельцем
const (
	ActionDeleted         = "deleted"
	ActionCanceled        = "canceled"
	ActionAlreadyCanceled = "already_canceled"
)

// Request модели

// CancelBookingRequest запрос владельца на отмену или удаление
type CancelBookingRequest struct {
	AccountID          int64  `json:"accountId"`
	CancellationReason string `json:"cancellationReason,omitempty"`
}

// UpdateStatusRequest запрос администратора на смену статуса
type UpdateStatusRequest struct {
	Status             string `json:"status"`
	CancellationReason string `json:"cancellationReason,omitempty"`
}

// GetBookingsRequest фильтр списка бронирований для администратора
type GetBookingsRequest struct {
	AccountID       *int64     `json:"accountId,omitempty"`
	AddressID       *int64     `json:"addressId,omitempty"`
	From            *time.Time `json:"from,omitempty"`
	To              *time.Time `json:"to,omitempty"`
	Status          *string    `json:"status,omitempty"`
	IncludeInactive bool       `json:"includeInactive,omitempty"`
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *GetBookingsRequest) ToDomainFilter() (domain.BookingsFilter, error) {
	filter := domain.BookingsFilter{
		AccountID:       r.AccountID,
		AddressID:       r.AddressID,
		From:            r.From,
		To:              r.To,
		IncludeInactive: r.IncludeInactive,
	}

	if r.Status != nil {
		status, err := domain.ParseBookingStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// Response модели

// AddressResponse снимок адреса
type AddressResponse struct {
	Line1  string `json:"line1"`
	City   string `json:"city"`
	State  string `json:"state"`
	Zip    string `json:"zip"`
	County string `json:"county"`
}

// StatusChangeResponse запись истории статусов
type StatusChangeResponse struct {
	Status    string    `json:"status"`
	ChangedAt time.Time `json:"changedAt"`
}

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID            int64     `json:"id"`
	BookingNumber string    `json:"bookingNumber"`
	AccountID     int64     `json:"accountId"`
	AddressID     int64     `json:"addressId"`
	Date          time.Time `json:"date"`     // момент начала слота
	SlotDate      string    `json:"slotDate"` // "2026-07-03" в зоне календаря
	SlotTime      string    `json:"slotTime"` // "09:00"
	Service       string    `json:"service"`
	Note          string    `json:"note"`
	Images        []string  `json:"images"`

	// Денормализованные данные
	CustomerName string          `json:"customerName"`
	Email        string          `json:"email"`
	Phone        string          `json:"phone,omitempty"`
	Address      AddressResponse `json:"address"`
	Plan         string          `json:"plan"`

	Status             string                 `json:"status"`
	StatusHistory      []StatusChangeResponse `json:"statusHistory"`
	CancellationReason *string                `json:"cancellationReason,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// CancelResponse результат отмены владельцем
type CancelResponse struct {
	OK      bool   `json:"ok"`
	Action  string `json:"action"`
	Message string `json:"message"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	history := make([]StatusChangeResponse, 0, len(b.StatusHistory))
	for _, h := range b.StatusHistory {
		history = append(history, StatusChangeResponse{Status: string(h.Status), ChangedAt: h.ChangedAt})
	}

	images := b.Images
	if images == nil {
		images = []string{}
	}

	return &BookingResponse{
		ID:            b.ID,
		BookingNumber: b.BookingNumber,
		AccountID:     b.AccountID,
		AddressID:     b.AddressID,
		Date:          b.SlotAt,
		SlotDate:      b.SlotKey.YMD,
		SlotTime:      b.SlotKey.Time.String(),
		Service:       b.Service,
		Note:          b.Note,
		Images:        images,
		CustomerName:  b.CustomerName,
		Email:         b.Email,
		Phone:         b.Phone,
		Address: AddressResponse{
			Line1:  b.Address.Line1,
			City:   b.Address.City,
			State:  b.Address.State,
			Zip:    b.Address.Zip,
			County: b.Address.County,
		},
		Plan:               b.Plan,
		Status:             string(b.Status),
		StatusHistory:      history,
		CancellationReason: b.CancellationReason,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(bookings)),
	}

	for _, b := range bookings {
		if bookingResp := FromDomainBooking(b); bookingResp != nil {
			resp.Bookings = append(resp.Bookings, *bookingResp)
		}
	}

	return resp
}

// NotificationVars переменные шаблонов уведомлений о бронировании
func NotificationVars(b *domain.Booking, loc *time.Location) map[string]string {
	return map[string]string{
		"name":          b.CustomerName,
		"bookingNumber": b.BookingNumber,
		"service":       b.Service,
		"date":          b.SlotAt.In(loc).Format("Mon, Jan 2, 2006 3:04 PM MST"),
		"address":       b.Address.Line1,
		"city":          b.Address.City,
		"status":        string(b.Status),
		"note":          b.Note,
	}
}
