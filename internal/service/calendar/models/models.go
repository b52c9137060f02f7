package models

import (
	"time"

	"github.com/m04kA/SMC-SlotBooking/internal/domain"
	"github.com/m04kA/SMC-SlotBooking/pkg/types"
)

// Request модели

// UpdateCalendarRequest частичное обновление конфигурации.
// nil означает "поле не передано". Overrides при наличии заменяет отображение целиком
type UpdateCalendarRequest struct {
	Timezone       *string              `json:"timezone,omitempty"`
	SlotMinutes    *int                 `json:"slotMinutes,omitempty"`
	MinLeadDays    *int                 `json:"minLeadDays,omitempty"`
	ClosedWeekdays *[]int               `json:"closedWeekdays,omitempty"`
	DefaultHours   *[]string            `json:"defaultHours,omitempty"`
	Overrides      *map[string][]string `json:"overrides,omitempty"`
	Holidays       *[]string            `json:"holidays,omitempty"`
	MaxConcurrent  *int                 `json:"maxConcurrent,omitempty"`
}

// IsEmpty сообщает, что в запросе нет ни одного известного поля
func (r *UpdateCalendarRequest) IsEmpty() bool {
	return r.Timezone == nil &&
		r.SlotMinutes == nil &&
		r.MinLeadDays == nil &&
		r.ClosedWeekdays == nil &&
		r.DefaultHours == nil &&
		r.Overrides == nil &&
		r.Holidays == nil &&
		r.MaxConcurrent == nil
}

// ApplyTo переносит переданные поля в конфигурацию
func (r *UpdateCalendarRequest) ApplyTo(cfg *domain.CalendarConfig) {
	if r.Timezone != nil {
		cfg.Timezone = *r.Timezone
	}
	if r.SlotMinutes != nil {
		cfg.SlotMinutes = *r.SlotMinutes
	}
	if r.MinLeadDays != nil {
		cfg.MinLeadDays = *r.MinLeadDays
	}
	if r.ClosedWeekdays != nil {
		cfg.ClosedWeekdays = append([]int{}, (*r.ClosedWeekdays)...)
	}
	if r.DefaultHours != nil {
		cfg.DefaultHours = toTimeStrings(*r.DefaultHours)
	}
	if r.Overrides != nil {
		overrides := make(domain.HourOverrides, len(*r.Overrides))
		for date, hours := range *r.Overrides {
			overrides[date] = toTimeStrings(hours)
		}
		cfg.Overrides = overrides
	}
	if r.Holidays != nil {
		cfg.Holidays = append([]string{}, (*r.Holidays)...)
	}
	if r.MaxConcurrent != nil {
		cfg.MaxConcurrent = *r.MaxConcurrent
	}
}

// Response модели

// CalendarResponse нормализованная конфигурация, overrides в виде обычного объекта дата -> часы
type CalendarResponse struct {
	Timezone       string              `json:"timezone"`
	SlotMinutes    int                 `json:"slotMinutes"`
	MinLeadDays    int                 `json:"minLeadDays"`
	ClosedWeekdays []int               `json:"closedWeekdays"`
	DefaultHours   []string            `json:"defaultHours"`
	Overrides      map[string][]string `json:"overrides"`
	Holidays       []string            `json:"holidays"`
	MaxConcurrent  int                 `json:"maxConcurrent"`
	UpdatedAt      *time.Time          `json:"updatedAt,omitempty"`
}

// FromDomainConfig конвертирует domain модель в DTO
func FromDomainConfig(c *domain.CalendarConfig) *CalendarResponse {
	if c == nil {
		return nil
	}

	overrides := make(map[string][]string, len(c.Overrides))
	for _, date := range c.Overrides.Dates() {
		overrides[date] = fromTimeStrings(c.Overrides[date])
	}

	resp := &CalendarResponse{
		Timezone:       c.Timezone,
		SlotMinutes:    c.SlotMinutes,
		MinLeadDays:    c.MinLeadDays,
		ClosedWeekdays: append([]int{}, c.ClosedWeekdays...),
		DefaultHours:   fromTimeStrings(c.DefaultHours),
		Overrides:      overrides,
		Holidays:       append([]string{}, c.Holidays...),
		MaxConcurrent:  c.Capacity(),
	}
	if !c.UpdatedAt.IsZero() {
		updatedAt := c.UpdatedAt
		resp.UpdatedAt = &updatedAt
	}

	return resp
}

func toTimeStrings(in []string) []types.TimeString {
	out := make([]types.TimeString, 0, len(in))
	for _, s := range in {
		out = append(out, types.TimeString(s))
	}
	return out
}

func fromTimeStrings(in []types.TimeString) []string {
	out := make([]string, 0, len(in))
	for _, t := range in {
		out = append(out, t.String())
	}
	return out
}
