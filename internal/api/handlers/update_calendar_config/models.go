package update_calendar_config

import (
	"github.com/m04kA/SMC-SlotBooking/internal/service/calendar/models"
)

// UpdateCalendarConfigRequest HTTP request model, все поля опциональны.
// Значения не проверяются: некорректные приводятся нормализацией конфигурации при сохранении
type UpdateCalendarConfigRequest struct {
	Timezone       *string              `json:"timezone,omitempty"`
	SlotMinutes    *int                 `json:"slotMinutes,omitempty"`
	MinLeadDays    *int                 `json:"minLeadDays,omitempty"`
	ClosedWeekdays *[]int               `json:"closedWeekdays,omitempty"`
	DefaultHours   *[]string            `json:"defaultHours,omitempty"`
	Overrides      *map[string][]string `json:"overrides,omitempty"`
	Holidays       *[]string            `json:"holidays,omitempty"`
	MaxConcurrent  *int                 `json:"maxConcurrent,omitempty"`
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *UpdateCalendarConfigRequest) ToServiceRequest() *models.UpdateCalendarRequest {
	return &models.UpdateCalendarRequest{
		Timezone:       r.Timezone,
		SlotMinutes:    r.SlotMinutes,
		MinLeadDays:    r.MinLeadDays,
		ClosedWeekdays: r.ClosedWeekdays,
		DefaultHours:   r.DefaultHours,
		Overrides:      r.Overrides,
		Holidays:       r.Holidays,
		MaxConcurrent:  r.MaxConcurrent,
	}
}
