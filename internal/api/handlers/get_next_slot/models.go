package get_next_slot

import (
	"time"

	"github.com/m04kA/SMC-SlotBooking/internal/assistant"
	nextAvailableSlot "github.com/m04kA/SMC-SlotBooking/internal/usecase/next_available_slot"
)

// NextSlotResponse HTTP response model. nextSlot равен null, если свободных слотов нет
type NextSlotResponse struct {
	NextSlot *time.Time `json:"nextSlot"`
	Date     string     `json:"date,omitempty"`
	Time     string     `json:"time,omitempty"`
	Timezone string     `json:"timezone,omitempty"`
	Message  string     `json:"message"`
	Matched  *bool      `json:"matched,omitempty"` // только при переданном q
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *nextAvailableSlot.Response) *NextSlotResponse {
	if resp == nil {
		return &NextSlotResponse{Message: assistant.DescribeNextSlot(nil, time.UTC)}
	}

	loc, err := time.LoadLocation(resp.Timezone)
	if err != nil {
		loc = time.UTC
	}
	slot := resp.NextSlot

	return &NextSlotResponse{
		NextSlot: &slot,
		Date:     resp.Date,
		Time:     resp.Time,
		Timezone: resp.Timezone,
		Message:  assistant.DescribeNextSlot(&slot, loc),
	}
}
