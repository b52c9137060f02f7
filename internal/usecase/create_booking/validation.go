package create_booking

import (
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-SlotBooking/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.AccountID <= 0 {
		return fmt.Errorf("%w: accountID must be positive", ErrInvalidInput)
	}

	if req.AddressID <= 0 {
		return fmt.Errorf("%w: addressId is required", ErrInvalidInput)
	}

	service := strings.TrimSpace(req.Service)
	if service == "" {
		return fmt.Errorf("%w: service is required", ErrInvalidInput)
	}
	if len(service) > domain.MaxServiceLength {
		return fmt.Errorf("%w: service is too long", ErrInvalidInput)
	}

	note := strings.TrimSpace(req.Note)
	if note == "" {
		return fmt.Errorf("%w: note is required", ErrInvalidInput)
	}
	if len(note) > domain.MaxNoteLength {
		return fmt.Errorf("%w: note is too long", ErrInvalidInput)
	}

	if strings.TrimSpace(req.Date) == "" {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	if len(req.Images) > domain.MaxImagesPerBooking {
		return fmt.Errorf("%w: at most %d images allowed", ErrInvalidInput, domain.MaxImagesPerBooking)
	}

	if req.RescheduleBookingID != nil && *req.RescheduleBookingID <= 0 {
		return fmt.Errorf("%w: rescheduleBookingId must be positive", ErrInvalidInput)
	}

	return nil
}

// parseSlotDate разбирает дату бронирования: RFC 3339 или "YYYY-MM-DDTHH:MM" в зоне календаря
func parseSlotDate(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)

	if instant, err := time.Parse(time.RFC3339, raw); err == nil {
		return instant, nil
	}

	instant, err := time.ParseInLocation(domain.LocalSlotFormat, raw, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
	}
	return instant, nil
}
