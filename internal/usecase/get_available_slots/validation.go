package get_available_slots

import (
	"fmt"
	"strings"

	"github.com/m04kA/SMC-SlotBooking/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	req.Date = strings.TrimSpace(req.Date)
	if req.Date == "" {
		return fmt.Errorf("%w: date is required", ErrInvalidDate)
	}

	if _, err := domain.ParseDate(req.Date); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}

	return nil
}
