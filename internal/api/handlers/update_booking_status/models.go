package update_booking_status

import (
	"github.com/m04kA/SMC-SlotBooking/internal/service/bookings/models"
)

// UpdateBookingStatusRequest HTTP request model
type UpdateBookingStatusRequest struct {
	Status             string `json:"status" validate:"required"`
	CancellationReason string `json:"cancellationReason,omitempty" validate:"max=500"`
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *UpdateBookingStatusRequest) ToServiceRequest() *models.UpdateStatusRequest {
	return &models.UpdateStatusRequest{
		Status:             r.Status,
		CancellationReason: r.CancellationReason,
	}
}
