package cancel_booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SlotBooking/internal/api/handlers"
	"github.com/m04kA/SMC-SlotBooking/internal/api/middleware"
	"github.com/m04kA/SMC-SlotBooking/internal/service/bookings"
)

const (
	msgInvalidBookingID   = "invalid booking id"
	msgInvalidRequestBody = "invalid request body"
	msgNotFound           = "booking not found"
	msgMissingAccountID   = "missing account"
	msgConcurrentUpdate   = "booking was changed concurrently, retry"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle DELETE /api/v1/bookings/{bookingId} и POST /api/v1/bookings/{bookingId}/cancel
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID, err := strconv.ParseInt(mux.Vars(r)["bookingId"], 10, 64)
	if err != nil {
		h.logger.Warn("%s /bookings/{id} - Invalid booking ID: %v", r.Method, err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	accountID, ok := middleware.GetAccountID(r.Context())
	if !ok {
		h.logger.Warn("%s /bookings/{id} - Missing account ID", r.Method)
		handlers.RespondUnauthorized(w, msgMissingAccountID)
		return
	}

	var req CancelBookingRequest
	if r.ContentLength != 0 {
		if err := handlers.DecodeJSON(r, &req); err != nil {
			h.logger.Warn("%s /bookings/{id} - Invalid request body: %v", r.Method, err)
			handlers.RespondBadRequest(w, msgInvalidRequestBody)
			return
		}
		if err := handlers.Validate(&req); err != nil {
			h.logger.Warn("%s /bookings/{id} - Validation failed: %v", r.Method, err)
			handlers.RespondBadRequest(w, err.Error())
			return
		}
	}

	result, err := h.service.Cancel(r.Context(), bookingID, req.ToServiceRequest(accountID))
	if err != nil {
		if errors.Is(err, bookings.ErrBookingNotFound) {
			h.logger.Warn("%s /bookings/{id} - Booking not found: booking_id=%d, account_id=%d",
				r.Method, bookingID, accountID)
			handlers.RespondNotFound(w, msgNotFound)
			return
		}
		if errors.Is(err, bookings.ErrConcurrentUpdate) {
			h.logger.Warn("%s /bookings/{id} - Concurrent update: booking_id=%d", r.Method, bookingID)
			handlers.RespondConflict(w, msgConcurrentUpdate)
			return
		}

		h.logger.Error("%s /bookings/{id} - Failed to cancel booking: booking_id=%d, error=%v",
			r.Method, bookingID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("%s /bookings/{id} - Booking cancelled: booking_id=%d, account_id=%d, action=%s",
		r.Method, bookingID, accountID, result.Action)
	handlers.RespondJSON(w, http.StatusOK, result)
}
