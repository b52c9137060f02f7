package get_booking

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
	msgInvalidBookingID = "invalid booking id"
	msgNotFound         = "booking not found"
	msgMissingAccountID = "missing account"
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

// Handle GET /api/v1/bookings/{bookingId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID, err := strconv.ParseInt(mux.Vars(r)["bookingId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /bookings/{id} - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	accountID, ok := middleware.GetAccountID(r.Context())
	if !ok {
		h.logger.Warn("GET /bookings/{id} - Missing account ID")
		handlers.RespondUnauthorized(w, msgMissingAccountID)
		return
	}

	// Чужое бронирование неотличимо от отсутствующего
	booking, err := h.service.GetByID(r.Context(), bookingID, accountID)
	if err != nil {
		if errors.Is(err, bookings.ErrBookingNotFound) {
			h.logger.Warn("GET /bookings/{id} - Booking not found: booking_id=%d, account_id=%d", bookingID, accountID)
			handlers.RespondNotFound(w, msgNotFound)
			return
		}

		h.logger.Error("GET /bookings/{id} - Failed to get booking: booking_id=%d, error=%v", bookingID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /bookings/{id} - Booking retrieved successfully: booking_id=%d, account_id=%d",
		bookingID, accountID)
	handlers.RespondJSON(w, http.StatusOK, booking)
}
