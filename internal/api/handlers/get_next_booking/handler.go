package get_next_booking

import (
	"net/http"
	"strconv"

	"github.com/m04kA/SMC-SlotBooking/internal/api/handlers"
	"github.com/m04kA/SMC-SlotBooking/internal/api/middleware"
)

const (
	msgMissingAccountID = "missing account"
	msgInvalidAddressID = "addressId must be a positive integer"
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

// Handle GET /api/v1/bookings/next?addressId=
// Отвечает null, если предстоящих бронирований нет
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountID(r.Context())
	if !ok {
		h.logger.Warn("GET /bookings/next - Missing account ID")
		handlers.RespondUnauthorized(w, msgMissingAccountID)
		return
	}

	addressID, err := strconv.ParseInt(r.URL.Query().Get("addressId"), 10, 64)
	if err != nil || addressID <= 0 {
		h.logger.Warn("GET /bookings/next - Invalid address ID: %q", r.URL.Query().Get("addressId"))
		handlers.RespondBadRequest(w, msgInvalidAddressID)
		return
	}

	booking, err := h.service.GetNextForAddress(r.Context(), accountID, addressID)
	if err != nil {
		h.logger.Error("GET /bookings/next - Failed to get next booking: account_id=%d, address_id=%d, error=%v",
			accountID, addressID, err)
		handlers.RespondInternalError(w)
		return
	}

	if booking == nil {
		h.logger.Info("GET /bookings/next - No upcoming booking: account_id=%d, address_id=%d", accountID, addressID)
		handlers.RespondJSON(w, http.StatusOK, nil)
		return
	}

	h.logger.Info("GET /bookings/next - Next booking found: booking_id=%d, account_id=%d", booking.ID, accountID)
	handlers.RespondJSON(w, http.StatusOK, booking)
}
