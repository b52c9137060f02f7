package get_user_bookings

import (
	"net/http"

	"github.com/m04kA/SMC-SlotBooking/internal/api/handlers"
	"github.com/m04kA/SMC-SlotBooking/internal/api/middleware"
)

const (
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

// Handle GET /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountID(r.Context())
	if !ok {
		h.logger.Warn("GET /bookings - Missing account ID")
		handlers.RespondUnauthorized(w, msgMissingAccountID)
		return
	}

	result, err := h.service.GetAccountBookings(r.Context(), accountID)
	if err != nil {
		h.logger.Error("GET /bookings - Failed to get bookings: account_id=%d, error=%v", accountID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /bookings - Bookings retrieved successfully: account_id=%d, count=%d",
		accountID, len(result.Bookings))
	handlers.RespondJSON(w, http.StatusOK, result.Bookings)
}
