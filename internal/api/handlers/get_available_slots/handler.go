package get_available_slots

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SlotBooking/internal/api/handlers"
	getAvailableSlots "github.com/m04kA/SMC-SlotBooking/internal/usecase/get_available_slots"
)

const (
	msgMissingDate = "date is required"
	msgInvalidDate = "invalid date format, expected YYYY-MM-DD"
)

type Handler struct {
	useCase GetAvailableSlotsUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailableSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/calendar/slots
// Query params: date (required, YYYY-MM-DD)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		h.logger.Warn("GET /calendar/slots - Missing date")
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &getAvailableSlots.Request{Date: date})
	if err != nil {
		if errors.Is(err, getAvailableSlots.ErrInvalidDate) {
			h.logger.Warn("GET /calendar/slots - Invalid date: date=%q", date)
			handlers.RespondBadRequest(w, msgInvalidDate)
			return
		}

		h.logger.Error("GET /calendar/slots - Failed to get slots: date=%s, error=%v", date, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /calendar/slots - Slots retrieved successfully: date=%s, slots_count=%d",
		date, len(result.Slots))
	handlers.RespondJSON(w, http.StatusOK, result)
}
