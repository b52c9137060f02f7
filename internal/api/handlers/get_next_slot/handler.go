package get_next_slot

import (
	"net/http"

	"github.com/m04kA/SMC-SlotBooking/internal/api/handlers"
	"github.com/m04kA/SMC-SlotBooking/internal/assistant"
)

type Handler struct {
	useCase NextAvailableSlotUseCase
	logger  Logger
}

func NewHandler(useCase NextAvailableSlotUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/calendar/next-slot
// Query params: q (опционально, текст вопроса клиента)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	result, err := h.useCase.Execute(r.Context())
	if err != nil {
		h.logger.Error("GET /calendar/next-slot - Failed to find next slot: %v", err)
		handlers.RespondInternalError(w)
		return
	}

	response := FromUseCaseResponse(result)
	if q := r.URL.Query().Get("q"); q != "" {
		matched := assistant.IsAppointmentQuery(q)
		response.Matched = &matched
	}

	h.logger.Info("GET /calendar/next-slot - Next slot resolved: found=%t", result != nil)
	handlers.RespondJSON(w, http.StatusOK, response)
}
