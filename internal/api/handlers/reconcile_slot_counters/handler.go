package reconcile_slot_counters

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/m04kA/SMC-SlotBooking/internal/api/handlers"
	reconcile "github.com/m04kA/SMC-SlotBooking/internal/usecase/reconcile_slot_counters"
)

const (
	msgInvalidHorizon = "horizonDays must be a positive integer"
)

type Handler struct {
	useCase            ReconcileUseCase
	defaultHorizonDays int
	logger             Logger
}

func NewHandler(useCase ReconcileUseCase, defaultHorizonDays int, logger Logger) *Handler {
	return &Handler{
		useCase:            useCase,
		defaultHorizonDays: defaultHorizonDays,
		logger:             logger,
	}
}

// Handle POST /api/v1/admin/slot-counters/reconcile
// Query params: horizonDays (опционально)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	horizon := h.defaultHorizonDays
	if raw := r.URL.Query().Get("horizonDays"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			h.logger.Warn("POST /admin/slot-counters/reconcile - Invalid horizon: %q", raw)
			handlers.RespondBadRequest(w, msgInvalidHorizon)
			return
		}
		horizon = n
	}

	result, err := h.useCase.Execute(r.Context(), &reconcile.Request{HorizonDays: horizon})
	if err != nil {
		if errors.Is(err, reconcile.ErrInvalidInput) {
			h.logger.Warn("POST /admin/slot-counters/reconcile - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidHorizon)
			return
		}

		h.logger.Error("POST /admin/slot-counters/reconcile - Failed to reconcile: %v", err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("POST /admin/slot-counters/reconcile - Done: checked=%d, corrections=%d",
		result.Checked, len(result.Corrections))
	handlers.RespondJSON(w, http.StatusOK, result)
}
