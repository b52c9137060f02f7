package update_calendar_config

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SlotBooking/internal/api/handlers"
	"github.com/m04kA/SMC-SlotBooking/internal/service/calendar"
	"github.com/m04kA/SMC-SlotBooking/internal/service/calendar/models"
)

const (
	msgInvalidRequestBody = "invalid request body"
	msgInvalidData        = "invalid calendar configuration"
)

type Handler struct {
	service CalendarService
	logger  Logger
}

func NewHandler(service CalendarService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PUT /api/v1/admin/calendar
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req UpdateCalendarConfigRequest
	if err := handlers.DecodeJSONLenient(r, &req); err != nil {
		h.logger.Warn("PUT /admin/calendar - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	cfg, err := h.service.Update(r.Context(), req.ToServiceRequest())
	if err != nil {
		if errors.Is(err, calendar.ErrInvalidInput) {
			h.logger.Warn("PUT /admin/calendar - Invalid data: %v", err)
			handlers.RespondBadRequest(w, msgInvalidData)
			return
		}

		h.logger.Error("PUT /admin/calendar - Failed to update config: %v", err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("PUT /admin/calendar - Config updated successfully: timezone=%s, capacity=%d",
		cfg.Timezone, cfg.Capacity())
	handlers.RespondJSON(w, http.StatusOK, models.FromDomainConfig(cfg))
}
