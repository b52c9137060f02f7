package get_calendar_config

import (
	"net/http"

	"github.com/m04kA/SMC-SlotBooking/internal/api/handlers"
	"github.com/m04kA/SMC-SlotBooking/internal/service/calendar/models"
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

// Handle GET /api/v1/calendar/config и GET /api/v1/admin/calendar
// Если конфигурация не сохранена, сервис отдаёт значения по умолчанию
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.service.Get(r.Context())
	if err != nil {
		h.logger.Error("GET /calendar/config - Failed to get config: %v", err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /calendar/config - Config retrieved successfully: timezone=%s, capacity=%d",
		cfg.Timezone, cfg.Capacity())
	handlers.RespondJSON(w, http.StatusOK, models.FromDomainConfig(cfg))
}
