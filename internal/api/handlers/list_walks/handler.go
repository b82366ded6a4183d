package list_walks

import (
	"net/http"

	"github.com/m04kA/SMC-WalkBookingService/internal/api/handlers"
)

type Handler struct {
	service WalkService
	logger  Logger
}

func NewHandler(service WalkService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/walks
// Возвращает только прогулки, открытые для бронирования
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.ListOpen(r.Context())
	if err != nil {
		h.logger.Error("GET /walks - Failed to list walks: %v", err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
