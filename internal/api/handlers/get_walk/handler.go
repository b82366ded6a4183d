package get_walk

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-WalkBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-WalkBookingService/internal/service/walks"
)

const (
	msgInvalidWalkID = "некорректный ID прогулки"
	msgNotFound      = "прогулка не найдена"
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

// Handle GET /api/v1/walks/{walkId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	walkID, err := handlers.PathInt64(r, "walkId")
	if err != nil {
		h.logger.Warn("GET /walks/{id} - Invalid walk ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidWalkID)
		return
	}

	walk, err := h.service.GetByID(r.Context(), walkID)
	if err != nil {
		if errors.Is(err, walks.ErrWalkNotFound) {
			handlers.RespondNotFound(w, msgNotFound)
			return
		}
		h.logger.Error("GET /walks/{id} - Failed to get walk: walk_id=%d, error=%v", walkID, err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, walk)
}
