package update_walk_status

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-WalkBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-WalkBookingService/internal/service/walks"
	"github.com/m04kA/SMC-WalkBookingService/internal/service/walks/models"
)

const (
	msgInvalidWalkID      = "некорректный ID прогулки"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgNotFound           = "прогулка не найдена"
	msgInvalidTransition  = "недопустимая смена статуса прогулки"
	msgBusy               = "прогулка изменяется параллельно, повторите попытку"
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

// Handle PATCH /api/v1/walks/{walkId}/status
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	walkID, err := handlers.PathInt64(r, "walkId")
	if err != nil {
		h.logger.Warn("PATCH /walks/{id}/status - Invalid walk ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidWalkID)
		return
	}

	var req models.UpdateStatusRequest
	if err := handlers.DecodeJSON(r, &req); err != nil || req.Status == "" {
		h.logger.Warn("PATCH /walks/{id}/status - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	walk, err := h.service.UpdateStatus(r.Context(), walkID, &req)
	if err != nil {
		switch {
		case errors.Is(err, walks.ErrWalkNotFound):
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, walks.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidRequestBody)

		case errors.Is(err, walks.ErrInvalidTransition):
			handlers.RespondConflict(w, msgInvalidTransition)

		case errors.Is(err, walks.ErrConcurrentUpdate):
			handlers.RespondConflict(w, msgBusy)

		default:
			h.logger.Error("PATCH /walks/{id}/status - Failed to update walk: walk_id=%d, error=%v", walkID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /walks/{id}/status - Walk status updated: walk_id=%d, status=%s", walkID, walk.Status)
	handlers.RespondJSON(w, http.StatusOK, walk)
}
