package resize_walk

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
	msgInvalidCapacity    = "вместимость меньше числа уже забронированных мест"
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

// Handle PATCH /api/v1/walks/{walkId}/capacity
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	walkID, err := handlers.PathInt64(r, "walkId")
	if err != nil {
		h.logger.Warn("PATCH /walks/{id}/capacity - Invalid walk ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidWalkID)
		return
	}

	var req models.ResizeRequest
	if err := handlers.DecodeJSON(r, &req); err != nil || req.MaxPlaces <= 0 {
		h.logger.Warn("PATCH /walks/{id}/capacity - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	walk, err := h.service.Resize(r.Context(), walkID, &req)
	if err != nil {
		switch {
		case errors.Is(err, walks.ErrWalkNotFound):
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, walks.ErrInvalidCapacity):
			h.logger.Warn("PATCH /walks/{id}/capacity - Invalid capacity: walk_id=%d, max=%d", walkID, req.MaxPlaces)
			handlers.RespondConflict(w, msgInvalidCapacity)

		case errors.Is(err, walks.ErrConcurrentUpdate):
			handlers.RespondConflict(w, msgBusy)

		default:
			h.logger.Error("PATCH /walks/{id}/capacity - Failed to resize walk: walk_id=%d, error=%v", walkID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /walks/{id}/capacity - Walk resized: walk_id=%d, max=%d, available=%d",
		walkID, walk.MaxPlaces, walk.AvailablePlaces)
	handlers.RespondJSON(w, http.StatusOK, walk)
}
