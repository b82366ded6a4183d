package create_walk

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-WalkBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-WalkBookingService/internal/service/walks"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgRouteNotFound      = "маршрут не найден"
	msgInvalidWalk        = "некорректные параметры прогулки"
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

// Handle POST /api/v1/walks
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req CreateWalkRequest
	if err := handlers.DecodeAndValidate(r, &req); err != nil {
		h.logger.Warn("POST /walks - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	walk, err := h.service.Create(r.Context(), req.ToServiceRequest())
	if err != nil {
		switch {
		case errors.Is(err, walks.ErrRouteNotFound):
			handlers.RespondNotFound(w, msgRouteNotFound)

		case errors.Is(err, walks.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidWalk)

		default:
			h.logger.Error("POST /walks - Failed to create walk: route_id=%d, error=%v", req.RouteID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /walks - Walk created successfully: walk_id=%d", walk.ID)
	handlers.RespondJSON(w, http.StatusCreated, walk)
}
