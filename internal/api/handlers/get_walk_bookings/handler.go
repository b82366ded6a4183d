package get_walk_bookings

import (
	"net/http"

	"github.com/m04kA/SMC-WalkBookingService/internal/api/handlers"
)

const msgInvalidWalkID = "некорректный ID прогулки"

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/walks/{walkId}/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	walkID, err := handlers.PathInt64(r, "walkId")
	if err != nil {
		h.logger.Warn("GET /walks/{id}/bookings - Invalid walk ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidWalkID)
		return
	}

	result, err := h.service.GetByWalkID(r.Context(), walkID)
	if err != nil {
		h.logger.Error("GET /walks/{id}/bookings - Failed to get bookings: walk_id=%d, error=%v", walkID, err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
