package calculate_price

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-WalkBookingService/internal/api/handlers"
	calculatePrice "github.com/m04kA/SMC-WalkBookingService/internal/usecase/calculate_price"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgWalkNotFound       = "прогулка не найдена"
)

type Handler struct {
	useCase CalculatePriceUseCase
	logger  Logger
}

func NewHandler(useCase CalculatePriceUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/prices/calculate
// Ваучер при расчёте не расходуется
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req CalculatePriceRequest
	if err := handlers.DecodeAndValidate(r, &req); err != nil {
		h.logger.Warn("POST /prices/calculate - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest())
	if err != nil {
		switch {
		case errors.Is(err, calculatePrice.ErrWalkNotFound):
			handlers.RespondNotFound(w, msgWalkNotFound)

		case errors.Is(err, calculatePrice.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidRequestBody)

		default:
			h.logger.Error("POST /prices/calculate - Failed to calculate price: walk_id=%d, error=%v", req.WalkID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
