package create_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-WalkBookingService/internal/api/handlers"
	createBooking "github.com/m04kA/SMC-WalkBookingService/internal/usecase/create_booking"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgWalkNotFound       = "прогулка не найдена"
	msgRouteNotFound      = "маршрут прогулки не найден"
	msgWalkNotOpen        = "запись на прогулку закрыта"
	msgNoPlaces           = "недостаточно свободных мест"
	msgAgreementRequired  = "необходимо принять пользовательское соглашение"
	msgVoucherBusy        = "промокод сейчас применяется, повторите попытку"
	msgWalkBusy           = "места на прогулке сейчас изменяются, повторите попытку"
	msgPaymentUnavailable = "платёжная система недоступна, повторите попытку позже"
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := handlers.DecodeAndValidate(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest())
	if err != nil {
		switch {
		case errors.Is(err, createBooking.ErrWalkNotFound):
			handlers.RespondNotFound(w, msgWalkNotFound)

		case errors.Is(err, createBooking.ErrRouteNotFound):
			handlers.RespondNotFound(w, msgRouteNotFound)

		case errors.Is(err, createBooking.ErrWalkNotOpen):
			handlers.RespondConflict(w, msgWalkNotOpen)

		case errors.Is(err, createBooking.ErrCapacityExceeded):
			h.logger.Warn("POST /bookings - No places: walk_id=%d, people=%d", req.WalkID, req.NumberOfPeople)
			handlers.RespondConflict(w, msgNoPlaces)

		case errors.Is(err, createBooking.ErrAgreementRequired):
			handlers.RespondBadRequest(w, msgAgreementRequired)

		case errors.Is(err, createBooking.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidRequestBody)

		case errors.Is(err, createBooking.ErrWalkBusy):
			handlers.RespondConflict(w, msgWalkBusy)

		case errors.Is(err, createBooking.ErrVoucherBusy):
			handlers.RespondConflict(w, msgVoucherBusy)

		case errors.Is(err, createBooking.ErrPaymentUnavailable):
			h.logger.Error("POST /bookings - Payment gateway unavailable: walk_id=%d, error=%v", req.WalkID, err)
			handlers.RespondError(w, http.StatusServiceUnavailable, msgPaymentUnavailable)

		default:
			h.logger.Error("POST /bookings - Failed to create booking: walk_id=%d, error=%v", req.WalkID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings - Booking created successfully: booking_id=%d, walk_id=%d", result.ID, result.WalkID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
