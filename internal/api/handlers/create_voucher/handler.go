package create_voucher

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-WalkBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-WalkBookingService/internal/service/vouchers"
	"github.com/m04kA/SMC-WalkBookingService/internal/service/vouchers/models"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidVoucher     = "некорректные параметры ваучера"
	msgDuplicateCode      = "ваучер с таким кодом уже существует"
)

type Handler struct {
	service VoucherService
	logger  Logger
}

func NewHandler(service VoucherService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/vouchers
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req models.CreateVoucherRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /vouchers - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	voucher, err := h.service.Create(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, vouchers.ErrInvalidInput):
			h.logger.Warn("POST /vouchers - Invalid voucher: %v", err)
			handlers.RespondBadRequest(w, msgInvalidVoucher)

		case errors.Is(err, vouchers.ErrDuplicateCode):
			handlers.RespondConflict(w, msgDuplicateCode)

		default:
			h.logger.Error("POST /vouchers - Failed to create voucher: code=%s, error=%v", req.Code, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /vouchers - Voucher created successfully: voucher_id=%d, code=%s", voucher.ID, voucher.Code)
	handlers.RespondJSON(w, http.StatusCreated, voucher)
}
