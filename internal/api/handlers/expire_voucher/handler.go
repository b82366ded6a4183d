package expire_voucher

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-WalkBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-WalkBookingService/internal/service/vouchers"
)

const (
	msgNotFound     = "ваучер не найден"
	msgCannotExpire = "ваучер уже использован или просрочен"
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

// Handle PATCH /api/v1/vouchers/{code}/expire
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	voucher, err := h.service.Expire(r.Context(), code)
	if err != nil {
		switch {
		case errors.Is(err, vouchers.ErrVoucherNotFound):
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, vouchers.ErrCannotExpire):
			handlers.RespondConflict(w, msgCannotExpire)

		default:
			h.logger.Error("PATCH /vouchers/{code}/expire - Failed to expire voucher: code=%s, error=%v", code, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /vouchers/{code}/expire - Voucher expired: code=%s", code)
	handlers.RespondJSON(w, http.StatusOK, voucher)
}
