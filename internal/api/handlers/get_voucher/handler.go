package get_voucher

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-WalkBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-WalkBookingService/internal/service/vouchers"
)

const msgNotFound = "ваучер не найден"

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

// Handle GET /api/v1/vouchers/{code}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	voucher, err := h.service.GetByCode(r.Context(), code)
	if err != nil {
		if errors.Is(err, vouchers.ErrVoucherNotFound) {
			handlers.RespondNotFound(w, msgNotFound)
			return
		}
		h.logger.Error("GET /vouchers/{code} - Failed to get voucher: code=%s, error=%v", code, err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, voucher)
}
