package list_vouchers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/m04kA/SMC-WalkBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-WalkBookingService/internal/service/vouchers"
	"github.com/m04kA/SMC-WalkBookingService/internal/service/vouchers/models"
)

const (
	defaultLimit = 50
	maxLimit     = 500

	msgInvalidQuery = "некорректные параметры запроса"
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

// Handle GET /api/v1/vouchers?type=&status=&limit=&offset=
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	req, err := parseQuery(r)
	if err != nil {
		h.logger.Warn("GET /vouchers - Invalid query: %v", err)
		handlers.RespondBadRequest(w, msgInvalidQuery)
		return
	}

	result, err := h.service.List(r.Context(), req)
	if err != nil {
		if errors.Is(err, vouchers.ErrInvalidInput) {
			handlers.RespondBadRequest(w, msgInvalidQuery)
			return
		}
		h.logger.Error("GET /vouchers - Failed to list vouchers: %v", err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func parseQuery(r *http.Request) (*models.ListRequest, error) {
	q := r.URL.Query()
	req := &models.ListRequest{Limit: defaultLimit}

	if v := q.Get("type"); v != "" {
		req.Type = &v
	}
	if v := q.Get("status"); v != "" {
		req.Status = &v
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.ParseUint(v, 10, 64)
		if err != nil || limit == 0 {
			return nil, errors.New("limit must be a positive integer")
		}
		req.Limit = min(limit, maxLimit)
	}
	if v := q.Get("offset"); v != "" {
		offset, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, errors.New("offset must be a non-negative integer")
		}
		req.Offset = offset
	}

	return req, nil
}
