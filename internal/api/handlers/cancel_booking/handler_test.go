package cancel_booking

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-WalkBookingService/internal/service/bookings"
	"github.com/m04kA/SMC-WalkBookingService/internal/service/bookings/models"
	"github.com/m04kA/SMC-WalkBookingService/pkg/logger"
)

type stubService struct {
	gotID  int64
	gotReq models.CancelBookingRequest
	err    error
}

func (s *stubService) Cancel(_ context.Context, id int64, req models.CancelBookingRequest) (*models.BookingResponse, error) {
	s.gotID = id
	s.gotReq = req
	if s.err != nil {
		return nil, s.err
	}
	return &models.BookingResponse{ID: id, Status: "CANCELED"}, nil
}

func serve(svc *stubService, path, body string) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.HandleFunc("/bookings/{bookingId}/cancel", NewHandler(svc, logger.NewWithWriter(io.Discard, "error")).Handle)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, path, strings.NewReader(body)))
	return rec
}

func TestHandle(t *testing.T) {
	tests := []struct {
		name string
		path string
		body string
		err  error
		code int
	}{
		{name: "ok", path: "/bookings/5/cancel", body: `{"cancellationReason":"передумали"}`, code: http.StatusOK},
		{name: "bad id", path: "/bookings/abc/cancel", body: `{}`, code: http.StatusBadRequest},
		{name: "negative id", path: "/bookings/-1/cancel", body: `{}`, code: http.StatusBadRequest},
		{name: "not found", path: "/bookings/5/cancel", body: `{}`, err: bookings.ErrBookingNotFound, code: http.StatusNotFound},
		{name: "terminal", path: "/bookings/5/cancel", body: `{}`, err: fmt.Errorf("%w: status COMPLETED", bookings.ErrCannotCancel), code: http.StatusConflict},
		{name: "internal", path: "/bookings/5/cancel", body: `{}`, err: bookings.ErrInternal, code: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(&stubService{err: tt.err}, tt.path, tt.body)
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}

func TestHandle_PassesRejectFlag(t *testing.T) {
	svc := &stubService{}
	rec := serve(svc, "/bookings/9/cancel", `{"cancellationReason":"нет мест в лодке","reject":true}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(9), svc.gotID)
	assert.True(t, svc.gotReq.Reject)
	assert.Equal(t, "нет мест в лодке", svc.gotReq.CancellationReason)
}
