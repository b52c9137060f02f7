package update_booking_status

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-SlotBooking/internal/service/bookings"
	"github.com/m04kA/SMC-SlotBooking/internal/service/bookings/models"
	"github.com/m04kA/SMC-SlotBooking/pkg/logger"
)

type fakeService struct{ err error }

func (f fakeService) UpdateStatus(_ context.Context, bookingID int64, req *models.UpdateStatusRequest) (*models.BookingResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.BookingResponse{ID: bookingID, Status: req.Status}, nil
}

func TestHandle(t *testing.T) {
	tests := []struct {
		name string
		body string
		err  error
		want int
	}{
		{name: "ok", body: `{"status":"Confirmed"}`, want: http.StatusOK},
		{name: "missing status", body: `{}`, want: http.StatusBadRequest},
		{name: "unknown field", body: `{"status":"Confirmed","x":1}`, want: http.StatusBadRequest},
		{name: "invalid status", body: `{"status":"archived"}`, err: bookings.ErrInvalidStatus, want: http.StatusBadRequest},
		{name: "not found", body: `{"status":"Confirmed"}`, err: bookings.ErrBookingNotFound, want: http.StatusNotFound},
		{name: "slot full", body: `{"status":"Pending"}`, err: bookings.ErrSlotFull, want: http.StatusConflict},
		{name: "changed concurrently", body: `{"status":"Canceled"}`, err: bookings.ErrConcurrentUpdate, want: http.StatusConflict},
		{name: "internal", body: `{"status":"Pending"}`, err: bookings.ErrInternal, want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(fakeService{err: tt.err}, logger.NewWriter(io.Discard, "error"))
			req := httptest.NewRequest(http.MethodPut, "/api/v1/admin/bookings/3/status", strings.NewReader(tt.body))
			req = mux.SetURLVars(req, map[string]string{"bookingId": "3"})
			rec := httptest.NewRecorder()

			h.Handle(rec, req)

			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
