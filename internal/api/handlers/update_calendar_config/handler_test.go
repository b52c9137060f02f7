package update_calendar_config

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SlotBooking/internal/domain"
	"github.com/m04kA/SMC-SlotBooking/internal/infra/storage/memory"
	"github.com/m04kA/SMC-SlotBooking/internal/service/calendar"
	"github.com/m04kA/SMC-SlotBooking/internal/service/calendar/models"
	"github.com/m04kA/SMC-SlotBooking/pkg/logger"
)

type fakeService struct {
	got *models.UpdateCalendarRequest
	err error
}

func (f *fakeService) Update(_ context.Context, req *models.UpdateCalendarRequest) (*domain.CalendarConfig, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	cfg := domain.NewDefaultCalendarConfig()
	req.ApplyTo(cfg)
	return cfg, nil
}

func TestHandle_PartialUpdate(t *testing.T) {
	svc := &fakeService{}
	h := NewHandler(svc, logger.NewWriter(io.Discard, "error"))
	rec := httptest.NewRecorder()

	h.Handle(rec, httptest.NewRequest(http.MethodPut, "/api/v1/admin/calendar",
		strings.NewReader(`{"maxConcurrent":3,"holidays":["2026-12-25"]}`)))

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.got)
	assert.Nil(t, svc.got.Timezone)
	require.NotNil(t, svc.got.MaxConcurrent)
	assert.Equal(t, 3, *svc.got.MaxConcurrent)

	var body models.CalendarResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, 3, body.MaxConcurrent)
	assert.Equal(t, []string{"2026-12-25"}, body.Holidays)
}

func TestHandle_Rejects(t *testing.T) {
	tests := []struct {
		name string
		body string
		err  error
		want int
	}{
		{name: "malformed json", body: `{"maxConcurrent":`, want: http.StatusBadRequest},
		{name: "wrong type", body: `{"maxConcurrent":"three"}`, want: http.StatusBadRequest},
		{name: "service rejects", body: `{"capacity":3}`, err: fmt.Errorf("%w: no recognized fields", calendar.ErrInvalidInput), want: http.StatusBadRequest},
		{name: "storage down", body: `{"slotMinutes":30}`, err: calendar.ErrInternal, want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(&fakeService{err: tt.err}, logger.NewWriter(io.Discard, "error"))
			rec := httptest.NewRecorder()

			h.Handle(rec, httptest.NewRequest(http.MethodPut, "/api/v1/admin/calendar", strings.NewReader(tt.body)))

			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestHandle_NormalizesInsteadOfRejecting(t *testing.T) {
	svc := calendar.NewService(memory.NewStore().Config(), nil, logger.NewWriter(io.Discard, "error"))
	h := NewHandler(svc, logger.NewWriter(io.Discard, "error"))

	tests := []struct {
		name  string
		body  string
		check func(t *testing.T, body models.CalendarResponse)
	}{
		{
			name: "malformed hour dropped",
			body: `{"defaultHours":["14:00","9:00","09:00"]}`,
			check: func(t *testing.T, body models.CalendarResponse) {
				assert.Equal(t, []string{"09:00", "14:00"}, body.DefaultHours)
			},
		},
		{
			name: "zero capacity coerced",
			body: `{"maxConcurrent":0}`,
			check: func(t *testing.T, body models.CalendarResponse) {
				assert.Equal(t, 1, body.MaxConcurrent)
			},
		},
		{
			name: "unknown field ignored",
			body: `{"maxConcurrent":2,"someUnknownField":true}`,
			check: func(t *testing.T, body models.CalendarResponse) {
				assert.Equal(t, 2, body.MaxConcurrent)
			},
		},
		{
			name: "weekday out of range dropped",
			body: `{"closedWeekdays":[7,6]}`,
			check: func(t *testing.T, body models.CalendarResponse) {
				assert.Equal(t, []int{6}, body.ClosedWeekdays)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()

			h.Handle(rec, httptest.NewRequest(http.MethodPut, "/api/v1/admin/calendar", strings.NewReader(tt.body)))

			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			var body models.CalendarResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			tt.check(t, body)
		})
	}
}
