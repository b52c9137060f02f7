package get_available_slots

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	getAvailableSlots "github.com/m04kA/SMC-SlotBooking/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-SlotBooking/pkg/logger"
)

type mockUseCase struct {
	mock.Mock
}

func (m *mockUseCase) Execute(ctx context.Context, req *getAvailableSlots.Request) (*getAvailableSlots.Response, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*getAvailableSlots.Response)
	return resp, args.Error(1)
}

func TestHandle_ReturnsSlots(t *testing.T) {
	uc := &mockUseCase{}
	uc.On("Execute", mock.Anything, &getAvailableSlots.Request{Date: "2026-07-03"}).Return(&getAvailableSlots.Response{
		Date:            "2026-07-03",
		Timezone:        "America/New_York",
		Slots:           []string{"09:00", "13:00"},
		Taken:           map[string]int{"09:00": 0, "10:00": 2, "13:00": 1},
		CapacityPerSlot: 2,
	}, nil)
	h := NewHandler(uc, logger.NewWriter(io.Discard, "error"))
	rec := httptest.NewRecorder()

	h.Handle(rec, httptest.NewRequest(http.MethodGet, "/api/v1/calendar/slots?date=2026-07-03", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body getAvailableSlots.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, []string{"09:00", "13:00"}, body.Slots)
	assert.Equal(t, 2, body.Taken["10:00"])
	uc.AssertExpectations(t)
}

func TestHandle_BadRequests(t *testing.T) {
	uc := &mockUseCase{}
	uc.On("Execute", mock.Anything, &getAvailableSlots.Request{Date: "07/03/2026"}).
		Return(nil, getAvailableSlots.ErrInvalidDate)
	h := NewHandler(uc, logger.NewWriter(io.Discard, "error"))

	for _, target := range []string{"/api/v1/calendar/slots", "/api/v1/calendar/slots?date=07/03/2026"} {
		rec := httptest.NewRecorder()
		h.Handle(rec, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
	uc.AssertExpectations(t)
}
