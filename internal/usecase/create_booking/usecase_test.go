package create_booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SlotBooking/internal/domain"
	"github.com/m04kA/SMC-SlotBooking/internal/infra/assets"
	"github.com/m04kA/SMC-SlotBooking/internal/infra/storage/memory"
	"github.com/m04kA/SMC-SlotBooking/internal/integrations/accountservice"
	bookingsService "github.com/m04kA/SMC-SlotBooking/internal/service/bookings"
	bookingModels "github.com/m04kA/SMC-SlotBooking/internal/service/bookings/models"
	"github.com/m04kA/SMC-SlotBooking/internal/service/calendar"
	"github.com/m04kA/SMC-SlotBooking/pkg/ptr"
	"github.com/m04kA/SMC-SlotBooking/pkg/types"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fixedTime struct{ t time.Time }

func (f fixedTime) Now() time.Time { return f.t }

// fakeAccounts отдаёт для любого ID аккаунт с адресами 1 (по умолчанию), 2 и 3
type fakeAccounts struct {
	blacklisted map[int64]bool
	subs        []accountservice.Subscription
	err         error
}

func (f *fakeAccounts) GetAccount(_ context.Context, id int64) (*accountservice.Account, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &accountservice.Account{
		ID:    id,
		Name:  "Sam Doe",
		Email: fmt.Sprintf("user%d@example.com", id),
		Addresses: []accountservice.Address{
			{ID: 1, Line1: "1 Main St", City: "Albany", State: "NY", Zip: "12207"},
			{ID: 2, Line1: "2 Elm St", City: "Albany", State: "NY", Zip: "12207"},
			{ID: 3, Line1: "3 Oak St", City: "Albany", State: "NY", Zip: "12207"},
		},
		DefaultAddressID: ptr.Ptr(int64(1)),
		LegacyPlan:       "basic",
	}, nil
}

func (f *fakeAccounts) ListSubscriptions(context.Context, int64) ([]accountservice.Subscription, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.subs, nil
}

func (f *fakeAccounts) IsBlacklisted(_ context.Context, id int64) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.blacklisted[id], nil
}

type fakeImages struct{ stored int }

func (f *fakeImages) StoreImage(_ context.Context, upload assets.Upload) (string, error) {
	if string(upload.Data) == "not an image" {
		return "", assets.ErrDecodeImage
	}
	f.stored++
	return "https://cdn.example.com/uploads/" + upload.Filename, nil
}

type recordingNotifier struct {
	mu        sync.Mutex
	templates []string
}

func (n *recordingNotifier) Notify(_ context.Context, template, _ string, _ map[string]string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.templates = append(n.templates, template)
	return nil
}

type countingMetrics struct {
	mu         sync.Mutex
	results    map[string]int
	underflows int
}

func (m *countingMetrics) ObserveReservation(result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[result]++
}

func (m *countingMetrics) IncCounterUnderflow() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.underflows++
}

type fixture struct {
	uc       *UseCase
	store    *memory.Store
	accounts *fakeAccounts
	images   *fakeImages
	notifier *recordingNotifier
	metrics  *countingMetrics
}

func newFixture(t *testing.T, capacity int) *fixture {
	t.Helper()
	store := memory.NewStore()

	cfg := domain.NewDefaultCalendarConfig()
	cfg.DefaultHours = []types.TimeString{"09:00", "10:00", "13:00"}
	cfg.MaxConcurrent = capacity
	_, err := store.Config().Save(context.Background(), cfg)
	require.NoError(t, err)

	f := &fixture{
		store: store,
		accounts: &fakeAccounts{
			blacklisted: map[int64]bool{},
			subs: []accountservice.Subscription{
				{ID: 10, Plan: "premium", AddressID: ptr.Ptr(int64(2)), Status: "active"},
			},
		},
		images:   &fakeImages{},
		notifier: &recordingNotifier{},
		metrics:  &countingMetrics{results: map[string]int{}},
	}
	f.uc = NewUseCase(
		store.Bookings(),
		store.SlotCounters(),
		calendar.NewService(store.Config(), nil, nopLogger{}),
		f.accounts,
		f.images,
		store.TxManager(),
		f.notifier,
		f.metrics,
		"admin@example.com",
		nopLogger{},
	)

	// среда 2026-07-01 10:00 по Нью-Йорку
	loc, err := time.LoadLocation(domain.DefaultTimezone)
	require.NoError(t, err)
	f.uc.timeProvider = fixedTime{t: time.Date(2026, 7, 1, 10, 0, 0, 0, loc)}
	return f
}

func (f *fixture) count(t *testing.T, ymd string, hh types.TimeString) int {
	t.Helper()
	counts, err := f.store.SlotCounters().GetCounts(context.Background(), ymd, []types.TimeString{hh})
	require.NoError(t, err)
	return counts[hh]
}

func request(accountID, addressID int64, date string) *Request {
	return &Request{
		AccountID: accountID,
		AddressID: addressID,
		Service:   "Gutter cleaning",
		Note:      "Side gate code 1234",
		Date:      date,
	}
}

func TestExecute_CreatesPendingBooking(t *testing.T) {
	f := newFixture(t, 1)
	req := request(1, 1, "2026-07-03T09:00")
	req.Images = []assets.Upload{{Filename: "roof.jpg", Data: []byte("jpeg")}}

	resp, err := f.uc.Execute(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusPending), resp.Status)
	assert.Equal(t, "2026-07-03", resp.SlotDate)
	assert.Equal(t, "09:00", resp.SlotTime)
	assert.Equal(t, "basic", resp.Plan)
	assert.Len(t, resp.BookingNumber, domain.BookingNumberDigits)
	assert.Equal(t, []string{"https://cdn.example.com/uploads/roof.jpg"}, resp.Images)
	assert.Equal(t, "1 Main St", resp.Address.Line1)
	assert.Equal(t, 1, f.count(t, "2026-07-03", "09:00"))
	assert.Equal(t, []string{domain.TemplateBookingCreated, domain.TemplateAdminBookingCreated}, f.notifier.templates)
	assert.Equal(t, 1, f.metrics.results[resultCreated])
}

func TestExecute_AcceptsRFC3339Instant(t *testing.T) {
	f := newFixture(t, 1)

	resp, err := f.uc.Execute(context.Background(), request(1, 2, "2026-07-03T17:00:00Z"))

	require.NoError(t, err)
	assert.Equal(t, "13:00", resp.SlotTime)
	assert.Equal(t, "premium", resp.Plan)
}

func TestExecute_ConcurrentRequestsNeverExceedCapacity(t *testing.T) {
	const capacity = 3
	const clients = 20
	f := newFixture(t, capacity)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
		full    int
	)
	for i := 1; i <= clients; i++ {
		wg.Add(1)
		go func(accountID int64) {
			defer wg.Done()
			_, err := f.uc.Execute(context.Background(), request(accountID, 1, "2026-07-03T10:00"))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case errors.Is(err, ErrSlotFull):
				full++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(int64(i))
	}
	wg.Wait()

	assert.Equal(t, capacity, created)
	assert.Equal(t, clients-capacity, full)
	assert.Equal(t, capacity, f.count(t, "2026-07-03", "10:00"))
	assert.Equal(t, clients-capacity, f.metrics.results[resultSlotFull])
}

func TestExecute_CanceledPlaceIsTakenExactlyOnce(t *testing.T) {
	const capacity = 2
	ctx := context.Background()
	f := newFixture(t, capacity)
	owners := bookingsService.NewService(
		f.store.Bookings(),
		f.store.SlotCounters(),
		calendar.NewService(f.store.Config(), nil, nopLogger{}),
		f.store.TxManager(),
		f.notifier,
		f.metrics,
		bookingsService.RealTimeProvider{},
		nopLogger{},
	)

	first, err := f.uc.Execute(ctx, request(1, 1, "2026-07-03T10:00"))
	require.NoError(t, err)
	_, err = f.uc.Execute(ctx, request(2, 1, "2026-07-03T10:00"))
	require.NoError(t, err)
	_, err = f.uc.Execute(ctx, request(3, 1, "2026-07-03T10:00"))
	require.ErrorIs(t, err, ErrSlotFull)

	_, err = owners.Cancel(ctx, first.ID, &bookingModels.CancelBookingRequest{AccountID: 1})
	require.NoError(t, err)
	require.Equal(t, capacity-1, f.count(t, "2026-07-03", "10:00"))

	var (
		wg   sync.WaitGroup
		errs = make([]error, 2)
	)
	for i, accountID := range []int64{3, 4} {
		wg.Add(1)
		go func(i int, accountID int64) {
			defer wg.Done()
			_, errs[i] = f.uc.Execute(ctx, request(accountID, 1, "2026-07-03T10:00"))
		}(i, accountID)
	}
	wg.Wait()

	created := 0
	for _, err := range errs {
		if err == nil {
			created++
			continue
		}
		assert.ErrorIs(t, err, ErrSlotFull)
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, capacity, f.count(t, "2026-07-03", "10:00"))

	_, err = f.uc.Execute(ctx, request(5, 1, "2026-07-03T10:00"))
	assert.ErrorIs(t, err, ErrSlotFull)
}

func TestExecute_FailedInsertRollsBackGate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1)
	_, err := f.store.Bookings().Create(ctx, &domain.Booking{
		BookingNumber: "12345678",
		AccountID:     99,
		AddressID:     1,
		SlotAt:        time.Date(2026, 8, 1, 13, 0, 0, 0, time.UTC),
		Status:        domain.StatusCompleted,
	})
	require.NoError(t, err)
	f.uc.newBookingNumber = func() string { return "12345678" }

	_, err = f.uc.Execute(ctx, request(1, 1, "2026-07-03T09:00"))

	assert.ErrorIs(t, err, ErrInternal)
	assert.Equal(t, 0, f.count(t, "2026-07-03", "09:00"))
	assert.Empty(t, f.notifier.templates)
}

func TestExecute_OneUpcomingBookingPerAddress(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 5)

	_, err := f.uc.Execute(ctx, request(1, 1, "2026-07-03T09:00"))
	require.NoError(t, err)

	_, err = f.uc.Execute(ctx, request(1, 1, "2026-07-06T13:00"))
	assert.ErrorIs(t, err, ErrActiveBookingExists)

	// другой адрес того же аккаунта не затронут
	_, err = f.uc.Execute(ctx, request(1, 2, "2026-07-03T09:00"))
	assert.NoError(t, err)
}

func TestExecute_RescheduleMovesCapacity(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1)

	first, err := f.uc.Execute(ctx, request(1, 1, "2026-07-03T09:00"))
	require.NoError(t, err)

	req := request(1, 1, "2026-07-03T10:00")
	req.RescheduleBookingID = ptr.Ptr(first.ID)
	second, err := f.uc.Execute(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, 0, f.count(t, "2026-07-03", "09:00"))
	assert.Equal(t, 1, f.count(t, "2026-07-03", "10:00"))

	prior, err := f.store.Bookings().GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCanceled, prior.Status)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestExecute_RescheduleIntoSameFullSlot(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1)

	first, err := f.uc.Execute(ctx, request(1, 1, "2026-07-03T09:00"))
	require.NoError(t, err)

	req := request(1, 1, "2026-07-03T09:00")
	req.RescheduleBookingID = ptr.Ptr(first.ID)
	_, err = f.uc.Execute(ctx, req)

	require.NoError(t, err)
	assert.Equal(t, 1, f.count(t, "2026-07-03", "09:00"))
}

func TestExecute_RescheduleForeignBooking(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 2)

	first, err := f.uc.Execute(ctx, request(1, 1, "2026-07-03T09:00"))
	require.NoError(t, err)

	req := request(2, 1, "2026-07-03T10:00")
	req.RescheduleBookingID = ptr.Ptr(first.ID)
	_, err = f.uc.Execute(ctx, req)

	assert.ErrorIs(t, err, ErrRescheduleNotFound)
	assert.Equal(t, 1, f.count(t, "2026-07-03", "09:00"))
	assert.Equal(t, 0, f.count(t, "2026-07-03", "10:00"))
}

func TestExecute_Preconditions(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(f *fixture)
		req     *Request
		wantErr error
	}{
		{
			name:    "blacklisted before validation",
			prepare: func(f *fixture) { f.accounts.blacklisted[1] = true },
			req:     &Request{AccountID: 1},
			wantErr: ErrBlacklisted,
		},
		{
			name:    "missing note",
			req:     &Request{AccountID: 1, AddressID: 1, Service: "Gutter cleaning", Date: "2026-07-03T09:00"},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "foreign address",
			req:     request(1, 42, "2026-07-03T09:00"),
			wantErr: ErrAddressNotFound,
		},
		{
			name:    "unparseable date",
			req:     request(1, 1, "next friday"),
			wantErr: ErrInvalidDate,
		},
		{
			name:    "no entitlement for non-default address",
			req:     request(1, 3, "2026-07-03T09:00"),
			wantErr: ErrNotEntitled,
		},
		{
			name:    "inside lead time",
			req:     request(1, 1, "2026-07-02T09:00"),
			wantErr: ErrTimeNotBookable,
		},
		{
			name:    "hour not offered",
			req:     request(1, 1, "2026-07-03T11:00"),
			wantErr: ErrTimeNotBookable,
		},
		{
			name:    "not on slot boundary",
			req:     request(1, 1, "2026-07-03T13:00:30Z"),
			wantErr: ErrTimeNotBookable,
		},
		{
			name:    "account service down",
			prepare: func(f *fixture) { f.accounts.err = accountservice.ErrServiceUnavailable },
			req:     request(1, 1, "2026-07-03T09:00"),
			wantErr: ErrServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, 1)
			if tt.prepare != nil {
				tt.prepare(f)
			}

			_, err := f.uc.Execute(context.Background(), tt.req)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, 0, f.count(t, "2026-07-03", "09:00"))
		})
	}
}

func TestExecute_BadImageRejectedBeforeGate(t *testing.T) {
	f := newFixture(t, 1)
	req := request(1, 1, "2026-07-03T09:00")
	req.Images = []assets.Upload{
		{Filename: "ok.jpg", Data: []byte("jpeg")},
		{Filename: "notes.txt", Data: []byte("not an image")},
	}

	_, err := f.uc.Execute(context.Background(), req)

	assert.ErrorIs(t, err, ErrInvalidImage)
	assert.Equal(t, 0, f.count(t, "2026-07-03", "09:00"))
	assert.Equal(t, 1, f.metrics.results[resultRejected])
}
