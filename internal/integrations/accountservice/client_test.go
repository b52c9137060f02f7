package accountservice

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", time.Second, nopLogger{})
}

func TestGetAccount_Success(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/internal/accounts/42", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": 42,
			"name": "Sam Doe",
			"email": "sam@example.com",
			"addresses": [{"id": 7, "line1": "1 Main St", "city": "Springfield"}],
			"default_address_id": 7,
			"legacy_plan": "basic"
		}`))
	})

	account, err := client.GetAccount(context.Background(), 42)

	require.NoError(t, err)
	assert.Equal(t, "Sam Doe", account.Name)
	addr, ok := account.FindAddress(7)
	require.True(t, ok)
	assert.Equal(t, "Springfield", addr.City)
	assert.True(t, account.IsDefaultAddress(7))
	assert.False(t, account.IsDefaultAddress(8))
}

func TestGetAccount_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.GetAccount(context.Background(), 1)

	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestGetAccount_ServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.GetAccount(context.Background(), 1)

	assert.ErrorIs(t, err, ErrServiceUnavailable)
}

func TestListSubscriptions(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/internal/accounts/42/subscriptions", r.URL.Path)
		_, _ = w.Write([]byte(`[{"id":1,"plan":"plus","address_id":7,"status":"Trialing"},{"id":2,"plan":"basic","status":"canceled"}]`))
	})

	subs, err := client.ListSubscriptions(context.Background(), 42)

	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.True(t, subs[0].IsEntitling())
	assert.False(t, subs[1].IsEntitling())
	assert.Nil(t, subs[1].AddressID)
}

func TestIsBlacklisted(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"blacklisted":true}`))
	})

	blocked, err := client.IsBlacklisted(context.Background(), 42)

	require.NoError(t, err)
	assert.True(t, blocked)
}

func TestIsBlacklisted_InvalidBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	})

	_, err := client.IsBlacklisted(context.Background(), 42)

	assert.ErrorIs(t, err, ErrInvalidResponse)
}
