package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseBookingStatus(t *testing.T) {
	cases := map[string]BookingStatus{
		"pending":   StatusPending,
		"CONFIRMED": StatusConfirmed,
		"Complete":  StatusCompleted,
		"done":      StatusCompleted,
		"Cancelled": StatusCanceled,
		"canceled":  StatusCanceled,
	}
	for in, want := range cases {
		got, err := ParseBookingStatus(in)
		assert.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseBookingStatus("archived")
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestBookingStatus_IsLive(t *testing.T) {
	assert.True(t, StatusPending.IsLive())
	assert.True(t, StatusConfirmed.IsLive())
	assert.False(t, StatusCompleted.IsLive())
	assert.False(t, StatusCanceled.IsLive())
	assert.False(t, BookingStatus("No-Show").IsLive())
	assert.False(t, BookingStatus("CANCELLED").IsLive())
}

func TestBookingStatus_IsFreelyDeletable(t *testing.T) {
	assert.True(t, StatusPending.IsFreelyDeletable())
	assert.True(t, StatusCompleted.IsFreelyDeletable())
	assert.True(t, BookingStatus("complete").IsFreelyDeletable())
	assert.False(t, StatusConfirmed.IsFreelyDeletable())
	assert.False(t, StatusCanceled.IsFreelyDeletable())
}
