package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fakeChannel struct {
	key       string
	published []amqp.Publishing
	err       error
}

func (f *fakeChannel) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.key = key
	f.published = append(f.published, msg)
	return nil
}

func TestNotify_PublishesPersistentJSON(t *testing.T) {
	ch := &fakeChannel{}
	p := NewPublisher(ch, "notifications", nopLogger{})

	err := p.Notify(context.Background(), "booking_created", "sam@example.com", map[string]string{"bookingNumber": "12345678"})

	require.NoError(t, err)
	require.Len(t, ch.published, 1)
	assert.Equal(t, "notifications", ch.key)

	pub := ch.published[0]
	assert.Equal(t, "application/json", pub.ContentType)
	assert.Equal(t, amqp.Persistent, pub.DeliveryMode)
	assert.NotEmpty(t, pub.MessageId)

	var msg Message
	require.NoError(t, json.Unmarshal(pub.Body, &msg))
	assert.Equal(t, "booking_created", msg.Template)
	assert.Equal(t, "sam@example.com", msg.Recipient)
	assert.Equal(t, "12345678", msg.Vars["bookingNumber"])
	assert.Equal(t, pub.MessageId, msg.ID)
}

func TestNotify_EmptyRecipient(t *testing.T) {
	ch := &fakeChannel{}
	p := NewPublisher(ch, "notifications", nopLogger{})

	err := p.Notify(context.Background(), "booking_created", "", nil)

	assert.ErrorIs(t, err, ErrEmptyRecipient)
	assert.Empty(t, ch.published)
}

func TestNotify_PublishError(t *testing.T) {
	p := NewPublisher(&fakeChannel{err: errors.New("channel closed")}, "notifications", nopLogger{})

	err := p.Notify(context.Background(), "booking_canceled", "sam@example.com", nil)

	assert.ErrorIs(t, err, ErrPublish)
}
