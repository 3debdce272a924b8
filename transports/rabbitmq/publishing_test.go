package rabbitmq

import (
	"encoding/json"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glimte/mailmerge-go/contracts"
	"github.com/glimte/mailmerge-go/messaging"
)

func newTestEnvelope(t *testing.T) *contracts.Envelope {
	t.Helper()

	msg := contracts.NewBatchMessage().
		SetFromAddress("news@example.com").
		SetSubject("Hi").
		SetTextBody("Hello").
		SetToRecipients([]string{"ada@example.com"}).
		SetBatchIdentifier("batch-7", true)

	envelope, err := messaging.NewEnvelopeFactory().CreateEnvelope(msg,
		messaging.WithEnvelopeID("env-1"),
		messaging.WithEnvelopeTimestamp(time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)),
	)
	require.NoError(t, err)
	return envelope
}

func TestNewPublishing(t *testing.T) {
	t.Run("copies envelope properties", func(t *testing.T) {
		envelope := newTestEnvelope(t)

		msg, err := NewPublishing(envelope)
		require.NoError(t, err)

		assert.Equal(t, "application/json", msg.ContentType)
		assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
		assert.Equal(t, "env-1", msg.MessageId)
		assert.Equal(t, "batch-7", msg.CorrelationId)
		assert.Equal(t, contracts.EnvelopeType, msg.Type)
		assert.Equal(t, time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC), msg.Timestamp.UTC())
		assert.Equal(t, "batch-7", msg.Headers[messaging.HeaderBatchIdentifier])
		assert.Empty(t, msg.Expiration)

		var decoded contracts.Envelope
		require.NoError(t, json.Unmarshal(msg.Body, &decoded))
		assert.Equal(t, envelope.ID, decoded.ID)
	})

	t.Run("applies options", func(t *testing.T) {
		msg, err := NewPublishing(newTestEnvelope(t),
			WithDeliveryMode(amqp.Transient),
			WithPriority(5),
			WithTTL(30*time.Second),
			WithAppID("newsletter"),
		)
		require.NoError(t, err)

		assert.Equal(t, amqp.Transient, msg.DeliveryMode)
		assert.Equal(t, uint8(5), msg.Priority)
		assert.Equal(t, "30000", msg.Expiration)
		assert.Equal(t, "newsletter", msg.AppId)
	})

	t.Run("rejects headers amqp cannot carry", func(t *testing.T) {
		envelope := newTestEnvelope(t)
		envelope.Headers["x-bad"] = struct{}{}

		_, err := NewPublishing(envelope)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid envelope headers")
	})

	t.Run("returns error for nil envelope", func(t *testing.T) {
		_, err := NewPublishing(nil)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "cannot be nil")
	})
}

func TestEnvelopeFromDelivery(t *testing.T) {
	t.Run("round trips through a delivery", func(t *testing.T) {
		envelope := newTestEnvelope(t)

		msg, err := NewPublishing(envelope)
		require.NoError(t, err)

		restored, err := EnvelopeFromDelivery(amqp.Delivery{
			ContentType: msg.ContentType,
			MessageId:   msg.MessageId,
			Body:        msg.Body,
		})
		require.NoError(t, err)

		assert.Equal(t, envelope.ID, restored.ID)
		assert.Equal(t, envelope.CorrelationID, restored.CorrelationID)

		extracted, err := messaging.NewEnvelopeFactory().ExtractMessage(restored)
		require.NoError(t, err)
		assert.Equal(t, "batch-7", extracted.BatchIdentifier())
	})

	t.Run("fills ids from delivery properties", func(t *testing.T) {
		restored, err := EnvelopeFromDelivery(amqp.Delivery{
			MessageId:     "msg-9",
			CorrelationId: "batch-9",
			Body:          []byte(`{"type":"BatchMessage","body":{}}`),
		})
		require.NoError(t, err)

		assert.Equal(t, "msg-9", restored.ID)
		assert.Equal(t, "batch-9", restored.CorrelationID)
	})

	t.Run("rejects other content types", func(t *testing.T) {
		_, err := EnvelopeFromDelivery(amqp.Delivery{ContentType: "text/plain", Body: []byte("hi")})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported content type")
	})

	t.Run("rejects empty body", func(t *testing.T) {
		_, err := EnvelopeFromDelivery(amqp.Delivery{})
		assert.Error(t, err)
	})

	t.Run("rejects invalid json", func(t *testing.T) {
		_, err := EnvelopeFromDelivery(amqp.Delivery{Body: []byte("not json")})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to unmarshal")
	})
}
