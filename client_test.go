package mailmerge

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glimte/mailmerge-go/contracts"
	"github.com/glimte/mailmerge-go/formatting"
	"github.com/glimte/mailmerge-go/messaging"
	"github.com/glimte/mailmerge-go/serialization"
	"github.com/glimte/mailmerge-go/transports/rabbitmq"
)

type upper struct{}

func (upper) Format(value string) string {
	return strings.ToUpper(value)
}

func newClient(t *testing.T, opts ...ClientOption) *Client {
	t.Helper()

	client := New(append([]ClientOption{WithFormatterRegistry(formatting.NewRegistry())}, opts...)...)
	require.NoError(t, client.RegisterFormatter("Upper", upper{}))
	return client
}

func newMessage(client *Client) *contracts.BatchMessage {
	return client.NewMessage().
		SetFromAddress("a@x.com").
		SetSubject("hi").
		SetTextBody("Hello").
		SetToRecipients([]string{"b@x.com"})
}

func TestNew(t *testing.T) {
	t.Run("uses global registry by default", func(t *testing.T) {
		client := New()
		assert.Same(t, formatting.Default(), client.Formatters())
	})

	t.Run("logs creation", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

		New(WithLogger(logger), WithCodec(serialization.NewYAMLCodec()))
		assert.Contains(t, buf.String(), "mailmerge client created")
		assert.Contains(t, buf.String(), "codec=yaml")
	})
}

func TestClient_Messages(t *testing.T) {
	client := newClient(t)

	t.Run("binds messages to client formatters", func(t *testing.T) {
		msg := newMessage(client)

		formatted, err := msg.FormattedSubject("Upper")
		require.NoError(t, err)
		assert.Equal(t, "HI", formatted)

		raw, err := msg.Subject()
		require.NoError(t, err)
		assert.Equal(t, "hi", raw)

		_, err = msg.Format("DoesNotExist", "text")
		assert.ErrorIs(t, err, formatting.ErrUnknownFormatter)
	})

	t.Run("batch identifier is stable", func(t *testing.T) {
		msg := newMessage(client)

		first := msg.BatchIdentifier()
		assert.NotEmpty(t, first)
		assert.Equal(t, first, msg.BatchIdentifier())
	})
}

func TestClient_SerializeRoundTrip(t *testing.T) {
	for _, codec := range []serialization.Codec{serialization.NewJSONCodec(false), serialization.NewYAMLCodec()} {
		t.Run(codec.Name(), func(t *testing.T) {
			client := newClient(t, WithCodec(codec))
			msg := newMessage(client).AddAttachments([]string{"f1"})
			msg.GetHash()
			msg.BatchIdentifier()

			payload, err := client.Serialize(msg)
			require.NoError(t, err)

			restored, err := client.Deserialize(payload)
			require.NoError(t, err)

			want, err := msg.ToMap()
			require.NoError(t, err)
			got, err := restored.ToMap()
			require.NoError(t, err)
			assert.Equal(t, want, got)

			formatted, err := restored.FormattedSubject("Upper")
			require.NoError(t, err)
			assert.Equal(t, "HI", formatted)
		})
	}

	t.Run("returns error for nil message", func(t *testing.T) {
		_, err := newClient(t).Serialize(nil)
		assert.Error(t, err)
	})
}

func TestClient_Publishing(t *testing.T) {
	client := newClient(t, WithDefaultHeaders(map[string]interface{}{"x-campaign": "autumn"}))

	t.Run("round trips through amqp", func(t *testing.T) {
		msg := newMessage(client).SetBatchIdentifier("batch-1", true)
		hash := msg.GetHash()

		publishing, err := client.Publishing(msg, rabbitmq.WithPriority(3))
		require.NoError(t, err)

		assert.Equal(t, "batch-1", publishing.CorrelationId)
		assert.Equal(t, "autumn", publishing.Headers["x-campaign"])
		assert.Equal(t, hash, publishing.Headers[messaging.HeaderBatchHash])
		assert.Equal(t, uint8(3), publishing.Priority)

		restored, err := client.MessageFromDelivery(amqp.Delivery{
			ContentType: publishing.ContentType,
			MessageId:   publishing.MessageId,
			Body:        publishing.Body,
		})
		require.NoError(t, err)

		assert.Equal(t, hash, restored.GetHash())
		assert.Equal(t, "batch-1", restored.BatchIdentifier())

		formatted, err := restored.FormattedSubject("Upper")
		require.NoError(t, err)
		assert.Equal(t, "HI", formatted)
	})

	t.Run("returns error for incomplete message", func(t *testing.T) {
		_, err := client.Publishing(client.NewMessage())
		assert.ErrorIs(t, err, contracts.ErrUninitializedField)
	})

	t.Run("returns shape error for malformed delivery", func(t *testing.T) {
		_, err := client.MessageFromDelivery(amqp.Delivery{
			Body: []byte(`{"type":"BatchMessage","body":{"from":"a@x.com"}}`),
		})
		assert.ErrorIs(t, err, contracts.ErrDeserializationShape)
	})
}
