package rabbitmq

import (
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/glimte/mailmerge-go/contracts"
)

const contentTypeJSON = "application/json"

type publishingOptions struct {
	deliveryMode uint8
	priority     uint8
	ttl          time.Duration
	appID        string
}

// PublishingOption configures the publishing built for an envelope
type PublishingOption func(*publishingOptions)

// WithDeliveryMode sets the delivery mode (amqp.Persistent by default)
func WithDeliveryMode(mode uint8) PublishingOption {
	return func(o *publishingOptions) {
		o.deliveryMode = mode
	}
}

// WithPriority sets the message priority
func WithPriority(priority uint8) PublishingOption {
	return func(o *publishingOptions) {
		o.priority = priority
	}
}

// WithTTL sets the per-message expiration
func WithTTL(ttl time.Duration) PublishingOption {
	return func(o *publishingOptions) {
		o.ttl = ttl
	}
}

// WithAppID sets the application id property
func WithAppID(appID string) PublishingOption {
	return func(o *publishingOptions) {
		o.appID = appID
	}
}

// NewPublishing converts an envelope into an AMQP publishing. The envelope
// is the JSON body; its id, type, correlation id and headers are copied
// into the matching AMQP properties.
func NewPublishing(envelope *contracts.Envelope, opts ...PublishingOption) (amqp.Publishing, error) {
	if envelope == nil {
		return amqp.Publishing{}, fmt.Errorf("envelope cannot be nil")
	}

	o := publishingOptions{deliveryMode: amqp.Persistent}
	for _, opt := range opts {
		opt(&o)
	}

	body, err := json.Marshal(envelope)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("failed to marshal envelope: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:   contentTypeJSON,
		Body:          body,
		DeliveryMode:  o.deliveryMode,
		Priority:      o.priority,
		MessageId:     envelope.ID,
		CorrelationId: envelope.CorrelationID,
		Type:          envelope.Type,
		AppId:         o.appID,
	}

	if ts, err := time.Parse(time.RFC3339, envelope.Timestamp); err == nil {
		msg.Timestamp = ts
	}

	if o.ttl > 0 {
		msg.Expiration = fmt.Sprintf("%d", o.ttl.Milliseconds())
	}

	if envelope.Headers != nil {
		msg.Headers = make(amqp.Table, len(envelope.Headers))
		for k, v := range envelope.Headers {
			msg.Headers[k] = v
		}
		if err := msg.Headers.Validate(); err != nil {
			return amqp.Publishing{}, fmt.Errorf("invalid envelope headers: %w", err)
		}
	}

	return msg, nil
}

// EnvelopeFromDelivery decodes the envelope carried by an AMQP delivery
func EnvelopeFromDelivery(delivery amqp.Delivery) (*contracts.Envelope, error) {
	if delivery.ContentType != "" && delivery.ContentType != contentTypeJSON {
		return nil, fmt.Errorf("unsupported content type %q", delivery.ContentType)
	}

	if len(delivery.Body) == 0 {
		return nil, fmt.Errorf("delivery body cannot be empty")
	}

	var envelope contracts.Envelope
	if err := json.Unmarshal(delivery.Body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to unmarshal envelope: %w", err)
	}

	if envelope.ID == "" {
		envelope.ID = delivery.MessageId
	}
	if envelope.CorrelationID == "" {
		envelope.CorrelationID = delivery.CorrelationId
	}

	return &envelope, nil
}
