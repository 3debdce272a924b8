package messaging

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/glimte/mailmerge-go/contracts"
)

// Header names set on every batch message envelope
const (
	HeaderMessageType     = "x-message-type"
	HeaderBatchIdentifier = "x-batch-identifier"
	HeaderBatchHash       = "x-batch-hash"
	HeaderSource          = "x-source"
	HeaderVersion         = "x-version"
)

// EnvelopeOption configures envelope creation
type EnvelopeOption func(*contracts.Envelope)

// WithEnvelopeID sets a custom envelope ID
func WithEnvelopeID(id string) EnvelopeOption {
	return func(e *contracts.Envelope) {
		e.ID = id
	}
}

// WithEnvelopeTimestamp sets a custom timestamp
func WithEnvelopeTimestamp(timestamp time.Time) EnvelopeOption {
	return func(e *contracts.Envelope) {
		e.Timestamp = timestamp.UTC().Format(time.RFC3339)
	}
}

// WithEnvelopeHeaders sets custom headers
func WithEnvelopeHeaders(headers map[string]interface{}) EnvelopeOption {
	return func(e *contracts.Envelope) {
		if e.Headers == nil {
			e.Headers = make(map[string]interface{})
		}
		for k, v := range headers {
			e.Headers[k] = v
		}
	}
}

// EnvelopeFactory wraps batch messages in envelopes for a queue boundary
type EnvelopeFactory struct {
	defaultHeaders map[string]interface{}
	messageOpts    []contracts.MessageOption
}

// FactoryOption configures an EnvelopeFactory
type FactoryOption func(*EnvelopeFactory)

// WithDefaultHeaders sets headers added to every envelope
func WithDefaultHeaders(headers map[string]interface{}) FactoryOption {
	return func(f *EnvelopeFactory) {
		for k, v := range headers {
			f.defaultHeaders[k] = v
		}
	}
}

// WithExtractOptions sets the options applied to extracted messages
func WithExtractOptions(opts ...contracts.MessageOption) FactoryOption {
	return func(f *EnvelopeFactory) {
		f.messageOpts = append(f.messageOpts, opts...)
	}
}

// NewEnvelopeFactory creates a new envelope factory
func NewEnvelopeFactory(opts ...FactoryOption) *EnvelopeFactory {
	f := &EnvelopeFactory{
		defaultHeaders: make(map[string]interface{}),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateEnvelope wraps msg in a new envelope. Identifiers are copied only
// if they were already computed or assigned; none are generated here.
func (f *EnvelopeFactory) CreateEnvelope(msg *contracts.BatchMessage, opts ...EnvelopeOption) (*contracts.Envelope, error) {
	if msg == nil {
		return nil, fmt.Errorf("message cannot be nil")
	}

	data, err := msg.ToMap()
	if err != nil {
		return nil, fmt.Errorf("failed to read message: %w", err)
	}

	body, err := msg.Serialize()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize message: %w", err)
	}

	envelope := &contracts.Envelope{
		ID:        uuid.New().String(),
		Type:      contracts.EnvelopeType,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Headers:   make(map[string]interface{}),
		Body:      body,
	}

	for k, v := range f.defaultHeaders {
		envelope.Headers[k] = v
	}

	envelope.Headers[HeaderMessageType] = contracts.EnvelopeType

	if id, ok := data[contracts.KeyBatchIdentifier].(string); ok {
		envelope.CorrelationID = id
		envelope.Headers[HeaderBatchIdentifier] = id
	}
	if hash, ok := data[contracts.KeyBatchHash].(string); ok {
		envelope.Headers[HeaderBatchHash] = hash
	}

	envelope.Headers[HeaderSource] = "mailmerge-go"
	envelope.Headers[HeaderVersion] = "1.0"

	for _, opt := range opts {
		opt(envelope)
	}

	return envelope, nil
}

// ExtractMessage rebuilds the batch message carried by envelope
func (f *EnvelopeFactory) ExtractMessage(envelope *contracts.Envelope) (*contracts.BatchMessage, error) {
	if envelope == nil {
		return nil, fmt.Errorf("envelope cannot be nil")
	}

	if envelope.Type != "" && envelope.Type != contracts.EnvelopeType {
		return nil, fmt.Errorf("unexpected envelope type %q", envelope.Type)
	}

	return contracts.Deserialize(envelope.Body, f.messageOpts...)
}

// JSONEnvelopeSerializer provides JSON serialization for envelopes
type JSONEnvelopeSerializer struct{}

// NewJSONEnvelopeSerializer creates a new JSON envelope serializer
func NewJSONEnvelopeSerializer() *JSONEnvelopeSerializer {
	return &JSONEnvelopeSerializer{}
}

// Serialize serializes an envelope to JSON
func (s *JSONEnvelopeSerializer) Serialize(envelope *contracts.Envelope) ([]byte, error) {
	if envelope == nil {
		return nil, fmt.Errorf("envelope cannot be nil")
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal envelope: %w", err)
	}

	return data, nil
}

// Deserialize deserializes JSON data to an envelope
func (s *JSONEnvelopeSerializer) Deserialize(data []byte) (*contracts.Envelope, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("data cannot be empty")
	}

	var envelope contracts.Envelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("failed to unmarshal envelope: %w", err)
	}

	return &envelope, nil
}
