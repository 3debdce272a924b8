package contracts

import (
	"encoding/json"
)

// EnvelopeType is the envelope type carried by batch messages
const EnvelopeType = "BatchMessage"

// Envelope wraps a serialized message for a queue boundary
type Envelope struct {
	ID            string                 `json:"id"`
	Type          string                 `json:"type"`
	Timestamp     string                 `json:"timestamp"`
	CorrelationID string                 `json:"correlationId,omitempty"`
	Headers       map[string]interface{} `json:"headers,omitempty"`
	Body          json.RawMessage        `json:"body"`
}
