package serialization

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/glimte/mailmerge-go/contracts"
)

// MessageSerializer converts batch messages to and from bytes
type MessageSerializer interface {
	// Serialize encodes the canonical map of msg
	Serialize(msg contracts.Mappable) ([]byte, error)

	// Deserialize rebuilds a message from a payload
	Deserialize(payload []byte) (*contracts.BatchMessage, error)

	// ContentType returns the MIME type of serialized payloads
	ContentType() string
}

// Serializer implements MessageSerializer over a pluggable Codec
type Serializer struct {
	codec       Codec
	logger      *slog.Logger
	messageOpts []contracts.MessageOption
}

// SerializerOption configures the serializer
type SerializerOption func(*Serializer)

// WithCodec sets the codec
func WithCodec(codec Codec) SerializerOption {
	return func(s *Serializer) {
		s.codec = codec
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) SerializerOption {
	return func(s *Serializer) {
		s.logger = logger
	}
}

// WithMessageOptions sets the options applied to deserialized messages
func WithMessageOptions(opts ...contracts.MessageOption) SerializerOption {
	return func(s *Serializer) {
		s.messageOpts = append(s.messageOpts, opts...)
	}
}

// NewSerializer creates a serializer using compact JSON by default
func NewSerializer(opts ...SerializerOption) *Serializer {
	s := &Serializer{
		codec:  NewJSONCodec(false),
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Serialize encodes the canonical map of msg
func (s *Serializer) Serialize(msg contracts.Mappable) ([]byte, error) {
	if msg == nil {
		return nil, fmt.Errorf("message cannot be nil")
	}

	data, err := msg.ToMap()
	if err != nil {
		return nil, err
	}

	payload, err := s.codec.Encode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode message with %s codec: %w", s.codec.Name(), err)
	}

	return payload, nil
}

// Deserialize decodes payload and rebuilds the message it describes
func (s *Serializer) Deserialize(payload []byte) (*contracts.BatchMessage, error) {
	if len(payload) == 0 {
		return nil, s.reject(&contracts.DeserializationShapeError{Reason: "payload cannot be empty"})
	}

	data, err := s.codec.Decode(payload)
	if err != nil {
		return nil, s.reject(&contracts.DeserializationShapeError{
			Reason: fmt.Sprintf("payload is not a %s mapping", s.codec.Name()),
			Err:    err,
		})
	}

	msg, err := contracts.FromMap(data, s.messageOpts...)
	if err != nil {
		return nil, s.reject(err)
	}

	return msg, nil
}

// ContentType returns the codec content type
func (s *Serializer) ContentType() string {
	return s.codec.ContentType()
}

func (s *Serializer) reject(err error) error {
	var shapeErr *contracts.DeserializationShapeError
	if errors.As(err, &shapeErr) {
		s.logger.Debug("rejected message payload",
			"codec", s.codec.Name(),
			"key", shapeErr.Key,
			"reason", shapeErr.Reason,
		)
	}
	return err
}
