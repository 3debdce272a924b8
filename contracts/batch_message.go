package contracts

import (
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/glimte/mailmerge-go/formatting"
)

// field identifies a required BatchMessage field
type field uint8

const (
	fieldFrom field = 1 << iota
	fieldSubject
	fieldBody
	fieldRecipients

	requiredFields = fieldFrom | fieldSubject | fieldBody | fieldRecipients
)

func (f field) key() string {
	switch f {
	case fieldFrom:
		return KeyFrom
	case fieldSubject:
		return KeySubject
	case fieldBody:
		return KeyBody
	case fieldRecipients:
		return KeyRecipients
	default:
		return "unknown"
	}
}

// BatchMessage is a single outgoing message belonging to a mail-merge batch.
// The zero value is an empty message ready for its setters. A BatchMessage
// must not be copied after first use.
type BatchMessage struct {
	from            string
	subject         string
	body            string
	recipients      []string
	attachments     []string
	batchHash       string
	batchIdentifier string

	set        field
	formatters formatting.Resolver
	mu         sync.Mutex
}

// MessageOption configures a BatchMessage
type MessageOption func(*BatchMessage)

// WithFormatters sets the resolver used by Format. The global formatting
// registry is used when none is set.
func WithFormatters(resolver formatting.Resolver) MessageOption {
	return func(m *BatchMessage) {
		m.formatters = resolver
	}
}

// NewBatchMessage creates an empty message
func NewBatchMessage(opts ...MessageOption) *BatchMessage {
	m := &BatchMessage{}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// SetFromAddress sets the sender address
func (m *BatchMessage) SetFromAddress(from string) *BatchMessage {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.from = from
	m.set |= fieldFrom
	return m
}

// SetSubject sets the raw subject
func (m *BatchMessage) SetSubject(subject string) *BatchMessage {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.subject = subject
	m.set |= fieldSubject
	return m
}

// SetTextBody sets the raw body
func (m *BatchMessage) SetTextBody(body string) *BatchMessage {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.body = body
	m.set |= fieldBody
	return m
}

// SetToRecipients replaces the recipient list
func (m *BatchMessage) SetToRecipients(recipients []string) *BatchMessage {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.recipients = cloneStrings(recipients)
	m.set |= fieldRecipients
	return m
}

// AddAttachments replaces the attachment list. Earlier attachments are
// discarded, not appended to.
func (m *BatchMessage) AddAttachments(attachments []string) *BatchMessage {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.attachments = cloneStrings(attachments)
	return m
}

// From returns the sender address
func (m *BatchMessage) From() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.require(fieldFrom); err != nil {
		return "", err
	}
	return m.from, nil
}

// Subject returns the raw subject
func (m *BatchMessage) Subject() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.require(fieldSubject); err != nil {
		return "", err
	}
	return m.subject, nil
}

// FormattedSubject returns the subject rendered by the named formatter.
// The stored subject is not changed.
func (m *BatchMessage) FormattedSubject(formatter string) (string, error) {
	subject, err := m.Subject()
	if err != nil {
		return "", err
	}
	return m.Format(formatter, subject)
}

// Body returns the raw body
func (m *BatchMessage) Body() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.require(fieldBody); err != nil {
		return "", err
	}
	return m.body, nil
}

// FormattedBody returns the body rendered by the named formatter.
// The stored body is not changed.
func (m *BatchMessage) FormattedBody(formatter string) (string, error) {
	body, err := m.Body()
	if err != nil {
		return "", err
	}
	return m.Format(formatter, body)
}

// Recipients returns a copy of the recipient list
func (m *BatchMessage) Recipients() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.require(fieldRecipients); err != nil {
		return nil, err
	}
	return cloneStrings(m.recipients), nil
}

// Attachments returns a copy of the attachment list
func (m *BatchMessage) Attachments() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return cloneStrings(m.attachments)
}

// IsComplete reports whether every required field has been set
func (m *BatchMessage) IsComplete() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.set&requiredFields == requiredFields
}

// SetBatchIdentifier replaces the batch identifier when override is true.
// Without override the call leaves the current identifier untouched and
// value is discarded.
func (m *BatchMessage) SetBatchIdentifier(value string, override bool) *BatchMessage {
	if !override {
		return m
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.batchIdentifier = value
	return m
}

// BatchIdentifier returns the batch identifier, generating a time-ordered
// one on first read if none was assigned.
func (m *BatchMessage) BatchIdentifier() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.batchIdentifier == "" {
		m.batchIdentifier = newBatchIdentifier()
	}
	return m.batchIdentifier
}

// GetHash returns the opaque per-instance hash, generating it on first
// call. A deserialized message keeps the hash it was serialized with.
func (m *BatchMessage) GetHash() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.batchHash == "" {
		m.batchHash = uuid.NewString()
	}
	return m.batchHash
}

// Format renders value with the formatter registered under name
func (m *BatchMessage) Format(name, value string) (string, error) {
	m.mu.Lock()
	resolver := m.formatters
	m.mu.Unlock()

	if resolver == nil {
		resolver = formatting.Default()
	}
	return resolver.Format(name, value)
}

func (m *BatchMessage) require(f field) error {
	if m.set&f == 0 {
		return &UninitializedFieldError{Field: f.key()}
	}
	return nil
}

// newBatchIdentifier returns a UUIDv7: a millisecond timestamp followed by
// random bits.
func newBatchIdentifier() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func cloneStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return slices.Clone(values)
}
