package contracts

import (
	"encoding/json"
	"fmt"
	"slices"
	"unicode/utf8"
)

// Canonical keys of the structured message representation
const (
	KeyFrom            = "from"
	KeySubject         = "subject"
	KeyBody            = "body"
	KeyBatchHash       = "batchHash"
	KeyRecipients      = "recipients"
	KeyBatchIdentifier = "batchIdentifier"
	KeyAttachments     = "attachments"
)

var canonicalKeys = []string{
	KeyFrom,
	KeySubject,
	KeyBody,
	KeyBatchHash,
	KeyRecipients,
	KeyBatchIdentifier,
	KeyAttachments,
}

// Keys returns the canonical keys in their documented order
func Keys() []string {
	return append([]string(nil), canonicalKeys...)
}

// Mappable is implemented by values with a canonical map form
type Mappable interface {
	ToMap() (map[string]any, error)
}

// ToMap returns the canonical 7-key representation. Identifiers are read
// as stored; one that was never computed or assigned is nil.
func (m *BatchMessage) ToMap() (map[string]any, error) {
	if m == nil {
		return nil, ErrNilMessage
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, f := range []field{fieldFrom, fieldSubject, fieldBody, fieldRecipients} {
		if err := m.require(f); err != nil {
			return nil, err
		}
	}

	return map[string]any{
		KeyFrom:            m.from,
		KeySubject:         m.subject,
		KeyBody:            m.body,
		KeyBatchHash:       optionalString(m.batchHash),
		KeyRecipients:      cloneStrings(m.recipients),
		KeyBatchIdentifier: optionalString(m.batchIdentifier),
		KeyAttachments:     cloneStrings(m.attachments),
	}, nil
}

// FromMap rebuilds a message from its canonical representation. Missing
// keys, unknown keys and values of the wrong shape are rejected with a
// DeserializationShapeError; nothing is partially applied.
func FromMap(data map[string]any, opts ...MessageOption) (*BatchMessage, error) {
	if data == nil {
		return nil, &DeserializationShapeError{Reason: "payload is not a mapping"}
	}

	for key := range data {
		if !slices.Contains(canonicalKeys, key) {
			return nil, &DeserializationShapeError{Key: key, Reason: "unexpected key"}
		}
	}

	var (
		shape shapeReader
		m     = NewBatchMessage(opts...)
	)

	m.from = shape.str(data, KeyFrom)
	m.subject = shape.str(data, KeySubject)
	m.body = shape.str(data, KeyBody)
	m.batchHash = shape.optionalStr(data, KeyBatchHash)
	m.recipients = shape.strList(data, KeyRecipients)
	m.batchIdentifier = shape.optionalStr(data, KeyBatchIdentifier)
	m.attachments = shape.strList(data, KeyAttachments)

	if shape.err != nil {
		return nil, shape.err
	}

	m.set = requiredFields
	return m, nil
}

// Serialize encodes the canonical representation as JSON
func (m *BatchMessage) Serialize() ([]byte, error) {
	data, err := m.ToMap()
	if err != nil {
		return nil, err
	}

	return EncodeJSON(data)
}

// EncodeJSON encodes a canonical message map as JSON. Strings that are not
// valid UTF-8 are rejected with an InvalidTextError, since encoding/json
// would replace their bytes with U+FFFD.
func EncodeJSON(data map[string]any) ([]byte, error) {
	if err := ValidateText(data); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}

	return payload, nil
}

// ValidateText checks that every string in a canonical message map is
// valid UTF-8. Keys are checked in canonical order.
func ValidateText(data map[string]any) error {
	for _, key := range canonicalKeys {
		switch v := data[key].(type) {
		case string:
			if !utf8.ValidString(v) {
				return &InvalidTextError{Key: key}
			}
		case []string:
			for i, s := range v {
				if !utf8.ValidString(s) {
					return &InvalidTextError{Key: fmt.Sprintf("%s[%d]", key, i)}
				}
			}
		}
	}
	return nil
}

// Deserialize decodes a JSON payload produced by Serialize
func Deserialize(payload []byte, opts ...MessageOption) (*BatchMessage, error) {
	if len(payload) == 0 {
		return nil, &DeserializationShapeError{Reason: "payload cannot be empty"}
	}

	var data map[string]any
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, &DeserializationShapeError{Reason: "payload is not a JSON object", Err: err}
	}

	return FromMap(data, opts...)
}

// shapeReader extracts typed values and keeps the first shape error
type shapeReader struct {
	err error
}

func (r *shapeReader) lookup(data map[string]any, key string) (any, bool) {
	if r.err != nil {
		return nil, false
	}

	v, ok := data[key]
	if !ok {
		r.err = &DeserializationShapeError{Key: key, Reason: "missing key"}
		return nil, false
	}
	return v, true
}

func (r *shapeReader) str(data map[string]any, key string) string {
	v, ok := r.lookup(data, key)
	if !ok {
		return ""
	}

	s, ok := v.(string)
	if !ok {
		r.err = mismatch(key, "string", v)
		return ""
	}
	return s
}

// optionalStr reads an identifier. An empty string is rejected because
// ToMap encodes an unset identifier as null, never as "".
func (r *shapeReader) optionalStr(data map[string]any, key string) string {
	v, ok := r.lookup(data, key)
	if !ok || v == nil {
		return ""
	}

	s, ok := v.(string)
	if !ok {
		r.err = mismatch(key, "string or null", v)
		return ""
	}
	if s == "" {
		r.err = &DeserializationShapeError{Key: key, Reason: "empty identifier, expected null"}
		return ""
	}
	return s
}

func (r *shapeReader) strList(data map[string]any, key string) []string {
	v, ok := r.lookup(data, key)
	if !ok {
		return nil
	}

	switch list := v.(type) {
	case []string:
		return cloneStrings(list)
	case []any:
		out := make([]string, 0, len(list))
		for i, item := range list {
			s, ok := item.(string)
			if !ok {
				r.err = &DeserializationShapeError{
					Key:    key,
					Reason: fmt.Sprintf("element %d: expected string, got %T", i, item),
				}
				return nil
			}
			out = append(out, s)
		}
		return out
	default:
		r.err = mismatch(key, "list of strings", v)
		return nil
	}
}

func mismatch(key, want string, got any) error {
	return &DeserializationShapeError{
		Key:    key,
		Reason: fmt.Sprintf("expected %s, got %T", want, got),
	}
}

func optionalString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
