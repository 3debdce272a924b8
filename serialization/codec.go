package serialization

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/glimte/mailmerge-go/contracts"
)

// Codec encodes the canonical message map to bytes and back
type Codec interface {
	// Name returns the codec name
	Name() string

	// ContentType returns the MIME type of encoded payloads
	ContentType() string

	// Encode encodes a canonical message map
	Encode(data map[string]any) ([]byte, error)

	// Decode decodes a payload into a generic map
	Decode(payload []byte) (map[string]any, error)
}

// JSONCodec implements Codec using JSON
type JSONCodec struct {
	prettyPrint bool
}

// NewJSONCodec creates a JSON codec, indenting output when prettyPrint is set
func NewJSONCodec(prettyPrint bool) *JSONCodec {
	return &JSONCodec{prettyPrint: prettyPrint}
}

// Name returns "json"
func (c *JSONCodec) Name() string {
	return "json"
}

// ContentType returns "application/json"
func (c *JSONCodec) ContentType() string {
	return "application/json"
}

// Encode encodes data as JSON. Strings that are not valid UTF-8 are
// rejected with contracts.InvalidTextError.
func (c *JSONCodec) Encode(data map[string]any) ([]byte, error) {
	if !c.prettyPrint {
		return contracts.EncodeJSON(data)
	}

	if err := contracts.ValidateText(data); err != nil {
		return nil, err
	}
	return json.MarshalIndent(data, "", "  ")
}

// Decode decodes a JSON object
func (c *JSONCodec) Decode(payload []byte) (map[string]any, error) {
	var data map[string]any
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal json: %w", err)
	}
	return data, nil
}

// YAMLCodec implements Codec using YAML
type YAMLCodec struct{}

// NewYAMLCodec creates a YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Name returns "yaml"
func (c *YAMLCodec) Name() string {
	return "yaml"
}

// ContentType returns "application/yaml"
func (c *YAMLCodec) ContentType() string {
	return "application/yaml"
}

// Encode encodes data as a YAML mapping
func (c *YAMLCodec) Encode(data map[string]any) ([]byte, error) {
	out, err := yaml.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal yaml: %w", err)
	}
	return out, nil
}

// Decode decodes a YAML mapping
func (c *YAMLCodec) Decode(payload []byte) (map[string]any, error) {
	var data map[string]any
	if err := yaml.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}
	return data, nil
}
