// Package serialization encodes batch messages for process and queue
// boundaries.
//
// The Serializer turns a message into its canonical map (see
// contracts.Keys) and hands it to a Codec. JSONCodec is the default;
// YAMLCodec produces a human-editable form of the same mapping.
// Deserialization always goes through contracts.FromMap, so every codec
// rejects malformed payloads with contracts.DeserializationShapeError.
package serialization
