// Copyright 2024 Mmate Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package mailmerge wires batch messages, formatters and serializers
// together behind a single Client.
package mailmerge

import (
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/glimte/mailmerge-go/contracts"
	"github.com/glimte/mailmerge-go/formatting"
	"github.com/glimte/mailmerge-go/messaging"
	"github.com/glimte/mailmerge-go/serialization"
	"github.com/glimte/mailmerge-go/transports/rabbitmq"
)

// Client provides the main entry point for mailmerge-go
type Client struct {
	formatters *formatting.Registry
	serializer *serialization.Serializer
	envelopes  *messaging.EnvelopeFactory
	logger     *slog.Logger
}

// New creates a client. Without options it uses the global formatter
// registry, compact JSON serialization and slog.Default().
func New(options ...ClientOption) *Client {
	cfg := &clientConfig{
		logger:         slog.Default(),
		codec:          serialization.NewJSONCodec(false),
		defaultHeaders: make(map[string]interface{}),
	}

	for _, opt := range options {
		opt(cfg)
	}

	if cfg.formatters == nil {
		cfg.formatters = formatting.Default()
	}

	messageOpts := []contracts.MessageOption{contracts.WithFormatters(cfg.formatters)}

	serializer := serialization.NewSerializer(
		serialization.WithCodec(cfg.codec),
		serialization.WithLogger(cfg.logger),
		serialization.WithMessageOptions(messageOpts...),
	)

	envelopes := messaging.NewEnvelopeFactory(
		messaging.WithDefaultHeaders(cfg.defaultHeaders),
		messaging.WithExtractOptions(messageOpts...),
	)

	cfg.logger.Debug("mailmerge client created",
		"codec", cfg.codec.Name(),
		"formatters", len(cfg.formatters.List()),
	)

	return &Client{
		formatters: cfg.formatters,
		serializer: serializer,
		envelopes:  envelopes,
		logger:     cfg.logger,
	}
}

// NewMessage creates an empty message bound to the client's formatters
func (c *Client) NewMessage() *contracts.BatchMessage {
	return contracts.NewBatchMessage(contracts.WithFormatters(c.formatters))
}

// RegisterFormatter registers a formatter type with the client's registry
func (c *Client) RegisterFormatter(name string, prototype any) error {
	return c.formatters.Register(name, prototype)
}

// Formatters returns the formatter registry
func (c *Client) Formatters() *formatting.Registry {
	return c.formatters
}

// Serialize encodes msg with the configured codec
func (c *Client) Serialize(msg *contracts.BatchMessage) ([]byte, error) {
	if msg == nil {
		return nil, fmt.Errorf("message cannot be nil")
	}
	return c.serializer.Serialize(msg)
}

// Deserialize decodes a payload produced by Serialize
func (c *Client) Deserialize(payload []byte) (*contracts.BatchMessage, error) {
	return c.serializer.Deserialize(payload)
}

// Envelope wraps msg for a queue boundary
func (c *Client) Envelope(msg *contracts.BatchMessage, opts ...messaging.EnvelopeOption) (*contracts.Envelope, error) {
	return c.envelopes.CreateEnvelope(msg, opts...)
}

// Publishing wraps msg in an envelope and converts it to an AMQP publishing
func (c *Client) Publishing(msg *contracts.BatchMessage, opts ...rabbitmq.PublishingOption) (amqp.Publishing, error) {
	envelope, err := c.envelopes.CreateEnvelope(msg)
	if err != nil {
		return amqp.Publishing{}, err
	}

	publishing, err := rabbitmq.NewPublishing(envelope, opts...)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("failed to build publishing: %w", err)
	}

	return publishing, nil
}

// MessageFromDelivery rebuilds the message carried by an AMQP delivery
func (c *Client) MessageFromDelivery(delivery amqp.Delivery) (*contracts.BatchMessage, error) {
	envelope, err := rabbitmq.EnvelopeFromDelivery(delivery)
	if err != nil {
		return nil, err
	}

	msg, err := c.envelopes.ExtractMessage(envelope)
	if err != nil {
		c.logger.Debug("failed to extract message from delivery",
			"message_id", delivery.MessageId,
			"error", err,
		)
		return nil, err
	}

	return msg, nil
}

// clientConfig holds client configuration
type clientConfig struct {
	logger         *slog.Logger
	codec          serialization.Codec
	formatters     *formatting.Registry
	defaultHeaders map[string]interface{}
}

// ClientOption configures the client
type ClientOption func(*clientConfig)

// WithLogger sets the logger for all components
func WithLogger(logger *slog.Logger) ClientOption {
	return func(cfg *clientConfig) {
		cfg.logger = logger
	}
}

// WithCodec sets the serialization codec
func WithCodec(codec serialization.Codec) ClientOption {
	return func(cfg *clientConfig) {
		cfg.codec = codec
	}
}

// WithFormatterRegistry uses registry instead of the global one
func WithFormatterRegistry(registry *formatting.Registry) ClientOption {
	return func(cfg *clientConfig) {
		cfg.formatters = registry
	}
}

// WithDefaultHeaders sets headers added to every envelope
func WithDefaultHeaders(headers map[string]interface{}) ClientOption {
	return func(cfg *clientConfig) {
		for k, v := range headers {
			cfg.defaultHeaders[k] = v
		}
	}
}
