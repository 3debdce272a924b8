// Package rabbitmq converts batch message envelopes to and from AMQP
// 0-9-1 publishings and deliveries.
//
// The package holds no connections or channels. Callers that own a broker
// connection publish the amqp.Publishing returned by NewPublishing and feed
// received deliveries to EnvelopeFromDelivery.
package rabbitmq
