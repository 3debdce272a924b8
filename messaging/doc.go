// Package messaging wraps batch messages in envelopes for queue boundaries.
//
// An envelope carries the message's canonical JSON form as its body plus
// routing headers:
//   - x-message-type: always "BatchMessage"
//   - x-batch-identifier: the batch identifier, when one was generated or assigned
//   - x-batch-hash: the instance hash, when one was generated
//
// The batch identifier doubles as the envelope correlation id so every
// message of one batch correlates on the broker side. Creating an envelope
// never generates identifiers; call BatchIdentifier or GetHash first when
// they must be present.
//
// Example usage:
//
//	factory := messaging.NewEnvelopeFactory(
//		messaging.WithDefaultHeaders(map[string]interface{}{"x-campaign": "autumn"}),
//	)
//	msg.BatchIdentifier()
//	envelope, err := factory.CreateEnvelope(msg)
package messaging
