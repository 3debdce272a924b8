// Package contracts provides the batch message entity of a mail-merge run.
//
// A BatchMessage carries:
//   - Envelope fields: sender, subject, body, recipients, attachments
//   - An instance hash: opaque, unique per message, generated on first use
//   - A batch identifier: shared by every message of one batch, generated
//     on first read unless assigned with SetBatchIdentifier(id, true)
//
// Messages are populated with chained setters:
//
//	msg := contracts.NewBatchMessage().
//		SetFromAddress("news@example.com").
//		SetSubject("Hello").
//		SetTextBody("Welcome aboard").
//		SetToRecipients([]string{"ada@example.com"})
//
// Reading a required field before it is set fails with
// UninitializedFieldError. The canonical representation produced by ToMap
// and consumed by FromMap has exactly the keys returned by Keys.
package contracts
