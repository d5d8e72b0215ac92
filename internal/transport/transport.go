package transport

import "context"

// Sender delivers an outbound text to a contact address. The returned
// remote message id identifies the delivery on the provider side; a
// non-nil error means the message was not delivered.
type Sender interface {
	SendText(ctx context.Context, contact, text string) (remoteMessageID string, err error)
}

// Handler consumes one inbound message pushed by the messaging provider.
type Handler func(ctx context.Context, from, body string)
