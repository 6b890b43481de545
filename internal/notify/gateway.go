// Package notify defines the outbound notification gateway consumed by the
// tracker core. Delivery is fire-and-forget: failures are reported to the
// caller for logging but never retried and never roll back the state change
// that triggered them.
package notify

import "context"

// Gateway delivers a text message to a recipient identity.
type Gateway interface {
	Notify(ctx context.Context, recipientID int64, text string) error
}

// Func adapts a plain function to the Gateway interface.
type Func func(ctx context.Context, recipientID int64, text string) error

func (f Func) Notify(ctx context.Context, recipientID int64, text string) error {
	return f(ctx, recipientID, text)
}
