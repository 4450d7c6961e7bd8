package notify

import "context"

// Channel attempts to deliver a text payload to its configured recipients.
//
// Send reports whether delivery succeeded. Implementations absorb every
// failure at this boundary: they log a diagnostic and return false, never
// panic and never return an error. A channel that is disabled or missing
// credentials reports failure immediately without network I/O, so the
// dispatcher falls through to the next channel without delay.
type Channel interface {
	Name() string
	Send(ctx context.Context, text string) bool
}
