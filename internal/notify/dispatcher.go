package notify

import (
	"context"

	"github.com/oshokin/gas-alarm-notifier/internal/logger"
)

// Dispatcher tries an ordered list of channels until one delivers.
// Order is priority: a lower-index channel is always attempted before a
// higher-index one is ever called, never a load split.
type Dispatcher struct {
	// channels is the fixed priority order, set at construction.
	channels []Channel
}

// NewDispatcher creates a dispatcher over the provided channels in priority order.
func NewDispatcher(channels ...Channel) *Dispatcher {
	return &Dispatcher{
		channels: channels,
	}
}

// Dispatch attempts delivery of text via each channel in order, stopping at
// the first success. Every attempt is logged with its outcome. When all
// channels fail the event is dropped: there is no retry queue.
func (d *Dispatcher) Dispatch(ctx context.Context, text string) bool {
	for _, channel := range d.channels {
		if channel.Send(ctx, text) {
			logger.InfoKV(ctx, "Notification delivered", "channel", channel.Name())

			return true
		}

		logger.WarnKV(ctx, "Channel delivery failed, falling back", "channel", channel.Name())
	}

	logger.ErrorKV(ctx, "All notification channels failed, event dropped", "channels", len(d.channels))

	return false
}
