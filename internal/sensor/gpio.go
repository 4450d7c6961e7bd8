package sensor

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"

	"github.com/oshokin/gas-alarm-notifier/internal/config"
)

// GPIOReader reads the detector contact through the Linux GPIO character
// device. The line is requested as an input with the internal pull-up
// enabled, so an open contact floats high and a closed contact reads low,
// and with a kernel debounce period so chatter never reaches the caller.
type GPIOReader struct {
	line       *gpiocdev.Line
	activeHigh bool
}

// Open requests the configured line and registers onEdge to run on every
// debounced edge, in the event handler's own goroutine. A request failure
// (chip or pin unavailable) is the daemon's fatal startup error.
func Open(cfg *config.SensorConfig, onEdge func()) (*GPIOReader, error) {
	opts := []gpiocdev.LineReqOption{
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.WithDebounce(cfg.Debounce()),
	}

	if onEdge != nil {
		opts = append(opts,
			gpiocdev.WithBothEdges,
			gpiocdev.WithEventHandler(func(gpiocdev.LineEvent) {
				onEdge()
			}),
		)
	}

	line, err := gpiocdev.RequestLine(cfg.Chip, cfg.Pin, opts...)
	if err != nil {
		return nil, fmt.Errorf("request line %d on %s: %w", cfg.Pin, cfg.Chip, err)
	}

	return &GPIOReader{
		line:       line,
		activeHigh: cfg.IsActiveHigh(),
	}, nil
}

// Read returns the polarity-corrected logical alarm state.
func (r *GPIOReader) Read() (bool, error) {
	raw, err := r.line.Value()
	if err != nil {
		return false, fmt.Errorf("read line: %w", err)
	}

	return LogicalLevel(raw, r.activeHigh), nil
}

// Close releases the line.
func (r *GPIOReader) Close() error {
	if err := r.line.Close(); err != nil {
		return fmt.Errorf("close line: %w", err)
	}

	return nil
}

// LogicalLevel maps a raw line value to the logical alarm-asserted state.
// With active-high wiring a high level asserts the alarm; with active-low
// wiring a low level does.
func LogicalLevel(raw int, activeHigh bool) bool {
	high := raw != 0

	if activeHigh {
		return high
	}

	return !high
}
