package sensor

// Reader reads the monitored detector contact.
//
// Read returns the debounced, polarity-corrected logical alarm state:
// true means the alarm condition is present. Debounce happens below this
// contract (kernel-level), so callers never see contact chatter.
type Reader interface {
	Read() (bool, error)

	// Close releases the underlying line.
	Close() error
}
