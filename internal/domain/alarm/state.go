package alarm

import (
	"fmt"
	"time"
)

// State is the logical state of the monitored detector contact.
type State int

const (
	// StateNormal means the detector reports no alarm condition.
	StateNormal State = iota
	// StateAsserted means the detector reports an active alarm condition.
	StateAsserted
)

// FromAsserted converts a debounced boolean reading into a State.
func FromAsserted(asserted bool) State {
	if asserted {
		return StateAsserted
	}

	return StateNormal
}

// Asserted reports whether the state is the alarm condition.
func (s State) Asserted() bool {
	return s == StateAsserted
}

// String returns a log-friendly name for the state.
func (s State) String() string {
	if s == StateAsserted {
		return "ALARM"
	}

	return "NORMAL"
}

// EventKind identifies why a notification event was produced.
type EventKind int

const (
	// EventRaised is produced on a Normal to Asserted transition that passed
	// the cooldown check.
	EventRaised EventKind = iota
	// EventCleared is produced on an Asserted to Normal transition when clear
	// notifications are enabled.
	EventCleared
)

// String returns a log-friendly name for the event kind.
func (k EventKind) String() string {
	if k == EventCleared {
		return "cleared"
	}

	return "raised"
}

// Event is an immutable notification event. It is created at the moment a
// transition qualifies for notification and consumed exactly once by the
// dispatcher.
type Event struct {
	// Timestamp is when the qualifying transition was observed.
	Timestamp time.Time
	// Text is the fully rendered message body.
	Text string
	// Kind says whether the alarm was raised or cleared.
	Kind EventKind
}

// messageTimeLayout is the local timestamp suffix appended to every message.
const messageTimeLayout = "2006-01-02 15:04:05"

// RenderMessage produces the outbound message body:
// "[<site>] <text> @ <local timestamp>".
func RenderMessage(site, text string, ts time.Time) string {
	return fmt.Sprintf("[%s] %s @ %s", site, text, ts.Local().Format(messageTimeLayout))
}
