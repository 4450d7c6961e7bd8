package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/oshokin/gas-alarm-notifier/internal/config"
	domain "github.com/oshokin/gas-alarm-notifier/internal/domain/alarm"
	"github.com/oshokin/gas-alarm-notifier/internal/logger"
)

// Dispatcher abstracts the notification fan-out the machine depends on.
type Dispatcher interface {
	Dispatch(ctx context.Context, text string) bool
}

// machine owns the alarm state and the cooldown deadline. Both are mutated
// only inside Evaluate, under a single mutex, so the periodic poll and the
// asynchronous edge callback can never interleave on the shared state.
// It is unexported to keep the daemon wiring decoupled from the implementation.
type machine struct {
	// dispatcher delivers qualifying events, sequentially per event.
	dispatcher Dispatcher
	// onStateChange, when set, observes every confirmed transition.
	onStateChange func(domain.State)

	// site, alarmText and clearText render outbound messages.
	site      string
	alarmText string
	clearText string

	// cooldownUntil is the earliest time a new raise may notify.
	// The zero time is the sentinel: no cooldown in effect.
	cooldownUntil time.Time
	// cooldown is the suppression window applied after each sent raise.
	cooldown time.Duration

	// state is the current confirmed alarm state.
	state domain.State
	// sendClear controls whether clears produce notifications.
	sendClear bool

	// mu serializes Evaluate across its two callers.
	mu sync.Mutex
}

// newMachine seeds the machine from the first sensor reading. The initial
// reading never produces an event.
func newMachine(cfg *config.Config, initial domain.State, dispatcher Dispatcher, onStateChange func(domain.State)) *machine {
	return &machine{
		dispatcher:    dispatcher,
		onStateChange: onStateChange,
		site:          cfg.Messaging.SiteName,
		alarmText:     cfg.Messaging.AlarmMessage,
		clearText:     cfg.Messaging.ClearMessage,
		cooldown:      cfg.Policy.Cooldown(),
		state:         initial,
		sendClear:     cfg.Policy.SendClearEnabled(),
	}
}

// Evaluate consumes one debounced reading taken at now.
//
// An unchanged reading is a no-op, so repeated polls while the contact is
// stable produce no events. On a confirmed change the state updates and:
//
//   - Normal to Asserted: notify unless the cooldown deadline has not passed
//     yet, in which case the raise is suppressed (logged, not sent); a sent
//     raise arms the cooldown.
//   - Asserted to Normal: notify if clear notifications are enabled, and
//     unconditionally drop the cooldown, so the next assertion after any
//     clear always notifies. Clears themselves are never rate-limited.
func (m *machine) Evaluate(ctx context.Context, now time.Time, asserted bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	reading := domain.FromAsserted(asserted)
	if reading == m.state {
		return
	}

	m.state = reading
	logger.InfoKV(ctx, "Alarm state changed", "state", reading.String())

	if m.onStateChange != nil {
		m.onStateChange(reading)
	}

	if reading == domain.StateAsserted {
		m.raised(ctx, now)

		return
	}

	m.cleared(ctx, now)
}

// raised handles a Normal to Asserted edge.
func (m *machine) raised(ctx context.Context, now time.Time) {
	if now.Before(m.cooldownUntil) {
		logger.InfoKV(ctx, "Alarm asserted but in cooldown, no notification sent",
			"cooldown_until", m.cooldownUntil.Format(time.RFC3339))

		return
	}

	m.notify(ctx, domain.Event{
		Kind:      domain.EventRaised,
		Text:      domain.RenderMessage(m.site, m.alarmText, now),
		Timestamp: now,
	})

	m.cooldownUntil = now.Add(m.cooldown)
}

// cleared handles an Asserted to Normal edge.
func (m *machine) cleared(ctx context.Context, now time.Time) {
	if m.sendClear {
		m.notify(ctx, domain.Event{
			Kind:      domain.EventCleared,
			Text:      domain.RenderMessage(m.site, m.clearText, now),
			Timestamp: now,
		})
	}

	// A clear always rearms immediate notification, whatever the deadline was.
	m.cooldownUntil = time.Time{}
}

// notify hands the event to the dispatcher. A failed dispatch drops the
// event; the dispatcher has already logged the all-channels failure.
// An in-flight send is never cancelled by shutdown, only awaited, so the
// dispatch context keeps the scoped logger but not the cancellation.
func (m *machine) notify(ctx context.Context, event domain.Event) {
	logger.InfoKV(ctx, "Dispatching notification", "kind", event.Kind.String(), "text", event.Text)

	m.dispatcher.Dispatch(context.WithoutCancel(ctx), event.Text)
}
