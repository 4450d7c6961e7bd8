package monitor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/gas-alarm-notifier/internal/config"
	domain "github.com/oshokin/gas-alarm-notifier/internal/domain/alarm"
)

// fakeDispatcher records every dispatched text.
type fakeDispatcher struct {
	texts []string
	ok    bool
}

func (d *fakeDispatcher) Dispatch(_ context.Context, text string) bool {
	d.texts = append(d.texts, text)

	return d.ok
}

// testConfig returns a validated config with a 300s cooldown.
func testConfig(t *testing.T, sendClear bool) *config.Config {
	t.Helper()

	cfg := &config.Config{
		Policy: config.PolicyConfig{
			CooldownSeconds: 300,
			SendClear:       &sendClear,
		},
		Messaging: config.MessagingConfig{
			SiteName:     "Hydrogen Room A",
			AlarmMessage: "HYDROGEN GAS ALARM",
			ClearMessage: "Hydrogen detector returned to normal",
		},
	}
	require.NoError(t, config.Validate(cfg))

	return cfg
}

// newTestMachine builds a machine seeded Normal with a recording dispatcher.
func newTestMachine(t *testing.T, sendClear bool) (*machine, *fakeDispatcher) {
	t.Helper()

	d := &fakeDispatcher{ok: true}

	return newMachine(testConfig(t, sendClear), domain.StateNormal, d, nil), d
}

// TestEvaluateIdempotent verifies repeated evaluation of an unchanged
// reading produces no events beyond the first transition.
func TestEvaluateIdempotent(t *testing.T) {
	t.Parallel()

	m, d := newTestMachine(t, true)
	ctx := context.Background()
	t0 := time.Now()

	m.Evaluate(ctx, t0, true)
	require.Len(t, d.texts, 1)

	// Duplicate polls with the same boolean are no-ops, not second edges.
	for i := 1; i <= 5; i++ {
		m.Evaluate(ctx, t0.Add(time.Duration(i)*time.Second), true)
	}

	require.Len(t, d.texts, 1)
}

// TestCooldownArmsOnRaise verifies a sent raise arms the deadline at
// now plus the configured window.
func TestCooldownArmsOnRaise(t *testing.T) {
	t.Parallel()

	m, d := newTestMachine(t, true)
	ctx := context.Background()
	t0 := time.Now()

	require.True(t, m.cooldownUntil.IsZero())

	m.Evaluate(ctx, t0, true)
	require.Len(t, d.texts, 1)
	require.Equal(t, t0.Add(300*time.Second), m.cooldownUntil)
}

// TestCooldownSuppressesRaiseInsideWindow verifies a Normal to Asserted edge
// with an armed deadline is acknowledged (state updates) but not notified,
// while one at or past the deadline emits exactly one event.
func TestCooldownSuppressesRaiseInsideWindow(t *testing.T) {
	t.Parallel()

	m, d := newTestMachine(t, true)
	ctx := context.Background()
	t0 := time.Now()

	// Armed window with no clear since: only possible when the contact left
	// Asserted without the machine observing a clear edge, so arm directly.
	m.cooldownUntil = t0.Add(300 * time.Second)

	m.Evaluate(ctx, t0.Add(200*time.Second), true)
	require.Empty(t, d.texts, "raise inside the window must be suppressed")
	require.Equal(t, domain.StateAsserted, m.state, "the suppressed edge is still acknowledged")

	m.state = domain.StateNormal
	m.Evaluate(ctx, t0.Add(300*time.Second), true)
	require.Len(t, d.texts, 1, "raise at the deadline must notify")
}

// TestClearResetsCooldownUnconditionally verifies the very next assertion
// after any clear notifies, even milliseconds later.
func TestClearResetsCooldownUnconditionally(t *testing.T) {
	t.Parallel()

	m, d := newTestMachine(t, true)
	ctx := context.Background()
	t0 := time.Now()

	m.Evaluate(ctx, t0, true)
	m.Evaluate(ctx, t0.Add(5*time.Second), false)
	require.Len(t, d.texts, 2)

	m.Evaluate(ctx, t0.Add(5*time.Second+time.Millisecond), true)
	require.Len(t, d.texts, 3, "cooldown reset by the clear permits immediate re-raise")
}

// TestClearSuppressedWhenDisabled verifies a clear updates state and resets
// the cooldown but emits zero events when clear notifications are off.
func TestClearSuppressedWhenDisabled(t *testing.T) {
	t.Parallel()

	m, d := newTestMachine(t, false)
	ctx := context.Background()
	t0 := time.Now()

	m.Evaluate(ctx, t0, true)
	require.Len(t, d.texts, 1)

	m.Evaluate(ctx, t0.Add(time.Minute), false)
	require.Len(t, d.texts, 1)
	require.Equal(t, domain.StateNormal, m.state)
	require.True(t, m.cooldownUntil.IsZero(), "clear must drop the cooldown even when not notified")

	m.Evaluate(ctx, t0.Add(time.Minute+time.Second), true)
	require.Len(t, d.texts, 2)
}

// TestScenarioRaisePollClear runs: Normal, Asserted@t0, Asserted@t0+1s
// (poll), Normal@t0+60s, cooldown 300s, clear enabled. Expected events:
// raised@t0, cleared@t0+60s; the poll produces nothing.
func TestScenarioRaisePollClear(t *testing.T) {
	t.Parallel()

	m, d := newTestMachine(t, true)
	ctx := context.Background()
	t0 := time.Now()

	m.Evaluate(ctx, t0, true)
	m.Evaluate(ctx, t0.Add(time.Second), true)
	m.Evaluate(ctx, t0.Add(60*time.Second), false)

	require.Len(t, d.texts, 2)
	require.Contains(t, d.texts[0], "HYDROGEN GAS ALARM")
	require.Contains(t, d.texts[1], "returned to normal")
}

// TestScenarioClearPermitsImmediateReRaise runs: Normal, Asserted@t0,
// Normal@t0+5s, Asserted@t0+6s. Expected: raised, cleared, raised.
func TestScenarioClearPermitsImmediateReRaise(t *testing.T) {
	t.Parallel()

	m, d := newTestMachine(t, true)
	ctx := context.Background()
	t0 := time.Now()

	m.Evaluate(ctx, t0, true)
	m.Evaluate(ctx, t0.Add(5*time.Second), false)
	m.Evaluate(ctx, t0.Add(6*time.Second), true)

	require.Len(t, d.texts, 3)
	require.Contains(t, d.texts[0], "HYDROGEN GAS ALARM")
	require.Contains(t, d.texts[1], "returned to normal")
	require.Contains(t, d.texts[2], "HYDROGEN GAS ALARM")
}

// TestScenarioEveryClearedRaiseNotifies runs: Normal, Asserted@t0,
// Normal@t0+2s, Asserted@t0+3s, Normal@t0+4s, Asserted@t0+250s with a 300s
// cooldown. Each clear resets the cooldown, so all three raises notify:
// five events total.
func TestScenarioEveryClearedRaiseNotifies(t *testing.T) {
	t.Parallel()

	m, d := newTestMachine(t, true)
	ctx := context.Background()
	t0 := time.Now()

	m.Evaluate(ctx, t0, true)
	m.Evaluate(ctx, t0.Add(2*time.Second), false)
	m.Evaluate(ctx, t0.Add(3*time.Second), true)
	m.Evaluate(ctx, t0.Add(4*time.Second), false)
	m.Evaluate(ctx, t0.Add(250*time.Second), true)

	require.Len(t, d.texts, 5)
}

// TestFailedDispatchDropsEvent verifies a failed dispatch neither retries
// nor disturbs the state machine: the cooldown is still armed.
func TestFailedDispatchDropsEvent(t *testing.T) {
	t.Parallel()

	d := &fakeDispatcher{ok: false}
	m := newMachine(testConfig(t, true), domain.StateNormal, d, nil)
	ctx := context.Background()
	t0 := time.Now()

	m.Evaluate(ctx, t0, true)
	require.Len(t, d.texts, 1)
	require.False(t, m.cooldownUntil.IsZero())

	// No retry on the next unchanged poll.
	m.Evaluate(ctx, t0.Add(time.Second), true)
	require.Len(t, d.texts, 1)
}

// TestStateChangeHook verifies every confirmed transition reaches the hook,
// including suppressed raises and disabled clears.
func TestStateChangeHook(t *testing.T) {
	t.Parallel()

	var observed []domain.State

	d := &fakeDispatcher{ok: true}
	m := newMachine(testConfig(t, false), domain.StateNormal, d, func(s domain.State) {
		observed = append(observed, s)
	})
	ctx := context.Background()
	t0 := time.Now()

	m.Evaluate(ctx, t0, true)
	m.Evaluate(ctx, t0.Add(time.Second), false)

	require.Equal(t, []domain.State{domain.StateAsserted, domain.StateNormal}, observed)
}

// TestRenderedMessageFormat verifies the dispatched text carries the site
// label and the timestamp suffix.
func TestRenderedMessageFormat(t *testing.T) {
	t.Parallel()

	m, d := newTestMachine(t, true)
	ctx := context.Background()
	ts := time.Date(2026, time.March, 14, 9, 26, 53, 0, time.Local)

	m.Evaluate(ctx, ts, true)

	require.Len(t, d.texts, 1)
	require.Equal(t, "[Hydrogen Room A] HYDROGEN GAS ALARM @ 2026-03-14 09:26:53", d.texts[0])
}
