package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeChannel records send attempts and returns a fixed outcome.
type fakeChannel struct {
	name     string
	ok       bool
	attempts *[]string
}

func (c *fakeChannel) Name() string {
	return c.name
}

func (c *fakeChannel) Send(_ context.Context, _ string) bool {
	*c.attempts = append(*c.attempts, c.name)

	return c.ok
}

// TestDispatchFallbackOrder verifies channel A is attempted and fails before
// channel B is ever called, and that dispatch reports success.
func TestDispatchFallbackOrder(t *testing.T) {
	t.Parallel()

	var attempts []string

	d := NewDispatcher(
		&fakeChannel{name: "a", ok: false, attempts: &attempts},
		&fakeChannel{name: "b", ok: true, attempts: &attempts},
		&fakeChannel{name: "c", ok: true, attempts: &attempts},
	)

	require.True(t, d.Dispatch(context.Background(), "text"))
	require.Equal(t, []string{"a", "b"}, attempts)
}

// TestDispatchFirstSuccessStops verifies no fallback happens after a success.
func TestDispatchFirstSuccessStops(t *testing.T) {
	t.Parallel()

	var attempts []string

	d := NewDispatcher(
		&fakeChannel{name: "a", ok: true, attempts: &attempts},
		&fakeChannel{name: "b", ok: true, attempts: &attempts},
	)

	require.True(t, d.Dispatch(context.Background(), "text"))
	require.Equal(t, []string{"a"}, attempts)
}

// TestDispatchAllFail verifies all channels are attempted in order and the
// failure is reported without panicking.
func TestDispatchAllFail(t *testing.T) {
	t.Parallel()

	var attempts []string

	d := NewDispatcher(
		&fakeChannel{name: "a", ok: false, attempts: &attempts},
		&fakeChannel{name: "b", ok: false, attempts: &attempts},
	)

	require.False(t, d.Dispatch(context.Background(), "text"))
	require.Equal(t, []string{"a", "b"}, attempts)
}

// TestDispatchNoChannels verifies an empty channel list reports failure.
func TestDispatchNoChannels(t *testing.T) {
	t.Parallel()

	d := NewDispatcher()
	require.False(t, d.Dispatch(context.Background(), "text"))
}
