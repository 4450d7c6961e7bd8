// Package monitor implements the alarm edge-detection state machine and the
// daemon loop around it.
//
// The machine consumes debounced sensor readings from two concurrent
// sources, a fixed-interval poll and the sensor's edge callback, serialized
// through one evaluation entry point. A Normal to Asserted edge notifies
// unless it falls inside the cooldown window; an Asserted to Normal edge
// optionally notifies and always rearms immediate notification. Dispatch is
// sequential per event through the ordered channel list.
package monitor
