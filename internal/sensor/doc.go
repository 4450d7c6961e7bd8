// Package sensor reads the gas detector's relay contact.
//
// Reader is the capability the monitor depends on: a debounced,
// polarity-corrected boolean reading. GPIOReader implements it over the
// Linux GPIO character device with kernel debounce and both-edge events, so
// the monitor is notified of transitions without waiting for the next poll.
package sensor
