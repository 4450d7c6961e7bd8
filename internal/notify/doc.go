// Package notify delivers rendered alarm messages to operators.
//
// Channel is the single capability every delivery mechanism implements:
// send a text, report success or failure, absorb all errors at the boundary.
// Dispatcher walks an ordered channel list sequentially and stops at the
// first success, so channel order is a priority order.
//
// Three channels ship with the daemon: the Twilio SMS API (first), an
// authenticated SMTP submission that also serves carrier SMS/MMS gateways
// (second) and an optional MQTT publish for site-local annunciators (last).
package notify
