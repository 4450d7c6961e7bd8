// Package logger provides a small wrapper around zap to offer:
//   - a global sugared logger with a sane console encoder,
//   - an optional file core teeing every entry into the daemon's
//     append-only log file,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level configuration and parsing utilities,
//   - convenience functions (Infof, ErrorKV, etc.).
//
// All services accept a context and extract the logger from it, enabling
// scoped, structured logging throughout the codebase. The log stream is the
// operator's only record of transitions, suppressed alarms and delivery
// outcomes, so the file core is wired in before the evaluation loop starts.
package logger
