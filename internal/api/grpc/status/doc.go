// Package status serves a read-only gRPC health listener.
//
// It reuses the stock grpc health service instead of a custom API: the
// unnamed service is daemon liveness, and the named detector service goes
// NOT_SERVING while the alarm is asserted. Enabled only when a status
// address is configured.
package status
