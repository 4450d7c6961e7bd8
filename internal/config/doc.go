// Package config defines the daemon settings and provides helpers to load
// and validate them from YAML.
//
// The Config type covers the sensor wiring, notification policy, message
// templates and per-channel credentials. It is read once at startup; the core
// never consults configuration ambiently mid-operation.
package config
