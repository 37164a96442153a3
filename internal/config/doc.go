// Package config loads, normalizes, and validates Fairway configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob the
// daemon and CLI need: provider endpoints, external tool binaries, encoder
// profiles, worker pool sizes, and retry policy.
//
// Configuration is read once at process start and treated as immutable for
// the process lifetime; stage logic receives it by constructor, never through
// ambient lookups.
package config
