// Package logging builds the slog loggers used across the daemon.
//
// Two output formats are supported: a compact console format for interactive
// use and JSON for log aggregation. Helpers in attrs.go keep structured field
// construction terse at call sites, and context.go derives standard fields
// (item_id, stage, correlation_id) from a request context so every stage log
// line carries the same identifiers.
package logging
