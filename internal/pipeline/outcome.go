package pipeline

import "strings"

// Outcome tags one stage-internal step's result: either the step produced its
// value normally, or it degraded to a documented default and carries the
// reason. Fatal failures are ordinary Go errors returned alongside, so the
// per-stage decision tables read as plain control flow instead of nested
// recover chains.
type Outcome[T any] struct {
	Value    T
	degraded bool
	reason   string
}

// Ok wraps a value produced by the primary path.
func Ok[T any](value T) Outcome[T] {
	return Outcome[T]{Value: value}
}

// Degraded wraps a substitute value together with the reason the primary
// path was abandoned.
func Degraded[T any](value T, reason string) Outcome[T] {
	return Outcome[T]{Value: value, degraded: true, reason: strings.TrimSpace(reason)}
}

// Degraded reports whether the value is a documented default rather than
// provider data.
func (o Outcome[T]) Degraded() bool { return o.degraded }

// Reason returns the degradation reason, empty for Ok outcomes.
func (o Outcome[T]) Reason() string { return o.reason }
