package services

import (
	"errors"
	"testing"
)

func TestWrapPreservesMarkerAndCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(ErrTransient, "collect", "geocode", "Provider unavailable", cause)

	if !errors.Is(err, ErrTransient) {
		t.Fatal("expected transient marker preserved")
	}
	if !errors.Is(err, cause) {
		t.Fatal("expected cause preserved")
	}
	if got := Message(err); got != "collect: geocode: Provider unavailable: connection reset" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestWrapNilMarkerDefaultsToTransient(t *testing.T) {
	err := Wrap(nil, "render", "spec", "Spec write failed", nil)
	if !errors.Is(err, ErrTransient) {
		t.Fatal("expected nil marker to default to transient")
	}
}

func TestRetryable(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		expect bool
	}{
		{"transient", Wrap(ErrTransient, "s", "op", "msg", nil), true},
		{"external tool", Wrap(ErrExternalTool, "s", "op", "msg", nil), true},
		{"timeout", Wrap(ErrTimeout, "s", "op", "msg", nil), true},
		{"untagged", errors.New("anything"), true},
		{"validation", Wrap(ErrValidation, "s", "op", "msg", nil), false},
		{"configuration", Wrap(ErrConfiguration, "s", "op", "msg", nil), false},
	}
	for _, tc := range cases {
		if got := Retryable(tc.err); got != tc.expect {
			t.Errorf("%s: expected retryable=%v, got %v", tc.name, tc.expect, got)
		}
	}
}

func TestMessage(t *testing.T) {
	if got := Message(nil); got != "" {
		t.Fatalf("expected empty message for nil error, got %q", got)
	}
	if got := Message(errors.New("raw failure")); got != "raw failure" {
		t.Fatalf("expected raw text passed through, got %q", got)
	}
	if got := Message(Wrap(ErrValidation, "", "", "", nil)); got != "service failure" {
		t.Fatalf("expected placeholder detail, got %q", got)
	}
}
