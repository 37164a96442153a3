package tts_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"fairway/internal/services/tts"
)

type scriptedExecutor struct {
	err      error
	writeWav bool

	binary string
	args   []string
}

func (s *scriptedExecutor) Run(ctx context.Context, binary string, args []string) ([]byte, error) {
	s.binary = binary
	s.args = args
	if s.err != nil {
		return nil, s.err
	}
	if s.writeWav {
		for i, arg := range args {
			if arg == "-w" && i+1 < len(args) {
				if err := os.WriteFile(args[i+1], []byte("RIFF"), 0o644); err != nil {
					return nil, err
				}
			}
		}
	}
	return nil, nil
}

func TestSynthesizeWritesAudio(t *testing.T) {
	exec := &scriptedExecutor{writeWav: true}
	client, err := tts.New("espeak-ng", "en-us", 160, 50, tts.WithExecutor(exec))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	outPath := filepath.Join(t.TempDir(), "voiceover.wav")
	if err := client.Synthesize(context.Background(), "Welcome to Pebble Beach", outPath); err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}

	want := []string{"-w", outPath, "-v", "en-us", "-s", "160", "-p", "50", "Welcome to Pebble Beach"}
	if len(exec.args) != len(want) {
		t.Fatalf("unexpected args %v", exec.args)
	}
	for i := range want {
		if exec.args[i] != want[i] {
			t.Fatalf("arg %d: expected %q, got %q", i, want[i], exec.args[i])
		}
	}
}

func TestSynthesizeFailsOnEmptyOutput(t *testing.T) {
	client, err := tts.New("espeak-ng", "", 0, 0, tts.WithExecutor(&scriptedExecutor{}))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	outPath := filepath.Join(t.TempDir(), "voiceover.wav")
	if err := client.Synthesize(context.Background(), "text", outPath); err == nil {
		t.Fatal("expected error when no audio file is produced")
	}
}

func TestSynthesizeValidatesInput(t *testing.T) {
	client, err := tts.New("espeak-ng", "", 0, 0, tts.WithExecutor(&scriptedExecutor{}))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := client.Synthesize(context.Background(), "  ", "/tmp/out.wav"); err == nil {
		t.Fatal("expected error for empty text")
	}
	if err := client.Synthesize(context.Background(), "text", ""); err == nil {
		t.Fatal("expected error for empty output path")
	}
}

func TestSynthesizeWrapsExecutorError(t *testing.T) {
	cause := errors.New("exit status 1")
	client, err := tts.New("espeak-ng", "", 0, 0, tts.WithExecutor(&scriptedExecutor{err: cause}))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	synthErr := client.Synthesize(context.Background(), "text", filepath.Join(t.TempDir(), "out.wav"))
	if synthErr == nil || !errors.Is(synthErr, cause) {
		t.Fatalf("expected wrapped error, got %v", synthErr)
	}
}

func TestWordsPerMinute(t *testing.T) {
	cases := []struct {
		multiplier float64
		want       int
	}{
		{1.0, 175},
		{0.8, 140},
		{1.5, 262},
		{0, 175},
		{-2, 175},
	}
	for _, tc := range cases {
		if got := tts.WordsPerMinute(tc.multiplier); got != tc.want {
			t.Fatalf("WordsPerMinute(%f) = %d, want %d", tc.multiplier, got, tc.want)
		}
	}
}

func TestNewRequiresBinary(t *testing.T) {
	if _, err := tts.New(" ", "", 0, 0); err == nil {
		t.Fatal("expected error for empty binary")
	}
}
