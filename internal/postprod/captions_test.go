package postprod

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestWelcomeCues(t *testing.T) {
	cues := WelcomeCues("Pebble Beach", 18)
	if len(cues) != 4 {
		t.Fatalf("expected 4 cues, got %d", len(cues))
	}
	if !strings.Contains(cues[0].Text, "Pebble Beach") {
		t.Fatalf("expected course name in first cue, got %q", cues[0].Text)
	}
	if !strings.Contains(cues[1].Text, "18") {
		t.Fatalf("expected hole count in second cue, got %q", cues[1].Text)
	}
	for i := 1; i < len(cues); i++ {
		if cues[i].Start < cues[i-1].End {
			t.Fatalf("cue %d overlaps previous", i)
		}
	}
}

func TestWriteSRT(t *testing.T) {
	path := filepath.Join(t.TempDir(), "captions.srt")
	cues := []Cue{
		{Start: 0, End: 4 * time.Second, Text: "Welcome"},
		{Start: 61*time.Second + 500*time.Millisecond, End: 65 * time.Second, Text: "Back nine"},
	}
	if err := WriteSRT(cues, path); err != nil {
		t.Fatalf("WriteSRT failed: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read subtitles: %v", err)
	}
	text := string(content)
	if !strings.Contains(text, "1\n00:00:00,000 --> 00:00:04,000\nWelcome\n") {
		t.Fatalf("unexpected first block:\n%s", text)
	}
	if !strings.Contains(text, "2\n00:01:01,500 --> 00:01:05,000\nBack nine\n") {
		t.Fatalf("unexpected second block:\n%s", text)
	}
}

func TestWelcomeScript(t *testing.T) {
	script := WelcomeScript("Augusta National", 18)
	if !strings.Contains(script, "Augusta National") || !strings.Contains(script, "18") {
		t.Fatalf("unexpected script %q", script)
	}
}
