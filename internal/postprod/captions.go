package postprod

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Cue is one timed caption block.
type Cue struct {
	Start time.Duration
	End   time.Duration
	Text  string
}

// WelcomeCues returns the fixed cue blocks emitted on the primary render
// path: welcome, overview, feature highlight, and call to action.
func WelcomeCues(courseName string, holes int) []Cue {
	return []Cue{
		{Start: 0, End: 4 * time.Second, Text: fmt.Sprintf("Welcome to %s", courseName)},
		{Start: 4 * time.Second, End: 9 * time.Second, Text: fmt.Sprintf("An aerial tour of all %d holes", holes)},
		{Start: 9 * time.Second, End: 14 * time.Second, Text: "Championship fairways, greens, and hazards"},
		{Start: 14 * time.Second, End: 18 * time.Second, Text: "Book your round today"},
	}
}

// WriteSRT renders cues in SubRip format.
func WriteSRT(cues []Cue, path string) error {
	var b strings.Builder
	for i, cue := range cues {
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n", i+1, srtTimestamp(cue.Start), srtTimestamp(cue.End), cue.Text)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write subtitles: %w", err)
	}
	return nil
}

func srtTimestamp(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	ms := int(d.Milliseconds()) % 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

// WelcomeScript is the fixed voiceover text synthesized for every course.
func WelcomeScript(courseName string, holes int) string {
	return fmt.Sprintf(
		"Welcome to %s. Join us for a flyover of all %d holes, from the opening tee shot to the final green.",
		courseName, holes,
	)
}
