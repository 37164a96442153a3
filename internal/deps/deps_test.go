package deps_test

import (
	"testing"

	"fairway/internal/deps"
	"fairway/internal/testsupport"
)

func TestRequirementsFollowConfig(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.TTS.Enabled = false

	reqs := deps.Requirements(cfg)
	if len(reqs) != 3 {
		t.Fatalf("expected 3 requirements without tts, got %d", len(reqs))
	}

	cfg.TTS.Enabled = true
	reqs = deps.Requirements(cfg)
	if len(reqs) != 4 {
		t.Fatalf("expected 4 requirements with tts, got %d", len(reqs))
	}
	last := reqs[len(reqs)-1]
	if last.Name != "TTS" || !last.Optional {
		t.Fatalf("expected optional TTS requirement, got %+v", last)
	}

	for _, req := range reqs {
		switch req.Name {
		case "Encoder", "Probe":
			if req.Optional {
				t.Fatalf("%s must be required", req.Name)
			}
		case "Renderer":
			if !req.Optional {
				t.Fatal("Renderer must be optional")
			}
		}
	}
}

func TestCheckBinaries(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())

	statuses := deps.CheckBinaries(deps.Requirements(cfg))
	for _, status := range statuses {
		if !status.Available {
			t.Fatalf("expected stubbed binary %q available: %s", status.Command, status.Detail)
		}
	}
	if missing := deps.MissingRequired(statuses); len(missing) != 0 {
		t.Fatalf("expected no missing requirements, got %v", missing)
	}
}

func TestCheckBinariesReportsMissing(t *testing.T) {
	statuses := deps.CheckBinaries([]deps.Requirement{
		{Name: "Encoder", Command: "definitely-not-a-real-binary-1234"},
		{Name: "Renderer", Command: "also-not-real-5678", Optional: true},
		{Name: "Probe", Command: "  "},
	})
	for _, status := range statuses {
		if status.Available {
			t.Fatalf("expected %s unavailable", status.Name)
		}
		if status.Detail == "" {
			t.Fatalf("expected detail for %s", status.Name)
		}
	}

	missing := deps.MissingRequired(statuses)
	if len(missing) != 2 {
		t.Fatalf("expected Encoder and Probe missing, got %v", missing)
	}
}
