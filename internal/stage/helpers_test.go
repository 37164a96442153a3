package stage

import (
	"errors"
	"testing"

	"fairway/internal/services"
)

func TestParseCourseDataWrapsValidationErrors(t *testing.T) {
	for _, raw := range []string{"", "   ", "{not json"} {
		if _, err := ParseCourseData(raw); !errors.Is(err, services.ErrValidation) {
			t.Fatalf("ParseCourseData(%q) = %v, want validation error", raw, err)
		}
	}

	data, err := ParseCourseData(`{"name":"Pebble Beach","holes":[]}`)
	if err != nil {
		t.Fatalf("ParseCourseData failed: %v", err)
	}
	if data.Name != "Pebble Beach" {
		t.Fatalf("unexpected name %q", data.Name)
	}
}

func TestParseRenderOutputWrapsValidationErrors(t *testing.T) {
	if _, err := ParseRenderOutput(""); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	out, err := ParseRenderOutput(`{"frames_dir":"/tmp/frames","render_settings":{"frame_count":250}}`)
	if err != nil {
		t.Fatalf("ParseRenderOutput failed: %v", err)
	}
	if out.RenderSettings.FrameCount != 250 {
		t.Fatalf("unexpected frame count %d", out.RenderSettings.FrameCount)
	}
}

func TestHealthConstructors(t *testing.T) {
	ok := Healthy("collect")
	if !ok.Ready || ok.Name != "collect" || ok.Detail != "" {
		t.Fatalf("unexpected healthy record %+v", ok)
	}
	bad := Unhealthy("render", "blender binary missing")
	if bad.Ready || bad.Detail != "blender binary missing" {
		t.Fatalf("unexpected unhealthy record %+v", bad)
	}
}
