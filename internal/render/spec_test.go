package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fairway/internal/pipeline"
)

func sampleData() pipeline.CourseData {
	return pipeline.CourseData{
		Name:            "Spyglass Hill",
		Coordinates:     pipeline.Coordinates{Lat: 36.58, Lon: -121.95},
		ElevationMeters: 45,
		Holes: []pipeline.Hole{
			{Number: 1, Par: 4, DistanceMeters: 380, Coordinates: pipeline.Coordinates{Lat: 36.581, Lon: -121.951}},
			{Number: 2, Par: 3, Coordinates: pipeline.Coordinates{Lat: 36.58, Lon: -121.95}, Features: []string{"bunker"}},
		},
	}
}

func TestBuildSpecDeterministic(t *testing.T) {
	data := sampleData()
	settings := pipeline.RenderSettings{Engine: "CYCLES", Device: "CPU", FrameCount: 250, FPS: 25}

	first := BuildSpec(data, 42, settings)
	second := BuildSpec(data, 42, settings)

	if len(first.Holes) != 2 {
		t.Fatalf("expected 2 holes, got %d", len(first.Holes))
	}
	if len(first.Scatter) != 2*scatterPerHole {
		t.Fatalf("expected %d scatter objects, got %d", 2*scatterPerHole, len(first.Scatter))
	}
	for i := range first.Holes {
		if first.Holes[i].GreenRadius != second.Holes[i].GreenRadius {
			t.Fatalf("hole %d green radius differs between identical builds", i)
		}
	}
	for i := range first.Scatter {
		if first.Scatter[i].Position != second.Scatter[i].Position || first.Scatter[i].Kind != second.Scatter[i].Kind {
			t.Fatalf("scatter %d differs between identical builds", i)
		}
	}

	other := BuildSpec(data, 7, settings)
	if other.Holes[0].GreenRadius == first.Holes[0].GreenRadius && other.Scatter[0].Position == first.Scatter[0].Position {
		t.Fatal("expected different seeds to produce different geometry")
	}
}

func TestBuildSpecDerivesFairwayLength(t *testing.T) {
	data := sampleData()
	spec := BuildSpec(data, 1, pipeline.RenderSettings{FrameCount: 100})

	if spec.Holes[0].FairwayLength != 380 {
		t.Fatalf("expected tagged distance kept, got %f", spec.Holes[0].FairwayLength)
	}
	// Par 3 with no distance falls back to the par-derived length.
	if spec.Holes[1].FairwayLength != 120 {
		t.Fatalf("expected derived par-3 length 120, got %f", spec.Holes[1].FairwayLength)
	}
	if len(spec.Holes[1].HazardFeatures) != 1 || spec.Holes[1].HazardFeatures[0] != "bunker" {
		t.Fatalf("expected bunker hazard carried through, got %v", spec.Holes[1].HazardFeatures)
	}
}

func TestBuildSpecCameraPath(t *testing.T) {
	spec := BuildSpec(sampleData(), 1, pipeline.RenderSettings{FrameCount: 250})

	path := spec.CameraPath
	if len(path.Keyframes) != 6 {
		t.Fatalf("expected 6 keyframes, got %d", len(path.Keyframes))
	}
	if path.Keyframes[0].Frame != 0 || path.Keyframes[5].Frame != 249 {
		t.Fatalf("expected keyframes spanning 0..249, got %d..%d", path.Keyframes[0].Frame, path.Keyframes[5].Frame)
	}
	if path.DurationFrames != 250 || path.Easing != cameraEasing {
		t.Fatalf("unexpected path settings %+v", path)
	}
	for _, kf := range path.Keyframes {
		if kf.Position[2] != sampleData().ElevationMeters+orbitHeight {
			t.Fatalf("expected orbit height above course elevation, got %f", kf.Position[2])
		}
	}
}

func TestWriteSpecAndScript(t *testing.T) {
	dir := t.TempDir()
	spec := BuildSpec(sampleData(), 1, pipeline.RenderSettings{FrameCount: 10})

	specPath, err := WriteSpec(spec, dir)
	if err != nil {
		t.Fatalf("WriteSpec failed: %v", err)
	}
	content, err := os.ReadFile(specPath)
	if err != nil {
		t.Fatalf("read spec: %v", err)
	}
	if !strings.Contains(string(content), `"course_name": "Spyglass Hill"`) {
		t.Fatalf("spec file missing course name:\n%s", content)
	}

	scriptPath, err := WriteScript(dir)
	if err != nil {
		t.Fatalf("WriteScript failed: %v", err)
	}
	script, err := os.ReadFile(scriptPath)
	if err != nil {
		t.Fatalf("read script: %v", err)
	}
	if !strings.Contains(string(script), "render_result.json") {
		t.Fatal("generation script does not write a result file")
	}
}

func TestWriteStoryboard(t *testing.T) {
	dir := t.TempDir()
	data := sampleData()
	data.Name = `Links <"Dunes" & Firs>`

	path, err := WriteStoryboard(data, dir)
	if err != nil {
		t.Fatalf("WriteStoryboard failed: %v", err)
	}
	if filepath.Base(path) != storyboardFileName {
		t.Fatalf("unexpected storyboard path %q", path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read storyboard: %v", err)
	}
	svg := string(content)
	if !strings.HasPrefix(svg, "<svg") {
		t.Fatal("storyboard is not an SVG document")
	}
	if strings.Count(svg, "<circle") != len(data.Holes) {
		t.Fatalf("expected one marker per hole, got %d", strings.Count(svg, "<circle"))
	}
	if strings.Contains(svg, `<"Dunes"`) {
		t.Fatal("course name not XML-escaped")
	}
	if !strings.Contains(svg, "&lt;&quot;Dunes&quot;") {
		t.Fatalf("expected escaped course name in:\n%s", svg)
	}
}

func TestReadResultMissingFile(t *testing.T) {
	if _, err := ReadResult(t.TempDir()); err == nil {
		t.Fatal("expected error for missing result file")
	}
}
