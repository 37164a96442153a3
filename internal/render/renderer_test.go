package render_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"fairway/internal/logging"
	"fairway/internal/pipeline"
	"fairway/internal/render"
	"fairway/internal/services/blender"
	"fairway/internal/testsupport"
)

type fakeRenderClient struct {
	versionErr error
	gpu        bool
	gpuErr     error
	renderErr  error
	renderFn   func(scriptPath, specPath, outputDir string, totalFrames int, progress func(blender.ProgressUpdate)) error
}

func (f *fakeRenderClient) Version(ctx context.Context) (string, error) {
	if f.versionErr != nil {
		return "", f.versionErr
	}
	return "Blender 4.2.0", nil
}

func (f *fakeRenderClient) ProbeGPU(ctx context.Context) (bool, error) {
	return f.gpu, f.gpuErr
}

func (f *fakeRenderClient) Render(ctx context.Context, scriptPath, specPath, outputDir string, totalFrames int, progress func(blender.ProgressUpdate)) error {
	if f.renderFn != nil {
		return f.renderFn(scriptPath, specPath, outputDir, totalFrames, progress)
	}
	return f.renderErr
}

func courseData() pipeline.CourseData {
	return pipeline.CourseData{
		Name:            "Pebble Beach",
		Coordinates:     pipeline.Coordinates{Lat: 36.5683, Lon: -121.9496},
		ElevationMeters: 20,
		Holes: []pipeline.Hole{
			{Number: 1, Par: 3, DistanceMeters: 150, Coordinates: pipeline.Coordinates{Lat: 36.5690, Lon: -121.9500}},
			{Number: 2, Par: 4, Coordinates: pipeline.Coordinates{Lat: 36.5695, Lon: -121.9505}, Features: []string{"water"}},
		},
	}
}

func writeRenderResult(t *testing.T, outputDir string) {
	t.Helper()
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	payload := map[string]any{
		"model_path":      filepath.Join(outputDir, "course.glb"),
		"texture_path":    filepath.Join(outputDir, "course.png"),
		"frames_rendered": 10,
		"metadata":        map[string]string{"engine": "cycles"},
	}
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal result: %v", err)
	}
	if err := os.WriteFile(filepath.Join(outputDir, "render_result.json"), data, 0o644); err != nil {
		t.Fatalf("write result: %v", err)
	}
}

func TestExecuteRendersModel(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewCourse(t, store, "Pebble Beach", 42)

	data := courseData()
	encoded, err := data.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	item.CourseDataJSON = encoded

	client := &fakeRenderClient{renderFn: func(scriptPath, specPath, outputDir string, totalFrames int, progress func(blender.ProgressUpdate)) error {
		if _, err := os.Stat(scriptPath); err != nil {
			t.Errorf("generation script missing: %v", err)
		}
		if _, err := os.Stat(specPath); err != nil {
			t.Errorf("render spec missing: %v", err)
		}
		progress(blender.ProgressUpdate{Frame: 5, Total: 10, Message: "Frame 5/10"})
		writeRenderResult(t, outputDir)
		return nil
	}}

	renderer := render.NewRendererWithDependencies(cfg, store, logging.NewNop(), client, nil)
	if err := renderer.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	output, err := pipeline.ParseRenderOutput(item.RenderOutputJSON)
	if err != nil {
		t.Fatalf("ParseRenderOutput failed: %v", err)
	}
	if output.FallbackUsed {
		t.Fatalf("expected full render, got fallback: %s", output.FallbackReason)
	}
	if output.ModelPath == "" || filepath.Base(output.ModelPath) != "course.glb" {
		t.Fatalf("unexpected model path %q", output.ModelPath)
	}
	if len(output.CameraPaths) != 1 || len(output.CameraPaths[0].Keyframes) != 6 {
		t.Fatalf("expected one six-keyframe camera path, got %+v", output.CameraPaths)
	}
	if output.RenderSettings.Device != "CPU" {
		t.Fatalf("expected CPU device with gpu disabled, got %s", output.RenderSettings.Device)
	}
	if item.ProgressPercent != 100 {
		t.Fatalf("expected progress 100, got %f", item.ProgressPercent)
	}
}

func TestExecuteFallsBackToStoryboardWhenRendererUnreachable(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewCourse(t, store, "Pebble Beach", 1)

	data := courseData()
	item.CourseDataJSON = mustEncode(t, data)

	client := &fakeRenderClient{versionErr: errors.New("executable not found")}
	renderer := render.NewRendererWithDependencies(cfg, store, logging.NewNop(), client, nil)
	if err := renderer.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute should degrade to storyboard: %v", err)
	}

	output, err := pipeline.ParseRenderOutput(item.RenderOutputJSON)
	if err != nil {
		t.Fatalf("ParseRenderOutput failed: %v", err)
	}
	fallback, reason := output.Storyboard()
	if !fallback {
		t.Fatal("expected storyboard fallback")
	}
	if reason != "renderer executable unreachable" {
		t.Fatalf("unexpected fallback reason %q", reason)
	}
	if filepath.Ext(output.ModelPath) != ".svg" {
		t.Fatalf("expected storyboard asset, got %q", output.ModelPath)
	}
	if _, err := os.Stat(output.ModelPath); err != nil {
		t.Fatalf("storyboard file missing: %v", err)
	}
}

func TestExecuteFallsBackWhenRenderFails(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewCourse(t, store, "Pebble Beach", 1)
	item.CourseDataJSON = mustEncode(t, courseData())

	client := &fakeRenderClient{renderErr: errors.New("cycles crashed")}
	renderer := render.NewRendererWithDependencies(cfg, store, logging.NewNop(), client, nil)
	if err := renderer.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute should degrade to storyboard: %v", err)
	}

	output, err := pipeline.ParseRenderOutput(item.RenderOutputJSON)
	if err != nil {
		t.Fatalf("ParseRenderOutput failed: %v", err)
	}
	if !output.FallbackUsed {
		t.Fatal("expected fallback after render failure")
	}
}

func TestExecuteNilClientUsesStoryboard(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewCourse(t, store, "Pebble Beach", 1)
	item.CourseDataJSON = mustEncode(t, courseData())

	renderer := render.NewRendererWithDependencies(cfg, store, logging.NewNop(), nil, nil)
	if err := renderer.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	output, err := pipeline.ParseRenderOutput(item.RenderOutputJSON)
	if err != nil {
		t.Fatalf("ParseRenderOutput failed: %v", err)
	}
	if !output.FallbackUsed || output.FallbackReason != "renderer client unavailable" {
		t.Fatalf("unexpected output %+v", output)
	}
}

func TestExecuteGPUDowngrade(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Renderer.GPUEnabled = true
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewCourse(t, store, "Pebble Beach", 1)
	item.CourseDataJSON = mustEncode(t, courseData())

	client := &fakeRenderClient{gpu: false, renderFn: func(scriptPath, specPath, outputDir string, totalFrames int, progress func(blender.ProgressUpdate)) error {
		writeRenderResult(t, outputDir)
		return nil
	}}
	renderer := render.NewRendererWithDependencies(cfg, store, logging.NewNop(), client, nil)
	if err := renderer.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	output, err := pipeline.ParseRenderOutput(item.RenderOutputJSON)
	if err != nil {
		t.Fatalf("ParseRenderOutput failed: %v", err)
	}
	if output.RenderSettings.Device != "CPU" {
		t.Fatalf("expected CPU downgrade, got %s", output.RenderSettings.Device)
	}
}

func TestExecuteRejectsMissingCourseData(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewCourse(t, store, "Pebble Beach", 1)

	renderer := render.NewRendererWithDependencies(cfg, store, logging.NewNop(), &fakeRenderClient{}, nil)
	if err := renderer.Execute(context.Background(), item); err == nil {
		t.Fatal("expected error for missing course data")
	}
}

func mustEncode(t *testing.T, data pipeline.CourseData) string {
	t.Helper()
	encoded, err := data.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	return encoded
}
