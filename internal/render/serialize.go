package render

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	specFileName   = "render_spec.json"
	resultFileName = "render_result.json"
	scriptFileName = "generate_course.py"
	framesDirName  = "frames"
)

//go:embed generate_course.py
var generateScript string

// WriteSpec serializes the spec into the staging directory and returns the
// spec file path. The serialized form is the renderer's input contract; keep
// it stable independently of how the spec is built.
func WriteSpec(spec Spec, stagingDir string) (string, error) {
	data, err := json.MarshalIndent(spec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode render spec: %w", err)
	}
	path := filepath.Join(stagingDir, specFileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write render spec: %w", err)
	}
	return path, nil
}

// WriteScript materializes the embedded generation script into the staging
// directory and returns its path.
func WriteScript(stagingDir string) (string, error) {
	path := filepath.Join(stagingDir, scriptFileName)
	if err := os.WriteFile(path, []byte(generateScript), 0o644); err != nil {
		return "", fmt.Errorf("write generation script: %w", err)
	}
	return path, nil
}

// renderResult is the structured output file the generation script writes
// next to the rendered frames.
type renderResult struct {
	ModelPath      string            `json:"model_path"`
	TexturePath    string            `json:"texture_path"`
	FramesRendered int               `json:"frames_rendered"`
	Metadata       map[string]string `json:"metadata"`
}

// ReadResult parses the renderer's structured output file.
func ReadResult(outputDir string) (renderResult, error) {
	path := filepath.Join(outputDir, resultFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return renderResult{}, fmt.Errorf("read render result: %w", err)
	}
	var result renderResult
	if err := json.Unmarshal(data, &result); err != nil {
		return renderResult{}, fmt.Errorf("decode render result: %w", err)
	}
	return result, nil
}
