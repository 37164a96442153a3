package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Coordinates is a WGS84 latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// CourseRequest is the immutable input to the data collection stage.
type CourseRequest struct {
	CourseName  string       `json:"course_name"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
	Seed        int64        `json:"seed"`
}

// Hole describes one hole on the course. Features carries tags such as
// "bunker" and "water" that drive per-hole geometry during model generation.
type Hole struct {
	Number         int         `json:"number"`
	Par            int         `json:"par"`
	DistanceMeters float64     `json:"distance_meters"`
	Coordinates    Coordinates `json:"coordinates"`
	Features       []string    `json:"features,omitempty"`
}

// CourseData is the data collection stage's output. Coordinates and
// ElevationMeters are always populated, real or fallback, never absent.
type CourseData struct {
	Name            string      `json:"name"`
	Coordinates     Coordinates `json:"coordinates"`
	ElevationMeters float64     `json:"elevation_meters"`
	Holes           []Hole      `json:"holes"`
	Amenities       []string    `json:"amenities,omitempty"`
}

// Keyframe positions the camera at a single frame.
type Keyframe struct {
	Frame    int        `json:"frame"`
	Position [3]float64 `json:"position"`
	Rotation [3]float64 `json:"rotation"`
	FOV      float64    `json:"fov"`
}

// CameraPath is a named keyframed camera move.
type CameraPath struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Keyframes      []Keyframe `json:"keyframes"`
	DurationFrames int        `json:"duration_frames"`
	Easing         string     `json:"easing"`
}

// RenderSettings records the engine profile the renderer actually used.
type RenderSettings struct {
	Engine     string `json:"engine"`
	Device     string `json:"device"`
	FrameCount int    `json:"frame_count"`
	FPS        int    `json:"fps"`
	Samples    int    `json:"samples,omitempty"`
}

// RenderOutput is the model generation stage's output. FallbackUsed is the
// single authoritative signal downstream stages branch on.
type RenderOutput struct {
	ModelPath      string            `json:"model_path"`
	TexturePath    string            `json:"texture_path,omitempty"`
	FramesDir      string            `json:"frames_dir,omitempty"`
	CameraPaths    []CameraPath      `json:"camera_paths,omitempty"`
	RenderSettings RenderSettings    `json:"render_settings"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	FallbackUsed   bool              `json:"fallback_used"`
	FallbackReason string            `json:"fallback_reason,omitempty"`
}

// Storyboard reports whether post-production must take the storyboard path,
// with the recorded reason. Use this instead of reading FallbackUsed at call
// sites so the branch and its reason travel together.
func (r RenderOutput) Storyboard() (bool, string) {
	if !r.FallbackUsed {
		return false, ""
	}
	reason := strings.TrimSpace(r.FallbackReason)
	if reason == "" {
		reason = "render fallback"
	}
	return true, reason
}

// VideoOutput is the terminal artifact of the pipeline. Paths for skipped
// enrichments are empty strings, never errors.
type VideoOutput struct {
	VideoPath        string            `json:"video_path"`
	ThumbnailPath    string            `json:"thumbnail_path"`
	CaptionsPath     string            `json:"captions_path"`
	AudioPath        string            `json:"audio_path"`
	Metadata         map[string]string `json:"metadata,omitempty"`
	ProcessingTimeMs int64             `json:"processing_time_ms"`
	FileSizeBytes    int64             `json:"file_size_bytes"`
}

// DefaultPar returns the par assigned to a hole when the provider data does
// not carry one: 3 for holes 1-4, 4 for holes 5-14, 5 for holes 15-18 and up.
func DefaultPar(holeNumber int) int {
	switch {
	case holeNumber <= 4:
		return 3
	case holeNumber <= 14:
		return 4
	default:
		return 5
	}
}

// SortHoles orders holes ascending by number.
func SortHoles(holes []Hole) {
	sort.Slice(holes, func(i, j int) bool { return holes[i].Number < holes[j].Number })
}

// Validate checks the CourseData invariants the downstream stages rely on.
func (c CourseData) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("course data: name is empty")
	}
	if len(c.Holes) == 0 {
		return errors.New("course data: at least one hole is required")
	}
	for i := 1; i < len(c.Holes); i++ {
		if c.Holes[i].Number < c.Holes[i-1].Number {
			return fmt.Errorf("course data: holes not sorted (hole %d after %d)", c.Holes[i].Number, c.Holes[i-1].Number)
		}
	}
	return nil
}

// ParseCourseRequest loads a CourseRequest payload from JSON.
func ParseCourseRequest(raw string) (CourseRequest, error) {
	var req CourseRequest
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return req, errors.New("course request payload is empty")
	}
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		return CourseRequest{}, fmt.Errorf("parse course request: %w", err)
	}
	if strings.TrimSpace(req.CourseName) == "" {
		return CourseRequest{}, errors.New("course request: course_name is required")
	}
	return req, nil
}

// ParseCourseData loads a CourseData payload from JSON.
func ParseCourseData(raw string) (CourseData, error) {
	var data CourseData
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return data, errors.New("course data payload is empty")
	}
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return CourseData{}, fmt.Errorf("parse course data: %w", err)
	}
	return data, nil
}

// ParseRenderOutput loads a RenderOutput payload from JSON.
func ParseRenderOutput(raw string) (RenderOutput, error) {
	var out RenderOutput
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return out, errors.New("render output payload is empty")
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return RenderOutput{}, fmt.Errorf("parse render output: %w", err)
	}
	return out, nil
}

// ParseVideoOutput loads a VideoOutput payload from JSON.
func ParseVideoOutput(raw string) (VideoOutput, error) {
	var out VideoOutput
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return out, errors.New("video output payload is empty")
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return VideoOutput{}, fmt.Errorf("parse video output: %w", err)
	}
	return out, nil
}

// Encode serialises the request to JSON.
func (c CourseRequest) Encode() (string, error) { return encode(c) }

// Encode serialises the course data to JSON.
func (c CourseData) Encode() (string, error) { return encode(c) }

// Encode serialises the render output to JSON.
func (r RenderOutput) Encode() (string, error) { return encode(r) }

// Encode serialises the video output to JSON.
func (v VideoOutput) Encode() (string, error) { return encode(v) }

func encode(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
