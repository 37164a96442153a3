package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	StagingDir string `toml:"staging_dir"`
	OutputDir  string `toml:"output_dir"`
	LogDir     string `toml:"log_dir"`
	AssetsDir  string `toml:"assets_dir"`
}

// Geocoding contains configuration for the forward-geocoding provider.
type Geocoding struct {
	BaseURL        string  `toml:"base_url"`
	RequestTimeout int     `toml:"request_timeout"`
	FallbackLat    float64 `toml:"fallback_lat"`
	FallbackLon    float64 `toml:"fallback_lon"`
}

// Elevation contains configuration for the elevation lookup provider.
type Elevation struct {
	BaseURL        string `toml:"base_url"`
	RequestTimeout int    `toml:"request_timeout"`
	BatchSize      int    `toml:"batch_size"`
	BatchDelayMS   int    `toml:"batch_delay_ms"`
}

// MapFeatures contains configuration for the map-feature (Overpass) provider.
type MapFeatures struct {
	BaseURL        string  `toml:"base_url"`
	RequestTimeout int     `toml:"request_timeout"`
	RadiusMeters   float64 `toml:"radius_meters"`
}

// Renderer contains configuration for the external 3D renderer.
type Renderer struct {
	Binary        string `toml:"binary"`
	RenderTimeout int    `toml:"render_timeout"`
	GPUEnabled    bool   `toml:"gpu_enabled"`
	Engine        string `toml:"engine"`
	FrameCount    int    `toml:"frame_count"`
	FPS           int    `toml:"fps"`
}

// Encoder contains the fixed encoding profile handed to the video tool.
type Encoder struct {
	Binary        string `toml:"binary"`
	ProbeBinary   string `toml:"probe_binary"`
	Codec         string `toml:"codec"`
	Preset        string `toml:"preset"`
	CRF           int    `toml:"crf"`
	MaxBitrate    string `toml:"max_bitrate"`
	Threads       int    `toml:"threads"`
	Width         int    `toml:"width"`
	Height        int    `toml:"height"`
	EncodeTimeout int    `toml:"encode_timeout"`
}

// TTS contains configuration for the optional voiceover engine.
type TTS struct {
	Enabled bool    `toml:"enabled"`
	Binary  string  `toml:"binary"`
	Voice   string  `toml:"voice"`
	Speed   float64 `toml:"speed"`
	Pitch   int     `toml:"pitch"`
}

// Captions contains caption overlay styling.
type Captions struct {
	Enabled  bool   `toml:"enabled"`
	Font     string `toml:"font"`
	FontSize int    `toml:"font_size"`
	Color    string `toml:"color"`
	Position string `toml:"position"` // top, middle, bottom
	Style    string `toml:"style"`    // simple, animated, professional
}

// Audio contains the background-music mix settings.
type Audio struct {
	MusicPath    string  `toml:"music_path"`
	MusicVolume  float64 `toml:"music_volume"`
	VoiceVolume  float64 `toml:"voice_volume"`
	FadeSeconds  float64 `toml:"fade_seconds"`
	StoryboardMS int     `toml:"storyboard_duration_ms"`
}

// Workflow contains daemon timing, concurrency, and retry policy.
type Workflow struct {
	QueuePollInterval  int `toml:"queue_poll_interval"`
	ErrorRetryInterval int `toml:"error_retry_interval"`
	HeartbeatInterval  int `toml:"heartbeat_interval"`
	HeartbeatTimeout   int `toml:"heartbeat_timeout"`
	WorkersPerStage    int `toml:"workers_per_stage"`
	MaxAttempts        int `toml:"max_attempts"`
	RetryBackoff       int `toml:"retry_backoff"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Config encapsulates all configuration values for Fairway.
//
// Sections by subsystem:
//   - Paths: staging/output/log directories
//   - Geocoding, Elevation, MapFeatures: third-party data providers
//   - Renderer: external 3D tool invocation
//   - Encoder: video tool invocation and encoding profile
//   - TTS, Captions, Audio: post-production enrichments
//   - Workflow: worker pools, heartbeats, queue retry policy
//   - Logging, Notifications: operational output
type Config struct {
	Paths         Paths         `toml:"paths"`
	Geocoding     Geocoding     `toml:"geocoding"`
	Elevation     Elevation     `toml:"elevation"`
	MapFeatures   MapFeatures   `toml:"map_features"`
	Renderer      Renderer      `toml:"renderer"`
	Encoder       Encoder       `toml:"encoder"`
	TTS           TTS           `toml:"tts"`
	Captions      Captions      `toml:"captions"`
	Audio         Audio         `toml:"audio"`
	Workflow      Workflow      `toml:"workflow"`
	Logging       Logging       `toml:"logging"`
	Notifications Notifications `toml:"notifications"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/fairway/config.toml")
}

// SampleConfig returns the embedded annotated sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes the embedded sample configuration to the target path.
func CreateSample(path string) error {
	return os.WriteFile(path, []byte(sampleConfig), 0o644)
}

// ExpandPath resolves ~ prefixes and relative segments to an absolute path.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("fairway.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StagingDir, c.Paths.OutputDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}
