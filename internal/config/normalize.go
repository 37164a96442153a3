package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeProviders()
	c.normalizeTools()
	c.normalizeWorkflow()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.AssetsDir, err = expandPath(c.Paths.AssetsDir); err != nil {
		return fmt.Errorf("paths.assets_dir: %w", err)
	}
	if strings.TrimSpace(c.Audio.MusicPath) != "" {
		if c.Audio.MusicPath, err = expandPath(c.Audio.MusicPath); err != nil {
			return fmt.Errorf("audio.music_path: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeProviders() {
	c.Geocoding.BaseURL = strings.TrimRight(strings.TrimSpace(c.Geocoding.BaseURL), "/")
	c.Elevation.BaseURL = strings.TrimRight(strings.TrimSpace(c.Elevation.BaseURL), "/")
	c.MapFeatures.BaseURL = strings.TrimSpace(c.MapFeatures.BaseURL)
	if c.Geocoding.RequestTimeout <= 0 {
		c.Geocoding.RequestTimeout = defaultProviderTimeout
	}
	if c.Elevation.RequestTimeout <= 0 {
		c.Elevation.RequestTimeout = defaultProviderTimeout
	}
	if c.MapFeatures.RequestTimeout <= 0 {
		c.MapFeatures.RequestTimeout = defaultProviderTimeout
	}
	if c.Elevation.BatchSize <= 0 {
		c.Elevation.BatchSize = defaultBatchSize
	}
	if c.Elevation.BatchDelayMS < 0 {
		c.Elevation.BatchDelayMS = defaultBatchDelayMS
	}
	if c.MapFeatures.RadiusMeters <= 0 {
		c.MapFeatures.RadiusMeters = defaultFeatureRadius
	}
}

func (c *Config) normalizeTools() {
	c.Renderer.Binary = strings.TrimSpace(c.Renderer.Binary)
	c.Encoder.Binary = strings.TrimSpace(c.Encoder.Binary)
	c.Encoder.ProbeBinary = strings.TrimSpace(c.Encoder.ProbeBinary)
	c.TTS.Binary = strings.TrimSpace(c.TTS.Binary)
	if c.Renderer.RenderTimeout <= 0 {
		c.Renderer.RenderTimeout = defaultRenderTimeout
	}
	if c.Renderer.FrameCount <= 0 {
		c.Renderer.FrameCount = defaultFrameCount
	}
	if c.Renderer.FPS <= 0 {
		c.Renderer.FPS = defaultFPS
	}
	if c.Encoder.EncodeTimeout <= 0 {
		c.Encoder.EncodeTimeout = defaultEncodeTimeout
	}
	if c.Encoder.Width <= 0 {
		c.Encoder.Width = defaultVideoWidth
	}
	if c.Encoder.Height <= 0 {
		c.Encoder.Height = defaultVideoHeight
	}
	if c.TTS.Speed <= 0 {
		c.TTS.Speed = defaultTTSSpeed
	}
	c.Captions.Position = strings.ToLower(strings.TrimSpace(c.Captions.Position))
	if c.Captions.Position == "" {
		c.Captions.Position = defaultCaptionPosition
	}
	c.Captions.Style = strings.ToLower(strings.TrimSpace(c.Captions.Style))
	if c.Captions.Style == "" {
		c.Captions.Style = defaultCaptionStyle
	}
	if c.Audio.StoryboardMS <= 0 {
		c.Audio.StoryboardMS = defaultStoryboardVideoMS
	}
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.QueuePollInterval <= 0 {
		c.Workflow.QueuePollInterval = defaultQueuePollInterval
	}
	if c.Workflow.ErrorRetryInterval <= 0 {
		c.Workflow.ErrorRetryInterval = defaultErrorRetryInterval
	}
	if c.Workflow.HeartbeatInterval <= 0 {
		c.Workflow.HeartbeatInterval = defaultHeartbeatInterval
	}
	if c.Workflow.HeartbeatTimeout <= 0 {
		c.Workflow.HeartbeatTimeout = defaultHeartbeatTimeout
	}
	if c.Workflow.WorkersPerStage <= 0 {
		c.Workflow.WorkersPerStage = defaultWorkersPerStage
	}
	if c.Workflow.MaxAttempts <= 0 {
		c.Workflow.MaxAttempts = defaultMaxAttempts
	}
	if c.Workflow.RetryBackoff <= 0 {
		c.Workflow.RetryBackoff = defaultRetryBackoff
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
