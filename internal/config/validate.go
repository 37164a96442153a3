package config

import (
	"errors"
	"fmt"
	"strings"
)

var validCaptionPositions = map[string]struct{}{"top": {}, "middle": {}, "bottom": {}}

var validCaptionStyles = map[string]struct{}{"simple": {}, "animated": {}, "professional": {}}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateProviders(); err != nil {
		return err
	}
	if err := c.validateTools(); err != nil {
		return err
	}
	if err := c.validateCaptions(); err != nil {
		return err
	}
	if err := c.validateAudio(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateProviders() error {
	if strings.TrimSpace(c.Geocoding.BaseURL) == "" {
		return errors.New("geocoding.base_url must be set")
	}
	if strings.TrimSpace(c.Elevation.BaseURL) == "" {
		return errors.New("elevation.base_url must be set")
	}
	if strings.TrimSpace(c.MapFeatures.BaseURL) == "" {
		return errors.New("map_features.base_url must be set")
	}
	if c.Geocoding.FallbackLat < -90 || c.Geocoding.FallbackLat > 90 {
		return errors.New("geocoding.fallback_lat must be between -90 and 90")
	}
	if c.Geocoding.FallbackLon < -180 || c.Geocoding.FallbackLon > 180 {
		return errors.New("geocoding.fallback_lon must be between -180 and 180")
	}
	return nil
}

func (c *Config) validateTools() error {
	if c.Renderer.Binary == "" {
		return errors.New("renderer.binary must be set")
	}
	if c.Encoder.Binary == "" {
		return errors.New("encoder.binary must be set")
	}
	if c.Encoder.CRF < 0 || c.Encoder.CRF > 51 {
		return errors.New("encoder.crf must be between 0 and 51")
	}
	if c.TTS.Enabled && c.TTS.Binary == "" {
		return errors.New("tts.binary must be set when tts.enabled is true")
	}
	return nil
}

func (c *Config) validateCaptions() error {
	if !c.Captions.Enabled {
		return nil
	}
	if _, ok := validCaptionPositions[c.Captions.Position]; !ok {
		return fmt.Errorf("captions.position must be top, middle, or bottom (got %q)", c.Captions.Position)
	}
	if _, ok := validCaptionStyles[c.Captions.Style]; !ok {
		return fmt.Errorf("captions.style must be simple, animated, or professional (got %q)", c.Captions.Style)
	}
	if c.Captions.FontSize <= 0 {
		return errors.New("captions.font_size must be positive")
	}
	return nil
}

func (c *Config) validateAudio() error {
	if c.Audio.MusicVolume < 0 || c.Audio.MusicVolume > 2 {
		return errors.New("audio.music_volume must be between 0 and 2")
	}
	if c.Audio.VoiceVolume < 0 || c.Audio.VoiceVolume > 2 {
		return errors.New("audio.voice_volume must be between 0 and 2")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.WorkersPerStage > 16 {
		return errors.New("workflow.workers_per_stage must be 16 or fewer; each worker blocks on a subprocess")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
		return nil
	default:
		return fmt.Errorf("logging.format must be console or json (got %q)", c.Logging.Format)
	}
}
