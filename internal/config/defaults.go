package config

const (
	defaultStagingDir = "~/.local/share/fairway/staging"
	defaultOutputDir  = "~/fairway/videos"
	defaultLogDir     = "~/.local/share/fairway/logs"
	defaultAssetsDir  = "~/.local/share/fairway/assets"

	defaultGeocodingBaseURL = "https://nominatim.openstreetmap.org"
	defaultElevationBaseURL = "https://api.open-elevation.com"
	defaultOverpassBaseURL  = "https://overpass-api.de/api/interpreter"

	defaultFallbackLat = 36.5683
	defaultFallbackLon = -121.9496

	defaultProviderTimeout = 30
	defaultBatchSize       = 10
	defaultBatchDelayMS    = 1000
	defaultFeatureRadius   = 1000.0

	defaultRendererBinary = "blender"
	defaultRenderTimeout  = 300
	defaultRenderEngine   = "CYCLES"
	defaultFrameCount     = 250
	defaultFPS            = 30

	defaultEncoderBinary = "ffmpeg"
	defaultProbeBinary   = "ffprobe"
	defaultCodec         = "libx264"
	defaultPreset        = "medium"
	defaultCRF           = 23
	defaultMaxBitrate    = "8M"
	defaultVideoWidth    = 1920
	defaultVideoHeight   = 1080
	defaultEncodeTimeout = 600

	defaultTTSBinary = "espeak-ng"
	defaultTTSVoice  = "en-us"
	defaultTTSSpeed  = 1.0

	defaultCaptionFont     = "DejaVuSans"
	defaultCaptionFontSize = 48
	defaultCaptionColor    = "white"
	defaultCaptionPosition = "bottom"
	defaultCaptionStyle    = "simple"

	defaultMusicVolume       = 0.3
	defaultVoiceVolume       = 1.0
	defaultStoryboardVideoMS = 30000

	defaultQueuePollInterval  = 5
	defaultErrorRetryInterval = 10
	defaultHeartbeatInterval  = 15
	defaultHeartbeatTimeout   = 120
	defaultWorkersPerStage    = 2
	defaultMaxAttempts        = 3
	defaultRetryBackoff       = 30

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			OutputDir:  defaultOutputDir,
			LogDir:     defaultLogDir,
			AssetsDir:  defaultAssetsDir,
		},
		Geocoding: Geocoding{
			BaseURL:        defaultGeocodingBaseURL,
			RequestTimeout: defaultProviderTimeout,
			FallbackLat:    defaultFallbackLat,
			FallbackLon:    defaultFallbackLon,
		},
		Elevation: Elevation{
			BaseURL:        defaultElevationBaseURL,
			RequestTimeout: defaultProviderTimeout,
			BatchSize:      defaultBatchSize,
			BatchDelayMS:   defaultBatchDelayMS,
		},
		MapFeatures: MapFeatures{
			BaseURL:        defaultOverpassBaseURL,
			RequestTimeout: defaultProviderTimeout,
			RadiusMeters:   defaultFeatureRadius,
		},
		Renderer: Renderer{
			Binary:        defaultRendererBinary,
			RenderTimeout: defaultRenderTimeout,
			Engine:        defaultRenderEngine,
			FrameCount:    defaultFrameCount,
			FPS:           defaultFPS,
		},
		Encoder: Encoder{
			Binary:        defaultEncoderBinary,
			ProbeBinary:   defaultProbeBinary,
			Codec:         defaultCodec,
			Preset:        defaultPreset,
			CRF:           defaultCRF,
			MaxBitrate:    defaultMaxBitrate,
			Threads:       0,
			Width:         defaultVideoWidth,
			Height:        defaultVideoHeight,
			EncodeTimeout: defaultEncodeTimeout,
		},
		TTS: TTS{
			Enabled: true,
			Binary:  defaultTTSBinary,
			Voice:   defaultTTSVoice,
			Speed:   defaultTTSSpeed,
		},
		Captions: Captions{
			Enabled:  true,
			Font:     defaultCaptionFont,
			FontSize: defaultCaptionFontSize,
			Color:    defaultCaptionColor,
			Position: defaultCaptionPosition,
			Style:    defaultCaptionStyle,
		},
		Audio: Audio{
			MusicVolume:  defaultMusicVolume,
			VoiceVolume:  defaultVoiceVolume,
			StoryboardMS: defaultStoryboardVideoMS,
		},
		Workflow: Workflow{
			QueuePollInterval:  defaultQueuePollInterval,
			ErrorRetryInterval: defaultErrorRetryInterval,
			HeartbeatInterval:  defaultHeartbeatInterval,
			HeartbeatTimeout:   defaultHeartbeatTimeout,
			WorkersPerStage:    defaultWorkersPerStage,
			MaxAttempts:        defaultMaxAttempts,
			RetryBackoff:       defaultRetryBackoff,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Notifications: Notifications{
			RequestTimeout: 10,
		},
	}
}
