package postprod

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"log/slog"

	"fairway/internal/config"
	"fairway/internal/logging"
	"fairway/internal/notifications"
	"fairway/internal/pipeline"
	"fairway/internal/queue"
	"fairway/internal/services"
	"fairway/internal/services/ffmpeg"
	"fairway/internal/services/tts"
	"fairway/internal/stage"
)

// Producer manages the post-production workflow.
type Producer struct {
	store    *queue.Store
	cfg      *config.Config
	logger   *slog.Logger
	encoder  ffmpeg.Encoder
	voice    tts.Synthesizer
	notifier notifications.Service
}

// NewProducer constructs the post-production handler using default dependencies.
func NewProducer(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Producer {
	encoder, err := ffmpeg.New(cfg.Encoder.Binary, cfg.Encoder.ProbeBinary, time.Duration(cfg.Encoder.EncodeTimeout)*time.Second)
	if err != nil {
		logger.Warn("encoder client unavailable", logging.Error(err))
	}
	var voice tts.Synthesizer
	if cfg.TTS.Enabled {
		client, err := tts.New(cfg.TTS.Binary, cfg.TTS.Voice, tts.WordsPerMinute(cfg.TTS.Speed), cfg.TTS.Pitch)
		if err != nil {
			logger.Warn("tts client unavailable", logging.Error(err))
		} else {
			voice = client
		}
	}
	return NewProducerWithDependencies(cfg, store, logger, encoder, voice, notifications.NewService(cfg))
}

// NewProducerWithDependencies allows injecting all collaborators (used in tests).
func NewProducerWithDependencies(cfg *config.Config, store *queue.Store, logger *slog.Logger, encoder ffmpeg.Encoder, voice tts.Synthesizer, notifier notifications.Service) *Producer {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String(logging.FieldComponent, "producer"))
	}
	return &Producer{store: store, cfg: cfg, logger: stageLogger, encoder: encoder, voice: voice, notifier: notifier}
}

func (p *Producer) Prepare(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, p.logger)
	if item.ProgressStage == "" {
		item.ProgressStage = "Producing"
	}
	item.ProgressMessage = "Starting post-production"
	item.ProgressPercent = 0
	item.ErrorMessage = ""
	logger.Info("starting post-production preparation", logging.String("course_name", strings.TrimSpace(item.CourseName)))
	return nil
}

func (p *Producer) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, p.logger)
	start := time.Now()

	render, err := stage.ParseRenderOutput(item.RenderOutputJSON)
	if err != nil {
		return err
	}

	if p.encoder == nil {
		return services.Wrap(services.ErrExternalTool, "postprod", "encoder check",
			"Encoder unavailable; install ffmpeg and set encoder.binary", nil)
	}

	stagingDir, err := item.StagingRoot(p.cfg.Paths.StagingDir)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "postprod", "prepare staging",
			"Failed to create staging directory; set staging_dir to a writable location", err)
	}
	if err := os.MkdirAll(p.cfg.Paths.OutputDir, 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, "postprod", "prepare output dir",
			"Failed to create output directory; set output_dir to a writable location", err)
	}

	courseName := strings.TrimSpace(item.CourseName)
	baseName := sanitizeFileName(courseName)
	if baseName == "" {
		baseName = "course"
	}
	videoPath := filepath.Join(p.cfg.Paths.OutputDir, baseName+".mp4")
	profile := p.profile()

	storyboard, reason := render.Storyboard()
	if !storyboard && !dirExists(render.FramesDir) {
		storyboard = true
		reason = "rendered frames directory missing"
		logger.Warn("frames directory absent despite primary render",
			logging.String("frames_dir", render.FramesDir))
	}

	if storyboard {
		p.applyProgress(ctx, item, "Producing", "Encoding storyboard video", 20)
		seconds := p.cfg.Audio.StoryboardMS / 1000
		if err := p.encoder.StoryboardVideo(ctx, courseName, videoPath, seconds, profile); err != nil {
			return services.Wrap(services.ErrExternalTool, "postprod", "storyboard video",
				"Storyboard video encoding failed", err)
		}
		logger.Info("storyboard video encoded",
			logging.String("video_path", videoPath),
			logging.String("reason", reason))
	} else {
		p.applyProgress(ctx, item, "Producing", "Encoding frame sequence", 20)
		if err := p.encoder.EncodeFrames(ctx, render.FramesDir, videoPath, profile); err != nil {
			return services.Wrap(services.ErrExternalTool, "postprod", "encode frames",
				"Frame encoding failed; check rendered frames and encoder profile", err)
		}
		logger.Info("frame sequence encoded", logging.String("video_path", videoPath))
	}

	holes := p.holeCount(item)
	output := pipeline.VideoOutput{VideoPath: videoPath}

	p.applyProgress(ctx, item, "Producing", "Applying captions", 50)
	output.CaptionsPath = p.applyCaptions(ctx, item, courseName, holes, videoPath, stagingDir, storyboard)

	p.applyProgress(ctx, item, "Producing", "Synthesizing voiceover", 65)
	voicePath := p.synthesizeVoiceover(ctx, courseName, holes, baseName)

	p.applyProgress(ctx, item, "Producing", "Mixing audio", 75)
	output.AudioPath = p.mixAudio(ctx, videoPath, voicePath, stagingDir)

	p.applyProgress(ctx, item, "Producing", "Extracting thumbnail", 90)
	output.ThumbnailPath = p.extractThumbnail(ctx, videoPath, stagingDir, baseName)

	if info, err := os.Stat(videoPath); err == nil {
		output.FileSizeBytes = info.Size()
	}
	output.ProcessingTimeMs = time.Since(start).Milliseconds()

	encoded, err := output.Encode()
	if err != nil {
		return services.Wrap(services.ErrTransient, "postprod", "encode video output",
			"Failed to serialize video output", err)
	}
	item.VideoOutputJSON = encoded
	item.ProgressStage = "Produced"
	item.ProgressPercent = 100
	item.ProgressMessage = "Video ready"

	logger.Info("post-production completed",
		logging.String("video_path", output.VideoPath),
		logging.Int64("file_size_bytes", output.FileSizeBytes),
		logging.Int64("processing_time_ms", output.ProcessingTimeMs))

	if p.notifier != nil {
		if err := p.notifier.NotifyVideoReady(ctx, courseName, output.VideoPath); err != nil {
			logger.Warn("video notification failed", logging.Error(err))
		}
	}
	return nil
}

// applyCaptions overlays timed text and, on the primary render path, emits a
// sidecar subtitle file next to the video. Failures log a warning and return
// an empty path.
func (p *Producer) applyCaptions(ctx context.Context, item *queue.Item, courseName string, holes int, videoPath, stagingDir string, storyboard bool) string {
	if !p.cfg.Captions.Enabled {
		return ""
	}
	logger := logging.WithContext(ctx, p.logger)

	cues := WelcomeCues(courseName, holes)
	srtPath := filepath.Join(stagingDir, "captions.srt")
	if err := WriteSRT(cues, srtPath); err != nil {
		logger.Warn("caption sidecar write failed", logging.Error(err))
		return ""
	}

	style := ffmpeg.CaptionStyle{
		Font:     p.cfg.Captions.Font,
		FontSize: p.cfg.Captions.FontSize,
		Color:    p.cfg.Captions.Color,
		Position: p.cfg.Captions.Position,
		Style:    p.cfg.Captions.Style,
	}
	overlaid := filepath.Join(stagingDir, "captioned.mp4")
	if err := p.encoder.OverlayCaptions(ctx, videoPath, srtPath, overlaid, style); err != nil {
		logger.Warn("caption overlay failed", logging.Error(err))
		return ""
	}
	if err := os.Rename(overlaid, videoPath); err != nil {
		logger.Warn("caption overlay replace failed", logging.Error(err))
		return ""
	}

	if storyboard {
		return ""
	}
	sidecar := strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + ".srt"
	if err := WriteSRT(cues, sidecar); err != nil {
		logger.Warn("sidecar subtitle write failed", logging.Error(err))
		return ""
	}
	return sidecar
}

// synthesizeVoiceover renders the fixed welcome script next to the final
// video so the track survives staging cleanup. Failure is swallowed so the
// pipeline continues without audio.
func (p *Producer) synthesizeVoiceover(ctx context.Context, courseName string, holes int, baseName string) string {
	if p.voice == nil {
		return ""
	}
	logger := logging.WithContext(ctx, p.logger)
	voicePath := filepath.Join(p.cfg.Paths.OutputDir, baseName+"_voiceover.wav")
	if err := p.voice.Synthesize(ctx, WelcomeScript(courseName, holes), voicePath); err != nil {
		logger.Warn("voiceover synthesis failed, continuing without audio", logging.Error(err))
		return ""
	}
	return voicePath
}

// mixAudio mixes configured background music with any voiceover into the
// video and returns the path of the track that was recorded, voiceover first.
// Best-effort; on failure the unmixed video stands and the result is empty.
func (p *Producer) mixAudio(ctx context.Context, videoPath, voicePath, stagingDir string) string {
	musicPath := strings.TrimSpace(p.cfg.Audio.MusicPath)
	if musicPath != "" && !fileExists(musicPath) {
		logging.WithContext(ctx, p.logger).Warn("configured music asset missing",
			logging.String("music_path", musicPath))
		musicPath = ""
	}
	if musicPath == "" && voicePath == "" {
		return ""
	}

	logger := logging.WithContext(ctx, p.logger)
	mixed := filepath.Join(stagingDir, "mixed.mp4")
	err := p.encoder.MixAudio(ctx, videoPath, musicPath, voicePath, mixed,
		p.cfg.Audio.MusicVolume, p.cfg.Audio.VoiceVolume, p.cfg.Audio.FadeSeconds)
	if err != nil {
		logger.Warn("audio mix failed", logging.Error(err))
		return ""
	}
	if err := os.Rename(mixed, videoPath); err != nil {
		logger.Warn("audio mix replace failed", logging.Error(err))
		return ""
	}
	if voicePath != "" {
		return voicePath
	}
	return musicPath
}

// extractThumbnail grabs a frame from the midpoint of the final video.
func (p *Producer) extractThumbnail(ctx context.Context, videoPath, stagingDir, baseName string) string {
	logger := logging.WithContext(ctx, p.logger)

	duration, err := p.encoder.Duration(ctx, videoPath)
	if err != nil {
		logger.Warn("duration probe failed, skipping thumbnail", logging.Error(err))
		return ""
	}
	thumbPath := filepath.Join(p.cfg.Paths.OutputDir, baseName+"_thumb.jpg")
	if err := p.encoder.Thumbnail(ctx, videoPath, thumbPath, duration/2); err != nil {
		logger.Warn("thumbnail extraction failed", logging.Error(err))
		return ""
	}
	return thumbPath
}

// holeCount recovers the hole count from the collected course data for
// caption and script text. Zero when the payload is unreadable.
func (p *Producer) holeCount(item *queue.Item) int {
	data, err := pipeline.ParseCourseData(item.CourseDataJSON)
	if err != nil {
		return 0
	}
	return len(data.Holes)
}

func (p *Producer) profile() ffmpeg.EncodeProfile {
	return ffmpeg.EncodeProfile{
		Codec:      p.cfg.Encoder.Codec,
		Preset:     p.cfg.Encoder.Preset,
		CRF:        p.cfg.Encoder.CRF,
		MaxBitrate: p.cfg.Encoder.MaxBitrate,
		Threads:    p.cfg.Encoder.Threads,
		Width:      p.cfg.Encoder.Width,
		Height:     p.cfg.Encoder.Height,
		FPS:        p.cfg.Renderer.FPS,
	}
}

// HealthCheck verifies post-production dependencies.
func (p *Producer) HealthCheck(ctx context.Context) stage.Health {
	name := stage.ProducerName
	if p.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if strings.TrimSpace(p.cfg.Paths.OutputDir) == "" {
		return stage.Unhealthy(name, "output directory not configured")
	}
	if p.encoder == nil {
		return stage.Unhealthy(name, "encoder client unavailable")
	}
	return stage.Healthy(name)
}

func (p *Producer) applyProgress(ctx context.Context, item *queue.Item, stageLabel, message string, percent float64) {
	item.SetProgress(stageLabel, message, percent)
	if p.store == nil {
		return
	}
	if err := p.store.UpdateProgress(ctx, item); err != nil {
		logging.WithContext(ctx, p.logger).Warn("failed to persist progress", logging.Error(err))
	}
}

func sanitizeFileName(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteByte('_')
		}
	}
	return strings.Trim(b.String(), "_")
}

func dirExists(path string) bool {
	if strings.TrimSpace(path) == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
