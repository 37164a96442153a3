package render

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
	"fairway/internal/services/blender"
	"fairway/internal/stage"
)

// Renderer manages the model generation workflow.
type Renderer struct {
	store    *queue.Store
	cfg      *config.Config
	logger   *slog.Logger
	client   blender.Renderer
	notifier notifications.Service
}

// NewRenderer constructs the rendering handler using default dependencies.
func NewRenderer(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Renderer {
	client, err := blender.New(cfg.Renderer.Binary, time.Duration(cfg.Renderer.RenderTimeout)*time.Second)
	if err != nil {
		logger.Warn("renderer client unavailable", logging.Error(err))
	}
	return NewRendererWithDependencies(cfg, store, logger, client, notifications.NewService(cfg))
}

// NewRendererWithDependencies allows injecting all collaborators (used in tests).
func NewRendererWithDependencies(cfg *config.Config, store *queue.Store, logger *slog.Logger, client blender.Renderer, notifier notifications.Service) *Renderer {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String(logging.FieldComponent, "renderer"))
	}
	return &Renderer{store: store, cfg: cfg, logger: stageLogger, client: client, notifier: notifier}
}

func (r *Renderer) Prepare(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, r.logger)
	if item.ProgressStage == "" {
		item.ProgressStage = "Rendering"
	}
	item.ProgressMessage = "Starting model generation"
	item.ProgressPercent = 0
	item.ErrorMessage = ""
	logger.Info("starting render preparation", logging.String("course_name", strings.TrimSpace(item.CourseName)))
	return nil
}

func (r *Renderer) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, r.logger)

	data, err := stage.ParseCourseData(item.CourseDataJSON)
	if err != nil {
		return err
	}

	stagingDir, err := item.StagingRoot(r.cfg.Paths.StagingDir)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "render", "prepare staging",
			"Failed to create staging directory; set staging_dir to a writable location", err)
	}

	settings := pipeline.RenderSettings{
		Engine:     r.cfg.Renderer.Engine,
		Device:     "CPU",
		FrameCount: r.cfg.Renderer.FrameCount,
		FPS:        r.cfg.Renderer.FPS,
	}

	if r.client == nil {
		return r.storyboard(ctx, item, data, stagingDir, settings, "renderer client unavailable")
	}

	r.applyProgress(ctx, item, "Rendering", "Probing renderer", 5)
	version, err := r.client.Version(ctx)
	if err != nil {
		logger.Warn("renderer unreachable",
			logging.String(logging.FieldFallback, "storyboard"),
			logging.Error(err))
		return r.storyboard(ctx, item, data, stagingDir, settings, "renderer executable unreachable")
	}
	logger.Info("renderer available", logging.String("version", version))

	if r.cfg.Renderer.GPUEnabled {
		available, _ := r.client.ProbeGPU(ctx)
		if available {
			settings.Device = "GPU"
		} else {
			logger.Warn("gpu compute unavailable, downgrading to cpu engine",
				logging.String(logging.FieldFallback, "cpu render"))
		}
	}

	spec := BuildSpec(data, item.Seed, settings)
	specPath, err := WriteSpec(spec, stagingDir)
	if err != nil {
		logger.Warn("render spec write failed", logging.Error(err))
		return r.storyboard(ctx, item, data, stagingDir, settings, "failed to write render spec")
	}
	scriptPath, err := WriteScript(stagingDir)
	if err != nil {
		logger.Warn("generation script write failed", logging.Error(err))
		return r.storyboard(ctx, item, data, stagingDir, settings, "failed to write generation script")
	}

	outputDir := filepath.Join(stagingDir, "render")
	r.applyProgress(ctx, item, "Rendering", "Rendering frames", 10)
	logger.Info("launching render",
		logging.String("spec_path", specPath),
		logging.String("output_dir", outputDir),
		logging.String("device", settings.Device))

	renderErr := r.client.Render(ctx, scriptPath, specPath, outputDir, settings.FrameCount, func(update blender.ProgressUpdate) {
		if update.Total <= 0 {
			return
		}
		percent := 10 + float64(update.Frame)/float64(update.Total)*85
		r.applyProgress(ctx, item, "Rendering", update.Message, percent)
	})
	if renderErr != nil {
		logger.Warn("render failed",
			logging.String(logging.FieldFallback, "storyboard"),
			logging.Error(renderErr))
		return r.storyboard(ctx, item, data, stagingDir, settings, "render subprocess failed: "+renderErr.Error())
	}

	result, err := ReadResult(outputDir)
	if err != nil {
		logger.Warn("render result unreadable",
			logging.String(logging.FieldFallback, "storyboard"),
			logging.Error(err))
		return r.storyboard(ctx, item, data, stagingDir, settings, "render produced no result file")
	}

	output := pipeline.RenderOutput{
		ModelPath:      result.ModelPath,
		TexturePath:    result.TexturePath,
		FramesDir:      filepath.Join(outputDir, framesDirName),
		CameraPaths:    []pipeline.CameraPath{spec.CameraPath},
		RenderSettings: settings,
		Metadata:       result.Metadata,
	}
	if err := r.finish(ctx, item, output); err != nil {
		return err
	}

	logger.Info("rendering completed",
		logging.String("model_path", output.ModelPath),
		logging.String("frames_dir", output.FramesDir))

	if r.notifier != nil {
		if err := r.notifier.NotifyRenderCompleted(ctx, data.Name, false); err != nil {
			logger.Warn("render notification failed", logging.Error(err))
		}
	}
	return nil
}

// storyboard runs the stage's internal safety net. Only a failure of the
// storyboard itself surfaces to the queue.
func (r *Renderer) storyboard(ctx context.Context, item *queue.Item, data pipeline.CourseData, stagingDir string, settings pipeline.RenderSettings, reason string) error {
	logger := logging.WithContext(ctx, r.logger)
	r.applyProgress(ctx, item, "Rendering", "Generating storyboard", 50)

	path, err := WriteStoryboard(data, stagingDir)
	if err != nil {
		return services.Wrap(services.ErrTransient, "render", "write storyboard",
			"Both render and storyboard paths failed", err)
	}

	output := pipeline.RenderOutput{
		ModelPath:      path,
		RenderSettings: settings,
		FallbackUsed:   true,
		FallbackReason: reason,
	}
	if err := r.finish(ctx, item, output); err != nil {
		return err
	}

	logger.Info("storyboard fallback generated",
		logging.String("storyboard_path", path),
		logging.String("reason", reason))

	if r.notifier != nil {
		if err := r.notifier.NotifyRenderCompleted(ctx, data.Name, true); err != nil {
			logger.Warn("render notification failed", logging.Error(err))
		}
	}
	return nil
}

func (r *Renderer) finish(ctx context.Context, item *queue.Item, output pipeline.RenderOutput) error {
	encoded, err := output.Encode()
	if err != nil {
		return services.Wrap(services.ErrTransient, "render", "encode render output",
			"Failed to serialize render output", err)
	}
	item.RenderOutputJSON = encoded
	item.ProgressStage = "Rendered"
	item.ProgressPercent = 100
	item.ProgressMessage = "Model generation finished"
	return nil
}

// HealthCheck verifies rendering dependencies. A missing renderer binary is
// still healthy; the stage degrades to storyboard output without it.
func (r *Renderer) HealthCheck(ctx context.Context) stage.Health {
	name := stage.RendererName
	if r.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if strings.TrimSpace(r.cfg.Paths.StagingDir) == "" {
		return stage.Unhealthy(name, "staging directory not configured")
	}
	if info, err := os.Stat(r.cfg.Paths.StagingDir); err == nil && !info.IsDir() {
		return stage.Unhealthy(name, "staging directory is not a directory")
	}
	return stage.Healthy(name)
}

func (r *Renderer) applyProgress(ctx context.Context, item *queue.Item, stageLabel, message string, percent float64) {
	item.SetProgress(stageLabel, message, percent)
	if r.store == nil {
		return
	}
	if err := r.store.UpdateProgress(ctx, item); err != nil {
		logging.WithContext(ctx, r.logger).Warn("failed to persist progress", logging.Error(err))
	}
}
