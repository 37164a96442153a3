package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"fairway/internal/logging"
	"fairway/internal/queue"
	"fairway/internal/services"
)

func (m *Manager) processItem(ctx context.Context, stg pipelineStage, item *queue.Item) error {
	requestID := uuid.NewString()
	stageCtx := services.WithRequestID(services.WithStage(services.WithItemID(ctx, item.ID), stg.name), requestID)
	logger := logging.WithContext(stageCtx, m.logger)

	if stg.handler == nil {
		logger.Warn("missing stage handler", logging.String(logging.FieldStage, stg.name))
		item.SetFailed(fmt.Sprintf("stage %s missing handler", stg.name))
		if err := m.store.Update(stageCtx, item); err != nil {
			logger.Error("failed to persist missing handler failure", logging.Error(err))
		}
		err := errors.New("stage handler unavailable")
		m.setLastError(err)
		return err
	}

	return m.executeStage(stageCtx, logger.With(logging.String(logging.FieldComponent, "workflow-manager")), stg, item)
}

func (m *Manager) executeStage(ctx context.Context, logger *slog.Logger, stg pipelineStage, item *queue.Item) error {
	stageStart := time.Now()
	logger.Info("stage started",
		logging.String(logging.FieldEventType, "stage_start"),
		logging.String("processing_status", string(stg.processingStatus)),
		logging.String("course_name", strings.TrimSpace(item.CourseName)),
	)

	if err := stg.handler.Prepare(ctx, item); err != nil {
		m.handleStageFailure(ctx, stg, item, err)
		m.setLastError(err)
		return err
	}
	if err := m.store.Update(ctx, item); err != nil {
		wrapped := fmt.Errorf("persist stage preparation: %w", err)
		logger.Error("failed to persist stage preparation", logging.Error(wrapped))
		m.setLastError(wrapped)
		return wrapped
	}

	execErr := m.executeWithHeartbeat(ctx, stg, item)
	if execErr != nil {
		if errors.Is(execErr, context.Canceled) {
			logger.Debug("stage interrupted by shutdown")
			return execErr
		}
		m.handleStageFailure(ctx, stg, item, execErr)
		m.setLastError(execErr)
		return execErr
	}

	if item.Status == stg.processingStatus || item.Status == "" {
		item.Status = stg.doneStatus
	}
	item.LastHeartbeat = nil
	if item.Status == queue.StatusCompleted {
		item.Attempts = 0
		item.NextAttemptAt = nil
		if item.ProgressPercent < 100 {
			item.ProgressPercent = 100
		}
		if strings.TrimSpace(item.ProgressMessage) == "" {
			item.ProgressMessage = "Completed"
		}
	}
	if err := m.store.Update(ctx, item); err != nil {
		wrapped := fmt.Errorf("persist stage result: %w", err)
		logger.Error("failed to persist stage result", logging.Error(wrapped))
		m.setLastError(wrapped)
		return wrapped
	}

	logger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.String("next_status", string(item.Status)),
		logging.Duration("stage_duration", time.Since(stageStart)),
	)
	return nil
}

func (m *Manager) executeWithHeartbeat(ctx context.Context, stg pipelineStage, item *queue.Item) error {
	hbCtx, hbCancel := context.WithCancel(ctx)
	var hbWG sync.WaitGroup
	hbWG.Add(1)
	go m.heartbeat.StartLoop(hbCtx, &hbWG, item.ID)

	execErr := stg.handler.Execute(ctx, item)
	hbCancel()
	hbWG.Wait()
	return execErr
}

// handleStageFailure applies the queue retry policy: retryable failures roll
// the item back to the stage start with exponential backoff until the attempt
// budget is spent; validation and configuration failures fail immediately.
func (m *Manager) handleStageFailure(ctx context.Context, stg pipelineStage, item *queue.Item, stageErr error) {
	logger := logging.WithContext(ctx, m.logger).With(logging.String(logging.FieldComponent, "workflow-manager"))
	message := services.Message(stageErr)
	if message == "" {
		message = fmt.Sprintf("%s stage failed", stg.name)
	}

	retryable := services.Retryable(stageErr)
	budget := m.cfg.Workflow.MaxAttempts
	if retryable && item.Attempts+1 < budget {
		backoff := time.Duration(m.cfg.Workflow.RetryBackoff) * time.Second
		if err := m.store.ScheduleRetry(ctx, item, backoff); err != nil {
			logger.Error("failed to schedule retry, marking item failed", logging.Error(err))
			m.failItem(ctx, logger, item, message)
			return
		}
		logger.Warn("stage failed, retry scheduled",
			logging.String(logging.FieldEventType, "stage_retry"),
			logging.String("error_message", message),
			logging.Int("attempts", item.Attempts),
			logging.Error(stageErr),
		)
		return
	}

	logger.Error("stage failed",
		logging.String(logging.FieldEventType, "stage_failure"),
		logging.String("error_message", message),
		logging.Int("attempts", item.Attempts),
		logging.Bool("retryable", retryable),
		logging.Error(stageErr),
	)
	m.failItem(ctx, logger, item, message)

	if m.notifier != nil {
		if err := m.notifier.NotifyError(ctx, stageErr, fmt.Sprintf("%s (%s stage)", item.CourseName, stg.name)); err != nil {
			logger.Warn("failure notification failed", logging.Error(err))
		}
	}
}

func (m *Manager) failItem(ctx context.Context, logger *slog.Logger, item *queue.Item, message string) {
	item.SetFailed(message)
	if err := m.store.Update(ctx, item); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug("daemon shutting down, could not persist stage failure")
		} else {
			logger.Error("failed to persist stage failure", logging.Error(err))
		}
	}
}
