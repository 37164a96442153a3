package workflow

import (
	"context"
	"errors"
	"time"

	"log/slog"

	"fairway/internal/logging"
)

func (m *Manager) runWorker(ctx context.Context, stg pipelineStage, workerID int) {
	defer m.wg.Done()

	logger := m.logger
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logger.With(
		logging.String(logging.FieldComponent, "workflow-worker"),
		logging.String(logging.FieldStage, stg.name),
		logging.Int("worker", workerID),
	)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		item, err := m.store.Claim(ctx, stg.startStatus, stg.processingStatus)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			m.handleClaimError(ctx, logger, err)
			continue
		}
		if item == nil {
			m.waitForItemOrShutdown(ctx)
			continue
		}

		if err := m.processItem(ctx, stg, item); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
		}
	}
}

// runReclaimer periodically rolls items with stalled heartbeats back to their
// stage start status so another worker can pick them up.
func (m *Manager) runReclaimer(ctx context.Context) {
	defer m.wg.Done()

	logger := m.logger
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logger.With(logging.String(logging.FieldComponent, "workflow-reclaimer"))

	interval := m.heartbeat.heartbeatTimeout
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := m.heartbeat.ReclaimStaleItems(ctx, logger); err != nil {
				if errors.Is(err, context.Canceled) {
					return
				}
				logger.Warn("reclaim stale processing failed; stuck items may remain",
					logging.Error(err),
					logging.String(logging.FieldEventType, "heartbeat_reclaim_failed"),
				)
			}
		}
	}
}

func (m *Manager) handleClaimError(ctx context.Context, logger *slog.Logger, err error) {
	m.setLastError(err)
	logger.Error("failed to claim next queue item",
		logging.Error(err),
		logging.String(logging.FieldEventType, "queue_claim_failed"),
	)
	select {
	case <-ctx.Done():
	case <-time.After(time.Duration(m.cfg.Workflow.ErrorRetryInterval) * time.Second):
	}
}

func (m *Manager) waitForItemOrShutdown(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(m.pollInterval):
	}
}
