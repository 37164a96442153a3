package daemon

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fairway/internal/deps"
	"fairway/internal/logging"
	"fairway/internal/pipeline"
	"fairway/internal/queue"
)

// Dependencies reports availability of the external binaries the pipeline
// shells out to.
func (d *Daemon) Dependencies() []deps.Status {
	return deps.CheckBinaries(deps.Requirements(d.cfg))
}

// EnqueueCourse validates and enqueues a course request for processing.
func (d *Daemon) EnqueueCourse(ctx context.Context, courseName string, seed int64) (*queue.Item, error) {
	courseName = strings.TrimSpace(courseName)
	if courseName == "" {
		return nil, fmt.Errorf("course name is required")
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	request := pipeline.CourseRequest{CourseName: courseName, Seed: seed}
	encoded, err := request.Encode()
	if err != nil {
		return nil, fmt.Errorf("encode course request: %w", err)
	}

	item, err := d.store.NewCourse(ctx, courseName, seed, encoded)
	if err != nil {
		return nil, err
	}

	d.logger.Info("course queued",
		logging.Int64(logging.FieldItemID, item.ID),
		logging.String("course_name", courseName))
	if err := d.notifier.NotifyCourseQueued(ctx, courseName); err != nil {
		d.logger.Warn("queued notification failed", logging.Error(err))
	}
	return item, nil
}

// ListQueue returns queue items filtered by the provided statuses.
func (d *Daemon) ListQueue(ctx context.Context, statuses []queue.Status) ([]*queue.Item, error) {
	return d.store.List(ctx, statuses...)
}

// GetQueueItem fetches a single queue item by id.
func (d *Daemon) GetQueueItem(ctx context.Context, id int64) (*queue.Item, error) {
	return d.store.GetByID(ctx, id)
}

// ClearQueue removes every item from the queue.
func (d *Daemon) ClearQueue(ctx context.Context) (int64, error) {
	return d.store.Clear(ctx)
}

// ClearCompleted removes completed items from the queue.
func (d *Daemon) ClearCompleted(ctx context.Context) (int64, error) {
	return d.store.ClearCompleted(ctx)
}

// ClearFailed removes failed items from the queue.
func (d *Daemon) ClearFailed(ctx context.Context) (int64, error) {
	return d.store.ClearFailed(ctx)
}

// RemoveQueueItems removes specific items by id and reports how many existed.
func (d *Daemon) RemoveQueueItems(ctx context.Context, ids []int64) (int64, error) {
	var count int64
	for _, id := range ids {
		removed, err := d.store.Remove(ctx, id)
		if err != nil {
			return count, err
		}
		if removed {
			count++
		}
	}
	return count, nil
}

// ResetStuck rolls items stuck in processing states back to their stage start.
func (d *Daemon) ResetStuck(ctx context.Context) (int64, error) {
	updated, err := d.store.ResetProcessing(ctx, queue.OperatorResetReason)
	return int64(updated), err
}

// RetryFailed resets failed items for another pass. An empty id list retries
// every failed item.
func (d *Daemon) RetryFailed(ctx context.Context, ids []int64) (int64, error) {
	updated, err := d.store.RetryFailed(ctx, ids...)
	return int64(updated), err
}

// QueueHealth returns aggregate queue counts.
func (d *Daemon) QueueHealth(ctx context.Context) (queue.HealthSummary, error) {
	return d.store.Health(ctx)
}

// TestNotification exercises the configured notification channel.
func (d *Daemon) TestNotification(ctx context.Context) (bool, string, error) {
	if strings.TrimSpace(d.cfg.Notifications.NtfyTopic) == "" {
		return false, "Notifications are not configured (set ntfy_topic)", nil
	}
	if err := d.notifier.TestNotification(ctx); err != nil {
		return false, "", err
	}
	return true, "", nil
}
