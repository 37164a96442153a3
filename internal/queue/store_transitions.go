package queue

import (
	"context"
	"fmt"
	"time"
)

// UpdateHeartbeat refreshes the liveness timestamp for an item being processed.
func (s *Store) UpdateHeartbeat(ctx context.Context, itemID int64) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE queue_items SET last_heartbeat = ?, updated_at = ? WHERE id = ?`,
		now,
		now,
		itemID,
	); err != nil {
		return fmt.Errorf("update heartbeat: %w", err)
	}
	return nil
}

// StaleProcessing returns processing items whose heartbeat is older than the
// timeout. Items with no heartbeat at all are included; a worker records one
// immediately on claim, so its absence means the claim never got off the
// ground.
func (s *Store) StaleProcessing(ctx context.Context, timeout time.Duration) ([]*Item, error) {
	cutoff := time.Now().UTC().Add(-timeout).Format(time.RFC3339Nano)

	statuses := make([]Status, 0, len(processingStatuses))
	for status := range processingStatuses {
		statuses = append(statuses, status)
	}
	placeholders := makePlaceholders(len(statuses))
	args := make([]any, 0, len(statuses)+1)
	for _, status := range statuses {
		args = append(args, status)
	}
	args = append(args, cutoff)

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+itemColumns+` FROM queue_items
         WHERE status IN (`+placeholders+`)
           AND (last_heartbeat IS NULL OR last_heartbeat < ?)
         ORDER BY created_at`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("stale processing: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ReclaimStale rolls stale processing items back to their stage start status
// so another worker can pick them up. Returns the number of reclaimed items.
func (s *Store) ReclaimStale(ctx context.Context, timeout time.Duration) (int, error) {
	items, err := s.StaleProcessing(ctx, timeout)
	if err != nil {
		return 0, err
	}

	reclaimed := 0
	for _, item := range items {
		start, ok := RollbackStatus(item.Status)
		if !ok {
			continue
		}
		item.Status = start
		item.LastHeartbeat = nil
		item.SetProgress("", "Reclaimed after stalled heartbeat", 0)
		if err := s.Update(ctx, item); err != nil {
			return reclaimed, fmt.Errorf("reclaim item %d: %w", item.ID, err)
		}
		reclaimed++
	}
	return reclaimed, nil
}

// ResetProcessing rolls every processing item back to its stage start status,
// recording reason as the progress note. Called on daemon startup and shutdown
// so interrupted work resumes cleanly instead of staying stuck mid-stage.
func (s *Store) ResetProcessing(ctx context.Context, reason string) (int, error) {
	items, err := s.List(ctx)
	if err != nil {
		return 0, err
	}

	reset := 0
	for _, item := range items {
		start, ok := RollbackStatus(item.Status)
		if !ok {
			continue
		}
		item.Status = start
		item.LastHeartbeat = nil
		item.SetProgress("", reason, 0)
		if err := s.Update(ctx, item); err != nil {
			return reset, fmt.Errorf("reset item %d: %w", item.ID, err)
		}
		reset++
	}
	return reset, nil
}

// ScheduleRetry rolls a failed stage attempt back to the stage start status
// and sets the next eligible attempt time using exponential backoff on the
// base interval. The caller decides whether the attempt budget is exhausted;
// this only records the schedule.
func (s *Store) ScheduleRetry(ctx context.Context, item *Item, backoff time.Duration) error {
	start, ok := RollbackStatus(item.Status)
	if !ok {
		return fmt.Errorf("item %d status %s has no retry target", item.ID, item.Status)
	}

	item.Attempts++
	delay := backoff
	for i := 1; i < item.Attempts; i++ {
		delay *= 2
	}
	next := time.Now().UTC().Add(delay)

	item.Status = start
	item.LastHeartbeat = nil
	item.NextAttemptAt = &next
	item.SetProgress("", fmt.Sprintf("Retry %d scheduled", item.Attempts), 0)
	return s.Update(ctx, item)
}

// RetryFailed moves failed items back to pending for a fresh run. When ids is
// empty every failed item is retried. Returns the number of items moved.
func (s *Store) RetryFailed(ctx context.Context, ids ...int64) (int, error) {
	var items []*Item
	var err error

	if len(ids) == 0 {
		items, err = s.List(ctx, StatusFailed)
		if err != nil {
			return 0, err
		}
	} else {
		for _, id := range ids {
			item, err := s.GetByID(ctx, id)
			if err != nil {
				return 0, err
			}
			if item == nil || item.Status != StatusFailed {
				continue
			}
			items = append(items, item)
		}
	}

	retried := 0
	for _, item := range items {
		item.Status = StatusPending
		item.ErrorMessage = ""
		item.Attempts = 0
		item.NextAttemptAt = nil
		item.LastHeartbeat = nil
		item.SetProgress("", "Queued for retry", 0)
		if err := s.Update(ctx, item); err != nil {
			return retried, fmt.Errorf("retry item %d: %w", item.ID, err)
		}
		retried++
	}
	return retried, nil
}
