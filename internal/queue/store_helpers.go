package queue

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

const itemColumns = `id, course_name, seed, status, request_json, course_data_json,
    render_output_json, video_output_json, error_message, created_at, updated_at,
    progress_stage, progress_percent, progress_message, last_heartbeat, attempts, next_attempt_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(scanner rowScanner) (*Item, error) {
	var (
		item             Item
		statusStr        string
		requestJSON      sql.NullString
		courseDataJSON   sql.NullString
		renderOutputJSON sql.NullString
		videoOutputJSON  sql.NullString
		errorMessage     sql.NullString
		createdAt        string
		updatedAt        string
		progressStage    sql.NullString
		progressMessage  sql.NullString
		lastHeartbeat    sql.NullString
		nextAttemptAt    sql.NullString
	)

	if err := scanner.Scan(
		&item.ID,
		&item.CourseName,
		&item.Seed,
		&statusStr,
		&requestJSON,
		&courseDataJSON,
		&renderOutputJSON,
		&videoOutputJSON,
		&errorMessage,
		&createdAt,
		&updatedAt,
		&progressStage,
		&item.ProgressPercent,
		&progressMessage,
		&lastHeartbeat,
		&item.Attempts,
		&nextAttemptAt,
	); err != nil {
		return nil, err
	}

	item.Status = Status(statusStr)
	item.RequestJSON = requestJSON.String
	item.CourseDataJSON = courseDataJSON.String
	item.RenderOutputJSON = renderOutputJSON.String
	item.VideoOutputJSON = videoOutputJSON.String
	item.ErrorMessage = errorMessage.String
	item.ProgressStage = progressStage.String
	item.ProgressMessage = progressMessage.String

	var err error
	if item.CreatedAt, err = parseTimeString(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if item.UpdatedAt, err = parseTimeString(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	if lastHeartbeat.Valid && lastHeartbeat.String != "" {
		ts, err := parseTimeString(lastHeartbeat.String)
		if err != nil {
			return nil, fmt.Errorf("parse last_heartbeat: %w", err)
		}
		item.LastHeartbeat = &ts
	}
	if nextAttemptAt.Valid && nextAttemptAt.String != "" {
		ts, err := parseTimeString(nextAttemptAt.String)
		if err != nil {
			return nil, fmt.Errorf("parse next_attempt_at: %w", err)
		}
		item.NextAttemptAt = &ts
	}
	return &item, nil
}

func parseTimeString(value string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.UTC().Format(time.RFC3339Nano)
}

func makePlaceholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
