package queue

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a queue item.
type Status string

const (
	StatusPending    Status = "pending"
	StatusCollecting Status = "collecting"
	StatusCollected  Status = "collected"
	StatusRendering  Status = "rendering"
	StatusRendered   Status = "rendered"
	StatusProducing  Status = "producing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Progress notes recorded when processing items are rolled back outside the
// normal stage flow.
const (
	DaemonStartReason   = "Reset on daemon startup"
	DaemonStopReason    = "Daemon stopped"
	OperatorResetReason = "Reset by operator"
)

var allStatuses = []Status{
	StatusPending,
	StatusCollecting,
	StatusCollected,
	StatusRendering,
	StatusRendered,
	StatusProducing,
	StatusCompleted,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var processingStatuses = map[Status]struct{}{
	StatusCollecting: {},
	StatusRendering:  {},
	StatusProducing:  {},
}

// stageRollback maps a processing status back to the start of its stage, used
// when reclaiming stale or stuck items.
var stageRollback = map[Status]Status{
	StatusCollecting: StatusPending,
	StatusRendering:  StatusCollected,
	StatusProducing:  StatusRendered,
}

// HealthSummary describes aggregated queue counts per key lifecycle states.
type HealthSummary struct {
	Total      int
	Pending    int
	Processing int
	Failed     int
	Completed  int
}

// Item represents a queue item persisted in SQLite. The JSON columns carry
// the stage payloads: RequestJSON is written at enqueue time, the others by
// the stage that owns them.
type Item struct {
	ID               int64
	CourseName       string
	Seed             int64
	Status           Status
	RequestJSON      string
	CourseDataJSON   string
	RenderOutputJSON string
	VideoOutputJSON  string
	ErrorMessage     string
	CreatedAt        time.Time
	UpdatedAt        time.Time
	ProgressStage    string
	ProgressPercent  float64
	ProgressMessage  string
	LastHeartbeat    *time.Time
	Attempts         int
	NextAttemptAt    *time.Time
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsProcessing returns true when the status reflects an in-flight operation.
func (i Item) IsProcessing() bool {
	_, ok := processingStatuses[i.Status]
	return ok
}

// IsProcessingStatus reports whether a status reflects an in-flight operation.
func IsProcessingStatus(status Status) bool {
	_, ok := processingStatuses[status]
	return ok
}

// RollbackStatus returns the stage-start status a processing item falls back
// to when its worker dies or the stage must be retried.
func RollbackStatus(processing Status) (Status, bool) {
	start, ok := stageRollback[processing]
	return start, ok
}

// SetProgress updates all three progress fields atomically.
func (i *Item) SetProgress(stage, message string, percent float64) {
	i.ProgressStage = stage
	i.ProgressMessage = message
	i.ProgressPercent = percent
}

// SetFailed marks the item as failed with the given error message.
func (i *Item) SetFailed(message string) {
	i.Status = StatusFailed
	i.ErrorMessage = message
	i.ProgressPercent = 0
	i.ProgressMessage = message
	i.LastHeartbeat = nil
	i.NextAttemptAt = nil
	i.ProgressStage = "Failed"
}

// StageKey returns the normalized stage identifier used in CLI presentation.
func (s Status) StageKey() string {
	switch s {
	case "":
		return ""
	case StatusPending:
		return "planned"
	case StatusCompleted:
		return "final"
	default:
		return string(s)
	}
}
