package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"fairway/internal/config"
)

const userAgent = "Fairway-Go/0.1.0"

// Service defines the notification surface exposed to workflow components.
type Service interface {
	NotifyCourseQueued(ctx context.Context, courseName string) error
	NotifyCollectionCompleted(ctx context.Context, courseName string, holes int) error
	NotifyRenderCompleted(ctx context.Context, courseName string, storyboard bool) error
	NotifyVideoReady(ctx context.Context, courseName, videoPath string) error
	NotifyError(ctx context.Context, err error, context string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyCourseQueued(ctx context.Context, courseName string) error {
	courseName = strings.TrimSpace(courseName)
	data := payload{
		title:   "Fairway - Course Queued",
		message: fmt.Sprintf("Queued flythrough for %s", courseName),
		tags:    []string{"fairway", "queue", "added"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyCollectionCompleted(ctx context.Context, courseName string, holes int) error {
	courseName = strings.TrimSpace(courseName)
	data := payload{
		title:   "Fairway - Data Collected",
		message: fmt.Sprintf("Collected %d holes for %s", holes, courseName),
		tags:    []string{"fairway", "collect", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyRenderCompleted(ctx context.Context, courseName string, storyboard bool) error {
	courseName = strings.TrimSpace(courseName)
	message := fmt.Sprintf("Render complete: %s", courseName)
	if storyboard {
		message = fmt.Sprintf("Storyboard fallback used for %s", courseName)
	}
	data := payload{
		title:   "Fairway - Render Complete",
		message: message,
		tags:    []string{"fairway", "render", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyVideoReady(ctx context.Context, courseName, videoPath string) error {
	courseName = strings.TrimSpace(courseName)
	message := fmt.Sprintf("Flythrough ready: %s", courseName)
	if videoPath = strings.TrimSpace(videoPath); videoPath != "" {
		message = fmt.Sprintf("%s\nFile: %s", message, videoPath)
	}
	data := payload{
		title:    "Fairway - Video Ready",
		message:  message,
		tags:     []string{"fairway", "video", "completed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "Fairway - Error",
		message:  builder.String(),
		tags:     []string{"fairway", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Fairway - Test",
		message:  "Notification system test",
		tags:     []string{"fairway", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyCourseQueued(context.Context, string) error             { return nil }
func (noopService) NotifyCollectionCompleted(context.Context, string, int) error { return nil }
func (noopService) NotifyRenderCompleted(context.Context, string, bool) error    { return nil }
func (noopService) NotifyVideoReady(context.Context, string, string) error       { return nil }
func (noopService) NotifyError(context.Context, error, string) error             { return nil }
func (noopService) TestNotification(context.Context) error                       { return nil }
