package testsupport

import (
	"context"
	"testing"

	"fairway/internal/config"
	"fairway/internal/pipeline"
	"fairway/internal/queue"
)

// MustOpenStore opens a queue.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewCourse creates a new queued course item for tests using the provided store.
func NewCourse(t testing.TB, store *queue.Store, name string, seed int64) *queue.Item {
	t.Helper()

	request := pipeline.CourseRequest{CourseName: name, Seed: seed}
	encoded, err := request.Encode()
	if err != nil {
		t.Fatalf("encode course request: %v", err)
	}
	item, err := store.NewCourse(context.Background(), name, seed, encoded)
	if err != nil {
		t.Fatalf("store.NewCourse: %v", err)
	}
	return item
}
