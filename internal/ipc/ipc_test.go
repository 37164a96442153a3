package ipc_test

import (
	"context"
	"path/filepath"
	"testing"

	"fairway/internal/daemon"
	"fairway/internal/ipc"
	"fairway/internal/logging"
	"fairway/internal/queue"
	"fairway/internal/stage"
	"fairway/internal/testsupport"
	"fairway/internal/workflow"
)

type noopStage struct{}

func (noopStage) Prepare(context.Context, *queue.Item) error { return nil }
func (noopStage) Execute(context.Context, *queue.Item) error { return nil }
func (noopStage) HealthCheck(context.Context) stage.Health {
	return stage.Healthy("noop")
}

func newTestServer(t *testing.T) (*ipc.Client, *queue.Store) {
	t.Helper()

	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	store := testsupport.MustOpenStore(t, cfg)
	logger := logging.NewNop()

	mgr := workflow.NewManager(cfg, store, logger)
	mgr.ConfigureStages(workflow.StageSet{
		Collector: noopStage{},
		Renderer:  noopStage{},
		Producer:  noopStage{},
	})

	d, err := daemon.New(cfg, store, logger, mgr)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	socketPath := filepath.Join(cfg.Paths.LogDir, "ipc-test.sock")
	srv, err := ipc.NewServer(ctx, socketPath, d, logger)
	if err != nil {
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()

	client, err := ipc.Dial(socketPath)
	if err != nil {
		t.Fatalf("ipc.Dial: %v", err)
	}

	t.Cleanup(func() {
		client.Close()
		cancel()
		srv.Close()
		d.Close()
	})

	return client, store
}

func TestStatusRoundTrip(t *testing.T) {
	client, _ := newTestServer(t)

	resp, err := client.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if resp.Running {
		t.Fatal("expected daemon not running before start")
	}
	if resp.QueueDBPath == "" {
		t.Fatal("expected queue db path in status")
	}
	if len(resp.StageHealth) != 3 {
		t.Fatalf("expected 3 stage health entries, got %d", len(resp.StageHealth))
	}
	if len(resp.Dependencies) == 0 {
		t.Fatal("expected dependency statuses")
	}
}

func TestStartStop(t *testing.T) {
	client, _ := newTestServer(t)

	startResp, err := client.Start()
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !startResp.Started {
		t.Fatalf("expected started, message: %s", startResp.Message)
	}

	statusResp, err := client.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !statusResp.Running {
		t.Fatal("expected daemon running after start")
	}

	stopResp, err := client.Stop()
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if !stopResp.Stopped {
		t.Fatal("expected stopped")
	}
}

func TestQueueAddAndList(t *testing.T) {
	client, _ := newTestServer(t)

	addResp, err := client.QueueAdd("Pebble Beach", 42)
	if err != nil {
		t.Fatalf("QueueAdd: %v", err)
	}
	if addResp.Item.ID == 0 {
		t.Fatal("expected assigned item id")
	}
	if addResp.Item.CourseName != "Pebble Beach" {
		t.Fatalf("unexpected course name %q", addResp.Item.CourseName)
	}
	if addResp.Item.Seed != 42 {
		t.Fatalf("unexpected seed %d", addResp.Item.Seed)
	}

	listResp, err := client.QueueList(nil)
	if err != nil {
		t.Fatalf("QueueList: %v", err)
	}
	if len(listResp.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(listResp.Items))
	}
	if listResp.Items[0].Status != string(queue.StatusPending) {
		t.Fatalf("unexpected status %q", listResp.Items[0].Status)
	}

	filtered, err := client.QueueList([]string{string(queue.StatusFailed)})
	if err != nil {
		t.Fatalf("QueueList filtered: %v", err)
	}
	if len(filtered.Items) != 0 {
		t.Fatalf("expected no failed items, got %d", len(filtered.Items))
	}
}

func TestQueueAddRejectsEmptyName(t *testing.T) {
	client, _ := newTestServer(t)

	if _, err := client.QueueAdd("   ", 0); err == nil {
		t.Fatal("expected error for empty course name")
	}
}

func TestQueueDescribe(t *testing.T) {
	client, _ := newTestServer(t)

	addResp, err := client.QueueAdd("St Andrews", 7)
	if err != nil {
		t.Fatalf("QueueAdd: %v", err)
	}

	descResp, err := client.QueueDescribe(addResp.Item.ID)
	if err != nil {
		t.Fatalf("QueueDescribe: %v", err)
	}
	if descResp.Item.CourseName != "St Andrews" {
		t.Fatalf("unexpected course name %q", descResp.Item.CourseName)
	}

	if _, err := client.QueueDescribe(9999); err == nil {
		t.Fatal("expected error for unknown item")
	}
}

func TestQueueRetryAndClear(t *testing.T) {
	client, store := newTestServer(t)
	ctx := context.Background()

	item := testsupport.NewCourse(t, store, "Pinehurst", 3)
	item.Status = queue.StatusFailed
	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("mark failed: %v", err)
	}

	retryResp, err := client.QueueRetry(nil)
	if err != nil {
		t.Fatalf("QueueRetry: %v", err)
	}
	if retryResp.Updated != 1 {
		t.Fatalf("expected 1 retried, got %d", retryResp.Updated)
	}

	updated, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if updated.Status != queue.StatusPending {
		t.Fatalf("expected pending after retry, got %s", updated.Status)
	}

	clearResp, err := client.QueueClear()
	if err != nil {
		t.Fatalf("QueueClear: %v", err)
	}
	if clearResp.Removed != 1 {
		t.Fatalf("expected 1 removed, got %d", clearResp.Removed)
	}
}

func TestQueueHealth(t *testing.T) {
	client, store := newTestServer(t)

	testsupport.NewCourse(t, store, "Augusta", 1)

	resp, err := client.QueueHealth()
	if err != nil {
		t.Fatalf("QueueHealth: %v", err)
	}
	if resp.Total != 1 || resp.Pending != 1 {
		t.Fatalf("unexpected health counts %+v", resp)
	}
}

func TestTestNotificationWithoutTopic(t *testing.T) {
	client, _ := newTestServer(t)

	resp, err := client.TestNotification()
	if err != nil {
		t.Fatalf("TestNotification: %v", err)
	}
	if resp.Sent {
		t.Fatal("expected notification to be skipped without topic")
	}
	if resp.Message == "" {
		t.Fatal("expected explanatory message")
	}
}
