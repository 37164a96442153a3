package workflow

import (
	"context"
	"errors"
	"sync"
	"time"

	"log/slog"

	"fairway/internal/config"
	"fairway/internal/logging"
	"fairway/internal/notifications"
	"fairway/internal/queue"
	"fairway/internal/stage"
)

// StageSet bundles the concrete pipeline handlers the manager orchestrates.
type StageSet struct {
	Collector stage.Handler
	Renderer  stage.Handler
	Producer  stage.Handler
}

// pipelineStage binds a handler to its queue status transitions. A stage's
// done status is the next stage's start status; the manager itself is the
// only coordinator between stages.
type pipelineStage struct {
	name             string
	handler          stage.Handler
	startStatus      queue.Status
	processingStatus queue.Status
	doneStatus       queue.Status
}

// Manager coordinates queue processing using registered stage handlers.
type Manager struct {
	cfg          *config.Config
	store        *queue.Store
	logger       *slog.Logger
	notifier     notifications.Service
	pollInterval time.Duration

	heartbeat *HeartbeatMonitor
	stages    []pipelineStage

	mu      sync.RWMutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	lastErr error
}

// NewManager constructs a workflow manager.
func NewManager(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Manager {
	return NewManagerWithNotifier(cfg, store, logger, notifications.NewService(cfg))
}

// NewManagerWithNotifier constructs a workflow manager with a custom notifier (used in tests).
func NewManagerWithNotifier(cfg *config.Config, store *queue.Store, logger *slog.Logger, notifier notifications.Service) *Manager {
	return &Manager{
		cfg:          cfg,
		store:        store,
		logger:       logger,
		notifier:     notifier,
		pollInterval: time.Duration(cfg.Workflow.QueuePollInterval) * time.Second,
		heartbeat: NewHeartbeatMonitor(
			store,
			logger,
			time.Duration(cfg.Workflow.HeartbeatInterval)*time.Second,
			time.Duration(cfg.Workflow.HeartbeatTimeout)*time.Second,
		),
	}
}

// ConfigureStages registers the pipeline stages in execution order.
func (m *Manager) ConfigureStages(set StageSet) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stages = []pipelineStage{
		{
			name:             "collect",
			handler:          set.Collector,
			startStatus:      queue.StatusPending,
			processingStatus: queue.StatusCollecting,
			doneStatus:       queue.StatusCollected,
		},
		{
			name:             "render",
			handler:          set.Renderer,
			startStatus:      queue.StatusCollected,
			processingStatus: queue.StatusRendering,
			doneStatus:       queue.StatusRendered,
		},
		{
			name:             "postprod",
			handler:          set.Producer,
			startStatus:      queue.StatusRendered,
			processingStatus: queue.StatusProducing,
			doneStatus:       queue.StatusCompleted,
		},
	}
}

// Start begins background processing with a worker pool per stage.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("workflow already running")
	}
	if len(m.stages) == 0 {
		m.mu.Unlock()
		return errors.New("workflow stages not configured")
	}

	workers := m.cfg.Workflow.WorkersPerStage
	if workers <= 0 {
		workers = 1
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	stages := m.stages
	m.mu.Unlock()

	if reset, err := m.store.ResetProcessing(runCtx, queue.DaemonStartReason); err != nil {
		m.logger.Warn("failed to reset interrupted items", logging.Error(err))
	} else if reset > 0 {
		m.logger.Info("reset interrupted items to stage start", logging.Int("count", reset))
	}

	m.wg.Add(1)
	go m.runReclaimer(runCtx)

	for _, stg := range stages {
		for worker := 0; worker < workers; worker++ {
			m.wg.Add(1)
			go m.runWorker(runCtx, stg, worker)
		}
	}
	return nil
}

// Stop terminates background processing and waits for workers to exit.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
}

// LastError returns the most recent worker error, for status output.
func (m *Manager) LastError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastErr
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}
