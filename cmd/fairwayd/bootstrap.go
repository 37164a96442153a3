package main

import (
	"os"
	"path/filepath"
	"strconv"

	"log/slog"

	"fairway/internal/collect"
	"fairway/internal/config"
	"fairway/internal/postprod"
	"fairway/internal/queue"
	"fairway/internal/render"
	"fairway/internal/workflow"
)

func buildStageSet(cfg *config.Config, store *queue.Store, logger *slog.Logger) workflow.StageSet {
	return workflow.StageSet{
		Collector: collect.NewCollector(cfg, store, logger),
		Renderer:  render.NewRenderer(cfg, store, logger),
		Producer:  postprod.NewProducer(cfg, store, logger),
	}
}

func buildSocketPath(cfg *config.Config) string {
	if cfg == nil {
		return filepath.Join("", "fairway.sock")
	}
	return filepath.Join(cfg.Paths.LogDir, "fairway.sock")
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}
