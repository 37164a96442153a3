package preflight

import (
	"context"

	"fairway/internal/config"
	"fairway/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// minimumFreeBytes is the working space the render and encode stages need in
// staging before the daemon will accept work.
const minimumFreeBytes = 5 << 30

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Staging directory", cfg.Paths.StagingDir),
		CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir),
		CheckDiskSpace("Staging disk space", cfg.Paths.StagingDir, minimumFreeBytes),
		CheckProvider(ctx, "Geocoding provider", cfg.Geocoding.BaseURL),
		CheckProvider(ctx, "Elevation provider", cfg.Elevation.BaseURL),
		CheckProvider(ctx, "Map feature provider", cfg.MapFeatures.BaseURL),
	}
	return results
}

// FailedRequired returns the subset of results that did not pass. Provider
// checks are advisory; collection degrades to fallbacks without them.
func FailedRequired(results []Result) []Result {
	var failed []Result
	for _, result := range results {
		if !result.Passed && !isProviderCheck(result.Name) {
			failed = append(failed, result)
		}
	}
	return failed
}

func isProviderCheck(name string) bool {
	switch name {
	case "Geocoding provider", "Elevation provider", "Map feature provider":
		return true
	}
	return false
}

// CheckSystemDeps evaluates all external binary dependencies for the given
// config. Both the daemon and the CLI status command use this to avoid
// duplicating the requirements list.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	return deps.CheckBinaries(deps.Requirements(cfg))
}
