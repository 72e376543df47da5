package preflight

import (
	"context"

	"ytleads/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string `json:"name"`
	Passed   bool   `json:"passed"`
	Optional bool   `json:"optional,omitempty"`
	Detail   string `json:"detail"`
}

// RunAll executes all applicable preflight checks for the given config.
// The LLM check performs a live request only when includeNetwork is set.
func RunAll(ctx context.Context, cfg *config.Config, includeNetwork bool) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	if cfg.Storage.Backend != config.StorageMemory {
		results = append(results, CheckDirectoryAccess("Data directory", cfg.Paths.DataDir))
	}
	if cfg.Paths.LogDir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}

	if includeNetwork {
		results = append(results, CheckLLM(ctx, "Generation LLM", cfg.LLM))
	} else {
		results = append(results, CheckLLMKey("Generation LLM", cfg.LLM))
	}

	results = append(results, CheckWebhook(cfg.Transcript))
	results = append(results, CheckNotifications(cfg.Notifications))
	return results
}

// Failed reports whether any required check failed.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed && !r.Optional {
			return true
		}
	}
	return false
}
