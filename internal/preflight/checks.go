package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"ytleads/internal/config"
	"ytleads/internal/services/llm"
)

// CheckLLMKey verifies that an API key is configured without calling the API.
func CheckLLMKey(name string, cfg config.LLM) Result {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return Result{Name: name, Detail: "API key missing (set llm.api_key or OPENROUTER_API_KEY)"}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("API key set (model %s)", cfg.Model)}
}

// CheckLLM verifies that the LLM API is reachable and the key is valid.
// It uses a 30-second timeout and a single attempt (no retries).
func CheckLLM(ctx context.Context, name string, cfg config.LLM) Result {
	if keyCheck := CheckLLMKey(name, cfg); !keyCheck.Passed {
		return keyCheck
	}

	checkCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client := llm.NewClient(llm.Config{
		APIKey:         cfg.APIKey,
		BaseURL:        cfg.BaseURL,
		Model:          cfg.Model,
		Referer:        cfg.Referer,
		Title:          cfg.Title,
		TimeoutSeconds: cfg.TimeoutSeconds,
	}, llm.WithRetryMaxAttempts(1))

	if err := client.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeLLMError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "API reachable"}
}

// CheckWebhook reports whether the primary transcript channel is configured.
// Without it every job falls back to caption extraction.
func CheckWebhook(cfg config.Transcript) Result {
	const name = "Transcript webhook"
	if strings.TrimSpace(cfg.WebhookURL) == "" {
		detail := "not configured (captions only)"
		if cfg.PlaceholderOnFailure {
			detail = "not configured (captions, then placeholder transcript)"
		}
		return Result{Name: name, Optional: true, Detail: detail}
	}
	return Result{Name: name, Passed: true, Optional: true, Detail: cfg.WebhookURL}
}

// CheckNotifications reports whether ntfy delivery is configured.
func CheckNotifications(cfg config.Notifications) Result {
	const name = "Notifications"
	if strings.TrimSpace(cfg.NtfyTopic) == "" {
		return Result{Name: name, Optional: true, Detail: "disabled (no ntfy topic)"}
	}
	return Result{Name: name, Passed: true, Optional: true, Detail: cfg.NtfyTopic}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// summarizeLLMError produces a human-readable summary for LLM health check failures.
func summarizeLLMError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (LLM API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (LLM API unreachable)"
	}
	var statusErr *llm.StatusError
	if errors.As(err, &statusErr) {
		switch statusErr.StatusCode {
		case 401, 403:
			return fmt.Sprintf("auth failed (%d, check the API key)", statusErr.StatusCode)
		default:
			return fmt.Sprintf("API returned %d", statusErr.StatusCode)
		}
	}
	return err.Error()
}
