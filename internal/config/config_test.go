package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"ytleads/internal/config"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"OPENROUTER_API_KEY", "MAKE_WEBHOOK_URL", "NTFY_TOPIC"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	clearEnv(t)
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "ytleads")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Storage.Backend != config.StorageSQLite {
		t.Fatalf("expected sqlite backend by default, got %q", cfg.Storage.Backend)
	}
	if cfg.Storage.RecordKey != "youtube_leads_jobs" {
		t.Fatalf("unexpected record key %q", cfg.Storage.RecordKey)
	}
	if cfg.LLM.Model != "google/gemini-2.0-flash-lite-001" {
		t.Fatalf("unexpected model %q", cfg.LLM.Model)
	}
	if cfg.LLM.RetryAttempts != 1 {
		t.Fatalf("expected retries disabled by default, got %d", cfg.LLM.RetryAttempts)
	}
	if !cfg.Transcript.PlaceholderOnFailure {
		t.Fatal("expected placeholder transcript enabled by default")
	}
	if cfg.DatabasePath() != filepath.Join(wantData, "ytleads.db") {
		t.Fatalf("unexpected database path %q", cfg.DatabasePath())
	}
	if err := cfg.RequireLLM(); err == nil {
		t.Fatal("expected RequireLLM to fail without an api key")
	}
}

func TestLoadCustomPath(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	configPath := filepath.Join(t.TempDir(), "ytleads.toml")

	type payload struct {
		LLM struct {
			APIKey string `toml:"api_key"`
			Model  string `toml:"model"`
		} `toml:"llm"`
		Transcript struct {
			WebhookURL           string `toml:"webhook_url"`
			PlaceholderOnFailure bool   `toml:"placeholder_on_failure"`
		} `toml:"transcript"`
		Storage struct {
			Backend string `toml:"backend"`
		} `toml:"storage"`
	}
	custom := payload{}
	custom.LLM.APIKey = "abc123"
	custom.LLM.Model = "openai/gpt-4o-mini"
	custom.Transcript.WebhookURL = "https://hook.example.com/abc"
	custom.Transcript.PlaceholderOnFailure = false
	custom.Storage.Backend = "FILE"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.LLM.APIKey != "abc123" || cfg.LLM.Model != "openai/gpt-4o-mini" {
		t.Fatalf("unexpected llm settings %+v", cfg.LLM)
	}
	if cfg.Transcript.WebhookURL != "https://hook.example.com/abc" {
		t.Fatalf("unexpected webhook %q", cfg.Transcript.WebhookURL)
	}
	if cfg.Transcript.PlaceholderOnFailure {
		t.Fatal("expected placeholder disabled by file")
	}
	if cfg.Storage.Backend != config.StorageFile {
		t.Fatalf("expected backend to normalize to file, got %q", cfg.Storage.Backend)
	}
	if err := cfg.RequireLLM(); err != nil {
		t.Fatalf("RequireLLM: %v", err)
	}
}

func TestEnvFallbacksFillMissingValues(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("OPENROUTER_API_KEY", "env-key")
	t.Setenv("MAKE_WEBHOOK_URL", "https://hook.example.com/env")
	t.Setenv("NTFY_TOPIC", "https://ntfy.sh/leads")

	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.LLM.APIKey != "env-key" {
		t.Errorf("expected LLM key from env, got %q", cfg.LLM.APIKey)
	}
	if cfg.Transcript.WebhookURL != "https://hook.example.com/env" {
		t.Errorf("expected webhook from env, got %q", cfg.Transcript.WebhookURL)
	}
	if cfg.Notifications.NtfyTopic != "https://ntfy.sh/leads" {
		t.Errorf("expected ntfy topic from env, got %q", cfg.Notifications.NtfyTopic)
	}
}

func TestConfigFileWinsOverEnv(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("OPENROUTER_API_KEY", "env-key")
	configPath := filepath.Join(t.TempDir(), "ytleads.toml")
	if err := os.WriteFile(configPath, []byte("[llm]\napi_key = \"file-key\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.LLM.APIKey != "file-key" {
		t.Fatalf("expected file key to win, got %q", cfg.LLM.APIKey)
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("OPENROUTER_API_KEY=dotenv-key\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("OPENROUTER_API_KEY") })

	cfg, _, _, err := config.Load(filepath.Join(dir, "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.LLM.APIKey != "dotenv-key" {
		t.Fatalf("expected key from .env, got %q", cfg.LLM.APIKey)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "your_openrouter_api_key_here") {
		t.Fatalf("sample config missing placeholder key: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if cfg.Storage.RecordKey != "youtube_leads_jobs" {
		t.Fatalf("unexpected sample record key %q", cfg.Storage.RecordKey)
	}
	if !cfg.Transcript.PlaceholderOnFailure {
		t.Fatal("expected sample to enable placeholder transcript")
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"unknown backend", func(c *config.Config) { c.Storage.Backend = "redis" }},
		{"empty record key", func(c *config.Config) { c.Storage.RecordKey = "" }},
		{"temperature", func(c *config.Config) { c.LLM.Temperature = 3 }},
		{"retry attempts", func(c *config.Config) { c.LLM.RetryAttempts = 0 }},
		{"base url scheme", func(c *config.Config) { c.LLM.BaseURL = "ftp://example.com" }},
		{"webhook host", func(c *config.Config) { c.Transcript.WebhookURL = "https://" }},
		{"timeout", func(c *config.Config) { c.Metadata.TimeoutSeconds = 0 }},
		{"log level", func(c *config.Config) { c.Logging.Level = "verbose" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}

	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}
