package testsupport

import (
	"path/filepath"
	"testing"

	"ytleads/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It uses the memory backend, a placeholder API key and an ephemeral bind
// address unless options say otherwise.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Storage.Backend = config.StorageMemory
	cfgVal.LLM.APIKey = "test"
	cfgVal.API.Bind = "127.0.0.1:0"
	cfgVal.Notifications.NtfyTopic = ""

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithBackend selects the record store backend.
func WithBackend(backend string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Storage.Backend = backend
	}
}

// WithLLMEndpoint points the generation backend at url.
func WithLLMEndpoint(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.LLM.BaseURL = url
	}
}

// WithTranscriptEndpoints points the webhook and caption channels at test servers.
func WithTranscriptEndpoints(webhookURL, captionsURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Transcript.WebhookURL = webhookURL
		b.cfg.Transcript.CaptionsBaseURL = captionsURL
	}
}

// WithMetadataEndpoint points the oEmbed lookup at url.
func WithMetadataEndpoint(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Metadata.OEmbedURL = url
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
