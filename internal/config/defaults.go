package config

const (
	defaultConfigPath           = "~/.config/ytleads/config.toml"
	defaultDataDir              = "~/.local/share/ytleads"
	defaultLogDir               = "~/.local/share/ytleads/logs"
	defaultStorageBackend       = "sqlite"
	defaultRecordKey            = "youtube_leads_jobs"
	defaultLLMBaseURL           = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel             = "google/gemini-2.0-flash-lite-001"
	defaultLLMReferer           = "youtubeleads"
	defaultLLMTitle             = "YouTube to Leads"
	defaultLLMTimeoutSeconds    = 120
	defaultLLMRetryAttempts     = 1
	defaultCaptionsBaseURL      = "https://www.youtube.com/api/timedtext"
	defaultCaptionLanguage      = "en"
	defaultTranscriptTimeout    = 60
	defaultOEmbedURL            = "https://www.youtube.com/oembed"
	defaultMetadataTimeout      = 15
	defaultAPIBind              = "127.0.0.1:7488"
	defaultNotifyRequestTimeout = 10
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	storageBackendSQLite        = "sqlite"
	storageBackendFile          = "file"
	storageBackendMemory        = "memory"
	envOpenRouterAPIKey         = "OPENROUTER_API_KEY"
	envMakeWebhookURL           = "MAKE_WEBHOOK_URL"
	envNtfyTopic                = "NTFY_TOPIC"
)

// Storage backend names accepted by storage.backend.
const (
	StorageSQLite = storageBackendSQLite
	StorageFile   = storageBackendFile
	StorageMemory = storageBackendMemory
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Storage: Storage{
			Backend:   defaultStorageBackend,
			RecordKey: defaultRecordKey,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
			RetryAttempts:  defaultLLMRetryAttempts,
		},
		Transcript: Transcript{
			CaptionsBaseURL:      defaultCaptionsBaseURL,
			Language:             defaultCaptionLanguage,
			TimeoutSeconds:       defaultTranscriptTimeout,
			PlaceholderOnFailure: true,
		},
		Metadata: Metadata{
			OEmbedURL:      defaultOEmbedURL,
			TimeoutSeconds: defaultMetadataTimeout,
		},
		API: API{
			Bind:           defaultAPIBind,
			AllowedOrigins: []string{"*"},
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			Completed:      true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
