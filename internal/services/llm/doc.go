// Package llm provides an OpenRouter-compatible chat completion client used by
// the generation steps.
//
// Requests always ask for a JSON object response (response_format
// json_object) and carry the HTTP-Referer and X-Title attribution headers.
// CompleteJSON returns the raw content string; callers recover the object
// with the extract package.
//
// # Retry Behaviour
//
// A single attempt is made by default. WithRetryMaxAttempts enables retries on
// HTTP 408/429/5xx, empty content, and network timeouts with exponential
// backoff (base 1s, max 10s). Retry-After is honoured. Context cancellation
// aborts retries immediately.
package llm
