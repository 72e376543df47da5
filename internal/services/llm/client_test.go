package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

var testRequest = Request{Label: "YT5", Instruction: "system", Payload: "user"}

func completionHandler(t *testing.T, content string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]any{
			"choices": []any{
				map[string]any{
					"finish_reason": "stop",
					"message": map[string]any{
						"content": content,
					},
				},
			},
		}
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			t.Errorf("encode response: %v", err)
		}
	}
}

func TestCompleteJSONSendsOpenRouterRequest(t *testing.T) {
	var captured chatRequest
	var headers http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers = r.Header.Clone()
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		completionHandler(t, `{"summary_bullets":["a"],"concepts":["b"]}`)(w, r)
	}))
	defer server.Close()

	client := NewClient(Config{
		APIKey:      "secret",
		BaseURL:     server.URL,
		Model:       "google/gemini-2.0-flash-lite-001",
		Referer:     "youtubeleads",
		Title:       "YouTube to Leads",
		Temperature: 0.3,
	})
	content, err := client.CompleteJSON(context.Background(), Request{
		Label:       "YT2",
		Instruction: "You are a knowledge extraction expert.",
		Payload:     `{"transcript":"hello"}`,
	})
	if err != nil {
		t.Fatalf("CompleteJSON returned error: %v", err)
	}
	if !strings.Contains(content, "summary_bullets") {
		t.Fatalf("unexpected content %q", content)
	}
	if got := headers.Get("Authorization"); got != "Bearer secret" {
		t.Fatalf("unexpected auth header %q", got)
	}
	if headers.Get("HTTP-Referer") != "youtubeleads" || headers.Get("X-Title") != "YouTube to Leads" {
		t.Fatalf("missing attribution headers: %v", headers)
	}
	if captured.Model != "google/gemini-2.0-flash-lite-001" {
		t.Fatalf("unexpected model %q", captured.Model)
	}
	if captured.ResponseFormat.Type != "json_object" {
		t.Fatalf("expected json_object response format, got %v", captured.ResponseFormat)
	}
	if captured.Temperature != 0.3 {
		t.Fatalf("expected temperature 0.3, got %v", captured.Temperature)
	}
	if len(captured.Messages) != 2 || captured.Messages[0].Role != "system" || captured.Messages[1].Content != `{"transcript":"hello"}` {
		t.Fatalf("unexpected messages %+v", captured.Messages)
	}
}

func TestCompleteJSONRequiresAPIKey(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://127.0.0.1:1"})
	if _, err := client.CompleteJSON(context.Background(), testRequest); err == nil {
		t.Fatal("expected missing api key error")
	}
}

func TestCompleteJSONStatusErrorWithoutRetry(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("upstream down"))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo"})
	_, err := client.CompleteJSON(context.Background(), testRequest)
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusServiceUnavailable || statusErr.Label != "YT5" {
		t.Fatalf("unexpected status error %+v", statusErr)
	}
	if !strings.Contains(err.Error(), "llm YT5: http 503: upstream down") {
		t.Fatalf("expected step label in error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected a single attempt by default, got %d", calls)
	}
}

func TestClientHealthCheck(t *testing.T) {
	server := httptest.NewServer(completionHandler(t, "```json\n{\"ok\":true}\n```"))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model"})
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck returned error: %v", err)
	}
}

func TestClientHealthCheckFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "bad", BaseURL: server.URL, Model: "demo"})
	if err := client.HealthCheck(context.Background()); err == nil {
		t.Fatal("expected health check to fail")
	}
}

func TestCompleteJSONEmptyContentHasSnippet(t *testing.T) {
	server := httptest.NewServer(completionHandler(t, ""))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model"})
	_, err := client.CompleteJSON(context.Background(), testRequest)
	if err == nil {
		t.Fatal("expected empty content to fail")
	}
	var emptyErr *EmptyResponseError
	if !errors.As(err, &emptyErr) || emptyErr.FinishReason != "stop" {
		t.Fatalf("expected EmptyResponseError, got %v", err)
	}
	if !strings.Contains(err.Error(), "llm YT5: empty content") || !strings.Contains(err.Error(), "response=") {
		t.Fatalf("expected labelled empty-content error with body, got %v", err)
	}
}

func TestClientRetriesOnHTTP429(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "rate limited"})
			return
		}
		completionHandler(t, `{"quiz":[]}`)(w, r)
	}))
	defer server.Close()

	var slept []time.Duration
	client := NewClient(
		Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model"},
		WithSleeper(func(d time.Duration) { slept = append(slept, d) }),
		WithRetryBackoff(0, 10*time.Second),
		WithRetryMaxAttempts(3),
	)
	if _, err := client.CompleteJSON(context.Background(), testRequest); err != nil {
		t.Fatalf("CompleteJSON returned error: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
	if len(slept) != 1 || slept[0] != time.Second {
		t.Fatalf("expected single sleep of 1s, got %v", slept)
	}
}

func TestClientDoesNotRetryClientErrors(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewClient(
		Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model"},
		WithSleeper(func(time.Duration) {}),
		WithRetryMaxAttempts(4),
	)
	if _, err := client.CompleteJSON(context.Background(), testRequest); err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Fatalf("expected no retries for 400, got %d calls", calls)
	}
}

func TestBackoffDelayDoublesAndCaps(t *testing.T) {
	client := NewClient(Config{}, WithRetryBackoff(time.Second, 5*time.Second))
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 5 * time.Second}
	for i, expected := range want {
		if got := client.backoffDelay(i + 1); got != expected {
			t.Fatalf("attempt %d: got %v want %v", i+1, got, expected)
		}
	}
}

func TestCompleteJSONRefusalIsNotRetried(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{
				map[string]any{
					"finish_reason": "stop",
					"message":       map[string]any{"content": "", "refusal": "cannot comply"},
				},
			},
		})
	}))
	defer server.Close()

	client := NewClient(
		Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model"},
		WithSleeper(func(time.Duration) {}),
		WithRetryMaxAttempts(3),
	)
	_, err := client.CompleteJSON(context.Background(), testRequest)
	if err == nil || !strings.Contains(err.Error(), "model refused: cannot comply") {
		t.Fatalf("expected refusal error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected refusal to stop retries, got %d calls", calls)
	}
}

func TestCompleteJSONGivesUpAfterBudget(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(
		Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model"},
		WithSleeper(func(time.Duration) {}),
		WithRetryMaxAttempts(2),
	)
	_, err := client.CompleteJSON(context.Background(), testRequest)
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || !strings.Contains(err.Error(), "gave up after 2 attempts") {
		t.Fatalf("expected wrapped status error, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}
