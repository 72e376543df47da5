package generation

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"ytleads/internal/extract"
	"ytleads/internal/logging"
	"ytleads/internal/services/llm"
	"ytleads/internal/steps"
)

type stubBackend struct {
	label  string
	system string
	user   string
	reply  string
	err    error
}

func (s *stubBackend) CompleteJSON(_ context.Context, req llm.Request) (string, error) {
	s.label = req.Label
	s.system = req.Instruction
	s.user = req.Payload
	return s.reply, s.err
}

func TestInvokeSendsInstructionAndPayload(t *testing.T) {
	backend := &stubBackend{reply: "```json\n{\"hero_prompt\":\"sunrise\"}\n```"}
	invoker := NewInvoker(backend, logging.NewNop())

	got, err := invoker.Invoke(context.Background(), steps.YT10, map[string]any{"concepts": []string{"growth"}})
	if err != nil {
		t.Fatalf("Invoke returned error: %v", err)
	}
	if got["hero_prompt"] != "sunrise" {
		t.Fatalf("unexpected output %v", got)
	}
	if backend.label != "YT10" {
		t.Fatalf("expected request labelled YT10, got %q", backend.label)
	}
	if backend.system != steps.Instruction(steps.YT10) {
		t.Fatalf("unexpected system prompt %q", backend.system)
	}
	var sent map[string]any
	if err := json.Unmarshal([]byte(backend.user), &sent); err != nil {
		t.Fatalf("user prompt is not json: %v", err)
	}
	if _, ok := sent["concepts"]; !ok {
		t.Fatalf("payload not forwarded: %s", backend.user)
	}
}

func TestInvokeUnknownStepUsesGenericInstruction(t *testing.T) {
	backend := &stubBackend{reply: `{"ok":true}`}
	invoker := NewInvoker(backend, nil)
	if _, err := invoker.Invoke(context.Background(), steps.ID(99), map[string]any{}); err != nil {
		t.Fatalf("Invoke returned error: %v", err)
	}
	if backend.system != steps.GenericInstruction("YT99") {
		t.Fatalf("unexpected system prompt %q", backend.system)
	}
}

func TestInvokeWrapsBackendFailure(t *testing.T) {
	cause := &llm.StatusError{Label: "YT2", StatusCode: 503, Body: "down"}
	invoker := NewInvoker(&stubBackend{err: cause}, nil)
	_, err := invoker.Invoke(context.Background(), steps.YT2, map[string]any{"transcript": "x"})
	if !errors.Is(err, ErrGenerationRequestFailed) || !errors.Is(err, cause) {
		t.Fatalf("expected wrapped request failure, got %v", err)
	}
	if !strings.Contains(err.Error(), "llm YT2: http 503") {
		t.Fatalf("expected step id in error, got %v", err)
	}
}

func TestInvokePropagatesExtractionFailure(t *testing.T) {
	invoker := NewInvoker(&stubBackend{reply: "I cannot help with that."}, nil)
	_, err := invoker.Invoke(context.Background(), steps.YT4, map[string]any{})
	if !errors.Is(err, extract.ErrNoStructureFound) {
		t.Fatalf("expected ErrNoStructureFound, got %v", err)
	}
	if errors.Is(err, ErrGenerationRequestFailed) {
		t.Fatal("extraction failures must not be reported as request failures")
	}
}
