// Package generation runs one catalog step through the generation backend.
//
// The invoker pairs a step's fixed instruction with its JSON-encoded payload,
// issues a single JSON-mode completion, and recovers the returned object with
// the extract package. Transport and status failures are reported as
// ErrGenerationRequestFailed; extraction failures surface unchanged.
package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ytleads/internal/extract"
	"ytleads/internal/logging"
	"ytleads/internal/services/llm"
	"ytleads/internal/steps"
)

// ErrGenerationRequestFailed reports that the backend call itself failed.
var ErrGenerationRequestFailed = errors.New("generation request failed")

// Backend is the JSON-mode completion call the invoker depends on.
type Backend interface {
	CompleteJSON(ctx context.Context, req llm.Request) (string, error)
}

// Invoker runs generation steps.
type Invoker struct {
	backend Backend
	logger  *slog.Logger
}

// NewInvoker constructs an Invoker around backend.
func NewInvoker(backend Backend, logger *slog.Logger) *Invoker {
	return &Invoker{
		backend: backend,
		logger:  logging.NewComponentLogger(logger, "generation"),
	}
}

// Invoke runs step id against payload and returns the recovered object.
func (i *Invoker) Invoke(ctx context.Context, id steps.ID, payload any) (map[string]any, error) {
	logger := logging.WithContext(ctx, i.logger).With(logging.String(logging.FieldStep, id.String()))
	if i.backend == nil {
		return nil, fmt.Errorf("%w: %s: no backend configured", ErrGenerationRequestFailed, id)
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", id, err)
	}

	started := time.Now()
	raw, err := i.backend.CompleteJSON(ctx, llm.Request{
		Label:       id.String(),
		Instruction: steps.Instruction(id),
		Payload:     string(encoded),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGenerationRequestFailed, err)
	}
	logger.Debug("generation response received",
		logging.Duration("elapsed", time.Since(started)),
		logging.Int("payload_bytes", len(encoded)),
		logging.Int("response_bytes", len(raw)),
	)

	data, err := extract.Object(raw)
	if err != nil {
		logger.Debug("generation output not extractable", logging.Error(err), logging.String("raw", snippet(raw)))
		return nil, fmt.Errorf("%s: %w", id, err)
	}
	return data, nil
}

func snippet(raw string) string {
	const limit = 200
	runes := []rune(raw)
	if len(runes) <= limit {
		return raw
	}
	return string(runes[:limit]) + "..."
}
