// Package extract recovers a single JSON object from free-form model output.
//
// Generation backends are asked for JSON but routinely wrap it in markdown
// fences, prose, or stray control characters. Object tries a direct parse and
// then a fixed sanitization pass before giving up with an error that matches
// ErrMalformedOutput.
package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedOutput matches every extraction failure.
var ErrMalformedOutput = errors.New("malformed model output")

var (
	// ErrNoStructureFound reports output without any opening brace.
	ErrNoStructureFound = fmt.Errorf("%w: no json object found", ErrMalformedOutput)
	// ErrInvalidStructure reports sanitized text that is not brace delimited.
	ErrInvalidStructure = fmt.Errorf("%w: invalid json structure after sanitization", ErrMalformedOutput)
	// ErrUnparsableStructure reports a brace-delimited candidate the decoder rejected.
	ErrUnparsableStructure = fmt.Errorf("%w: unable to parse json object", ErrMalformedOutput)
)

const fence = "```"

// Object returns the JSON object contained in raw.
func Object(raw string) (map[string]any, error) {
	var direct map[string]any
	if err := json.Unmarshal([]byte(raw), &direct); err == nil && direct != nil {
		return direct, nil
	}

	candidate, err := Sanitize(raw)
	if err != nil {
		return nil, err
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(candidate), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnparsableStructure, err)
	}
	if parsed == nil {
		return nil, ErrInvalidStructure
	}
	return parsed, nil
}

// Sanitize reduces raw to a brace-delimited candidate without parsing it.
func Sanitize(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	text = unfence(text)
	text = stripControl(text)

	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", ErrNoStructureFound
	}
	text = text[start:]
	if end := strings.LastIndexByte(text, '}'); end >= 0 {
		text = text[:end+1]
	}

	if !strings.HasPrefix(text, "{") || !strings.HasSuffix(text, "}") {
		return "", ErrInvalidStructure
	}
	return text, nil
}

// unfence keeps the body of the first fenced block. An unterminated fence keeps
// everything after the opening marker.
func unfence(text string) string {
	open := strings.Index(text, fence)
	if open < 0 {
		return text
	}
	body := text[open+len(fence):]
	if nl := strings.IndexByte(body, '\n'); nl >= 0 && isLanguageTag(body[:nl]) {
		body = body[nl+1:]
	}
	if closing := strings.Index(body, fence); closing >= 0 {
		body = body[:closing]
	}
	return strings.TrimSpace(body)
}

func isLanguageTag(s string) bool {
	s = strings.TrimSpace(s)
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == '+':
		default:
			return false
		}
	}
	return true
}

// stripControl removes C0 and C1 control characters. Quotes and backslashes
// are left untouched.
func stripControl(text string) string {
	return strings.Map(func(r rune) rune {
		if r <= 0x1F || (r >= 0x7F && r <= 0x9F) {
			return -1
		}
		return r
	}, text)
}
