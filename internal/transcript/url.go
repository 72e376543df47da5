package transcript

import (
	"fmt"
	"regexp"
	"strings"
)

var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/)([^&\n?#]+)`),
	regexp.MustCompile(`youtube\.com/v/([^&\n?#]+)`),
	regexp.MustCompile(`youtube\.com/watch\?.*v=([^&\n?#]+)`),
}

var sourceURLPattern = regexp.MustCompile(`^(https?://)?(www\.)?(youtube\.com|youtu\.?be)/.+$`)

// VideoID extracts the video identifier from watch, short, embed and /v/ URLs.
func VideoID(sourceURL string) (string, bool) {
	for _, pattern := range videoIDPatterns {
		if match := pattern.FindStringSubmatch(sourceURL); len(match) > 1 && match[1] != "" {
			return match[1], true
		}
	}
	return "", false
}

// ValidateSourceURL rejects input that does not look like a video link before a
// job is created for it.
func ValidateSourceURL(sourceURL string) error {
	trimmed := strings.TrimSpace(sourceURL)
	if trimmed == "" {
		return fmt.Errorf("%w: url is empty", ErrInvalidVideoURL)
	}
	if !sourceURLPattern.MatchString(trimmed) {
		return fmt.Errorf("%w: %q", ErrInvalidVideoURL, trimmed)
	}
	return nil
}
