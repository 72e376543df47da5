// Package transcript acquires the spoken text of a source video.
//
// Acquire tries the configured webhook first and falls back to the public
// timed-text caption endpoint. Caption markup is stripped, entities decoded,
// whitespace collapsed, and the result NFC-normalized; anything shorter than
// MinLength characters is treated as unusable. When both channels fail the
// returned error wraps ErrTranscriptUnavailable and carries the webhook
// failure, while the caption failure is only logged.
//
// The package also owns video-URL recognition (VideoID, ValidateSourceURL)
// and the demo Placeholder transcript the pipeline may substitute.
package transcript
