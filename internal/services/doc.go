// Package services defines shared utilities consumed by the pipeline and its
// external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp job IDs, step identifiers, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     (validation, configuration, not found, upstream) so the API and CLI can
//     report them consistently.
//
// Use these helpers when wiring new integration code so operational behaviour
// (error handling, observability) stays uniform across the pipeline.
package services
