// Package steps defines the thirteen fixed generation steps (YT1..YT13).
//
// Each catalog entry carries the step's display name and description, the
// system instruction sent to the generation backend, and a pure payload
// builder that reads earlier outputs from an ordered Results map. YT1
// (transcript acquisition) has neither instruction nor builder.
package steps
