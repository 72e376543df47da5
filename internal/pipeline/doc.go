// Package pipeline drives one job through the step catalog.
//
// The Orchestrator looks up video metadata, acquires the transcript (YT1),
// then runs YT2 through YT13 in catalog order, building each payload from the
// accumulated results. Every finished step is committed to the job store in a
// single update so completedSteps, results and progress never disagree. A
// failing step stops the run, records the error, and leaves currentStep on the
// step that failed.
package pipeline
