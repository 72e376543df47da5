package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ytleads/internal/transcript"
)

func newTranscriptCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var captionsOnly bool

	cmd := &cobra.Command{
		Use:   "transcript <youtube-url>",
		Short: "Fetch a video transcript without running the pipeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger(jsonOutput)
			if err != nil {
				return err
			}
			acquirer := transcript.NewAcquirer(transcript.Config{
				WebhookURL:      cfg.Transcript.WebhookURL,
				CaptionsBaseURL: cfg.Transcript.CaptionsBaseURL,
				Language:        cfg.Transcript.Language,
				Timeout:         cfg.TranscriptTimeout(),
			}, transcript.WithLogger(logger))

			var result transcript.Transcript
			if captionsOnly {
				text, err := acquirer.FromCaptions(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				result = transcript.Transcript{Text: text, Source: transcript.SourceCaptions}
			} else {
				result, err = acquirer.Acquire(cmd.Context(), args[0])
				if err != nil {
					return err
				}
			}

			if jsonOutput {
				return writeJSON(cmd, map[string]any{
					"source":     result.Source,
					"transcript": result.Text,
				})
			}
			fmt.Fprintln(cmd.ErrOrStderr(), "source:", result.Source)
			fmt.Fprintln(cmd.OutOrStdout(), result.Text)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the transcript as JSON")
	cmd.Flags().BoolVar(&captionsOnly, "captions", false, "Skip the webhook and read captions directly")
	return cmd
}
