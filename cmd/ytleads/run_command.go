package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"ytleads/internal/jobaccess"
	"ytleads/internal/jobs"
	"ytleads/internal/steps"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "run <youtube-url>",
		Short: "Run one video through every step in the foreground",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return ctx.withJobs(cmd.Context(), jobaccess.ReadWrite, false, func(session jobaccess.Session) error {
				if session.Remote != "" {
					fmt.Fprintf(cmd.ErrOrStderr(), "Submitting to the running server at %s\n", session.Remote)
				} else if err := cfg.RequireLLM(); err != nil {
					return err
				}
				job, runErr := session.Access.Process(cmd.Context(), args[0])
				if job.ID == "" {
					return runErr
				}
				if jsonOutput {
					if err := writeJSON(cmd, job); err != nil {
						return err
					}
					return runErr
				}
				printJobSummary(cmd.OutOrStdout(), job, shouldColorize(cmd.OutOrStdout()))
				return runErr
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the final job as JSON")
	return cmd
}

func printJobSummary(out io.Writer, job jobs.Job, colorize bool) {
	for _, line := range renderSectionHeader(job.DisplayTitle(), colorize) {
		fmt.Fprintln(out, line)
	}
	fmt.Fprintf(out, "Job:      %s\n", job.ID)
	fmt.Fprintf(out, "URL:      %s\n", job.YoutubeURL)
	if job.ChannelName != "" {
		fmt.Fprintf(out, "Channel:  %s\n", job.ChannelName)
	}
	fmt.Fprintf(out, "Status:   %s (%d%%)\n", jobStatusLabel(job.Status, colorize), job.Progress)
	if job.Error != "" {
		fmt.Fprintf(out, "Error:    %s\n", job.Error)
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, renderStepTable(job))
}

func renderStepTable(job jobs.Job) string {
	done := make(map[steps.ID]bool, len(job.CompletedSteps))
	for _, id := range job.CompletedSteps {
		done[id] = true
	}
	rows := make([][]string, 0, steps.Count)
	for _, def := range steps.All() {
		state := "pending"
		switch {
		case done[def.ID]:
			state = "done"
		case def.ID == job.CurrentStep && job.Status == jobs.StatusError:
			state = "failed"
		case def.ID == job.CurrentStep:
			state = "running"
		}
		fields := ""
		if result, ok := job.Result(def.ID); ok {
			fields = strconv.Itoa(len(result.Data))
		}
		rows = append(rows, []string{def.ID.String(), def.Name, state, fields})
	}
	return renderTable(
		[]string{"Step", "Name", "State", "Fields"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight},
	)
}
