package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"ytleads/internal/jobaccess"
	"ytleads/internal/jobs"
	"ytleads/internal/steps"
)

func newJobsCommand(ctx *commandContext) *cobra.Command {
	jobsCmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect and manage persisted jobs",
	}

	jobsCmd.AddCommand(newJobsListCommand(ctx))
	jobsCmd.AddCommand(newJobsShowCommand(ctx))
	jobsCmd.AddCommand(newJobsDeleteCommand(ctx))
	jobsCmd.AddCommand(newJobsSelectCommand(ctx))

	return jobsCmd
}

func newJobsListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List jobs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withJobs(cmd.Context(), jobaccess.ReadOnly, true, func(session jobaccess.Session) error {
				list, err := session.Access.List(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, list)
				}
				out := cmd.OutOrStdout()
				if len(list) == 0 {
					fmt.Fprintln(out, "No jobs yet. Start one with `ytleads run <youtube-url>`.")
					return nil
				}
				selectedID := ""
				selected, ok, err := session.Access.Selected(cmd.Context())
				if err != nil {
					return err
				}
				if ok {
					selectedID = selected.ID
				}
				colorize := shouldColorize(out)
				rows := make([][]string, 0, len(list))
				for _, job := range list {
					marker := ""
					if job.ID == selectedID {
						marker = "*"
					}
					rows = append(rows, []string{
						marker,
						shortID(job.ID),
						truncate(job.DisplayTitle(), maxCellWidth),
						jobStatusLabel(job.Status, colorize),
						fmt.Sprintf("%d%%", job.Progress),
						job.CurrentStep.String(),
						job.CreatedAt.Local().Format(time.DateTime),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"", "ID", "Title", "Status", "Progress", "Step", "Created"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newJobsShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var stepFlag string

	cmd := &cobra.Command{
		Use:   "show [job-id]",
		Short: "Show a job, or the selected job when no id is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withJobs(cmd.Context(), jobaccess.ReadOnly, true, func(session jobaccess.Session) error {
				job, err := resolveJob(cmd.Context(), session.Access, args)
				if err != nil {
					return err
				}

				if strings.TrimSpace(stepFlag) != "" {
					id, err := steps.Parse(stepFlag)
					if err != nil {
						return err
					}
					result, ok := job.Result(id)
					if !ok {
						return fmt.Errorf("job %s has no %s result yet", shortID(job.ID), id)
					}
					return writeJSON(cmd, result.Data)
				}

				if jsonOutput {
					return writeJSON(cmd, job)
				}
				printJobSummary(cmd.OutOrStdout(), job, shouldColorize(cmd.OutOrStdout()))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().StringVar(&stepFlag, "step", "", "Print one step's output as JSON (e.g. YT5)")
	return cmd
}

func newJobsDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <job-id>",
		Short: "Delete a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withJobs(cmd.Context(), jobaccess.ReadWrite, true, func(session jobaccess.Session) error {
				job, err := resolveJob(cmd.Context(), session.Access, args)
				if err != nil {
					return err
				}
				if err := session.Access.Delete(cmd.Context(), job.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted job %s\n", job.ID)
				return nil
			})
		},
	}
}

func newJobsSelectCommand(ctx *commandContext) *cobra.Command {
	var clearSelection bool

	cmd := &cobra.Command{
		Use:   "select <job-id>",
		Short: "Mark a job as the selected job",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !clearSelection && len(args) == 0 {
				return errors.New("job id is required (or pass --clear)")
			}
			return ctx.withJobs(cmd.Context(), jobaccess.ReadWrite, true, func(session jobaccess.Session) error {
				if clearSelection {
					if err := session.Access.Select(cmd.Context(), ""); err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), "Selection cleared")
					return nil
				}
				job, err := resolveJob(cmd.Context(), session.Access, args)
				if err != nil {
					return err
				}
				if err := session.Access.Select(cmd.Context(), job.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Selected job %s (%s)\n", job.ID, job.DisplayTitle())
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&clearSelection, "clear", false, "Clear the selection")
	return cmd
}

// resolveJob finds a job by full id or unique id prefix, falling back to the
// selected job when args is empty.
func resolveJob(ctx context.Context, access jobaccess.Access, args []string) (jobs.Job, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		job, ok, err := access.Selected(ctx)
		if err != nil {
			return jobs.Job{}, err
		}
		if !ok {
			return jobs.Job{}, errors.New("no job selected; pass a job id")
		}
		return job, nil
	}
	ref := strings.TrimSpace(args[0])
	job, err := access.Get(ctx, ref)
	if err == nil {
		return job, nil
	}
	if !errors.Is(err, jobs.ErrJobNotFound) {
		return jobs.Job{}, err
	}
	list, err := access.List(ctx)
	if err != nil {
		return jobs.Job{}, err
	}
	var matches []jobs.Job
	for _, job := range list {
		if strings.HasPrefix(job.ID, ref) {
			matches = append(matches, job)
		}
	}
	switch len(matches) {
	case 0:
		return jobs.Job{}, fmt.Errorf("%w: %s", jobs.ErrJobNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		return jobs.Job{}, fmt.Errorf("job id %q is ambiguous (%d matches)", ref, len(matches))
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
