package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ytleads/internal/steps"
)

func newStepsCommand() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:         "steps",
		Short:       "List the pipeline steps",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			defs := steps.All()
			if jsonOutput {
				out := make([]map[string]string, 0, len(defs))
				for _, def := range defs {
					out = append(out, map[string]string{
						"id":          def.ID.String(),
						"name":        def.Name,
						"description": def.Description,
					})
				}
				return writeJSON(cmd, out)
			}
			rows := make([][]string, 0, len(defs))
			for _, def := range defs {
				rows = append(rows, []string{def.ID.String(), def.Name, def.Description})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"ID", "Name", "Description"}, rows, nil))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
