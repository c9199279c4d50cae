// Package cmd - workers command
package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"advocacy-workers/pkg/registry"
)

func newWorkersCmd(_ *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "workers",
		Short: "List the job workers and the error codes they throw",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := registry.Default()
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), reg)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TASK TYPE\tCATEGORY\tTIMEOUT\tRETRIES\tERROR CODES")
			for _, a := range reg.Activities {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", a.TaskType, a.Category, a.Timeout, a.Retries, strings.Join(a.ErrorCodes, ","))
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full registry as JSON")
	return cmd
}
