package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newProjectsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "projects",
		Short: "List projects with resource counts and monthly cost",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ov, err := a.projects.Overview(a.context(cmd))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if a.asJSON {
				return writeJSON(out, ov)
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tSTATUS\tRESOURCES\tFAILED\tMONTHLY COST")
			for _, p := range ov.Projects {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n",
					p.ID, p.Name, p.Status, p.Resources.Total, p.Resources.Failed, money(p.Resources.MonthlyCost))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "\n%d projects, %d active, %d resources (%d failed), %s/month\n",
				len(ov.Projects), ov.ActiveProjects, ov.TotalResources, ov.FailedResources, money(ov.TotalMonthlyCost))
			return nil
		},
	}
}

func money(v float64) string { return fmt.Sprintf("$%.2f", v) }

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
