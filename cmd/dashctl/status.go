package main

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/iac-studio/dashboard/internal/services"
	"github.com/iac-studio/dashboard/internal/status"
)

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status <project>",
		Short: "Show a project's resources and their statuses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := a.projects.Refresh(a.context(cmd), args[0])
			if err != nil {
				return err
			}
			d := services.Detail(snap)
			if a.asJSON {
				return writeJSON(cmd.OutOrStdout(), d)
			}
			return printDetail(cmd.OutOrStdout(), d)
		},
	}
}

func printDetail(out io.Writer, d *services.ProjectDetail) error {
	p := d.Snapshot.Project
	fmt.Fprintf(out, "%s (%s)  status: %s\n", p.Name, p.ID, d.Status)
	fmt.Fprintf(out, "resources: %d total, %d active, %d provisioning, %d failed  %s/month\n\n",
		d.Summary.Total, d.Summary.Active, d.Summary.Provisioning, d.Summary.Failed, money(d.Summary.MonthlyCost))

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTYPE\tSTATUS\tMONTHLY COST\tERROR")
	for _, r := range d.Snapshot.Resources {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Name, r.ResourceType, status.Display(r), money(r.MonthlyCost()), r.ErrorMessage)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(d.CostByType) > 0 {
		types := make([]string, 0, len(d.CostByType))
		for t := range d.CostByType {
			types = append(types, t)
		}
		sort.Strings(types)
		fmt.Fprintln(out, "\ncost by type:")
		for _, t := range types {
			fmt.Fprintf(out, "  %s  %s\n", t, money(d.CostByType[t]))
		}
	}
	return nil
}
