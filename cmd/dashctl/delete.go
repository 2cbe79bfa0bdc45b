package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDeleteCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <project>",
		Short: "Preview, and with --yes perform, the deletion of a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := a.context(cmd)
			s, err := a.session(ctx, args[0])
			if err != nil {
				return err
			}
			defer s.Close()
			out := cmd.OutOrStdout()

			preview, err := s.PreviewDeletion(ctx)
			if err != nil {
				return err
			}
			if preview.Message != "" {
				fmt.Fprintln(out, preview.Message)
			}
			fmt.Fprintf(out, "%d resources, %s/month will be removed\n", preview.ResourceCount, money(preview.EstimatedMonthlyCost))
			if !yes {
				s.Deletion.Cancel()
				fmt.Fprintln(out, "nothing deleted; re-run with --yes to delete")
				return nil
			}
			if err := s.ConfirmDeletion(ctx); err != nil {
				return err
			}
			fmt.Fprintf(out, "project %s deleted\n", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the deletion")
	return cmd
}
