package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iac-studio/dashboard/internal/services"
	"github.com/iac-studio/dashboard/internal/status"
)

func newRetryCmd(a *app) *cobra.Command {
	var wait bool
	cmd := &cobra.Command{
		Use:   "retry <project> [resource]",
		Short: "Retry one failed resource, or every failed resource of a project",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := a.context(cmd)
			s, err := a.session(ctx, args[0])
			if err != nil {
				return err
			}
			defer s.Close()
			out := cmd.OutOrStdout()

			if len(args) == 2 {
				if err := s.RetryResource(ctx, args[1]); err != nil {
					return err
				}
				fmt.Fprintf(out, "retry submitted for %s\n", args[1])
			} else {
				snap, err := s.View.Snapshot()
				if err != nil {
					return err
				}
				failed := status.FailedResources(snap.Resources)
				if len(failed) == 0 {
					fmt.Fprintln(out, "no failed resources")
					return nil
				}
				if err := s.RetryFailed(ctx); err != nil {
					return err
				}
				fmt.Fprintf(out, "retry submitted for %d failed resources\n", len(failed))
			}

			if !wait {
				return nil
			}
			fmt.Fprintf(out, "waiting %s for the backend to pick the retry up...\n", services.RetryRefreshGrace)
			s.Wait()
			snap, err := s.View.Snapshot()
			if err != nil {
				return err
			}
			return printDetail(out, services.Detail(snap))
		},
	}
	cmd.Flags().BoolVar(&wait, "wait", false, "wait for the post-retry refresh and print the project status")
	return cmd
}
