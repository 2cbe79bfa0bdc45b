// Command dashctl inspects and operates dashboard projects from a terminal.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iac-studio/dashboard/internal/cache"
	"github.com/iac-studio/dashboard/internal/remote"
	"github.com/iac-studio/dashboard/internal/repository"
	"github.com/iac-studio/dashboard/internal/services"
	"github.com/iac-studio/dashboard/pkg/config"
	"github.com/iac-studio/dashboard/pkg/logger"
)

// app carries the dependencies shared by every command. Tests fill api and
// token directly and skip configuration loading.
type app struct {
	api      remote.API
	projects services.ProjectService
	token    string
	asJSON   bool
}

func main() {
	a := &app{}
	if err := newRootCmd(a).Execute(); err != nil {
		os.Exit(1)
	}
	logger.Sync()
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:          "dashctl",
		Short:        "Inspect and operate IaC Studio projects",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	root.PersistentFlags().StringVar(&a.token, "token", a.token, "bearer token (defaults to BACKEND_TOKEN)")
	root.PersistentFlags().BoolVar(&a.asJSON, "json", a.asJSON, "print JSON instead of tables")

	root.AddCommand(
		newProjectsCmd(a),
		newStatusCmd(a),
		newRetryCmd(a),
		newDeleteCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	if a.api == nil {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if _, err := logger.InitWriter(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr()); err != nil {
			return err
		}
		client, err := remote.NewClient(remote.Options{
			BaseURL: cfg.BackendURL,
			Token:   cfg.BackendToken,
			Timeout: cfg.BackendTimeout,
			RPS:     cfg.BackendRPS,
		})
		if err != nil {
			return err
		}
		a.api = client
		if a.token == "" {
			a.token = cfg.BackendToken
		}
		logger.L().Debug("dashctl configured", zap.String("backend", cfg.BackendURL))
	}
	if a.token == "" {
		return fmt.Errorf("no bearer token: pass --token or set BACKEND_TOKEN")
	}
	if a.projects == nil {
		// A one-shot command has nothing to share a cache with.
		a.projects = services.NewProjectService(a.api, repository.NewProjectRepository(a.api, cache.NewMemoryStore(16, 0)))
	}
	return nil
}

func (a *app) context(cmd *cobra.Command) context.Context {
	return remote.WithToken(cmd.Context(), a.token)
}

// session opens a workflow session on an existing project.
func (a *app) session(ctx context.Context, projectID string) (*services.Session, error) {
	s := services.NewSession(a.token, a.api, a.projects)
	if err := s.Resume(ctx, projectID); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}
