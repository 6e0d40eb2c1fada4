package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/simp-lee/xboot/internal/app"
	"github.com/simp-lee/xboot/internal/config"
)

func main() {
	if err := newRootCommand(context.Background()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newRootCommand builds the xboot CLI. Running it without a subcommand
// serves HTTP.
func newRootCommand(ctx context.Context) *cobra.Command {
	var configPath string

	serve := func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		a, err := app.New(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("failed to create app: %w", err)
		}
		return a.Run()
	}

	root := &cobra.Command{
		Use:           "xboot",
		Short:         "Admin API over the generic paged repository",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "path to configuration file")
	root.SetContext(ctx)

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP server",
			Args:  cobra.NoArgs,
			RunE:  serve,
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Create or update the database schema",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := config.Load(configPath)
				if err != nil {
					return fmt.Errorf("failed to load config: %w", err)
				}
				return app.RunMigrations(cmd.Context(), cfg)
			},
		},
	)
	return root
}
