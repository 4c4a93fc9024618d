package main

import (
	"context"
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"github.com/vwmedia/siteutil/internal/app"
	"github.com/vwmedia/siteutil/internal/app/stack"
	"github.com/vwmedia/siteutil/pkg/logger"
)

type cliOptions struct {
	configPath string
	envFile    string

	cfg       *app.Config
	stackOpts []stack.Option
}

func newRootCmd(opts *cliOptions) *cobra.Command {
	root := &cobra.Command{
		Use:           "siteutil",
		Short:         "Site utility maintenance commands",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.LoadDotEnv(opts.envFile); err != nil {
				return err
			}
			cfg, err := app.LoadConfigFrom(opts.configPath)
			if err != nil {
				return err
			}
			if err := app.ConfigureLogging(cfg.Server); err != nil {
				return err
			}
			opts.cfg = cfg
			return nil
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to configuration directory or file")
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "Optional dotenv file loaded before configuration")

	root.AddCommand(
		newValidateCmd(opts),
		newSitemapCmd(opts),
		newMailCmd(opts),
		newTokenCmd(opts),
	)
	return root
}

// openStack connects to the configured database. Callers must Close it.
func (o *cliOptions) openStack(ctx context.Context) (*stack.Stack, error) {
	return stack.Open(ctx, o.cfg, logger.WithModule("cli"), o.stackOpts...)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
