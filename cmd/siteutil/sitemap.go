package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vwmedia/siteutil/pkg/logger"
)

func newSitemapCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sitemap",
		Short: "Sitemap maintenance",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "build",
		Short: "Regenerate sitemap.xml from published posts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.openStack(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close(logger.WithModule("cli"))

			count, err := s.Sitemap.Build(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d urls to %s\n", count, s.Sitemap.Path())
			return nil
		},
	})
	return cmd
}
