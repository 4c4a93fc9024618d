package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/vwmedia/siteutil/pkg/logger"
)

var errTestEmailFailed = errors.New("test email was not delivered")

func newMailCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mail",
		Short: "Mail transport tools",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "test <address>",
		Short: "Send a test message using the stored SMTP settings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.openStack(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close(logger.WithModule("cli"))

			result := s.TestEmail.Send(cmd.Context(), args[0])
			if err := writeJSON(cmd.OutOrStdout(), result); err != nil {
				return err
			}
			if !result.Result {
				return errTestEmailFailed
			}
			return nil
		},
	})
	return cmd
}
