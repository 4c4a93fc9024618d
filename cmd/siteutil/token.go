package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	iauth "github.com/vwmedia/siteutil/internal/auth"
)

func newTokenCmd(opts *cliOptions) *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an admin bearer token for the settings API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// A generated secret would not match the running server.
			if strings.TrimSpace(opts.cfg.Auth.JWT.Secret) == "" {
				return errors.New("auth.jwt.secret is not configured")
			}

			svc, err := iauth.NewJWTService(opts.cfg.Auth.JWTServiceConfig())
			if err != nil {
				return err
			}
			token, err := svc.GenerateAccessToken(iauth.AccessTokenInput{
				Subject: subject,
				Role:    iauth.RoleAdmin,
				TTL:     ttl,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "cli", "Subject recorded in the token")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime (defaults to auth.jwt.access_token_ttl)")
	return cmd
}
