package main

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vwmedia/siteutil/internal/settings"
	"github.com/vwmedia/siteutil/pkg/logger"
)

type validateOutput struct {
	Record settings.Record           `json:"record"`
	Errors settings.ValidationErrors `json:"errors"`
	Saved  bool                      `json:"saved"`
}

func newValidateCmd(opts *cliOptions) *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "validate [form-file]",
		Short: "Validate a URL-encoded settings form",
		Long: `Reads a URL-encoded settings submission (a=1&b=2) from the given file or
stdin, prints the record that would be stored and any advisory field errors.
With --save the record is persisted.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readForm(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			values, err := url.ParseQuery(strings.TrimSpace(raw))
			if err != nil {
				return fmt.Errorf("parse form: %w", err)
			}
			input := settings.FromValues(values)

			if !save {
				record, errs := settings.Validate(input)
				return writeJSON(cmd.OutOrStdout(), validateOutput{Record: record.Masked(), Errors: errs})
			}

			s, err := opts.openStack(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close(logger.WithModule("cli"))

			record, errs, err := s.Settings.Update(cmd.Context(), input)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), validateOutput{Record: record.Masked(), Errors: errs, Saved: true})
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "Persist the validated record")
	return cmd
}

func readForm(stdin io.Reader, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("read form file: %w", err)
	}
	return string(data), nil
}
