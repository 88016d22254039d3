package main

import (
	"fmt"
	"io"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-recordform/pkg/form"
)

func (a *app) validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [values-file|-]",
		Short: "Validate a value set against the schema and print the canonical values",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			s, err := a.openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			values := form.ValueSet(s.req.Values)
			if len(args) == 1 {
				raw, err := readValuesArg(cmd.InOrStdin(), args[0])
				if err != nil {
					return err
				}
				values = form.ValueSet(raw)
			}

			sch, err := s.gen.Schema(ctx, s.req)
			if err != nil {
				return err
			}
			out, err := form.Validate(sch, values)
			if verr, ok := form.AsValidationError(err); ok {
				for _, issue := range verr.Issues {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (%s)\n", issue.Field, issue.Message, issue.Code)
				}
				return fmt.Errorf("validation failed: %d issue(s)", len(verr.Issues))
			}
			if err != nil {
				return err
			}

			data, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
}

func readValuesArg(stdin io.Reader, arg string) (map[string]any, error) {
	if arg != "-" {
		return loadValues(arg)
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return nil, fmt.Errorf("read values from stdin: %w", err)
	}
	return decodeValues(data, "stdin")
}

