package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-recordform/pkg/renderers/tui"
)

func (a *app) promptCmd() *cobra.Command {
	var (
		format  string
		secrets []string
		write   bool
	)
	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Fill the form interactively in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			outputFormat, ok := tui.ParseOutputFormat(format)
			if !ok {
				return fmt.Errorf("unknown output format %q", format)
			}
			driver := a.promptDriver
			if driver == nil {
				driver = tui.NewSurveyDriver(cmd.ErrOrStderr())
			}
			renderer, err := tui.New(
				tui.WithPromptDriver(driver),
				tui.WithOutputFormat(outputFormat),
				tui.WithSecretFields(secrets...),
			)
			if err != nil {
				return err
			}

			s, err := a.openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			f, err := s.gen.Form(ctx, s.req)
			if err != nil {
				return err
			}
			values, err := renderer.Prompt(ctx, f, s.req.RenderOptions)
			if err != nil {
				return err
			}

			if write {
				if !s.hasRecord() {
					return fmt.Errorf("--write needs --sqlite-dsn, --sqlite-table and --sqlite-id")
				}
				if err := f.Submit(ctx, s.store.Submitter(s.table, s.key, s.id)); err != nil {
					return err
				}
				a.logger.Info("record updated", "table", s.table, "id", s.id, "fields", f.DirtyFields())
			}

			out, err := renderer.Serialize(values)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	}
	cmd.Flags().StringVar(&format, "format", string(tui.OutputFormatJSON), "output format: json, form or pretty")
	cmd.Flags().StringSliceVar(&secrets, "secret", nil, "fields to prompt without echo")
	cmd.Flags().BoolVar(&write, "write", false, "write the result back to the SQLite record")
	return cmd
}
