package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-recordform/pkg/renderers/vanilla"
)

func (a *app) renderCmd() *cobra.Command {
	var (
		output string
		styles bool
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the form (HTML by default) to stdout or a file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var options []vanilla.Option
			if styles {
				options = append(options, vanilla.WithDefaultStyles())
			}
			s, err := a.openSession(ctx, options...)
			if err != nil {
				return err
			}
			defer s.Close()

			f, err := s.gen.Form(ctx, s.req)
			if err != nil {
				return err
			}
			out, contentType, err := s.gen.Render(ctx, f, s.req.Renderer, s.req.RenderOptions)
			if err != nil {
				return err
			}
			a.logger.Debug("form rendered", "fields", f.Schema().Len(), "contentType", contentType, "bytes", len(out))

			if output == "" {
				_, err = cmd.OutOrStdout().Write(out)
				return err
			}
			if err := os.WriteFile(output, out, 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Form written to %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().BoolVar(&styles, "styles", false, "inline the default stylesheet")
	return cmd
}
