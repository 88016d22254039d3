package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-recordform/pkg/form"
	"github.com/goliatone/go-recordform/pkg/httpform"
	"github.com/goliatone/go-recordform/pkg/renderers/vanilla"
)

const (
	assetsPrefix    = "/assets/"
	shutdownTimeout = 5 * time.Second
)

func (a *app) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the form over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			s, err := a.openSession(ctx, vanilla.WithStylesheet(assetsPrefix+vanilla.StylesheetName))
			if err != nil {
				return err
			}
			defer s.Close()

			handler, err := a.serveHandler(ctx, s)
			if err != nil {
				return err
			}

			addr := a.v.GetString(keyServeAddr)
			server := &http.Server{
				Addr:              addr,
				Handler:           handler,
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				a.logger.Info("serving form", "addr", addr)
				errCh <- server.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return fmt.Errorf("serve: %w", err)
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			a.logger.Info("shutting down", "addr", addr)
			return server.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().String("addr", "", "listen address (default :8080)")
	return cmd
}

// serveHandler mounts the form at / and the stylesheet under /assets/.
// Submissions go to the SQLite record when one is configured; otherwise
// they are only logged.
func (a *app) serveHandler(ctx context.Context, s *session) (http.Handler, error) {
	sch, err := s.gen.Schema(ctx, s.req)
	if err != nil {
		return nil, err
	}

	load := func(ctx context.Context, _ *http.Request) (map[string]any, error) {
		return s.req.Values, nil
	}
	submit := func(_ context.Context, values form.ValueSet) error {
		a.logger.Info("form submitted", "fields", len(values))
		return nil
	}
	if s.hasRecord() {
		load = func(ctx context.Context, _ *http.Request) (map[string]any, error) {
			return s.store.Row(ctx, s.table, s.key, s.id)
		}
		submit = s.store.Submitter(s.table, s.key, s.id)
	}

	handler, err := httpform.New(sch, s.gen.Registry(), submit,
		httpform.WithRenderer(vanilla.Name),
		httpform.WithRenderOptions(s.req.RenderOptions),
		httpform.WithLoader(load),
		httpform.WithLogger(a.logger),
	)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle(assetsPrefix, http.StripPrefix(assetsPrefix, http.FileServerFS(vanilla.AssetsFS())))
	mux.Handle("/", handler)
	return mux, nil
}
