package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/adaptiq/internal/api"
	"github.com/abhisek/adaptiq/internal/practice"
	"github.com/abhisek/adaptiq/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the practice API over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}

		return withService(cmd, func(ctx context.Context, st *store.Store, svc *practice.Service) error {
			sc := cfg.Server
			srv := &http.Server{
				Addr: sc.Addr,
				Handler: api.NewServer(svc, api.Options{
					CORSOrigins:    sc.CORSOrigins,
					RequestTimeout: sc.WriteTimeout,
					Topics:         st.Topics(),
					Events:         st.Events(),
				}),
				ReadTimeout:  sc.ReadTimeout,
				WriteTimeout: sc.WriteTimeout,
			}

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				slog.Info("listening", "addr", sc.Addr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("serve: %w", err)
				}
				return nil
			})
			g.Go(func() error {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sc.ShutdownTimeout)
				defer cancel()
				slog.Info("shutting down")
				return srv.Shutdown(shutdownCtx)
			})
			return g.Wait()
		})
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
}
