package command

import (
	"errors"
	"log/slog"
	"math/rand/v2"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/stolasapp/quill/internal/app"
	"github.com/stolasapp/quill/internal/devseed"
	"github.com/stolasapp/quill/internal/server"
)

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "serve the blog web app",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (runErr error) {
			cfg, logger, store, err := loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				if err := store.Close(); err != nil {
					runErr = errors.Join(runErr, err)
				}
			}()

			grp, ctx := errgroup.WithContext(cmd.Context())

			// In dev mode, populate an empty database with demo content.
			if cfg.DevMode {
				if err := devseed.Seed(ctx, logger, store, rand.Uint64()); err != nil {
					return err
				}
			}

			srv, err := app.New(cfg, logger, store)
			if err != nil {
				return err
			}

			listener, err := server.Listen(ctx, cfg.Address)
			if err != nil {
				return err
			}

			logger.InfoContext(ctx,
				"starting app server...",
				slog.String("address", cfg.Address),
			)
			server.Serve(ctx, grp, srv.Server, listener)
			return grp.Wait()
		},
	}
}
