package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/parley/pkg/assets"
	"github.com/matzehuels/parley/pkg/server"
	"github.com/matzehuels/parley/pkg/store"
)

func (c *CLI) serveCommand() *cobra.Command {
	var addr, backend, dir string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP editor backend",
		Long: `Serve editing sessions, stored documents and websocket playback over HTTP.

Documents are kept in the backend chosen by [server].store: a directory of
JSON files, Redis, MongoDB or process memory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			cfg := c.config.Server
			if addr != "" {
				cfg.Addr = addr
			}
			if backend != "" {
				cfg.Store = backend
			}
			if dir != "" {
				cfg.Dir = dir
			}

			st, err := store.Open(ctx, cfg, store.Options{Logger: logger, Hooks: c.hooks()})
			if err != nil {
				return err
			}
			defer st.Close()

			srv := server.New(server.Options{
				Store:    st,
				Editor:   c.config.Editor,
				Playback: c.config.Playback,
				Assets:   assets.FileLoader{Root: cfg.Dir},
				Logger:   logger,
				Hooks:    c.hooks(),
			})
			logger.Info("serving", "addr", cfg.Addr, "store", cfg.Store)
			return srv.ListenAndServe(ctx, cfg.Addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides [server].addr)")
	cmd.Flags().StringVar(&backend, "store", "", "document store: file, redis, mongo, memory")
	cmd.Flags().StringVar(&dir, "dir", "", "document directory for the file store")
	return cmd
}
