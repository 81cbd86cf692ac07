package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/debimpact/internal/server"
	"github.com/matzehuels/debimpact/pkg/pkgdb"
)

const shutdownTimeout = 10 * time.Second

// serveCommand creates the serve command, which loads the corpus once and
// answers API requests until interrupted.
func (c *CLI) serveCommand() *cobra.Command {
	var flags corpusFlags
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API over a loaded corpus",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.config()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}

			runner, err := c.newRunner(ctx, cfg, flags.noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			prog := newProgress(loggerFromContext(ctx))
			corp, err := runner.Load(ctx, flags.options(cfg))
			if err != nil {
				return err
			}
			db, err := corp.Database(pkgdb.WithScanCache(pkgdb.DefaultScanCacheSize))
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Loaded %d packages", db.Len()))

			st, err := c.openStore(ctx, cfg)
			if err != nil {
				return err
			}
			if st != nil {
				defer st.Close(context.Background())
			}

			srv := server.New(server.Config{
				Addr:     addr,
				Database: db,
				Digest:   corp.Digest,
				Source:   corp.Source,
				Runner:   runner,
				Resolve:  cfg.ResolveOptions(),
				Store:    st,
				Logger:   c.Logger,
			})

			errc := make(chan error, 1)
			go func() { errc <- srv.Start() }()

			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
			}
			c.Logger.Info("shutting down")
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(sctx); err != nil {
				return err
			}
			return ctx.Err()
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, 127.0.0.1:8080)")
	return cmd
}
