package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/debimpact/pkg/pkgdb"
)

// fetchCommand creates the fetch command, which downloads (or revalidates)
// the Sources index and reports its size.
func (c *CLI) fetchCommand() *cobra.Command {
	var flags corpusFlags

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download or refresh the Debian Sources index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.config()
			if err != nil {
				return err
			}
			runner, err := c.newRunner(ctx, cfg, flags.noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			opts := flags.options(cfg)
			spinner := newSpinnerWithContext(ctx, "Fetching "+opts.Source()+"...")
			spinner.Start()
			corp, err := runner.Load(ctx, opts)
			if err != nil {
				spinner.StopWithError("Fetch failed")
				return err
			}
			spinner.Stop()

			start := time.Now()
			db, err := corp.Database(pkgdb.WithScanCache(0))
			if err != nil {
				return err
			}

			printSuccess("Corpus ready")
			printKeyValue("Source", corp.Source)
			printKeyValue("Compression", string(corp.Compression))
			printKeyValue("Size", fmt.Sprintf("%d bytes (%d decompressed)", corp.RawSize, len(corp.Data)))
			printKeyValue("Fetched", corp.FetchedAt.Local().Format(time.DateTime))
			printStats(corp.Cached,
				fmt.Sprintf("%d packages", db.Len()),
				corp.Digest,
				fmt.Sprintf("parsed in %s", time.Since(start).Round(time.Millisecond)))
			printNewline()
			printNextStep("Resolve", appName+" binary <package>")
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}
