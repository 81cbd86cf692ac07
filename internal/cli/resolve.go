package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/debimpact/pkg/config"
	"github.com/matzehuels/debimpact/pkg/errors"
	"github.com/matzehuels/debimpact/pkg/export"
	"github.com/matzehuels/debimpact/pkg/pipeline"
	"github.com/matzehuels/debimpact/pkg/resolve"
)

// corpusFlags select the Sources index. Shared by every command that loads
// a corpus.
type corpusFlags struct {
	corpus  string // local Sources file
	url     string // explicit download URL
	refresh bool   // revalidate the download
	noCache bool   // bypass the cache entirely
}

func (f *corpusFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.corpus, "corpus", "", "read a local Sources file (plain, .xz or .gz) instead of downloading")
	cmd.Flags().StringVar(&f.url, "url", "", "download the Sources index from this URL (default from mirror/suite/component)")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "revalidate the cached download and recompute results")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
}

func (f *corpusFlags) options(cfg *config.Config) pipeline.Options {
	opts := pipeline.Options{CorpusPath: f.corpus, URL: f.url, Refresh: f.refresh}
	if opts.CorpusPath == "" && opts.URL == "" {
		opts.URL = cfg.CorpusURL()
	}
	return opts
}

// resolveFlags holds the command-line flags for the binary and source
// commands.
type resolveFlags struct {
	corpusFlags
	filterAll   bool
	maxDepth    int
	outputDir   string
	formats     []string
	noExport    bool
	save        bool
	interactive bool
}

// resolveCommand creates the binary or source command.
func (c *CLI) resolveCommand(mode resolve.Mode) *cobra.Command {
	var flags resolveFlags

	use, short, example := "binary <package>...", "Find source packages that build-depend on binary packages",
		"  debimpact binary libssl3 zlib1g\n  debimpact binary --corpus Sources.xz --format xlsx,json libc6"
	if mode == resolve.ModeSource {
		use, short, example = "source <package>...", "Find source packages affected by changes to source packages",
			"  debimpact source openssl\n  debimpact source -i"
	}

	cmd := &cobra.Command{
		Use:     use,
		Short:   short,
		Example: example,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runResolve(cmd, mode, args, flags)
		},
	}

	flags.corpusFlags.register(cmd)
	cmd.Flags().BoolVar(&flags.filterAll, "filter-all", true, "exclude source packages with Architecture: all")
	cmd.Flags().IntVar(&flags.maxDepth, "max-depth", 0, "maximum expansion depth (default from config)")
	cmd.Flags().StringVarP(&flags.outputDir, "output-dir", "o", "", "directory for exported reports (default from config)")
	cmd.Flags().StringSliceVarP(&flags.formats, "format", "f", nil, "export formats: xlsx, json, dot, svg (default from config)")
	cmd.Flags().BoolVar(&flags.noExport, "no-export", false, "print results without writing report files")
	cmd.Flags().BoolVar(&flags.save, "save", false, "save the report to the history database")
	cmd.Flags().BoolVarP(&flags.interactive, "interactive", "i", false, "prompt for targets")

	return cmd
}

func (c *CLI) runResolve(cmd *cobra.Command, mode resolve.Mode, args []string, flags resolveFlags) error {
	ctx := cmd.Context()
	cfg, err := c.config()
	if err != nil {
		return err
	}

	ropts := cfg.ResolveOptions()
	if cmd.Flags().Changed("filter-all") {
		ropts.FilterPureAll = flags.filterAll
	}
	if cmd.Flags().Changed("max-depth") {
		if flags.maxDepth <= 0 {
			return errors.New(errors.ErrCodeInvalidInput, "--max-depth must be positive")
		}
		if mode == resolve.ModeSource {
			ropts.SourceMaxDepth = flags.maxDepth
		} else {
			ropts.MaxDepth = flags.maxDepth
		}
	}

	formats := cfg.ExportFormats()
	if cmd.Flags().Changed("format") {
		if formats, err = export.ParseFormats(flags.formats); err != nil {
			return err
		}
	}
	outputDir := cfg.OutputDir
	if flags.outputDir != "" {
		outputDir = flags.outputDir
	}

	targets := args
	if flags.interactive {
		targets, ropts.FilterPureAll, err = promptTargets(ctx, mode, ropts.FilterPureAll)
		if err != nil {
			return err
		}
	}
	if len(targets) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "no target packages given; pass names as arguments or use --interactive")
	}
	if err := errors.ValidateDebianNames(targets); err != nil {
		return err
	}

	opts := flags.options(cfg)
	opts.Mode = mode
	opts.Targets = targets
	opts.Resolve = ropts

	runner, err := c.newRunner(ctx, cfg, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(loggerFromContext(ctx))
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Resolving %s dependents of %s...", mode, strings.Join(targets, ", ")))
	spinner.Start()
	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Resolution failed")
		return err
	}
	spinner.Stop()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	prog.done(fmt.Sprintf("Resolved %d dependents", len(result.Report.Entries)))

	printStats(result.CacheInfo.CorpusHit,
		fmt.Sprintf("%d packages", result.Stats.Packages),
		result.Corpus.Digest)
	printNewline()
	printReport(result.Report)

	if !flags.noExport && len(formats) > 0 {
		paths, err := export.Export(ctx, result.Report, outputDir, formats, time.Now())
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}
		printNewline()
		printSuccess("Exported %d file(s)", len(paths))
		for _, p := range paths {
			printFile(p)
		}
	}

	if flags.save {
		if err := c.saveReport(ctx, cfg, result.Report); err != nil {
			return err
		}
	}
	return nil
}

func (c *CLI) saveReport(ctx context.Context, cfg *config.Config, report *resolve.Report) error {
	st, err := c.requireStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close(context.Background())
	if err := st.Save(ctx, report); err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	printSuccess("Saved report %s", StyleHighlight.Render(report.ID))
	printNextStep("Show it again", appName+" history show "+report.ID)
	return nil
}
