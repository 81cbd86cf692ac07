package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/debimpact/pkg/errors"
	"github.com/matzehuels/debimpact/pkg/pkgdb"
)

// showCommand creates the show command, which prints what the corpus knows
// about one name: its source record if it is a source package, the source
// producing it if it is a binary, and its direct reverse build-dependents.
func (c *CLI) showCommand() *cobra.Command {
	var flags corpusFlags
	var filterAll bool

	cmd := &cobra.Command{
		Use:   "show <package>",
		Short: "Show metadata, binaries and direct dependents of a package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			name := strings.TrimSpace(args[0])
			if err := errors.ValidateDebianName(name); err != nil {
				return err
			}
			cfg, err := c.config()
			if err != nil {
				return err
			}
			runner, err := c.newRunner(ctx, cfg, flags.noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			spinner := newSpinnerWithContext(ctx, "Loading corpus...")
			spinner.Start()
			corp, err := runner.Load(ctx, flags.options(cfg))
			if err != nil {
				spinner.StopWithError("Load failed")
				return err
			}
			spinner.SetMessage("Parsing corpus...")
			db, err := corp.Database()
			spinner.Stop()
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("filter-all") {
				filterAll = cfg.FilterPureAll
			}
			printPackage(db, name, filterAll)
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&filterAll, "filter-all", true, "exclude source packages with Architecture: all from dependents")
	return cmd
}

func printPackage(db *pkgdb.Database, name string, filterAll bool) {
	if rec, ok := db.Lookup(name); ok {
		fmt.Fprintln(stdout, StyleTitle.Render(rec.Name)+StyleDim.Render(" (source)"))
		printKeyValue("Section", rec.Section)
		printKeyValue("Arch", rec.Architecture)
		if rec.Homepage != "" {
			printKeyValue("Homepage", StyleLink.Render(rec.Homepage))
		}
		printKeyValue("Binaries", strings.Join(rec.Binaries, ", "))
		printNewline()
	}

	src := db.SourceOf(name)
	if src != name || len(db.BinariesOf(name)) > 0 {
		fmt.Fprintln(stdout, StyleTitle.Render(name)+StyleDim.Render(" (binary)"))
		printKeyValue("Source", src)
		printNewline()
	} else if _, ok := db.Lookup(name); !ok {
		printWarning("%s is not in the corpus", name)
	}

	deps := db.ReverseDependents(name, filterAll)
	if len(deps) == 0 {
		printInfo("No source package build-depends on %s", name)
		return
	}
	rows := make([][]string, len(deps))
	for i, d := range deps {
		rows[i] = []string{d.Name, d.Category, d.Arch}
	}
	printInfo("%s direct reverse build-dependents", StyleNumber.Render(fmt.Sprint(len(deps))))
	fmt.Fprintln(stdout, renderTable([]string{"Package", "Category", "Arch"}, rows))
}
