package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/debimpact/pkg/export"
	"github.com/matzehuels/debimpact/pkg/store"
)

// historyCommand creates the history command for saved reports.
func (c *CLI) historyCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List reports saved with --save",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.config()
			if err != nil {
				return err
			}
			st, err := c.requireStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer st.Close(context.Background())

			recent, err := st.Recent(ctx, limit)
			if err != nil {
				return err
			}
			printHistory(recent)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", store.DefaultLimit, "number of reports to list")
	cmd.AddCommand(c.historyShowCommand())
	return cmd
}

func (c *CLI) historyShowCommand() *cobra.Command {
	var outputDir string
	var formats []string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a saved report, optionally exporting it again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.config()
			if err != nil {
				return err
			}
			st, err := c.requireStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer st.Close(context.Background())

			report, err := st.Get(ctx, args[0])
			if err != nil {
				return err
			}
			printKeyValue("Report", report.ID)
			printKeyValue("Created", report.CreatedAt.Local().Format(time.DateTime))
			printKeyValue("Mode", string(report.Mode))
			printKeyValue("Corpus", report.CorpusDigest)
			printNewline()
			printReport(report)

			if len(formats) == 0 {
				return nil
			}
			parsed, err := export.ParseFormats(formats)
			if err != nil {
				return err
			}
			if outputDir == "" {
				outputDir = cfg.OutputDir
			}
			paths, err := export.Export(ctx, report, outputDir, parsed, report.CreatedAt.Local())
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}
			printNewline()
			for _, p := range paths {
				printFile(p)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "directory for exported reports")
	cmd.Flags().StringSliceVarP(&formats, "format", "f", nil, "export the report in these formats")
	return cmd
}

func printHistory(recent []store.Summary) {
	if len(recent) == 0 {
		printInfo("No saved reports")
		return
	}
	rows := make([][]string, len(recent))
	for i, s := range recent {
		rows[i] = []string{
			s.ID,
			s.CreatedAt.Local().Format(time.DateTime),
			string(s.Mode),
			strings.Join(s.Targets, ", "),
			strconv.Itoa(s.Dependents),
		}
	}
	fmt.Fprintln(stdout, renderTable([]string{"ID", "Created", "Mode", "Targets", "Dependents"}, rows))
}
