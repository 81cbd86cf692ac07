package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/debimpact/pkg/resolve"
)

var tableHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)

// chainCell formats chains one per line.
func chainCell(chains []string) string {
	return strings.Join(chains, "\n")
}

func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		BorderRow(true).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return tableHeaderStyle
			}
			if col == 0 {
				return lipgloss.NewStyle().Foreground(colorCyan).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Render()
}

// resultTable renders the dependents of one target.
func resultTable(res *resolve.Result) string {
	rows := make([][]string, 0, len(res.Dependents))
	for _, d := range res.Dependents {
		chains := make([]string, len(d.Chains))
		for i, c := range d.Chains {
			chains[i] = c.String()
		}
		rows = append(rows, []string{d.Name, d.Category, d.Arch, chainCell(chains)})
	}
	return renderTable([]string{"Package", "Category", "Arch", "Dependency chain"}, rows)
}

// summaryTable renders the aggregate over all targets.
func summaryTable(entries []resolve.Entry) string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{e.Name, e.Category, e.Arch, chainCell(e.Chains)})
	}
	return renderTable([]string{"Package", "Category", "Arch", "Dependency chains"}, rows)
}

// printReport prints per-target tables (when there is more than one target)
// and the merged summary.
func printReport(report *resolve.Report) {
	if len(report.Results) > 1 {
		for _, res := range report.Results {
			fmt.Fprintln(stdout, StyleTitle.Render(res.Target)+StyleDim.Render(fmt.Sprintf(" (%d dependents)", len(res.Dependents))))
			if len(res.Dependents) > 0 {
				fmt.Fprintln(stdout, resultTable(res))
			}
			printNewline()
		}
	}

	title := fmt.Sprintf("%d packages need rebuilding", len(report.Entries))
	if len(report.Entries) == 1 {
		title = "1 package needs rebuilding"
	}
	fmt.Fprintln(stdout, StyleTitle.Render(title)+StyleDim.Render(" after changes to "+strings.Join(report.Targets, ", ")))
	if len(report.Entries) > 0 {
		fmt.Fprintln(stdout, summaryTable(report.Entries))
	}
	if report.Truncated {
		printWarning("Depth limit %d reached; some dependents may be missing. Raise --max-depth to see more.", report.MaxDepth)
	}
}
