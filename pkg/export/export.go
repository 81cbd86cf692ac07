// Package export writes resolution reports to files.
//
// Supported formats:
//
//   - xlsx: one row per dependent (excelize)
//   - json: the full report, per-target results included
//   - dot:  the union of all chains as a Graphviz digraph
//   - svg:  the dot graph rendered with go-graphviz
//
// Files are named after the report's targets and creation time, see
// [Filename].
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/matzehuels/debimpact/pkg/errors"
	"github.com/matzehuels/debimpact/pkg/resolve"
)

// Format names an export format.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatJSON Format = "json"
	FormatDOT  Format = "dot"
	FormatSVG  Format = "svg"
)

// AllFormats lists every supported format.
var AllFormats = []Format{FormatXLSX, FormatJSON, FormatDOT, FormatSVG}

// DefaultFormats is what a run exports when nothing is configured.
var DefaultFormats = []Format{FormatXLSX}

// ParseFormats parses a list of format names, dropping duplicates.
func ParseFormats(names []string) ([]Format, error) {
	var out []Format
	for _, n := range names {
		f := Format(strings.ToLower(strings.TrimSpace(n)))
		if f == "" {
			continue
		}
		if !slices.Contains(AllFormats, f) {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown export format %q (valid: xlsx, json, dot, svg)", n)
		}
		if !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out, nil
}

// Row is one dependent as written to tabular formats.
type Row struct {
	Package         string `json:"package"`
	Category        string `json:"category"`
	Arch            string `json:"arch"`
	Homepage        string `json:"homepage"`
	DependencyChain string `json:"dependency_chain"`
}

// Rows flattens the report's aggregated entries.
func Rows(r *resolve.Report) []Row {
	rows := make([]Row, len(r.Entries))
	for i, e := range r.Entries {
		rows[i] = Row{
			Package:         e.Name,
			Category:        e.Category,
			Arch:            e.Arch,
			Homepage:        e.Homepage,
			DependencyChain: e.DependencyChain(),
		}
	}
	return rows
}

const maxNamedTargets = 3

// Filename returns
// "dependency_analysis_<t1>_<t2>_<t3>[_and_<n>_more]_<YYYYMMDD_HHMMSS>.<ext>".
// Only the first three targets are spelled out.
func Filename(targets []string, ts time.Time, f Format) string {
	named := targets[:min(len(targets), maxNamedTargets)]
	name := strings.Join(named, "_")
	if extra := len(targets) - maxNamedTargets; extra > 0 {
		name += fmt.Sprintf("_and_%d_more", extra)
	}
	return fmt.Sprintf("dependency_analysis_%s_%s.%s", name, ts.Format("20060102_150405"), f)
}

// Export writes report in each format to dir and returns the written paths.
// Timestamps in file names use now in local time.
func Export(ctx context.Context, report *resolve.Report, dir string, formats []Format, now time.Time) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	var paths []string
	for _, f := range formats {
		path := filepath.Join(dir, Filename(report.Targets, now.Local(), f))
		if err := writeFile(ctx, path, report, f); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(ctx context.Context, path string, report *resolve.Report, f Format) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()

	switch f {
	case FormatXLSX:
		err = WriteXLSX(out, Rows(report))
	case FormatJSON:
		err = WriteJSON(out, report)
	case FormatDOT:
		_, err = out.WriteString(ToDOT(report))
	case FormatSVG:
		var svg []byte
		svg, err = RenderSVG(ctx, ToDOT(report))
		if err == nil {
			_, err = out.Write(svg)
		}
	default:
		err = errors.New(errors.ErrCodeInvalidFormat, "unknown export format %q", f)
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return out.Close()
}
