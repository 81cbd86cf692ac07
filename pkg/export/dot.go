package export

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/debimpact/pkg/resolve"
)

// ToDOT renders the union of all chains in report as a digraph. Edges point
// from a package to the package that needs it to build, so targets sit at
// the top. Targets are drawn bold; each edge appears once.
func ToDOT(report *resolve.Report) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	var nodes []string
	seen := make(map[string]bool)
	addNode := func(n string) {
		if !seen[n] {
			seen[n] = true
			nodes = append(nodes, n)
		}
	}
	type edge struct{ from, to string }
	var edges []edge
	seenEdge := make(map[edge]bool)

	for _, t := range report.Targets {
		addNode(t)
	}
	for _, e := range report.Entries {
		for _, c := range e.Chains {
			parts := strings.Split(c, resolve.ChainSeparator)
			for i, p := range parts {
				addNode(p)
				if i == 0 {
					continue
				}
				ed := edge{parts[i-1], p}
				if !seenEdge[ed] {
					seenEdge[ed] = true
					edges = append(edges, ed)
				}
			}
		}
	}

	for _, n := range nodes {
		if slices.Contains(report.Targets, n) {
			fmt.Fprintf(&buf, "  %q [style=\"rounded,filled,bold\", fillcolor=\"#4472C4\", fontcolor=white];\n", n)
		} else {
			fmt.Fprintf(&buf, "  %q;\n", n)
		}
	}
	buf.WriteString("\n")
	for _, e := range edges {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.from, e.to)
	}
	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
