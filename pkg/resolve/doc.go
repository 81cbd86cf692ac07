// Package resolve answers "which packages transitively build-depend on X,
// and by what path?" over a [pkgdb.Database].
//
// # Modes
//
// Binary mode starts from an installable package name. Every source whose
// build dependencies name the target is a direct dependent; each binary that
// dependent produces is expanded in turn, so the traversal alternates between
// the binary and source namespaces:
//
//	libbar (binary) <- libfoo (source) -> libfoo1 (binary) <- app (source)
//
// Source mode starts from a source package and expands every binary it
// produces, rooting each chain at the source.
//
// # Paths
//
// A [Chain] is one concrete path of "is required to build" edges. Visited
// sets are persistent and branch-local ([Visited]), so sibling branches never
// suppress each other: a dependent reachable through two intermediates keeps
// both chains. The price is repeated expansion of shared subtrees, bounded
// only by the depth cap.
//
// # Depth cap
//
// [Options.MaxDepth] (default 10) bounds binary-mode traversal and
// [Options.SourceMaxDepth] (default 5) bounds each binary of a source-mode
// run. A chain produced with cap k never has more than k+1 packages. Results
// cut short by the cap are flagged with Truncated rather than reported as
// errors.
//
// # Aggregation
//
// [Aggregator] merges per-target results into one [Entry] per dependent,
// deduplicating formatted chain strings and keeping the first metadata seen.
//
//	r := resolve.New(db, resolve.Options{FilterPureAll: true})
//	report, err := r.ResolveBinaryTargets(ctx, []string{"libssl3", "zlib1g"})
//	for _, e := range report.Entries {
//	    fmt.Println(e.Name, e.DependencyChain())
//	}
package resolve
