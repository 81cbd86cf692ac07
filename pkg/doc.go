// Package pkg provides the core libraries for debimpact, a reverse
// build-dependency resolver for Debian archives.
//
// # Overview
//
// Given a Sources index and one or more packages that are about to change,
// debimpact lists every source package that has to be rebuilt, together with
// the dependency chains that connect it to the change. The pkg directory is
// organized into three areas:
//
//  1. Domain logic: [control], [pkgdb], [resolve]
//  2. Infrastructure: [corpus], [cache], [httputil], [store], [config]
//  3. Orchestration and output: [pipeline], [export]
//
// # Architecture
//
// The typical data flow:
//
//	Sources(.xz|.gz) from a mirror or a local file
//	         ↓
//	    [corpus] package (download, decompress, digest)
//	         ↓
//	    [control] package (stanzas and Build-Depends expressions)
//	         ↓
//	    [pkgdb] package (source records, binary to source map)
//	         ↓
//	    [resolve] package (bounded reverse expansion, aggregation)
//	         ↓
//	    XLSX/JSON/DOT/SVG via [export], history via [store]
//
// # Quick Start
//
//	f, _ := os.Open("Sources")
//	db, _ := pkgdb.Load(f)
//	r := resolve.New(db, resolve.Options{FilterPureAll: true})
//	report, _ := r.ResolveBinaryTargets(ctx, []string{"libssl3"})
//	for _, e := range report.Entries {
//	    fmt.Println(e.Name, e.DependencyChain())
//	}
//
// The [pipeline] package wraps these steps with caching and is what the CLI
// and the HTTP server use.
//
// # Testing
//
//	go test ./pkg/...
//	go test -run Example ./pkg/...
//
// [control]: https://pkg.go.dev/github.com/matzehuels/debimpact/pkg/control
// [pkgdb]: https://pkg.go.dev/github.com/matzehuels/debimpact/pkg/pkgdb
// [resolve]: https://pkg.go.dev/github.com/matzehuels/debimpact/pkg/resolve
// [corpus]: https://pkg.go.dev/github.com/matzehuels/debimpact/pkg/corpus
// [cache]: https://pkg.go.dev/github.com/matzehuels/debimpact/pkg/cache
// [httputil]: https://pkg.go.dev/github.com/matzehuels/debimpact/pkg/httputil
// [store]: https://pkg.go.dev/github.com/matzehuels/debimpact/pkg/store
// [config]: https://pkg.go.dev/github.com/matzehuels/debimpact/pkg/config
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/debimpact/pkg/pipeline
// [export]: https://pkg.go.dev/github.com/matzehuels/debimpact/pkg/export
package pkg
