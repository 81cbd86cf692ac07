// Package cli implements the debimpact command-line interface.
//
// This package provides commands for downloading a Debian Sources index,
// resolving reverse build-dependencies of binary and source packages,
// inspecting single packages, serving the HTTP API, and managing the cache
// and report history. The CLI is built using cobra and supports verbose
// logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - fetch: Download or refresh the Sources index
//   - binary, source: Resolve reverse build-dependents and export reports
//   - show: Print what the corpus knows about one package
//   - serve: Run the HTTP API over a loaded corpus
//   - history: List and show saved reports
//   - cache: Manage the corpus and report cache
//
// # Logging
//
// --verbose (-v) switches to debug level, which also shows cache, HTTP and
// resolver events. The logger travels in the command context.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger returns a timestamped logger ("14:32:01.45") at level.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs a message with the time elapsed since it was created, e.g.
// "Resolved 42 dependents (1.234s)".
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey struct{}

// withLogger attaches l to ctx. The root command does this before any
// subcommand runs.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// loggerFromContext returns the attached logger, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
