package cli

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/debimpact/pkg/observability"
)

// logHooks forwards library events to the CLI logger. Routine events go to
// debug level; the depth cap is worth a warning.
type logHooks struct {
	logger *log.Logger
}

var (
	_ observability.ResolveHooks  = (*logHooks)(nil)
	_ observability.CacheHooks    = (*logHooks)(nil)
	_ observability.HTTPHooks     = (*logHooks)(nil)
	_ observability.DatabaseHooks = (*logHooks)(nil)
)

func (h *logHooks) OnResolveStart(_ context.Context, mode string, targets []string) {
	h.logger.Debug("resolving", "mode", mode, "targets", strings.Join(targets, ","))
}

func (h *logHooks) OnResolveComplete(_ context.Context, mode string, targets []string, dependents int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("resolve failed", "mode", mode, "error", err)
		return
	}
	h.logger.Debug("resolved", "mode", mode, "targets", len(targets), "dependents", dependents, "duration", d.Round(time.Millisecond))
}

func (h *logHooks) OnTruncated(_ context.Context, target string, depth int) {
	h.logger.Warn("depth limit reached, results may be incomplete", "target", target, "max_depth", depth)
}

func (h *logHooks) OnLoad(records int, d time.Duration) {
	h.logger.Debug("database built", "records", records, "duration", d.Round(time.Millisecond))
}

func (h *logHooks) OnScan(string, bool, int, bool) {}

func (h *logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *logHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("http request", "method", method, "host", host, "path", path)
}

func (h *logHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("http response", "method", method, "host", host, "path", path, "status", status, "duration", d.Round(time.Millisecond))
}

func (h *logHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Warn("http error", "method", method, "host", host, "path", path, "error", err)
}
