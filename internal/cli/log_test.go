package cli

import (
	"bytes"
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name  string
		level log.Level
		emit  func(*log.Logger)
		want  bool
	}{
		{"info at info", log.InfoLevel, func(l *log.Logger) { l.Info("loaded corpus") }, true},
		{"debug at info", log.InfoLevel, func(l *log.Logger) { l.Debug("cache hit") }, false},
		{"debug at debug", log.DebugLevel, func(l *log.Logger) { l.Debug("cache hit") }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.emit(newLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.want {
				t.Errorf("wrote output = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, log.InfoLevel))
	prog.done("Resolved 3 dependents")

	if !regexp.MustCompile(`Resolved 3 dependents \(\d+(\.\d+)?[µnm]?s\)`).MatchString(buf.String()) {
		t.Errorf("progress output = %q", buf.String())
	}
}

func TestLoggerContext(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, log.InfoLevel)

	if got := loggerFromContext(withLogger(context.Background(), l)); got != l {
		t.Error("loggerFromContext did not return the attached logger")
	}
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("loggerFromContext should fall back to log.Default()")
	}
}

func TestLogHooks(t *testing.T) {
	ctx := context.Background()

	var info bytes.Buffer
	h := &logHooks{logger: newLogger(&info, log.InfoLevel)}
	h.OnResolveStart(ctx, "binary", []string{"libssl3"})
	h.OnCacheHit(ctx, "report")
	h.OnLoad(4, time.Millisecond)
	h.OnResponse(ctx, "GET", "deb.debian.org", "/debian", 200, time.Second)
	if info.Len() != 0 {
		t.Errorf("routine events logged at info level: %q", info.String())
	}

	h.OnTruncated(ctx, "libc6", 10)
	h.OnError(ctx, "GET", "deb.debian.org", "/debian", errors.New("connection reset"))
	out := info.String()
	for _, want := range []string{"depth limit reached", "target=libc6", "max_depth=10", "connection reset"} {
		if !strings.Contains(out, want) {
			t.Errorf("warnings missing %q: %q", want, out)
		}
	}

	var debug bytes.Buffer
	h = &logHooks{logger: newLogger(&debug, log.DebugLevel)}
	h.OnResolveComplete(ctx, "source", []string{"openssl"}, 7, time.Millisecond, nil)
	if !strings.Contains(debug.String(), "dependents=7") {
		t.Errorf("debug output = %q", debug.String())
	}
}
