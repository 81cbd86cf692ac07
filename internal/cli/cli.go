package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/debimpact/pkg/buildinfo"
	"github.com/matzehuels/debimpact/pkg/cache"
	"github.com/matzehuels/debimpact/pkg/config"
	"github.com/matzehuels/debimpact/pkg/observability"
	"github.com/matzehuels/debimpact/pkg/pipeline"
	"github.com/matzehuels/debimpact/pkg/resolve"
	"github.com/matzehuels/debimpact/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "debimpact"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "debimpact finds the Debian packages that must be rebuilt when a package changes",
		Long: `debimpact reads a Debian Sources index and walks its Build-Depends graph
backwards: for a binary or source package it lists every source package that
transitively build-depends on it, with the dependency chains that connect them.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			c.installHooks()
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/debimpact/config.toml)")

	root.AddCommand(c.fetchCommand())
	root.AddCommand(c.resolveCommand(resolve.ModeBinary))
	root.AddCommand(c.resolveCommand(resolve.ModeSource))
	root.AddCommand(c.showCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.historyCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Config, Cache and Runner Factories
// =============================================================================

// config loads settings once per invocation.
func (c *CLI) config() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("loaded config", "path", c.configPath, "suite", cfg.Suite, "cache", cfg.Cache.Backend)
	c.cfg = cfg
	return cfg, nil
}

// newCache opens the configured cache backend, instrumented with hooks.
func (c *CLI) newCache(ctx context.Context, cfg *config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Cache.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendRedis:
		rc, err := cache.NewRedisCache(ctx, cfg.Cache.RedisAddr)
		if err != nil {
			return nil, fmt.Errorf("open redis cache: %w", err)
		}
		return cache.Instrument(rc), nil
	default:
		fc, err := cache.NewFileCache(cfg.Cache.Dir)
		if err != nil {
			c.Logger.Warn("file cache unavailable, continuing without cache", "error", err)
			return cache.NewNullCache(), nil
		}
		return cache.Instrument(fc), nil
	}
}

// newRunner creates a pipeline runner for CLI use. Keys in a shared Redis
// are prefixed with the app name.
func (c *CLI) newRunner(ctx context.Context, cfg *config.Config, noCache bool) (*pipeline.Runner, error) {
	cc, err := c.newCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if cfg.Cache.Backend == config.BackendRedis && !noCache {
		keyer = cache.NewScopedKeyer(nil, appName+":")
	}
	runner := pipeline.NewRunner(cc, keyer, c.Logger)
	if cfg.Cache.TTL > 0 {
		runner.CorpusTTL = cfg.Cache.TTL
	}
	return runner, nil
}

// openStore connects to the report history, or returns nil when none is
// configured.
func (c *CLI) openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	if cfg.Store.MongoURI == "" {
		return nil, nil
	}
	s, err := store.Connect(ctx, cfg.Store.MongoURI, cfg.Store.Database)
	if err != nil {
		return nil, fmt.Errorf("open report history: %w", err)
	}
	return s, nil
}

// requireStore is openStore for commands that cannot run without history.
func (c *CLI) requireStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	s, err := c.openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("report history is not configured: set store.mongo_uri or DEBIMPACT_MONGO_URI")
	}
	return s, nil
}

// installHooks routes library events to the CLI logger.
func (c *CLI) installHooks() {
	h := &logHooks{logger: c.Logger}
	observability.SetResolveHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
	observability.SetDatabaseHooks(h)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the file cache directory, honouring the config file.
func (c *CLI) cacheDir() (string, error) {
	cfg, err := c.config()
	if err != nil {
		return "", err
	}
	if cfg.Cache.Dir != "" {
		return cfg.Cache.Dir, nil
	}
	return cache.DefaultDir()
}

// stdout is where command results go; tests replace it.
var stdout io.Writer = os.Stdout
