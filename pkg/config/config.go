// Package config loads debimpact settings.
//
// Settings are layered: built-in defaults, then the TOML file, then a .env
// file, then DEBIMPACT_* environment variables. Command-line flags are
// applied last by the caller.
//
// Example config.toml:
//
//	suite = "bookworm"
//	max_depth = 8
//	formats = ["xlsx", "json"]
//
//	[cache]
//	backend = "redis"
//	redis_addr = "redis://localhost:6379/0"
//
//	[store]
//	mongo_uri = "mongodb://localhost:27017"
package config

import (
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/debimpact/pkg/cache"
	"github.com/matzehuels/debimpact/pkg/corpus"
	"github.com/matzehuels/debimpact/pkg/errors"
	"github.com/matzehuels/debimpact/pkg/export"
	"github.com/matzehuels/debimpact/pkg/resolve"
)

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

const (
	DefaultOutputDir = "."
	DefaultDatabase  = "debimpact"
	DefaultAddr      = "127.0.0.1:8080"
)

// Config holds every setting.
type Config struct {
	Mirror         string   `toml:"mirror"`
	Suite          string   `toml:"suite"`
	Component      string   `toml:"component"`
	MaxDepth       int      `toml:"max_depth"`
	SourceMaxDepth int      `toml:"source_max_depth"`
	FilterPureAll  bool     `toml:"filter_pure_all"`
	OutputDir      string   `toml:"output_dir"`
	Formats        []string `toml:"formats"`

	Cache  CacheConfig  `toml:"cache"`
	Store  StoreConfig  `toml:"store"`
	Server ServerConfig `toml:"server"`
}

// CacheConfig selects the cache backend for corpus payloads and reports.
type CacheConfig struct {
	Backend   string        `toml:"backend"`
	Dir       string        `toml:"dir"`
	TTL       time.Duration `toml:"ttl"`
	RedisAddr string        `toml:"redis_addr"`
}

// StoreConfig configures report history. An empty MongoURI disables it.
type StoreConfig struct {
	MongoURI string `toml:"mongo_uri"`
	Database string `toml:"database"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Mirror:         corpus.DefaultMirror,
		Suite:          corpus.DefaultSuite,
		Component:      corpus.DefaultComponent,
		MaxDepth:       resolve.DefaultMaxDepth,
		SourceMaxDepth: resolve.DefaultSourceMaxDepth,
		FilterPureAll:  true,
		OutputDir:      DefaultOutputDir,
		Formats:        formatNames(export.DefaultFormats),
		Cache: CacheConfig{
			Backend: BackendFile,
			TTL:     cache.TTLCorpus,
		},
		Store:  StoreConfig{Database: DefaultDatabase},
		Server: ServerConfig{Addr: DefaultAddr},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/debimpact/config.toml, or "" when no
// config directory is known.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "debimpact", "config.toml")
}

// Load reads settings from path and the environment. An empty path reads
// DefaultPath if it exists; an explicit path must exist. envFiles are read
// with godotenv; when none are given a .env in the working directory is used
// if present. Real environment variables win over .env values.
func Load(path string, envFiles ...string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		if err := cfg.decodeFile(path); err != nil {
			if explicit || !stderrors.Is(err, fs.ErrNotExist) {
				return nil, err
			}
		}
	}

	env, err := readEnvFiles(envFiles)
	if err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(envLookup(env)); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decodeFile(path string) error {
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return err
		}
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	if c.MaxDepth < 0 || c.SourceMaxDepth < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "depth limits must not be negative")
	}
	if !slices.Contains([]string{BackendFile, BackendRedis, BackendNone}, c.Cache.Backend) {
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q (want file, redis or none)", c.Cache.Backend)
	}
	if c.Cache.Backend == BackendRedis && c.Cache.RedisAddr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "cache backend redis needs cache.redis_addr")
	}
	if c.Cache.TTL < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.ttl must not be negative")
	}
	if _, err := export.ParseFormats(c.Formats); err != nil {
		return err
	}
	if err := errors.ValidateURL(c.CorpusURL()); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "mirror %q", c.Mirror)
	}
	return nil
}

// CorpusURL is the Sources.xz location for the configured mirror, suite and
// component.
func (c *Config) CorpusURL() string {
	return corpus.URL(c.Mirror, c.Suite, c.Component)
}

// ResolveOptions returns the resolver settings.
func (c *Config) ResolveOptions() resolve.Options {
	return resolve.Options{
		MaxDepth:       c.MaxDepth,
		SourceMaxDepth: c.SourceMaxDepth,
		FilterPureAll:  c.FilterPureAll,
	}
}

// ExportFormats returns the parsed output formats.
func (c *Config) ExportFormats() []export.Format {
	formats, _ := export.ParseFormats(c.Formats)
	return formats
}

func formatNames(formats []export.Format) []string {
	out := make([]string, len(formats))
	for i, f := range formats {
		out[i] = string(f)
	}
	return out
}
