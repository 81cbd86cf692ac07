package config

import (
	stderrors "errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/matzehuels/debimpact/pkg/errors"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "DEBIMPACT_"

// readEnvFiles merges the given .env files. With no files, ./.env is read
// when it exists.
func readEnvFiles(files []string) (map[string]string, error) {
	if len(files) == 0 {
		if _, err := os.Stat(".env"); err != nil {
			return nil, nil
		}
		files = []string{".env"}
	}
	env, err := godotenv.Read(files...)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrap(errors.ErrCodeNotFound, err, "env file")
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse env file")
	}
	return env, nil
}

// envLookup consults the process environment first, then dotenv values.
func envLookup(dotenv map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}
	str("MIRROR", &c.Mirror)
	str("SUITE", &c.Suite)
	str("COMPONENT", &c.Component)
	str("OUTPUT_DIR", &c.OutputDir)
	str("CACHE_BACKEND", &c.Cache.Backend)
	str("CACHE_DIR", &c.Cache.Dir)
	str("REDIS_ADDR", &c.Cache.RedisAddr)
	str("MONGO_URI", &c.Store.MongoURI)
	str("MONGO_DATABASE", &c.Store.Database)
	str("SERVER_ADDR", &c.Server.Addr)

	if v, ok := lookup(EnvPrefix + "FORMATS"); ok {
		c.Formats = strings.Split(v, ",")
	}

	for name, dst := range map[string]*int{
		"MAX_DEPTH":        &c.MaxDepth,
		"SOURCE_MAX_DEPTH": &c.SourceMaxDepth,
	} {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s%s", EnvPrefix, name)
		}
		*dst = n
	}

	if v, ok := lookup(EnvPrefix + "FILTER_PURE_ALL"); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "%sFILTER_PURE_ALL", EnvPrefix)
		}
		c.FilterPureAll = b
	}
	if v, ok := lookup(EnvPrefix + "CACHE_TTL"); ok {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "%sCACHE_TTL", EnvPrefix)
		}
		c.Cache.TTL = d
	}
	return nil
}
