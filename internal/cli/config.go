package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	pkgerrors "github.com/matzehuels/orgchart/pkg/errors"
	"github.com/matzehuels/orgchart/pkg/session"
	"github.com/matzehuels/orgchart/pkg/storage"
)

// =============================================================================
// Config
// =============================================================================

// Config is the on-disk configuration, read from config.toml and
// overridden by command-line flags.
type Config struct {
	Storage StorageConfig `toml:"storage"`
	Seed    SeedConfig    `toml:"seed"`
	Metrics MetricsConfig `toml:"metrics"`
}

// StorageConfig selects and configures the storage backend.
type StorageConfig struct {
	Backend         string `toml:"backend" validate:"oneof=file memory redis mongo"`
	Key             string `toml:"key" validate:"required,max=256"`
	Dir             string `toml:"dir"`
	RedisAddr       string `toml:"redis_addr" validate:"required_if=Backend redis,omitempty,hostname_port"`
	RedisPassword   string `toml:"redis_password"`
	RedisDB         int    `toml:"redis_db" validate:"gte=0,lte=15"`
	MongoURI        string `toml:"mongo_uri" validate:"required_if=Backend mongo,omitempty,uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

// SeedConfig points at an optional YAML seed file.
type SeedConfig struct {
	File string `toml:"file" validate:"omitempty,filepath"`
}

// MetricsConfig enables writing Prometheus metrics on exit.
type MetricsConfig struct {
	Textfile string `toml:"textfile" validate:"omitempty,filepath"`
}

// defaultConfig returns the configuration used when no file exists.
func defaultConfig() Config {
	return Config{
		Storage: StorageConfig{
			Backend:         storage.BackendFile,
			Key:             session.DefaultKey,
			MongoDatabase:   storage.DefaultMongoDatabase,
			MongoCollection: storage.DefaultMongoCollection,
		},
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and that the storage key is safe.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
			}
			return pkgerrors.New(pkgerrors.ErrCodeInvalidConfig, "invalid config: %s", strings.Join(msgs, "; "))
		}
		return pkgerrors.Wrap(pkgerrors.ErrCodeInvalidConfig, err, "invalid config")
	}
	return pkgerrors.ValidateStorageKey(c.Storage.Key)
}

// loadConfig reads path over the defaults. An empty path means the
// default location, which may be absent. Unknown keys are rejected.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	explicit := path != ""
	if !explicit {
		dir, err := configDir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(dir, "config.toml")
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return defaultConfig(), nil
		}
		return Config{}, pkgerrors.Wrap(pkgerrors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, pkgerrors.New(pkgerrors.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// =============================================================================
// Paths
// =============================================================================

// configDir returns the config directory using XDG standard (~/.config/orgchart/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

// chartsDir returns the directory of the file backend.
func (c Config) chartsDir() (string, error) {
	if c.Storage.Dir != "" {
		return c.Storage.Dir, nil
	}
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "charts"), nil
}

// =============================================================================
// Store Factory
// =============================================================================

// openStore builds the configured storage backend.
func (c Config) openStore(ctx context.Context) (storage.Store, error) {
	switch c.Storage.Backend {
	case storage.BackendFile:
		dir, err := c.chartsDir()
		if err != nil {
			return nil, fmt.Errorf("resolve storage dir: %w", err)
		}
		return storage.NewFileStore(dir)
	case storage.BackendMemory:
		return storage.NewMemoryStore(), nil
	case storage.BackendRedis:
		return storage.NewRedisStore(ctx, storage.RedisConfig{
			Addr:     c.Storage.RedisAddr,
			Password: c.Storage.RedisPassword,
			DB:       c.Storage.RedisDB,
		})
	case storage.BackendMongo:
		return storage.NewMongoStore(ctx, storage.MongoConfig{
			URI:        c.Storage.MongoURI,
			Database:   c.Storage.MongoDatabase,
			Collection: c.Storage.MongoCollection,
		})
	}
	return nil, pkgerrors.New(pkgerrors.ErrCodeUnsupported, "unsupported storage backend %q", c.Storage.Backend)
}

// location describes where the configured backend keeps the chart.
func (c Config) location() (string, error) {
	switch c.Storage.Backend {
	case storage.BackendFile:
		dir, err := c.chartsDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, c.Storage.Key+".json"), nil
	case storage.BackendRedis:
		return fmt.Sprintf("redis://%s/%d %s%s", c.Storage.RedisAddr, c.Storage.RedisDB, storage.DefaultRedisPrefix, c.Storage.Key), nil
	case storage.BackendMongo:
		return fmt.Sprintf("%s %s.%s/%s", c.Storage.MongoURI, c.Storage.MongoDatabase, c.Storage.MongoCollection, c.Storage.Key), nil
	}
	return c.Storage.Backend + ":" + c.Storage.Key, nil
}
