package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/orgchart/pkg/buildinfo"
	"github.com/matzehuels/orgchart/pkg/chart"
	"github.com/matzehuels/orgchart/pkg/observability"
	"github.com/matzehuels/orgchart/pkg/seed"
	"github.com/matzehuels/orgchart/pkg/session"
	"github.com/matzehuels/orgchart/pkg/storage"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "orgchart"

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
	backend    string
	key        string
	dir        string
	seedFile   string
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
		Use:           appName,
		Short:         "Orgchart edits organization charts in the terminal",
		Long:          `Orgchart is an editor for organization charts: departments and the people in them, placed on a free-form canvas and connected by edges. Charts are saved locally or to Redis/MongoDB and can be rendered to SVG.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/orgchart/config.toml)")
	flags.StringVar(&c.backend, "backend", "", "storage backend: file, memory, redis, mongo")
	flags.StringVar(&c.key, "key", "", "storage key of the chart (default "+session.DefaultKey+")")
	flags.StringVar(&c.dir, "dir", "", "directory of the file backend")
	flags.StringVar(&c.seedFile, "seed", "", "YAML seed used when no chart is saved")

	root.AddCommand(c.editCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.resetCommand())
	root.AddCommand(c.pathCommand())
	root.AddCommand(c.seedCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Config & Session Factory
// =============================================================================

// config loads the config file and applies flag overrides.
func (c *CLI) config() (Config, error) {
	cfg, err := loadConfig(c.configPath)
	if err != nil {
		return Config{}, err
	}
	if c.backend != "" {
		cfg.Storage.Backend = c.backend
	}
	if c.key != "" {
		cfg.Storage.Key = c.key
	}
	if c.dir != "" {
		cfg.Storage.Dir = c.dir
	}
	if c.seedFile != "" {
		cfg.Seed.File = c.seedFile
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// workspace is an opened session plus everything that must be released
// when the command ends.
type workspace struct {
	cfg     Config
	adapter *storage.Adapter
	sess    *session.Session
	origin  session.Origin
	metrics *metrics
}

// open loads config, connects the storage backend and starts a session.
func (c *CLI) open(ctx context.Context) (*workspace, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	logger := loggerFromContext(ctx)

	ws := &workspace{cfg: cfg}
	if cfg.Metrics.Textfile != "" {
		ws.metrics = newMetrics()
		ws.metrics.install()
	}

	seedFn := seed.Default
	if cfg.Seed.File != "" {
		data, err := seed.LoadFile(cfg.Seed.File)
		if err != nil {
			return nil, fmt.Errorf("load seed: %w", err)
		}
		seedFn = func() chart.Snapshot { return data.Snapshot() }
	}

	store, err := cfg.openStore(ctx)
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", cfg.Storage.Backend, err)
	}
	ws.adapter = storage.NewAdapter(store, storage.WithLogger(logger))

	ws.sess, err = session.New(session.Config{
		Store:  ws.adapter,
		Key:    cfg.Storage.Key,
		Logger: logger,
		Seed:   seedFn,
	})
	if err != nil {
		ws.adapter.Close()
		return nil, err
	}
	ws.origin = ws.sess.Start(ctx)
	return ws, nil
}

// close releases the storage backend and flushes metrics.
func (ws *workspace) close(logger *log.Logger) {
	if err := ws.adapter.Close(); err != nil {
		logger.Warn("close storage", "err", err)
	}
	if ws.metrics == nil {
		return
	}
	if err := ws.metrics.writeTextfile(ws.cfg.Metrics.Textfile); err != nil {
		logger.Warn("write metrics", "path", ws.cfg.Metrics.Textfile, "err", err)
	}
	observability.Reset()
}
