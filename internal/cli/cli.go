package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/muchdogesec/location2stix/pkg/buildinfo"
	"github.com/muchdogesec/location2stix/pkg/config"
	"github.com/muchdogesec/location2stix/pkg/errors"
	"github.com/muchdogesec/location2stix/pkg/integrations"
	"github.com/muchdogesec/location2stix/pkg/pipeline"
	"github.com/muchdogesec/location2stix/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for display and completions.
	appName = "location2stix"

	// defaultConfigPath is read when --config is not given. A missing file
	// means built-in defaults.
	defaultConfigPath = appName + ".toml"
)

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
	flags  globalFlags
}

// globalFlags are the persistent flags that override config file values.
type globalFlags struct {
	verbose  bool
	config   string
	input    string
	output   string
	backend  string
	storeDir string
	redisURL string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		flags:  globalFlags{config: defaultConfigPath},
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// ReportError logs err with its error code, if it has one.
func (c *CLI) ReportError(err error) {
	if code := errors.GetCode(err); code != "" {
		c.Logger.Error(err.Error(), "code", code)
		return
	}
	c.Logger.Error(err.Error())
}

// =============================================================================
// Configuration
// =============================================================================

// loadConfig reads the config file and applies any flags the user set.
func (c *CLI) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(c.flags.config)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("input") {
		cfg.Input = c.flags.input
	}
	if flags.Changed("output") {
		cfg.Output = c.flags.output
	}
	if flags.Changed("store") {
		cfg.Store.Backend = c.flags.backend
	}
	if flags.Changed("store-dir") {
		cfg.Store.Dir = c.flags.storeDir
	}
	if flags.Changed("redis-url") {
		cfg.Store.RedisURL = c.flags.redisURL
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c.Logger.Debug("loaded config",
		"path", c.flags.config,
		"input", cfg.Input,
		"output", cfg.Output,
		"store", cfg.Store.Backend)
	return cfg, nil
}

// =============================================================================
// Factories
// =============================================================================

// openStore opens the staging backend cfg selects.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Backend {
	case config.BackendRedis:
		return store.NewRedisStore(ctx, store.RedisOptions{
			URL:            cfg.Store.RedisURL,
			Prefix:         cfg.Store.RedisPrefix,
			ConnectTimeout: cfg.Timeout,
		})
	case config.BackendMemory:
		return store.NewMemoryStore(), nil
	default:
		return store.NewFileStore(cfg.Store.Dir)
	}
}

// newRunner creates a pipeline runner for CLI use. Reference fetches are
// shown with a spinner.
func (c *CLI) newRunner(st store.Store, cfg *config.Config) *pipeline.Runner {
	client := integrations.NewClient(cfg.Timeout, map[string]string{
		"User-Agent": buildinfo.UserAgent(),
	})
	return pipeline.NewRunner(st, &spinnerFetcher{next: client}, c.Logger)
}

// storeLocation describes where cfg stages objects.
func storeLocation(cfg *config.Config) string {
	switch cfg.Store.Backend {
	case config.BackendRedis:
		return cfg.Store.RedisURL + " (prefix " + cfg.Store.RedisPrefix + ")"
	case config.BackendMemory:
		return "memory"
	default:
		return cfg.Store.Dir
	}
}
