// Package config loads location2stix settings from a TOML file.
//
// Every key is optional; anything left out keeps its [Default] value.
//
//	input  = "input_data/ISO-3166-Countries-with-Regional-Codes.csv"
//	output = "stix2_objects/locations-bundle.json"
//	timeout = "10s"
//
//	[sources]
//	identity_url           = "https://…/identity/location2stix.json"
//	marking_definition_url = "https://…/marking-definition/location2stix.json"
//
//	[markings]
//	fixed = "marking-definition--94868c89-83c2-464b-929b-a1a8aa3c8487"
//
//	[store]
//	backend      = "file"          # file, redis or memory
//	dir          = "stix2_objects"
//	redis_url    = "redis://localhost:6379/0"
//	redis_prefix = "location2stix:"
package config

import (
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/muchdogesec/location2stix/pkg/errors"
	"github.com/muchdogesec/location2stix/pkg/integrations"
	"github.com/muchdogesec/location2stix/pkg/stix"
	"github.com/muchdogesec/location2stix/pkg/store"
)

// Defaults.
const (
	DefaultInput        = "input_data/ISO-3166-Countries-with-Regional-Codes.csv"
	DefaultStoreDir     = "stix2_objects"
	DefaultOutput       = DefaultStoreDir + "/locations-bundle.json"
	DefaultFixedMarking = "marking-definition--94868c89-83c2-464b-929b-a1a8aa3c8487"
	DefaultRedisURL     = "redis://localhost:6379/0"
)

// Store backends.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Backends lists the accepted store backends.
var Backends = []string{BackendFile, BackendRedis, BackendMemory}

// Config holds the settings for one run.
type Config struct {
	Input    string        `toml:"input"`
	Output   string        `toml:"output"`
	Timeout  time.Duration `toml:"timeout"`
	Sources  Sources       `toml:"sources"`
	Markings Markings      `toml:"markings"`
	Store    Store         `toml:"store"`
}

// Sources are the locations of the two fetched reference objects.
type Sources struct {
	IdentityURL          string `toml:"identity_url"`
	MarkingDefinitionURL string `toml:"marking_definition_url"`
}

// Markings are references applied without being fetched.
type Markings struct {
	Fixed string `toml:"fixed"`
}

// Store selects and configures the staging backend.
type Store struct {
	Backend     string `toml:"backend"`
	Dir         string `toml:"dir"`
	RedisURL    string `toml:"redis_url"`
	RedisPrefix string `toml:"redis_prefix"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Input:   DefaultInput,
		Output:  DefaultOutput,
		Timeout: integrations.DefaultTimeout,
		Sources: Sources{
			IdentityURL:          integrations.DefaultIdentityURL,
			MarkingDefinitionURL: integrations.DefaultMarkingDefinitionURL,
		},
		Markings: Markings{Fixed: DefaultFixedMarking},
		Store: Store{
			Backend:     BackendFile,
			Dir:         DefaultStoreDir,
			RedisURL:    DefaultRedisURL,
			RedisPrefix: store.DefaultRedisPrefix,
		},
	}
}

// Load reads path over the defaults. An empty path or a missing file
// yields [Default]. Unknown keys are rejected so typos do not pass
// silently.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// Validate checks that c can drive a run.
func (c *Config) Validate() error {
	if err := errors.ValidateFilePath(c.Input); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "input")
	}
	if err := errors.ValidateFilePath(c.Output); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "output")
	}
	if c.Timeout <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "timeout must be positive, got %s", c.Timeout)
	}
	if err := errors.ValidateURL(c.Sources.IdentityURL); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "sources.identity_url")
	}
	if err := errors.ValidateURL(c.Sources.MarkingDefinitionURL); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "sources.marking_definition_url")
	}
	if !stix.IsValidID(c.Markings.Fixed, stix.TypeMarkingDefinition) {
		return errors.New(errors.ErrCodeInvalidConfig, "markings.fixed is not a marking-definition id: %q", c.Markings.Fixed)
	}
	if err := c.Store.validate(); err != nil {
		return err
	}
	if c.Store.Backend == BackendFile {
		return checkStoreDir(c.Store.Dir, c.Input)
	}
	return nil
}

// checkStoreDir rejects a staging directory that holds the working
// directory or the input file. Reset clears what is staged under it.
func checkStoreDir(dir, input string) error {
	wd, err := os.Getwd()
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "resolve working directory")
	}
	if within(dir, wd) {
		return errors.New(errors.ErrCodeInvalidConfig, "store.dir %q contains the working directory", dir)
	}
	if within(dir, input) {
		return errors.New(errors.ErrCodeInvalidConfig, "store.dir %q contains the input %q", dir, input)
	}
	return nil
}

// within reports whether path is dir or lies below it.
func within(dir, path string) bool {
	d, err := filepath.Abs(dir)
	if err != nil {
		return false
	}
	p, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(d, p)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func (s Store) validate() error {
	if !slices.Contains(Backends, s.Backend) {
		return errors.New(errors.ErrCodeInvalidConfig, "store.backend must be one of %s, got %q", strings.Join(Backends, ", "), s.Backend)
	}
	switch s.Backend {
	case BackendFile:
		if err := errors.ValidateFilePath(s.Dir); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "store.dir")
		}
	case BackendRedis:
		if !strings.HasPrefix(s.RedisURL, "redis://") && !strings.HasPrefix(s.RedisURL, "rediss://") {
			return errors.New(errors.ErrCodeInvalidConfig, "store.redis_url must use redis or rediss scheme: %q", s.RedisURL)
		}
	}
	return nil
}
