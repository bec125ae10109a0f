package project

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/CognitoIQ/go-avro/avrogen"
)

// ConfigFile is the name of the project configuration file, looked up
// in the project root.
const ConfigFile = "avrogen.yaml"

// EnableLoggingEnv overrides the enable_logging setting when set.
const EnableLoggingEnv = "AVROGEN_ENABLE_LOGGING"

// Config represents the avrogen.yaml project configuration file.
type Config struct {
	// Root namespace of the project. When empty, the last element of
	// the module path in go.mod is used, or the name of the project
	// directory if there is no go.mod.
	BaseNamespace string `yaml:"base_namespace,omitempty"`
	// Emit diagnostic logs while generating.
	EnableLogging bool `yaml:"enable_logging"`
	// Glob matched against file names to discover schema files.
	Pattern string `yaml:"pattern"`
	// Module that generated code depends on. Projects that do not
	// require it are reported.
	RuntimeModule string `yaml:"runtime_module"`
	// Maximum number of schema files processed at once.
	Jobs int `yaml:"jobs"`
}

// DefaultConfig returns the configuration used for settings absent
// from the configuration file.
func DefaultConfig() Config {
	return Config{
		Pattern:       "*.avro",
		RuntimeModule: avrogen.RuntimePath,
		Jobs:          1,
	}
}

// LoadConfig reads a Config from a file path. Settings missing from
// the file keep their default values. A missing file is not an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	f, err := os.Open(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, err
	default:
		defer f.Close()
		dec := yaml.NewDecoder(f)
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() {
	if v, ok := os.LookupEnv(EnableLoggingEnv); ok {
		c.EnableLogging = strings.EqualFold(strings.TrimSpace(v), "true")
	}
}

// Validate checks the configuration for valid values.
func (c *Config) Validate() error {
	if c.Pattern == "" {
		return errors.New("pattern must not be empty")
	}
	if _, err := filepath.Match(c.Pattern, ""); err != nil {
		return fmt.Errorf("invalid pattern %q: %w", c.Pattern, err)
	}
	if c.Jobs < 1 {
		return fmt.Errorf("jobs must be at least 1, got %d", c.Jobs)
	}
	return nil
}

// Save writes the Config to a file path.
func (c *Config) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	return enc.Encode(c)
}
