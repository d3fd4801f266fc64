// Package config loads the dynform YAML configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-dynform/pkg/form"
)

// Config is the on-disk configuration. Zero values are replaced by Default
// values when loaded; cobra flags override individual keys.
type Config struct {
	Addr       string        `yaml:"addr"`
	Schema     string        `yaml:"schema"`
	Operation  string        `yaml:"operation"`
	GateMode   string        `yaml:"gate_mode"`
	Templates  string        `yaml:"templates"`
	Stylesheet string        `yaml:"stylesheet"`
	Watch      bool          `yaml:"watch"`
	Debounce   time.Duration `yaml:"debounce"`
	Verify     bool          `yaml:"verify_payloads"`
	Log        Log           `yaml:"log"`
}

// Log configures the zap logger.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Addr:     ":8080",
		GateMode: string(form.GateStrict),
		Debounce: 250 * time.Millisecond,
		Log: Log{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads YAML from path on top of Default. An empty path returns the
// defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: decode %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks enumerated keys.
func (c Config) Validate() error {
	var errs []error
	switch form.GateMode(c.GateMode) {
	case form.GateStrict, form.GatePresence:
	default:
		errs = append(errs, fmt.Errorf("gate_mode must be %q or %q, got %q", form.GateStrict, form.GatePresence, c.GateMode))
	}
	switch strings.ToLower(c.Log.Format) {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be console or json, got %q", c.Log.Format))
	}
	if c.Debounce < 0 {
		errs = append(errs, errors.New("debounce must not be negative"))
	}
	return errors.Join(errs...)
}

// Gate returns the configured gate mode.
func (c Config) Gate() form.GateMode {
	return form.ParseGateMode(c.GateMode)
}
