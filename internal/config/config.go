package config

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/comp/internal/errors"
	"github.com/vango-dev/comp/pkg/dom"
	"github.com/vango-dev/comp/pkg/reconcile"
)

const (
	// JSONFileName is the name of the JSON configuration file.
	JSONFileName = "comp.json"

	// YAMLFileName is the name of the YAML configuration file.
	YAMLFileName = "comp.yaml"

	// DefaultDB is the default recordings database path.
	DefaultDB = "recordings.db"

	// DefaultSaveDelay is how long the save confirmation stays.
	DefaultSaveDelay = "10s"

	// DefaultLoadDelay is how long the load confirmation stays.
	DefaultLoadDelay = "3s"

	// DefaultNamespace is the default metrics namespace.
	DefaultNamespace = "comp"

	// DefaultLogLevel is the default log level.
	DefaultLogLevel = "info"
)

// Config represents the complete comp configuration.
type Config struct {
	// Attributes names the marker attributes used by the reconciler.
	Attributes AttributesConfig `json:"attributes,omitempty" yaml:"attributes,omitempty"`

	// Recorder contains session recorder configuration.
	Recorder RecorderConfig `json:"recorder,omitempty" yaml:"recorder,omitempty"`

	// Metrics contains Prometheus configuration.
	Metrics MetricsConfig `json:"metrics,omitempty" yaml:"metrics,omitempty"`

	// LogLevel is one of debug, info, warn or error.
	LogLevel string `json:"logLevel,omitempty" yaml:"logLevel,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// AttributesConfig names the attributes the reconciler and registry look at.
type AttributesConfig struct {
	// Key is the explicit key attribute.
	Key string `json:"key,omitempty" yaml:"key,omitempty"`

	// Ignore marks subtrees that are never touched.
	Ignore string `json:"ignore,omitempty" yaml:"ignore,omitempty"`

	// Checksum marks subtrees that are skipped when unchanged.
	Checksum string `json:"checksum,omitempty" yaml:"checksum,omitempty"`

	// Identity is the fallback key attribute.
	Identity string `json:"identity,omitempty" yaml:"identity,omitempty"`

	// DisableIdentity turns the identity fallback off.
	DisableIdentity bool `json:"disableIdentity,omitempty" yaml:"disableIdentity,omitempty"`

	// Component marks a component's container element.
	Component string `json:"component,omitempty" yaml:"component,omitempty"`
}

// RecorderConfig contains session recorder settings.
type RecorderConfig struct {
	// DB is the bbolt database holding saved recordings.
	DB string `json:"db,omitempty" yaml:"db,omitempty"`

	// Session is the session name. Empty means a random one.
	Session string `json:"session,omitempty" yaml:"session,omitempty"`

	// SaveDelay is how long the save confirmation stays (e.g., "10s").
	SaveDelay string `json:"saveDelay,omitempty" yaml:"saveDelay,omitempty"`

	// LoadDelay is how long the load confirmation stays (e.g., "3s").
	LoadDelay string `json:"loadDelay,omitempty" yaml:"loadDelay,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	// Namespace prefixes all metric names.
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`
}

// New creates a configuration with default values.
func New() *Config {
	return &Config{
		Attributes: AttributesConfig{
			Key:       dom.DefaultKeyAttr,
			Ignore:    dom.DefaultIgnoreAttr,
			Checksum:  dom.DefaultChecksumAttr,
			Identity:  dom.DefaultIdentityAttr,
			Component: dom.DefaultComponentAttr,
		},
		Recorder: RecorderConfig{
			DB:        DefaultDB,
			SaveDelay: DefaultSaveDelay,
			LoadDelay: DefaultLoadDelay,
		},
		Metrics: MetricsConfig{
			Namespace: DefaultNamespace,
		},
		LogLevel: DefaultLogLevel,
	}
}

// Load reads configuration from the specified directory.
// It looks for comp.json first, then comp.yaml.
func Load(dir string) (*Config, error) {
	for _, name := range []string{JSONFileName, YAMLFileName} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.New(errors.E402).
		WithDetail("No " + JSONFileName + " or " + YAMLFileName + " found in " + dir)
}

// LoadFile reads configuration from the specified file path. Files ending in .yaml
// or .yml are parsed as YAML, anything else as JSON.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(errors.E402).WithDetail(path).Wrap(err)
	}

	cfg := New()
	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, errors.New(errors.E401).
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
			WithSuggestion("Check that " + filepath.Base(path) + " is valid " + format(path))
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path, in YAML or JSON depending on
// its extension.
func (c *Config) SaveTo(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
		// Add newline at end of file
		data = append(data, '\n')
	}
	if err != nil {
		return errors.New(errors.E401).Wrap(err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New(errors.E402).WithDetail(path).Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	a := &c.Attributes
	if a.Key == "" {
		a.Key = dom.DefaultKeyAttr
	}
	if a.Ignore == "" {
		a.Ignore = dom.DefaultIgnoreAttr
	}
	if a.Checksum == "" {
		a.Checksum = dom.DefaultChecksumAttr
	}
	if a.Identity == "" {
		a.Identity = dom.DefaultIdentityAttr
	}
	if a.Component == "" {
		a.Component = dom.DefaultComponentAttr
	}

	if c.Recorder.DB == "" {
		c.Recorder.DB = DefaultDB
	}
	if c.Recorder.SaveDelay == "" {
		c.Recorder.SaveDelay = DefaultSaveDelay
	}
	if c.Recorder.LoadDelay == "" {
		c.Recorder.LoadDelay = DefaultLoadDelay
	}

	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	a := c.Attributes
	seen := map[string]string{}
	for _, attr := range []struct{ field, name string }{
		{"key", a.Key},
		{"ignore", a.Ignore},
		{"checksum", a.Checksum},
		{"component", a.Component},
	} {
		if attr.name == "" {
			return errors.New(errors.E401).
				WithDetail("attributes." + attr.field + " must not be empty")
		}
		if other, ok := seen[attr.name]; ok {
			return errors.New(errors.E401).
				WithDetailf("attributes.%s and attributes.%s both use %q", other, attr.field, attr.name).
				WithSuggestion("Each marker attribute needs its own name")
		}
		seen[attr.name] = attr.field
	}

	for _, d := range []struct{ field, value string }{
		{"recorder.saveDelay", c.Recorder.SaveDelay},
		{"recorder.loadDelay", c.Recorder.LoadDelay},
	} {
		v, err := time.ParseDuration(d.value)
		if err != nil || v < 0 {
			return errors.New(errors.E401).
				WithDetailf("%s: invalid duration %q", d.field, d.value).
				WithExample(`"saveDelay": "10s"`)
		}
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return errors.New(errors.E401).
			WithDetailf("logLevel: %q is not one of debug, info, warn, error", c.LogLevel)
	}
	return nil
}

// ReconcileOptions returns the reconciler options for the configured attributes.
func (c *Config) ReconcileOptions() []reconcile.Option {
	identity := c.Attributes.Identity
	if c.Attributes.DisableIdentity {
		identity = ""
	}
	return []reconcile.Option{
		reconcile.WithKeyAttr(c.Attributes.Key),
		reconcile.WithIgnoreAttr(c.Attributes.Ignore),
		reconcile.WithChecksumAttr(c.Attributes.Checksum),
		reconcile.WithIdentityAttr(identity),
	}
}

// Level returns the configured log level, or info when it is invalid.
func (c *Config) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// SaveDelay returns the recorder's save confirmation delay.
func (c *Config) SaveDelay() time.Duration {
	return duration(c.Recorder.SaveDelay, DefaultSaveDelay)
}

// LoadDelay returns the recorder's load confirmation delay.
func (c *Config) LoadDelay() time.Duration {
	return duration(c.Recorder.LoadDelay, DefaultLoadDelay)
}

// DBPath returns the recordings database path, resolved against the config
// directory when relative.
func (c *Config) DBPath() string {
	if filepath.IsAbs(c.Recorder.DB) || c.Dir() == "" {
		return c.Recorder.DB
	}
	return filepath.Join(c.Dir(), c.Recorder.DB)
}

// Exists checks if a configuration file exists in the directory.
func Exists(dir string) bool {
	for _, name := range []string{JSONFileName, YAMLFileName} {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

func duration(value, fallback string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func format(path string) string {
	if isYAML(path) {
		return "YAML"
	}
	return "JSON"
}
