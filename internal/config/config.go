package config

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/vspec/internal/errors"
)

const (
	// ConfigFileName is the name of the JSON configuration file.
	ConfigFileName = "vspec.json"

	// YAMLConfigFileName is the name of the YAML configuration file.
	YAMLConfigFileName = "vspec.yaml"

	// EnvConfigPath names an explicit config file, overriding the search.
	EnvConfigPath = "VSPEC_CONFIG"

	// EnvDebug forces debug logging when set to a non-empty value.
	EnvDebug = "VSPEC_DEBUG"

	// DefaultMarkerPrefix prefixes the id of substituted component markers.
	DefaultMarkerPrefix = "spy-"

	// DefaultContainerTag is the tag of the per-test mount container.
	DefaultContainerTag = "div"

	// DefaultWaitTimeout bounds waits for pending asynchronous work.
	DefaultWaitTimeout = "5s"

	// DefaultNamespace is the metrics namespace.
	DefaultNamespace = "vspec"

	// DefaultTracerName is the OpenTelemetry tracer name.
	DefaultTracerName = "vspec"
)

// Config represents the complete vspec configuration.
type Config struct {
	// MarkerPrefix prefixes marker element ids rendered by component spies.
	MarkerPrefix string `json:"markerPrefix,omitempty" yaml:"markerPrefix,omitempty"`

	// ContainerTag is the tag of the element components mount into.
	ContainerTag string `json:"containerTag,omitempty" yaml:"containerTag,omitempty"`

	// WaitTimeout bounds how long a wait for pending work may block (e.g., "5s").
	WaitTimeout string `json:"waitTimeout,omitempty" yaml:"waitTimeout,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"logLevel,omitempty" yaml:"logLevel,omitempty"`

	// Debug enables debug logging of mounts, actions and assertions.
	Debug bool `json:"debug,omitempty" yaml:"debug,omitempty"`

	// Color enables ANSI colors in failure output.
	Color *bool `json:"color,omitempty" yaml:"color,omitempty"`

	// Metrics contains Prometheus settings.
	Metrics MetricsConfig `json:"metrics,omitempty" yaml:"metrics,omitempty"`

	// Tracing contains OpenTelemetry settings.
	Tracing TracingConfig `json:"tracing,omitempty" yaml:"tracing,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	// Enabled registers case, action and assertion metrics.
	Enabled bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`

	// Namespace is the metrics namespace.
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	// Enabled starts a span per test case and per action.
	Enabled bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`

	// TracerName is the tracer name passed to the global provider.
	TracerName string `json:"tracerName,omitempty" yaml:"tracerName,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads configuration from dir. It looks for vspec.json, then
// vspec.yaml. A missing file yields E021.
func Load(dir string) (*Config, error) {
	for _, name := range []string{ConfigFileName, YAMLConfigFileName} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.New(errors.CodeConfigNotFound).
		WithDetail("No " + ConfigFileName + " or " + YAMLConfigFileName + " found in " + dir).
		WithSuggestion("Run 'vspec init' to create one, or rely on the defaults")
}

// LoadFile reads configuration from the specified file path. Files ending
// in .yaml or .yml are decoded as YAML, everything else as JSON.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.CodeConfigNotFound).
				WithDetail("No config file at " + path)
		}
		return nil, errors.New(errors.CodeInvalidConfig).Wrap(err)
	}

	cfg := &Config{}
	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, errors.New(errors.CodeInvalidConfig).
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error())
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Discover resolves the configuration for a test run: the file named by
// VSPEC_CONFIG if set, else the nearest vspec.json / vspec.yaml in dir or
// its parents, else defaults. VSPEC_DEBUG turns on Debug.
func Discover(dir string) (*Config, error) {
	var (
		cfg *Config
		err error
	)
	if path := os.Getenv(EnvConfigPath); path != "" {
		cfg, err = LoadFile(path)
	} else {
		cfg, err = findUp(dir)
	}
	if err != nil {
		return nil, err
	}
	if os.Getenv(EnvDebug) != "" {
		cfg.Debug = true
	}
	return cfg, nil
}

// LoadFromWorkingDir is Discover for the current working directory.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, errors.New(errors.CodeInvalidConfig).Wrap(err)
	}
	return Discover(wd)
}

func findUp(dir string) (*Config, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return New(), nil
	}
	for {
		cfg, err := Load(abs)
		if err == nil {
			return cfg, nil
		}
		if !errors.HasCode(err, errors.CodeConfigNotFound) {
			return nil, err
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return New(), nil
		}
		abs = parent
	}
}

// SaveTo writes the configuration to the specified path, as YAML or JSON
// according to the extension.
func (c *Config) SaveTo(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return errors.New(errors.CodeInvalidConfig).Wrap(err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New(errors.CodeInvalidConfig).Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.MarkerPrefix == "" {
		c.MarkerPrefix = DefaultMarkerPrefix
	}
	if c.ContainerTag == "" {
		c.ContainerTag = DefaultContainerTag
	}
	if c.WaitTimeout == "" {
		c.WaitTimeout = DefaultWaitTimeout
	}
	if c.LogLevel == "" {
		c.LogLevel = "warn"
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = DefaultTracerName
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	d, err := time.ParseDuration(c.WaitTimeout)
	if err != nil || d <= 0 {
		return errors.New(errors.CodeInvalidConfig).
			WithDetail("waitTimeout must be a positive duration such as \"5s\", got " + c.WaitTimeout)
	}
	if _, ok := parseLevel(c.LogLevel); !ok {
		return errors.New(errors.CodeInvalidConfig).
			WithDetail("logLevel must be one of debug, info, warn, error, got " + c.LogLevel)
	}
	if strings.ContainsAny(c.MarkerPrefix, " #.[]") {
		return errors.New(errors.CodeInvalidConfig).
			WithDetail("markerPrefix must be usable inside an element id, got " + c.MarkerPrefix)
	}
	return nil
}

// WaitTimeoutDuration returns WaitTimeout parsed, falling back to the default.
func (c *Config) WaitTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.WaitTimeout)
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(DefaultWaitTimeout)
	}
	return d
}

// ColorEnabled reports whether failure output should use ANSI colors.
func (c *Config) ColorEnabled() bool {
	return c.Color == nil || *c.Color
}

// Logger builds a text logger writing to w at the configured level.
// Debug overrides LogLevel.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level, _ := parseLevel(c.LogLevel)
	if c.Debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
