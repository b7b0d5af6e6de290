package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/syssam/strata"
	"github.com/syssam/strata/dialect"
	"github.com/syssam/strata/schema"
)

// LogHook receives the debug rendering of every statement before it is
// executed.
type LogHook func(ctx context.Context, debugSQL string)

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger of the engine. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithLogHook sets a hook called with the debug SQL before execution.
func WithLogHook(hook LogHook) Option {
	return func(e *Engine) { e.hook = hook }
}

// WithPretty enables line breaks and indentation in generated statements.
func WithPretty(pretty bool) Option {
	return func(e *Engine) { e.pretty = pretty }
}

// WithCommandTimeout bounds every call that does not set its own timeout.
func WithCommandTimeout(d time.Duration) Option {
	return func(e *Engine) { e.timeout = d }
}

// WithSlowThreshold wraps the driver with statistics collection and logs
// statements slower than d at warn level.
func WithSlowThreshold(d time.Duration) Option {
	return func(e *Engine) { e.slow = d }
}

// WithRegistry sets the registry entity descriptors are resolved from.
func WithRegistry(r *schema.Registry) Option {
	return func(e *Engine) { e.registry = r }
}

// WithDialect overrides the dialect reported by the driver.
func WithDialect(name string) Option {
	return func(e *Engine) { e.dialectName = name }
}

// WithClock sets the time source used by soft deletes.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// Config is the file representation of the engine settings.
//
//	dialect: postgres
//	pretty: true
//	command_timeout: 5s
//	slow_threshold: 200ms
//	log_level: debug
type Config struct {
	Dialect        string        `yaml:"dialect"`
	Pretty         bool          `yaml:"pretty"`
	CommandTimeout time.Duration `yaml:"command_timeout"`
	SlowThreshold  time.Duration `yaml:"slow_threshold"`
	LogLevel       string        `yaml:"log_level"`
}

// LoadConfig reads a YAML configuration file.
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, strata.WrapConfigError(path, err, "open config")
	}
	defer f.Close()
	return ParseConfig(f)
}

// ParseConfig decodes and validates a YAML configuration.
func ParseConfig(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, strata.WrapConfigError("", err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	if c.Dialect != "" {
		if _, err := dialect.Open(c.Dialect); err != nil {
			return strata.WrapConfigError("dialect", err, "unknown dialect %q", c.Dialect)
		}
	}
	if c.CommandTimeout < 0 {
		return strata.NewConfigError("command_timeout", "must not be negative")
	}
	if c.SlowThreshold < 0 {
		return strata.NewConfigError("slow_threshold", "must not be negative")
	}
	if _, err := c.level(); err != nil {
		return err
	}
	return nil
}

func (c *Config) level() (slog.Level, error) {
	var l slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return l, strata.WrapConfigError("log_level", err, "invalid level %q", c.LogLevel)
	}
	return l, nil
}

// Options converts the configuration into engine options. Log records are
// written as text to w when a log level is configured.
func (c *Config) Options(w io.Writer) []Option {
	opts := []Option{
		WithPretty(c.Pretty),
		WithCommandTimeout(c.CommandTimeout),
		WithSlowThreshold(c.SlowThreshold),
	}
	if c.Dialect != "" {
		opts = append(opts, WithDialect(c.Dialect))
	}
	if lvl, err := c.level(); err == nil && c.LogLevel != "" {
		opts = append(opts, WithLogger(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))))
	}
	return opts
}

// String implements fmt.Stringer.
func (c *Config) String() string {
	return fmt.Sprintf("dialect=%s pretty=%t command_timeout=%s slow_threshold=%s log_level=%s",
		c.Dialect, c.Pretty, c.CommandTimeout, c.SlowThreshold, c.LogLevel)
}
