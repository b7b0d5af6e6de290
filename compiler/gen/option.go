package gen

import (
	"go/token"
	"path/filepath"
	"runtime"
)

// DefaultRuntime is the import path of the packages generated code uses.
const DefaultRuntime = "github.com/syssam/strata"

// DefaultHeader is written at the top of every generated file.
const DefaultHeader = "Code generated by stratagen. DO NOT EDIT."

// Config holds the code generation settings.
type Config struct {
	// Target is the output directory.
	Target string
	// Package is the name of the generated package. Defaults to the
	// schema's package, then to the base name of Target.
	Package string
	// Header is the comment written at the top of each file.
	Header string
	// Runtime is the import path of the strata module.
	Runtime string
	// Workers bounds the number of files rendered in parallel.
	Workers int
}

// Option configures code generation.
type Option func(*Config) error

// WithTarget sets the output directory.
func WithTarget(dir string) Option {
	return func(c *Config) error {
		if dir == "" {
			return NewConfigError("Target", nil, "target directory cannot be empty")
		}
		c.Target = dir
		return nil
	}
}

// WithPackage sets the name of the generated package.
func WithPackage(name string) Option {
	return func(c *Config) error {
		if !token.IsIdentifier(name) {
			return NewConfigError("Package", name, "not a valid package name")
		}
		c.Package = name
		return nil
	}
}

// WithHeader sets the file header comment.
func WithHeader(header string) Option {
	return func(c *Config) error {
		c.Header = header
		return nil
	}
}

// WithRuntime sets the import path of the strata module, for forks.
func WithRuntime(path string) Option {
	return func(c *Config) error {
		if path == "" {
			return NewConfigError("Runtime", nil, "runtime import path cannot be empty")
		}
		c.Runtime = path
		return nil
	}
}

// WithWorkers sets the number of parallel workers.
func WithWorkers(n int) Option {
	return func(c *Config) error {
		if n <= 0 {
			return NewConfigError("Workers", n, "must be positive")
		}
		c.Workers = n
		return nil
	}
}

// NewConfig applies opts over the defaults.
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{
		Header:  DefaultHeader,
		Runtime: DefaultRuntime,
		Workers: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.Target == "" {
		return nil, NewConfigError("Target", nil, "target directory is required")
	}
	return c, nil
}

// pkg resolves the name of the generated package.
func (c *Config) pkg(schemaPkg string) string {
	switch {
	case c.Package != "":
		return c.Package
	case schemaPkg != "":
		return schemaPkg
	}
	return filepath.Base(filepath.Clean(c.Target))
}
