// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	gerrors "github.com/modhost/modhost/errors"
	"github.com/modhost/modhost/internal/tracing"
	"github.com/modhost/modhost/internal/validation"
	"github.com/modhost/modhost/log"
	"github.com/modhost/modhost/manager"
)

const (
	// EnvPrefix prefixes the environment variables overriding the configuration,
	// e.g. MODHOST_DOMAINSDIR or MODHOST_TRACING_ENABLED
	EnvPrefix = "MODHOST"

	// DefaultName is the host name used when none is configured
	DefaultName = "modhost"
	// DefaultSymbolExtension is the file suffix symbols are mapped onto
	DefaultSymbolExtension = ".sym"
	// DefaultWatchDebounce is the quiet period the watcher waits for
	DefaultWatchDebounce = 500 * time.Millisecond
)

// Config represents the host configuration
type Config struct {
	// Specifies the host name
	Name string `mapstructure:"name"`
	// Specifies the log level: debug, info, warn or error
	LogLevel string `mapstructure:"logLevel"`
	// Specifies the packages provided by the container. They are always
	// resolved from the container, never from an artifact.
	ContainerPackages []string `mapstructure:"containerPackages"`
	// Specifies the folder holding one sub folder per domain
	DomainsDir string `mapstructure:"domainsDir"`
	// Specifies the folder holding one sub folder per application
	AppsDir string `mapstructure:"appsDir"`
	// Specifies the extension registration files, read in order
	RegistrationFiles []string `mapstructure:"registrationFiles"`
	// Specifies the file suffix that maps a symbol onto a file under a resource root
	SymbolExtension string `mapstructure:"symbolExtension"`
	// Specifies the order extensions are disposed in: forward or reverse
	DisposeOrder string `mapstructure:"disposeOrder"`
	// Specifies whether artifact folders are watched for changes
	Watch bool `mapstructure:"watch"`
	// Specifies how long the watcher waits for changes to settle
	WatchDebounce time.Duration `mapstructure:"watchDebounce"`
	// Specifies the tracing settings
	Tracing tracing.Config `mapstructure:"tracing"`
}

// Option is the interface that applies a configuration option.
type Option interface {
	// Apply sets the Option value of a config.
	Apply(*Config)
}

var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(*Config)

// Apply applies the option
func (f OptionFunc) Apply(c *Config) {
	f(c)
}

// WithName sets the host name
func WithName(name string) Option {
	return OptionFunc(func(c *Config) { c.Name = name })
}

// WithLogLevel sets the log level
func WithLogLevel(level string) Option {
	return OptionFunc(func(c *Config) { c.LogLevel = level })
}

// WithContainerPackages sets the packages provided by the container
func WithContainerPackages(packages ...string) Option {
	return OptionFunc(func(c *Config) { c.ContainerPackages = append(c.ContainerPackages, packages...) })
}

// WithArtifactDirs sets the domains and applications folders
func WithArtifactDirs(domainsDir, appsDir string) Option {
	return OptionFunc(func(c *Config) {
		c.DomainsDir = domainsDir
		c.AppsDir = appsDir
	})
}

// WithRegistrationFiles sets the extension registration files
func WithRegistrationFiles(files ...string) Option {
	return OptionFunc(func(c *Config) { c.RegistrationFiles = append(c.RegistrationFiles, files...) })
}

// WithDisposeOrder sets the extension dispose order
func WithDisposeOrder(order manager.DisposeOrder) Option {
	return OptionFunc(func(c *Config) { c.DisposeOrder = order.String() })
}

// WithWatch enables the artifact folders watcher
func WithWatch(debounce time.Duration) Option {
	return OptionFunc(func(c *Config) {
		c.Watch = true
		c.WatchDebounce = debounce
	})
}

// WithTracing sets the tracing settings
func WithTracing(cfg tracing.Config) Option {
	return OptionFunc(func(c *Config) { c.Tracing = cfg })
}

// Default creates a Config with the default values, then applies the options
func Default(opts ...Option) *Config {
	config := &Config{
		Name:            DefaultName,
		LogLevel:        log.InfoLevel.String(),
		SymbolExtension: DefaultSymbolExtension,
		DisposeOrder:    manager.DisposeForward.String(),
		WatchDebounce:   DefaultWatchDebounce,
		Tracing:         tracing.DefaultConfig(),
	}
	for _, opt := range opts {
		opt.Apply(config)
	}
	return config
}

// Load reads the configuration from the YAML file at path, when set, and
// from MODHOST_ prefixed environment variables. Unset keys keep their
// default value. The loaded configuration is validated.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, gerrors.NewErrInvalidConfig(fmt.Errorf("read %s: %w", path, err))
		}
	}

	config := new(Config)
	if err := v.Unmarshal(config); err != nil {
		return nil, gerrors.NewErrInvalidConfig(err)
	}

	// relative folders are relative to the configuration file
	if path != "" {
		base := filepath.Dir(path)
		config.DomainsDir = resolvePath(base, config.DomainsDir)
		config.AppsDir = resolvePath(base, config.AppsDir)
		for i, file := range config.RegistrationFiles {
			config.RegistrationFiles[i] = resolvePath(base, file)
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the configuration and reports every problem found
func (c *Config) Validate() error {
	checks := validation.New(validation.AllErrors()).
		AddValidator(validation.NewNameValidator(c.Name, fmt.Errorf("invalid host name %q", c.Name))).
		AddValidator(validation.ValidatorFunc(func() error {
			_, err := log.ParseLevel(c.LogLevel)
			return err
		})).
		AddValidator(validation.ValidatorFunc(func() error {
			_, err := manager.ParseDisposeOrder(c.DisposeOrder)
			return err
		})).
		AddAssertion(c.SymbolExtension != "", "the symbol extension is required").
		AddAssertion(c.WatchDebounce >= 0, "the watch debounce cannot be negative").
		AddAssertion(!c.Watch || c.DomainsDir != "" || c.AppsDir != "", "watching requires a domains or an applications folder").
		AddAssertion(c.Tracing.SampleRate >= 0 && c.Tracing.SampleRate <= 1, "the trace sample rate must be within [0, 1]")

	for _, pkg := range c.ContainerPackages {
		checks.AddValidator(validation.NewPackageValidator(pkg))
	}

	if err := checks.Validate(); err != nil {
		return gerrors.NewErrInvalidConfig(err)
	}
	return nil
}

// Level returns the parsed log level. It falls back to info.
func (c *Config) Level() log.Level {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// Order returns the parsed dispose order. It falls back to forward.
func (c *Config) Order() manager.DisposeOrder {
	order, _ := manager.ParseDisposeOrder(c.DisposeOrder)
	return order
}

func setDefaults(v *viper.Viper, config *Config) {
	v.SetDefault("name", config.Name)
	v.SetDefault("logLevel", config.LogLevel)
	v.SetDefault("containerPackages", config.ContainerPackages)
	v.SetDefault("domainsDir", config.DomainsDir)
	v.SetDefault("appsDir", config.AppsDir)
	v.SetDefault("registrationFiles", config.RegistrationFiles)
	v.SetDefault("symbolExtension", config.SymbolExtension)
	v.SetDefault("disposeOrder", config.DisposeOrder)
	v.SetDefault("watch", config.Watch)
	v.SetDefault("watchDebounce", config.WatchDebounce)
	v.SetDefault("tracing.enabled", config.Tracing.Enabled)
	v.SetDefault("tracing.exporter", config.Tracing.Exporter)
	v.SetDefault("tracing.otlpEndpoint", config.Tracing.OTLPEndpoint)
	v.SetDefault("tracing.sampleRate", config.Tracing.SampleRate)
	v.SetDefault("tracing.serviceName", config.Tracing.ServiceName)
}

func resolvePath(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}
