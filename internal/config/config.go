// Package config loads the YAML configuration of the pdfverify command.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	pdfverify "github.com/RichardBray/pdf-verify"
	"gopkg.in/yaml.v3"
)

// ErrConfigurationError is wrapped by every ConfigError.
var ErrConfigurationError = errors.New("configuration error")

// ConfigError represents a configuration error with context.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config error in '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("config error: %s", e.Message)
}

func (e *ConfigError) Unwrap() error {
	return ErrConfigurationError
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{Field: field, Message: message}
}

// VerifyConfig controls the verification pipeline.
type VerifyConfig struct {
	// StrictByteRange requires the signature to cover the whole file.
	StrictByteRange bool `yaml:"strict-byte-range"`

	// AllowedDigests narrows the digest algorithms accepted. Empty means all.
	AllowedDigests []string `yaml:"allowed-digests"`

	// Details reads the signature dictionary for field, reason and location.
	Details bool `yaml:"details"`

	// Workers is the number of files verified in parallel. 0 means one per CPU.
	Workers int `yaml:"workers"`

	// Password opens encrypted files when reading details.
	Password string `yaml:"password"`
}

// OutputConfig controls how results are printed.
type OutputConfig struct {
	// Format is text or json.
	Format string `yaml:"format"`
}

// LoggingConfig controls the soft failure log.
type LoggingConfig struct {
	Verbose bool `yaml:"verbose"`
}

// Config is the complete configuration file.
type Config struct {
	Verify  VerifyConfig  `yaml:"verify"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// SetDefaults fills unset values.
func (c *Config) SetDefaults() {
	if c.Output.Format == "" {
		c.Output.Format = "text"
	}
}

// Validate checks values that yaml cannot.
func (c *Config) Validate() error {
	if c.Verify.Workers < 0 {
		return NewConfigError("verify.workers", "must not be negative")
	}
	if _, err := pdfverify.DefaultResolver.Restrict(c.Verify.AllowedDigests...); err != nil {
		return NewConfigError("verify.allowed-digests", err.Error())
	}
	switch c.Output.Format {
	case "text", "json":
	default:
		return NewConfigError("output.format", fmt.Sprintf("unknown format %q", c.Output.Format))
	}

	return nil
}

// Default returns the configuration used without a file.
func Default() *Config {
	c := &Config{}
	c.SetDefaults()

	return c
}

// Load reads and validates a configuration file.
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes and validates configuration data. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	c := &Config{}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	c.SetDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

// Options converts the configuration into verifier options.
func (c *Config) Options() ([]pdfverify.Option, error) {
	var opts []pdfverify.Option

	if c.Verify.StrictByteRange {
		opts = append(opts, pdfverify.WithStrictByteRange())
	}
	if c.Verify.Details {
		opts = append(opts, pdfverify.WithDetails())
	}
	if c.Verify.Password != "" {
		opts = append(opts, pdfverify.WithPassword(c.Verify.Password))
	}
	if len(c.Verify.AllowedDigests) > 0 {
		resolver, err := pdfverify.DefaultResolver.Restrict(c.Verify.AllowedDigests...)
		if err != nil {
			return nil, NewConfigError("verify.allowed-digests", err.Error())
		}
		opts = append(opts, pdfverify.WithResolver(resolver))
	}

	if c.Logging.Verbose {
		opts = append(opts, pdfverify.WithLogger(log.New(os.Stderr, "pdfverify: ", log.LstdFlags)))
	} else {
		opts = append(opts, pdfverify.WithLogger(nil))
	}

	return opts, nil
}
