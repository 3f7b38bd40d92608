package pathkit

import (
	"fmt"

	"github.com/gobeaver/beaver-kit/config"
	"github.com/sirupsen/logrus"
)

type Config struct {
	// Parsing rules: native, posix or windows
	Platform         string `env:"PATHKIT_PLATFORM,default:native"`
	Separator        string `env:"PATHKIT_SEPARATOR"` // Extra input separator besides "/"
	KeepTrailingDots bool   `env:"PATHKIT_KEEP_TRAILING_DOTS,default:false"`

	// Collaborator driver to use (local, memory, gcs)
	Driver   string `env:"PATHKIT_DRIVER,default:local"`
	ReadOnly bool   `env:"PATHKIT_READ_ONLY,default:false"` // Reject writes through the service

	// Local driver configuration
	LocalRoot string `env:"PATHKIT_LOCAL_ROOT,default:."`

	// GCS (Google Cloud Storage) driver configuration
	GCSBucket          string `env:"PATHKIT_GCS_BUCKET"`
	GCSPrefix          string `env:"PATHKIT_GCS_PREFIX"`
	GCSCredentialsFile string `env:"PATHKIT_GCS_CREDENTIALS_FILE"` // Path to service account JSON

	// Log level for collaborator operations (panic ... trace)
	LogLevel string `env:"PATHKIT_LOG_LEVEL,default:info"`
}

// GetConfig returns config loaded from environment
func GetConfig() (*Config, error) {
	cfg := &Config{}
	if err := config.Load(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseOptions converts the parsing settings into parser options.
func (c *Config) ParseOptions() ([]ParseOption, error) {
	platform, err := ParsePlatform(c.Platform)
	if err != nil {
		return nil, err
	}
	opts := []ParseOption{WithPlatform(platform)}
	switch len(c.Separator) {
	case 0:
	case 1:
		opts = append(opts, WithSeparator(c.Separator[0]))
	default:
		return nil, fmt.Errorf("separator must be a single character, got %q", c.Separator)
	}
	if c.KeepTrailingDots {
		opts = append(opts, KeepTrailingDots())
	}
	return opts, nil
}

// Parser returns a parser configured by c.
func (c *Config) Parser() (*PathParser, error) {
	opts, err := c.ParseOptions()
	if err != nil {
		return nil, err
	}
	return NewParser(opts...), nil
}

// Level returns the configured log level, defaulting to info when unset.
func (c *Config) Level() (logrus.Level, error) {
	if c.LogLevel == "" {
		return logrus.InfoLevel, nil
	}
	return logrus.ParseLevel(c.LogLevel)
}
