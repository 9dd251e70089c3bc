package config

import (
	"time"

	"github.com/peteraglen/restconsumer"
)

// AppConfig represents the restcall configuration file.
type AppConfig struct {
	Endpoint   string                   `yaml:"endpoint"`
	JSONBody   bool                     `yaml:"json_body"`
	Timeout    time.Duration            `yaml:"timeout"`
	Headers    map[string]string        `yaml:"headers"`
	Retry      RetryConfig              `yaml:"retry"`
	Tokens     map[string]string        `yaml:"tokens"`
	Logging    LoggingConfig            `yaml:"logging"`
	Descriptor string                   `yaml:"descriptor"` // path to a descriptor file, used when api is empty
	API        *restconsumer.Descriptor `yaml:"api"`
}

// RetryConfig holds the transport retry settings.
type RetryConfig struct {
	MaxAttempts    int           `yaml:"max_attempts"`
	Delay          time.Duration `yaml:"delay"`
	ConnectionErrs bool          `yaml:"connection_errors"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// TransportOptions converts the file settings into transport options.
func (c *AppConfig) TransportOptions() []restconsumer.Option {
	opts := []restconsumer.Option{
		restconsumer.WithMaxAttempts(c.Retry.MaxAttempts),
		restconsumer.WithRetryDelay(c.Retry.Delay),
	}

	if c.JSONBody {
		opts = append(opts, restconsumer.WithJSONBody())
	}

	if c.Timeout > 0 {
		opts = append(opts, restconsumer.WithTimeout(c.Timeout))
	}

	if c.Retry.ConnectionErrs {
		opts = append(opts, restconsumer.WithRetryOnConnectionErrors())
	}

	for header, value := range c.Headers {
		opts = append(opts, restconsumer.WithRequestHeader(header, value))
	}

	return opts
}
