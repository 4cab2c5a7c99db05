package api

import (
	"time"

	"github.com/livepaste/livepaste/internal/bytesize"
)

// Config holds API HTTP server configuration.
type Config struct {
	// Host is the listen address; empty means all interfaces.
	Host string `mapstructure:"host" yaml:"host"`

	// Port is the HTTP port. Bound to PORT.
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`

	// AssetPath points at a directory holding the static client bundle.
	// Empty serves the built-in placeholder page.
	AssetPath string `mapstructure:"asset_path" yaml:"asset_path"`

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out response writes.
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`

	// IdleTimeout is the maximum time to wait for the next request on a
	// kept-alive connection.
	IdleTimeout time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`

	// MaxBodySize caps request body size. Accepts human-readable values
	// like "10Mi" or "5MB". Sync payloads larger than this must use the
	// chunked session protocol.
	MaxBodySize bytesize.ByteSize `mapstructure:"max_body_size" yaml:"max_body_size"`
}

// ApplyDefaults fills in missing configuration with default values.
func (c *Config) ApplyDefaults() {
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 5 * time.Second
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 30 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 60 * time.Second
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = 120 * time.Second
	}
	if c.MaxBodySize == 0 {
		c.MaxBodySize = 10 * bytesize.MiB
	}
}
