// Package config holds server configuration, loaded from the environment.
package config

import (
	"github.com/kelseyhightower/envconfig"
)

// ServerConfig holds chat server configuration.
type ServerConfig struct {
	// Addr is the listen address for the HTTP/WebSocket server.
	Addr string `envconfig:"ROOMCAST_ADDR" default:":5000"`
	// MaxConnections caps concurrently registered sessions.
	MaxConnections int `envconfig:"ROOMCAST_MAX_CONNECTIONS" default:"1000"`
	// ReadBufferSize and WriteBufferSize size the WebSocket upgrader
	// buffers, in bytes.
	ReadBufferSize  int `envconfig:"ROOMCAST_READ_BUFFER" default:"1024"`
	WriteBufferSize int `envconfig:"ROOMCAST_WRITE_BUFFER" default:"1024"`
	// Bridge enables the Redis cross-instance event relay. When enabled
	// but Redis is unreachable, the server runs standalone.
	Bridge bool `envconfig:"ROOMCAST_BRIDGE" default:"false"`
}

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Addr:            ":5000",
		MaxConnections:  1000,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
}

// Load reads configuration from the environment, falling back to
// defaults for unset variables.
func Load() (*ServerConfig, error) {
	var cfg ServerConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
