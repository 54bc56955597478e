// Package config holds the server settings. Values are fixed at startup;
// there are no flags, environment variables or config files.
package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"
)

const (
	DefaultPort            = 8000
	DefaultRoot            = "."
	DefaultShutdownTimeout = 5 * time.Second
)

var (
	ErrInvalidPort = errors.New("invalid port")
	ErrEmptyRoot   = errors.New("root directory must not be empty")
)

type Config struct {
	Host string // empty binds all interfaces
	Port int
	Root string

	// Overrides take precedence over the builtin extension table.
	Overrides map[string]string

	Compress        bool // gzip responses when the client accepts it
	ETags           bool // content-hash ETags for conditional requests
	ShutdownTimeout time.Duration
}

// Default returns the configuration the server always runs with.
func Default() *Config {
	return &Config{
		Host: "",
		Port: DefaultPort,
		Root: DefaultRoot,
		Overrides: map[string]string{
			".wasm": "application/wasm",
		},
		Compress:        true,
		ETags:           true,
		ShutdownTimeout: DefaultShutdownTimeout,
	}
}

// Addr returns the listen address in host:port form.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPort, c.Port)
	}
	if c.Root == "" {
		return ErrEmptyRoot
	}
	if c.ShutdownTimeout < 0 {
		return fmt.Errorf("negative shutdown timeout: %v", c.ShutdownTimeout)
	}
	return nil
}
