package api

import "time"

// ServerConfig represents the management API configuration.
type ServerConfig struct {
	Addr              string        `help:"API server listen address" default:":3252" env:"JOYCORE_API_ADDR"`
	ConnectionTimeout time.Duration `kong:"-"`
	// Password protects the API. Filled from the key file by the daemon
	// command, never from flags.
	Password string `kong:"-"`
}
