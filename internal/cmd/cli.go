// Package cmd wires the kong command tree: the daemon, the ctl client
// commands and config scaffolding.
package cmd

// LogConfig selects log verbosity and optional file sinks.
type LogConfig struct {
	Level   string `help:"Log level (trace, debug, info, warn, error)" enum:"trace,debug,info,warn,error" default:"info" env:"JOYCORE_LOG_LEVEL"`
	File    string `help:"Write logs to this file in addition to the console" env:"JOYCORE_LOG_FILE"`
	RawFile string `help:"Write raw transport byte traces to this file" env:"JOYCORE_RAW_LOG_FILE"`
}

// CLI is the root of the command tree.
type CLI struct {
	Log    LogConfig `embed:"" prefix:"log."`
	Config string    `help:"Path to a config file (json, yaml or toml)" env:"JOYCORE_CONFIG"`

	Daemon        Daemon        `cmd:"" help:"Run the controller daemon"`
	Ctl           Ctl           `cmd:"" help:"Talk to a running daemon"`
	ConfigCommand ConfigCommand `cmd:"" name:"config" help:"Configuration file utilities"`
}
