// Package cmd defines the command-line flags shared by the blockdreamer
// binary, in the same style as the reference validator client's flag
// package: one exported cli.Flag value per flag, grouped here so
// cmd/blockdreamer/main.go stays a thin wiring layer.
package cmd

import "github.com/urfave/cli/v2"

var (
	// ConfigFileFlag is the required path to the TOML configuration file
	// (§6 "--config <path> (required)").
	ConfigFileFlag = &cli.StringFlag{
		Name:     "config",
		Usage:    "Path to the blockdreamer TOML configuration file",
		Required: true,
	}

	// GenesisStateTimeoutFlag bounds how long startup waits for the
	// canonical beacon node to report chain genesis before failing
	// (§6 "--genesis-state-timeout <seconds> (default 180)").
	GenesisStateTimeoutFlag = &cli.Uint64Flag{
		Name:  "genesis-state-timeout",
		Usage: "Seconds to wait for the beacon chain to report genesis before giving up",
		Value: 180,
	}

	// VerbosityFlag sets the logrus level.
	VerbosityFlag = &cli.StringFlag{
		Name:  "verbosity",
		Usage: "Logging verbosity (debug, info=default, warn, error, fatal, panic)",
		Value: "info",
	}

	// LogFormat selects the logrus formatter.
	LogFormat = &cli.StringFlag{
		Name:  "log-format",
		Usage: "Log format to use (text, json)",
		Value: "text",
	}

	// LogFileName, if set, mirrors log output to a file in addition to
	// stdout.
	LogFileName = &cli.StringFlag{
		Name:  "log-file",
		Usage: "Path to a log file; if set, logs are written to both stdout and this file",
	}

	// MonitoringHostFlag sets the bind host for the /metrics exporter.
	MonitoringHostFlag = &cli.StringFlag{
		Name:  "monitoring-host",
		Usage: "Host used to serve /metrics for Prometheus",
		Value: "127.0.0.1",
	}

	// MonitoringPortFlag sets the bind port for the /metrics exporter.
	MonitoringPortFlag = &cli.Uint64Flag{
		Name:  "monitoring-port",
		Usage: "Port used to serve /metrics for Prometheus",
		Value: 8081,
	}

	// DisableMonitoringFlag disables the /metrics exporter entirely.
	DisableMonitoringFlag = &cli.BoolFlag{
		Name:  "disable-monitoring",
		Usage: "Disable the /metrics exporter",
	}
)
