package flags

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	opservice "github.com/ethereum-optimism/optimism/op-service"
	oplog "github.com/ethereum-optimism/optimism/op-service/log"
	opmetrics "github.com/ethereum-optimism/optimism/op-service/metrics"
)

const EnvVarPrefix = "OP_SPECRUNNER"

var (
	HarnessURL = &cli.StringFlag{
		Name:    "url",
		Value:   "",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "URL"),
		Usage:   "URL of the harness page. Defaults to http://localhost:<port>/jasmine when unset.",
	}
	Bin = &cli.StringFlag{
		Name:    "bin",
		Value:   "phantomjs",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "BIN"),
		Usage:   "Path to the headless browser binary used to execute suites",
	}
	RunnerScript = &cli.StringFlag{
		Name:    "runner-script",
		Value:   "",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "RUNNER_SCRIPT"),
		Usage:   "Path to the runner script handed to the browser binary. Defaults to phantomjs/run-suite.js next to the executable.",
	}
	SpecDir = &cli.StringFlag{
		Name:    "spec-dir",
		Value:   "spec/javascripts",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "SPEC_DIR"),
		Usage:   "Directory holding the suite sources",
	}
	Server = &cli.StringFlag{
		Name:    "server",
		Value:   "auto",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "SERVER"),
		Usage:   "Server strategy: auto, thin, mongrel, webrick, jasmine-gem, none, or a custom task name",
	}
	Port = &cli.IntFlag{
		Name:    "port",
		Value:   8888,
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "PORT"),
		Usage:   "Port the harness server listens on",
	}
	ServerEnv = &cli.StringFlag{
		Name:    "server-env",
		Value:   "test",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "SERVER_ENV"),
		Usage:   "Environment the rack server is started in",
	}
	ServerTimeout = &cli.DurationFlag{
		Name:    "server-timeout",
		Value:   15 * time.Second,
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "SERVER_TIMEOUT"),
		Usage:   "How long to wait for the harness server to come up",
	}
	Notify = &cli.BoolFlag{
		Name:    "notify",
		Value:   true,
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "NOTIFY"),
		Usage:   "Send desktop notifications for suite outcomes",
	}
	HideSuccess = &cli.BoolFlag{
		Name:    "hide-success",
		Value:   false,
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "HIDE_SUCCESS"),
		Usage:   "Suppress output and notifications for passing specs",
	}
	MaxErrorNotify = &cli.IntFlag{
		Name:    "max-error-notify",
		Value:   3,
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "MAX_ERROR_NOTIFY"),
		Usage:   "Maximum number of per-spec failure notifications per suite",
	}
	RunInterval = &cli.DurationFlag{
		Name:    "run-interval",
		Value:   0,
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "RUN_INTERVAL"),
		Usage:   "Interval between suite runs (e.g. '30s', '5m'). Set to 0 or omit for run-once mode.",
	}
	LogDir = &cli.StringFlag{
		Name:    "logdir",
		Value:   "",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "LOGDIR"),
		Usage:   "Directory to store raw payloads and run summaries",
	}
	ConfigFile = &cli.StringFlag{
		Name:    "config",
		Value:   "",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "CONFIG"),
		Usage:   "Path to an optional YAML config file. Explicit flags take precedence over file values.",
	}
)

var requiredFlags = []cli.Flag{}

var optionalFlags = []cli.Flag{
	HarnessURL,
	Bin,
	RunnerScript,
	SpecDir,
	Server,
	Port,
	ServerEnv,
	ServerTimeout,
	Notify,
	HideSuccess,
	MaxErrorNotify,
	RunInterval,
	LogDir,
	ConfigFile,
}
var Flags []cli.Flag

func init() {
	optionalFlags = append(optionalFlags, oplog.CLIFlags(EnvVarPrefix)...)
	optionalFlags = append(optionalFlags, opmetrics.CLIFlags(EnvVarPrefix)...)

	Flags = append(requiredFlags, optionalFlags...)
}

func CheckRequired(ctx *cli.Context) error {
	for _, f := range requiredFlags {
		if !ctx.IsSet(f.Names()[0]) {
			return fmt.Errorf("flag %s is required", f.Names()[0])
		}
	}
	return nil
}
