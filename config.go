package specrunner

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/ethereum-optimism/infra/op-specrunner/flags"
	"github.com/ethereum-optimism/infra/op-specrunner/server"
	"github.com/ethereum/go-ethereum/log"
)

// Config holds the application configuration
type Config struct {
	HarnessURL     string          // URL of the harness page the browser is pointed at
	Bin            string          // Headless browser binary
	RunnerScript   string          // Runner script handed to the browser
	WorkDir        string          // Project root; rackup configs are probed here
	SpecDir        string          // Directory holding the suite sources
	Targets        []string        // Suite files to run; defaults to the whole spec directory
	Strategy       server.Strategy // Server strategy
	Port           int             // Port the harness server listens on
	ServerEnv      string          // Environment the rack server is started in
	ServerTimeout  time.Duration   // How long to wait for the harness server to come up
	Notify         bool            // Send desktop notifications for suite outcomes
	HideSuccess    bool            // Suppress output and notifications for passing specs
	MaxErrorNotify int             // Maximum number of per-spec failure notifications per suite
	RunInterval    time.Duration   // Interval between suite runs
	RunOnce        bool            // Indicates if the service should exit after one run
	LogDir         string          // Directory to store raw payloads and run summaries
	Log            log.Logger
}

// fileConfig mirrors the CLI flags for the optional YAML config file.
// Durations are strings in Go duration syntax (e.g. "30s").
type fileConfig struct {
	URL            string `yaml:"url"`
	Bin            string `yaml:"bin"`
	RunnerScript   string `yaml:"runner_script"`
	SpecDir        string `yaml:"spec_dir"`
	Server         string `yaml:"server"`
	Port           *int   `yaml:"port"`
	ServerEnv      string `yaml:"server_env"`
	ServerTimeout  string `yaml:"server_timeout"`
	Notify         *bool  `yaml:"notify"`
	HideSuccess    *bool  `yaml:"hide_success"`
	MaxErrorNotify *int   `yaml:"max_error_notify"`
	RunInterval    string `yaml:"run_interval"`
	LogDir         string `yaml:"logdir"`
}

func readFileConfig(path string) (fileConfig, error) {
	config := fileConfig{}
	data, err := os.ReadFile(path)
	if err != nil {
		return config, err
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, err
	}
	return config, nil
}

// NewConfig creates a new Config from cli context. Values resolve in order:
// explicit flag or env var, then config file, then flag default.
func NewConfig(ctx *cli.Context, log log.Logger) (*Config, error) {
	if err := flags.CheckRequired(ctx); err != nil {
		return nil, fmt.Errorf("missing required flags: %w", err)
	}

	fc := fileConfig{}
	if path := ctx.String(flags.ConfigFile.Name); path != "" {
		loaded, err := readFileConfig(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
		}
		fc = loaded
	}

	port := resolveInt(ctx, flags.Port.Name, fc.Port)
	url := resolveString(ctx, flags.HarnessURL.Name, fc.URL)
	if url == "" {
		url = fmt.Sprintf("http://localhost:%d/jasmine", port)
	}

	workDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to determine working directory: %w", err)
	}

	specDir := resolveString(ctx, flags.SpecDir.Name, fc.SpecDir)
	absSpecDir, err := filepath.Abs(specDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path for spec directory '%s': %w", specDir, err)
	}

	runnerScript := resolveString(ctx, flags.RunnerScript.Name, fc.RunnerScript)
	if runnerScript == "" {
		runnerScript, err = defaultRunnerScript()
		if err != nil {
			return nil, err
		}
	}
	runnerScript, err = filepath.Abs(runnerScript)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path for runner script '%s': %w", runnerScript, err)
	}

	serverTimeout, err := resolveDuration(ctx, flags.ServerTimeout.Name, fc.ServerTimeout)
	if err != nil {
		return nil, err
	}
	if serverTimeout <= 0 {
		serverTimeout = server.DefaultWaitTimeout
	}

	runInterval, err := resolveDuration(ctx, flags.RunInterval.Name, fc.RunInterval)
	if err != nil {
		return nil, err
	}
	runOnce := runInterval == 0

	// Get log directory, default to "logs" if not specified
	logDir := resolveString(ctx, flags.LogDir.Name, fc.LogDir)
	if logDir == "" {
		logDir = "logs"
	}
	logDir, err = filepath.Abs(logDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path for log directory '%s': %w", logDir, err)
	}

	maxErrorNotify := resolveInt(ctx, flags.MaxErrorNotify.Name, fc.MaxErrorNotify)
	if maxErrorNotify < 0 {
		maxErrorNotify = 0
	}

	// Positional arguments select individual suites; none means the whole
	// spec directory.
	targets := ctx.Args().Slice()
	if len(targets) == 0 {
		targets = []string{absSpecDir}
	}

	return &Config{
		HarnessURL:     url,
		Bin:            resolveString(ctx, flags.Bin.Name, fc.Bin),
		RunnerScript:   runnerScript,
		WorkDir:        workDir,
		SpecDir:        absSpecDir,
		Targets:        targets,
		Strategy:       server.ParseStrategy(resolveString(ctx, flags.Server.Name, fc.Server)),
		Port:           port,
		ServerEnv:      resolveString(ctx, flags.ServerEnv.Name, fc.ServerEnv),
		ServerTimeout:  serverTimeout,
		Notify:         resolveBool(ctx, flags.Notify.Name, fc.Notify),
		HideSuccess:    resolveBool(ctx, flags.HideSuccess.Name, fc.HideSuccess),
		MaxErrorNotify: maxErrorNotify,
		RunInterval:    runInterval,
		RunOnce:        runOnce,
		LogDir:         logDir,
		Log:            log,
	}, nil
}

func defaultRunnerScript() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to locate executable for default runner script: %w", err)
	}
	return filepath.Join(filepath.Dir(exe), "phantomjs", "run-suite.js"), nil
}

// File values only apply when the flag was not set explicitly; an explicit
// flag or env var always wins.
func resolveString(ctx *cli.Context, name, fileValue string) string {
	if !ctx.IsSet(name) && fileValue != "" {
		return fileValue
	}
	return ctx.String(name)
}

func resolveInt(ctx *cli.Context, name string, fileValue *int) int {
	if !ctx.IsSet(name) && fileValue != nil {
		return *fileValue
	}
	return ctx.Int(name)
}

func resolveBool(ctx *cli.Context, name string, fileValue *bool) bool {
	if !ctx.IsSet(name) && fileValue != nil {
		return *fileValue
	}
	return ctx.Bool(name)
}

func resolveDuration(ctx *cli.Context, name, fileValue string) (time.Duration, error) {
	if !ctx.IsSet(name) && fileValue != "" {
		d, err := time.ParseDuration(fileValue)
		if err != nil {
			return 0, fmt.Errorf("invalid duration '%s' for %s: %w", fileValue, name, err)
		}
		return d, nil
	}
	return ctx.Duration(name), nil
}
