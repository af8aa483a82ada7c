// Package server decides how the test harness gets exposed over HTTP and
// supervises the server process that does so.
package server

import (
	"os"
	"path/filepath"
)

// StrategyKind enumerates the fixed server strategies
type StrategyKind string

const (
	StrategyAuto       StrategyKind = "auto"
	StrategyThin       StrategyKind = "thin"
	StrategyMongrel    StrategyKind = "mongrel"
	StrategyWebrick    StrategyKind = "webrick"
	StrategyJasmineGem StrategyKind = "jasmine-gem"
	StrategyNone       StrategyKind = "none"
	StrategyCustom     StrategyKind = "custom"
)

// Strategy is the configured mechanism for exposing the harness over HTTP.
// Custom strategies carry the name of the task to run as the server.
type Strategy struct {
	Kind StrategyKind
	Task string
}

// ParseStrategy maps a configured strategy name onto a Strategy. Any name
// outside the fixed set selects a custom server task of that name.
func ParseStrategy(name string) Strategy {
	switch StrategyKind(name) {
	case StrategyAuto, StrategyThin, StrategyMongrel, StrategyWebrick, StrategyJasmineGem, StrategyNone:
		return Strategy{Kind: StrategyKind(name)}
	default:
		return Strategy{Kind: StrategyCustom, Task: name}
	}
}

func (s Strategy) String() string {
	if s.Kind == StrategyCustom {
		return s.Task
	}
	return string(s.Kind)
}

// ActionKind enumerates the concrete server-start decisions
type ActionKind string

const (
	NoAction   ActionKind = "none"
	RackAction ActionKind = "rack"
	TaskAction ActionKind = "task"
)

// Action is the concrete server-start decision produced by a Selector.
// Env and Variant apply to rack actions only; Task to task actions only.
// An empty Variant means the rack server picks its own handler.
type Action struct {
	Kind    ActionKind
	Port    int
	Env     string
	Variant string
	Task    string
}

const (
	rackupConfig  = "config.ru"
	harnessConfig = "jasmine.yml"

	// JasmineTask is the server task provided by the jasmine gem
	JasmineTask = "jasmine"
)

// Selector maps a strategy plus filesystem probes onto a start action.
// WorkDir is the project root probed for a rackup config; SpecDir is the
// spec directory (absolute, or relative to WorkDir) probed for the harness
// config.
type Selector struct {
	WorkDir string
	SpecDir string
}

// Decide resolves the start action for a strategy. Only the auto strategy
// probes the filesystem.
func (s Selector) Decide(strategy Strategy, port int, env string) Action {
	switch strategy.Kind {
	case StrategyAuto:
		return s.detect(port, env)
	case StrategyThin, StrategyMongrel, StrategyWebrick:
		return Action{Kind: RackAction, Port: port, Env: env, Variant: string(strategy.Kind)}
	case StrategyJasmineGem:
		return Action{Kind: TaskAction, Port: port, Task: JasmineTask}
	case StrategyNone:
		return Action{Kind: NoAction}
	default:
		return Action{Kind: TaskAction, Port: port, Task: strategy.Task}
	}
}

// detect probes for a rackup config first; the harness config is only
// consulted when no rackup config exists.
func (s Selector) detect(port int, env string) Action {
	if fileExists(filepath.Join(s.WorkDir, rackupConfig)) {
		return Action{Kind: RackAction, Port: port, Env: env}
	}
	if fileExists(filepath.Join(s.specDir(), "support", harnessConfig)) {
		return Action{Kind: TaskAction, Port: port, Task: JasmineTask}
	}
	return Action{Kind: NoAction}
}

func (s Selector) specDir() string {
	if filepath.IsAbs(s.SpecDir) {
		return s.SpecDir
	}
	return filepath.Join(s.WorkDir, s.SpecDir)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
