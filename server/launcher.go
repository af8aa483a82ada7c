package server

import (
	"fmt"
	"os/exec"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/log"
)

const (
	// DefaultRackupBin starts rack servers
	DefaultRackupBin = "rackup"
	// DefaultRakeBin runs server tasks
	DefaultRakeBin = "rake"

	stopGrace = 5 * time.Second
)

// Config holds configuration for creating a new launcher
type Config struct {
	WorkDir   string
	RackupBin string
	RakeBin   string
	Log       log.Logger
}

// Launcher starts and stops the harness server process. The process runs
// detached in its own process group; readiness is the caller's concern via
// WaitForServer. At most one server process is managed at a time.
type Launcher struct {
	workDir   string
	rackupBin string
	rakeBin   string
	log       log.Logger

	mu   sync.Mutex
	cmd  *exec.Cmd
	done chan struct{}
}

// NewLauncher creates a new launcher instance
func NewLauncher(cfg Config) *Launcher {
	if cfg.RackupBin == "" {
		cfg.RackupBin = DefaultRackupBin
	}
	if cfg.RakeBin == "" {
		cfg.RakeBin = DefaultRakeBin
	}
	if cfg.Log == nil {
		cfg.Log = log.New()
	}
	return &Launcher{
		workDir:   cfg.WorkDir,
		rackupBin: cfg.RackupBin,
		rakeBin:   cfg.RakeBin,
		log:       cfg.Log,
	}
}

// Launch starts the server process for the given action. NoAction is a
// no-op. The spawned process's output is discarded and its exit is reaped
// in the background; spawn failures are returned to the caller.
func (l *Launcher) Launch(action Action) error {
	if action.Kind == NoAction {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cmd != nil {
		return fmt.Errorf("harness server already running (pid %d)", l.cmd.Process.Pid)
	}

	var cmd *exec.Cmd
	switch action.Kind {
	case RackAction:
		args := []string{"-E", action.Env, "-p", strconv.Itoa(action.Port)}
		if action.Variant != "" {
			args = append(args, "-s", action.Variant)
		}
		cmd = exec.Command(l.rackupBin, args...)
		l.log.Info("Starting rack harness server", "bin", l.rackupBin, "port", action.Port, "env", action.Env, "variant", action.Variant)
	case TaskAction:
		cmd = exec.Command(l.rakeBin, action.Task, fmt.Sprintf("JASMINE_PORT=%d", action.Port))
		l.log.Info("Starting harness server task", "bin", l.rakeBin, "task", action.Task, "port", action.Port)
	default:
		return fmt.Errorf("unknown server action: %s", action.Kind)
	}

	cmd.Dir = l.workDir
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting harness server: %w", err)
	}

	done := make(chan struct{})
	go func() {
		err := cmd.Wait()
		l.log.Debug("Harness server exited", "err", err)
		close(done)
	}()

	l.cmd = cmd
	l.done = done
	return nil
}

// Running reports whether a server process is currently managed.
func (l *Launcher) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cmd != nil
}

// Stop terminates the managed server process group, escalating to SIGKILL
// after a grace period. Safe to call multiple times and without a prior
// Launch.
func (l *Launcher) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cmd == nil || l.cmd.Process == nil {
		return
	}

	pid := l.cmd.Process.Pid
	l.log.Info("Stopping harness server", "pid", pid)
	if err := syscall.Kill(-pid, syscall.SIGTERM); err != nil {
		l.log.Debug("Failed to signal harness server group", "pid", pid, "err", err)
		_ = l.cmd.Process.Kill()
	}

	select {
	case <-l.done:
	case <-time.After(stopGrace):
		l.log.Warn("Harness server did not exit, killing", "pid", pid)
		_ = syscall.Kill(-pid, syscall.SIGKILL)
		<-l.done
	}

	l.cmd = nil
	l.done = nil
}
