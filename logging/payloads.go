// Package logging persists the raw result payloads of a run for post-run
// diagnosis.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/acarl005/stripansi"
	"github.com/ethereum-optimism/infra/op-specrunner/types"
)

// RunDirectoryPrefix is the standardized prefix for run directories
const RunDirectoryPrefix = "specrun-"

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// PayloadStore writes each target's raw result payload plus a run summary
// under a per-run directory. All methods are safe on a nil receiver, which
// disables persistence; payload storage must never fail a run, so callers
// log and continue on error.
type PayloadStore struct {
	runID string
	dir   string
	mu    sync.Mutex
}

// NewPayloadStore creates the per-run directory <baseDir>/specrun-<runID>.
func NewPayloadStore(baseDir, runID string) (*PayloadStore, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("baseDir cannot be empty")
	}
	if runID == "" {
		return nil, fmt.Errorf("runID cannot be empty")
	}
	dir := filepath.Join(baseDir, RunDirectoryPrefix+runID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create run directory %s: %w", dir, err)
	}
	return &PayloadStore{runID: runID, dir: dir}, nil
}

// GetRunID returns the run ID this store was created for.
func (s *PayloadStore) GetRunID() string {
	if s == nil {
		return ""
	}
	return s.runID
}

// Dir returns the per-run directory.
func (s *PayloadStore) Dir() string {
	if s == nil {
		return ""
	}
	return s.dir
}

// Store writes one target's raw payload as <sanitized-target>.json,
// stripped of ANSI escapes.
func (s *PayloadStore) Store(target string, payload []byte) error {
	if s == nil || s.dir == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, sanitizeFilename(target)+".json")
	if err := os.WriteFile(path, []byte(stripansi.Strip(string(payload))), 0o644); err != nil {
		return fmt.Errorf("failed to store payload for %s: %w", target, err)
	}
	return nil
}

// WriteSummary writes summary.log with one line per collected result and a
// trailing run total.
func (s *PayloadStore) WriteSummary(report *types.RunReport) error {
	if s == nil || s.dir == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var b strings.Builder
	for _, result := range report.Results {
		name := result.File
		if name == "" {
			name = "(system error: " + result.Error + ")"
		}
		fmt.Fprintf(&b, "%-5s %s: %d specs, %d failures in %.3fs\n",
			result.Status(), name, result.Stats.Specs, result.Stats.Failures, result.Stats.Time)
	}
	fmt.Fprintf(&b, "total %s: %d specs, %d failures in %s\n",
		report.Status(), report.Stats.Specs, report.Stats.Failures, report.Duration)

	path := filepath.Join(s.dir, "summary.log")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write run summary: %w", err)
	}
	return nil
}

// sanitizeFilename flattens a target path into a single safe file name.
func sanitizeFilename(target string) string {
	name := unsafeFilenameChars.ReplaceAllString(target, "_")
	name = strings.Trim(name, "_")
	if name == "" {
		return "payload"
	}
	return name
}
