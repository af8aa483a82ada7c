package runner

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExecutor(t *testing.T, opts Options, reporter *recordingReporter) SuiteExecutor {
	t.Helper()
	e, err := NewSuiteExecutor(opts, reporter, testLogger())
	require.NoError(t, err)
	return e
}

func TestSuiteExecutorRun(t *testing.T) {
	target := writeSpecFile(t, "cart_spec.js", "describe(\"Cart\", function() {});\n")
	reporter := &recordingReporter{}
	e := newTestExecutor(t, Options{
		HarnessURL:   "http://localhost:8888/jasmine",
		Bin:          "echo",
		RunnerScript: "run-suite.js",
		SpecDir:      "spec/javascripts",
	}, reporter)

	raw, err := e.Run(context.Background(), target)
	require.NoError(t, err)

	// echo prints its arguments, standing in for the browser payload
	out, err := io.ReadAll(raw)
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	assert.Equal(t, "run-suite.js http://localhost:8888/jasmine?spec=Cart\n", string(out))
	require.Len(t, reporter.lines, 1)
	assert.Equal(t, "info: Running suite at http://localhost:8888/jasmine?spec=Cart", reporter.lines[0])
}

func TestSuiteExecutorRunSentinelTarget(t *testing.T) {
	reporter := &recordingReporter{}
	e := newTestExecutor(t, Options{
		HarnessURL:   "http://localhost:8888/jasmine",
		Bin:          "echo",
		RunnerScript: "run-suite.js",
		SpecDir:      "spec/javascripts",
	}, reporter)

	raw, err := e.Run(context.Background(), "spec/javascripts")
	require.NoError(t, err)
	out, err := io.ReadAll(raw)
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	assert.Equal(t, "run-suite.js http://localhost:8888/jasmine\n", string(out))
}

func TestSuiteExecutorLaunchFailure(t *testing.T) {
	reporter := &recordingReporter{}
	e := newTestExecutor(t, Options{
		HarnessURL:   "http://localhost:8888/jasmine",
		Bin:          filepath.Join(t.TempDir(), "no-such-browser"),
		RunnerScript: "run-suite.js",
		SpecDir:      "spec/javascripts",
	}, reporter)

	_, err := e.Run(context.Background(), "spec/javascripts")
	require.Error(t, err)

	var launchErr *LaunchError
	require.ErrorAs(t, err, &launchErr)
	assert.Contains(t, launchErr.Bin, "no-such-browser")
}

func TestRawOutputCloseIsIdempotent(t *testing.T) {
	e := newTestExecutor(t, Options{
		HarnessURL:   "http://localhost:8888/jasmine",
		Bin:          "echo",
		RunnerScript: "run-suite.js",
		SpecDir:      "spec/javascripts",
	}, &recordingReporter{})

	raw, err := e.Run(context.Background(), "spec/javascripts")
	require.NoError(t, err)
	_, err = io.ReadAll(raw)
	require.NoError(t, err)

	first := raw.Close()
	second := raw.Close()
	assert.NoError(t, first)
	assert.Equal(t, first, second)
}

func fakeBrowserBin(t *testing.T, versionOutput string) string {
	t.Helper()
	bin := filepath.Join(t.TempDir(), "fake-browser")
	script := "#!/bin/sh\necho \"" + versionOutput + "\"\n"
	require.NoError(t, os.WriteFile(bin, []byte(script), 0o755))
	return bin
}

func TestSuiteExecutorVerifyBinary(t *testing.T) {
	tests := []struct {
		name          string
		versionOutput string
		expectedErr   string
	}{
		{
			name:          "recent version",
			versionOutput: "2.1.1",
		},
		{
			name:          "minimum version",
			versionOutput: "1.3.0",
		},
		{
			name:          "two segment version",
			versionOutput: "2.5",
		},
		{
			name:          "version embedded in banner",
			versionOutput: "PhantomJS 1.9.8 (development)",
		},
		{
			name:          "too old",
			versionOutput: "1.2.0",
			expectedErr:   "below the minimum supported",
		},
		{
			name:          "unparseable output is tolerated",
			versionOutput: "no version here",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestExecutor(t, Options{
				HarnessURL:   "http://localhost:8888/jasmine",
				Bin:          fakeBrowserBin(t, tt.versionOutput),
				RunnerScript: "run-suite.js",
				SpecDir:      "spec/javascripts",
			}, &recordingReporter{})

			err := e.VerifyBinary(context.Background())
			if tt.expectedErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedErr)
			}
		})
	}
}

func TestSuiteExecutorVerifyBinaryMissing(t *testing.T) {
	e := newTestExecutor(t, Options{
		HarnessURL:   "http://localhost:8888/jasmine",
		Bin:          filepath.Join(t.TempDir(), "no-such-browser"),
		RunnerScript: "run-suite.js",
		SpecDir:      "spec/javascripts",
	}, &recordingReporter{})

	var launchErr *LaunchError
	require.ErrorAs(t, e.VerifyBinary(context.Background()), &launchErr)
}

func TestNewSuiteExecutorValidation(t *testing.T) {
	_, err := NewSuiteExecutor(Options{Bin: "echo"}, &recordingReporter{}, testLogger())
	assert.ErrorContains(t, err, "harness URL")

	_, err = NewSuiteExecutor(Options{HarnessURL: "http://localhost:8888/"}, &recordingReporter{}, testLogger())
	assert.ErrorContains(t, err, "browser binary")

	_, err = NewSuiteExecutor(Options{HarnessURL: "http://localhost:8888/", Bin: "echo"}, nil, testLogger())
	assert.ErrorContains(t, err, "reporter")
}
