package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/log"
)

const (
	// DefaultWaitTimeout bounds the whole readiness wait
	DefaultWaitTimeout = 15 * time.Second
	// DefaultWaitInterval spaces consecutive probes
	DefaultWaitInterval = 500 * time.Millisecond
)

// ServerUnreachableError indicates the harness server never answered the
// readiness probe before the timeout lapsed. It is fatal to a run: no suite
// executes without a reachable harness.
type ServerUnreachableError struct {
	Port    int
	Timeout time.Duration
}

func (e *ServerUnreachableError) Error() string {
	return fmt.Sprintf("harness server on port %d unreachable after %s", e.Port, e.Timeout)
}

// WaitForServer polls the harness root URL until any HTTP answer arrives or
// the timeout lapses. Non-positive timeout and interval select the
// defaults; a nil client gets a probe-scoped timeout.
func WaitForServer(ctx context.Context, client *http.Client, port int, timeout, interval time.Duration) error {
	if timeout <= 0 {
		timeout = DefaultWaitTimeout
	}
	if interval <= 0 {
		interval = DefaultWaitInterval
	}
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}

	url := fmt.Sprintf("http://localhost:%d/", port)
	deadline := time.Now().Add(timeout)

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("building probe request: %w", err)
		}
		up, reason := doHTTPProbe(req, client)
		if up {
			log.Debug("Harness server answered", "port", port)
			return nil
		}
		log.Debug("Harness server not ready", "port", port, "reason", reason)

		if time.Now().After(deadline) {
			return &ServerUnreachableError{Port: port, Timeout: timeout}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}

// doHTTPProbe reports whether the server answered the request. Any status
// below 500 counts as up: the harness page itself may 404 on / while still
// serving the suite assets.
func doHTTPProbe(req *http.Request, client *http.Client) (bool, string) {
	res, err := client.Do(req)
	if err != nil {
		// Convert errors into failures to catch timeouts.
		return false, err.Error()
	}
	defer res.Body.Close()
	if _, err = io.ReadAll(res.Body); err != nil {
		return false, err.Error()
	}
	if res.StatusCode < http.StatusInternalServerError {
		return true, ""
	}
	return false, fmt.Sprintf("HTTP probe failed with statuscode: %d", res.StatusCode)
}
