package runner

import (
	"fmt"

	"github.com/ethereum-optimism/infra/op-specrunner/reporting"
	"github.com/ethereum/go-ethereum/log"
)

func testLogger() log.Logger {
	return log.NewLogger(log.DiscardHandler())
}

// recordingReporter captures leveled lines in order for assertions.
type recordingReporter struct {
	lines []string
}

var _ reporting.Reporter = (*recordingReporter)(nil)

func (r *recordingReporter) Info(format string, args ...interface{}) {
	r.lines = append(r.lines, "info: "+fmt.Sprintf(format, args...))
}

func (r *recordingReporter) Success(format string, args ...interface{}) {
	r.lines = append(r.lines, "success: "+fmt.Sprintf(format, args...))
}

func (r *recordingReporter) Warning(format string, args ...interface{}) {
	r.lines = append(r.lines, "warning: "+fmt.Sprintf(format, args...))
}

func (r *recordingReporter) Error(format string, args ...interface{}) {
	r.lines = append(r.lines, "error: "+fmt.Sprintf(format, args...))
}

// recordingNotifier captures notifications in order.
type recordingNotifier struct {
	notes []reporting.Notification
}

var _ reporting.Notifier = (*recordingNotifier)(nil)

func (n *recordingNotifier) Notify(note reporting.Notification) {
	n.notes = append(n.notes, note)
}

// recordingStore captures persisted payloads per target.
type recordingStore struct {
	payloads map[string][]byte
	err      error
}

var _ PayloadStore = (*recordingStore)(nil)

func newRecordingStore() *recordingStore {
	return &recordingStore{payloads: make(map[string][]byte)}
}

func (s *recordingStore) Store(target string, payload []byte) error {
	if s.err != nil {
		return s.err
	}
	s.payloads[target] = append([]byte(nil), payload...)
	return nil
}

func (s *recordingStore) GetRunID() string {
	return "test-run"
}
