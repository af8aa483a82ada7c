// Package reporting provides the leveled console sink and the desktop
// notification channel used to surface suite run progress and results.
package reporting

// Reporter is the ordered, leveled line sink consumed by the run pipeline.
// Implementations must be safe for use from a single goroutine at a time;
// the run loop is strictly sequential.
type Reporter interface {
	Info(format string, args ...interface{})
	Success(format string, args ...interface{})
	Warning(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// Severity classifies a desktop notification
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityPending Severity = "pending"
	SeverityFailed  Severity = "failed"
)

// Notification is a structured desktop-notification event
type Notification struct {
	Message  string
	Title    string
	Severity Severity
	Priority int
}

// Notifier delivers desktop notifications. Delivery is best-effort and must
// never fail a run.
type Notifier interface {
	Notify(n Notification)
}
