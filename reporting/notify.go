package reporting

import (
	"context"
	"os/exec"
	"time"

	"github.com/ethereum/go-ethereum/log"
)

// DefaultNotifyBin is the desktop notification command used when none is
// configured.
const DefaultNotifyBin = "notify-send"

// notifyTimeout bounds a single notification delivery attempt.
const notifyTimeout = 5 * time.Second

var _ Notifier = (*CommandNotifier)(nil)
var _ Notifier = NoopNotifier{}

// CommandNotifier delivers notifications by spawning an external
// notify-send compatible command. Failures are logged and swallowed so a
// missing notifier binary never affects a run.
type CommandNotifier struct {
	bin        string
	cmdBuilder func(ctx context.Context, name string, arg ...string) *exec.Cmd
}

// NewCommandNotifier creates a notifier spawning the given binary.
// An empty bin falls back to DefaultNotifyBin.
func NewCommandNotifier(bin string) *CommandNotifier {
	if bin == "" {
		bin = DefaultNotifyBin
	}
	return &CommandNotifier{
		bin:        bin,
		cmdBuilder: exec.CommandContext,
	}
}

// Notify implements the Notifier interface
func (n *CommandNotifier) Notify(notification Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	cmd := n.cmdBuilder(ctx, n.bin, "-u", urgencyFor(notification), notification.Title, notification.Message)
	if err := cmd.Run(); err != nil {
		log.Debug("Desktop notification failed", "bin", n.bin, "title", notification.Title, "err", err)
	}
}

// urgencyFor maps severity and priority onto notify-send urgency levels
func urgencyFor(n Notification) string {
	switch {
	case n.Severity == SeverityFailed || n.Priority >= 2:
		return "critical"
	case n.Severity == SeverityPending:
		return "normal"
	default:
		return "low"
	}
}

// NoopNotifier discards all notifications. Used when notifications are
// disabled.
type NoopNotifier struct{}

// Notify implements the Notifier interface
func (NoopNotifier) Notify(Notification) {}
