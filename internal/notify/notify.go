package notify

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/gen2brain/beeep"
)

// Notifier posts desktop notifications for long-lived chat sessions. All
// failures are logged and swallowed; a missing notification daemon must never
// break a turn.
type Notifier struct {
	enabled bool
	logger  *slog.Logger
}

func New(enabled bool, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Notifier{enabled: enabled, logger: logger}
}

// ForecastReady announces a freshly computed forecast.
func (n *Notifier) ForecastReady(window string, capacity int) {
	n.send(fmt.Sprintf("%s: capacity for %d New Implementation tasks", window, capacity))
}

// TargetMet announces that the current parameters cover the stated goal.
func (n *Notifier) TargetMet(target int) {
	n.send(fmt.Sprintf("Target of %d tasks is covered by the current plan", target))
}

func (n *Notifier) send(message string) {
	if !n.enabled {
		return
	}
	if err := beeep.Notify("capr", message, ""); err != nil {
		n.logger.Warn("desktop notification failed", "error", err)
	}
}
