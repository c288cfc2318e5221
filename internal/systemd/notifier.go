// Package systemd reports service state to systemd over the notify socket.
package systemd

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"

	"github.com/smazurov/scalerwatch/internal/events"
	"github.com/smazurov/scalerwatch/internal/report"
)

const statusInterval = time.Second

// Notifier sends READY, STATUS, WATCHDOG and STOPPING messages. Every call is
// a no-op when the process was not started by systemd.
type Notifier struct {
	logger   *slog.Logger
	notify   func(state string) (bool, error)
	watchdog func() (time.Duration, error)

	mu         sync.Mutex
	lastStatus time.Time
}

// NewNotifier creates a notifier bound to $NOTIFY_SOCKET.
func NewNotifier(logger *slog.Logger) *Notifier {
	return &Notifier{
		logger: logger,
		notify: func(state string) (bool, error) {
			return daemon.SdNotify(false, state)
		},
		watchdog: func() (time.Duration, error) {
			return daemon.SdWatchdogEnabled(false)
		},
	}
}

func (n *Notifier) send(state string) {
	sent, err := n.notify(state)
	if err != nil {
		n.logger.Debug("sd_notify failed", "state", state, "error", err)
		return
	}
	if sent {
		n.logger.Debug("sd_notify", "state", state)
	}
}

// Ready signals that startup finished.
func (n *Notifier) Ready() {
	n.send(daemon.SdNotifyReady)
}

// Stopping signals the start of shutdown.
func (n *Notifier) Stopping() {
	n.send(daemon.SdNotifyStopping)
}

// Status publishes a free-form status line.
func (n *Notifier) Status(text string) {
	n.send("STATUS=" + text)
}

// StatusLine renders a report for systemctl status.
func StatusLine(r report.Report) string {
	return fmt.Sprintf("unchanged=%.1fs color=%s (%s) fps=%.2f game=%s",
		r.Unchanged, r.Color.Hex(), r.ColorName, r.FPS, r.Game)
}

func (n *Notifier) onReport(r report.Report) {
	n.mu.Lock()
	if r.Timestamp.Sub(n.lastStatus) < statusInterval {
		n.mu.Unlock()
		return
	}
	n.lastStatus = r.Timestamp
	n.mu.Unlock()
	n.Status(StatusLine(r))
}

// Run forwards reports as STATUS updates and pets the watchdog until ctx ends.
func (n *Notifier) Run(ctx context.Context, bus *events.Bus) {
	unsub := bus.Subscribe(func(e events.FrameReportEvent) { n.onReport(e.Report) })
	defer unsub()

	interval, err := n.watchdog()
	if err != nil {
		n.logger.Warn("Invalid watchdog settings", "error", err)
	}
	if interval <= 0 {
		<-ctx.Done()
		return
	}

	n.logger.Info("Systemd watchdog enabled", "interval", interval)
	ticker := time.NewTicker(interval / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n.send(daemon.SdNotifyWatchdog)
		}
	}
}
