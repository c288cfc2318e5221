package systemd

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/smazurov/scalerwatch/internal/events"
	"github.com/smazurov/scalerwatch/internal/report"
)

type fakeSocket struct {
	mu     sync.Mutex
	states []string
}

func (f *fakeSocket) notify(state string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states = append(f.states, state)
	return true, nil
}

func (f *fakeSocket) count(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, s := range f.states {
		if strings.HasPrefix(s, prefix) {
			n++
		}
	}
	return n
}

func newTestNotifier(sock *fakeSocket, watchdog time.Duration) *Notifier {
	n := NewNotifier(slog.New(slog.NewTextHandler(io.Discard, nil)))
	n.notify = sock.notify
	n.watchdog = func() (time.Duration, error) { return watchdog, nil }
	return n
}

func TestLifecycleMessages(t *testing.T) {
	sock := &fakeSocket{}
	n := newTestNotifier(sock, 0)

	n.Ready()
	n.Status("hello")
	n.Stopping()

	want := []string{"READY=1", "STATUS=hello", "STOPPING=1"}
	if strings.Join(sock.states, ",") != strings.Join(want, ",") {
		t.Errorf("states = %v, want %v", sock.states, want)
	}
}

func TestStatusThrottled(t *testing.T) {
	sock := &fakeSocket{}
	n := newTestNotifier(sock, 0)

	start := time.Unix(0, 0)
	for i := 0; i < 10; i++ {
		n.onReport(report.Report{Timestamp: start.Add(time.Duration(i) * 300 * time.Millisecond)})
	}
	// Reports at 0, 1.2s and 2.4s pass the one second throttle.
	if got := sock.count("STATUS="); got != 3 {
		t.Errorf("STATUS messages = %d, want 3", got)
	}
}

func TestStatusLine(t *testing.T) {
	got := StatusLine(report.Report{Unchanged: 2.3, ColorName: "Black", FPS: 60, Game: "Unknown"})
	want := "unchanged=2.3s color=#000000 (Black) fps=60.00 game=Unknown"
	if got != want {
		t.Errorf("StatusLine() = %q, want %q", got, want)
	}
}

func TestWatchdog(t *testing.T) {
	sock := &fakeSocket{}
	n := newTestNotifier(sock, 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		n.Run(ctx, events.New())
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for sock.count("WATCHDOG=1") < 2 {
		if time.Now().After(deadline) {
			t.Fatal("watchdog was not petted")
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-done
}
