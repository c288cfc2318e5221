// Package console prints frame reports to a terminal.
package console

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/smazurov/scalerwatch/internal/events"
	"github.com/smazurov/scalerwatch/internal/report"
)

// Style selects the output layout.
type Style string

// Output styles.
const (
	StyleLine   Style = "line"
	StyleWatch  Style = "watch"
	StyleStatus Style = "status"
	StyleNone   Style = "none"
)

// ParseStyle validates a style name.
func ParseStyle(s string) (Style, error) {
	switch st := Style(strings.ToLower(s)); st {
	case StyleLine, StyleWatch, StyleStatus, StyleNone:
		return st, nil
	case "":
		return StyleLine, nil
	default:
		return "", fmt.Errorf("unknown output style %q", s)
	}
}

// FormatHMS formats d as HH:MM:SS with unbounded hours.
func FormatHMS(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, total/60%60, total%60)
}

// Printer writes reports in one style.
type Printer struct {
	mu      sync.Mutex
	w       io.Writer
	style   Style
	lastLen int
}

// NewPrinter creates a printer writing to w.
func NewPrinter(w io.Writer, style Style) *Printer {
	return &Printer{w: w, style: style}
}

// Attach subscribes the printer to frame reports on the bus.
func (p *Printer) Attach(bus *events.Bus) func() {
	return bus.Subscribe(func(e events.FrameReportEvent) {
		p.Print(e.Report)
	})
}

// Print writes one report.
func (p *Printer) Print(r report.Report) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.style {
	case StyleNone:
		return
	case StyleWatch:
		fmt.Fprintln(p.w, FormatWatch(r))
	case StyleStatus:
		line := FormatStatus(r)
		pad := ""
		if n := len(line); n < p.lastLen {
			pad = strings.Repeat(" ", p.lastLen-n)
		}
		p.lastLen = len(line)
		fmt.Fprintf(p.w, "\r%s%s", line, pad)
	default:
		fmt.Fprintln(p.w, FormatLine(r))
	}
}

// Finish ends a rewritten status line so the shell prompt starts clean.
func (p *Printer) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.style == StyleStatus && p.lastLen > 0 {
		fmt.Fprintln(p.w)
		p.lastLen = 0
	}
}

func elapsed(r report.Report) string {
	return FormatHMS(time.Duration(r.Elapsed * float64(time.Second)))
}

// FormatLine renders the one-line-per-report style.
func FormatLine(r report.Report) string {
	return fmt.Sprintf("time=%s  unchanged=%.3f  rgb=%s (%s)",
		elapsed(r), r.Unchanged, r.Color.Hex(), r.ColorName)
}

// FormatWatch renders the average/center style.
func FormatWatch(r report.Report) string {
	return fmt.Sprintf("time=%s  unchanged=%.3f  avg_rgb=%s  center_rgb=%s",
		elapsed(r), r.Unchanged, r.Average.Hex(), r.Center.Hex())
}

// FormatStatus renders the single rewritten status line.
func FormatStatus(r report.Report) string {
	h := r.Header
	return fmt.Sprintf("Output=1 | StaticTime=%.1f sec | RGB=%s -> %s | FPS=%6.2f | "+
		"Resolution=%4dx%-4d -> %4dx%-4d | Game=%s",
		r.Unchanged, r.Color.Hex(), r.ColorName, r.FPS,
		h.Width, h.Height, h.OutWidth, h.OutHeight, r.Game)
}
