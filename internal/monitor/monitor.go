// Package monitor runs the scaler sampling loop.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/smazurov/scalerwatch/internal/change"
	"github.com/smazurov/scalerwatch/internal/colors"
	"github.com/smazurov/scalerwatch/internal/events"
	"github.com/smazurov/scalerwatch/internal/game"
	"github.com/smazurov/scalerwatch/internal/pixel"
	"github.com/smazurov/scalerwatch/internal/report"
	"github.com/smazurov/scalerwatch/pkg/ascal"
)

// ErrHeaderNotFound is returned by New when the mapped region carries no scaler header.
var ErrHeaderNotFound = ascal.ErrHeaderNotFound

// Monitor samples the active scaler buffer and produces reports.
type Monitor struct {
	mem    []byte
	opts   Options
	logger *slog.Logger
	pub    events.Publisher

	mu     sync.RWMutex
	tuning Tuning
	namer  colors.Namer
	latest report.Report
	ready  bool

	header   ascal.Header
	layout   ascal.Layout
	grid     []int
	variant  *pixel.Variant
	forced   bool
	counters [3]uint8

	acc       *colors.Accumulator
	hist      *colors.Histogram565
	tracker   *change.Tracker
	idle      *change.IdleDetector
	fps       fpsMeter
	game      *game.Resolver
	start     time.Time
	published time.Time
}

// New validates the header at the start of mem and prepares the sampler.
func New(mem []byte, opts Options, logger *slog.Logger, pub events.Publisher) (*Monitor, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	h, err := ascal.ParseHeader(mem)
	if err != nil {
		return nil, err
	}
	namer, _ := colors.NamerFor(opts.Tuning.Namer)
	if logger == nil {
		logger = slog.Default()
	}

	m := &Monitor{
		mem:     mem,
		opts:    opts,
		logger:  logger,
		pub:     pub,
		tuning:  opts.Tuning,
		namer:   namer,
		acc:     colors.NewAccumulator(opts.Tuning.Space),
		hist:    colors.NewHistogram565(),
		tracker: change.NewTracker(opts.Tuning.Tolerance),
		idle:    change.NewIdleDetector(opts.Tuning.IdleThreshold),
		game:    game.NewResolver(opts.GamePaths, opts.GameRefresh),
		start:   time.Now(),
	}
	if v, ok := pixel.VariantByName(opts.Variant16); ok {
		m.variant = &v
		m.forced = true
	}

	m.reconfigure(h, m.start)
	m.counters = ascal.BufferCounters(mem, m.layout)

	logger.Info("Scaler detected",
		"format", h.Format.String(),
		"width", h.Width,
		"height", h.Height,
		"line", h.Line,
		"layout", m.layout.String(),
		"step", opts.Step,
		"poll", opts.PollInterval,
		"tolerance", opts.Tuning.Tolerance)
	return m, nil
}

// Header returns the geometry the monitor is currently sampling.
func (m *Monitor) Header() (ascal.Header, ascal.Layout) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.header, m.layout
}

// Latest returns the most recent report.
func (m *Monitor) Latest() (report.Report, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.latest, m.ready
}

// Tuning returns the tuning in effect.
func (m *Monitor) Tuning() Tuning {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tuning
}

// UpdateTuning applies new tuning values to subsequent ticks.
func (m *Monitor) UpdateTuning(t Tuning) error {
	if err := t.Validate(); err != nil {
		return err
	}
	namer, _ := colors.NamerFor(t.Namer)

	m.mu.Lock()
	defer m.mu.Unlock()
	if t.Space != m.tuning.Space {
		m.acc = colors.NewAccumulator(t.Space)
	}
	m.tuning = t
	m.namer = namer
	m.tracker.SetTolerance(t.Tolerance)
	m.idle.SetThreshold(t.IdleThreshold)
	m.logger.Info("Tuning updated",
		"color_mode", t.ColorMode,
		"space", t.Space.String(),
		"namer", t.Namer,
		"tolerance", t.Tolerance,
		"idle_threshold", t.IdleThreshold)
	return nil
}

// reconfigure switches to a new scaler geometry. Callers hold m.mu or own m exclusively.
func (m *Monitor) reconfigure(h ascal.Header, now time.Time) {
	prev := m.header
	m.header = h
	m.layout = ascal.DetectLayout(m.mem, h)
	m.grid = pixel.Grid(int(h.Width), int(h.Height), int(h.Line), h.Format.BytesPerPixel(), m.opts.Step)
	if !m.forced {
		m.variant = nil
	}
	m.tracker.Reset()
	m.fps.reset()

	if prev.Type == 0 {
		return
	}
	m.logger.Info("Scaler changed",
		"width", h.Width,
		"height", h.Height,
		"line", h.Line,
		"format", h.Format.String(),
		"layout", m.layout.String())
	m.publishScaler(prev, now)
}

func (m *Monitor) publishScaler(prev ascal.Header, now time.Time) {
	if m.pub == nil {
		return
	}
	m.pub.Publish(events.ScalerChangedEvent{
		Previous:  prev,
		Current:   m.header,
		Layout:    m.layout.String(),
		Timestamp: now,
	})
}

// Tick samples the current frame once.
func (m *Monitor) Tick(now time.Time) report.Report {
	m.mu.Lock()
	defer m.mu.Unlock()

	h, err := ascal.ParseHeader(m.mem)
	found := err == nil
	if found {
		if !h.GeometryEqual(m.header) {
			m.reconfigure(h, now)
		}
		m.header = h
	}

	counters := ascal.BufferCounters(m.mem, m.layout)
	buf := ascal.SelectBuffer(m.counters, counters, m.layout.Triple)
	m.counters = counters

	r := report.Report{
		Timestamp:   now,
		Elapsed:     now.Sub(m.start).Seconds(),
		HeaderFound: found,
		Header:      m.header,
		Buffer:      buf,
		Layout:      m.layout.String(),
		Source:      m.tuning.ColorMode,
		Game:        m.game.Name(now),
	}
	if found {
		r.FPS = m.fps.observe(now, h.FrameCounter())
	}

	hash := change.NewHash(m.opts.Hash)
	m.acc.Reset()
	m.hist.Begin()
	if found {
		r.Samples, r.Center = m.sample(buf, &hash)
	}
	if m.variant != nil && m.header.Format == ascal.FormatRGB16 {
		r.Variant = m.variant.Name
	}

	r.Average = m.acc.Mean()
	r.Dominant = m.hist.Mode()
	r.Color = r.Dominant
	if m.tuning.ColorMode == report.SourceAverage {
		r.Color = r.Average
	}
	r.Hash = hash.Sum()
	r.ColorName = m.namer(r.Color)
	r.AverageName = m.namer(r.Average)
	r.DominantName = m.namer(r.Dominant)
	r.CenterName = m.namer(r.Center)

	if r.Samples > 0 {
		r.Changed = m.tracker.Observe(now, r.Hash, m.acc.MeanFloat())
	}
	unchanged := m.tracker.Unchanged(now)
	r.Unchanged = unchanged.Seconds()

	idle, switched := m.idle.Update(unchanged)
	r.Idle = idle
	if switched && m.pub != nil {
		m.pub.Publish(events.IdleStateChangedEvent{Idle: idle, Unchanged: unchanged, Timestamp: now})
	}

	m.latest = r
	m.ready = true
	return r
}

// sample walks the grid of buffer buf and returns the sample count and center pixel.
func (m *Monitor) sample(buf int, hash *change.Hash) (int, colors.RGB) {
	h := m.header
	base := m.layout.Offset(buf) + int(h.HeaderLen)
	if base >= len(m.mem) {
		return 0, colors.RGB{}
	}
	pix := m.mem[base:]

	if h.Format == ascal.FormatRGB16 && m.variant == nil {
		det := pixel.Detect16(pix, int(h.Width), int(h.Height), int(h.Line))
		m.variant = &det.Variant
		m.logger.Debug("Detected 16-bit pixel order",
			"variant", det.Variant.Name,
			"samples", det.Samples,
			"score", det.Score,
			"flat", det.Flat)
	}
	var rgb16 pixel.Loader
	if m.variant != nil {
		rgb16 = m.variant.Load
	}
	load := pixel.LoaderFor(h.Format, rgb16)
	bpp := h.Format.BytesPerPixel()
	if load == nil || bpp == 0 {
		return 0, colors.RGB{}
	}

	n := 0
	for _, off := range m.grid {
		if off+bpp > len(pix) {
			continue
		}
		c := load(pix[off : off+bpp])
		m.acc.Add(c)
		m.hist.Add(c)
		hash.Add(c)
		n++
	}

	var center colors.RGB
	if off := int(h.Height)/2*int(h.Line) + int(h.Width)/2*bpp; off+bpp <= len(pix) {
		center = load(pix[off : off+bpp])
	}
	return n, center
}

// Run samples until ctx is cancelled. It returns nil on cancellation.
// Frames that changed are published even inside the report interval.
func (m *Monitor) Run(ctx context.Context) error {
	m.logger.Info("Monitor started",
		"wait_for_frame", m.opts.WaitForFrame,
		"report_interval", m.opts.ReportInterval)
	defer m.logger.Info("Monitor stopped")

	m.mu.RLock()
	m.publishScaler(ascal.Header{}, time.Now())
	m.mu.RUnlock()

	for {
		if err := m.wait(ctx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return fmt.Errorf("wait for frame: %w", err)
		}
		r := m.Tick(time.Now())
		if m.pub != nil && (m.due(r.Timestamp) || r.Changed) {
			m.pub.Publish(events.FrameReportEvent{Report: r})
		}
	}
}

func (m *Monitor) due(now time.Time) bool {
	if m.opts.ReportInterval > 0 && !m.published.IsZero() && now.Sub(m.published) < m.opts.ReportInterval {
		return false
	}
	m.published = now
	return true
}

// wait blocks until the buffer counters move, the frame timeout passes or ctx ends.
// Without frame waiting it sleeps one poll interval.
func (m *Monitor) wait(ctx context.Context) error {
	if !m.opts.WaitForFrame {
		t := time.NewTimer(m.opts.PollInterval)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			return nil
		}
	}

	m.mu.RLock()
	layout := m.layout
	m.mu.RUnlock()
	start := ascal.CounterSum(ascal.BufferCounters(m.mem, layout))

	ticker := time.NewTicker(m.opts.PollInterval)
	defer ticker.Stop()
	var timeout <-chan time.Time
	if m.opts.FrameTimeout > 0 {
		t := time.NewTimer(m.opts.FrameTimeout)
		defer t.Stop()
		timeout = t.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timeout:
			return nil
		case <-ticker.C:
			if ascal.CounterSum(ascal.BufferCounters(m.mem, layout)) != start {
				return nil
			}
		}
	}
}

// ParseColorMode validates a color mode name.
func ParseColorMode(s string) (string, error) {
	switch mode := strings.ToLower(s); mode {
	case "", report.SourceDominant:
		return report.SourceDominant, nil
	case report.SourceAverage:
		return report.SourceAverage, nil
	default:
		return "", fmt.Errorf("unknown color mode %q", s)
	}
}
