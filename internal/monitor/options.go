package monitor

import (
	"fmt"
	"strings"
	"time"

	"github.com/smazurov/scalerwatch/internal/change"
	"github.com/smazurov/scalerwatch/internal/colors"
	"github.com/smazurov/scalerwatch/internal/game"
	"github.com/smazurov/scalerwatch/internal/pixel"
	"github.com/smazurov/scalerwatch/internal/report"
)

// Options configures a Monitor.
type Options struct {
	Step           int
	PollInterval   time.Duration
	FrameTimeout   time.Duration
	WaitForFrame   bool
	ReportInterval time.Duration
	Variant16      string
	Hash           change.HashKind
	GamePaths      []string
	GameRefresh    time.Duration
	Tuning         Tuning
}

// Tuning holds the settings that can change while the monitor runs.
type Tuning struct {
	ColorMode     string
	Space         colors.Space
	Namer         string
	Tolerance     float64
	IdleThreshold time.Duration
}

// DefaultOptions returns the stock sampling settings.
func DefaultOptions() Options {
	return Options{
		Step:         2,
		PollInterval: 10 * time.Millisecond,
		FrameTimeout: time.Second,
		WaitForFrame: true,
		GameRefresh:  game.DefaultRefresh,
		Tuning: Tuning{
			ColorMode: report.SourceDominant,
			Space:     colors.SpaceSRGB,
			Namer:     "web",
		},
	}
}

// Validate checks option ranges.
func (o Options) Validate() error {
	if o.Step < 1 {
		return fmt.Errorf("step must be at least 1, got %d", o.Step)
	}
	if o.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", o.PollInterval)
	}
	if o.FrameTimeout < 0 || o.ReportInterval < 0 {
		return fmt.Errorf("frame timeout and report interval must not be negative")
	}
	if o.Variant16 != "" && !strings.EqualFold(o.Variant16, "auto") {
		if _, ok := pixel.VariantByName(o.Variant16); !ok {
			return fmt.Errorf("unknown 16-bit variant %q", o.Variant16)
		}
	}
	return o.Tuning.Validate()
}

// Validate checks tuning values.
func (t Tuning) Validate() error {
	switch t.ColorMode {
	case report.SourceDominant, report.SourceAverage:
	default:
		return fmt.Errorf("unknown color mode %q", t.ColorMode)
	}
	if _, err := colors.NamerFor(t.Namer); err != nil {
		return err
	}
	if t.Tolerance < 0 {
		return fmt.Errorf("tolerance must not be negative, got %g", t.Tolerance)
	}
	if t.IdleThreshold < 0 {
		return fmt.Errorf("idle threshold must not be negative, got %s", t.IdleThreshold)
	}
	return nil
}
