package events

import (
	"time"

	"github.com/smazurov/scalerwatch/internal/report"
	"github.com/smazurov/scalerwatch/pkg/ascal"
)

// Event type constants for kelindar/event.
const (
	TypeFrameReport uint32 = iota + 1
	TypeScalerChanged
	TypeIdleStateChanged
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// FrameReportEvent carries one sampling report.
type FrameReportEvent struct {
	Report report.Report `json:"report"`
}

// Type returns the event type identifier for FrameReportEvent.
func (e FrameReportEvent) Type() uint32 { return TypeFrameReport }

// ScalerChangedEvent is published when the scaler geometry, format or
// buffering mode changes, and once when the header is first found.
type ScalerChangedEvent struct {
	Previous  ascal.Header `json:"previous"`
	Current   ascal.Header `json:"current"`
	Layout    string       `json:"layout" example:"triple-small"`
	Timestamp time.Time    `json:"timestamp"`
}

// Type returns the event type identifier for ScalerChangedEvent.
func (e ScalerChangedEvent) Type() uint32 { return TypeScalerChanged }

// IdleStateChangedEvent is published when the unchanged timer crosses the
// idle threshold in either direction.
type IdleStateChangedEvent struct {
	Idle      bool          `json:"idle"`
	Unchanged time.Duration `json:"unchanged"`
	Timestamp time.Time     `json:"timestamp"`
}

// Type returns the event type identifier for IdleStateChangedEvent.
func (e IdleStateChangedEvent) Type() uint32 { return TypeIdleStateChanged }
