// Package report holds the per-frame report shared by the monitor and its consumers.
package report

import (
	"time"

	"github.com/smazurov/scalerwatch/internal/colors"
	"github.com/smazurov/scalerwatch/pkg/ascal"
)

// Color source names.
const (
	SourceDominant = "dominant"
	SourceAverage  = "average"
)

// Report is the result of one sampling pass.
type Report struct {
	Timestamp    time.Time    `json:"timestamp" doc:"Sample time"`
	Elapsed      float64      `json:"elapsed_seconds" example:"12.5" doc:"Seconds since the monitor started"`
	Unchanged    float64      `json:"unchanged_seconds" example:"3.25" doc:"Seconds since the picture last changed"`
	Changed      bool         `json:"changed" doc:"Whether this frame counted as a change"`
	Idle         bool         `json:"idle" doc:"Whether the idle threshold has been reached"`
	Hash         uint32       `json:"hash" doc:"Rolling hash of the sampled pixels"`
	Source       string       `json:"color_source" example:"dominant" doc:"Which color is reported as the frame color"`
	Color        colors.RGB   `json:"color" doc:"Frame color"`
	ColorName    string       `json:"color_name" example:"Blue" doc:"Name of the frame color"`
	Average      colors.RGB   `json:"average" doc:"Average of the sampled pixels"`
	AverageName  string       `json:"average_name" doc:"Name of the average color"`
	Dominant     colors.RGB   `json:"dominant" doc:"Most frequent 5-6-5 bucket"`
	DominantName string       `json:"dominant_name" doc:"Name of the dominant color"`
	Center       colors.RGB   `json:"center" doc:"Pixel at the frame center"`
	CenterName   string       `json:"center_name" doc:"Name of the center pixel"`
	Samples      int          `json:"samples" example:"28800" doc:"Pixels sampled this frame"`
	HeaderFound  bool         `json:"header_found" doc:"Whether the scaler header tag was present"`
	Header       ascal.Header `json:"header" doc:"Decoded scaler header"`
	Buffer       int          `json:"buffer" example:"0" doc:"Active buffer index"`
	Layout       string       `json:"layout" example:"triple-small" doc:"Buffering layout"`
	Variant      string       `json:"variant,omitempty" example:"RGB565-LE" doc:"Detected 16-bit pixel variant"`
	FPS          float64      `json:"fps" example:"59.9" doc:"Estimated scaler output rate"`
	Game         string       `json:"game" example:"Unknown" doc:"Currently running game"`
}
