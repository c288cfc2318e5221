package models

import (
	"github.com/smazurov/scalerwatch/internal/report"
	"github.com/smazurov/scalerwatch/internal/version"
	"github.com/smazurov/scalerwatch/pkg/ascal"
)

// Health check models
type HealthData struct {
	Status  string `json:"status" example:"ok" doc:"Service status"`
	Message string `json:"message" example:"Scaler header found" doc:"Status message"`
}

type HealthResponse struct {
	Body HealthData
}

// Version models
type VersionResponse struct {
	Body version.Info
}

// Status models
type StatusResponse struct {
	Body report.Report
}

// Header models
type HeaderData struct {
	Header        ascal.Header `json:"header" doc:"Decoded scaler header"`
	Format        string       `json:"format" example:"RGB16" doc:"Pixel format name"`
	BytesPerPixel int          `json:"bytes_per_pixel" example:"2" doc:"Bytes per pixel"`
	Layout        string       `json:"layout" example:"triple-small" doc:"Buffer layout"`
	Triple        bool         `json:"triple" doc:"Whether triple buffering is enabled"`
	FrameCounter  uint8        `json:"frame_counter" example:"5" doc:"Frame counter bits of the header"`
	Counters      []int        `json:"counters" doc:"Per-buffer frame counters"`
}

type HeaderResponse struct {
	Body HeaderData
}
