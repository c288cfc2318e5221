package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/smazurov/scalerwatch/internal/change"
	"github.com/smazurov/scalerwatch/internal/colors"
	"github.com/smazurov/scalerwatch/internal/console"
	"github.com/smazurov/scalerwatch/internal/game"
	"github.com/smazurov/scalerwatch/internal/logging"
	"github.com/smazurov/scalerwatch/internal/monitor"
)

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"scalerwatch.toml"`

	// Scaler memory
	Device      string `help:"Memory device to map" default:"/dev/mem" toml:"scaler.device" env:"DEVICE"`
	BaseAddress string `help:"Physical address of the scaler buffer" default:"0x20000000" toml:"scaler.base_address" env:"BASE_ADDRESS"`

	// Sampling
	Step           int    `help:"Sample every Nth pixel in both axes" short:"s" default:"2" toml:"monitor.step" env:"STEP"`
	Poll           string `help:"Poll interval" short:"p" default:"10ms" toml:"monitor.poll" env:"POLL"`
	FrameTimeout   string `help:"Longest wait for a new frame" default:"1s" toml:"monitor.frame_timeout" env:"FRAME_TIMEOUT"`
	NoWait         bool   `help:"Sample on every poll instead of waiting for a new frame" toml:"monitor.no_wait" env:"NO_WAIT"`
	ReportInterval string `help:"Minimum time between reports (0 reports every frame)" default:"0s" toml:"monitor.report_interval" env:"REPORT_INTERVAL"`
	Variant        string `help:"16-bit pixel variant (auto, RGB565-LE, RGB565-BE, BGR565-LE, BGR565-BE)" default:"auto" toml:"monitor.variant" env:"VARIANT"`
	Hash           string `help:"Frame hash (xorshift, poly131)" default:"xorshift" toml:"monitor.hash" env:"HASH"`
	GamePaths      string `help:"Comma-separated files naming the running game" default:"/tmp/SAM_Game.txt,/tmp/ROM,/tmp/NAME" toml:"monitor.game_paths" env:"GAME_PATHS"`

	// Tuning, also hot-reloaded from the [monitor] table
	ColorMode string `help:"Reported color (dominant, average)" short:"m" default:"dominant" toml:"monitor.color_mode" env:"COLOR_MODE"`
	Space     string `help:"Averaging space (srgb, linear)" default:"srgb" toml:"monitor.space" env:"SPACE"`
	Namer     string `help:"Color namer (basic, web, hsv, lab)" default:"web" toml:"monitor.namer" env:"NAMER"`
	Tolerance string `help:"Mean channel difference ignored as noise" short:"t" default:"0" toml:"monitor.tolerance" env:"TOLERANCE"`
	Idle      string `help:"Unchanged time before the frame counts as idle (0 disables)" default:"0s" toml:"monitor.idle_threshold" env:"IDLE"`

	// Outputs
	Style         string `help:"Console output (line, watch, status, none)" default:"line" toml:"output.style" env:"STYLE"`
	Listen        string `help:"Address for the HTTP API, metrics and websocket stream" short:"l" toml:"api.listen" env:"LISTEN"`
	AuthUsername  string `help:"Basic auth username for the API" toml:"api.username" env:"AUTH_USERNAME"`
	AuthPassword  string `help:"Basic auth password for the API" toml:"api.password" env:"AUTH_PASSWORD"`
	Record        string `help:"Append reports to a recording file" short:"r" toml:"record.path" env:"RECORD"`
	RecordChanges bool   `help:"Record only reports where the frame changed" toml:"record.changes_only" env:"RECORD_CHANGES"`
	Watch         bool   `help:"Reload tuning and log levels when the config file changes" default:"true" toml:"config.watch" env:"WATCH"`

	// Logging settings
	LoggingLevel    string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat   string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingMonitor  string `help:"Monitor logging level" toml:"logging.monitor" env:"LOGGING_MONITOR"`
	LoggingAPI      string `help:"API logging level" toml:"logging.api" env:"LOGGING_API"`
	LoggingStream   string `help:"Websocket stream logging level" toml:"logging.stream" env:"LOGGING_STREAM"`
	LoggingRecorder string `help:"Recorder logging level" toml:"logging.recorder" env:"LOGGING_RECORDER"`
}

// settings is Options after parsing.
type settings struct {
	base    int64
	monitor monitor.Options
	style   console.Style
	logging logging.Config
}

func (o *Options) parse() (settings, error) {
	var s settings
	var err error

	if s.base, err = strconv.ParseInt(o.BaseAddress, 0, 64); err != nil || s.base < 0 {
		return s, fmt.Errorf("invalid base address %q", o.BaseAddress)
	}

	m := monitor.DefaultOptions()
	m.Step = o.Step
	m.WaitForFrame = !o.NoWait
	if m.PollInterval, err = parseDuration("poll", o.Poll); err != nil {
		return s, err
	}
	if m.FrameTimeout, err = parseDuration("frame-timeout", o.FrameTimeout); err != nil {
		return s, err
	}
	if m.ReportInterval, err = parseDuration("report-interval", o.ReportInterval); err != nil {
		return s, err
	}
	if !strings.EqualFold(o.Variant, "auto") {
		m.Variant16 = o.Variant
	}
	if m.Hash, err = change.ParseHashKind(o.Hash); err != nil {
		return s, err
	}
	m.GamePaths = splitList(o.GamePaths)
	if len(m.GamePaths) == 0 {
		m.GamePaths = game.DefaultPaths
	}

	if m.Tuning.ColorMode, err = monitor.ParseColorMode(o.ColorMode); err != nil {
		return s, err
	}
	if m.Tuning.Space, err = colors.ParseSpace(o.Space); err != nil {
		return s, err
	}
	m.Tuning.Namer = strings.ToLower(o.Namer)
	if m.Tuning.Tolerance, err = strconv.ParseFloat(o.Tolerance, 64); err != nil {
		return s, fmt.Errorf("invalid tolerance %q", o.Tolerance)
	}
	if m.Tuning.IdleThreshold, err = parseDuration("idle", o.Idle); err != nil {
		return s, err
	}
	if err := m.Validate(); err != nil {
		return s, err
	}
	s.monitor = m

	if s.style, err = console.ParseStyle(o.Style); err != nil {
		return s, err
	}

	s.logging = logging.Config{
		Level:   o.LoggingLevel,
		Format:  o.LoggingFormat,
		Modules: map[string]string{},
	}
	if !logging.ValidLevel(o.LoggingLevel) {
		return s, fmt.Errorf("invalid logging level %q", o.LoggingLevel)
	}
	if f := strings.ToLower(o.LoggingFormat); f != "text" && f != "json" {
		return s, fmt.Errorf("invalid logging format %q", o.LoggingFormat)
	}
	for module, level := range map[string]string{
		"monitor":  o.LoggingMonitor,
		"api":      o.LoggingAPI,
		"stream":   o.LoggingStream,
		"recorder": o.LoggingRecorder,
	} {
		if level == "" {
			continue
		}
		if !logging.ValidLevel(level) {
			return s, fmt.Errorf("invalid %s logging level %q", module, level)
		}
		s.logging.Modules[module] = level
	}
	return s, nil
}

func parseDuration(name, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, value, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
