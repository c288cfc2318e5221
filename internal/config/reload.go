package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/smazurov/scalerwatch/internal/colors"
	"github.com/smazurov/scalerwatch/internal/logging"
	"github.com/smazurov/scalerwatch/internal/monitor"
)

// Reloadable is the part of the config file applied without a restart.
type Reloadable struct {
	Monitor MonitorSection
	Logging logging.Config
}

// MonitorSection mirrors the [monitor] table. Empty or nil fields keep the
// running value.
type MonitorSection struct {
	ColorMode     string     `toml:"color_mode"`
	Space         string     `toml:"space"`
	Namer         string     `toml:"namer"`
	Tolerance     *Tolerance `toml:"tolerance"`
	IdleThreshold string     `toml:"idle_threshold"`
}

// Tolerance accepts both tolerance = 3.0 and tolerance = "3.0".
type Tolerance float64

// UnmarshalText parses the raw TOML number or string.
func (t *Tolerance) UnmarshalText(text []byte) error {
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(string(text)), "_", ""), 64)
	if err != nil {
		return fmt.Errorf("invalid tolerance %q", text)
	}
	*t = Tolerance(v)
	return nil
}

// LoadReloadable reads the [monitor] and [logging] tables from path.
func LoadReloadable(path string) (Reloadable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Reloadable{}, err
	}
	var raw struct {
		Monitor MonitorSection `toml:"monitor"`
		Logging map[string]any `toml:"logging"`
	}
	if err := toml.Unmarshal(data, &raw); err != nil {
		return Reloadable{}, fmt.Errorf("failed to parse TOML config: %w", err)
	}
	return Reloadable{Monitor: raw.Monitor, Logging: loggingFrom(raw.Logging)}, nil
}

// Apply overlays the section on base.
func (s MonitorSection) Apply(base monitor.Tuning) (monitor.Tuning, error) {
	t := base
	if s.ColorMode != "" {
		mode, err := monitor.ParseColorMode(s.ColorMode)
		if err != nil {
			return base, err
		}
		t.ColorMode = mode
	}
	if s.Space != "" {
		space, err := colors.ParseSpace(s.Space)
		if err != nil {
			return base, err
		}
		t.Space = space
	}
	if s.Namer != "" {
		t.Namer = strings.ToLower(s.Namer)
	}
	if s.Tolerance != nil {
		t.Tolerance = float64(*s.Tolerance)
	}
	if s.IdleThreshold != "" {
		d, err := time.ParseDuration(s.IdleThreshold)
		if err != nil {
			return base, fmt.Errorf("idle_threshold: %w", err)
		}
		t.IdleThreshold = d
	}
	return t, t.Validate()
}

// LoggingOver lays the levels named in the file over base. Modules absent
// from the file keep their base level.
func (r Reloadable) LoggingOver(base logging.Config) logging.Config {
	out := logging.Config{Level: base.Level, Format: base.Format, Modules: make(map[string]string, len(base.Modules))}
	for module, level := range base.Modules {
		out.Modules[module] = level
	}
	if r.Logging.Level != "" {
		out.Level = r.Logging.Level
	}
	if r.Logging.Format != "" {
		out.Format = r.Logging.Format
	}
	for module, level := range r.Logging.Modules {
		out.Modules[module] = level
	}
	return out
}

// loggingFrom accepts module levels both as a [logging.modules] table and
// as extra keys of [logging]. Level and Format stay empty when not set.
func loggingFrom(raw map[string]any) logging.Config {
	cfg := logging.Config{Modules: map[string]string{}}
	for key, value := range raw {
		switch v := value.(type) {
		case string:
			switch key {
			case "level":
				cfg.Level = v
			case "format":
				cfg.Format = v
			default:
				cfg.Modules[key] = v
			}
		case map[string]any:
			if key != "modules" {
				continue
			}
			for module, level := range v {
				if s, ok := level.(string); ok {
					cfg.Modules[module] = s
				}
			}
		}
	}
	return cfg
}
