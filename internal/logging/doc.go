// Package logging provides structured logging with per-module levels.
//
// Console logs go to stderr in text or json format because stdout carries
// the frame reports. When journald is reachable the same records are also
// sent to the journal under the identifier "scalerwatch", with attributes
// as upper-case fields:
//
//	journalctl -t scalerwatch MODULE=monitor
//
// Initialize once at startup, then ask for a logger per module:
//
//	logging.Initialize(logging.Config{
//		Level:   "info",
//		Format:  "text",
//		Modules: map[string]string{"monitor": "debug"},
//	})
//	logger := logging.GetLogger("monitor")
//
// Levels are held in slog.LevelVar values, so ApplyLevels changes them for
// loggers that are already in use. The format only changes on Initialize.
//
// TOML layout:
//
//	[logging]
//	level = "info"
//	format = "text"
//
//	[logging.modules]
//	monitor = "debug"
//	api = "warn"
package logging
