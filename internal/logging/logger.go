package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Identifier tags journal entries.
const Identifier = "scalerwatch"

var (
	moduleLoggers   = make(map[string]*slog.Logger)
	moduleLevelVars = make(map[string]*slog.LevelVar)
	globalConfig    Config
	globalLevelVar  = &slog.LevelVar{}
	isInitialized   bool
	mutex           sync.RWMutex

	// output receives console logs. Reports own stdout, so logs go to stderr.
	output io.Writer = os.Stderr
)

// Config represents logging configuration.
type Config struct {
	Level   string            `toml:"level"`
	Format  string            `toml:"format"`
	Modules map[string]string `toml:"modules"`
}

// DefaultConfig returns info level text logging.
func DefaultConfig() Config {
	return Config{Level: "info", Format: "text", Modules: map[string]string{}}
}

// Initialize sets up the logging system. Loggers handed out earlier keep
// their handler but pick up the new levels.
func Initialize(config Config) {
	mutex.Lock()
	defer mutex.Unlock()

	globalConfig = config
	isInitialized = true
	applyLevels(config)

	for module, levelVar := range moduleLevelVars {
		moduleLoggers[module] = slog.New(createHandler(config.Format, levelVar)).With("module", module)
	}
	slog.SetDefault(slog.New(createHandler(config.Format, globalLevelVar)))
}

// ApplyLevels changes global and per-module levels at runtime. The output
// format is fixed at Initialize.
func ApplyLevels(config Config) {
	mutex.Lock()
	defer mutex.Unlock()
	globalConfig.Level = config.Level
	globalConfig.Modules = config.Modules
	applyLevels(config)
}

func applyLevels(config Config) {
	global := levelOrDefault(config.Level, slog.LevelInfo)
	globalLevelVar.Set(global)
	for module, levelVar := range moduleLevelVars {
		levelVar.Set(moduleLevel(config, module, global))
	}
}

func moduleLevel(config Config, module string, global slog.Level) slog.Level {
	if levelStr, ok := config.Modules[module]; ok {
		return levelOrDefault(levelStr, global)
	}
	return global
}

func levelOrDefault(s string, def slog.Level) slog.Level {
	if l := parseLevel(s); l != nil {
		return *l
	}
	return def
}

// GetLogger returns a logger for the specified module, creating it if needed.
func GetLogger(module string) *slog.Logger {
	mutex.RLock()
	if logger, exists := moduleLoggers[module]; exists {
		mutex.RUnlock()
		return logger
	}
	mutex.RUnlock()

	mutex.Lock()
	defer mutex.Unlock()

	if logger, exists := moduleLoggers[module]; exists {
		return logger
	}

	levelVar := &slog.LevelVar{}
	format := "text"
	if isInitialized {
		levelVar.Set(moduleLevel(globalConfig, module, levelOrDefault(globalConfig.Level, slog.LevelInfo)))
		format = globalConfig.Format
	}

	logger := slog.New(createHandler(format, levelVar)).With("module", module)
	moduleLoggers[module] = logger
	moduleLevelVars[module] = levelVar
	return logger
}

// createHandler builds the console handler plus the journal handler when journald is reachable.
func createHandler(format string, level slog.Leveler) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}

	var console slog.Handler
	if format == "json" {
		console = slog.NewJSONHandler(output, opts)
	} else {
		console = slog.NewTextHandler(output, opts)
	}

	if !IsJournalAvailable() {
		return console
	}
	if !isConsoleAvailable() {
		return NewJournalHandler(level)
	}
	return NewMultiHandler(console, NewJournalHandler(level))
}

// isConsoleAvailable reports whether stderr goes somewhere other than /dev/null.
func isConsoleAvailable() bool {
	fi, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	mode := fi.Mode()
	return (mode&os.ModeCharDevice) != 0 || (mode&os.ModeNamedPipe) != 0 || (mode&os.ModeSocket) != 0 || mode.IsRegular()
}

// parseLevel converts string level to slog.Level.
func parseLevel(level string) *slog.Level {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "info":
		l = slog.LevelInfo
	case "warn", "warning":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		return nil
	}
	return &l
}

// ValidLevel reports whether s names a log level.
func ValidLevel(s string) bool {
	return parseLevel(s) != nil
}
