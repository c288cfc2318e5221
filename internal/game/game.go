// Package game resolves the name of the game currently running on the MiSTer.
package game

import (
	"bufio"
	"os"
	"strings"
	"sync"
	"time"
)

// Unknown is reported when no source names a game.
const Unknown = "Unknown"

// DefaultPaths lists the files written by MiSTer tooling, most specific first.
var DefaultPaths = []string{"/tmp/SAM_Game.txt", "/tmp/ROM", "/tmp/NAME"}

// DefaultRefresh is how long a resolved name is reused.
const DefaultRefresh = time.Second

// Resolver reads the game name from a list of files and caches the result.
type Resolver struct {
	paths   []string
	refresh time.Duration

	mu      sync.Mutex
	name    string
	checked time.Time
}

// NewResolver creates a resolver. Nil paths selects DefaultPaths.
func NewResolver(paths []string, refresh time.Duration) *Resolver {
	if paths == nil {
		paths = DefaultPaths
	}
	return &Resolver{paths: paths, refresh: refresh}
}

// Name returns the current game name, re-reading the files at most once per refresh interval.
func (r *Resolver) Name(now time.Time) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.name != "" && now.Sub(r.checked) < r.refresh && !now.Before(r.checked) {
		return r.name
	}
	r.name = r.resolve()
	r.checked = now
	return r.name
}

func (r *Resolver) resolve() string {
	for _, path := range r.paths {
		if name := firstLine(path); name != "" && name != Unknown {
			return name
		}
	}
	return Unknown
}

func firstLine(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	if !sc.Scan() {
		return ""
	}
	return strings.TrimSpace(sc.Text())
}
