package game

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestResolverOrder(t *testing.T) {
	dir := t.TempDir()
	sam := filepath.Join(dir, "SAM_Game.txt")
	rom := writeFile(t, dir, "ROM", "Unknown\n")
	name := writeFile(t, dir, "NAME", "SNES\nextra\n")

	tests := []struct {
		name  string
		setup func()
		want  string
	}{
		{"falls through missing and Unknown", func() {}, "SNES"},
		{"first source wins", func() { writeFile(t, dir, "SAM_Game.txt", "Super Metroid (SNES)\n") }, "Super Metroid (SNES)"},
		{"empty falls through", func() { writeFile(t, dir, "SAM_Game.txt", "\n") }, "SNES"},
		{"nothing left", func() {
			os.Remove(sam)
			os.Remove(name)
		}, Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			r := NewResolver([]string{sam, rom, name}, time.Second)
			if got := r.Name(time.Now()); got != tt.want {
				t.Errorf("Name() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolverCache(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "ROM", "Sonic\n")
	r := NewResolver([]string{path}, time.Second)

	start := time.Unix(100, 0)
	if got := r.Name(start); got != "Sonic" {
		t.Fatalf("Name() = %q", got)
	}

	writeFile(t, dir, "ROM", "Tetris\n")
	if got := r.Name(start.Add(500 * time.Millisecond)); got != "Sonic" {
		t.Errorf("cached Name() = %q, want Sonic", got)
	}
	if got := r.Name(start.Add(1500 * time.Millisecond)); got != "Tetris" {
		t.Errorf("refreshed Name() = %q, want Tetris", got)
	}
}
