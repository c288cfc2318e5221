package recorder

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/smazurov/scalerwatch/internal/colors"
	"github.com/smazurov/scalerwatch/internal/report"
)

func readAll(t *testing.T, path string) []report.Report {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	rd, err := NewReader(f)
	if err != nil {
		t.Fatalf("NewReader() error = %v", err)
	}
	var out []report.Report
	for {
		rec, err := rd.Next()
		if errors.Is(err, io.EOF) {
			return out
		}
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		var r report.Report
		if err := rec.Decode(&r); err != nil {
			t.Fatalf("Decode() error = %v", err)
		}
		if !rec.Time.Equal(r.Timestamp) {
			t.Errorf("record time %v != report time %v", rec.Time, r.Timestamp)
		}
		out = append(out, r)
	}
}

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.scw")
	w, err := Create(path, false)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		r := report.Report{
			Timestamp: start.Add(time.Duration(i) * 16 * time.Millisecond),
			Samples:   100 + i,
			Color:     colors.RGB{R: uint8(i)},
			Game:      "Metroid",
		}
		if err := w.RecordReport(r); err != nil {
			t.Fatalf("RecordReport() error = %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := w.RecordReport(report.Report{}); !errors.Is(err, ErrClosed) {
		t.Errorf("RecordReport after Close = %v, want ErrClosed", err)
	}

	got := readAll(t, path)
	if len(got) != 3 {
		t.Fatalf("read %d records, want 3", len(got))
	}
	for i, r := range got {
		if r.Samples != 100+i || r.Color.R != uint8(i) || r.Game != "Metroid" {
			t.Errorf("record %d = %+v", i, r)
		}
	}

	// Reopening appends without a second magic.
	w, err = Create(path, false)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if err := w.RecordReport(report.Report{Timestamp: start, Samples: 7}); err != nil {
		t.Fatal(err)
	}
	w.Close()
	if got := readAll(t, path); len(got) != 4 || got[3].Samples != 7 {
		t.Errorf("after append read %d records", len(got))
	}
}

func TestChangesOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "changes.scw")
	w, err := Create(path, true)
	if err != nil {
		t.Fatal(err)
	}
	now := time.Now()
	for _, changed := range []bool{true, false, false, true} {
		if err := w.RecordReport(report.Report{Timestamp: now, Changed: changed}); err != nil {
			t.Fatal(err)
		}
	}
	if w.Count() != 2 {
		t.Errorf("Count() = %d, want 2", w.Count())
	}
	w.Close()
	if got := readAll(t, path); len(got) != 2 {
		t.Errorf("read %d records, want 2", len(got))
	}
}

func TestBadMagic(t *testing.T) {
	if _, err := NewReader(bytes.NewReader([]byte("NOTMAGIC...."))); !errors.Is(err, ErrBadMagic) {
		t.Errorf("NewReader() error = %v, want ErrBadMagic", err)
	}

	path := filepath.Join(t.TempDir(), "other.bin")
	if err := os.WriteFile(path, []byte("something else"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Create(path, false); !errors.Is(err, ErrBadMagic) {
		t.Errorf("Create() error = %v, want ErrBadMagic", err)
	}
}

func TestTruncatedRecord(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString(Magic)
	buf.Write([]byte{1, 2, 3})

	rd, err := NewReader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := rd.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("Next() on truncated record = %v, want io.EOF", err)
	}
}
