package cmd

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/smazurov/scalerwatch/internal/colors"
	"github.com/smazurov/scalerwatch/internal/recorder"
	"github.com/smazurov/scalerwatch/internal/report"
	"github.com/smazurov/scalerwatch/pkg/ascal"
)

func scalerMemory(h ascal.Header) []byte {
	mem := make([]byte, int(h.HeaderLen)+int(h.Height)*int(h.Line))
	mem[0] = h.Type
	mem[1] = uint8(h.Format)
	be := binary.BigEndian
	be.PutUint16(mem[2:], h.HeaderLen)
	be.PutUint16(mem[4:], h.Attributes)
	be.PutUint16(mem[6:], h.Width)
	be.PutUint16(mem[8:], h.Height)
	be.PutUint16(mem[10:], h.Line)
	be.PutUint16(mem[12:], h.OutWidth)
	be.PutUint16(mem[14:], h.OutHeight)
	return mem
}

func TestProbe(t *testing.T) {
	h := ascal.Header{
		Type: ascal.TypeTag, Format: ascal.FormatRGB16, HeaderLen: ascal.HeaderSize,
		Attributes: 3 << 5, Width: 64, Height: 64, Line: 128, OutWidth: 1280, OutHeight: 720,
	}
	mem := scalerMemory(h)

	res, err := Probe(mem, 0)
	if err != nil {
		t.Fatal(err)
	}
	if res.Format != "RGB16" || res.BytesPerPixel != 2 || res.Layout != "single" || res.Buffer != 0 {
		t.Errorf("got %+v", res)
	}
	if res.FrameCounter != 3 || res.Header.Width != 64 {
		t.Errorf("header fields wrong: %+v", res)
	}
	if res.Variant == nil || res.Variant.Samples != 4 {
		t.Fatalf("variant = %+v, want detection over 4 samples", res.Variant)
	}

	var text bytes.Buffer
	if err := WriteProbe(&text, res, false); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"RGB16 (2 bytes/pixel)", "64x64 line=128 output=1280x720", "variant:"} {
		if !strings.Contains(text.String(), want) {
			t.Errorf("text output missing %q:\n%s", want, text.String())
		}
	}

	var js bytes.Buffer
	if err := WriteProbe(&js, res, true); err != nil {
		t.Fatal(err)
	}
	var decoded ProbeResult
	if err := json.Unmarshal(js.Bytes(), &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Variant == nil || decoded.Variant.Name != res.Variant.Name {
		t.Errorf("json round trip lost the variant: %s", js.String())
	}
}

func TestProbeRGB24HasNoVariant(t *testing.T) {
	mem := scalerMemory(ascal.Header{
		Type: ascal.TypeTag, Format: ascal.FormatRGB24, HeaderLen: ascal.HeaderSize,
		Width: 8, Height: 8, Line: 24,
	})
	res, err := Probe(mem, 0)
	if err != nil {
		t.Fatal(err)
	}
	if res.Variant != nil {
		t.Errorf("variant = %+v, want none for RGB24", res.Variant)
	}
}

func TestProbeNoHeader(t *testing.T) {
	mem := make([]byte, 64)
	if _, err := Probe(mem, 0); !errors.Is(err, ascal.ErrHeaderNotFound) {
		t.Errorf("err = %v, want ErrHeaderNotFound", err)
	}
}

func writeRecording(t *testing.T, reports ...report.Report) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "frames.rec")
	w, err := recorder.Create(path, false)
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range reports {
		if err := w.RecordReport(r); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDump(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	path := writeRecording(t,
		report.Report{Timestamp: base, Changed: true, Color: colors.RGB{R: 255}, ColorName: "Red"},
		report.Report{Timestamp: base.Add(time.Second), Color: colors.RGB{R: 255}, ColorName: "Red", Unchanged: 1},
		report.Report{Timestamp: base.Add(2 * time.Second), Changed: true, Color: colors.RGB{B: 255}, ColorName: "Blue"},
	)

	tests := []struct {
		name        string
		limit       int
		changesOnly bool
		wantNames   []string
	}{
		{"all", 0, false, []string{"Red", "Red", "Blue"}},
		{"limit", 2, false, []string{"Red", "Red"}},
		{"changes only", 0, true, []string{"Red", "Blue"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := openFile(t, path)
			var out bytes.Buffer
			n, err := Dump(f, &out, tt.limit, tt.changesOnly)
			if err != nil {
				t.Fatal(err)
			}
			if n != len(tt.wantNames) {
				t.Errorf("n = %d, want %d", n, len(tt.wantNames))
			}

			var names []string
			sc := bufio.NewScanner(&out)
			for sc.Scan() {
				var r report.Report
				if err := json.Unmarshal(sc.Bytes(), &r); err != nil {
					t.Fatalf("line %q: %v", sc.Text(), err)
				}
				names = append(names, r.ColorName)
			}
			if strings.Join(names, ",") != strings.Join(tt.wantNames, ",") {
				t.Errorf("names = %v, want %v", names, tt.wantNames)
			}
		})
	}
}

func TestDumpBadMagic(t *testing.T) {
	_, err := Dump(strings.NewReader("NOTAREC0rest"), &bytes.Buffer{}, 0, false)
	if !errors.Is(err, recorder.ErrBadMagic) {
		t.Errorf("err = %v, want ErrBadMagic", err)
	}
}

func openFile(t *testing.T, path string) *os.File {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}
