package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/smazurov/scalerwatch/internal/pixel"
	"github.com/smazurov/scalerwatch/pkg/ascal"
	"github.com/spf13/cobra"
)

// Target names the memory window to map.
type Target struct {
	Device string
	Base   int64
	Length int
}

// ProbeResult is a one-shot view of the scaler state.
type ProbeResult struct {
	Header        ascal.Header   `json:"header"`
	Format        string         `json:"format"`
	BytesPerPixel int            `json:"bytes_per_pixel"`
	Layout        string         `json:"layout"`
	FrameCounter  uint8          `json:"frame_counter"`
	Counters      [3]uint8       `json:"counters"`
	Buffer        int            `json:"buffer"`
	Variant       *VariantResult `json:"variant,omitempty"`
}

// VariantResult summarizes 16-bit variant detection.
type VariantResult struct {
	Name    string  `json:"name"`
	Samples int     `json:"samples"`
	Flat    int     `json:"flat_channels"`
	Score   float64 `json:"score"`
}

// Probe reads the header, samples the buffer counters twice settle apart to
// find the active buffer, and runs 16-bit variant detection on it.
func Probe(mem []byte, settle time.Duration) (ProbeResult, error) {
	h, err := ascal.ParseHeader(mem)
	if err != nil {
		return ProbeResult{}, err
	}
	layout := ascal.DetectLayout(mem, h)

	before := ascal.BufferCounters(mem, layout)
	if settle > 0 {
		time.Sleep(settle)
	}
	after := ascal.BufferCounters(mem, layout)
	buf := ascal.SelectBuffer(before, after, layout.Triple)

	res := ProbeResult{
		Header:        h,
		Format:        h.Format.String(),
		BytesPerPixel: h.Format.BytesPerPixel(),
		Layout:        layout.String(),
		FrameCounter:  h.FrameCounter(),
		Counters:      after,
		Buffer:        buf,
	}
	if h.Format == ascal.FormatRGB16 {
		if off := layout.Offset(buf) + int(h.HeaderLen); off < len(mem) {
			d := pixel.Detect16(mem[off:], int(h.Width), int(h.Height), int(h.Line))
			res.Variant = &VariantResult{Name: d.Variant.Name, Samples: d.Samples, Flat: d.Flat, Score: d.Score}
		}
	}
	return res, nil
}

// WriteProbe prints res as text or indented JSON.
func WriteProbe(w io.Writer, res ProbeResult, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	h := res.Header
	fmt.Fprintf(w, "format:    %s (%d bytes/pixel)\n", res.Format, res.BytesPerPixel)
	fmt.Fprintf(w, "geometry:  %dx%d line=%d output=%dx%d\n", h.Width, h.Height, h.Line, h.OutWidth, h.OutHeight)
	fmt.Fprintf(w, "header:    len=%d attributes=%#04x frame_counter=%d\n", h.HeaderLen, h.Attributes, res.FrameCounter)
	fmt.Fprintf(w, "layout:    %s counters=%v active=%d\n", res.Layout, res.Counters, res.Buffer)
	if v := res.Variant; v != nil {
		fmt.Fprintf(w, "variant:   %s (samples=%d flat=%d score=%.1f)\n", v.Name, v.Samples, v.Flat, v.Score)
	}
	return nil
}

// CreateProbeCmd creates the probe command.
func CreateProbeCmd(target func() Target) *cobra.Command {
	var settle time.Duration
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Print the scaler header and buffer state once",
		Long: `Maps the scaler memory window, decodes the header and buffer layout, finds the ` +
			`active buffer and, for 16-bit output, reports the detected pixel variant.`,
		Args: cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			t := target()
			region, err := ascal.Open(t.Device, t.Base, t.Length)
			if err != nil {
				fmt.Fprintln(os.Stderr, "probe:", err)
				os.Exit(1)
			}
			res, err := Probe(region.Bytes(), settle)
			region.Close()

			switch {
			case errors.Is(err, ascal.ErrHeaderNotFound):
				fmt.Fprintf(os.Stderr, "probe: no scaler header at %#x\n", t.Base)
				os.Exit(3)
			case err != nil:
				fmt.Fprintln(os.Stderr, "probe:", err)
				os.Exit(1)
			}
			if err := WriteProbe(os.Stdout, res, asJSON); err != nil {
				os.Exit(1)
			}
		},
	}

	cmd.Flags().DurationVar(&settle, "settle", 50*time.Millisecond, "Delay between the two counter reads")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of text")
	return cmd
}
