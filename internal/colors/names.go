package colors

import (
	"fmt"
	"math"
	"strings"
)

// NamedColor is a palette entry.
type NamedColor struct {
	Name    string
	R, G, B uint8
}

// Palette is a list of named reference colors.
type Palette []NamedColor

// BasicPalette is the short table used by the status line output.
var BasicPalette = Palette{
	{"Black", 0, 0, 0},
	{"White", 255, 255, 255},
	{"Red", 255, 0, 0},
	{"Green", 0, 255, 0},
	{"Blue", 0, 0, 255},
	{"Yellow", 255, 255, 0},
	{"Cyan", 0, 255, 255},
	{"Magenta", 255, 0, 255},
	{"Gray", 128, 128, 128},
	{"Orange", 255, 165, 0},
	{"Purple", 128, 0, 128},
	{"Pink", 255, 192, 203},
}

// WebPalette is the HTML 4 color set plus a few common extras.
var WebPalette = Palette{
	{"Black", 0, 0, 0},
	{"White", 255, 255, 255},
	{"Red", 255, 0, 0},
	{"Lime", 0, 255, 0},
	{"Blue", 0, 0, 255},
	{"Yellow", 255, 255, 0},
	{"Cyan", 0, 255, 255},
	{"Magenta", 255, 0, 255},
	{"Silver", 192, 192, 192},
	{"Gray", 128, 128, 128},
	{"Maroon", 128, 0, 0},
	{"Olive", 128, 128, 0},
	{"Green", 0, 128, 0},
	{"Purple", 128, 0, 128},
	{"Teal", 0, 128, 128},
	{"Navy", 0, 0, 128},
	{"Orange", 255, 165, 0},
	{"Pink", 255, 192, 203},
	{"Brown", 165, 42, 42},
	{"Gold", 255, 215, 0},
}

// Nearest returns the name of the closest entry by squared RGB distance.
// The first entry wins ties.
func (p Palette) Nearest(c RGB) string {
	if len(p) == 0 {
		return ""
	}
	best, bestDist := 0, math.MaxInt
	for i, e := range p {
		dr := int(c.R) - int(e.R)
		dg := int(c.G) - int(e.G)
		db := int(c.B) - int(e.B)
		if d := dr*dr + dg*dg + db*db; d < bestDist {
			best, bestDist = i, d
		}
	}
	return p[best].Name
}

// Namer maps a color to a human-readable label.
type Namer func(RGB) string

type hueBucket struct {
	from, to float64 // degrees, [from, to)
	name     string
}

var hsvBuckets = []hueBucket{
	{15, 45, "Orange"},
	{45, 70, "Yellow"},
	{70, 160, "Green"},
	{160, 200, "Cyan"},
	{200, 260, "Blue"},
	{260, 290, "Purple"},
	{290, 345, "Magenta"},
}

// HSVName labels a color by HSV hue bucket, with value and saturation
// thresholds for the neutrals.
func HSVName(c RGB) string {
	h, s, v := c.colorful().Hsv()
	switch {
	case v < 0.12:
		return "Black"
	case s < 0.15 && v > 0.85:
		return "White"
	case s < 0.15:
		return "Gray"
	}
	return bucket(hsvBuckets, h, "Red")
}

var labBuckets = []hueBucket{
	{20, 60, "Red"},
	{60, 85, "Orange"},
	{85, 120, "Yellow"},
	{120, 170, "Green"},
	{170, 230, "Cyan"},
	{230, 315, "Blue"},
	{315, 345, "Magenta"},
}

// LabName labels a color by CIE LCh(ab) hue angle. Lightness splits the
// dark variants of red, orange and magenta.
func LabName(c RGB) string {
	h, chroma, l := c.colorful().Hcl()
	chroma *= 100
	l *= 100
	if chroma < 10 {
		switch {
		case l > 85:
			return "White"
		case l < 15:
			return "Black"
		default:
			return "Gray"
		}
	}
	name := bucket(labBuckets, h, "Pink")
	switch {
	case (name == "Red" || name == "Orange") && l < 40:
		return "Brown"
	case name == "Magenta" && l < 45:
		return "Purple"
	}
	return name
}

func bucket(buckets []hueBucket, h float64, fallback string) string {
	for _, b := range buckets {
		if h >= b.from && h < b.to {
			return b.name
		}
	}
	return fallback
}

// NamerFor returns the namer registered under name: basic, web, hsv or lab.
func NamerFor(name string) (Namer, error) {
	switch strings.ToLower(name) {
	case "basic":
		return BasicPalette.Nearest, nil
	case "", "web":
		return WebPalette.Nearest, nil
	case "hsv":
		return HSVName, nil
	case "lab":
		return LabName, nil
	default:
		return nil, fmt.Errorf("unknown color namer %q", name)
	}
}
