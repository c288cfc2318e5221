// Package pixel converts scaler pixels to RGB and lays out sampling grids.
package pixel

import (
	"github.com/smazurov/scalerwatch/internal/colors"
	"github.com/smazurov/scalerwatch/pkg/ascal"
)

// Loader decodes one pixel. p holds at least the pixel's bytes.
type Loader func(p []byte) colors.RGB

func expand5(v uint16) uint8 { return uint8(uint32(v&0x1F) * 255 / 31) }
func expand6(v uint16) uint8 { return uint8(uint32(v&0x3F) * 255 / 63) }

func le16(p []byte) uint16 { return uint16(p[0]) | uint16(p[1])<<8 }
func be16(p []byte) uint16 { return uint16(p[0])<<8 | uint16(p[1]) }

// RGB565LE decodes little-endian RGB565.
func RGB565LE(p []byte) colors.RGB {
	v := le16(p)
	return colors.RGB{R: expand5(v >> 11), G: expand6(v >> 5), B: expand5(v)}
}

// RGB565BE decodes big-endian RGB565.
func RGB565BE(p []byte) colors.RGB {
	v := be16(p)
	return colors.RGB{R: expand5(v >> 11), G: expand6(v >> 5), B: expand5(v)}
}

// BGR565LE decodes little-endian BGR565.
func BGR565LE(p []byte) colors.RGB {
	v := le16(p)
	return colors.RGB{R: expand5(v), G: expand6(v >> 5), B: expand5(v >> 11)}
}

// BGR565BE decodes big-endian BGR565.
func BGR565BE(p []byte) colors.RGB {
	v := be16(p)
	return colors.RGB{R: expand5(v), G: expand6(v >> 5), B: expand5(v >> 11)}
}

// RGB24 decodes packed R, G, B bytes.
func RGB24(p []byte) colors.RGB {
	return colors.RGB{R: p[0], G: p[1], B: p[2]}
}

// BGR24 decodes packed B, R, G bytes as exposed by early scaler cores.
func BGR24(p []byte) colors.RGB {
	return colors.RGB{R: p[1], G: p[2], B: p[0]}
}

// RGBA32 decodes R, G, B, A bytes; alpha is ignored.
func RGBA32(p []byte) colors.RGB {
	return colors.RGB{R: p[0], G: p[1], B: p[2]}
}

// Variant is a named 16-bit loader candidate.
type Variant struct {
	Name string
	Load Loader
}

// Variants16 lists the 16-bit byte-order and channel-order candidates.
var Variants16 = []Variant{
	{"RGB565-LE", RGB565LE},
	{"RGB565-BE", RGB565BE},
	{"BGR565-LE", BGR565LE},
	{"BGR565-BE", BGR565BE},
}

// VariantByName returns the 16-bit variant with the given name.
func VariantByName(name string) (Variant, bool) {
	for _, v := range Variants16 {
		if v.Name == name {
			return v, true
		}
	}
	return Variant{}, false
}

// LoaderFor returns the loader for a scaler format. rgb16 is used for
// FormatRGB16 and defaults to RGB565LE. Unknown formats return nil.
func LoaderFor(format ascal.PixelFormat, rgb16 Loader) Loader {
	switch format {
	case ascal.FormatRGB16:
		if rgb16 == nil {
			return RGB565LE
		}
		return rgb16
	case ascal.FormatRGB24:
		return RGB24
	case ascal.FormatRGBA32:
		return RGBA32
	default:
		return nil
	}
}

// Grid returns the byte offsets of every step-th pixel in both axes,
// row-major, relative to the first pixel.
func Grid(width, height, line, bpp, step int) []int {
	if step < 1 {
		step = 1
	}
	if width <= 0 || height <= 0 || bpp <= 0 {
		return nil
	}
	offs := make([]int, 0, ((width+step-1)/step)*((height+step-1)/step))
	for y := 0; y < height; y += step {
		row := y * line
		for x := 0; x < width; x += step {
			offs = append(offs, row+x*bpp)
		}
	}
	return offs
}
