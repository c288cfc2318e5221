// Package colors provides color statistics and naming for sampled frames.
package colors

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// RGB is an 8-bit sRGB color.
type RGB struct {
	R uint8 `json:"r" cbor:"r"`
	G uint8 `json:"g" cbor:"g"`
	B uint8 `json:"b" cbor:"b"`
}

// Hex returns the color as #RRGGBB.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

func (c RGB) String() string {
	return c.Hex()
}

// Packed returns the color as 0xRRGGBB.
func (c RGB) Packed() uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

// Key565 quantizes the color to a 5-6-5 histogram key.
func (c RGB) Key565() uint16 {
	return uint16(c.R>>3)<<11 | uint16(c.G>>2)<<5 | uint16(c.B>>3)
}

// From565 expands a 5-6-5 value to 8 bits per channel.
func From565(v uint16) RGB {
	return RGB{
		R: uint8(uint32(v>>11&0x1F) * 255 / 31),
		G: uint8(uint32(v>>5&0x3F) * 255 / 63),
		B: uint8(uint32(v&0x1F) * 255 / 31),
	}
}

func (c RGB) colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

func fromColorful(c colorful.Color) RGB {
	r, g, b := c.Clamped().RGB255()
	return RGB{R: r, G: g, B: b}
}
