package colors

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Space selects how channel averages are computed.
type Space int

// Averaging spaces.
const (
	SpaceSRGB Space = iota
	SpaceLinear
)

func (s Space) String() string {
	if s == SpaceLinear {
		return "linear"
	}
	return "srgb"
}

// ParseSpace parses "srgb" or "linear".
func ParseSpace(s string) (Space, error) {
	switch strings.ToLower(s) {
	case "", "srgb":
		return SpaceSRGB, nil
	case "linear":
		return SpaceLinear, nil
	default:
		return SpaceSRGB, fmt.Errorf("unknown averaging space %q", s)
	}
}

// Accumulator sums samples for a frame average.
type Accumulator struct {
	space      Space
	n          uint64
	r, g, b    uint64
	lr, lg, lb float64
}

// NewAccumulator creates an accumulator averaging in space.
func NewAccumulator(space Space) *Accumulator {
	return &Accumulator{space: space}
}

// Reset clears the sums.
func (a *Accumulator) Reset() {
	*a = Accumulator{space: a.space}
}

// Add adds one sample.
func (a *Accumulator) Add(c RGB) {
	a.n++
	a.r += uint64(c.R)
	a.g += uint64(c.G)
	a.b += uint64(c.B)
	if a.space == SpaceLinear {
		r, g, b := c.colorful().LinearRgb()
		a.lr += r
		a.lg += g
		a.lb += b
	}
}

// Count returns the number of samples.
func (a *Accumulator) Count() uint64 {
	return a.n
}

// MeanFloat returns the sRGB channel means, zero without samples.
func (a *Accumulator) MeanFloat() [3]float64 {
	if a.n == 0 {
		return [3]float64{}
	}
	n := float64(a.n)
	return [3]float64{float64(a.r) / n, float64(a.g) / n, float64(a.b) / n}
}

// Mean returns the average color in the accumulator's space.
func (a *Accumulator) Mean() RGB {
	if a.n == 0 {
		return RGB{}
	}
	if a.space == SpaceLinear {
		n := float64(a.n)
		return fromColorful(colorful.LinearRgb(a.lr/n, a.lg/n, a.lb/n))
	}
	return RGB{R: uint8(a.r / a.n), G: uint8(a.g / a.n), B: uint8(a.b / a.n)}
}

// Histogram565 counts samples in 5-6-5 bins. Each bin carries the epoch it
// was last touched in, so Begin starts a new frame without clearing.
type Histogram565 struct {
	epoch     uint32
	stamp     [1 << 16]uint32
	count     [1 << 16]uint32
	modeKey   uint16
	modeCount uint32
}

// NewHistogram565 allocates a histogram.
func NewHistogram565() *Histogram565 {
	return &Histogram565{}
}

// Begin starts a new frame.
func (h *Histogram565) Begin() {
	h.epoch++
	if h.epoch == 0 {
		h.stamp = [1 << 16]uint32{}
		h.epoch = 1
	}
	h.modeKey, h.modeCount = 0, 0
}

// Add counts one sample.
func (h *Histogram565) Add(c RGB) {
	key := c.Key565()
	if h.stamp[key] != h.epoch {
		h.stamp[key] = h.epoch
		h.count[key] = 0
	}
	h.count[key]++
	if n := h.count[key]; n > h.modeCount {
		h.modeKey, h.modeCount = key, n
	}
}

// Mode returns the most frequent bin expanded to 8 bits. The first bin to
// reach the top count wins.
func (h *Histogram565) Mode() RGB {
	if h.modeCount == 0 {
		return RGB{}
	}
	return From565(h.modeKey)
}
