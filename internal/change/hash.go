// Package change decides whether sampled frames differ and tracks how long
// the picture has been unchanged.
package change

import (
	"fmt"
	"strings"

	"github.com/smazurov/scalerwatch/internal/colors"
)

// HashKind selects the rolling frame hash.
type HashKind int

// Hash kinds. Both mix one pixel per step with a bijection of the state, so
// frames that differ in a single sample always hash differently.
const (
	HashXorshift HashKind = iota
	HashPoly131
)

func (k HashKind) String() string {
	if k == HashPoly131 {
		return "poly131"
	}
	return "xorshift"
}

// ParseHashKind parses "xorshift" or "poly131".
func ParseHashKind(s string) (HashKind, error) {
	switch strings.ToLower(s) {
	case "", "xorshift":
		return HashXorshift, nil
	case "poly131":
		return HashPoly131, nil
	default:
		return HashXorshift, fmt.Errorf("unknown hash %q", s)
	}
}

const xorshiftSeed = 2166136261

// Hash is a rolling hash over sampled pixels.
type Hash struct {
	kind HashKind
	h    uint32
}

// NewHash returns a hash in its initial state.
func NewHash(kind HashKind) Hash {
	h := Hash{kind: kind}
	h.Reset()
	return h
}

// Reset restores the seed.
func (h *Hash) Reset() {
	if h.kind == HashPoly131 {
		h.h = 0
		return
	}
	h.h = xorshiftSeed
}

// Add mixes one pixel into the hash.
func (h *Hash) Add(c colors.RGB) {
	if h.kind == HashPoly131 {
		h.h = h.h*131 + uint32(c.R) + uint32(c.G)<<8 + uint32(c.B)<<16
		return
	}
	x := h.h ^ c.Packed()
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	h.h = x
}

// Sum returns the current hash value.
func (h *Hash) Sum() uint32 {
	return h.h
}
