package colors

import "testing"

func TestHex(t *testing.T) {
	if got := (RGB{0x12, 0xAB, 0x0F}).Hex(); got != "#12AB0F" {
		t.Errorf("Hex() = %q, want #12AB0F", got)
	}
	if got := (RGB{1, 2, 3}).Packed(); got != 0x010203 {
		t.Errorf("Packed() = %#x", got)
	}
}

func TestKey565RoundTrip(t *testing.T) {
	tests := []RGB{red, white, black, {0, 0, 255}, {0, 255, 0}}
	for _, c := range tests {
		if got := From565(c.Key565()); got != c {
			t.Errorf("From565(Key565(%s)) = %s", c.Hex(), got.Hex())
		}
	}
}

func TestAccumulatorSRGB(t *testing.T) {
	a := NewAccumulator(SpaceSRGB)
	if got := a.Mean(); got != (RGB{}) {
		t.Errorf("empty Mean() = %v, want black", got)
	}
	a.Add(RGB{0, 0, 0})
	a.Add(RGB{255, 255, 255})
	if got := a.Mean(); got != (RGB{127, 127, 127}) {
		t.Errorf("Mean() = %v, want #7F7F7F", got.Hex())
	}
	if got := a.MeanFloat(); got != [3]float64{127.5, 127.5, 127.5} {
		t.Errorf("MeanFloat() = %v", got)
	}
	if a.Count() != 2 {
		t.Errorf("Count() = %d", a.Count())
	}
	a.Reset()
	if a.Count() != 0 {
		t.Error("Reset() should clear samples")
	}
}

func TestAccumulatorLinear(t *testing.T) {
	a := NewAccumulator(SpaceLinear)
	a.Add(RGB{0, 0, 0})
	a.Add(RGB{255, 255, 255})
	got := a.Mean()
	// Half linear intensity is about 188 in sRGB.
	if got.R < 185 || got.R > 190 || got.R != got.G || got.G != got.B {
		t.Errorf("linear Mean() = %s, want about #BCBCBC", got.Hex())
	}

	a = NewAccumulator(SpaceLinear)
	a.Add(red)
	if got := a.Mean(); got != red {
		t.Errorf("single sample linear Mean() = %s, want %s", got.Hex(), red.Hex())
	}
}

func TestParseSpace(t *testing.T) {
	if s, err := ParseSpace("linear"); err != nil || s != SpaceLinear {
		t.Errorf("ParseSpace(linear) = %v, %v", s, err)
	}
	if s, err := ParseSpace(""); err != nil || s != SpaceSRGB {
		t.Errorf("ParseSpace(\"\") = %v, %v", s, err)
	}
	if _, err := ParseSpace("lab"); err == nil {
		t.Error("ParseSpace(lab) should fail")
	}
}

func TestHistogramMode(t *testing.T) {
	h := NewHistogram565()

	h.Begin()
	if got := h.Mode(); got != (RGB{}) {
		t.Errorf("empty Mode() = %s", got.Hex())
	}

	h.Add(red)
	h.Add(blue)
	h.Add(blue)
	h.Add(RGB{250, 3, 7}) // same 5-6-5 bin as red
	h.Add(red)
	if got := h.Mode(); got != red {
		t.Errorf("Mode() = %s, want red", got.Hex())
	}
	if h.modeCount != 3 {
		t.Errorf("modeCount = %d, want 3", h.modeCount)
	}

	// A new frame starts empty.
	h.Begin()
	h.Add(white)
	if got := h.Mode(); got != white {
		t.Errorf("Mode() after Begin = %s, want white", got.Hex())
	}
	if h.modeCount != 1 {
		t.Errorf("modeCount after Begin = %d, want 1", h.modeCount)
	}
}

func TestHistogramFirstToTopWins(t *testing.T) {
	h := NewHistogram565()
	h.Begin()
	h.Add(green)
	h.Add(blue)
	h.Add(green)
	h.Add(blue)
	if got := h.Mode(); got != green {
		t.Errorf("Mode() = %s, want green", got.Hex())
	}
}
