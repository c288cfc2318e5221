package pixel

const (
	detectStride     = 32
	detectMaxSamples = 1200
	flatVariance     = 1.0
	scoreEpsilon     = 1e-9
)

// Detection is the outcome of 16-bit variant detection.
type Detection struct {
	Variant Variant
	Samples int
	Score   float64
	Flat    int
}

// Detect16 picks the 16-bit variant that makes the frame look most like a
// picture. Every candidate decodes the same sparse sample; the one with the
// fewest flat channels wins, then the one with the highest summed channel
// variance. Ties keep the earlier candidate.
func Detect16(pix []byte, width, height, line int) Detection {
	best := Detection{Variant: Variants16[0], Score: -1, Flat: 4}
	for _, cand := range Variants16 {
		var stats [3]welford
		n := 0
		for y := 0; y < height && n < detectMaxSamples; y += detectStride {
			row := y * line
			for x := 0; x < width && n < detectMaxSamples; x += detectStride {
				off := row + x*2
				if off < 0 || off+2 > len(pix) {
					continue
				}
				c := cand.Load(pix[off : off+2])
				stats[0].add(float64(c.R))
				stats[1].add(float64(c.G))
				stats[2].add(float64(c.B))
				n++
			}
		}

		score, flat := 0.0, 0
		for i := range stats {
			v := stats[i].variance()
			if v < flatVariance {
				flat++
			}
			score += v
		}

		if flat < best.Flat || (flat == best.Flat && score > best.Score+scoreEpsilon) {
			best = Detection{Variant: cand, Samples: n, Score: score, Flat: flat}
		}
	}
	return best
}

// welford tracks a running mean and variance.
type welford struct {
	n    float64
	mean float64
	m2   float64
}

func (w *welford) add(x float64) {
	w.n++
	d := x - w.mean
	w.mean += d / w.n
	w.m2 += d * (x - w.mean)
}

func (w *welford) variance() float64 {
	if w.n < 2 {
		return 0
	}
	return w.m2 / (w.n - 1)
}
