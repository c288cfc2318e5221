package monitor

import "time"

const fpsWindow = time.Second

// fpsMeter estimates the output rate from the 3-bit header frame counter.
// Counter deltas are summed modulo 8, so polls must land at least every
// eighth frame for an exact count.
type fpsMeter struct {
	primed  bool
	last    uint8
	frames  int
	started time.Time
	fps     float64
}

func (f *fpsMeter) observe(now time.Time, counter uint8) float64 {
	if !f.primed {
		f.primed = true
		f.last = counter
		f.started = now
		return f.fps
	}
	f.frames += int((counter - f.last) & 0x07)
	f.last = counter
	if el := now.Sub(f.started); el >= fpsWindow {
		f.fps = float64(f.frames) / el.Seconds()
		f.frames = 0
		f.started = now
	}
	return f.fps
}

func (f *fpsMeter) reset() {
	*f = fpsMeter{}
}
