package ascal

// Triple buffer offsets relative to BaseAddress.
const (
	smallBuffer1 = 0x00200000
	smallBuffer2 = 0x00400000
	largeBuffer1 = 0x00800000
	largeBuffer2 = 0x01000000

	counterOffset = 5
)

// Layout describes which buffer offsets hold frames.
type Layout struct {
	Triple bool `json:"triple"`
	Large  bool `json:"large"`
}

func (l Layout) String() string {
	switch {
	case !l.Triple:
		return "single"
	case l.Large:
		return "triple-large"
	default:
		return "triple-small"
	}
}

// BufferOffset returns the byte offset of buffer index (0..2).
func BufferOffset(large bool, index int) int {
	switch {
	case index <= 0:
		return 0
	case large && index == 1:
		return largeBuffer1
	case large:
		return largeBuffer2
	case index == 1:
		return smallBuffer1
	default:
		return smallBuffer2
	}
}

// Offset returns the byte offset of buffer index under this layout.
func (l Layout) Offset(index int) int {
	if !l.Triple {
		return 0
	}
	return BufferOffset(l.Large, index)
}

// DetectLayout probes the triple buffer slots to tell the small layout from
// the large one. The large layout is chosen only when the small slot holds
// no header and the large slot does.
func DetectLayout(mem []byte, h Header) Layout {
	if !h.TripleBuffered() {
		return Layout{}
	}
	large := !headerAt(mem, smallBuffer1) && headerAt(mem, largeBuffer1)
	return Layout{Triple: true, Large: large}
}

func headerAt(mem []byte, off int) bool {
	if off < 0 || off+HeaderSize > len(mem) {
		return false
	}
	return decodeHeader(mem[off:]).Valid()
}

// BufferCounters reads the attribute low byte of each buffer header.
// Buffers 1 and 2 read as zero unless the layout is triple buffered.
func BufferCounters(mem []byte, l Layout) [3]uint8 {
	var c [3]uint8
	c[0] = byteAt(mem, counterOffset)
	if l.Triple {
		c[1] = byteAt(mem, l.Offset(1)+counterOffset)
		c[2] = byteAt(mem, l.Offset(2)+counterOffset)
	}
	return c
}

// CounterSum folds the buffer counters into one value that moves whenever
// any buffer receives a frame.
func CounterSum(c [3]uint8) uint16 {
	return uint16(c[0]) + uint16(c[1]) + uint16(c[2])
}

func byteAt(mem []byte, off int) uint8 {
	if off < 0 || off >= len(mem) {
		return 0
	}
	return mem[off]
}

// SelectBuffer returns the buffer whose counter advanced the most since prev.
// Differences wrap modulo 256; ties go to the lower index.
func SelectBuffer(prev, curr [3]uint8, triple bool) int {
	if !triple {
		return 0
	}
	best := 0
	bestDiff := curr[0] - prev[0]
	for i := 1; i < 3; i++ {
		if d := curr[i] - prev[i]; d > bestDiff {
			best, bestDiff = i, d
		}
	}
	return best
}
