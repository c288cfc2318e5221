package ascal

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Memory window of the scaler.
const (
	DevMem      = "/dev/mem"
	BaseAddress = 0x20000000
	MapLength   = 2048 * 1024 * 12
	HeaderSize  = 18
	TypeTag     = 0x01
)

// Errors.
var (
	ErrShortHeader    = errors.New("ascal: buffer shorter than header")
	ErrHeaderNotFound = errors.New("ascal: header not found")
	// ErrUnsupported is returned by Open on platforms without /dev/mem mapping.
	ErrUnsupported = errors.New("ascal: memory mapping not supported on this platform")
)

// PixelFormat is the scaler output pixel format.
type PixelFormat uint8

// Pixel formats.
const (
	FormatRGB16  PixelFormat = 0
	FormatRGB24  PixelFormat = 1
	FormatRGBA32 PixelFormat = 2
)

func (f PixelFormat) String() string {
	switch f {
	case FormatRGB16:
		return "RGB16"
	case FormatRGB24:
		return "RGB24"
	case FormatRGBA32:
		return "RGBA32"
	default:
		return "INVALID"
	}
}

// BytesPerPixel returns the pixel size, or 0 for unknown formats.
func (f PixelFormat) BytesPerPixel() int {
	switch f {
	case FormatRGB16:
		return 2
	case FormatRGB24:
		return 3
	case FormatRGBA32:
		return 4
	default:
		return 0
	}
}

// Header is the decoded scaler header.
type Header struct {
	Type       uint8       `json:"type"`
	Format     PixelFormat `json:"format"`
	HeaderLen  uint16      `json:"header_len"`
	Attributes uint16      `json:"attributes"`
	Width      uint16      `json:"width"`
	Height     uint16      `json:"height"`
	Line       uint16      `json:"line"`
	OutWidth   uint16      `json:"out_width"`
	OutHeight  uint16      `json:"out_height"`
}

// ParseHeader decodes the header at the start of b.
func ParseHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, ErrShortHeader
	}
	h := decodeHeader(b)
	if h.Type != TypeTag {
		return h, fmt.Errorf("%w: type=%d", ErrHeaderNotFound, h.Type)
	}
	return h, nil
}

func decodeHeader(b []byte) Header {
	be := binary.BigEndian
	return Header{
		Type:       b[0],
		Format:     PixelFormat(b[1]),
		HeaderLen:  be.Uint16(b[2:4]),
		Attributes: be.Uint16(b[4:6]),
		Width:      be.Uint16(b[6:8]),
		Height:     be.Uint16(b[8:10]),
		Line:       be.Uint16(b[10:12]),
		OutWidth:   be.Uint16(b[12:14]),
		OutHeight:  be.Uint16(b[14:16]),
	}
}

// TripleBuffered reports attribute bit 4.
func (h Header) TripleBuffered() bool {
	return h.Attributes&(1<<4) != 0
}

// FrameCounter returns the 3-bit frame counter in attribute bits 7..5.
func (h Header) FrameCounter() uint8 {
	return uint8(h.Attributes>>5) & 0x07
}

// Valid reports whether the header carries the scaler tag and a known format.
func (h Header) Valid() bool {
	return h.Type == TypeTag && h.Format <= FormatRGBA32
}

// GeometryEqual reports whether two headers describe the same frame layout.
func (h Header) GeometryEqual(o Header) bool {
	return h.HeaderLen == o.HeaderLen &&
		h.Width == o.Width &&
		h.Height == o.Height &&
		h.Line == o.Line &&
		h.Format == o.Format &&
		h.TripleBuffered() == o.TripleBuffered()
}
