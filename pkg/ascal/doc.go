// Package ascal decodes the MiSTer ASCAL scaler framebuffer header and
// maps the scaler's memory window read-only.
//
// The scaler writes its output frame into physical memory at BaseAddress.
// Each buffer starts with a packed big-endian header:
//
//	offset  size  field
//	0       1     type (0x01)
//	1       1     pixel format (0 RGB16, 1 RGB24, 2 RGBA32)
//	2       2     header length (pixel data offset)
//	4       2     attributes (bit 4 triple buffering, bits 7..5 frame counter)
//	6       2     width
//	8       2     height
//	10      2     line (stride in bytes)
//	12      2     output width
//	14      2     output height
//
// # Mapping memory
//
//	region, err := ascal.Open(ascal.DevMem, ascal.BaseAddress, ascal.MapLength)
//	if err != nil {
//	    return err
//	}
//	defer region.Close()
//
//	hdr, err := ascal.ParseHeader(region.Bytes())
//
// Only Linux can map /dev/mem; other platforms get ErrUnsupported from Open,
// while header decoding and buffer selection work everywhere.
package ascal
