//go:build !linux

package ascal

// Region is a read-only mapping of physical memory.
type Region struct{}

// Open is only implemented on Linux.
func Open(_ string, _ int64, _ int) (*Region, error) {
	return nil, ErrUnsupported
}

// Bytes returns nil.
func (r *Region) Bytes() []byte { return nil }

// Close is a no-op.
func (r *Region) Close() error { return nil }
