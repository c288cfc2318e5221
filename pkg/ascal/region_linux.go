//go:build linux

package ascal

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Region is a read-only mapping of physical memory.
type Region struct {
	fd   int
	data []byte
}

// Open maps length bytes of path starting at base.
func Open(path string, base int64, length int) (*Region, error) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_SYNC|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	data, err := unix.Mmap(fd, base, length, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("mmap %s at %#x: %w", path, base, err)
	}
	return &Region{fd: fd, data: data}, nil
}

// Bytes returns the mapped memory. The slice is invalid after Close.
func (r *Region) Bytes() []byte {
	return r.data
}

// Close unmaps the memory and closes the file.
func (r *Region) Close() error {
	if r.data == nil {
		return nil
	}
	err := unix.Munmap(r.data)
	r.data = nil
	if cerr := unix.Close(r.fd); err == nil {
		err = cerr
	}
	return err
}
