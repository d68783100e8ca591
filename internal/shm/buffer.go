// Package shm allocates ARGB8888 pixel buffers in anonymous shared memory
// for handing to the compositor.
package shm

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// BytesPerPixel for ARGB8888.
const BytesPerPixel = 4

// Buffer is a memfd-backed pixel buffer mapped into this process.
type Buffer struct {
	Width  int
	Height int
	Stride int

	fd   int
	data []byte
}

// NewBuffer allocates a width x height buffer.
func NewBuffer(width, height int) (*Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("shm: invalid buffer size %dx%d", width, height)
	}
	stride := width * BytesPerPixel
	size := stride * height

	fd, err := unix.MemfdCreate("creak-shm", unix.MFD_CLOEXEC|unix.MFD_ALLOW_SEALING)
	if err != nil {
		return nil, fmt.Errorf("shm: memfd_create: %w", err)
	}
	if err := unix.Ftruncate(fd, int64(size)); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("shm: ftruncate: %w", err)
	}
	// The compositor maps the same pages; shrinking them under it would fault.
	_, _ = unix.FcntlInt(uintptr(fd), unix.F_ADD_SEALS, unix.F_SEAL_SHRINK|unix.F_SEAL_SEAL)

	data, err := unix.Mmap(fd, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("shm: mmap: %w", err)
	}

	return &Buffer{Width: width, Height: height, Stride: stride, fd: fd, data: data}, nil
}

// Fd returns the memfd to share with the compositor.
func (b *Buffer) Fd() int { return b.fd }

// Size returns the mapping size in bytes.
func (b *Buffer) Size() int { return len(b.data) }

// Pixels returns the mapped memory.
func (b *Buffer) Pixels() []byte { return b.data }

// Close unmaps the memory and closes the descriptor. It is safe to call more
// than once.
func (b *Buffer) Close() error {
	var errs []error
	if b.data != nil {
		if err := unix.Munmap(b.data); err != nil {
			errs = append(errs, fmt.Errorf("shm: munmap: %w", err))
		}
		b.data = nil
	}
	if b.fd >= 0 {
		if err := unix.Close(b.fd); err != nil {
			errs = append(errs, fmt.Errorf("shm: close: %w", err))
		}
		b.fd = -1
	}
	return errors.Join(errs...)
}
