package shm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestNewBuffer(t *testing.T) {
	b, err := NewBuffer(10, 3)
	require.NoError(t, err)
	defer b.Close()

	assert.Equal(t, 40, b.Stride)
	assert.Equal(t, 120, b.Size())
	assert.Len(t, b.Pixels(), 120)

	var st unix.Stat_t
	require.NoError(t, unix.Fstat(b.Fd(), &st))
	assert.Equal(t, int64(120), st.Size)

	// Writes through the mapping are visible through the descriptor.
	b.Pixels()[5] = 0x7f
	got := make([]byte, 8)
	_, err = unix.Pread(b.Fd(), got, 0)
	require.NoError(t, err)
	assert.Equal(t, byte(0x7f), got[5])
}

func TestNewBuffer_InvalidSize(t *testing.T) {
	_, err := NewBuffer(0, 10)
	assert.Error(t, err)
	_, err = NewBuffer(10, -1)
	assert.Error(t, err)
}

func TestBuffer_CloseTwice(t *testing.T) {
	b, err := NewBuffer(1, 1)
	require.NoError(t, err)
	require.NoError(t, b.Close())
	require.NoError(t, b.Close())
	assert.Equal(t, -1, b.Fd())
}
