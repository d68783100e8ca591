package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoller_SlidesUpWhenPeerLeaves(t *testing.T) {
	s, clock := newTestStore(t)

	_, lease1, err := s.Reserve(Reservation{Position: "top", Height: 50, Gap: 10, TTL: time.Minute})
	require.NoError(t, err)
	offset, lease2, err := s.Reserve(Reservation{Position: "top", Height: 30, Gap: 5, TTL: time.Minute})
	require.NoError(t, err)
	require.Equal(t, 60, offset)

	p := NewPoller(lease2, offset, DefaultPollInterval, clock)
	assert.False(t, p.Due())

	got, changed, err := p.Poll()
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, 60, got)

	lease1.Release()

	// Not due yet: the release is not observed.
	clock.Advance(50 * time.Millisecond)
	_, changed, err = p.Poll()
	require.NoError(t, err)
	assert.False(t, changed)

	clock.Advance(50 * time.Millisecond)
	got, changed, err = p.Poll()
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 0, got)
	assert.Equal(t, 0, p.Offset())

	clock.Advance(DefaultPollInterval)
	_, changed, err = p.Poll()
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestPoller_LaterPeersDoNotMoveEarlierOnes(t *testing.T) {
	s, clock := newTestStore(t)

	offset, lease1, err := s.Reserve(Reservation{Position: "top", Height: 50, Gap: 10, TTL: time.Minute})
	require.NoError(t, err)
	p := NewPoller(lease1, offset, DefaultPollInterval, clock)

	_, _, err = s.Reserve(Reservation{Position: "top", Height: 30, Gap: 5, TTL: time.Minute})
	require.NoError(t, err)

	clock.Advance(DefaultPollInterval)
	got, changed, err := p.Poll()
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, 0, got)
}

func TestPoller_ExpiredPeerIsPrunedAndSaved(t *testing.T) {
	s, clock := newTestStore(t)

	_, _, err := s.Reserve(Reservation{Position: "top", Height: 50, Gap: 10, TTL: 200 * time.Millisecond})
	require.NoError(t, err)
	offset, lease2, err := s.Reserve(Reservation{Position: "top", Height: 30, Gap: 5, TTL: time.Minute})
	require.NoError(t, err)

	p := NewPoller(lease2, offset, DefaultPollInterval, clock)
	clock.Advance(200 * time.Millisecond)

	got, changed, err := p.Poll()
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 0, got)
	assert.Equal(t, []uint64{lease2.ID}, ids(s.Load().Entries))
}

func TestPoller_NilLease(t *testing.T) {
	p := NewPoller(nil, 25, 0, nil)
	assert.False(t, p.Due())

	got, changed, err := p.Poll()
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, 25, got)
}

func TestStore_OffsetForMissingID(t *testing.T) {
	s, _ := newTestStore(t)

	require.NoError(t, s.Save(&Ledger{NextID: 10, Entries: []Entry{
		{ID: 2, Position: "top", Height: 10, Gap: 1},
		{ID: 5, Position: "top", Height: 20, Gap: 2},
		{ID: 6, Position: "bottom", Height: 99, Gap: 9},
		{ID: 9, Position: "top", Height: 40, Gap: 4},
	}}))

	off, err := s.OffsetFor(7, "top")
	require.NoError(t, err)
	assert.Equal(t, 33, off)

	off, err = s.OffsetFor(1, "top")
	require.NoError(t, err)
	assert.Equal(t, 0, off)
}

func TestLedger_OffsetBeforeOutOfOrder(t *testing.T) {
	l := &Ledger{Entries: []Entry{
		{ID: 5, Position: "top", Height: 40, Gap: 10},
		{ID: 2, Position: "top", Height: 30, Gap: 5},
		{ID: 3, Position: "left", Height: 99},
		{ID: 4, Position: "top", Height: 20, Gap: 0},
		{ID: 1, Position: "top", Height: 7, Gap: 3},
	}}

	assert.Equal(t, 35, l.OffsetBefore(4, "top"), "larger ids ahead are skipped")
	assert.Equal(t, 0, l.OffsetBefore(2, "top"))
	assert.Equal(t, 0, l.OffsetBefore(1, "top"))
	assert.Equal(t, 115, l.OffsetBefore(6, "top"), "missing id counts every earlier entry")
	assert.Equal(t, 0, l.OffsetBefore(4, "bottom"))
}
