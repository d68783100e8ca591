package tui

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/creak/internal/ledger"
)

type noopSignaler struct{ pids []int }

func (n *noopSignaler) Terminate(pid int) error {
	n.pids = append(n.pids, pid)
	return nil
}

func newTestStore(t *testing.T) (*ledger.Store, *noopSignaler) {
	t.Helper()
	sig := &noopSignaler{}
	s, err := ledger.NewStore(t.TempDir(), ledger.WithSignaler(sig))
	require.NoError(t, err)
	return s, sig
}

func reserve(t *testing.T, s *ledger.Store, name, class, summary string) {
	t.Helper()
	_, _, err := s.Reserve(ledger.Reservation{
		Position: "top-right",
		Height:   50,
		Gap:      10,
		TTL:      time.Minute,
		Name:     name,
		Class:    class,
		Summary:  summary,
	})
	require.NoError(t, err)
}

func loaded(t *testing.T, s *ledger.Store) Model {
	t.Helper()
	m := New(s, nil)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m = updated.(Model)
	updated, _ = m.Update(m.loadEntries())
	return updated.(Model)
}

func TestModel_LoadsEntries(t *testing.T) {
	s, _ := newTestStore(t)
	reserve(t, s, "volume", "", "Volume 40%")
	reserve(t, s, "", "media", "Now playing")

	m := loaded(t, s)
	require.Len(t, m.entries, 2)
	assert.Len(t, m.list.Items(), 2)

	item := m.list.Items()[0].(entryItem)
	assert.Equal(t, "#1 Volume 40%", item.Title())
	assert.Contains(t, item.Description(), "top-right")
	assert.Contains(t, item.Description(), "volume")
	assert.Contains(t, item.Description(), "from now")
}

func TestModel_EntriesError(t *testing.T) {
	s, _ := newTestStore(t)
	m := New(s, nil)
	_, cmd := m.Update(entriesMsg{err: errors.New("boom")})
	require.NotNil(t, cmd)
	msg := cmd().(statusMsg)
	assert.True(t, msg.isErr)
	assert.Contains(t, msg.text, "boom")
}

func TestModel_Search(t *testing.T) {
	s, _ := newTestStore(t)
	reserve(t, s, "volume", "", "Volume 40%")
	reserve(t, s, "", "media", "Now playing")

	m := loaded(t, s)
	m.searchQuery = "MEDIA"
	got := m.visibleEntries()
	require.Len(t, got, 1)
	assert.Equal(t, "media", got[0].Class)

	m.searchQuery = "nothing matches"
	assert.Empty(t, m.visibleEntries())
}

func TestModel_ClearSelected(t *testing.T) {
	s, sig := newTestStore(t)
	reserve(t, s, "volume", "", "Volume 40%")
	reserve(t, s, "", "media", "Now playing")

	m := loaded(t, s)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	require.NotNil(t, cmd)

	msg := cmd().(clearedMsg)
	require.NoError(t, msg.err)
	assert.Equal(t, 1, msg.removed)
	assert.Equal(t, ledger.ByID(1), msg.selector)
	assert.Equal(t, []int{os.Getpid()}, sig.pids)

	entries, err := s.List()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, uint64(2), entries[0].ID)
}

func TestModel_ClearGroup(t *testing.T) {
	s, _ := newTestStore(t)
	reserve(t, s, "volume", "", "Volume 40%")
	reserve(t, s, "volume", "", "Volume 50%")
	reserve(t, s, "", "media", "Now playing")

	m := loaded(t, s)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("X")})
	require.NotNil(t, cmd)

	msg := cmd().(clearedMsg)
	require.NoError(t, msg.err)
	assert.Equal(t, 2, msg.removed)
	assert.Equal(t, ledger.ByName("volume"), msg.selector)
}

func TestModel_ClearGroupUnlabelled(t *testing.T) {
	s, _ := newTestStore(t)
	reserve(t, s, "", "", "plain")

	m := loaded(t, s)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("X")})
	require.NotNil(t, cmd)
	msg := cmd().(statusMsg)
	assert.True(t, msg.isErr)
}

func TestModel_DetailView(t *testing.T) {
	s, _ := newTestStore(t)
	reserve(t, s, "volume", "", "Volume 40%")
	reserve(t, s, "", "media", "Now playing")

	m := loaded(t, s)
	m.list.Select(1)
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)

	require.Equal(t, ModeDetail, m.mode)
	require.NotNil(t, m.selected)
	assert.Equal(t, uint64(2), m.selected.ID)

	detail := m.renderDetail(*m.selected)
	assert.Contains(t, detail, "Now playing")
	assert.Contains(t, detail, "media")
	assert.Contains(t, detail, "60")

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = updated.(Model)
	assert.Equal(t, ModeList, m.mode)
	assert.Nil(t, m.selected)
}

func TestModel_OffsetOf(t *testing.T) {
	m := Model{entries: []ledger.Entry{
		{ID: 1, Position: "top-right", Height: 50, Gap: 10},
		{ID: 2, Position: "bottom-left", Height: 40, Gap: 10},
		{ID: 3, Position: "top-right", Height: 30, Gap: 10},
	}}
	assert.Equal(t, 0, m.offsetOf(m.entries[0]))
	assert.Equal(t, 0, m.offsetOf(m.entries[1]))
	assert.Equal(t, 60, m.offsetOf(m.entries[2]))
}

func TestExpiry(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	assert.Equal(t, "no timeout", expiry(ledger.Entry{}, now))
	assert.Equal(t, "expires 5 seconds from now",
		expiry(ledger.Entry{ExpiresAt: 1_700_000_005_000}, now))
}

func TestBuildKeybindBar(t *testing.T) {
	m := Model{}

	full := m.buildKeybindBar(0, ModeList)
	assert.Contains(t, full, "refresh")

	narrow := m.buildKeybindBar(30, ModeList)
	assert.LessOrEqual(t, lipgloss.Width(narrow), 30)
	assert.Contains(t, narrow, "quit")
	assert.NotContains(t, narrow, "refresh")

	search := m.buildKeybindBar(0, ModeSearch)
	assert.True(t, strings.Contains(search, "navigate"))
}

func TestDetectClipboardCommand(t *testing.T) {
	only := func(names ...string) func(string) (string, error) {
		return func(name string) (string, error) {
			for _, n := range names {
				if n == name {
					return "/usr/bin/" + name, nil
				}
			}
			return "", errors.New("not found")
		}
	}

	assert.Equal(t, "wl-copy", detectClipboardCommand(only("wl-copy", "xclip")))
	assert.Equal(t, "xclip -selection clipboard", detectClipboardCommand(only("xclip", "xsel")))
	assert.Equal(t, "xsel --clipboard --input", detectClipboardCommand(only("xsel")))
	assert.Empty(t, detectClipboardCommand(only()))
}
