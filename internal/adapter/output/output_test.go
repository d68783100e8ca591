package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/creak/internal/ledger"
)

var now = time.UnixMilli(1_700_000_000_000)

func ms(t time.Time) uint64 { return uint64(t.UnixMilli()) }

func testEntries() []ledger.Entry {
	return []ledger.Entry{
		{
			ID:        1,
			Position:  "top-right",
			Height:    60,
			Gap:       10,
			CreatedAt: ms(now.Add(-2 * time.Second)),
			ExpiresAt: ms(now.Add(4 * time.Second)),
			PID:       4242,
			Name:      "build",
			Summary:   "Build finished",
		},
		{
			ID:        3,
			Position:  "bottom",
			Height:    40,
			CreatedAt: ms(now.Add(-time.Minute)),
			PID:       4343,
			Class:     "music",
			Summary:   "Now playing\nSome Song",
		},
	}
}

func testOptions() FormatterOptions {
	opts := DefaultFormatterOptions()
	opts.Now = now
	return opts
}

func TestParseFormat(t *testing.T) {
	for _, f := range ValidFormats() {
		got, err := ParseFormat(string(f))
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}

	_, err := ParseFormat("xml")
	assert.ErrorContains(t, err, "invalid format")
}

func TestNewFormatter(t *testing.T) {
	opts := testOptions()
	assert.IsType(t, &JSONFormatter{}, NewFormatter(FormatJSON, opts))
	assert.IsType(t, &YAMLFormatter{}, NewFormatter(FormatYAML, opts))
	assert.IsType(t, &TableFormatter{}, NewFormatter(FormatTable, opts))
	assert.IsType(t, &PlainFormatter{}, NewFormatter(FormatPlain, opts))
	assert.IsType(t, &DmenuFormatter{}, NewFormatter(FormatDmenu, opts))
	assert.IsType(t, &IDsFormatter{}, NewFormatter(FormatIDs, opts))
	assert.IsType(t, &JSONFormatter{}, NewFormatter("", opts))
}

func TestJSONFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter().Format(&buf, testEntries()))

	var result []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &result))
	require.Len(t, result, 2)
	assert.Equal(t, "top-right", result[0]["position"])
	assert.Equal(t, "build", result[0]["name"])
	assert.NotContains(t, result[0], "class")
	assert.Equal(t, "music", result[1]["class"])
	assert.Contains(t, buf.String(), "\n  {\n    \"id\": 1,")
}

func TestJSONFormatter_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter().Format(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestYAMLFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewYAMLFormatter().Format(&buf, testEntries()))

	var result []ledger.Entry
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &result))
	assert.Equal(t, testEntries(), result)
	assert.Contains(t, buf.String(), "expires_at:")
}

func TestIDsFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewIDsFormatter().Format(&buf, testEntries()))
	assert.Equal(t, "1\n3\n", buf.String())
}

func TestTableFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTableFormatter(testOptions()).Format(&buf, testEntries()))

	out := buf.String()
	assert.Contains(t, out, "POSITION")
	assert.Contains(t, out, "top-right")
	assert.Contains(t, out, "4242")
	assert.Contains(t, out, "2 seconds ago")
	assert.Contains(t, out, "4s")
	assert.Contains(t, out, "never")
	assert.Contains(t, out, "music")
}

func TestDmenuFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewDmenuFormatter(testOptions()).Format(&buf, testEntries()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "1 | top-right | 4s | build | Build finished", lines[0])
	assert.Equal(t, "3 | bottom | never | music | Now playing Some Song", lines[1])
}

func TestDmenuFormatter_CustomTemplate(t *testing.T) {
	opts := testOptions()
	opts.Template = "{{.Index}}:{{.Entry.ID}} {{label .Entry}} {{truncate .Entry.Summary 8}}"

	var buf bytes.Buffer
	require.NoError(t, NewDmenuFormatter(opts).Format(&buf, testEntries()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, "1:1 build Build...", lines[0])
	assert.Equal(t, "2:3 music Now p...", lines[1])
}

func TestPlainFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPlainFormatter(testOptions()).Format(&buf, testEntries()))

	out := buf.String()
	assert.Contains(t, out, "[1] top-right <build> pid=4242 height=60 expires=4s\n    Build finished\n")
	assert.Contains(t, out, "[3] bottom <music>")
}

func TestRemaining(t *testing.T) {
	tests := []struct {
		expires uint64
		want    string
	}{
		{0, "never"},
		{ms(now), "expired"},
		{ms(now.Add(1500 * time.Millisecond)), "2s"},
		{ms(now.Add(5 * time.Minute)), "5m"},
		{ms(now.Add(3 * time.Hour)), "3h"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, remaining(ledger.Entry{ExpiresAt: tt.expires}, now))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd...", truncate("abcdefghij", 7))
	assert.Equal(t, "ab", truncate("abcdef", 2))
	assert.Equal(t, "unlimited", truncate("unlimited", 0))
	assert.Equal(t, "h...", truncate("héllo wörld", 5), "never splits a rune")
}
