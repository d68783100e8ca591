package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuration_UnmarshalText(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{in: "5s", want: 5 * time.Second},
		{in: "1h30m", want: 90 * time.Minute},
		{in: "5000", want: 5 * time.Second},
		{in: "0", want: 0},
		{in: "-5", wantErr: true},
		{in: "-1s", wantErr: true},
		{in: "later", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var d Duration
			err := d.UnmarshalText([]byte(tt.in))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Duration())
		})
	}
}

func TestDuration_FlagValue(t *testing.T) {
	var d Duration
	require.NoError(t, d.Set("750"))
	assert.Equal(t, int64(750), d.Milliseconds())
	assert.Equal(t, "750ms", d.String())
	assert.Equal(t, "duration", d.Type())
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#102030")
	require.NoError(t, err)
	assert.Equal(t, Color{R: 0x10, G: 0x20, B: 0x30, A: 0xff}, c)
	assert.Equal(t, "#102030", c.String())

	c, err = ParseColor("10203040")
	require.NoError(t, err)
	assert.Equal(t, uint8(0x40), c.A)
	assert.Equal(t, "#10203040", c.String())

	for _, bad := range []string{"", "#fff", "#1020304", "#gg0000"} {
		_, err := ParseColor(bad)
		assert.Error(t, err, bad)
	}
}

func TestParsePosition(t *testing.T) {
	for _, p := range ValidPositions() {
		got, err := ParsePosition(string(p))
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}

	got, err := ParsePosition("top-center")
	require.NoError(t, err)
	assert.Equal(t, PositionTop, got)

	got, err = ParsePosition("bottom-center")
	require.NoError(t, err)
	assert.Equal(t, PositionBottom, got)

	_, err = ParsePosition("middle")
	assert.Error(t, err)
}

func TestPosition_IsBottom(t *testing.T) {
	assert.True(t, PositionBottom.IsBottom())
	assert.True(t, PositionBottomLeft.IsBottom())
	assert.True(t, PositionBottomRight.IsBottom())
	assert.False(t, PositionTop.IsBottom())
	assert.False(t, PositionDefault.IsBottom())
	assert.False(t, PositionCenter.IsBottom())
}
