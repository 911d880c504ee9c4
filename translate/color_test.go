package translate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in    string
		want  RGB
		alpha float64
	}{
		{"#ff0000", RGB{255, 0, 0}, 1},
		{"#F00", RGB{255, 0, 0}, 1},
		{"#00ff0080", RGB{0, 255, 0}, 128.0 / 255},
		{"rgb(0, 128, 255)", RGB{0, 128, 255}, 1},
		{"rgba(0, 128, 255, 0.5)", RGB{0, 128, 255}, 0.5},
		{"rgb(0 128 255 / 50%)", RGB{0, 128, 255}, 0.5},
		{"rgb(100%, 0%, 0%)", RGB{255, 0, 0}, 1},
		{"steelblue", RGB{70, 130, 180}, 1},
		{" Black ", RGB{0, 0, 0}, 1},
	}
	for _, tt := range tests {
		p, err := ParseColor(tt.in)
		require.NoError(t, err, tt.in)
		assert.True(t, p.Set, tt.in)
		assert.Equal(t, tt.want, p.Color, tt.in)
		assert.InDelta(t, tt.alpha, p.Alpha, 1e-9, tt.in)
	}
}

func TestParseColorUnset(t *testing.T) {
	for _, in := range []string{"", "none", "NONE"} {
		p, err := ParseColor(in)
		require.NoError(t, err)
		assert.Equal(t, NoPaint, p)
	}

	p, err := ParseColor("transparent")
	require.NoError(t, err)
	assert.True(t, p.Set)
	assert.Zero(t, p.Alpha)
}

func TestParseColorInvalid(t *testing.T) {
	for _, in := range []string{"#12345", "#gg0000", "rgb(1,2)", "hsl(0, 100%, 50%)", "notacolor"} {
		p, err := ParseColor(in)
		var pe *ParseError
		require.True(t, errors.As(err, &pe), in)
		assert.Equal(t, "color", pe.Property)
		assert.Equal(t, NoPaint, p)
	}
}

func TestPaintOpacity(t *testing.T) {
	p := Solid(RGB{1, 2, 3}).WithOpacity(0.5).WithOpacity(0.5)
	assert.InDelta(t, 0.25, p.Alpha, 1e-9)
	assert.Equal(t, NoPaint, NoPaint.WithOpacity(0.5))
	assert.Equal(t, "FF0010", RGB{255, 0, 16}.Hex())

	o, err := ParseOpacity("opacity", "")
	require.NoError(t, err)
	assert.Equal(t, 1.0, o)
	o, err = ParseOpacity("opacity", "40%")
	require.NoError(t, err)
	assert.InDelta(t, 0.4, o, 1e-9)
	_, err = ParseOpacity("opacity", "half")
	assert.Error(t, err)
}
