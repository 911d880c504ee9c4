package translate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPixelConversions(t *testing.T) {
	assert.Equal(t, int64(1270000), PixelsToLength(100))
	assert.Equal(t, int64(0), PixelsToLength(0))
	assert.Equal(t, int64(6350), PixelsToLength(0.5))
	// fractional results round to the nearest EMU
	assert.Equal(t, int64(29210), PixelsToLength(2.3))
	assert.Equal(t, int64(-29210), PixelsToLength(-2.3))
	assert.Equal(t, 12.0, PixelsToFontSize(16))
	assert.Equal(t, 18.0, PixelsToFontSize(24))
}

func TestContextScale(t *testing.T) {
	c := NewContext(2, 2)
	assert.Equal(t, int64(254000), c.X(10))
	assert.Equal(t, int64(508000), c.Y(20))
	assert.Equal(t, 24.0, c.FontSize(16))

	l, tp, w, h := c.Box(Rect{X: 1, Y: 2, Width: 3, Height: 4})
	assert.Equal(t, []int64{25400, 50800, 76200, 101600}, []int64{l, tp, w, h})
}

func TestNewContextRejectsBadScale(t *testing.T) {
	c := NewContext(0, -1)
	assert.Equal(t, 1.0, c.ScaleX)
	assert.Equal(t, 1.0, c.ScaleY)

	var zero Context
	assert.Equal(t, int64(12700), zero.X(1))
	assert.Equal(t, int64(12700), zero.StrokeWidth(1))
}

func TestContextFor(t *testing.T) {
	c := ContextFor(1280, 720, 12192000, 6858000)
	assert.InDelta(t, 0.75, c.ScaleX, 1e-12)
	assert.InDelta(t, 0.75, c.ScaleY, 1e-12)

	// canvas already matching the slide keeps scale 1
	c = ContextFor(960, 540, 12192000, 6858000)
	assert.InDelta(t, 1.0, c.ScaleX, 1e-12)

	c = ContextFor(0, 0, 12192000, 6858000)
	assert.Equal(t, NewContext(1, 1), c)
}

func TestParseLength(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"24px", 24},
		{"24", 24},
		{" 12.5PX ", 12.5},
		{"18pt", 24},
	}
	for _, tt := range tests {
		got, err := ParseLength("fontSize", tt.in)
		require.NoError(t, err, tt.in)
		assert.InDelta(t, tt.want, got, 1e-9, tt.in)
	}

	_, err := ParseLength("fontSize", "large")
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "fontSize", pe.Property)
	assert.Equal(t, "large", pe.Value)
}
