package translate

import (
	"math"
	"strconv"
	"strings"
)

// Unit conversion constants. One source pixel maps to 12700 EMU and
// 0.75 points.
const (
	EMUPerPixel    = 12700
	PointsPerPixel = 0.75

	// DefaultFontSizePx is used whenever an element carries no usable
	// fontSize. 16px is the browser default, 12pt in the output.
	DefaultFontSizePx = 16.0
)

// maxEMU mirrors the writer's overflow guard.
const maxEMU = math.MaxInt64 / 2

// PixelsToLength converts source pixels to EMU.
func PixelsToLength(px float64) int64 {
	return toEMU(px * EMUPerPixel)
}

// PixelsToFontSize converts source pixels to points.
func PixelsToFontSize(px float64) float64 {
	return px * PointsPerPixel
}

func toEMU(v float64) int64 {
	if math.IsNaN(v) {
		return 0
	}
	v = math.Round(v)
	if v > float64(maxEMU) {
		return maxEMU
	}
	if v < -float64(maxEMU) {
		return -maxEMU
	}
	return int64(v)
}

// Context is the shared conversion context of one slide. It is passed by
// value so processors cannot mutate it.
type Context struct {
	ScaleX float64
	ScaleY float64
}

// NewContext returns a context with the given axis scales. Non-positive
// scales are replaced by 1.
func NewContext(scaleX, scaleY float64) Context {
	if scaleX <= 0 || math.IsNaN(scaleX) || math.IsInf(scaleX, 0) {
		scaleX = 1
	}
	if scaleY <= 0 || math.IsNaN(scaleY) || math.IsInf(scaleY, 0) {
		scaleY = 1
	}
	return Context{ScaleX: scaleX, ScaleY: scaleY}
}

// ContextFor derives the scale that maps a canvas of canvasW x canvasH
// pixels onto a slide of slideCX x slideCY EMU.
func ContextFor(canvasW, canvasH float64, slideCX, slideCY int64) Context {
	var sx, sy float64
	if canvasW > 0 {
		sx = float64(slideCX) / (canvasW * EMUPerPixel)
	}
	if canvasH > 0 {
		sy = float64(slideCY) / (canvasH * EMUPerPixel)
	}
	return NewContext(sx, sy)
}

// X converts a horizontal pixel coordinate to scaled EMU.
func (c Context) X(px float64) int64 { return toEMU(px * EMUPerPixel * c.scaleX()) }

// Y converts a vertical pixel coordinate to scaled EMU.
func (c Context) Y(px float64) int64 { return toEMU(px * EMUPerPixel * c.scaleY()) }

// Box converts a bounding rectangle to left, top, width, height in EMU.
func (c Context) Box(r Rect) (left, top, width, height int64) {
	return c.X(r.X), c.Y(r.Y), c.X(r.Width), c.Y(r.Height)
}

// Vertex converts a pixel point to a scaled EMU vertex.
func (c Context) Vertex(p Point) Vertex {
	return Vertex{X: c.X(p.X), Y: c.Y(p.Y)}
}

// StrokeWidth converts a pixel stroke width to EMU using the mean of the
// two axis scales.
func (c Context) StrokeWidth(px float64) int64 {
	return toEMU(px * EMUPerPixel * (c.scaleX() + c.scaleY()) / 2)
}

// FontSize converts a pixel font size to points, scaled by the vertical
// axis so text keeps its proportion to the shapes around it.
func (c Context) FontSize(px float64) float64 {
	return PixelsToFontSize(px) * c.scaleY()
}

// zero-value Context behaves as scale 1
func (c Context) scaleX() float64 {
	if c.ScaleX == 0 {
		return 1
	}
	return c.ScaleX
}

func (c Context) scaleY() float64 {
	if c.ScaleY == 0 {
		return 1
	}
	return c.ScaleY
}

// ParseLength parses a CSS pixel length such as "24px", "24" or "18pt"
// and returns its value in pixels.
func ParseLength(property, value string) (float64, error) {
	s := strings.ToLower(strings.TrimSpace(value))
	factor := 1.0
	switch {
	case strings.HasSuffix(s, "px"):
		s = strings.TrimSuffix(s, "px")
	case strings.HasSuffix(s, "pt"):
		s = strings.TrimSuffix(s, "pt")
		factor = 1 / PointsPerPixel
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, &ParseError{Property: property, Value: value, Err: err}
	}
	return f * factor, nil
}

// ParseNumber parses a plain numeric literal.
func ParseNumber(property, value string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, &ParseError{Property: property, Value: value, Err: err}
	}
	return f, nil
}
