package pptx

import (
	"fmt"
	"math"
	"strings"
)

// alphaOpaque is the OOXML alpha value of a fully opaque color, in
// thousandths of a percent.
const alphaOpaque = 100000

// Color represents an RGB color with an OOXML alpha value.
type Color struct {
	R, G, B uint8
	Alpha   int // 0-100000, 100000 is opaque
}

// Predefined colors.
var (
	ColorBlack = Color{0, 0, 0, alphaOpaque}
	ColorWhite = Color{255, 255, 255, alphaOpaque}
	ColorRed   = Color{255, 0, 0, alphaOpaque}
	ColorGreen = Color{0, 255, 0, alphaOpaque}
	ColorBlue  = Color{0, 0, 255, alphaOpaque}
)

// NewColor creates an opaque Color from a 6-character RGB hex string
// (e.g. "FF0000"). A leading "#" is stripped. Invalid input yields black.
func NewColor(rgb string) Color {
	rgb = strings.TrimPrefix(rgb, "#")
	if len(rgb) != 6 {
		return ColorBlack
	}
	var v [3]uint8
	for i := 0; i < 3; i++ {
		h, l := hexVal(rgb[2*i]), hexVal(rgb[2*i+1])
		if h < 0 || l < 0 {
			return ColorBlack
		}
		v[i] = uint8(h<<4 | l)
	}
	return Color{R: v[0], G: v[1], B: v[2], Alpha: alphaOpaque}
}

// NewColorAlpha creates a Color with opacity a in the range 0.0-1.0.
func NewColorAlpha(r, g, b uint8, a float64) Color {
	if math.IsNaN(a) || a < 0 {
		a = 0
	}
	if a > 1 {
		a = 1
	}
	return Color{R: r, G: g, B: b, Alpha: int(math.Round(a * alphaOpaque))}
}

func hexVal(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	default:
		return -1
	}
}

// Hex returns the upper-case RRGGBB form used by srgbClr.
func (c Color) Hex() string {
	return fmt.Sprintf("%02X%02X%02X", c.R, c.G, c.B)
}

// IsOpaque reports whether the color has no transparency.
func (c Color) IsOpaque() bool {
	return c.Alpha >= alphaOpaque
}

// Alpha8 returns the alpha as an 8-bit value.
func (c Color) Alpha8() uint8 {
	a := c.Alpha
	if a < 0 {
		a = 0
	}
	if a > alphaOpaque {
		a = alphaOpaque
	}
	return uint8(math.Round(float64(a) * 255 / alphaOpaque))
}

// Font represents text run properties.
type Font struct {
	Name   string
	Size   float64 // in points
	Bold   bool
	Italic bool
	Color  *Color // nil inherits the theme text color
}

// Font size limits accepted by PowerPoint, in points.
const (
	minFontSize = 1
	maxFontSize = 4000
)

// NewFont creates a new Font with defaults.
func NewFont() *Font {
	return &Font{Size: 18}
}

// SetBold sets the bold property and returns the font for chaining.
func (f *Font) SetBold(bold bool) *Font {
	f.Bold = bold
	return f
}

// SetItalic sets the italic property.
func (f *Font) SetItalic(italic bool) *Font {
	f.Italic = italic
	return f
}

// SetSize sets the font size in points (clamped to 1-4000).
func (f *Font) SetSize(size float64) *Font {
	if size < minFontSize || math.IsNaN(size) {
		size = minFontSize
	}
	if size > maxFontSize {
		size = maxFontSize
	}
	f.Size = size
	return f
}

// SetColor sets the font color.
func (f *Font) SetColor(color Color) *Font {
	f.Color = &color
	return f
}

// SetName sets the font name.
func (f *Font) SetName(name string) *Font {
	f.Name = name
	return f
}

// sizeHundredths returns the size in hundredths of a point as written to
// the sz attribute.
func (f *Font) sizeHundredths() int {
	return int(math.Round(f.Size * 100))
}

// HorizontalAlignment represents horizontal text alignment.
type HorizontalAlignment string

const (
	HorizontalLeft    HorizontalAlignment = "l"
	HorizontalCenter  HorizontalAlignment = "ctr"
	HorizontalRight   HorizontalAlignment = "r"
	HorizontalJustify HorizontalAlignment = "just"
)

// Fill represents a shape fill.
type Fill struct {
	Type  FillType
	Color Color
}

// FillType represents the type of fill.
type FillType int

const (
	FillNone FillType = iota
	FillSolid
)

// NewFill creates a new Fill with no fill.
func NewFill() *Fill {
	return &Fill{Type: FillNone}
}

// SetSolid sets a solid fill.
func (f *Fill) SetSolid(color Color) *Fill {
	f.Type = FillSolid
	f.Color = color
	return f
}

// SetNone removes the fill.
func (f *Fill) SetNone() *Fill {
	f.Type = FillNone
	return f
}

// Border represents a shape outline.
type Border struct {
	Style BorderStyle
	Width int64 // in EMU
	Color Color
}

// BorderStyle represents the outline style.
type BorderStyle string

const (
	BorderNone  BorderStyle = "none"
	BorderSolid BorderStyle = "solid"
)

// NewBorder creates a new Border with no outline.
func NewBorder() *Border {
	return &Border{Style: BorderNone}
}

// SetSolid sets a solid outline of the given width in EMU.
func (b *Border) SetSolid(color Color, width int64) *Border {
	b.Style = BorderSolid
	b.Color = color
	b.Width = width
	return b
}

// SetNone removes the outline.
func (b *Border) SetNone() *Border {
	b.Style = BorderNone
	return b
}

// ArrowType is the decoration at one end of a line.
type ArrowType string

const (
	ArrowNone     ArrowType = "none"
	ArrowTriangle ArrowType = "triangle"
	ArrowStealth  ArrowType = "stealth"
	ArrowOval     ArrowType = "oval"
)

// ArrowSize is the width or length of a line end.
type ArrowSize string

const (
	ArrowSizeSmall  ArrowSize = "sm"
	ArrowSizeMedium ArrowSize = "med"
	ArrowSizeLarge  ArrowSize = "lg"
)

// LineEnd describes a line head or tail decoration.
type LineEnd struct {
	Type   ArrowType
	Width  ArrowSize
	Length ArrowSize
}

// NewArrowHead returns a medium triangle arrowhead.
func NewArrowHead() *LineEnd {
	return &LineEnd{Type: ArrowTriangle, Width: ArrowSizeMedium, Length: ArrowSizeMedium}
}
