package pptx

import "strings"

// DocumentLayout represents the slide dimensions.
type DocumentLayout struct {
	CX   int64 // width in EMU
	CY   int64 // height in EMU
	Name string
}

// Standard layout names.
const (
	LayoutScreen4x3   = "screen4x3"
	LayoutScreen16x9  = "screen16x9"
	LayoutScreen16x10 = "screen16x10"
	LayoutA4          = "A4"
	LayoutLetter      = "letter"
	LayoutCustom      = "custom"
)

var layoutSizes = map[string][2]int64{
	LayoutScreen4x3:   {9144000, 6858000},
	LayoutScreen16x9:  {12192000, 6858000},
	LayoutScreen16x10: {10972800, 6858000},
	LayoutA4:          {9906000, 6858000},
	LayoutLetter:      {9144000, 6858000},
}

// LayoutNames returns the predefined layout names.
func LayoutNames() []string {
	return []string{LayoutScreen4x3, LayoutScreen16x9, LayoutScreen16x10, LayoutA4, LayoutLetter}
}

// LookupLayout returns the canonical name and dimensions of a predefined
// layout. Matching is case insensitive.
func LookupLayout(name string) (canonical string, cx, cy int64, ok bool) {
	for n, size := range layoutSizes {
		if strings.EqualFold(n, name) {
			return n, size[0], size[1], true
		}
	}
	return "", 0, 0, false
}

// NewDocumentLayout creates a default 16:9 layout (13.333 x 7.5 inches).
func NewDocumentLayout() *DocumentLayout {
	return &DocumentLayout{
		CX:   12192000,
		CY:   6858000,
		Name: LayoutScreen16x9,
	}
}

// SetLayout sets a predefined layout. Unknown names leave the layout as is
// and return false.
func (dl *DocumentLayout) SetLayout(name string) bool {
	n, cx, cy, ok := LookupLayout(name)
	if !ok {
		return false
	}
	dl.CX, dl.CY, dl.Name = cx, cy, n
	return true
}

// SetCustomLayout sets custom dimensions in EMU. Non-positive values fall
// back to the 16:9 default.
func (dl *DocumentLayout) SetCustomLayout(cx, cy int64) {
	if cx <= 0 {
		cx = 12192000
	}
	if cy <= 0 {
		cy = 6858000
	}
	dl.CX = cx
	dl.CY = cy
	dl.Name = LayoutCustom
}
