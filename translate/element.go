package translate

import "strings"

// Rect is an element bounding box in source pixels.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Point is an (x, y) pair in source pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// TextRun is one flattened run of a rich-text subtree.
type TextRun struct {
	Text    string            `json:"text"`
	TagName string            `json:"tagName"`
	Style   map[string]string `json:"style,omitempty"`
}

// Element is the normalized description of one rendered element.
// Values are treated as immutable once produced by the renderer.
type Element struct {
	TagName          string            `json:"tagName"`
	Rect             Rect              `json:"rect"`
	Style            map[string]string `json:"style,omitempty"`
	Attributes       map[string]string `json:"attributes,omitempty"`
	Text             string            `json:"text,omitempty"`
	TextRuns         []TextRun         `json:"text_runs,omitempty"`
	LinearizedPoints []Point           `json:"linearized_points,omitempty"`
	Closed           bool              `json:"closed,omitempty"`
}

// StyleValue returns the trimmed style property, or "" if unset.
func (e *Element) StyleValue(name string) string {
	if e.Style == nil {
		return ""
	}
	return strings.TrimSpace(e.Style[name])
}

// Attr returns the trimmed attribute value, or "" if unset.
func (e *Element) Attr(name string) string {
	if e.Attributes == nil {
		return ""
	}
	return strings.TrimSpace(e.Attributes[name])
}

// SlideData is the ordered element list of one slide together with the
// size of the canvas it was rendered on.
type SlideData struct {
	Width    float64   `json:"width"`
	Height   float64   `json:"height"`
	Elements []Element `json:"elements"`
}

// Document is the normalized form of a whole source document.
type Document struct {
	Title  string      `json:"title,omitempty"`
	Slides []SlideData `json:"slides"`
}

// Kind identifies the processor an element is routed to.
type Kind int

const (
	KindUnsupported Kind = iota
	KindRect
	KindOval
	KindLine
	KindPolygon
	KindPolyline
	KindPath
	KindText
	KindRichText
	KindImage
)

var kindNames = map[Kind]string{
	KindUnsupported: "unsupported",
	KindRect:        "rect",
	KindOval:        "oval",
	KindLine:        "line",
	KindPolygon:     "polygon",
	KindPolyline:    "polyline",
	KindPath:        "path",
	KindText:        "text",
	KindRichText:    "richtext",
	KindImage:       "image",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "unsupported"
}

// KindOf maps a tag name to its element kind. Tag matching is case
// insensitive because HTML and SVG DOMs report different casing.
func KindOf(tagName string) Kind {
	switch strings.ToLower(strings.TrimSpace(tagName)) {
	case "rect":
		return KindRect
	case "circle", "ellipse":
		return KindOval
	case "line":
		return KindLine
	case "polygon":
		return KindPolygon
	case "polyline":
		return KindPolyline
	case "path":
		return KindPath
	case "text":
		return KindText
	case "foreignobject", "richtext":
		return KindRichText
	case "image", "img":
		return KindImage
	}
	return KindUnsupported
}
