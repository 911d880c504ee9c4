package pptx

// Shape is the interface that all shapes implement.
type Shape interface {
	GetType() ShapeType
	GetOffsetX() int64
	GetOffsetY() int64
	GetWidth() int64
	GetHeight() int64
	GetName() string
	// base returns the underlying BaseShape (unexported, internal use only).
	base() *BaseShape
}

// ShapeType represents the type of shape.
type ShapeType int

const (
	ShapeTypeRichText ShapeType = iota
	ShapeTypeDrawing
	ShapeTypeAutoShape
	ShapeTypeLine
	ShapeTypeFreeform
)

func (t ShapeType) String() string {
	switch t {
	case ShapeTypeRichText:
		return "text"
	case ShapeTypeDrawing:
		return "picture"
	case ShapeTypeAutoShape:
		return "autoshape"
	case ShapeTypeLine:
		return "line"
	case ShapeTypeFreeform:
		return "freeform"
	}
	return "unknown"
}

// BaseShape contains common shape properties.
type BaseShape struct {
	name           string
	description    string
	offsetX        int64 // in EMU
	offsetY        int64 // in EMU
	width          int64 // in EMU
	height         int64 // in EMU
	flipHorizontal bool
	flipVertical   bool
	fill           *Fill
	border         *Border
}

func (b *BaseShape) GetOffsetX() int64 { return b.offsetX }
func (b *BaseShape) GetOffsetY() int64 { return b.offsetY }
func (b *BaseShape) GetWidth() int64   { return b.width }
func (b *BaseShape) GetHeight() int64  { return b.height }
func (b *BaseShape) GetName() string   { return b.name }
func (b *BaseShape) base() *BaseShape  { return b }

func (b *BaseShape) SetName(n string) *BaseShape { b.name = n; return b }

// SetPosition sets both offset X and Y in EMU.
func (b *BaseShape) SetPosition(x, y int64) *BaseShape {
	b.offsetX = x
	b.offsetY = y
	return b
}

// SetSize sets both width and height in EMU.
func (b *BaseShape) SetSize(w, h int64) *BaseShape {
	b.width = w
	b.height = h
	return b
}

// GetFlipHorizontal returns whether the shape is flipped horizontally.
func (b *BaseShape) GetFlipHorizontal() bool { return b.flipHorizontal }

// GetFlipVertical returns whether the shape is flipped vertically.
func (b *BaseShape) GetFlipVertical() bool { return b.flipVertical }

func (b *BaseShape) GetFill() *Fill {
	if b.fill == nil {
		b.fill = NewFill()
	}
	return b.fill
}

func (b *BaseShape) SetFill(f *Fill) { b.fill = f }

func (b *BaseShape) GetBorder() *Border {
	if b.border == nil {
		b.border = NewBorder()
	}
	return b.border
}

func (b *BaseShape) SetBorder(border *Border) { b.border = border }

// AutoShape represents a preset geometry shape.
type AutoShape struct {
	BaseShape
	shapeType AutoShapeType
}

// AutoShapeType is the prstGeom preset name.
type AutoShapeType string

const (
	AutoShapeRectangle AutoShapeType = "rect"
	AutoShapeEllipse   AutoShapeType = "ellipse"
)

func (a *AutoShape) GetType() ShapeType { return ShapeTypeAutoShape }

// NewAutoShape creates a new rectangle auto shape.
func NewAutoShape() *AutoShape {
	return &AutoShape{shapeType: AutoShapeRectangle}
}

// SetAutoShapeType sets the auto shape type.
func (a *AutoShape) SetAutoShapeType(t AutoShapeType) *AutoShape {
	a.shapeType = t
	return a
}

// GetAutoShapeType returns the auto shape type.
func (a *AutoShape) GetAutoShapeType() AutoShapeType {
	return a.shapeType
}

// LineShape represents a straight connector.
type LineShape struct {
	BaseShape
	lineStyle    BorderStyle
	lineWidthEMU int64
	lineColor    Color
	headEnd      *LineEnd
	tailEnd      *LineEnd
}

func (l *LineShape) GetType() ShapeType { return ShapeTypeLine }

// NewLineShape creates a new 1pt black line.
func NewLineShape() *LineShape {
	return &LineShape{
		lineStyle:    BorderSolid,
		lineWidthEMU: emuPerPoint,
		lineColor:    ColorBlack,
	}
}

// SetEndpoints places the line between (x1,y1) and (x2,y2). The frame is
// the normalized bounding box; direction is kept with flip flags.
func (l *LineShape) SetEndpoints(x1, y1, x2, y2 int64) *LineShape {
	l.offsetX, l.width, l.flipHorizontal = span(x1, x2)
	l.offsetY, l.height, l.flipVertical = span(y1, y2)
	return l
}

func span(a, b int64) (off, ext int64, flip bool) {
	if b < a {
		return b, a - b, true
	}
	return a, b - a, false
}

// GetEndpoints returns the begin and end points.
func (l *LineShape) GetEndpoints() (x1, y1, x2, y2 int64) {
	x1, x2 = l.offsetX, l.offsetX+l.width
	if l.flipHorizontal {
		x1, x2 = x2, x1
	}
	y1, y2 = l.offsetY, l.offsetY+l.height
	if l.flipVertical {
		y1, y2 = y2, y1
	}
	return x1, y1, x2, y2
}

// SetLineStyle sets the line style. BorderNone hides the line.
func (l *LineShape) SetLineStyle(s BorderStyle) *LineShape {
	l.lineStyle = s
	return l
}

// GetLineStyle returns the line style.
func (l *LineShape) GetLineStyle() BorderStyle { return l.lineStyle }

// SetLineWidthEMU sets the line width in EMU.
func (l *LineShape) SetLineWidthEMU(w int64) *LineShape {
	if w < 0 {
		w = 0
	}
	l.lineWidthEMU = w
	return l
}

// GetLineWidthEMU returns the line width in EMU.
func (l *LineShape) GetLineWidthEMU() int64 { return l.lineWidthEMU }

// SetLineColor sets the line color.
func (l *LineShape) SetLineColor(c Color) *LineShape {
	l.lineColor = c
	return l
}

// GetLineColor returns the line color.
func (l *LineShape) GetLineColor() Color { return l.lineColor }

// SetHeadEnd sets the decoration at the start of the line.
func (l *LineShape) SetHeadEnd(e *LineEnd) *LineShape {
	l.headEnd = e
	return l
}

// GetHeadEnd returns the head end.
func (l *LineShape) GetHeadEnd() *LineEnd { return l.headEnd }

// SetTailEnd sets the decoration at the end of the line.
func (l *LineShape) SetTailEnd(e *LineEnd) *LineShape {
	l.tailEnd = e
	return l
}

// GetTailEnd returns the tail end.
func (l *LineShape) GetTailEnd() *LineEnd { return l.tailEnd }

// CustomGeomPath represents a custom geometry path for freeform shapes.
type CustomGeomPath struct {
	Width    int64         // path coordinate space width
	Height   int64         // path coordinate space height
	Commands []PathCommand // path commands
}

// PathCommand represents a single path command.
type PathCommand struct {
	Type string // "moveTo", "lnTo", "close"
	Pts  []PathPoint
}

// PathPoint represents a point in path coordinates.
type PathPoint struct {
	X, Y int64
}

// FreeformShape is a polyline or polygon drawn with custom geometry.
type FreeformShape struct {
	BaseShape
	path *CustomGeomPath
}

func (f *FreeformShape) GetType() ShapeType { return ShapeTypeFreeform }

// NewFreeformShape builds a freeform from absolute slide points. The shape
// frame is the bounding box of the points and the path is stored relative
// to it. A closed freeform ends with a close command.
func NewFreeformShape(points []PathPoint, closed bool) *FreeformShape {
	f := &FreeformShape{path: &CustomGeomPath{}}
	if len(points) == 0 {
		return f
	}
	minX, minY := points[0].X, points[0].Y
	maxX, maxY := minX, minY
	for _, p := range points[1:] {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}
	f.offsetX, f.offsetY = minX, minY
	f.width, f.height = maxX-minX, maxY-minY
	f.path.Width, f.path.Height = f.width, f.height

	rel := func(p PathPoint) PathPoint { return PathPoint{X: p.X - minX, Y: p.Y - minY} }
	f.path.Commands = append(f.path.Commands, PathCommand{Type: "moveTo", Pts: []PathPoint{rel(points[0])}})
	for _, p := range points[1:] {
		f.path.Commands = append(f.path.Commands, PathCommand{Type: "lnTo", Pts: []PathPoint{rel(p)}})
	}
	if closed {
		f.path.Commands = append(f.path.Commands, PathCommand{Type: "close"})
	}
	return f
}

// GetCustomPath returns the custom geometry path.
func (f *FreeformShape) GetCustomPath() *CustomGeomPath { return f.path }

// IsClosed reports whether the path ends with a close command.
func (f *FreeformShape) IsClosed() bool {
	n := len(f.path.Commands)
	return n > 0 && f.path.Commands[n-1].Type == "close"
}

// RichTextShape represents a text box.
type RichTextShape struct {
	BaseShape
	paragraphs []*Paragraph
	wordWrap   bool
}

func (r *RichTextShape) GetType() ShapeType { return ShapeTypeRichText }

// NewRichTextShape creates a new text box with one empty paragraph.
func NewRichTextShape() *RichTextShape {
	return &RichTextShape{
		paragraphs: []*Paragraph{NewParagraph()},
		wordWrap:   true,
	}
}

// Clear removes all paragraphs.
func (r *RichTextShape) Clear() {
	r.paragraphs = nil
}

// CreateParagraph appends a new paragraph.
func (r *RichTextShape) CreateParagraph() *Paragraph {
	p := NewParagraph()
	r.paragraphs = append(r.paragraphs, p)
	return p
}

// CreateTextRun creates a text run in the last paragraph, adding one if
// the shape has none.
func (r *RichTextShape) CreateTextRun(text string) *TextRun {
	if len(r.paragraphs) == 0 {
		r.CreateParagraph()
	}
	return r.paragraphs[len(r.paragraphs)-1].CreateTextRun(text)
}

// GetParagraphs returns all paragraphs.
func (r *RichTextShape) GetParagraphs() []*Paragraph {
	return r.paragraphs
}

// SetWordWrap sets word wrap.
func (r *RichTextShape) SetWordWrap(wrap bool) {
	r.wordWrap = wrap
}

// GetWordWrap returns word wrap setting.
func (r *RichTextShape) GetWordWrap() bool {
	return r.wordWrap
}

// Paragraph represents a text paragraph.
type Paragraph struct {
	alignment HorizontalAlignment
	runs      []*TextRun
}

// NewParagraph creates a new left-aligned paragraph.
func NewParagraph() *Paragraph {
	return &Paragraph{alignment: HorizontalLeft}
}

// GetAlignment returns the paragraph alignment.
func (p *Paragraph) GetAlignment() HorizontalAlignment { return p.alignment }

// SetAlignment sets the paragraph alignment.
func (p *Paragraph) SetAlignment(a HorizontalAlignment) { p.alignment = a }

// CreateTextRun appends a text run with default formatting.
func (p *Paragraph) CreateTextRun(text string) *TextRun {
	tr := &TextRun{text: text, font: NewFont()}
	p.runs = append(p.runs, tr)
	return tr
}

// CreatePlainRun appends a text run without run properties; it takes the
// formatting of the surrounding text.
func (p *Paragraph) CreatePlainRun(text string) *TextRun {
	tr := &TextRun{text: text}
	p.runs = append(p.runs, tr)
	return tr
}

// GetRuns returns the runs in order.
func (p *Paragraph) GetRuns() []*TextRun { return p.runs }

// TextRun represents a run of text with formatting.
type TextRun struct {
	text string
	font *Font // nil for plain runs
}

// GetText returns the text content.
func (tr *TextRun) GetText() string { return tr.text }

// SetText sets the text content.
func (tr *TextRun) SetText(text string) { tr.text = text }

// GetFont returns the font properties, or nil for plain runs.
func (tr *TextRun) GetFont() *Font { return tr.font }

// SetFont sets the font properties.
func (tr *TextRun) SetFont(f *Font) { tr.font = f }

// DrawingShape represents a picture.
type DrawingShape struct {
	BaseShape
	data     []byte
	mimeType string
}

func (d *DrawingShape) GetType() ShapeType { return ShapeTypeDrawing }

// NewDrawingShape creates a new empty picture.
func NewDrawingShape() *DrawingShape {
	return &DrawingShape{}
}

// SetImageData sets the raw image data.
func (d *DrawingShape) SetImageData(data []byte, mimeType string) *DrawingShape {
	d.data = data
	d.mimeType = mimeType
	return d
}

// GetImageData returns the raw image data.
func (d *DrawingShape) GetImageData() []byte { return d.data }

// GetMimeType returns the image MIME type.
func (d *DrawingShape) GetMimeType() string { return d.mimeType }
