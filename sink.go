package pptweaver

import (
	"fmt"
	"io"

	"github.com/VantageDataChat/pptweaver/pptx"
	"github.com/VantageDataChat/pptweaver/translate"
)

// slideSink adapts a pptx slide to the translator's sink contract.
type slideSink struct {
	slide *pptx.Slide
}

var _ translate.Sink = (*slideSink)(nil)

func newSlideSink(s *pptx.Slide) *slideSink {
	return &slideSink{slide: s}
}

func place(b *pptx.BaseShape, left, top, width, height int64) {
	b.SetPosition(left, top)
	b.SetSize(max(width, 0), max(height, 0))
}

func toColor(p translate.Paint) pptx.Color {
	return pptx.NewColorAlpha(p.Color.R, p.Color.G, p.Color.B, p.Alpha)
}

func (s *slideSink) addAutoShape(kind pptx.AutoShapeType, left, top, width, height int64) translate.Shape {
	a := s.slide.CreateAutoShape()
	a.SetAutoShapeType(kind)
	place(&a.BaseShape, left, top, width, height)
	return &shapeAdapter{base: &a.BaseShape}
}

func (s *slideSink) AddRect(left, top, width, height int64) translate.Shape {
	return s.addAutoShape(pptx.AutoShapeRectangle, left, top, width, height)
}

func (s *slideSink) AddOval(left, top, width, height int64) translate.Shape {
	return s.addAutoShape(pptx.AutoShapeEllipse, left, top, width, height)
}

func (s *slideSink) AddConnector(beginX, beginY, endX, endY int64) translate.Connector {
	return &connectorAdapter{line: s.slide.CreateLineShape(beginX, beginY, endX, endY)}
}

func (s *slideSink) BuildFreeform(startX, startY int64) translate.FreeformBuilder {
	return &freeformBuilder{slide: s.slide, points: []pptx.PathPoint{{X: startX, Y: startY}}}
}

func (s *slideSink) AddTextBox(left, top, width, height int64) translate.TextFrame {
	rt := s.slide.CreateRichTextShape()
	place(&rt.BaseShape, left, top, width, height)
	return &textFrameAdapter{shape: rt}
}

func (s *slideSink) AddPicture(r io.ReadSeeker, mimeType string, left, top, width, height int64) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read picture: %w", err)
	}
	if len(data) == 0 {
		return fmt.Errorf("picture has no data")
	}
	d := s.slide.CreateDrawingShape()
	d.SetImageData(data, mimeType)
	place(&d.BaseShape, left, top, width, height)
	return nil
}

// shapeAdapter leaves the fill and outline unset unless a paint is set,
// so unset paints are written without any fill or line element.
type shapeAdapter struct {
	base *pptx.BaseShape
}

func (a *shapeAdapter) SetFill(p translate.Paint) {
	if !p.Set {
		return
	}
	a.base.SetFill(pptx.NewFill().SetSolid(toColor(p)))
}

func (a *shapeAdapter) SetLine(p translate.Paint, width int64) {
	if !p.Set {
		return
	}
	a.base.SetBorder(pptx.NewBorder().SetSolid(toColor(p), max(width, 0)))
}

type connectorAdapter struct {
	line *pptx.LineShape
}

func (c *connectorAdapter) SetLine(p translate.Paint, width int64) {
	if !p.Set {
		c.line.SetLineStyle(pptx.BorderNone)
		return
	}
	c.line.SetLineStyle(pptx.BorderSolid)
	c.line.SetLineColor(toColor(p))
	c.line.SetLineWidthEMU(width)
}

func (c *connectorAdapter) AddArrowHead() {
	c.line.SetTailEnd(pptx.NewArrowHead())
}

// freeformBuilder collects the trace; the shape is created on
// ConvertToShape so its frame is the bounding box of every point.
type freeformBuilder struct {
	slide  *pptx.Slide
	points []pptx.PathPoint
	closed bool
}

func (b *freeformBuilder) AddLineSegments(vertices []translate.Vertex, closed bool) {
	for _, v := range vertices {
		b.points = append(b.points, pptx.PathPoint{X: v.X, Y: v.Y})
	}
	b.closed = b.closed || closed
}

func (b *freeformBuilder) ConvertToShape() translate.Shape {
	f := b.slide.CreateFreeformShape(b.points, b.closed)
	return &shapeAdapter{base: &f.BaseShape}
}

type textFrameAdapter struct {
	shape *pptx.RichTextShape
}

func (t *textFrameAdapter) Clear() { t.shape.Clear() }

func (t *textFrameAdapter) AddParagraph() translate.TextParagraph {
	return &paragraphAdapter{para: t.shape.CreateParagraph()}
}

type paragraphAdapter struct {
	para *pptx.Paragraph
}

func (p *paragraphAdapter) AddRun(text string, font *translate.Font) {
	if font == nil {
		p.para.CreatePlainRun(text)
		return
	}
	run := p.para.CreateTextRun(text)
	f := run.GetFont()
	f.SetSize(font.Size).SetBold(font.Bold).SetItalic(font.Italic)
	if font.Color.Set {
		f.SetColor(toColor(font.Color))
	}
}
