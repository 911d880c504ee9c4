package translate

import (
	"bytes"
	"fmt"
	"io"
)

// Sink is the presentation-building API the engine drives. One Sink
// receives the shapes of one slide, in draw order.
type Sink interface {
	AddRect(left, top, width, height int64) Shape
	AddOval(left, top, width, height int64) Shape
	AddConnector(beginX, beginY, endX, endY int64) Connector
	BuildFreeform(startX, startY int64) FreeformBuilder
	AddTextBox(left, top, width, height int64) TextFrame
	AddPicture(r io.ReadSeeker, mimeType string, left, top, width, height int64) error
}

// Shape is a placed shape whose paints can still be adjusted.
type Shape interface {
	SetFill(p Paint)
	SetLine(p Paint, width int64)
}

// Connector is a straight line between two points.
type Connector interface {
	SetLine(p Paint, width int64)
	// AddArrowHead attaches an arrowhead to the end of the connector.
	AddArrowHead()
}

// FreeformBuilder accumulates a point trace and turns it into a shape.
type FreeformBuilder interface {
	AddLineSegments(vertices []Vertex, closed bool)
	ConvertToShape() Shape
}

// TextFrame is the text body of a text box.
type TextFrame interface {
	Clear()
	AddParagraph() TextParagraph
}

// TextParagraph receives runs in order.
type TextParagraph interface {
	AddRun(text string, font *Font)
}

// Emit replays commands on the sink in order. It stops at the first
// picture insertion failure.
func Emit(sink Sink, cmds []Command) error {
	for i := range cmds {
		if err := emitOne(sink, &cmds[i]); err != nil {
			return err
		}
	}
	return nil
}

func emitOne(sink Sink, c *Command) error {
	switch c.Op {
	case OpRect:
		s := sink.AddRect(c.Left, c.Top, c.Width, c.Height)
		s.SetFill(c.Fill)
		s.SetLine(c.Line, c.LineWidth)
	case OpOval:
		s := sink.AddOval(c.Left, c.Top, c.Width, c.Height)
		s.SetFill(c.Fill)
		s.SetLine(c.Line, c.LineWidth)
	case OpConnector:
		conn := sink.AddConnector(c.Begin.X, c.Begin.Y, c.End.X, c.End.Y)
		conn.SetLine(c.Line, c.LineWidth)
		if c.ArrowEnd {
			conn.AddArrowHead()
		}
	case OpFreeform:
		b := sink.BuildFreeform(c.Start.X, c.Start.Y)
		b.AddLineSegments(c.Segments, c.Closed)
		s := b.ConvertToShape()
		s.SetFill(c.Fill)
		s.SetLine(c.Line, c.LineWidth)
	case OpTextBox:
		tf := sink.AddTextBox(c.Left, c.Top, c.Width, c.Height)
		tf.Clear()
		for _, p := range c.Paragraphs {
			para := tf.AddParagraph()
			for _, r := range p.Runs {
				if r.Styled {
					f := r.Font
					para.AddRun(r.Text, &f)
				} else {
					para.AddRun(r.Text, nil)
				}
			}
		}
	case OpPicture:
		return sink.AddPicture(bytes.NewReader(c.Image), c.MimeType, c.Left, c.Top, c.Width, c.Height)
	default:
		return fmt.Errorf("unknown shape operation %d", c.Op)
	}
	return nil
}
