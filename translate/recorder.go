package translate

import (
	"fmt"
	"io"
)

// Call is one recorded sink invocation.
type Call struct {
	Method string
	Args   []any
}

func (c Call) String() string {
	return fmt.Sprintf("%s%v", c.Method, c.Args)
}

// Recorder is a Sink that records every call in order. It backs dry runs
// and tests.
type Recorder struct {
	Calls []Call
}

func (r *Recorder) record(method string, args ...any) {
	r.Calls = append(r.Calls, Call{Method: method, Args: args})
}

// Count returns how many times method was called.
func (r *Recorder) Count(method string) int {
	n := 0
	for _, c := range r.Calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

// Find returns the recorded calls of method.
func (r *Recorder) Find(method string) []Call {
	var out []Call
	for _, c := range r.Calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

func (r *Recorder) AddRect(left, top, width, height int64) Shape {
	r.record("AddRect", left, top, width, height)
	return recShape{r}
}

func (r *Recorder) AddOval(left, top, width, height int64) Shape {
	r.record("AddOval", left, top, width, height)
	return recShape{r}
}

func (r *Recorder) AddConnector(beginX, beginY, endX, endY int64) Connector {
	r.record("AddConnector", beginX, beginY, endX, endY)
	return recShape{r}
}

func (r *Recorder) BuildFreeform(startX, startY int64) FreeformBuilder {
	r.record("BuildFreeform", startX, startY)
	return recShape{r}
}

func (r *Recorder) AddTextBox(left, top, width, height int64) TextFrame {
	r.record("AddTextBox", left, top, width, height)
	return recShape{r}
}

func (r *Recorder) AddPicture(rd io.ReadSeeker, mimeType string, left, top, width, height int64) error {
	data, err := io.ReadAll(rd)
	if err != nil {
		return err
	}
	r.record("AddPicture", data, mimeType, left, top, width, height)
	return nil
}

type recShape struct{ r *Recorder }

func (s recShape) SetFill(p Paint)              { s.r.record("SetFill", p) }
func (s recShape) SetLine(p Paint, width int64) { s.r.record("SetLine", p, width) }
func (s recShape) AddArrowHead()                { s.r.record("AddArrowHead") }

func (s recShape) AddLineSegments(vertices []Vertex, closed bool) {
	cp := append([]Vertex(nil), vertices...)
	s.r.record("AddLineSegments", cp, closed)
}

func (s recShape) ConvertToShape() Shape {
	s.r.record("ConvertToShape")
	return s
}

func (s recShape) Clear() { s.r.record("Clear") }

func (s recShape) AddParagraph() TextParagraph {
	s.r.record("AddParagraph")
	return s
}

func (s recShape) AddRun(text string, font *Font) {
	if font == nil {
		s.r.record("AddRun", text, nil)
		return
	}
	f := *font
	s.r.record("AddRun", text, &f)
}
