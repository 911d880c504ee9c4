package translate

import (
	"errors"
	"strings"

	"github.com/samber/lo"
)

var errEmptyTrace = errors.New("no points to trace")

// ParsePoints tokenizes an SVG points list ("10,20 50,60" or
// "10 20, 50 60") into pixel pairs.
func ParsePoints(property, s string) ([]Point, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	if len(fields)%2 != 0 {
		return nil, &ParseError{Property: property, Value: s, Err: errors.New("odd number of coordinates")}
	}
	pts := make([]Point, 0, len(fields)/2)
	for i := 0; i < len(fields); i += 2 {
		x, err := ParseNumber(property, fields[i])
		if err != nil {
			return nil, err
		}
		y, err := ParseNumber(property, fields[i+1])
		if err != nil {
			return nil, err
		}
		pts = append(pts, Point{X: x, Y: y})
	}
	return pts, nil
}

// Trace converts a pixel point list into a freeform start vertex and
// segment list. A closed trace returns to its start point; an open one
// never does.
func Trace(c Context, pts []Point, closed bool) (Vertex, []Vertex, error) {
	if len(pts) == 0 {
		return Vertex{}, nil, errEmptyTrace
	}
	start := c.Vertex(pts[0])
	segments := lo.Map(pts[1:], func(p Point, _ int) Vertex { return c.Vertex(p) })
	if closed {
		segments = append(segments, start)
	}
	return start, segments, nil
}

func processPolygon(c Context, el *Element) (Result, error) {
	return processPointList(c, el, true)
}

func processPolyline(c Context, el *Element) (Result, error) {
	return processPointList(c, el, false)
}

func processPointList(c Context, el *Element, closed bool) (Result, error) {
	pts, err := ParsePoints("points", el.Attr("points"))
	if err != nil {
		return Result{}, err
	}
	return freeform(c, el, pts, closed)
}

// processPath traces the pre-flattened path outline. Curve commands in the
// d attribute are never interpreted; only its closing command is read.
func processPath(c Context, el *Element) (Result, error) {
	pts := el.LinearizedPoints
	if len(pts) == 0 {
		var err error
		if pts, err = ParsePoints("linearized_points", el.Attr("linearized_points")); err != nil {
			return Result{}, err
		}
	}
	return freeform(c, el, pts, pathClosed(el))
}

func pathClosed(el *Element) bool {
	if el.Closed {
		return true
	}
	d := el.Attr("d")
	return strings.HasSuffix(d, "z") || strings.HasSuffix(d, "Z")
}

func freeform(c Context, el *Element, pts []Point, closed bool) (Result, error) {
	var res Result
	start, segments, err := Trace(c, pts, closed)
	if err != nil {
		return res, &ParseError{Property: "points", Value: el.Attr("points"), Err: err}
	}
	cmd := Command{
		Op:       OpFreeform,
		Start:    start,
		Segments: segments,
		Closed:   closed,
	}
	cmd.Left, cmd.Top, cmd.Width, cmd.Height = c.Box(el.Rect)
	cmd.Fill = res.fill(el)
	cmd.Line, cmd.LineWidth = res.stroke(c, el)
	res.Commands = []Command{cmd}
	return res, nil
}
