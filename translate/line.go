package translate

// processLine emits a straight connector between (x1,y1) and (x2,y2).
// Missing coordinates default to 0; malformed ones fail the element.
func processLine(c Context, el *Element) (Result, error) {
	var res Result

	var coords [4]float64
	for i, name := range []string{"x1", "y1", "x2", "y2"} {
		v := el.Attr(name)
		if v == "" {
			continue
		}
		f, err := ParseNumber(name, v)
		if err != nil {
			return res, err
		}
		coords[i] = f
	}

	line := res.resolvePaint(el, []string{"stroke"}, "strokeOpacity", "opacity")
	if !line.Set && el.StyleValue("stroke") == "" {
		line = Solid(RGB{})
	}

	res.Commands = []Command{{
		Op:        OpConnector,
		Begin:     c.Vertex(Point{X: coords[0], Y: coords[1]}),
		End:       c.Vertex(Point{X: coords[2], Y: coords[3]}),
		Line:      line,
		LineWidth: c.StrokeWidth(res.strokeWidthPx(el)),
		ArrowEnd:  el.StyleValue("markerEnd") != "",
	}}
	return res, nil
}
