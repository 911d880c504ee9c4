package translate

// Result is the outcome of processing one element: the commands to replay
// and any non-fatal problems that were resolved to defaults.
type Result struct {
	Commands []Command
	Warnings []error
}

func (r *Result) warn(err error) {
	if err != nil {
		r.Warnings = append(r.Warnings, err)
	}
}

// defaultStrokeWidthPx applies when a stroke color is set without a width.
const defaultStrokeWidthPx = 1.0

// resolvePaint parses the color in the first non-empty property and
// applies the opacity properties. Parse failures omit the paint.
func (r *Result) resolvePaint(el *Element, colorProps []string, opacityProps ...string) Paint {
	var raw string
	for _, p := range colorProps {
		if v := el.StyleValue(p); v != "" {
			raw = v
			break
		}
	}
	p, err := ParseColor(raw)
	if err != nil {
		r.warn(err)
		return NoPaint
	}
	for _, op := range opacityProps {
		o, err := ParseOpacity(op, el.StyleValue(op))
		r.warn(err)
		p = p.WithOpacity(o)
	}
	return p
}

func (r *Result) fill(el *Element) Paint {
	return r.resolvePaint(el, []string{"fill", "backgroundColor"}, "fillOpacity", "opacity")
}

func (r *Result) stroke(c Context, el *Element) (Paint, int64) {
	p := r.resolvePaint(el, []string{"stroke"}, "strokeOpacity", "opacity")
	if !p.Set {
		return p, 0
	}
	return p, c.StrokeWidth(r.strokeWidthPx(el))
}

func (r *Result) strokeWidthPx(el *Element) float64 {
	v := el.StyleValue("strokeWidth")
	if v == "" {
		return defaultStrokeWidthPx
	}
	w, err := ParseLength("strokeWidth", v)
	if err != nil || w < 0 {
		r.warn(err)
		return defaultStrokeWidthPx
	}
	return w
}

func processBox(op Op, c Context, el *Element) (Result, error) {
	var res Result
	cmd := Command{Op: op}
	cmd.Left, cmd.Top, cmd.Width, cmd.Height = c.Box(el.Rect)
	cmd.Fill = res.fill(el)
	cmd.Line, cmd.LineWidth = res.stroke(c, el)
	res.Commands = []Command{cmd}
	return res, nil
}

// processRect emits one rectangle from the bounding box. Zero-size boxes
// are still emitted.
func processRect(c Context, el *Element) (Result, error) {
	return processBox(OpRect, c, el)
}

// processOval emits one ellipse from the bounding box.
func processOval(c Context, el *Element) (Result, error) {
	return processBox(OpOval, c, el)
}
