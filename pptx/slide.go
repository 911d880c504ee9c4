package pptx

// Slide is an ordered list of shapes. Later shapes draw on top of
// earlier ones.
type Slide struct {
	name       string
	shapes     []Shape
	background *Fill
}

func newSlide() *Slide {
	return &Slide{shapes: make([]Shape, 0)}
}

// GetName returns the slide name.
func (s *Slide) GetName() string { return s.name }

// SetName sets the slide name.
func (s *Slide) SetName(name string) { s.name = name }

// GetShapes returns the shapes in draw order.
func (s *Slide) GetShapes() []Shape { return s.shapes }

// GetBackground returns the slide background fill, or nil.
func (s *Slide) GetBackground() *Fill { return s.background }

// SetBackground sets a solid background fill.
func (s *Slide) SetBackground(f *Fill) { s.background = f }

// AddShape appends a shape.
func (s *Slide) AddShape(shape Shape) Shape {
	s.shapes = append(s.shapes, shape)
	return shape
}

// CreateAutoShape creates and appends a rectangle auto shape.
func (s *Slide) CreateAutoShape() *AutoShape {
	a := NewAutoShape()
	s.shapes = append(s.shapes, a)
	return a
}

// CreateLineShape creates and appends a connector between two points.
func (s *Slide) CreateLineShape(x1, y1, x2, y2 int64) *LineShape {
	l := NewLineShape()
	l.SetEndpoints(x1, y1, x2, y2)
	s.shapes = append(s.shapes, l)
	return l
}

// CreateFreeformShape creates and appends a freeform through the given
// absolute points.
func (s *Slide) CreateFreeformShape(points []PathPoint, closed bool) *FreeformShape {
	f := NewFreeformShape(points, closed)
	s.shapes = append(s.shapes, f)
	return f
}

// CreateRichTextShape creates and appends a text box.
func (s *Slide) CreateRichTextShape() *RichTextShape {
	rt := NewRichTextShape()
	s.shapes = append(s.shapes, rt)
	return rt
}

// CreateDrawingShape creates and appends a picture.
func (s *Slide) CreateDrawingShape() *DrawingShape {
	d := NewDrawingShape()
	s.shapes = append(s.shapes, d)
	return d
}
