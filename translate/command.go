package translate

// Op is the sink operation a Command replays as.
type Op int

const (
	OpRect Op = iota + 1
	OpOval
	OpConnector
	OpFreeform
	OpTextBox
	OpPicture
)

func (o Op) String() string {
	switch o {
	case OpRect:
		return "rect"
	case OpOval:
		return "oval"
	case OpConnector:
		return "connector"
	case OpFreeform:
		return "freeform"
	case OpTextBox:
		return "textbox"
	case OpPicture:
		return "picture"
	}
	return "unknown"
}

// Vertex is a point in output units (EMU).
type Vertex struct {
	X, Y int64
}

// Font is the resolved formatting of one text run.
type Font struct {
	Size   float64 // points
	Bold   bool
	Italic bool
	Color  Paint
}

// Run is a piece of text with uniform formatting. Styled is false for
// synthesized runs such as list bullets, which inherit the frame defaults.
type Run struct {
	Text   string
	Font   Font
	Styled bool
}

// Paragraph is an ordered list of runs.
type Paragraph struct {
	Runs []Run
}

// Command is the immutable result of processing one element. Only the
// fields relevant to Op are populated.
type Command struct {
	Op Op

	Left, Top, Width, Height int64

	Fill      Paint
	Line      Paint
	LineWidth int64

	// connector
	Begin, End Vertex
	ArrowEnd   bool

	// freeform
	Start    Vertex
	Segments []Vertex
	Closed   bool

	// text
	Paragraphs []Paragraph

	// picture
	Image    []byte
	MimeType string
}
