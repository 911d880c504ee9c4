package translate

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietTranslator(opts ...Option) *Translator {
	return New(append([]Option{WithLogger(log.New(io.Discard))}, opts...)...)
}

func translateOne(t *testing.T, tr *Translator, c Context, els ...Element) (*Recorder, *Report) {
	t.Helper()
	rec := &Recorder{}
	rep := &Report{}
	require.NoError(t, tr.TranslateSlide(context.Background(), 1, c, els, rec, rep))
	return rec, rep
}

func methods(rec *Recorder) []string {
	out := make([]string, len(rec.Calls))
	for i, c := range rec.Calls {
		out[i] = c.Method
	}
	return out
}

func TestRect(t *testing.T) {
	el := Element{
		TagName: "rect",
		Rect:    Rect{X: 10, Y: 20, Width: 100, Height: 50},
		Style:   map[string]string{"fill": "#ff0000", "stroke": "#000000", "strokeWidth": "2px"},
	}
	rec, rep := translateOne(t, quietTranslator(), NewContext(1, 1), el)

	assert.Equal(t, []Call{
		{Method: "AddRect", Args: []any{int64(127000), int64(254000), int64(1270000), int64(635000)}},
		{Method: "SetFill", Args: []any{Solid(RGB{255, 0, 0})}},
		{Method: "SetLine", Args: []any{Solid(RGB{}), int64(25400)}},
	}, rec.Calls)
	assert.Equal(t, 1, rep.Shapes)
	assert.Empty(t, rep.Failures)
	assert.Empty(t, rep.Warnings)
}

func TestRectWithoutPaint(t *testing.T) {
	el := Element{TagName: "rect", Rect: Rect{Width: 0, Height: 0}}
	rec, _ := translateOne(t, quietTranslator(), NewContext(1, 1), el)

	require.Len(t, rec.Calls, 3)
	assert.Equal(t, []any{int64(0), int64(0), int64(0), int64(0)}, rec.Calls[0].Args)
	assert.Equal(t, []any{NoPaint}, rec.Calls[1].Args)
	assert.Equal(t, []any{NoPaint, int64(0)}, rec.Calls[2].Args)
}

func TestRectBadColorFallsBack(t *testing.T) {
	el := Element{
		TagName: "rect",
		Rect:    Rect{Width: 10, Height: 10},
		Style:   map[string]string{"fill": "notacolor"},
	}
	rec, rep := translateOne(t, quietTranslator(), NewContext(1, 1), el)

	assert.Equal(t, 1, rec.Count("AddRect"))
	assert.Equal(t, []any{NoPaint}, rec.Find("SetFill")[0].Args)
	require.Len(t, rep.Warnings, 1)
	var pe *ParseError
	assert.True(t, errors.As(rep.Warnings[0], &pe))
	assert.Empty(t, rep.Failures)
}

func TestOval(t *testing.T) {
	for _, tag := range []string{"circle", "ellipse", "CIRCLE"} {
		el := Element{
			TagName: tag,
			Rect:    Rect{X: 0, Y: 0, Width: 40, Height: 40},
			Style:   map[string]string{"fill": "blue", "fillOpacity": "0.5"},
		}
		rec, _ := translateOne(t, quietTranslator(), NewContext(1, 1), el)
		require.Equal(t, 1, rec.Count("AddOval"), tag)
		fill := rec.Find("SetFill")[0].Args[0].(Paint)
		assert.Equal(t, RGB{0, 0, 255}, fill.Color)
		assert.InDelta(t, 0.5, fill.Alpha, 1e-9)
	}
}

func lineElement(markerEnd string) Element {
	style := map[string]string{"stroke": "#0000ff"}
	if markerEnd != "" {
		style["markerEnd"] = markerEnd
	}
	return Element{
		TagName:    "line",
		Attributes: map[string]string{"x1": "0", "y1": "0", "x2": "100", "y2": "50"},
		Style:      style,
	}
}

func TestLineArrowhead(t *testing.T) {
	rec, _ := translateOne(t, quietTranslator(), NewContext(1, 1), lineElement("url(#arrow)"))
	assert.Equal(t, []Call{
		{Method: "AddConnector", Args: []any{int64(0), int64(0), int64(1270000), int64(635000)}},
		{Method: "SetLine", Args: []any{Solid(RGB{0, 0, 255}), int64(12700)}},
		{Method: "AddArrowHead", Args: nil},
	}, rec.Calls)
	assert.Equal(t, 1, rec.Count("AddArrowHead"))

	rec, _ = translateOne(t, quietTranslator(), NewContext(1, 1), lineElement(""))
	assert.Equal(t, 1, rec.Count("AddConnector"))
	assert.Equal(t, 0, rec.Count("AddArrowHead"))
}

func TestLineDefaults(t *testing.T) {
	el := Element{TagName: "line", Attributes: map[string]string{"x2": "10"}}
	rec, _ := translateOne(t, quietTranslator(), NewContext(1, 1), el)
	assert.Equal(t, []any{int64(0), int64(0), int64(127000), int64(0)}, rec.Calls[0].Args)
	assert.Equal(t, Solid(RGB{}), rec.Calls[1].Args[0])
}

func TestLineMalformedCoordinate(t *testing.T) {
	el := Element{TagName: "line", Attributes: map[string]string{"x1": "abc"}}
	rec, rep := translateOne(t, quietTranslator(), NewContext(1, 1), el)

	assert.Empty(t, rec.Calls)
	require.Len(t, rep.Failures, 1)
	var ee *ElementError
	require.True(t, errors.As(rep.Failures[0], &ee))
	assert.Equal(t, 1, ee.Slide)
	assert.Equal(t, 0, ee.Index)
	assert.Equal(t, "line", ee.TagName)
	var pe *ParseError
	require.True(t, errors.As(rep.Failures[0], &pe))
	assert.Equal(t, "x1", pe.Property)
}

func TestPolygonClosesTrace(t *testing.T) {
	el := Element{
		TagName:    "polygon",
		Attributes: map[string]string{"points": "10,20 50,60 100,20"},
		Style:      map[string]string{"fill": "#00ff00"},
	}
	rec, _ := translateOne(t, quietTranslator(), NewContext(1, 1), el)

	assert.Equal(t, []string{"BuildFreeform", "AddLineSegments", "ConvertToShape", "SetFill", "SetLine"}, methods(rec))
	assert.Equal(t, []any{int64(127000), int64(254000)}, rec.Calls[0].Args)
	assert.Equal(t, []any{
		[]Vertex{{635000, 762000}, {1270000, 254000}, {127000, 254000}},
		true,
	}, rec.Calls[1].Args)
}

func TestPolylineStaysOpen(t *testing.T) {
	el := Element{
		TagName:    "polyline",
		Attributes: map[string]string{"points": "10 20, 50 60, 100 20"},
	}
	rec, _ := translateOne(t, quietTranslator(), NewContext(1, 1), el)

	assert.Equal(t, []any{
		[]Vertex{{635000, 762000}, {1270000, 254000}},
		false,
	}, rec.Find("AddLineSegments")[0].Args)
}

func TestPolygonScaled(t *testing.T) {
	el := Element{TagName: "polygon", Attributes: map[string]string{"points": "10,20 50,60 100,20"}}
	rec, _ := translateOne(t, quietTranslator(), NewContext(2, 2), el)
	assert.Equal(t, []any{int64(254000), int64(508000)}, rec.Calls[0].Args)
}

func TestPolygonBadPoints(t *testing.T) {
	for _, pts := range []string{"", "10,20 30", "a,b"} {
		el := Element{TagName: "polygon", Attributes: map[string]string{"points": pts}}
		rec, rep := translateOne(t, quietTranslator(), NewContext(1, 1), el)
		assert.Empty(t, rec.Calls, pts)
		assert.Len(t, rep.Failures, 1, pts)
	}
}

func TestPath(t *testing.T) {
	el := Element{
		TagName:          "path",
		Attributes:       map[string]string{"d": "M10 20 C 10 10, 30 10, 30 40 Z"},
		LinearizedPoints: []Point{{10, 20}, {20, 12}, {30, 40}},
	}
	rec, _ := translateOne(t, quietTranslator(), NewContext(1, 1), el)
	assert.Equal(t, []any{
		[]Vertex{{254000, 152400}, {381000, 508000}, {127000, 254000}},
		true,
	}, rec.Find("AddLineSegments")[0].Args)

	open := Element{
		TagName:    "path",
		Attributes: map[string]string{"d": "M10 20 L30 40", "linearized_points": "10,20 30,40"},
	}
	rec, _ = translateOne(t, quietTranslator(), NewContext(1, 1), open)
	assert.Equal(t, []any{[]Vertex{{381000, 508000}}, false}, rec.Find("AddLineSegments")[0].Args)
}

func TestTextDefaults(t *testing.T) {
	el := Element{TagName: "text", Rect: Rect{X: 5, Y: 5, Width: 100, Height: 20}, Text: "Hello"}
	rec, _ := translateOne(t, quietTranslator(), NewContext(1, 1), el)

	assert.Equal(t, []string{"AddTextBox", "Clear", "AddParagraph", "AddRun"}, methods(rec))
	run := rec.Calls[3]
	assert.Equal(t, "Hello", run.Args[0])
	assert.Equal(t, &Font{Size: 12, Color: NoPaint}, run.Args[1])
}

func TestTextStyled(t *testing.T) {
	el := Element{
		TagName: "text",
		Text:    "Café",
		Style: map[string]string{
			"fontSize":   "24px",
			"fontWeight": "700",
			"fontStyle":  "italic",
			"fill":       "#333333",
		},
	}
	rec, _ := translateOne(t, quietTranslator(), NewContext(1, 1), el)

	run := rec.Find("AddRun")[0]
	assert.Equal(t, "Café", run.Args[0])
	assert.Equal(t, &Font{Size: 18, Bold: true, Italic: true, Color: Solid(RGB{0x33, 0x33, 0x33})}, run.Args[1])
}

func TestRichTextParagraphs(t *testing.T) {
	el := Element{
		TagName: "foreignObject",
		Rect:    Rect{Width: 400, Height: 300},
		TextRuns: []TextRun{
			{Text: "Title", TagName: "h1", Style: map[string]string{"fontWeight": "700", "fontSize": "32px"}},
			{Text: "Some ", TagName: "p"},
			{Text: "bold", TagName: "strong"},
			{Text: "Item", TagName: "li"},
			{Text: " tail", TagName: "em"},
		},
	}
	tr := quietTranslator()
	res, err := tr.Process(context.Background(), NewContext(1, 1), &el)
	require.NoError(t, err)
	require.Len(t, res.Commands, 1)

	paras := res.Commands[0].Paragraphs
	require.Len(t, paras, 3)
	assert.Len(t, paras[0].Runs, 1)
	assert.Len(t, paras[1].Runs, 2)
	assert.Len(t, paras[2].Runs, 3)

	assert.True(t, paras[0].Runs[0].Font.Bold)
	assert.Equal(t, 24.0, paras[0].Runs[0].Font.Size)
	assert.False(t, paras[1].Runs[0].Font.Bold)
	assert.True(t, paras[1].Runs[1].Font.Bold)
	assert.Equal(t, Run{Text: BulletGlyph}, paras[2].Runs[0])
	assert.True(t, paras[2].Runs[2].Font.Italic)

	rec, _ := translateOne(t, tr, NewContext(1, 1), el)
	assert.Equal(t, 1, rec.Count("Clear"))
	assert.Equal(t, 3, rec.Count("AddParagraph"))
	bullet := rec.Find("AddRun")[3]
	assert.Equal(t, []any{BulletGlyph, nil}, bullet.Args)
}

func TestRichTextListItems(t *testing.T) {
	el := Element{
		TagName: "foreignObject",
		Rect:    Rect{Width: 200, Height: 100},
		TextRuns: []TextRun{
			{Text: "Intro", TagName: "p"},
			{Text: "First", TagName: "li"},
			{Text: "Second", TagName: "li", Style: map[string]string{"fontWeight": "bold"}},
		},
	}
	res, err := quietTranslator().Process(context.Background(), NewContext(1, 1), &el)
	require.NoError(t, err)

	paras := res.Commands[0].Paragraphs
	require.Len(t, paras, 3)
	assert.Len(t, paras[0].Runs, 1)
	require.Len(t, paras[1].Runs, 2)
	require.Len(t, paras[2].Runs, 2)
	assert.Equal(t, BulletGlyph, paras[1].Runs[0].Text)
	assert.Equal(t, "First", paras[1].Runs[1].Text)
	assert.False(t, paras[1].Runs[1].Font.Bold)
	assert.Equal(t, BulletGlyph, paras[2].Runs[0].Text)
	assert.True(t, paras[2].Runs[1].Font.Bold)
}

func TestRichTextIgnoresElementFill(t *testing.T) {
	el := Element{
		TagName: "richtext",
		Style:   map[string]string{"fill": "rgb(0, 0, 0)", "color": "rgb(0, 0, 255)"},
		TextRuns: []TextRun{
			{Text: "inherits", TagName: "p"},
			{Text: "own", TagName: "span", Style: map[string]string{"color": "#ff0000"}},
		},
	}
	res, err := quietTranslator().Process(context.Background(), NewContext(1, 1), &el)
	require.NoError(t, err)
	runs := res.Commands[0].Paragraphs[0].Runs
	require.Len(t, runs, 2)
	assert.Equal(t, Solid(RGB{B: 255}), runs[0].Font.Color)
	assert.Equal(t, Solid(RGB{R: 255}), runs[1].Font.Color)
}

func TestRichTextEmpty(t *testing.T) {
	el := Element{TagName: "foreignObject"}
	rec, rep := translateOne(t, quietTranslator(), NewContext(1, 1), el)
	assert.Equal(t, []string{"AddTextBox", "Clear"}, methods(rec))
	assert.Empty(t, rep.Failures)
}

type mapSource map[string][]byte

func (m mapSource) Load(_ context.Context, ref string) ([]byte, string, error) {
	if b, ok := m[ref]; ok {
		return b, "image/png", nil
	}
	return nil, "", &FetchError{URL: ref, StatusCode: 404}
}

func TestImage(t *testing.T) {
	src := mapSource{"https://example.com/a.png": []byte("png-bytes")}
	el := Element{
		TagName:    "img",
		Rect:       Rect{X: 1, Y: 1, Width: 10, Height: 10},
		Attributes: map[string]string{"src": "https://example.com/a.png"},
	}
	rec, rep := translateOne(t, quietTranslator(WithImageSource(src)), NewContext(1, 1), el)

	require.Empty(t, rep.Failures)
	assert.Equal(t, []Call{{
		Method: "AddPicture",
		Args:   []any{[]byte("png-bytes"), "image/png", int64(12700), int64(12700), int64(127000), int64(127000)},
	}}, rec.Calls)
}

func TestImageFailures(t *testing.T) {
	missing := Element{TagName: "image", Attributes: map[string]string{"href": "https://example.com/missing.png"}}
	noRef := Element{TagName: "image"}

	tr := quietTranslator(WithImageSource(mapSource{}))
	rec, rep := translateOne(t, tr, NewContext(1, 1), missing, noRef)
	assert.Empty(t, rec.Calls)
	require.Len(t, rep.Failures, 2)

	var fe *FetchError
	require.True(t, errors.As(rep.Failures[0], &fe))
	assert.Equal(t, 404, fe.StatusCode)
	var pe *ParseError
	require.True(t, errors.As(rep.Failures[1], &pe))
	assert.Equal(t, "href", pe.Property)

	_, rep = translateOne(t, quietTranslator(), NewContext(1, 1), missing)
	require.Len(t, rep.Failures, 1)
	assert.ErrorIs(t, rep.Failures[0], ErrNoImageSource)
}

func TestUnsupportedElementIsSkipped(t *testing.T) {
	els := []Element{
		{TagName: "rect"},
		{TagName: "video"},
		{TagName: "circle"},
	}
	rec, rep := translateOne(t, quietTranslator(), NewContext(1, 1), els...)

	assert.Equal(t, []string{"AddRect", "SetFill", "SetLine", "AddOval", "SetFill", "SetLine"}, methods(rec))
	assert.Equal(t, 3, rep.Elements)
	assert.Equal(t, 2, rep.Shapes)
	assert.Equal(t, 1, rep.Skipped)
	require.Len(t, rep.Failures, 1)
	var ue *UnsupportedElementError
	require.True(t, errors.As(rep.Failures[0], &ue))
	assert.Equal(t, "video", ue.TagName)
	var ee *ElementError
	require.True(t, errors.As(rep.Failures[0], &ee))
	assert.Equal(t, 1, ee.Index)
}

func TestProcessIsDeterministic(t *testing.T) {
	el := Element{
		TagName:    "polygon",
		Rect:       Rect{X: 10, Y: 20, Width: 90, Height: 40},
		Attributes: map[string]string{"points": "10,20 50,60 100,20"},
		Style:      map[string]string{"fill": "rgba(10, 20, 30, 0.4)", "stroke": "red"},
	}
	tr := quietTranslator()
	c := NewContext(0.75, 0.75)
	a, err := tr.Process(context.Background(), c, &el)
	require.NoError(t, err)
	b, err := tr.Process(context.Background(), c, &el)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestTranslateSlideCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := &Recorder{}
	rep := &Report{}
	err := quietTranslator().TranslateSlide(ctx, 1, NewContext(1, 1), []Element{{TagName: "rect"}}, rec, rep)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, rec.Calls)
}

// cancelSource cancels the run from inside an image load.
type cancelSource struct{ cancel context.CancelFunc }

func (s cancelSource) Load(ctx context.Context, _ string) ([]byte, string, error) {
	s.cancel()
	return nil, "", ctx.Err()
}

func TestTranslateSlideCancelledMidSlide(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	elements := []Element{
		{TagName: "rect"},
		{TagName: "image", Attributes: map[string]string{"href": "https://example.com/a.png"}},
		{TagName: "circle"},
	}
	rec := &Recorder{}
	rep := &Report{}
	err := quietTranslator(WithImageSource(cancelSource{cancel})).TranslateSlide(ctx, 1, NewContext(1, 1), elements, rec, rep)
	require.ErrorIs(t, err, context.Canceled)

	var methods []string
	for _, c := range rec.Calls {
		methods = append(methods, c.Method)
	}
	assert.Equal(t, []string{"AddRect", "SetFill", "SetLine"}, methods)
	assert.Equal(t, 0, rec.Count("AddOval"))
	assert.Empty(t, rep.Failures)
	assert.Equal(t, 1, rep.Shapes)
}

func TestTranslateDocument(t *testing.T) {
	doc := &Document{Slides: []SlideData{
		{Width: 1280, Height: 720, Elements: []Element{{TagName: "rect"}, {TagName: "circle"}}},
		{Width: 1280, Height: 720, Elements: []Element{{TagName: "blink"}}},
	}}
	var sinks []*Recorder
	rep, err := quietTranslator().Translate(context.Background(), doc, func(i int, sd *SlideData) (Sink, Context, error) {
		rec := &Recorder{}
		sinks = append(sinks, rec)
		return rec, ContextFor(sd.Width, sd.Height, 12192000, 6858000), nil
	})
	require.NoError(t, err)

	assert.Equal(t, 2, rep.Slides)
	assert.Equal(t, 3, rep.Elements)
	assert.Equal(t, 2, rep.Shapes)
	assert.True(t, rep.Failed())
	require.Len(t, sinks, 2)
	assert.Equal(t, 1, sinks[0].Count("AddRect"))
	assert.Empty(t, sinks[1].Calls)

	var ee *ElementError
	require.True(t, errors.As(rep.Failures[0], &ee))
	assert.Equal(t, 2, ee.Slide)
}

func TestTranslateSlideFactoryError(t *testing.T) {
	doc := &Document{Slides: []SlideData{{}}}
	boom := errors.New("boom")
	_, err := quietTranslator().Translate(context.Background(), doc, func(int, *SlideData) (Sink, Context, error) {
		return nil, Context{}, boom
	})
	assert.ErrorIs(t, err, boom)
}
