package pptx

import (
	"archive/zip"
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"testing"
)

// helper: write presentation to buffer and read back
func roundTrip(t *testing.T, p *Presentation) *Presentation {
	t.Helper()
	var buf bytes.Buffer
	if err := p.Write(&buf); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	pres, err := ReadFrom(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("ReadFrom failed: %v", err)
	}
	return pres
}

// helper: read one part of a written package
func readPart(t *testing.T, p *Presentation, name string) string {
	t.Helper()
	var buf bytes.Buffer
	if err := p.Write(&buf); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("zip.NewReader failed: %v", err)
	}
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", name, err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		return string(data)
	}
	t.Fatalf("part %s not found", name)
	return ""
}

// helper: create a small PNG
func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := range 4 {
		for x := range 4 {
			img.Set(x, y, color.RGBA{0, 128, 255, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func TestWriteRequiresSlide(t *testing.T) {
	p := New()
	err := p.Write(io.Discard)
	if err == nil || !strings.Contains(err.Error(), "at least one slide") {
		t.Fatalf("expected slide count error, got %v", err)
	}
}

func TestRoundTripAutoShapes(t *testing.T) {
	p := New()
	slide := p.CreateSlide()

	rect := slide.CreateAutoShape()
	rect.SetPosition(Pixel(10), Pixel(20))
	rect.SetSize(Pixel(100), Pixel(50))
	rect.GetFill().SetSolid(NewColorAlpha(255, 0, 0, 0.5))
	rect.GetBorder().SetSolid(ColorBlue, Point(2))

	oval := slide.CreateAutoShape().SetAutoShapeType(AutoShapeEllipse)
	oval.SetSize(Pixel(30), Pixel(30))

	got := roundTrip(t, p)
	shapes := got.slides[0].GetShapes()
	if len(shapes) != 2 {
		t.Fatalf("expected 2 shapes, got %d", len(shapes))
	}

	r, ok := shapes[0].(*AutoShape)
	if !ok {
		t.Fatalf("shape 0 is %T", shapes[0])
	}
	if r.GetOffsetX() != 127000 || r.GetOffsetY() != 254000 || r.GetWidth() != 1270000 || r.GetHeight() != 635000 {
		t.Errorf("rect frame = %d,%d %dx%d", r.GetOffsetX(), r.GetOffsetY(), r.GetWidth(), r.GetHeight())
	}
	if fill := r.GetFill(); fill.Type != FillSolid || fill.Color.Hex() != "FF0000" || fill.Color.Alpha != 50000 {
		t.Errorf("rect fill = %+v", fill)
	}
	if b := r.GetBorder(); b.Style != BorderSolid || b.Width != 25400 || b.Color.Hex() != "0000FF" {
		t.Errorf("rect border = %+v", b)
	}

	o := shapes[1].(*AutoShape)
	if o.GetAutoShapeType() != AutoShapeEllipse {
		t.Errorf("oval geometry = %s", o.GetAutoShapeType())
	}
}

func TestUnsetPaintWritesNothing(t *testing.T) {
	p := New()
	slide := p.CreateSlide()
	slide.CreateAutoShape().SetSize(Pixel(10), Pixel(10))

	xml := readPart(t, p, "ppt/slides/slide1.xml")
	if strings.Contains(xml, "solidFill") || strings.Contains(xml, "<a:ln") {
		t.Errorf("shape without paints should inherit, got:\n%s", xml)
	}
}

func TestTranslucentColorWritesAlpha(t *testing.T) {
	p := New()
	slide := p.CreateSlide()
	slide.CreateAutoShape().GetFill().SetSolid(NewColorAlpha(0, 0, 0, 0.25))
	slide.CreateAutoShape().GetFill().SetSolid(ColorWhite)

	xml := readPart(t, p, "ppt/slides/slide1.xml")
	if !strings.Contains(xml, `<a:srgbClr val="000000"><a:alpha val="25000"/></a:srgbClr>`) {
		t.Errorf("missing alpha child:\n%s", xml)
	}
	if !strings.Contains(xml, `<a:srgbClr val="FFFFFF"/>`) {
		t.Errorf("opaque color should have no alpha child:\n%s", xml)
	}
}

func TestLineDirectionAndArrow(t *testing.T) {
	p := New()
	slide := p.CreateSlide()
	line := slide.CreateLineShape(Pixel(100), Pixel(200), Pixel(50), Pixel(20))
	line.SetLineColor(ColorRed).SetLineWidthEMU(Pixel(3)).SetTailEnd(NewArrowHead())

	if !line.GetFlipHorizontal() || !line.GetFlipVertical() {
		t.Fatalf("expected both flips, got H=%v V=%v", line.GetFlipHorizontal(), line.GetFlipVertical())
	}

	xml := readPart(t, p, "ppt/slides/slide1.xml")
	for _, want := range []string{`<p:cxnSp>`, `flipH="1" flipV="1"`, `<a:tailEnd type="triangle" w="med" len="med"/>`} {
		if !strings.Contains(xml, want) {
			t.Errorf("slide XML missing %s", want)
		}
	}

	got := roundTrip(t, p)
	l := got.slides[0].GetShapes()[0].(*LineShape)
	x1, y1, x2, y2 := l.GetEndpoints()
	if x1 != Pixel(100) || y1 != Pixel(200) || x2 != Pixel(50) || y2 != Pixel(20) {
		t.Errorf("endpoints = (%d,%d)-(%d,%d)", x1, y1, x2, y2)
	}
	if l.GetTailEnd() == nil || l.GetTailEnd().Type != ArrowTriangle {
		t.Errorf("tail end = %+v", l.GetTailEnd())
	}
	if l.GetHeadEnd() != nil {
		t.Errorf("unexpected head end %+v", l.GetHeadEnd())
	}
	if l.GetLineWidthEMU() != 38100 || l.GetLineColor().Hex() != "FF0000" {
		t.Errorf("line width %d color %s", l.GetLineWidthEMU(), l.GetLineColor().Hex())
	}
}

func TestHiddenLineWritesNoFill(t *testing.T) {
	p := New()
	p.CreateSlide().CreateLineShape(0, 0, Pixel(10), 0).SetLineStyle(BorderNone)
	xml := readPart(t, p, "ppt/slides/slide1.xml")
	if !strings.Contains(xml, "<a:noFill/>") {
		t.Errorf("hidden line should write noFill:\n%s", xml)
	}
}

func TestFreeformBoundingBox(t *testing.T) {
	pts := []PathPoint{{10, 50}, {40, 10}, {70, 50}}
	f := NewFreeformShape(pts, true)

	if f.GetOffsetX() != 10 || f.GetOffsetY() != 10 || f.GetWidth() != 60 || f.GetHeight() != 40 {
		t.Fatalf("frame = %d,%d %dx%d", f.GetOffsetX(), f.GetOffsetY(), f.GetWidth(), f.GetHeight())
	}
	cmds := f.GetCustomPath().Commands
	if len(cmds) != 4 {
		t.Fatalf("expected 4 commands, got %d", len(cmds))
	}
	want := []PathCommand{
		{Type: "moveTo", Pts: []PathPoint{{0, 40}}},
		{Type: "lnTo", Pts: []PathPoint{{30, 0}}},
		{Type: "lnTo", Pts: []PathPoint{{60, 40}}},
	}
	for i, w := range want {
		if cmds[i].Type != w.Type || cmds[i].Pts[0] != w.Pts[0] {
			t.Errorf("command %d = %+v, want %+v", i, cmds[i], w)
		}
	}
	if !f.IsClosed() {
		t.Error("expected closed path")
	}
	if NewFreeformShape(pts, false).IsClosed() {
		t.Error("open path reported closed")
	}
}

func TestRoundTripFreeform(t *testing.T) {
	p := New()
	slide := p.CreateSlide()
	ff := slide.CreateFreeformShape([]PathPoint{{0, 0}, {Pixel(50), 0}, {Pixel(50), Pixel(50)}}, false)
	ff.GetBorder().SetSolid(ColorBlack, Pixel(1))

	got := roundTrip(t, p)
	f, ok := got.slides[0].GetShapes()[0].(*FreeformShape)
	if !ok {
		t.Fatalf("shape is %T", got.slides[0].GetShapes()[0])
	}
	if f.IsClosed() {
		t.Error("polyline came back closed")
	}
	if n := len(f.GetCustomPath().Commands); n != 3 {
		t.Errorf("expected 3 path commands, got %d", n)
	}
	if f.GetCustomPath().Width != Pixel(50) {
		t.Errorf("path width = %d", f.GetCustomPath().Width)
	}
}

func TestRoundTripText(t *testing.T) {
	p := New()
	slide := p.CreateSlide()
	rt := slide.CreateRichTextShape()
	rt.SetSize(Pixel(200), Pixel(40))
	rt.Clear()
	para := rt.CreateParagraph()
	para.CreatePlainRun("• ")
	para.CreateTextRun("Hello & <world>").GetFont().SetSize(13.5).SetBold(true).SetColor(ColorBlue)

	xml := readPart(t, p, "ppt/slides/slide1.xml")
	if !strings.Contains(xml, `sz="1350"`) {
		t.Errorf("expected sz=1350:\n%s", xml)
	}
	if !strings.Contains(xml, "Hello &amp; &lt;world&gt;") {
		t.Errorf("text not escaped:\n%s", xml)
	}

	got := roundTrip(t, p)
	txt := got.slides[0].GetShapes()[0].(*RichTextShape)
	paras := txt.GetParagraphs()
	if len(paras) != 1 {
		t.Fatalf("expected 1 paragraph, got %d", len(paras))
	}
	runs := paras[0].GetRuns()
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].GetFont() != nil || runs[0].GetText() != "• " {
		t.Errorf("bullet run = %q font %+v", runs[0].GetText(), runs[0].GetFont())
	}
	f := runs[1].GetFont()
	if f == nil || f.Size != 13.5 || !f.Bold || f.Italic || f.Color == nil || f.Color.Hex() != "0000FF" {
		t.Errorf("styled run font = %+v", f)
	}
	if runs[1].GetText() != "Hello & <world>" {
		t.Errorf("text = %q", runs[1].GetText())
	}
}

func TestClearedTextBoxWritesEmptyParagraph(t *testing.T) {
	p := New()
	rt := p.CreateSlide().CreateRichTextShape()
	rt.Clear()

	xml := readPart(t, p, "ppt/slides/slide1.xml")
	if !strings.Contains(xml, "<a:p/>") {
		t.Errorf("expected empty paragraph:\n%s", xml)
	}
}

func TestPicturesAndMedia(t *testing.T) {
	data := testPNG(t)
	p := New()
	s1 := p.CreateSlide()
	s1.CreateDrawingShape().SetImageData(data, "image/png").SetSize(Pixel(40), Pixel(40))
	s2 := p.CreateSlide()
	s2.CreateAutoShape()
	s2.CreateDrawingShape().SetImageData(data, "image/png")
	s2.CreateDrawingShape().SetImageData(data, "image/jpeg")

	rels := readPart(t, p, "ppt/slides/_rels/slide2.xml.rels")
	for _, want := range []string{
		`Id="rId2" Type="` + relTypeImage + `" Target="../media/image2.png"`,
		`Id="rId3" Type="` + relTypeImage + `" Target="../media/image3.jpeg"`,
	} {
		if !strings.Contains(rels, want) {
			t.Errorf("slide2 rels missing %s:\n%s", want, rels)
		}
	}
	ct := readPart(t, p, "[Content_Types].xml")
	if !strings.Contains(ct, `Extension="jpeg"`) || !strings.Contains(ct, `Extension="png"`) {
		t.Errorf("content types missing image defaults:\n%s", ct)
	}

	got := roundTrip(t, p)
	if got.GetSlideCount() != 2 {
		t.Fatalf("expected 2 slides, got %d", got.GetSlideCount())
	}
	pic := got.slides[0].GetShapes()[0].(*DrawingShape)
	if !bytes.Equal(pic.GetImageData(), data) || pic.GetMimeType() != "image/png" {
		t.Errorf("picture data mismatch (mime %s)", pic.GetMimeType())
	}
	if pic.GetWidth() != Pixel(40) {
		t.Errorf("picture width = %d", pic.GetWidth())
	}
}

func TestRoundTripPackageProperties(t *testing.T) {
	p := New()
	p.GetLayout().SetLayout(LayoutScreen4x3)
	p.GetDocumentProperties().Title = "Quarterly <Review>"
	slide := p.CreateSlide()
	slide.SetName("Intro")
	slide.SetBackground(NewFill().SetSolid(NewColor("336699")))

	got := roundTrip(t, p)
	if got.GetDocumentProperties().Title != "Quarterly <Review>" {
		t.Errorf("title = %q", got.GetDocumentProperties().Title)
	}
	if got.GetLayout().Name != LayoutScreen4x3 || got.GetLayout().CX != p.GetLayout().CX {
		t.Errorf("layout = %+v", got.GetLayout())
	}
	s := got.GetAllSlides()[0]
	if s.GetName() != "Intro" {
		t.Errorf("slide name = %q", s.GetName())
	}
	if bg := s.GetBackground(); bg == nil || bg.Color.Hex() != "336699" {
		t.Errorf("background = %+v", bg)
	}
}

func TestNewWriter(t *testing.T) {
	if _, err := NewWriter(New(), "ODP"); err == nil {
		t.Error("expected error for unsupported format")
	}
	w, err := NewWriter(New(), WriterPowerPoint2007)
	if err != nil || w == nil {
		t.Fatalf("NewWriter: %v", err)
	}
}

func TestSaveAndOpen(t *testing.T) {
	p := New()
	p.CreateSlide().CreateAutoShape().SetSize(Inch(1), Inch(1))
	path := t.TempDir() + "/nested/out.pptx"
	if err := p.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if n := len(got.GetAllSlides()[0].GetShapes()); n != 1 {
		t.Errorf("expected 1 shape, got %d", n)
	}
}
