package pptx

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	_ "golang.org/x/image/tiff"
	"golang.org/x/image/vector"
)

// ImageFormat represents the output image format.
type ImageFormat int

const (
	ImageFormatPNG ImageFormat = iota
	ImageFormatJPEG
)

// RenderOptions configures slide-to-image rendering.
type RenderOptions struct {
	// Width is the output image width in pixels. Height follows the slide
	// aspect ratio. Default: 960
	Width int
	// Format is the output image format (PNG or JPEG).
	Format ImageFormat
	// JPEGQuality is the JPEG quality (1-100). Default: 90.
	JPEGQuality int
	// BackgroundColor overrides the slide background. Nil means use slide background or white.
	BackgroundColor *color.RGBA
	// FontDirs lists extra directories searched for TrueType/OpenType fonts.
	FontDirs []string
	// FontCache shares loaded fonts across renders. If nil, a new one is
	// created from FontDirs.
	FontCache *FontCache
}

// DefaultRenderOptions returns default rendering options.
func DefaultRenderOptions() *RenderOptions {
	return &RenderOptions{
		Width:       960,
		Format:      ImageFormatPNG,
		JPEGQuality: 90,
	}
}

// SlideToImage renders a single slide to an image. The preview is
// approximate: shapes, pictures and text are drawn, theme effects are not.
func (p *Presentation) SlideToImage(slideIndex int, opts *RenderOptions) (image.Image, error) {
	if slideIndex < 0 || slideIndex >= len(p.slides) {
		return nil, fmt.Errorf("slide index %d out of range (0-%d)", slideIndex, len(p.slides)-1)
	}
	if opts == nil {
		opts = DefaultRenderOptions()
	}
	imgW := opts.Width
	if imgW <= 0 {
		imgW = 960
	}

	slide := p.slides[slideIndex]
	slideW, slideH := float64(p.layout.CX), float64(p.layout.CY)
	imgH := max(int(float64(imgW)*slideH/slideW), 1)

	img := image.NewRGBA(image.Rect(0, 0, imgW, imgH))

	bg := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	if opts.BackgroundColor != nil {
		bg = *opts.BackgroundColor
	} else if slide.background != nil && slide.background.Type == FillSolid {
		c := slide.background.Color
		bg = color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
	}
	draw.Draw(img, img.Bounds(), &image.Uniform{bg}, image.Point{}, draw.Src)

	r := &renderer{
		img:       img,
		scaleX:    float64(imgW) / slideW,
		scaleY:    float64(imgH) / slideH,
		fontCache: opts.FontCache,
	}
	if r.fontCache == nil {
		r.fontCache = NewFontCache(opts.FontDirs...)
	}

	for _, shape := range slide.shapes {
		r.renderShape(shape)
	}
	return img, nil
}

// SaveSlideAsImage renders a slide and saves it to a file.
func (p *Presentation) SaveSlideAsImage(slideIndex int, path string, opts *RenderOptions) error {
	img, err := p.SlideToImage(slideIndex, opts)
	if err != nil {
		return err
	}
	return saveImage(img, path, opts)
}

// SaveSlidesAsImages renders all slides and saves them to files.
// The pattern should contain %d for the slide number (1-based), e.g. "slide_%d.png".
func (p *Presentation) SaveSlidesAsImages(pattern string, opts *RenderOptions) error {
	for i := range p.slides {
		if err := p.SaveSlideAsImage(i, fmt.Sprintf(pattern, i+1), opts); err != nil {
			return fmt.Errorf("slide %d: %w", i+1, err)
		}
	}
	return nil
}

func saveImage(img image.Image, path string, opts *RenderOptions) error {
	if opts == nil {
		opts = DefaultRenderOptions()
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	switch opts.Format {
	case ImageFormatJPEG:
		quality := opts.JPEGQuality
		if quality <= 0 || quality > 100 {
			quality = 90
		}
		return jpeg.Encode(f, img, &jpeg.Options{Quality: quality})
	default:
		return png.Encode(f, img)
	}
}

// --- renderer ---

type renderer struct {
	img       *image.RGBA
	scaleX    float64
	scaleY    float64
	fontCache *FontCache
}

type fpoint struct{ x, y float32 }

func (r *renderer) renderShape(shape Shape) {
	switch s := shape.(type) {
	case *RichTextShape:
		r.renderRichText(s)
	case *DrawingShape:
		r.renderDrawing(s)
	case *AutoShape:
		r.renderAutoShape(s)
	case *LineShape:
		r.renderLine(s)
	case *FreeformShape:
		r.renderFreeform(s)
	}
}

func (r *renderer) px(x, y int64) fpoint {
	return fpoint{float32(float64(x) * r.scaleX), float32(float64(y) * r.scaleY)}
}

func (r *renderer) box(b *BaseShape) image.Rectangle {
	p0 := r.px(b.offsetX, b.offsetY)
	p1 := r.px(b.offsetX+b.width, b.offsetY+b.height)
	return image.Rect(int(p0.x), int(p0.y), int(math.Ceil(float64(p1.x))), int(math.Ceil(float64(p1.y))))
}

func (r *renderer) strokeWidth(emu int64) float32 {
	return max(float32(float64(emu)*(r.scaleX+r.scaleY)/2), 1)
}

func toNRGBA(c Color) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.Alpha8()}
}

// --- Shape rendering ---

func (r *renderer) renderAutoShape(s *AutoShape) {
	b := &s.BaseShape
	var outline []fpoint
	if s.shapeType == AutoShapeEllipse {
		outline = r.ellipse(b)
	} else {
		outline = r.rectangle(b)
	}
	r.paintOutline(outline, true, s.fill, s.border)
}

func (r *renderer) renderFreeform(s *FreeformShape) {
	if s.path == nil {
		return
	}
	var pts []fpoint
	for _, cmd := range s.path.Commands {
		for _, pt := range cmd.Pts {
			pts = append(pts, r.px(s.offsetX+pt.X, s.offsetY+pt.Y))
		}
	}
	r.paintOutline(pts, s.IsClosed(), s.fill, s.border)
}

func (r *renderer) paintOutline(pts []fpoint, closed bool, fill *Fill, border *Border) {
	if len(pts) == 0 {
		return
	}
	if fill != nil && fill.Type == FillSolid && len(pts) > 2 {
		r.fillPolygon(pts, toNRGBA(fill.Color))
	}
	if border != nil && border.Style == BorderSolid {
		w := r.strokeWidth(border.Width)
		c := toNRGBA(border.Color)
		for i := 1; i < len(pts); i++ {
			r.strokeSegment(pts[i-1], pts[i], w, c)
		}
		if closed && len(pts) > 2 {
			r.strokeSegment(pts[len(pts)-1], pts[0], w, c)
		}
	}
}

func (r *renderer) rectangle(b *BaseShape) []fpoint {
	p0 := r.px(b.offsetX, b.offsetY)
	p1 := r.px(b.offsetX+b.width, b.offsetY+b.height)
	return []fpoint{p0, {p1.x, p0.y}, p1, {p0.x, p1.y}}
}

func (r *renderer) ellipse(b *BaseShape) []fpoint {
	p0 := r.px(b.offsetX, b.offsetY)
	p1 := r.px(b.offsetX+b.width, b.offsetY+b.height)
	cx, cy := float64(p0.x+p1.x)/2, float64(p0.y+p1.y)/2
	rx, ry := float64(p1.x-p0.x)/2, float64(p1.y-p0.y)/2
	steps := max(int(max(rx, ry)*2), 64)
	pts := make([]fpoint, steps)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / float64(steps)
		pts[i] = fpoint{float32(cx + rx*math.Cos(a)), float32(cy + ry*math.Sin(a))}
	}
	return pts
}

func (r *renderer) fillPolygon(pts []fpoint, c color.Color) {
	b := r.img.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	z.DrawOp = draw.Over
	z.MoveTo(pts[0].x, pts[0].y)
	for _, p := range pts[1:] {
		z.LineTo(p.x, p.y)
	}
	z.ClosePath()
	z.Draw(r.img, b, image.NewUniform(c), image.Point{})
}

// strokeSegment draws a segment as a quad of the given width.
func (r *renderer) strokeSegment(a, b fpoint, width float32, c color.Color) {
	dx, dy := float64(b.x-a.x), float64(b.y-a.y)
	l := math.Hypot(dx, dy)
	if l == 0 {
		return
	}
	nx, ny := float32(-dy/l)*width/2, float32(dx/l)*width/2
	r.fillPolygon([]fpoint{
		{a.x + nx, a.y + ny},
		{b.x + nx, b.y + ny},
		{b.x - nx, b.y - ny},
		{a.x - nx, a.y - ny},
	}, c)
}

func (r *renderer) renderLine(s *LineShape) {
	if s.lineStyle == BorderNone {
		return
	}
	x1, y1, x2, y2 := s.GetEndpoints()
	a, b := r.px(x1, y1), r.px(x2, y2)
	w := r.strokeWidth(s.lineWidthEMU)
	c := toNRGBA(s.lineColor)
	r.strokeSegment(a, b, w, c)
	if s.tailEnd != nil && s.tailEnd.Type != ArrowNone {
		r.arrowHead(a, b, w, c)
	}
	if s.headEnd != nil && s.headEnd.Type != ArrowNone {
		r.arrowHead(b, a, w, c)
	}
}

// arrowHead draws a filled triangle at b pointing away from a.
func (r *renderer) arrowHead(a, b fpoint, width float32, c color.Color) {
	dx, dy := float64(b.x-a.x), float64(b.y-a.y)
	l := math.Hypot(dx, dy)
	if l == 0 {
		return
	}
	ux, uy := float32(dx/l), float32(dy/l)
	size := max(width*3, 6)
	base := fpoint{b.x - ux*size, b.y - uy*size}
	r.fillPolygon([]fpoint{
		b,
		{base.x - uy*size/2, base.y + ux*size/2},
		{base.x + uy*size/2, base.y - ux*size/2},
	}, c)
}

func (r *renderer) renderDrawing(s *DrawingShape) {
	if len(s.data) == 0 {
		return
	}
	dst := r.box(&s.BaseShape)
	src, _, err := image.Decode(bytes.NewReader(s.data))
	if err != nil {
		r.paintOutline(r.rectangle(&s.BaseShape), true, nil,
			&Border{Style: BorderSolid, Width: emuPerPixel, Color: Color{200, 200, 200, alphaOpaque}})
		return
	}
	draw.BiLinear.Scale(r.img, dst, src, src.Bounds(), draw.Over, nil)
}

func (r *renderer) renderRichText(s *RichTextShape) {
	r.paintOutline(r.rectangle(&s.BaseShape), true, s.fill, s.border)
	rect := r.box(&s.BaseShape)
	r.drawParagraphs(s.paragraphs, rect, s.wordWrap)
}

// --- Text rendering ---

func (r *renderer) getFace(f *Font) font.Face {
	if f == nil {
		f = NewFont()
	}
	sizePt := f.Size
	if sizePt <= 0 {
		sizePt = 10
	}
	// faces are built at 72 DPI, so the size is in output pixels
	scaledPt := sizePt * emuPerPoint * r.scaleY
	name := f.Name
	if name == "" {
		name = "sans-serif"
	}
	if face := r.fontCache.GetFace(name, scaledPt, f.Bold, f.Italic); face != nil {
		return face
	}
	if face := r.fontCache.GetFace("sans-serif", scaledPt, f.Bold, f.Italic); face != nil {
		return face
	}
	return basicfont.Face7x13
}

type textRun struct {
	text  string
	face  font.Face
	color color.Color
}

type textLine struct {
	runs      []textRun
	width     int
	height    int
	alignment HorizontalAlignment
}

const emptyLineHeight = 14

func buildTextLine(runs []textRun, align HorizontalAlignment) textLine {
	line := textLine{runs: runs, alignment: align}
	for _, run := range runs {
		line.width += font.MeasureString(run.face, run.text).Ceil()
		line.height = max(line.height, run.face.Metrics().Height.Ceil())
	}
	if line.height <= 0 {
		line.height = emptyLineHeight
	}
	return line
}

func (r *renderer) drawParagraphs(paragraphs []*Paragraph, rect image.Rectangle, wrap bool) {
	var lines []textLine
	black := color.NRGBA{A: 255}

	for _, para := range paragraphs {
		align := para.alignment
		if align == "" {
			align = HorizontalLeft
		}
		var runs []textRun
		for _, tr := range para.runs {
			c := color.Color(black)
			if tr.font != nil && tr.font.Color != nil {
				c = toNRGBA(*tr.font.Color)
			}
			runs = append(runs, textRun{text: tr.text, face: r.getFace(tr.font), color: c})
		}
		if len(runs) == 0 {
			lines = append(lines, textLine{height: emptyLineHeight, alignment: align})
			continue
		}
		line := buildTextLine(runs, align)
		if wrap && rect.Dx() > 0 && line.width > rect.Dx() {
			lines = append(lines, wrapRunLine(line, rect.Dx())...)
		} else {
			lines = append(lines, line)
		}
	}

	curY := rect.Min.Y
	for _, line := range lines {
		curY += line.height
		x := rect.Min.X
		switch line.alignment {
		case HorizontalCenter:
			x += (rect.Dx() - line.width) / 2
		case HorizontalRight:
			x += rect.Dx() - line.width
		}
		for _, run := range line.runs {
			d := &font.Drawer{
				Dst:  r.img,
				Src:  image.NewUniform(run.color),
				Face: run.face,
				Dot:  fixed.P(x, curY),
			}
			d.DrawString(run.text)
			x += font.MeasureString(run.face, run.text).Ceil()
		}
	}
}

// wrapRunLine breaks a line at word boundaries so each piece fits maxWidth.
func wrapRunLine(line textLine, maxWidth int) []textLine {
	type word struct {
		text  string
		face  font.Face
		color color.Color
	}
	var words []word
	for _, run := range line.runs {
		for i, w := range strings.Fields(run.text) {
			if i > 0 || len(words) > 0 {
				w = " " + w
			}
			words = append(words, word{w, run.face, run.color})
		}
	}
	if len(words) == 0 {
		return []textLine{line}
	}

	var result []textLine
	var cur []textRun
	width := 0
	for _, w := range words {
		ww := font.MeasureString(w.face, w.text).Ceil()
		if width+ww > maxWidth && width > 0 {
			result = append(result, buildTextLine(cur, line.alignment))
			cur, width = nil, 0
			w.text = strings.TrimLeft(w.text, " ")
			ww = font.MeasureString(w.face, w.text).Ceil()
		}
		cur = append(cur, textRun{text: w.text, face: w.face, color: w.color})
		width += ww
	}
	if len(cur) > 0 {
		result = append(result, buildTextLine(cur, line.alignment))
	}
	return result
}
