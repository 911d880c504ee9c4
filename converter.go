package pptweaver

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/VantageDataChat/pptweaver/browser"
	"github.com/VantageDataChat/pptweaver/media"
	"github.com/VantageDataChat/pptweaver/pptx"
	"github.com/VantageDataChat/pptweaver/translate"
)

// DocumentRenderer turns an input document into normalized slides.
// *browser.Renderer is the production implementation.
type DocumentRenderer interface {
	Render(ctx context.Context, input string) (*translate.Document, error)
	Close() error
}

// Converter runs the whole pipeline: render, prefetch images, translate,
// write and optionally preview.
type Converter struct {
	// Input is a local HTML/SVG path or an http(s) URL. With FromJSON it
	// is a normalized document file instead.
	Input string
	// Output is the .pptx path. Empty means a timestamped name in the
	// working directory.
	Output   string
	FromJSON bool

	Options Options
	Logger  *log.Logger

	// Renderer overrides the headless browser.
	Renderer DocumentRenderer
	// Images overrides the media loader.
	Images translate.ImageSource
}

// Result describes a finished conversion.
type Result struct {
	Output   string
	Report   *translate.Report
	Previews []string
	Elapsed  time.Duration
}

// Convert converts Input with default options and writes Output.
func Convert(ctx context.Context, input, output string) (*Result, error) {
	c := &Converter{Input: input, Output: output, Options: DefaultOptions()}
	return c.Convert(ctx)
}

// DefaultOutputName returns presentation_YYYYMMDD_HHMMSS.pptx for t.
func DefaultOutputName(t time.Time) string {
	return "presentation_" + t.Format("20060102_150405") + ".pptx"
}

func (c *Converter) logger() *log.Logger {
	if c.Logger == nil {
		return log.Default()
	}
	return c.Logger
}

// Convert runs the pipeline. Per-element failures are reported in the
// result and do not fail the conversion.
func (c *Converter) Convert(ctx context.Context) (*Result, error) {
	start := time.Now()
	if err := c.Options.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	output := c.Output
	if output == "" {
		output = DefaultOutputName(start)
	}

	doc, err := c.Load(ctx)
	if err != nil {
		return nil, err
	}

	md := c.metadata(doc)
	images := c.Images
	if images == nil {
		loader := c.newLoader()
		refs := media.ImageRefs(doc)
		if len(refs) > 0 {
			c.logger().Info("prefetching images", "count", len(refs))
			if err := loader.Prefetch(ctx, refs, c.Options.Concurrency); err != nil {
				return nil, err
			}
		}
		images = loader
	}

	pres, rep, err := c.Build(ctx, doc, md, images)
	if err != nil {
		return &Result{Output: output, Report: rep}, err
	}

	if err := pres.Save(output); err != nil {
		return &Result{Output: output, Report: rep}, fmt.Errorf("write %s: %w", output, err)
	}
	res := &Result{Output: output, Report: rep}
	c.logger().Info("presentation written", "path", output, "slides", rep.Slides, "shapes", rep.Shapes, "failures", len(rep.Failures))

	if c.Options.PreviewDir != "" {
		previews, err := c.writePreviews(pres)
		res.Previews = previews
		if err != nil {
			return res, err
		}
	}
	res.Elapsed = time.Since(start)
	return res, nil
}

// Load produces the normalized document, from the JSON file or by
// rendering the input in the browser.
func (c *Converter) Load(ctx context.Context) (*translate.Document, error) {
	if c.FromJSON {
		data, err := os.ReadFile(c.Input)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", c.Input, err)
		}
		return browser.DecodeDocument(data)
	}
	r := c.Renderer
	if r == nil {
		br := browser.New(c.Options.browserOptions(), c.logger())
		defer func() {
			if err := br.Close(); err != nil {
				c.logger().Warn("closing browser", "err", err)
			}
		}()
		r = br
	}
	doc, err := r.Render(ctx, c.Input)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", c.Input, err)
	}
	return doc, nil
}

// Build translates doc into a new presentation. One output slide is
// created per input slide; a document without slides yields one blank
// slide so the package stays valid.
func (c *Converter) Build(ctx context.Context, doc *translate.Document, md Metadata, images translate.ImageSource) (*pptx.Presentation, *translate.Report, error) {
	pres := pptx.New()
	if !pres.GetLayout().SetLayout(c.Options.Layout) {
		return nil, nil, fmt.Errorf("unknown layout %q", c.Options.Layout)
	}
	props := pres.GetDocumentProperties()
	props.Application = "pptweaver " + Version
	md.apply(props)
	if c.Options.Author != "" {
		props.Creator = c.Options.Author
	}

	layout := pres.GetLayout()
	tr := translate.New(translate.WithImageSource(images), translate.WithLogger(c.logger()))
	rep, err := tr.Translate(ctx, doc, func(i int, sd *translate.SlideData) (translate.Sink, translate.Context, error) {
		slide := pres.CreateSlide()
		slide.SetName(fmt.Sprintf("Slide %d", i+1))
		w, h := sd.Width, sd.Height
		if w <= 0 || h <= 0 {
			w, h = float64(c.Options.CanvasWidth), float64(c.Options.CanvasHeight)
		}
		return newSlideSink(slide), translate.ContextFor(w, h, layout.CX, layout.CY), nil
	})
	if err != nil {
		return pres, rep, err
	}
	if pres.GetSlideCount() == 0 {
		pres.CreateSlide()
	}
	return pres, rep, nil
}

func (c *Converter) newLoader() *media.Loader {
	opts := []media.Option{
		media.WithTimeout(c.Options.FetchTimeout),
		media.WithRetries(c.Options.Retries, c.Options.RetryDelay),
		media.WithMaxBytes(c.Options.MaxImageBytes),
		media.WithSVGScale(c.Options.SVGScale),
		media.WithUserAgent("pptweaver/" + Version),
		media.WithLogger(c.logger()),
	}
	if dir := c.localDir(); dir != "" {
		opts = append(opts, media.WithBaseDir(dir))
	}
	return media.NewLoader(opts...)
}

// localDir is the directory of a local input, or "" for URLs.
func (c *Converter) localDir() string {
	if isRemote(c.Input) {
		return ""
	}
	path := c.Input
	if u, err := url.Parse(c.Input); err == nil && u.Scheme == "file" {
		path = u.Path
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return ""
	}
	return filepath.Dir(abs)
}

func isRemote(input string) bool {
	lower := strings.ToLower(input)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// metadata reads the head of a local HTML input. The rendered title is
// the fallback.
func (c *Converter) metadata(doc *translate.Document) Metadata {
	var md Metadata
	if !c.FromJSON && !isRemote(c.Input) {
		path := c.Input
		if u, err := url.Parse(path); err == nil && u.Scheme == "file" {
			path = u.Path
		}
		if data, err := os.ReadFile(path); err == nil {
			if m, err := ReadMetadata(bytes.NewReader(data)); err == nil {
				md = m
			} else {
				c.logger().Debug("reading metadata", "err", err)
			}
		}
	}
	if md.Title == "" {
		md.Title = doc.Title
	}
	return md
}

func (c *Converter) writePreviews(pres *pptx.Presentation) ([]string, error) {
	opts := pptx.DefaultRenderOptions()
	opts.Width = c.Options.PreviewWidth
	opts.FontCache = pptx.NewFontCache(c.Options.FontDirs...)

	paths := make([]string, 0, pres.GetSlideCount())
	for i := range pres.GetAllSlides() {
		path := filepath.Join(c.Options.PreviewDir, fmt.Sprintf("slide_%03d.png", i+1))
		if err := pres.SaveSlideAsImage(i, path, opts); err != nil {
			return paths, fmt.Errorf("preview slide %d: %w", i+1, err)
		}
		paths = append(paths, path)
	}
	c.logger().Info("previews written", "dir", c.Options.PreviewDir, "count", len(paths))
	return paths, nil
}
