package browser

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/playwright-community/playwright-go"

	"github.com/VantageDataChat/pptweaver/translate"
)

//go:embed extract.js
var extractScript string

// Options configures a Renderer.
type Options struct {
	// SlideSelector finds slide roots. Without a match every top-level
	// svg is a slide, and failing that the whole body.
	SlideSelector string
	// CanvasWidth and CanvasHeight set the viewport in CSS pixels.
	CanvasWidth  int
	CanvasHeight int
	// Timeout bounds navigation and extraction of one document.
	Timeout time.Duration
	// MaxPathSamples caps the points sampled along one path.
	MaxPathSamples int
	// SkipInstall assumes Chromium is already installed.
	SkipInstall bool
}

// DefaultOptions returns the default rendering options.
func DefaultOptions() Options {
	return Options{
		SlideSelector:  ".slide",
		CanvasWidth:    1280,
		CanvasHeight:   720,
		Timeout:        60 * time.Second,
		MaxPathSamples: 1000,
	}
}

// Renderer drives a lazily started headless Chromium. It is safe for
// concurrent use; pages are rendered one at a time.
type Renderer struct {
	opts   Options
	logger *log.Logger

	mu      sync.Mutex
	pw      *playwright.Playwright
	browser playwright.Browser
}

// New creates a Renderer. The browser is not started until the first Render.
func New(opts Options, logger *log.Logger) *Renderer {
	def := DefaultOptions()
	if opts.CanvasWidth <= 0 || opts.CanvasHeight <= 0 {
		opts.CanvasWidth, opts.CanvasHeight = def.CanvasWidth, def.CanvasHeight
	}
	if opts.Timeout <= 0 {
		opts.Timeout = def.Timeout
	}
	if opts.MaxPathSamples <= 0 {
		opts.MaxPathSamples = def.MaxPathSamples
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Renderer{opts: opts, logger: logger}
}

func (r *Renderer) start() error {
	if r.browser != nil {
		return nil
	}
	if !r.opts.SkipInstall {
		r.logger.Debug("ensuring chromium is installed")
		if err := playwright.Install(&playwright.RunOptions{
			Browsers: []string{"chromium"},
			Verbose:  false,
		}); err != nil {
			return fmt.Errorf("install chromium: %w", err)
		}
	}
	pw, err := playwright.Run()
	if err != nil {
		return fmt.Errorf("start playwright: %w", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		_ = pw.Stop()
		return fmt.Errorf("launch chromium: %w", err)
	}
	r.pw, r.browser = pw, browser
	return nil
}

// Render loads input and extracts its slides. input is a local path or
// an http(s)/file URL.
func (r *Renderer) Render(ctx context.Context, input string) (*translate.Document, error) {
	target, err := InputURL(input)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := r.start(); err != nil {
		return nil, err
	}

	page, err := r.browser.NewPage(playwright.BrowserNewPageOptions{
		Viewport: &playwright.Size{Width: r.opts.CanvasWidth, Height: r.opts.CanvasHeight},
	})
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	defer page.Close()

	type outcome struct {
		doc *translate.Document
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		doc, err := r.extract(page, target)
		done <- outcome{doc, err}
	}()

	select {
	case <-ctx.Done():
		// closing the page aborts the pending navigation or evaluation
		_ = page.Close()
		<-done
		return nil, ctx.Err()
	case o := <-done:
		return o.doc, o.err
	}
}

func (r *Renderer) extract(page playwright.Page, target string) (*translate.Document, error) {
	start := time.Now()
	timeoutMS := float64(r.opts.Timeout.Milliseconds())
	page.SetDefaultTimeout(timeoutMS)

	if _, err := page.Goto(target, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   playwright.Float(timeoutMS),
	}); err != nil {
		return nil, fmt.Errorf("load %s: %w", target, err)
	}

	raw, err := page.Evaluate(extractScript, map[string]any{
		"selector":       r.opts.SlideSelector,
		"maxPathSamples": r.opts.MaxPathSamples,
	})
	if err != nil {
		return nil, fmt.Errorf("extract elements: %w", err)
	}
	doc, err := fromEvaluate(raw)
	if err != nil {
		return nil, err
	}
	if len(doc.Slides) == 0 {
		return nil, errors.New("no slides found")
	}
	r.logger.Info("document rendered", "url", target, "slides", len(doc.Slides), "elapsed", time.Since(start).Round(time.Millisecond))
	return doc, nil
}

// Close stops the browser and then the playwright driver.
func (r *Renderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	if r.browser != nil {
		if err := r.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close browser: %w", err))
		}
		r.browser = nil
	}
	if r.pw != nil {
		if err := r.pw.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop playwright: %w", err))
		}
		r.pw = nil
	}
	return errors.Join(errs...)
}
