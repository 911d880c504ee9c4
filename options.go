package pptweaver

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/samber/lo"

	"github.com/VantageDataChat/pptweaver/browser"
	"github.com/VantageDataChat/pptweaver/media"
	"github.com/VantageDataChat/pptweaver/pptx"
)

// Options configures a conversion. The zero value is not usable; start
// from DefaultOptions or LoadOptions.
type Options struct {
	// Layout is a predefined slide size name, see pptx.LayoutNames.
	Layout string `toml:"layout"`

	// CanvasWidth and CanvasHeight are the browser viewport in CSS pixels.
	CanvasWidth  int `toml:"canvas_width"`
	CanvasHeight int `toml:"canvas_height"`

	// SlideSelector is the CSS selector of slide roots.
	SlideSelector  string        `toml:"slide_selector"`
	RenderTimeout  time.Duration `toml:"render_timeout"`
	MaxPathSamples int           `toml:"max_path_samples"`

	FetchTimeout  time.Duration `toml:"fetch_timeout"`
	Retries       int           `toml:"retries"`
	RetryDelay    time.Duration `toml:"retry_delay"`
	Concurrency   int           `toml:"concurrency"`
	MaxImageBytes int64         `toml:"max_image_bytes"`
	SVGScale      float64       `toml:"svg_scale"`

	// PreviewDir, when set, receives one PNG per slide.
	PreviewDir   string   `toml:"preview_dir"`
	PreviewWidth int      `toml:"preview_width"`
	FontDirs     []string `toml:"font_dirs"`

	// Author overrides the author found in the document metadata.
	Author string `toml:"author"`
}

// DefaultOptions returns the default options.
func DefaultOptions() Options {
	b := browser.DefaultOptions()
	return Options{
		Layout:         pptx.LayoutScreen16x9,
		CanvasWidth:    b.CanvasWidth,
		CanvasHeight:   b.CanvasHeight,
		SlideSelector:  b.SlideSelector,
		RenderTimeout:  b.Timeout,
		MaxPathSamples: b.MaxPathSamples,
		FetchTimeout:   media.DefaultTimeout,
		Retries:        media.DefaultRetries,
		RetryDelay:     media.DefaultRetryDelay,
		Concurrency:    media.DefaultConcurrency,
		MaxImageBytes:  media.DefaultMaxBytes,
		SVGScale:       media.DefaultSVGScale,
		PreviewWidth:   960,
	}
}

// LoadOptions reads a TOML file over the defaults. Unknown keys are an
// error so typos do not silently fall back to defaults.
func LoadOptions(path string) (Options, error) {
	opts := DefaultOptions()
	md, err := toml.DecodeFile(path, &opts)
	if err != nil {
		return opts, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := lo.Map(undecoded, func(k toml.Key, _ int) string { return k.String() })
		sort.Strings(keys)
		return opts, fmt.Errorf("load config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return opts, nil
}

// Validate reports every invalid field at once.
func (o Options) Validate() error {
	var errs []error
	if _, _, _, ok := pptx.LookupLayout(o.Layout); !ok {
		errs = append(errs, fmt.Errorf("layout: unknown %q (want one of %s)", o.Layout, strings.Join(pptx.LayoutNames(), ", ")))
	}
	if o.CanvasWidth <= 0 || o.CanvasHeight <= 0 {
		errs = append(errs, fmt.Errorf("canvas: must be positive, got %dx%d", o.CanvasWidth, o.CanvasHeight))
	}
	if o.RenderTimeout <= 0 {
		errs = append(errs, fmt.Errorf("render_timeout: must be positive, got %s", o.RenderTimeout))
	}
	if o.MaxPathSamples < 2 {
		errs = append(errs, fmt.Errorf("max_path_samples: must be at least 2, got %d", o.MaxPathSamples))
	}
	if o.FetchTimeout <= 0 {
		errs = append(errs, fmt.Errorf("fetch_timeout: must be positive, got %s", o.FetchTimeout))
	}
	if o.Retries < 1 {
		errs = append(errs, fmt.Errorf("retries: must be at least 1, got %d", o.Retries))
	}
	if o.RetryDelay < 0 {
		errs = append(errs, fmt.Errorf("retry_delay: must not be negative, got %s", o.RetryDelay))
	}
	if o.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("concurrency: must be at least 1, got %d", o.Concurrency))
	}
	if o.MaxImageBytes <= 0 {
		errs = append(errs, fmt.Errorf("max_image_bytes: must be positive, got %d", o.MaxImageBytes))
	}
	if o.SVGScale <= 0 {
		errs = append(errs, fmt.Errorf("svg_scale: must be positive, got %g", o.SVGScale))
	}
	if o.PreviewDir != "" && o.PreviewWidth <= 0 {
		errs = append(errs, fmt.Errorf("preview_width: must be positive, got %d", o.PreviewWidth))
	}
	return errors.Join(errs...)
}

func (o Options) browserOptions() browser.Options {
	return browser.Options{
		SlideSelector:  o.SlideSelector,
		CanvasWidth:    o.CanvasWidth,
		CanvasHeight:   o.CanvasHeight,
		Timeout:        o.RenderTimeout,
		MaxPathSamples: o.MaxPathSamples,
	}
}
