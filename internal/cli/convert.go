package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/VantageDataChat/pptweaver"
	"github.com/VantageDataChat/pptweaver/browser"
	"github.com/VantageDataChat/pptweaver/translate"
)

// convertOpts holds the command-line flags for the convert command.
// Flags left at their defaults do not override the config file.
type convertOpts struct {
	output       string
	config       string
	layout       string
	canvas       string
	selector     string
	timeout      time.Duration
	fetchTimeout time.Duration
	retries      int
	concurrency  int
	preview      string
	fromJSON     bool
	strict       bool
}

func newConvertCmd() *cobra.Command {
	def := pptweaver.DefaultOptions()
	var opts convertOpts

	cmd := &cobra.Command{
		Use:   "convert [input]",
		Short: "Convert an HTML/SVG document into a .pptx presentation",
		Long: `Convert renders the input in headless Chromium, extracts every slide
(elements matching --selector, else each top-level <svg>, else the page)
and writes one PowerPoint slide per source slide.

The input is a local file or an http(s) URL. With --from-json it is a
normalized document as printed by "pptweaver inspect".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			options, err := resolveOptions(cmd.Flags(), &opts)
			if err != nil {
				return err
			}
			return runConvert(cmd.Context(), args[0], &opts, options)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&opts.output, "output", "o", "", "output .pptx path (default presentation_YYYYMMDD_HHMMSS.pptx)")
	fs.StringVar(&opts.config, "config", "", "TOML config file")
	fs.StringVar(&opts.layout, "layout", def.Layout, "slide layout: screen16x9, screen4x3, screen16x10, A4, letter")
	fs.StringVar(&opts.canvas, "canvas", fmt.Sprintf("%dx%d", def.CanvasWidth, def.CanvasHeight), "browser viewport as WIDTHxHEIGHT")
	fs.StringVar(&opts.selector, "selector", def.SlideSelector, "CSS selector of slide roots")
	fs.DurationVar(&opts.timeout, "timeout", def.RenderTimeout, "page load and extraction timeout")
	fs.DurationVar(&opts.fetchTimeout, "fetch-timeout", def.FetchTimeout, "timeout per image fetch attempt")
	fs.IntVar(&opts.retries, "retries", def.Retries, "attempts per image fetch")
	fs.IntVar(&opts.concurrency, "concurrency", def.Concurrency, "parallel image fetches")
	fs.StringVar(&opts.preview, "preview", "", "directory for PNG previews of each slide")
	fs.BoolVar(&opts.fromJSON, "from-json", false, "read a normalized JSON document instead of rendering")
	fs.BoolVar(&opts.strict, "strict", false, "fail when any element could not be converted")

	return cmd
}

// resolveOptions layers the config file and then explicitly set flags
// over the defaults.
func resolveOptions(fs *pflag.FlagSet, f *convertOpts) (pptweaver.Options, error) {
	options := pptweaver.DefaultOptions()
	if f.config != "" {
		loaded, err := pptweaver.LoadOptions(f.config)
		if err != nil {
			return options, err
		}
		options = loaded
	}

	var errs []error
	fs.Visit(func(fl *pflag.Flag) {
		switch fl.Name {
		case "layout":
			options.Layout = f.layout
		case "canvas":
			w, h, err := browser.ParseCanvas(f.canvas)
			if err != nil {
				errs = append(errs, err)
				return
			}
			options.CanvasWidth, options.CanvasHeight = w, h
		case "selector":
			options.SlideSelector = f.selector
		case "timeout":
			options.RenderTimeout = f.timeout
		case "fetch-timeout":
			options.FetchTimeout = f.fetchTimeout
		case "retries":
			options.Retries = f.retries
		case "concurrency":
			options.Concurrency = f.concurrency
		case "preview":
			options.PreviewDir = f.preview
		}
	})
	if err := errors.Join(errs...); err != nil {
		return options, err
	}
	if err := options.Validate(); err != nil {
		return options, fmt.Errorf("invalid options: %w", err)
	}
	return options, nil
}

func runConvert(ctx context.Context, input string, f *convertOpts, options pptweaver.Options) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	c := &pptweaver.Converter{
		Input:    input,
		Output:   f.output,
		FromJSON: f.fromJSON,
		Options:  options,
		Logger:   logger,
	}
	res, err := c.Convert(ctx)
	if err != nil {
		return err
	}
	rep := res.Report
	for _, w := range rep.Warnings {
		logger.Debug("warning", "err", w)
	}
	if rep.Failed() {
		byTag := lo.CountValuesBy(rep.Failures, func(err error) string {
			var ee *translate.ElementError
			if errors.As(err, &ee) {
				return ee.TagName
			}
			return "?"
		})
		logger.Warn("some elements were not converted", "failed", len(rep.Failures), "skipped", rep.Skipped, "by_tag", byTag)
	}
	prog.done(fmt.Sprintf("Wrote %s: %d slides, %d shapes", res.Output, rep.Slides, rep.Shapes))
	if f.strict && rep.Failed() {
		return fmt.Errorf("%d elements failed to convert", len(rep.Failures))
	}
	return nil
}
