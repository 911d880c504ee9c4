package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/VantageDataChat/pptweaver"
	"github.com/VantageDataChat/pptweaver/browser"
	"github.com/VantageDataChat/pptweaver/pptx"
)

type inspectOpts struct {
	selector string
	canvas   string
}

func newInspectCmd() *cobra.Command {
	def := pptweaver.DefaultOptions()
	var opts inspectOpts

	cmd := &cobra.Command{
		Use:   "inspect [input]",
		Short: "Print the normalized elements of a document, or summarize a .pptx",
		Long: `Inspect renders an HTML/SVG input and prints the normalized document
as JSON, suitable for "pptweaver convert --from-json". Given a .pptx it
prints the document properties and the shapes of every slide.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.EqualFold(filepath.Ext(args[0]), ".pptx") {
				return runInspectPackage(cmd.OutOrStdout(), args[0])
			}
			options := def
			options.SlideSelector = opts.selector
			w, h, err := browser.ParseCanvas(opts.canvas)
			if err != nil {
				return err
			}
			options.CanvasWidth, options.CanvasHeight = w, h
			return runInspectDocument(cmd.Context(), cmd.OutOrStdout(), args[0], options)
		},
	}
	cmd.Flags().StringVar(&opts.selector, "selector", def.SlideSelector, "CSS selector of slide roots")
	cmd.Flags().StringVar(&opts.canvas, "canvas", fmt.Sprintf("%dx%d", def.CanvasWidth, def.CanvasHeight), "browser viewport as WIDTHxHEIGHT")
	return cmd
}

func runInspectDocument(ctx context.Context, w io.Writer, input string, options pptweaver.Options) error {
	c := &pptweaver.Converter{Input: input, Options: options, Logger: loggerFromContext(ctx)}
	doc, err := c.Load(ctx)
	if err != nil {
		return err
	}
	return writeJSON(w, doc)
}

type packageSummary struct {
	Title   string         `json:"title,omitempty"`
	Creator string         `json:"creator,omitempty"`
	Layout  string         `json:"layout"`
	Width   int64          `json:"width_emu"`
	Height  int64          `json:"height_emu"`
	Slides  []slideSummary `json:"slides"`
}

type slideSummary struct {
	Name   string         `json:"name,omitempty"`
	Shapes int            `json:"shapes"`
	Kinds  map[string]int `json:"kinds,omitempty"`
}

func summarize(pres *pptx.Presentation) packageSummary {
	props := pres.GetDocumentProperties()
	layout := pres.GetLayout()
	return packageSummary{
		Title:   props.Title,
		Creator: props.Creator,
		Layout:  layout.Name,
		Width:   layout.CX,
		Height:  layout.CY,
		Slides: lo.Map(pres.GetAllSlides(), func(s *pptx.Slide, _ int) slideSummary {
			shapes := s.GetShapes()
			return slideSummary{
				Name:   s.GetName(),
				Shapes: len(shapes),
				Kinds: lo.CountValuesBy(shapes, func(sh pptx.Shape) string {
					return sh.GetType().String()
				}),
			}
		}),
	}
}

func runInspectPackage(w io.Writer, path string) error {
	pres, err := pptx.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	return writeJSON(w, summarize(pres))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
