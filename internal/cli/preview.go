package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/VantageDataChat/pptweaver/pptx"
)

type previewOpts struct {
	output   string
	width    int
	jpeg     bool
	fontDirs []string
}

func newPreviewCmd() *cobra.Command {
	opts := previewOpts{output: "previews", width: 1920}

	cmd := &cobra.Command{
		Use:   "preview [deck.pptx]",
		Short: "Render the slides of a .pptx to images",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.width <= 0 {
				return fmt.Errorf("--width must be positive, got %d", opts.width)
			}
			return runPreview(cmd.Context(), args[0], &opts)
		},
	}
	cmd.Flags().StringVarP(&opts.output, "output", "o", opts.output, "output directory")
	cmd.Flags().IntVar(&opts.width, "width", opts.width, "image width in pixels")
	cmd.Flags().BoolVar(&opts.jpeg, "jpeg", false, "write JPEG instead of PNG")
	cmd.Flags().StringSliceVar(&opts.fontDirs, "font-dir", nil, "extra font directories")
	return cmd
}

func runPreview(ctx context.Context, path string, opts *previewOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	pres, err := pptx.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	if err := os.MkdirAll(opts.output, 0o750); err != nil {
		return fmt.Errorf("create %s: %w", opts.output, err)
	}

	ro := pptx.DefaultRenderOptions()
	ro.Width = opts.width
	ro.FontCache = pptx.NewFontCache(opts.fontDirs...)
	ext := "png"
	if opts.jpeg {
		ro.Format = pptx.ImageFormatJPEG
		ext = "jpg"
	}
	pattern := filepath.Join(opts.output, "slide%02d."+ext)
	if err := pres.SaveSlidesAsImages(pattern, ro); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	prog.done(fmt.Sprintf("Rendered %d slides to %s", pres.GetSlideCount(), opts.output))
	return nil
}
