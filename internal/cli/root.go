package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/VantageDataChat/pptweaver"
)

var (
	commit string // git commit SHA
	date   string // build timestamp
)

// SetBuildInfo sets the commit and date shown by --version. The main
// package calls it with values injected via ldflags.
func SetBuildInfo(c, d string) {
	commit = c
	date = d
}

// Execute runs the pptweaver CLI with ctx as the root context.
func Execute(ctx context.Context) error {
	return newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx)
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:          "pptweaver",
		Short:        "pptweaver converts HTML/SVG slides into PowerPoint presentations",
		Long:         `pptweaver renders HTML and SVG documents in headless Chromium and rebuilds every slide as native, editable PowerPoint shapes: rectangles, ellipses, connectors, freeforms, text boxes and pictures.`,
		Version:      pptweaver.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(stderr, level)))
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetVersionTemplate(fmt.Sprintf("pptweaver %s\ncommit: %s\nbuilt: %s\n", pptweaver.Version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newConvertCmd())
	root.AddCommand(newInspectCmd())
	root.AddCommand(newPreviewCmd())
	return root
}
