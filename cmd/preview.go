package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/texpipe/core"
	"github.com/gaurav-prasanna/texpipe/core/extract"
	"github.com/gaurav-prasanna/texpipe/core/fetch"
	"github.com/gaurav-prasanna/texpipe/core/paper"
	"github.com/gaurav-prasanna/texpipe/core/render"
)

var (
	flagStyle string
	flagWidth int
)

var previewCmd = &cobra.Command{
	Use:   "preview <source>",
	Short: "Show an exam in the terminal with plain-text math",
	Args:  cobra.ExactArgs(1),
	RunE:  runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)
	addPipelineFlags(previewCmd.Flags())
	previewCmd.Flags().DurationVar(&flagTimeout, "timeout", paper.DefaultTimeout, "How long a batch of questions may wait for the engine")
	previewCmd.Flags().StringVar(&flagStyle, "style", "auto", "Glamour style: auto, dark, light, notty or a JSON style file")
	previewCmd.Flags().IntVar(&flagWidth, "width", 100, "Word wrap width")
}

func runPreview(cmd *cobra.Command, args []string) error {
	mode, err := core.ParseMode(flagMode)
	if err != nil {
		return err
	}
	loader, closeCache, err := newLoader()
	if err != nil {
		return err
	}
	defer closeCache()

	opts := paper.DefaultOptions()
	opts.Mode = mode
	opts.Pipeline = pipelineOptions()
	opts.Timeout = flagTimeout
	p := &pipe{fetcher: fetch.New(), extractor: extract.New(), loader: loader, opts: opts, renderer: render.NewMarkdownRenderer()}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	md, _, err := p.process(ctx, args[0])
	if err != nil {
		return err
	}

	styleOpt := glamour.WithAutoStyle()
	switch flagStyle {
	case "auto", "":
	case "dark", "light", "notty", "dracula", "tokyo-night", "pink", "ascii":
		styleOpt = glamour.WithStandardStyle(flagStyle)
	default:
		styleOpt = glamour.WithStylesFromJSONFile(flagStyle)
	}
	r, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(flagWidth))
	if err != nil {
		return fmt.Errorf("creating terminal renderer: %w", err)
	}
	out, err := r.Render(string(md))
	if err != nil {
		return fmt.Errorf("rendering preview: %w", err)
	}
	fmt.Fprint(os.Stdout, out)
	return nil
}
