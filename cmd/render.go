// Package cmd: render command.
// This is the main command that orchestrates the pipeline:
// fetch → extract → typeset every question → render → write.
//
// It handles flag validation, renderer selection, and the single-source and
// --all modes.
package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/gaurav-prasanna/texpipe/collect"
	"github.com/gaurav-prasanna/texpipe/core"
	"github.com/gaurav-prasanna/texpipe/core/chunk"
	"github.com/gaurav-prasanna/texpipe/core/controller"
	"github.com/gaurav-prasanna/texpipe/core/engine"
	"github.com/gaurav-prasanna/texpipe/core/extract"
	"github.com/gaurav-prasanna/texpipe/core/fetch"
	"github.com/gaurav-prasanna/texpipe/core/output"
	"github.com/gaurav-prasanna/texpipe/core/paper"
	"github.com/gaurav-prasanna/texpipe/core/pipeline"
	"github.com/gaurav-prasanna/texpipe/core/render"
)

// Flag variables.
var (
	flagAll       bool
	flagHTML      bool
	flagPDF       bool
	flagMarkdown  bool
	flagJSON      bool
	flagMode      string
	flagBasic     bool
	flagTimeout   time.Duration
	flagBatch     int
	flagOutputDir string
)

var renderCmd = &cobra.Command{
	Use:   "render <source>",
	Short: "Typeset an exam document into the specified output format",
	Long: `Render reads an exam document from a file, directory or URL, typesets every
question and writes the exam in the specified output format (HTML, Markdown,
JSON or PDF). Questions the engine cannot typeset in time are written as
plain text.

Examples:
  texpipe render exam.json --html
  texpipe render exam.json --json --output_dir ./out
  texpipe render ./exams --all --pdf
  texpipe render https://example.com/exams/ --all --markdown
  texpipe render exam.json --html --engine startex --macros macros.tex`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().BoolVar(&flagAll, "all", false, "Render every exam document found under the source")

	// Output format flags (mutually exclusive).
	renderCmd.Flags().BoolVar(&flagHTML, "html", false, "Output HTML with typeset math")
	renderCmd.Flags().BoolVar(&flagMarkdown, "markdown", false, "Output Markdown with plain math")
	renderCmd.Flags().BoolVar(&flagJSON, "json", false, "Output structured JSON")
	renderCmd.Flags().BoolVar(&flagPDF, "pdf", false, "Output PDF with plain math")

	addPipelineFlags(renderCmd.Flags())
	renderCmd.Flags().DurationVar(&flagTimeout, "timeout", paper.DefaultTimeout, "How long a batch of questions may wait for the engine")
	renderCmd.Flags().IntVar(&flagBatch, "batch", chunk.DefaultSize, "Questions typeset concurrently")

	renderCmd.Flags().StringVar(&flagOutputDir, "output_dir", "", "Output directory (default: current directory)")
}

// addPipelineFlags registers the flags shared by every command that runs
// the text pipeline.
func addPipelineFlags(fs *pflag.FlagSet) {
	fs.StringVar(&flagMode, "mode", string(core.ModeText), "Math mode: text, auto, inline or display")
	fs.BoolVar(&flagBasic, "basic", false, "Skip normalization and mode detection")
}

func pipelineOptions() pipeline.Options {
	return pipeline.Options{Advanced: !flagBasic}
}

func runRender(cmd *cobra.Command, args []string) error {
	src := args[0]

	if err := validateFlags(); err != nil {
		return err
	}
	mode, err := core.ParseMode(flagMode)
	if err != nil {
		return err
	}

	renderer, err := selectRenderer()
	if err != nil {
		return err
	}

	fetcher := fetch.New()
	extractor := extract.New()

	writer, err := output.New(flagOutputDir)
	if err != nil {
		return fmt.Errorf("initializing output writer: %w", err)
	}

	loader, closeCache, err := newLoader()
	if err != nil {
		return err
	}
	defer closeCache()

	var metrics controller.Metrics
	opts := paper.Options{
		Mode:     mode,
		Pipeline: pipelineOptions(),
		Timeout:  flagTimeout,
		Batch:    flagBatch,
		Observer: &metrics,
	}
	p := &pipe{fetcher: fetcher, extractor: extractor, loader: loader, opts: opts, renderer: renderer}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if flagAll {
		err = runAll(ctx, src, p, writer)
	} else {
		err = runOnly(ctx, src, p, writer)
	}
	s := metrics.Snapshot()
	core.Logger().Debug("render finished", "rendered", s.Rendered, "failed", s.Failed, "discarded", s.Discarded)
	return err
}

// pipe carries the components one source goes through.
type pipe struct {
	fetcher   core.Fetcher
	extractor core.Extractor
	loader    *engine.Loader
	opts      paper.Options
	renderer  core.Renderer
}

// runOnly processes a single source through the pipeline.
func runOnly(ctx context.Context, src string, p *pipe, writer *output.Writer) error {
	data, summary, err := p.process(ctx, src)
	if err != nil {
		return err
	}

	path, err := writer.WriteOnly(src, data, p.renderer.Extension())
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "%s Written: %s %s\n", okMark, path, describe(summary))
	return nil
}

// runAll discovers every exam document under src and processes each one.
func runAll(ctx context.Context, src string, p *pipe, writer *output.Writer) error {
	fmt.Fprintf(os.Stdout, "Discovering exam documents in %s...\n", src)

	sources, err := collect.DiscoverAll(ctx, src, p.fetcher)
	if err != nil {
		return fmt.Errorf("discovering documents: %w", err)
	}

	fmt.Fprintf(os.Stdout, "Found %d documents to process\n", len(sources))

	var errCount int
	for i, doc := range sources {
		fmt.Fprintf(os.Stdout, "[%d/%d] Processing %s\n", i+1, len(sources), doc)

		data, summary, err := p.process(ctx, doc)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  %s Error: %v\n", failMark, err)
			errCount++
			continue
		}

		path, err := writer.WriteAll(src, doc, data, p.renderer.Extension())
		if err != nil {
			fmt.Fprintf(os.Stderr, "  %s Write error: %v\n", failMark, err)
			errCount++
			continue
		}
		fmt.Fprintf(os.Stdout, "  %s Written: %s %s\n", okMark, path, describe(summary))
	}

	if errCount > 0 {
		fmt.Fprintf(os.Stderr, "\n%d/%d documents failed\n", errCount, len(sources))
	}
	return nil
}

// process runs a single source through the full pipeline.
func (p *pipe) process(ctx context.Context, src string) ([]byte, render.Summary, error) {
	doc, err := p.load(ctx, src)
	if err != nil {
		return nil, render.Summary{}, err
	}

	data, err := p.renderer.Render(doc)
	if err != nil {
		return nil, render.Summary{}, fmt.Errorf("render: %w", err)
	}
	return data, render.Summarize(doc), nil
}

// load fetches, extracts and typesets src.
func (p *pipe) load(ctx context.Context, src string) (*core.RenderedExam, error) {
	// 1. Fetch
	result, err := p.fetcher.Fetch(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}

	// 2. Extract the exam document
	exam, err := p.extractor.Extract(result)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}

	// 3. Typeset every question
	doc, err := paper.Render(ctx, p.loader, exam, src, p.opts)
	if err != nil {
		return nil, fmt.Errorf("typeset: %w", err)
	}
	return doc, nil
}

func describe(s render.Summary) string {
	return dimStyle.Render(fmt.Sprintf("(%d questions, %d typeset, %d plain)", s.Questions, s.Rendered, s.Fallback+s.Pending))
}

// validateFlags checks that exactly one output format is chosen.
func validateFlags() error {
	formatCount := 0
	for _, set := range []bool{flagHTML, flagMarkdown, flagJSON, flagPDF} {
		if set {
			formatCount++
		}
	}

	if formatCount == 0 {
		return fmt.Errorf("exactly one output format is required: --html, --markdown, --json, or --pdf")
	}
	if formatCount > 1 {
		return fmt.Errorf("only one output format allowed per run (got %d)", formatCount)
	}
	if flagBatch <= 0 {
		return fmt.Errorf("--batch must be positive (got %d)", flagBatch)
	}
	return nil
}

// selectRenderer creates the appropriate Renderer based on flags.
func selectRenderer() (core.Renderer, error) {
	switch {
	case flagHTML:
		return render.NewHTMLRenderer(), nil
	case flagMarkdown:
		return render.NewMarkdownRenderer(), nil
	case flagJSON:
		return render.NewJSONRenderer(), nil
	case flagPDF:
		return render.NewPDFRenderer(), nil
	default:
		return nil, fmt.Errorf("no output format selected")
	}
}
