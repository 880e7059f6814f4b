package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/texpipe/core"
	"github.com/gaurav-prasanna/texpipe/core/controller"
	"github.com/gaurav-prasanna/texpipe/core/engine"
	"github.com/gaurav-prasanna/texpipe/core/extract"
	"github.com/gaurav-prasanna/texpipe/core/target"
)

var (
	flagTypesetMode    string
	flagTypesetTimeout time.Duration
	flagGallery        bool
	flagOut            string
)

var typesetCmd = &cobra.Command{
	Use:   "typeset [latex]",
	Short: "Try out a formula and see how texpipe treats it",
	Long: `Typeset runs one formula through normalization, mode detection and the
engine, then prints the resolved mode, the wrapped text and the outcome.
With --gallery it runs every built-in example instead.

Examples:
  texpipe typeset '\frac{a}{b}'
  texpipe typeset 'x^2 + y^2' --mode display --out formula.svg
  texpipe typeset --gallery --engine startex`,
	Args: func(cmd *cobra.Command, args []string) error {
		if flagGallery {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.ExactArgs(1)(cmd, args)
	},
	RunE: runTypeset,
}

func init() {
	rootCmd.AddCommand(typesetCmd)
	typesetCmd.Flags().StringVar(&flagTypesetMode, "mode", string(core.ModeAuto), "Math mode: auto, inline, display or text")
	typesetCmd.Flags().BoolVar(&flagBasic, "basic", false, "Skip normalization and mode detection")
	typesetCmd.Flags().BoolVar(&flagGallery, "gallery", false, "Typeset every built-in example")
	typesetCmd.Flags().StringVar(&flagOut, "out", "", "Write the engine output to this file")
	typesetCmd.Flags().DurationVar(&flagTypesetTimeout, "timeout", 10*time.Second, "How long to wait for the engine")
}

func runTypeset(cmd *cobra.Command, args []string) error {
	mode, err := core.ParseMode(flagTypesetMode)
	if err != nil {
		return err
	}
	loader, closeCache, err := newLoader()
	if err != nil {
		return err
	}
	defer closeCache()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if !flagGallery {
		buf, err := typesetOne(ctx, os.Stdout, loader, args[0], mode)
		if err != nil {
			return err
		}
		if c := buf.Content(); flagOut != "" && c.Kind == core.ContentTypeset {
			if err := os.WriteFile(flagOut, c.Typeset.Data, 0644); err != nil {
				return fmt.Errorf("writing %s: %w", flagOut, err)
			}
			fmt.Fprintf(os.Stdout, "%s Written: %s\n", okMark, flagOut)
		}
		return nil
	}

	for _, cat := range extract.Gallery() {
		fmt.Fprintf(os.Stdout, "\n%s\n", cat.Title)
		for _, ex := range cat.Examples {
			fmt.Fprintf(os.Stdout, "\n  %s\n", dimStyle.Render(ex.Name))
			if _, err := typesetOne(ctx, indent{os.Stdout}, loader, ex.Latex, mode); err != nil {
				return err
			}
		}
	}
	return nil
}

// typesetOne renders latex into a fresh buffer and reports what happened.
func typesetOne(ctx context.Context, w io.Writer, loader *engine.Loader, latex string, mode core.Mode) (*target.Buffer, error) {
	buf := target.NewBuffer()
	c := controller.New(loader, buf, controller.Options{Pipeline: pipelineOptions()})
	defer c.Close()

	sub := c.Render(ctx, latex, mode)
	fmt.Fprintf(w, "mode:    %s\n", sub.Mode)
	fmt.Fprintf(w, "wrapped: %s\n", sub.Wrapped)

	waitCtx, cancel := context.WithTimeout(ctx, flagTypesetTimeout)
	defer cancel()
	outcome, err := sub.Wait(waitCtx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// The engine never answered; show what a reader would see unless
		// a result landed before Close.
		c.Close()
		if st := c.State(); st != core.Rendered && st != core.Fallback {
			buf.SetFallback(controller.Plain(sub.Wrapped))
		}
		fmt.Fprintf(w, "%s timed out after %s (engine %s)\n", failMark, flagTypesetTimeout, loader.Name())
	} else {
		mark := okMark
		if outcome != controller.Rendered {
			mark = failMark
		}
		fmt.Fprintf(w, "%s %s (engine %s)\n", mark, outcome, loader.Name())
		if sub.Err() != nil {
			fmt.Fprintf(w, "  %s\n", dimStyle.Render(sub.Err().Error()))
		}
	}

	switch content := buf.Content(); content.Kind {
	case core.ContentTypeset:
		fmt.Fprintf(w, "output:  %d bytes of %s\n", len(content.Typeset.Data), content.Typeset.Format)
	case core.ContentFallback:
		fmt.Fprintf(w, "plain:   %q\n", content.Text)
	default:
		fmt.Fprintln(w, "output:  (empty)")
	}
	return buf, nil
}

// indent prefixes every write with two spaces. Each Fprintf above writes
// exactly one line.
type indent struct{ w io.Writer }

func (i indent) Write(p []byte) (int, error) {
	if _, err := io.WriteString(i.w, "  "); err != nil {
		return 0, err
	}
	return i.w.Write(p)
}
