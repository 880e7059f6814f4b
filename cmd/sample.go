package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/texpipe/core/extract"
)

var flagSampleOut string

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Write the built-in sample exam document",
	Long: `Sample writes an example exam document showing the expected JSON shape.
Use --out - to print it instead.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data := extract.SampleJSON()
		if flagSampleOut == "-" {
			_, err := os.Stdout.Write(data)
			return err
		}
		if err := os.WriteFile(flagSampleOut, data, 0644); err != nil {
			return fmt.Errorf("writing sample: %w", err)
		}
		fmt.Fprintf(os.Stdout, "%s Written: %s %s\n", okMark, flagSampleOut,
			dimStyle.Render(fmt.Sprintf("(%d questions)", extract.Count(extract.Sample()))))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sampleCmd)
	sampleCmd.Flags().StringVarP(&flagSampleOut, "out", "o", "sample-exam.json", "Output path, or - for stdout")
}
