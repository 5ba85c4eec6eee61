package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/schemefinder/internal/importer"
)

func newImportCmd() *cobra.Command {
	var input, output string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Convert a CSV export of schemes into the JSON dataset",
		Long: "Reads a CSV file with a header row. Required columns: " +
			"name, summary, category, states, applyLink. States and tags are comma-separated; " +
			"benefits and documents are separated by '|' or newlines. Slug and id default to the slugified name.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			in, err := os.Open(input)
			if err != nil {
				return fmt.Errorf("open input: %w", err)
			}
			defer func() { _ = in.Close() }()

			schemes, err := importer.Read(in)
			if err != nil {
				return fmt.Errorf("import %s: %w", input, err)
			}

			var out io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create output: %w", err)
				}
				defer func() { _ = f.Close() }()
				out = f
			}
			if err := importer.Write(out, schemes); err != nil {
				return err
			}
			if output != "" && output != "-" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Generated %s (items: %d)\n", output, len(schemes))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "CSV file to read")
	cmd.Flags().StringVarP(&output, "output", "o", "-", "JSON file to write, '-' for stdout")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}
