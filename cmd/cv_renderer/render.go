package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/cv-renderer/internal/engine"
	"github.com/jonathan/cv-renderer/internal/normalize"
	"github.com/jonathan/cv-renderer/internal/render"
	"github.com/jonathan/cv-renderer/internal/schemas"
)

var (
	renderTemplate string
	renderData     string
	renderOut      string
	renderValidate bool
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a CV document locally",
	Long:  `Merge a JSON data file into a local .docx template and write the rendered document, without starting the server.`,
	RunE:  runRender,
}

func init() {
	renderCmd.Flags().StringVar(&renderTemplate, "template", "", "Path to the .docx template (required)")
	renderCmd.Flags().StringVar(&renderData, "data", "", "Path to the CV data JSON file (required)")
	renderCmd.Flags().StringVar(&renderOut, "out", "CV.docx", "Output path for the rendered document")
	renderCmd.Flags().BoolVar(&renderValidate, "validate", false, "Validate the data against the context schema before rendering")
	_ = renderCmd.MarkFlagRequired("template")
	_ = renderCmd.MarkFlagRequired("data")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, _ []string) error {
	templateBytes, err := os.ReadFile(renderTemplate)
	if err != nil {
		return fmt.Errorf("failed to read template: %w", err)
	}

	rawData, err := os.ReadFile(renderData)
	if err != nil {
		return fmt.Errorf("failed to read data file: %w", err)
	}

	if renderValidate {
		if err := schemas.ValidateContext(string(rawData)); err != nil {
			return err
		}
	}

	parsed, err := normalize.Parse(string(rawData))
	if err != nil {
		return err
	}
	data := normalize.Normalize(parsed)

	renderer := render.New(engine.NewDocx())
	output, err := renderer.Render(cmd.Context(), templateBytes, data)
	if err != nil {
		return err
	}

	if err := os.WriteFile(renderOut, output, 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	fmt.Printf("Rendered %s\n", renderOut)
	return nil
}
