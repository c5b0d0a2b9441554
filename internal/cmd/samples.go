package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oarkflow/mailout/internal/samples"
)

var samplesDir string

var samplesCmd = &cobra.Command{
	Use:   "samples",
	Short: "Create example input files",
	Long: `Create example input files to get started:

  sample_emails.csv       recipient list with email and name columns
  sample_template.txt     subject + body template with {name} placeholders
  sample_template.html    HTML body template
  .env.example            credential and settings template

Existing files are never overwritten.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		created, skipped, err := samples.Create(samplesDir)
		for _, name := range created {
			fmt.Printf("✓ Created %s\n", name)
		}
		for _, name := range skipped {
			fmt.Printf("- Skipped %s (already exists)\n", name)
		}
		if err != nil {
			return err
		}
		fmt.Println("\nCopy .env.example to .env and fill in your credentials.")
		return nil
	},
}

func init() {
	samplesCmd.Flags().StringVar(&samplesDir, "dir", ".", "directory to create the files in")
}
