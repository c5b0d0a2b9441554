package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oarkflow/mailout/internal/config"
	"github.com/oarkflow/mailout/internal/pipeline"
)

var (
	csvPath      string
	subject      string
	body         string
	templatePath string
	htmlTemplate string
	attachments  []string
	dryRun       bool
	strict       bool
	logPath      string
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send emails to every recipient in a CSV file",
	Long: `Send personalized emails to every recipient in a CSV file.

Recipients are processed one at a time, in file order, with a pacing
delay between sends. A failure for one recipient never stops the batch:
it is recorded as a failed outcome and the run continues. The run only
aborts up front, when the CSV cannot be read, a template file is
invalid, or the SMTP server rejects the credentials.

Use --dry-run to render templates and validate the recipient list and
attachments without transmitting anything.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		if !dryRun {
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("configuration invalid: %w", err)
			}
		}

		opts := pipeline.Options{
			CSVPath:          csvPath,
			Subject:          subject,
			Body:             body,
			TemplatePath:     templatePath,
			HTMLTemplatePath: htmlTemplate,
			Attachments:      attachments,
			DryRun:           dryRun,
			LogPath:          logPath,
		}

		p, err := pipeline.New(cfg, opts)
		if err != nil {
			return err
		}

		if err := p.Run(cmd.Context()); err != nil {
			return fmt.Errorf("send failed: %w", err)
		}

		report := p.Report()
		if dryRun {
			fmt.Printf("Dry run completed: %d recipients validated, %d failed\n",
				report.Skipped, report.Failed)
		} else {
			fmt.Printf("Completed: %d sent, %d failed, %d total\n",
				report.Sent, report.Failed, report.Total)
		}

		if strict && report.Failed > 0 {
			return fmt.Errorf("%d of %d recipients failed", report.Failed, report.Total)
		}
		return nil
	},
}

func init() {
	sendCmd.Flags().StringVar(&csvPath, "csv", "", "CSV file with recipient addresses (required)")
	sendCmd.Flags().StringVar(&subject, "subject", "", "subject template (overrides template file)")
	sendCmd.Flags().StringVar(&body, "body", "", "body template (overrides template file)")
	sendCmd.Flags().StringVar(&templatePath, "template", "", "template file with subject, ---, and body")
	sendCmd.Flags().StringVar(&htmlTemplate, "html-template", "", "HTML body template file")
	sendCmd.Flags().StringSliceVar(&attachments, "attachments", nil, "files to attach")
	sendCmd.Flags().BoolVar(&dryRun, "dry-run", false, "process everything without sending")
	sendCmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero if any recipient failed")
	sendCmd.Flags().StringVar(&logPath, "log", "", "outcome log file (default logs/mailout.log)")

	_ = sendCmd.MarkFlagRequired("csv")
}
