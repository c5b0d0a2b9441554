package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oarkflow/mailout"
	"github.com/oarkflow/mailout/internal/config"
	"github.com/oarkflow/mailout/internal/recipient"
	"github.com/oarkflow/mailout/internal/tmpl"
)

var (
	checkCSV      string
	checkTemplate string
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check configuration without sending",
	Long: `Check that Mailout is ready to send.

This validates:
  - Credentials and SMTP settings from the environment and config file
  - The recipient CSV, when given with --csv
  - A template file, when given with --template`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("config validation failed: %w", err)
		}
		fmt.Printf("✓ Configuration is valid (%s via %s:%d)\n",
			cfg.EmailAddress, cfg.SMTPServer, cfg.SMTPPort)

		if checkCSV != "" {
			records, err := recipient.Read(checkCSV)
			if err != nil {
				return err
			}
			valid := 0
			for _, r := range records {
				if recipient.ValidAddress(r.Address) {
					valid++
				}
			}
			fmt.Printf("✓ Recipient file %s: %d rows, %d valid addresses\n",
				checkCSV, len(records), valid)
		}

		if checkTemplate != "" {
			subject, _, err := tmpl.LoadFile(checkTemplate)
			if err != nil {
				return err
			}
			if subject == "" {
				subject = cfg.DefaultSubject + " (default)"
			}
			fmt.Printf("✓ Template %s: subject %q\n", checkTemplate, subject)
		}

		return nil
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new configuration file",
	Long: `Initialize a new .mailout.yaml configuration file.

This creates a basic configuration file that you can customize.
Credentials still come from the environment or a .env file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := config.DefaultConfigFile
		if cfgFile != "" {
			configPath = cfgFile
		}

		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("config file already exists: %s", configPath)
		}

		template := config.DefaultTemplate()
		if err := os.WriteFile(configPath, []byte(template), 0644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}

		fmt.Printf("✓ Created %s\n", configPath)
		fmt.Println("\nEdit this file to customize your send settings.")
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit, and build date of Mailout.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Mailout %s\n", mailout.Version)
		if mailout.GitCommit != "" {
			fmt.Printf("  Commit: %s\n", mailout.GitCommit)
		}
		if mailout.BuildDate != "" {
			fmt.Printf("  Built:  %s\n", mailout.BuildDate)
		}
	},
}

func init() {
	checkCmd.Flags().StringVar(&checkCSV, "csv", "", "recipient CSV file to validate")
	checkCmd.Flags().StringVar(&checkTemplate, "template", "", "template file to validate")
}
