/*
Package mailout provides a bulk email tool that sends personalized emails
to recipients listed in a CSV file.

Mailout is designed to automate small-scale email outreach including:
  - Reading recipient addresses and per-recipient fields from CSV files
  - Rendering subject and body templates with {field} placeholders
  - Building MIME messages with plain text, HTML alternatives, and attachments
  - Delivering messages sequentially over SMTP with a pacing delay
  - Recording one outcome per recipient and a final run report

# Configuration

Mailout reads credentials and SMTP settings from the environment (a .env
file in the working directory is loaded automatically) and optionally from
a .mailout.yaml configuration file.

# Usage

Basic usage:

	mailout send --csv emails.csv --template welcome.txt   # Send the batch
	mailout send --csv emails.csv --dry-run                # Validate without sending
	mailout check                                          # Check configuration
	mailout samples                                        # Create example files

For more information, see the documentation at https://github.com/oarkflow/mailout
*/
package mailout

// Version is the current version of Mailout
const Version = "1.0.0"

// BuildDate is set at build time
var BuildDate string

// GitCommit is set at build time
var GitCommit string
