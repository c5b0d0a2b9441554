/*
Package pipeline provides the batch send orchestration for Mailout.

Recipients are processed strictly one at a time, in source order. Any
error raised while validating, rendering, building, or sending a single
recipient's message is contained at the loop boundary and converted into
a Failed outcome; no recipient can terminate the batch. Only failures
that would affect every recipient identically (unreadable source, bad
template, rejected credentials) abort the run, and those happen before
the first outcome is recorded.
*/
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/oarkflow/mailout/internal/config"
	"github.com/oarkflow/mailout/internal/journal"
	"github.com/oarkflow/mailout/internal/message"
	"github.com/oarkflow/mailout/internal/recipient"
	"github.com/oarkflow/mailout/internal/tmpl"
	"github.com/oarkflow/mailout/internal/transport"
)

// DefaultLogPath is the outcome log location when --log is not given.
const DefaultLogPath = "logs/mailout.log"

// defaultBody is used when neither --body nor a template file provide one.
const defaultBody = `Vietnam is a country located in Southeast Asia,
known for its diverse landscapes and rich culture.

Vietnam is also famous for its unique cuisine,
from pho and banh mi (Vietnamese sandwiches) to regional specialties.

The country's folk culture, traditional festivals make it truly special.`

// Options contains options for one send run.
type Options struct {
	CSVPath          string
	Subject          string
	Body             string
	TemplatePath     string
	HTMLTemplatePath string
	Attachments      []string
	DryRun           bool
	LogPath          string
}

// Pipeline orchestrates a batch send run.
type Pipeline struct {
	cfg        *config.Config
	options    Options
	spec       tmpl.Spec
	recipients []recipient.Record
	journal    *journal.Journal
	sender     transport.Sender
	startTime  time.Time
}

// New loads the recipient source and templates and opens the outcome
// journal. Source and template failures are fatal here, before any send
// is attempted.
func New(cfg *config.Config, opts Options) (*Pipeline, error) {
	recipients, err := recipient.Read(opts.CSVPath)
	if err != nil {
		return nil, err
	}

	spec, err := resolveTemplates(cfg, opts)
	if err != nil {
		return nil, err
	}

	logPath := opts.LogPath
	if logPath == "" {
		logPath = DefaultLogPath
	}
	j, err := journal.Open(logPath)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		cfg:        cfg,
		options:    opts,
		spec:       spec,
		recipients: recipients,
		journal:    j,
	}, nil
}

// resolveTemplates combines inline flags, template files, and configured
// defaults into the run's template spec. Inline flags win over files.
func resolveTemplates(cfg *config.Config, opts Options) (tmpl.Spec, error) {
	spec := tmpl.Spec{Subject: opts.Subject, Body: opts.Body}

	if opts.TemplatePath != "" {
		subject, body, err := tmpl.LoadFile(opts.TemplatePath)
		if err != nil {
			return tmpl.Spec{}, err
		}
		if spec.Subject == "" {
			spec.Subject = subject
		}
		if spec.Body == "" {
			spec.Body = body
		}
	}

	if opts.HTMLTemplatePath != "" {
		_, html, err := tmpl.LoadFile(opts.HTMLTemplatePath)
		if err != nil {
			return tmpl.Spec{}, err
		}
		spec.HTMLBody = html
	}

	if spec.Subject == "" {
		spec.Subject = cfg.DefaultSubject
	}
	if spec.Body == "" {
		spec.Body = defaultBody
	}
	return spec, nil
}

// Run executes the batch. It dials the transport once (unless dry-run or
// a sender was injected), then walks the recipients sequentially with
// the configured pacing delay between attempts.
func (p *Pipeline) Run(ctx context.Context) error {
	p.startTime = time.Now()
	defer p.journal.Close()

	log.Info("Starting send pipeline",
		"recipients", len(p.recipients),
		"dry_run", p.options.DryRun,
		"delay", p.cfg.Delay())

	if !p.options.DryRun && p.sender == nil {
		sender, err := transport.Dial(
			p.cfg.SMTPServer, p.cfg.SMTPPort,
			p.cfg.EmailAddress, p.cfg.EmailPassword,
			p.cfg.Timeout())
		if err != nil {
			return err
		}
		p.sender = sender
	}
	if p.sender != nil {
		defer func() {
			if err := p.sender.Close(); err != nil {
				log.Warn("Failed to close SMTP session", "error", err)
			}
		}()
	}

	sent, failed := 0, 0
	for i, rec := range p.recipients {
		o := p.process(rec)
		if err := p.journal.Record(o); err != nil {
			log.Warn("Outcome not persisted", "recipient", o.Recipient, "error", err)
		}

		switch o.Status {
		case journal.StatusSent:
			sent++
			log.Info("Sent", "to", o.Recipient, "sent", sent, "failed", failed)
		case journal.StatusFailed:
			failed++
			log.Error("Failed", "to", o.Recipient, "reason", o.Reason, "sent", sent, "failed", failed)
		case journal.StatusSkipped:
			log.Info("Skipped (dry run)", "to", o.Recipient)
		}

		if i < len(p.recipients)-1 {
			if err := p.pace(ctx); err != nil {
				return err
			}
		}
	}

	report := p.Report()
	log.Info("Send pipeline completed",
		"sent", report.Sent,
		"failed", report.Failed,
		"skipped", report.Skipped,
		"duration", time.Since(p.startTime).Round(time.Millisecond))
	return nil
}

// process handles a single recipient end to end and returns its outcome.
// Every failure path is contained here.
func (p *Pipeline) process(rec recipient.Record) journal.Outcome {
	if !recipient.ValidAddress(rec.Address) {
		return journal.Outcome{
			Recipient: rec.Address,
			Status:    journal.StatusFailed,
			Reason:    fmt.Sprintf("invalid address at row %d", rec.Row),
		}
	}

	subject, text, html := p.spec.Render(rec.Fields)

	// Attachment paths may carry {field} placeholders too.
	attachments := make([]string, len(p.options.Attachments))
	for i, a := range p.options.Attachments {
		attachments[i] = tmpl.Render(a, rec.Fields)
	}

	msg, err := message.Build(message.Email{
		From:        p.cfg.EmailAddress,
		FromName:    p.cfg.FromName,
		To:          rec.Address,
		Subject:     subject,
		Text:        text,
		HTML:        html,
		Attachments: attachments,
	})
	if err != nil {
		return journal.Outcome{Recipient: rec.Address, Status: journal.StatusFailed, Reason: err.Error()}
	}

	if p.options.DryRun {
		return journal.Outcome{Recipient: rec.Address, Status: journal.StatusSkipped, Reason: "dry-run"}
	}

	if err := p.sender.Send(msg); err != nil {
		return journal.Outcome{Recipient: rec.Address, Status: journal.StatusFailed, Reason: err.Error()}
	}
	return journal.Outcome{Recipient: rec.Address, Status: journal.StatusSent}
}

// pace blocks for the configured inter-send delay. The delay is fixed,
// not adaptive, and runs after every attempt except the last.
func (p *Pipeline) pace(ctx context.Context) error {
	delay := p.cfg.Delay()
	if delay <= 0 {
		return nil
	}
	select {
	case <-time.After(delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Report returns the aggregate counts recorded so far.
func (p *Pipeline) Report() journal.Report {
	return p.journal.Report()
}

// Outcomes returns the per-recipient outcomes in processing order.
func (p *Pipeline) Outcomes() []journal.Outcome {
	return p.journal.Outcomes()
}
