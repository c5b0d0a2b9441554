/*
Package journal records per-recipient send outcomes for Mailout.

Outcomes are appended to a line-oriented log sink as they occur, so a
crash mid-run leaves a partial but still useful trail. The in-memory
outcome list is append-only and ordered by processing order.
*/
package journal

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Status is the terminal state of one recipient's processing attempt.
type Status string

const (
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Outcome is the immutable result recorded for one recipient.
type Outcome struct {
	Recipient string
	Status    Status
	Reason    string
	Time      time.Time
}

// Report aggregates outcome counts for a whole run.
type Report struct {
	Sent    int
	Failed  int
	Skipped int
	Total   int
}

// Journal appends outcomes to a durable sink and keeps them in order
// for the final report.
type Journal struct {
	w        io.Writer
	closer   io.Closer
	outcomes []Outcome
}

// Open creates (or appends to) the log file at path, creating parent
// directories as needed.
func Open(path string) (*Journal, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return &Journal{w: f, closer: f}, nil
}

// New returns a Journal writing to w. Used by tests and dry runs that
// log to a buffer.
func New(w io.Writer) *Journal {
	return &Journal{w: w}
}

// Record appends one outcome to the sink and to the in-memory list.
// Sink write failures are reported but do not invalidate the outcome.
func (j *Journal) Record(o Outcome) error {
	if o.Time.IsZero() {
		o.Time = time.Now()
	}
	j.outcomes = append(j.outcomes, o)

	reason := o.Reason
	if reason == "" {
		reason = "-"
	}
	_, err := fmt.Fprintf(j.w, "%s\t%s\t%s\t%s\n",
		o.Time.Format(time.RFC3339), o.Recipient, o.Status, reason)
	if err != nil {
		return fmt.Errorf("failed to write outcome log: %w", err)
	}
	return nil
}

// Outcomes returns the recorded outcomes in processing order.
func (j *Journal) Outcomes() []Outcome {
	return j.outcomes
}

// Report derives the aggregate counts from the outcome list.
func (j *Journal) Report() Report {
	r := Report{Total: len(j.outcomes)}
	for _, o := range j.outcomes {
		switch o.Status {
		case StatusSent:
			r.Sent++
		case StatusFailed:
			r.Failed++
		case StatusSkipped:
			r.Skipped++
		}
	}
	return r
}

// Close closes the underlying sink when it is a file.
func (j *Journal) Close() error {
	if j.closer != nil {
		return j.closer.Close()
	}
	return nil
}
