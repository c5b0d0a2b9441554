package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	mail "gopkg.in/mail.v2"

	"github.com/oarkflow/mailout/internal/config"
	"github.com/oarkflow/mailout/internal/journal"
	"github.com/oarkflow/mailout/internal/recipient"
	"github.com/oarkflow/mailout/internal/tmpl"
)

// fakeSender records delivered messages and can fail specific recipients.
type fakeSender struct {
	sent     []string
	messages []*mail.Message
	errFor   map[string]error
	closed   bool
}

func (f *fakeSender) Send(m *mail.Message) error {
	to := m.GetHeader("To")[0]
	if err, ok := f.errFor[to]; ok {
		return err
	}
	f.sent = append(f.sent, to)
	f.messages = append(f.messages, m)
	return nil
}

func (f *fakeSender) Close() error {
	f.closed = true
	return nil
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.EmailAddress = "sender@example.com"
	cfg.EmailPassword = "app-password"
	cfg.RateLimitDelay = config.Seconds(0)
	return &cfg
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func newTestPipeline(t *testing.T, cfg *config.Config, csv string, opts Options) (*Pipeline, *fakeSender) {
	t.Helper()
	dir := t.TempDir()
	opts.CSVPath = writeFile(t, dir, "emails.csv", csv)
	if opts.LogPath == "" {
		opts.LogPath = filepath.Join(dir, "mailout.log")
	}

	p, err := New(cfg, opts)
	require.NoError(t, err)

	sender := &fakeSender{errFor: map[string]error{}}
	p.sender = sender
	return p, sender
}

func TestRunRecordsOneOutcomePerRowInOrder(t *testing.T) {
	p, sender := newTestPipeline(t, testConfig(),
		"email,name\na@example.com,A\nb@example.com,B\nc@example.com,C\n",
		Options{})

	require.NoError(t, p.Run(context.Background()))

	outcomes := p.Outcomes()
	require.Len(t, outcomes, 3)
	assert.Equal(t, "a@example.com", outcomes[0].Recipient)
	assert.Equal(t, "b@example.com", outcomes[1].Recipient)
	assert.Equal(t, "c@example.com", outcomes[2].Recipient)
	for _, o := range outcomes {
		assert.Equal(t, journal.StatusSent, o.Status)
	}

	assert.Equal(t, []string{"a@example.com", "b@example.com", "c@example.com"}, sender.sent)
	assert.True(t, sender.closed)
}

func TestMalformedAddressDoesNotStopBatch(t *testing.T) {
	p, sender := newTestPipeline(t, testConfig(),
		"email,name\na@example.com,A\nnot-an-address,B\nc@example.com,C\n",
		Options{})

	require.NoError(t, p.Run(context.Background()))

	outcomes := p.Outcomes()
	require.Len(t, outcomes, 3)
	assert.Equal(t, journal.StatusSent, outcomes[0].Status)
	assert.Equal(t, journal.StatusFailed, outcomes[1].Status)
	assert.Contains(t, outcomes[1].Reason, "invalid address")
	assert.Equal(t, journal.StatusSent, outcomes[2].Status)

	assert.Equal(t, []string{"a@example.com", "c@example.com"}, sender.sent)

	report := p.Report()
	assert.Equal(t, 2, report.Sent)
	assert.Equal(t, 1, report.Failed)
}

func TestSendErrorIsolatedToOneRecipient(t *testing.T) {
	p, sender := newTestPipeline(t, testConfig(),
		"email,name\na@example.com,A\nb@example.com,B\nc@example.com,C\n",
		Options{})
	sender.errFor["b@example.com"] = errors.New("550 mailbox unavailable")

	require.NoError(t, p.Run(context.Background()))

	outcomes := p.Outcomes()
	require.Len(t, outcomes, 3)
	assert.Equal(t, journal.StatusFailed, outcomes[1].Status)
	assert.Contains(t, outcomes[1].Reason, "550")
	assert.Equal(t, []string{"a@example.com", "c@example.com"}, sender.sent)
}

func TestDryRunTransmitsNothing(t *testing.T) {
	dir := t.TempDir()
	opts := Options{
		CSVPath: writeFile(t, dir, "emails.csv", "email,name\na@example.com,A\nb@example.com,B\n"),
		LogPath: filepath.Join(dir, "mailout.log"),
		DryRun:  true,
	}

	// No sender is injected and no credentials are set: a dry run must
	// never reach the transport.
	cfg := config.Default()
	cfg.RateLimitDelay = config.Seconds(0)
	p, err := New(&cfg, opts)
	require.NoError(t, err)

	require.NoError(t, p.Run(context.Background()))

	outcomes := p.Outcomes()
	require.Len(t, outcomes, 2)
	for _, o := range outcomes {
		assert.Equal(t, journal.StatusSkipped, o.Status)
		assert.Equal(t, "dry-run", o.Reason)
	}
}

func TestDryRunStillValidatesAddresses(t *testing.T) {
	dir := t.TempDir()
	opts := Options{
		CSVPath: writeFile(t, dir, "emails.csv", "email\na@example.com\nnot-an-address\n"),
		LogPath: filepath.Join(dir, "mailout.log"),
		DryRun:  true,
	}
	cfg := config.Default()
	cfg.RateLimitDelay = config.Seconds(0)
	p, err := New(&cfg, opts)
	require.NoError(t, err)

	require.NoError(t, p.Run(context.Background()))

	outcomes := p.Outcomes()
	require.Len(t, outcomes, 2)
	assert.Equal(t, journal.StatusSkipped, outcomes[0].Status)
	assert.Equal(t, journal.StatusFailed, outcomes[1].Status)
}

func TestPacingDelayBetweenSends(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitDelay = config.Seconds(0.1)

	csv := "email\na@example.com\nb@example.com\nc@example.com\nd@example.com\ne@example.com\n"
	p, _ := newTestPipeline(t, cfg, csv, Options{DryRun: true})

	start := time.Now()
	require.NoError(t, p.Run(context.Background()))
	elapsed := time.Since(start)

	// 5 recipients, 4 inter-send delays of 100ms each
	assert.GreaterOrEqual(t, elapsed, 400*time.Millisecond)
	assert.Less(t, elapsed, time.Second)
}

func TestPacingCancelledByContext(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitDelay = config.Seconds(10)

	p, _ := newTestPipeline(t, cfg, "email\na@example.com\nb@example.com\n", Options{DryRun: true})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := p.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Len(t, p.Outcomes(), 1)
}

func TestTemplateRendering(t *testing.T) {
	p, sender := newTestPipeline(t, testConfig(),
		"email,name\na@example.com,A\n",
		Options{Subject: "Hello {name}", Body: "Hi {name}"})

	require.NoError(t, p.Run(context.Background()))

	require.Len(t, sender.messages, 1)
	m := sender.messages[0]
	assert.Equal(t, []string{"Hello A"}, m.GetHeader("Subject"))

	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Hi A")
	assert.NotContains(t, buf.String(), "{name}")
}

func TestTemplateFileAndDefaultSubject(t *testing.T) {
	dir := t.TempDir()
	template := writeFile(t, dir, "body.txt", "Dear {name}, welcome.\n")

	p, sender := newTestPipeline(t, testConfig(),
		"email,name\na@example.com,A\n",
		Options{TemplatePath: template})

	require.NoError(t, p.Run(context.Background()))

	require.Len(t, sender.messages, 1)
	// template has no subject line, so the configured default applies
	assert.Equal(t, []string{"Explore Vietnam"}, sender.messages[0].GetHeader("Subject"))
}

func TestMissingAttachmentFailsOnlyThatRecipient(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "A.txt", "attachment for A")

	p, sender := newTestPipeline(t, testConfig(),
		"email,name\na@example.com,A\nb@example.com,B\n",
		Options{Attachments: []string{filepath.Join(dir, "{name}.txt")}})

	require.NoError(t, p.Run(context.Background()))

	outcomes := p.Outcomes()
	require.Len(t, outcomes, 2)
	assert.Equal(t, journal.StatusSent, outcomes[0].Status)
	assert.Equal(t, journal.StatusFailed, outcomes[1].Status)
	assert.Contains(t, outcomes[1].Reason, "attachment")
	assert.Equal(t, []string{"a@example.com"}, sender.sent)
}

func TestMissingCSVIsFatal(t *testing.T) {
	_, err := New(testConfig(), Options{CSVPath: filepath.Join(t.TempDir(), "nope.csv")})
	assert.ErrorIs(t, err, recipient.ErrInvalidSource)
}

func TestBadTemplateIsFatal(t *testing.T) {
	dir := t.TempDir()
	csvPath := writeFile(t, dir, "emails.csv", "email\na@example.com\n")

	_, err := New(testConfig(), Options{
		CSVPath:      csvPath,
		TemplatePath: filepath.Join(dir, "nope.txt"),
		LogPath:      filepath.Join(dir, "mailout.log"),
	})
	assert.ErrorIs(t, err, tmpl.ErrBadTemplate)
}

func TestJournalWrittenIncrementally(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "mailout.log")

	p, _ := newTestPipeline(t, testConfig(),
		"email\na@example.com\nb@example.com\n",
		Options{LogPath: logPath})

	require.NoError(t, p.Run(context.Background()))

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "a@example.com\tsent")
	assert.Contains(t, string(data), "b@example.com\tsent")
}
