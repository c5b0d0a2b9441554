package journal

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAppendsImmediately(t *testing.T) {
	var buf bytes.Buffer
	j := New(&buf)

	require.NoError(t, j.Record(Outcome{Recipient: "a@example.com", Status: StatusSent}))
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))

	require.NoError(t, j.Record(Outcome{Recipient: "b@example.com", Status: StatusFailed, Reason: "boom"}))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	assert.Contains(t, lines[0], "a@example.com\tsent\t-")
	assert.Contains(t, lines[1], "b@example.com\tfailed\tboom")
}

func TestRecordStampsTime(t *testing.T) {
	var buf bytes.Buffer
	j := New(&buf)

	require.NoError(t, j.Record(Outcome{Recipient: "a@example.com", Status: StatusSent}))
	require.Len(t, j.Outcomes(), 1)
	assert.WithinDuration(t, time.Now(), j.Outcomes()[0].Time, time.Second)
}

func TestReportCounts(t *testing.T) {
	j := New(&bytes.Buffer{})

	outcomes := []Outcome{
		{Recipient: "a@example.com", Status: StatusSent},
		{Recipient: "b@example.com", Status: StatusFailed, Reason: "refused"},
		{Recipient: "c@example.com", Status: StatusSent},
		{Recipient: "d@example.com", Status: StatusSkipped, Reason: "dry-run"},
	}
	for _, o := range outcomes {
		require.NoError(t, j.Record(o))
	}

	r := j.Report()
	assert.Equal(t, 2, r.Sent)
	assert.Equal(t, 1, r.Failed)
	assert.Equal(t, 1, r.Skipped)
	assert.Equal(t, 4, r.Total)
}

func TestOutcomesKeepOrder(t *testing.T) {
	j := New(&bytes.Buffer{})
	for _, addr := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		require.NoError(t, j.Record(Outcome{Recipient: addr, Status: StatusSent}))
	}

	got := j.Outcomes()
	require.Len(t, got, 3)
	assert.Equal(t, "a@example.com", got[0].Recipient)
	assert.Equal(t, "b@example.com", got[1].Recipient)
	assert.Equal(t, "c@example.com", got[2].Recipient)
}

func TestOpenCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "mailout.log")

	j, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, j.Record(Outcome{Recipient: "a@example.com", Status: StatusSent}))
	require.NoError(t, j.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "a@example.com")
}

func TestOpenAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mailout.log")

	for i := 0; i < 2; i++ {
		j, err := Open(path)
		require.NoError(t, err)
		require.NoError(t, j.Record(Outcome{Recipient: "a@example.com", Status: StatusSent}))
		require.NoError(t, j.Close())
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(data), "\n"))
}
