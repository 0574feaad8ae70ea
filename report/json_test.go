package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amartya2002/status-checker/statuscheck"
)

func sampleResults() []statuscheck.CheckResult {
	at := time.Date(2026, 3, 1, 12, 30, 45, 123_456_789, time.UTC)
	return []statuscheck.CheckResult{
		{URL: "https://example.com", Outcome: statuscheck.Succeeded(200), Elapsed: 142 * time.Millisecond, CompletedAt: at, Attempts: 1},
		{URL: "https://bad.invalid", Outcome: statuscheck.Failed("Failed to process https://bad.invalid: Error: no such host"),
			Elapsed: 3021*time.Millisecond + 700*time.Microsecond, CompletedAt: at.Add(time.Second), Attempts: 3},
		{URL: "https://example.com/missing", Outcome: statuscheck.Outcome{StatusCode: 404, Message: "status 404"},
			Elapsed: 80 * time.Millisecond, CompletedAt: at.Add(2 * time.Second), Attempts: 1},
	}
}

func TestActionStatusIsUnionTyped(t *testing.T) {
	b, err := json.Marshal(FromResults(sampleResults()))
	require.NoError(t, err)

	var raw []map[string]any
	require.NoError(t, json.Unmarshal(b, &raw))
	require.Len(t, raw, 3)

	assert.Equal(t, float64(200), raw[0]["action_status"])
	assert.Equal(t, "Failed to process https://bad.invalid: Error: no such host", raw[1]["action_status"])
	assert.Equal(t, "status 404", raw[2]["action_status"])
	assert.Equal(t, float64(3021), raw[1]["response_time"])
	assert.Equal(t, "2026-03-01T12:30:45.123456789Z", raw[0]["timestamp"])
}

func TestWriteReadRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	w := NewWriter(fs)
	results := sampleResults()
	require.NoError(t, fs.MkdirAll("/out", 0o755))

	require.NoError(t, w.Write("/out/status.json", results))

	records, err := w.Read("/out/status.json")
	require.NoError(t, err)
	require.Len(t, records, len(results))
	for i, r := range results {
		assert.Equal(t, r.URL, records[i].URL)
		assert.Equal(t, r.Elapsed.Milliseconds(), records[i].ResponseTime)
		if r.Outcome.Success {
			assert.True(t, records[i].ActionStatus.OK())
			assert.Equal(t, r.Outcome.StatusCode, records[i].ActionStatus.Code)
		} else {
			assert.Equal(t, r.Outcome.Message, records[i].ActionStatus.Message)
		}
		ts, err := time.Parse(TimestampLayout, records[i].Timestamp)
		require.NoError(t, err)
		assert.True(t, ts.Equal(r.CompletedAt))
	}
}

func TestWriteTruncatesAndLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "status.json")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("x", 10_000)), 0o644))

	require.NoError(t, Write(path, sampleResults()[:1]))

	records, err := Read(path)
	require.NoError(t, err)
	assert.Len(t, records, 1)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file left behind")
}

func TestFailureWithoutMessageStaysAFailure(t *testing.T) {
	records := FromResults([]statuscheck.CheckResult{
		{URL: "https://a.example", Outcome: statuscheck.Failed("")},
		{URL: "https://b.example", Outcome: statuscheck.Outcome{StatusCode: 500}},
	})
	b, err := json.Marshal(records)
	require.NoError(t, err)

	var raw []map[string]any
	require.NoError(t, json.Unmarshal(b, &raw))
	assert.Equal(t, "check failed", raw[0]["action_status"])
	assert.Equal(t, "status 500", raw[1]["action_status"])

	var back []Record
	require.NoError(t, json.Unmarshal(b, &back))
	assert.False(t, back[0].ActionStatus.OK())
	assert.False(t, back[1].ActionStatus.OK())
}

func TestWriteKeepsExistingMode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "status.json")
	require.NoError(t, os.WriteFile(path, []byte("[]\n"), 0o600))
	require.NoError(t, os.Chmod(path, 0o640))

	require.NoError(t, Write(path, sampleResults()))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())

	require.NoError(t, os.Chmod(path, 0o644))
	require.NoError(t, Write(path, sampleResults()[:1]))
	info, err = os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestWriteNewReportIsWorldReadable(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/out", 0o755))
	require.NoError(t, NewWriter(fs).Write("/out/status.json", sampleResults()))

	info, err := fs.Stat("/out/status.json")
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestWriteErrorIsReturned(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
	err := NewWriter(fs).Write("/status.json", sampleResults())
	assert.Error(t, err)
}

func TestReadRejectsGarbage(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/status.json", []byte(`[{"url":"a","action_status":true}]`), 0o644))
	_, err := NewWriter(fs).Read("/status.json")
	assert.Error(t, err)
}

func TestWriteMarkdown(t *testing.T) {
	fs := afero.NewMemMapFs()
	w := NewWriter(fs)
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	err := w.WriteMarkdown("/report.md", sampleResults(), Summary{
		StartedAt: start, FinishedAt: start.Add(4 * time.Second), Workers: 4, MaxRetries: 2, JSONPath: "status.json",
	})
	require.NoError(t, err)

	b, err := afero.ReadFile(fs, "/report.md")
	require.NoError(t, err)
	md := string(b)
	assert.Contains(t, md, "**Checked**: 3")
	assert.Contains(t, md, "**Failed**: 2")
	assert.Contains(t, md, "`https://bad.invalid`")
	assert.Contains(t, md, "status 404")
	assert.NotContains(t, md, "| `https://example.com` |")
	assert.Less(t, strings.Index(md, "bad.invalid"), strings.Index(md, "example.com/missing"))
}

func TestWriteMarkdownAllGreen(t *testing.T) {
	fs := afero.NewMemMapFs()
	err := NewWriter(fs).WriteMarkdown("/report.md", sampleResults()[:1], Summary{})
	require.NoError(t, err)
	b, _ := afero.ReadFile(fs, "/report.md")
	assert.Contains(t, string(b), "All URLs responded")
}
