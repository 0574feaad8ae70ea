package report

import (
	"bytes"
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"github.com/amartya2002/status-checker/statuscheck"
)

// Summary captures high-level run details for the Markdown report.
type Summary struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Workers    int
	MaxRetries int
	JSONPath   string
}

// WriteMarkdown writes a GitHub-flavored summary of a run to path. Failures
// are listed in URL order.
func (w *Writer) WriteMarkdown(path string, results []statuscheck.CheckResult, s Summary) error {
	counts := statuscheck.Summarize(results)

	var buf bytes.Buffer
	buf.WriteString("## Website Status Report\n\n")
	buf.WriteString(fmt.Sprintf("- **Started**: %s\n", s.StartedAt.Format("2006-01-02 15:04:05 MST")))
	buf.WriteString(fmt.Sprintf("- **Finished**: %s\n", s.FinishedAt.Format("2006-01-02 15:04:05 MST")))
	buf.WriteString(fmt.Sprintf("- **Duration**: %s\n", s.FinishedAt.Sub(s.StartedAt).Round(time.Millisecond)))
	buf.WriteString(fmt.Sprintf("- **Checked**: %d  •  **OK**: %d  •  **Failed**: %d\n", counts.Total, counts.OK, counts.Failed))
	buf.WriteString(fmt.Sprintf("- **Workers**: %d  •  **Max retries**: %d\n", s.Workers, s.MaxRetries))
	if s.JSONPath != "" {
		buf.WriteString(fmt.Sprintf("- **JSON**: %s\n", escapeMD(s.JSONPath)))
	}
	buf.WriteString("\n")

	var failed []statuscheck.CheckResult
	for _, r := range results {
		if !r.Outcome.Success {
			failed = append(failed, r)
		}
	}
	if len(failed) == 0 {
		buf.WriteString("All URLs responded with a 2xx status.\n")
		return w.writeAtomic(path, buf.Bytes())
	}
	sort.SliceStable(failed, func(i, j int) bool { return failed[i].URL < failed[j].URL })

	buf.WriteString("### Failures\n\n")
	buf.WriteString("| URL | Result | Attempts | Time (ms) |\n")
	buf.WriteString("|---|---|---|---|\n")
	for _, r := range failed {
		buf.WriteString(fmt.Sprintf("| `%s` | %s | %d | %d |\n",
			escapeMD(r.URL), escapeCell(r.Outcome.Message), r.Attempts, r.Elapsed.Milliseconds()))
	}
	return w.writeAtomic(path, buf.Bytes())
}

func escapeMD(s string) string {
	// Basic HTML escape to be safe in GitHub Markdown table cells
	return html.EscapeString(s)
}

func escapeCell(s string) string {
	return strings.ReplaceAll(escapeMD(s), "|", "\\|")
}
