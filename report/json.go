// Package report serializes check results into the status report and reads
// it back.
package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/amartya2002/status-checker/statuscheck"
)

// TimestampLayout is the textual form of Record.Timestamp.
const TimestampLayout = time.RFC3339Nano

// Record is one entry of the JSON report.
type Record struct {
	URL          string       `json:"url"`
	ActionStatus ActionStatus `json:"action_status"`
	ResponseTime int64        `json:"response_time"` // milliseconds
	Timestamp    string       `json:"timestamp"`
}

// ActionStatus is encoded as a JSON number for a success and as a string
// holding the failure message otherwise.
type ActionStatus struct {
	Code    int
	Message string
}

func (a ActionStatus) OK() bool { return a.Message == "" }

func (a ActionStatus) MarshalJSON() ([]byte, error) {
	if a.OK() {
		return []byte(strconv.Itoa(a.Code)), nil
	}
	return json.Marshal(a.Message)
}

func (a *ActionStatus) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		*a = ActionStatus{}
		return json.Unmarshal(b, &a.Message)
	}
	var code int
	if err := json.Unmarshal(b, &code); err != nil {
		return fmt.Errorf("action_status: %w", err)
	}
	*a = ActionStatus{Code: code}
	return nil
}

// FromResults converts results into records, keeping their order.
func FromResults(results []statuscheck.CheckResult) []Record {
	records := make([]Record, 0, len(results))
	for _, r := range results {
		status := ActionStatus{Code: r.Outcome.StatusCode}
		if !r.Outcome.Success {
			status = ActionStatus{Message: failureMessage(r.Outcome)}
		}
		records = append(records, Record{
			URL:          r.URL,
			ActionStatus: status,
			ResponseTime: r.Elapsed.Milliseconds(),
			Timestamp:    r.CompletedAt.Format(TimestampLayout),
		})
	}
	return records
}

// failureMessage never returns "": an empty message would encode as a
// success.
func failureMessage(o statuscheck.Outcome) string {
	switch {
	case o.Message != "":
		return o.Message
	case o.StatusCode != 0:
		return fmt.Sprintf("status %d", o.StatusCode)
	default:
		return "check failed"
	}
}

// Writer writes reports through an afero filesystem.
type Writer struct {
	fs afero.Fs
}

// NewWriter returns a Writer on fs, or on the OS filesystem when fs is nil.
func NewWriter(fs afero.Fs) *Writer {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Writer{fs: fs}
}

// Write serializes results to path in one piece. The document is written to
// a temporary sibling first and renamed over path, so readers never observe
// a partial report.
func (w *Writer) Write(path string, results []statuscheck.CheckResult) error {
	return w.WriteRecords(path, FromResults(results))
}

func (w *Writer) WriteRecords(path string, records []Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	data = append(data, '\n')
	return w.writeAtomic(path, data)
}

// defaultMode applies to a report that does not exist yet; the process umask
// still trims it on creation.
const defaultMode os.FileMode = 0o644

func (w *Writer) writeAtomic(path string, data []byte) error {
	mode, keep, err := w.targetMode(path)
	if err != nil {
		return err
	}
	tmpName := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+"."+uuid.NewString()+".tmp")
	tmp, err := w.fs.OpenFile(tmpName, os.O_RDWR|os.O_CREATE|os.O_EXCL, mode)
	if err != nil {
		return fmt.Errorf("create temp report: %w", err)
	}
	cleanup := func() { _ = w.fs.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write report: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("sync report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close report: %w", err)
	}
	if keep {
		if err := w.fs.Chmod(tmpName, mode); err != nil {
			cleanup()
			return fmt.Errorf("chmod report: %w", err)
		}
	}
	if err := w.fs.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("rename report into place: %w", err)
	}
	return nil
}

// targetMode reports the permissions of an existing report at path, so an
// overwrite keeps them. keep is false when path does not exist yet.
func (w *Writer) targetMode(path string) (mode os.FileMode, keep bool, err error) {
	info, err := w.fs.Stat(path)
	switch {
	case err == nil:
		return info.Mode().Perm(), true, nil
	case errors.Is(err, os.ErrNotExist):
		return defaultMode, false, nil
	default:
		return 0, false, fmt.Errorf("stat report: %w", err)
	}
}

// Read parses a report written by Write.
func (w *Writer) Read(path string) ([]Record, error) {
	data, err := afero.ReadFile(w.fs, path)
	if err != nil {
		return nil, err
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode report %s: %w", path, err)
	}
	return records, nil
}

// Write stores results at path on the OS filesystem.
func Write(path string, results []statuscheck.CheckResult) error {
	return NewWriter(nil).Write(path, results)
}

// Read loads a report from the OS filesystem.
func Read(path string) ([]Record, error) {
	return NewWriter(nil).Read(path)
}
