// Package report serializes matrix rows to CSV and the probe error log,
// and computes the run summary.
package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"

	"github.com/everstacklabs/bedrockscan/internal/catalog"
	"github.com/everstacklabs/bedrockscan/internal/matrix"
	"github.com/everstacklabs/bedrockscan/internal/probe"
)

// Header is the fixed CSV header row.
var Header = []string{"Model", "Service", "Profile_Type", "Invoke_API", "Converse_API", "ChatCompletions_API", "Responses_API"}

// Summary aggregates one run for the console summary block.
type Summary struct {
	Models      int
	Cells       int
	Supported   int
	SuccessRate float64
}

// WriteError reports an unwritable output path.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string { return fmt.Sprintf("writing %s: %v", e.Path, e.Err) }
func (e *WriteError) Unwrap() error { return e.Err }

// Write serializes rows to outputPath and error entries to errorLogPath,
// returning the run summary. Each file is rendered fully in memory and
// written in one pass, so a failed run never leaves a truncated matrix.
func Write(rows []matrix.Row, errs []matrix.ErrorEntry, outputPath, errorLogPath string) (Summary, error) {
	data, err := RenderCSV(rows)
	if err != nil {
		return Summary{}, err
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return Summary{}, &WriteError{Path: outputPath, Err: err}
	}
	if err := os.WriteFile(errorLogPath, RenderErrorLog(errs), 0o644); err != nil {
		return Summary{}, &WriteError{Path: errorLogPath, Err: err}
	}
	return Summarize(rows), nil
}

// RenderCSV produces the byte-exact CSV for a row sequence: the fixed
// header, then one record per row with one marker per API variant.
func RenderCSV(rows []matrix.Row) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(Header); err != nil {
		return nil, fmt.Errorf("rendering matrix: %w", err)
	}
	for _, row := range rows {
		record := make([]string, 0, len(Header))
		record = append(record, row.Model.ID, string(row.Model.Service), string(row.Scope))
		for _, variant := range probe.Variants {
			record = append(record, row.Verdicts[variant].Mark())
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("rendering matrix: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("rendering matrix: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderErrorLog produces the error log: one human-readable line per
// indeterminate probe failure.
func RenderErrorLog(errs []matrix.ErrorEntry) []byte {
	var buf bytes.Buffer
	for _, e := range errs {
		fmt.Fprintf(&buf, "%s %s %s %s: %s\n", e.Model.ID, e.Model.Service, e.Scope, e.Variant, e.Message)
	}
	return buf.Bytes()
}

// Summarize computes the statistics for a row sequence. The success rate is
// supported/cells, or 0 when no cells were probed.
func Summarize(rows []matrix.Row) Summary {
	var s Summary
	seen := make(map[catalog.Model]bool)

	for _, row := range rows {
		seen[row.Model] = true
		for _, verdict := range row.Verdicts {
			s.Cells++
			if verdict == probe.Supported {
				s.Supported++
			}
		}
	}

	s.Models = len(seen)
	if s.Cells > 0 {
		s.SuccessRate = float64(s.Supported) / float64(s.Cells)
	}
	return s
}
