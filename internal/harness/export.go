// internal/harness/export.go
// Package: harness
package harness

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

var csvHeader = []string{
	"run_id", "model", "test_name", "category", "succeeded", "error_kind", "error",
	"first_token_seconds", "total_seconds", "response_chars",
	"prompt_eval_count", "eval_count", "tokens_per_second",
	"judge_model", "judge_rating", "judge_justification",
}

// runFiles names the artifacts <dir>/<label>_<timestamp>_<id>.{txt,json,csv},
// where id is the first eight characters of the run ID. Runs sharing a label
// and a start second never share files.
func runFiles(dir, label string, started time.Time, runID string) Files {
	id := runID
	if len(id) > 8 {
		id = id[:8]
	}
	base := filepath.Join(dir, fileLabel(label)+"_"+started.Format("20060102_150405")+"_"+id)
	return Files{
		Transcript: base + ".txt",
		JSON:       base + ".json",
		CSV:        base + ".csv",
	}
}

func fileLabel(label string) string {
	s := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, strings.TrimSpace(label))
	if s == "" {
		return "benchmark"
	}
	return s
}

// WriteJSON writes the whole report, indented.
func WriteJSON(path string, rep *Report) error {
	b, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("could not encode report: %w", err)
	}
	if err := os.WriteFile(path, append(b, '\n'), 0o644); err != nil {
		return fmt.Errorf("could not write %s: %w", path, err)
	}
	return nil
}

// WriteCSV writes one row per result.
func WriteCSV(path string, rep *Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range rep.Results {
		row := []string{
			rep.RunID,
			r.Model,
			r.TestName,
			r.Category,
			strconv.FormatBool(r.Succeeded),
			r.ErrorKind,
			r.Error,
			strconv.FormatFloat(r.FirstTokenLatency, 'f', 3, 64),
			strconv.FormatFloat(r.TotalLatency, 'f', 3, 64),
			strconv.Itoa(r.ResponseChars),
			strconv.Itoa(r.PromptEvalCount),
			strconv.Itoa(r.EvalCount),
			strconv.FormatFloat(r.TokensPerSecond, 'f', 2, 64),
			"", "", "",
		}
		if r.Judge != nil {
			row[13] = r.Judge.Model
			row[14] = strconv.Itoa(r.Judge.Rating)
			row[15] = r.Judge.Justification
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("could not write %s: %w", path, err)
	}
	return f.Close()
}
