// internal/harness/transcript.go
// Package: harness
package harness

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

const (
	headerRule = 100
	cellRule   = 80
)

// transcript is the append-only text log of a run. Each block is written
// with a single call as soon as it is complete, so an interrupted run still
// leaves a readable file.
type transcript struct {
	w io.WriteCloser
}

func openTranscript(path string) (*transcript, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("could not open transcript: %w", err)
	}
	return &transcript{w: f}, nil
}

func (t *transcript) write(s string) error {
	if _, err := io.WriteString(t.w, s); err != nil {
		return fmt.Errorf("could not write transcript: %w", err)
	}
	return nil
}

func (t *transcript) Close() error { return t.w.Close() }

func (t *transcript) writeHeader(rep Report, system string) error {
	return t.write(renderHeader(rep, system))
}

func (t *transcript) writeCell(res Result, system string) error {
	return t.write(renderCell(res, system))
}

func (t *transcript) writeSummary(s Summary) error {
	return t.write(s.Render())
}

func renderHeader(rep Report, system string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Benchmark: %s - %s\n", rep.Label, rep.StartedAt.Format(time.DateTime))
	fmt.Fprintf(&b, "Run ID: %s\n", rep.RunID)
	fmt.Fprintf(&b, "Models: %s\n", strings.Join(rep.Models, ", "))
	if rep.Judge != "" {
		fmt.Fprintf(&b, "Judge: %s (active)\n", rep.Judge)
	} else {
		b.WriteString("Judge: inactive\n")
	}
	if system != "" {
		fmt.Fprintf(&b, "System prompt: %s\n", system)
	}
	b.WriteString(strings.Repeat("=", headerRule) + "\n")
	return b.String()
}

func renderCell(res Result, system string) string {
	var b strings.Builder
	b.WriteString("\n" + strings.Repeat("=", cellRule) + "\n")
	fmt.Fprintf(&b, "Test: %s\n", res.TestName)
	fmt.Fprintf(&b, "Model: %s\n", res.Model)
	if system != "" {
		fmt.Fprintf(&b, "System: %s\n", system)
	}
	fmt.Fprintf(&b, "Prompt: %s\n", res.Prompt)
	b.WriteString("\nResponse:\n")
	b.WriteString(res.Response)
	if !strings.HasSuffix(res.Response, "\n") {
		b.WriteString("\n")
	}

	b.WriteString("\nResponse time:\n")
	fmt.Fprintf(&b, "- First token: %.2fs\n", res.FirstTokenLatency)
	fmt.Fprintf(&b, "- Total time: %.2fs\n", res.TotalLatency)
	fmt.Fprintf(&b, "- Response length: %d chars\n", res.ResponseChars)

	if !res.Succeeded {
		fmt.Fprintf(&b, "Status: FAILED (%s): %s\n", res.ErrorKind, res.Error)
	}
	if res.Judge != nil {
		fmt.Fprintf(&b, "Judge rating (%s): %d/5\n", res.Judge.Model, res.Judge.Rating)
		fmt.Fprintf(&b, "Judge justification: %s\n", res.Judge.Justification)
	}
	return b.String()
}
