// internal/harness/types.go
// Package: harness
package harness

import (
	"context"
	"time"

	"github.com/mwiater/gollamabench/internal/catalog"
	"github.com/mwiater/gollamabench/internal/judge"
	"github.com/mwiater/gollamabench/internal/ollama"
)

// Generator produces one model answer. *ollama.Client satisfies it.
type Generator interface {
	Generate(ctx context.Context, req ollama.GenerateRequest, onToken func(string)) (*ollama.Generation, error)
}

// Judge scores an answer. *judge.Client satisfies it.
type Judge interface {
	Evaluate(ctx context.Context, candidate, originalPrompt string) judge.Verdict
	Model() string
}

// State is the lifecycle of a run.
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateCancelled State = "cancelled"
	StateFailed    State = "failed"
)

// Terminal reports whether s ends a run.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateCancelled || s == StateFailed
}

// RunRequest starts one run over Models x Tests.
type RunRequest struct {
	Label        string         // suite name; used in the transcript title and file names
	Models       []string       // benchmarked in this order for every test
	Tests        []catalog.Test // outer loop order
	UseJudge     bool           // ignored when the runner has no judge
	SystemPrompt string         // optional, sent with every generation
	Observer     Observer       // nil means no events
}

// Cell is one (test, model) pair. Index is 0-based in enumeration order.
type Cell struct {
	Index int
	Total int
	Test  catalog.Test
	Model string
}

// Result is the record kept for one cell. Latencies are in seconds.
type Result struct {
	Model             string         `json:"model"`
	TestName          string         `json:"test_name"`
	Category          string         `json:"category,omitempty"`
	Prompt            string         `json:"prompt"`
	Response          string         `json:"response"`
	FirstTokenLatency float64        `json:"first_token_latency_seconds"`
	TotalLatency      float64        `json:"total_latency_seconds"`
	ResponseChars     int            `json:"response_length_chars"`
	Succeeded         bool           `json:"succeeded"`
	Error             string         `json:"error,omitempty"`
	ErrorKind         string         `json:"error_kind,omitempty"`
	PromptEvalCount   int            `json:"prompt_eval_count"`
	EvalCount         int            `json:"eval_count"`
	TokensPerSecond   float64        `json:"tokens_per_second"` // server eval rate, 0 when unknown
	Judge             *judge.Verdict `json:"judge,omitempty"`   // only for judged, successful cells
}

// Rating returns the judge rating, or 0 when the cell was not judged.
func (r Result) Rating() int {
	if r.Judge == nil {
		return 0
	}
	return r.Judge.Rating
}

// Files are the artifacts of one run.
type Files struct {
	Transcript string `json:"transcript"`
	JSON       string `json:"json"`
	CSV        string `json:"csv"`
}

// Report is what a finished run hands back, and what the JSON export holds.
type Report struct {
	RunID      string    `json:"run_id"`
	Label      string    `json:"label"`
	State      State     `json:"state"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Models     []string  `json:"models"`
	Judge      string    `json:"judge,omitempty"` // judge model, empty when judging was off
	Results    []Result  `json:"results"`
	Summary    Summary   `json:"summary"`
	Files      Files     `json:"files"`
	Error      string    `json:"error,omitempty"` // why the run failed
}

// Observer receives run events on the runner's goroutine. UIs must hand them
// over to their own event loop before touching state.
type Observer interface {
	RunStarted(r Report) // header fields only; Results is empty
	CellStarted(c Cell)
	Token(c Cell, fragment string)
	CellFinished(c Cell, res Result)
	RunFinished(r *Report)
}

// NopObserver ignores every event. Embed it to implement only some methods.
type NopObserver struct{}

func (NopObserver) RunStarted(Report) {}
func (NopObserver) CellStarted(Cell) {}
func (NopObserver) Token(Cell, string) {}
func (NopObserver) CellFinished(Cell, Result) {}
func (NopObserver) RunFinished(*Report) {}
