// internal/harness/runner.go
// Package: harness
package harness

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mwiater/gollamabench/internal/logging"
	"github.com/mwiater/gollamabench/internal/ollama"
)

var (
	ErrRunInProgress = errors.New("a benchmark run is already in progress")
	ErrNoModels      = errors.New("no models to benchmark")
	ErrNoTests       = errors.New("no tests to run")
)

// Options configures a Runner.
type Options struct {
	Delay     time.Duration      // pause between cells; <= 0 means none
	OutputDir string             // transcript and exports go here
	Log       logrus.FieldLogger // nil discards
	Now       func() time.Time   // nil uses time.Now
}

// Runner executes benchmark runs one at a time. Run blocks; Cancel and State
// are safe to call from any goroutine.
type Runner struct {
	gen       Generator
	judge     Judge
	delay     time.Duration
	outputDir string
	log       logrus.FieldLogger
	now       func() time.Time
	sleep     func(ctx context.Context, d time.Duration, wake <-chan struct{})

	mu     sync.Mutex
	state  State
	wake   chan struct{} // closed by Cancel to cut the inter-cell pause short
	cancel atomic.Bool
}

// NewRunner returns an idle runner. j may be nil, which disables judging.
func NewRunner(gen Generator, j Judge, opts Options) *Runner {
	r := &Runner{
		gen:       gen,
		judge:     j,
		delay:     opts.Delay,
		outputDir: opts.OutputDir,
		log:       opts.Log,
		now:       opts.Now,
		sleep:     sleepOrWake,
		state:     StateIdle,
	}
	if r.log == nil {
		r.log = logging.Discard()
	}
	if r.now == nil {
		r.now = time.Now
	}
	if r.outputDir == "" {
		r.outputDir = "."
	}
	return r
}

// HasJudge reports whether runs can be judged.
func (r *Runner) HasJudge() bool { return r.judge != nil }

// State returns the state of the current or last run.
func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Cancel asks the running run to stop before its next cell. The cell in
// flight is left to finish. It returns false when no run is active.
func (r *Runner) Cancel() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateRunning {
		return false
	}
	if !r.cancel.Swap(true) {
		close(r.wake)
	}
	return true
}

// Run executes req to a terminal state and returns its report. A second Run
// while one is active fails with ErrRunInProgress. When the run ends Failed
// the report still carries the partial results and summary, and the error
// says why.
func (r *Runner) Run(ctx context.Context, req RunRequest) (*Report, error) {
	if len(req.Models) == 0 {
		return nil, ErrNoModels
	}
	if len(req.Tests) == 0 {
		return nil, ErrNoTests
	}
	wake, err := r.begin()
	if err != nil {
		return nil, err
	}

	obs := req.Observer
	if obs == nil {
		obs = NopObserver{}
	}

	started, runID := r.now(), uuid.NewString()
	rep := &Report{
		RunID:     runID,
		Label:     req.Label,
		State:     StateRunning,
		StartedAt: started,
		Models:    slices.Clone(req.Models),
		Results:   []Result{},
		Files:     runFiles(r.outputDir, req.Label, started, runID),
	}
	log := r.log.WithFields(logrus.Fields{"run_id": rep.RunID, "label": rep.Label})

	useJudge := req.UseJudge && r.judge != nil
	if useJudge {
		rep.Judge = r.judge.Model()
	} else if req.UseJudge {
		log.Warn("judging requested but no judge is configured; continuing without it")
	}

	log.WithFields(logrus.Fields{
		"models": len(req.Models),
		"tests":  len(req.Tests),
		"judge":  rep.Judge,
	}).Info("run started")
	obs.RunStarted(*rep)

	state, runErr := r.execute(ctx, req, rep, useJudge, obs, wake, log)
	if state == StateFailed {
		// partial summary over whatever was collected
		rep.Summary = Summarize(rep.Results)
	}
	rep.FinishedAt = r.now()
	rep.State = state

	if state != StateFailed {
		if err := r.export(rep); err != nil {
			state, runErr = StateFailed, err
		}
	}
	rep.State = state
	if runErr != nil {
		rep.Error = runErr.Error()
		log.WithError(runErr).Error("run failed")
	} else {
		log.WithFields(logrus.Fields{
			"state":   state,
			"results": len(rep.Results),
		}).Info("run finished")
	}

	r.mu.Lock()
	r.state = state
	r.mu.Unlock()

	obs.RunFinished(rep)
	return rep, runErr
}

func (r *Runner) begin() (<-chan struct{}, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == StateRunning {
		return nil, ErrRunInProgress
	}
	r.state = StateRunning
	r.cancel.Store(false)
	r.wake = make(chan struct{})
	return r.wake, nil
}

func (r *Runner) cancelRequested(ctx context.Context) bool {
	return r.cancel.Load() || ctx.Err() != nil
}

// execute owns the transcript for the duration of the run.
func (r *Runner) execute(ctx context.Context, req RunRequest, rep *Report, useJudge bool, obs Observer, wake <-chan struct{}, log logrus.FieldLogger) (State, error) {
	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		return StateFailed, fmt.Errorf("could not create output directory: %w", err)
	}
	tr, err := openTranscript(rep.Files.Transcript)
	if err != nil {
		return StateFailed, err
	}
	defer tr.Close()

	if err := tr.writeHeader(*rep, req.SystemPrompt); err != nil {
		return StateFailed, err
	}

	state, err := r.runCells(ctx, req, rep, tr, useJudge, obs, wake, log)
	if state == StateFailed {
		return state, err
	}
	rep.Summary = Summarize(rep.Results)
	if err := tr.writeSummary(rep.Summary); err != nil {
		return StateFailed, err
	}
	return state, nil
}

func (r *Runner) runCells(ctx context.Context, req RunRequest, rep *Report, tr *transcript, useJudge bool, obs Observer, wake <-chan struct{}, log logrus.FieldLogger) (State, error) {
	total := len(req.Tests) * len(req.Models)
	idx := 0
	for _, test := range req.Tests {
		for _, model := range req.Models {
			if idx > 0 && !r.cancelRequested(ctx) {
				r.sleep(ctx, r.delay, wake)
			}
			if r.cancelRequested(ctx) {
				log.WithField("completed_cells", idx).Info("cancellation observed; no further cells will start")
				return StateCancelled, nil
			}

			cell := Cell{Index: idx, Total: total, Test: test, Model: model}
			idx++

			res, ok := r.runCell(ctx, cell, req.SystemPrompt, useJudge, obs, log)
			if !ok {
				continue
			}
			rep.Results = append(rep.Results, res)
			if err := tr.writeCell(res, req.SystemPrompt); err != nil {
				return StateFailed, err
			}
			obs.CellFinished(cell, res)
		}
	}
	return StateCompleted, nil
}

// runCell returns false when the generator produced nothing at all; such a
// cell leaves no record.
func (r *Runner) runCell(ctx context.Context, cell Cell, system string, useJudge bool, obs Observer, log logrus.FieldLogger) (Result, bool) {
	clog := log.WithFields(logrus.Fields{"model": cell.Model, "test": cell.Test.Name})
	obs.CellStarted(cell)

	gen, err := r.gen.Generate(ctx, ollama.GenerateRequest{
		Model:   cell.Model,
		Prompt:  cell.Test.Prompt,
		System:  system,
		Options: cell.Test.Options,
		Stream:  true,
	}, func(fragment string) { obs.Token(cell, fragment) })
	if gen == nil {
		clog.WithError(err).Error("generation returned no result; skipping cell")
		return Result{}, false
	}

	res := newResult(cell, gen, err)
	if err != nil {
		clog.WithError(err).WithField("kind", res.ErrorKind).Warn("generation failed")
	} else {
		clog.WithFields(logrus.Fields{
			"first_token": fmt.Sprintf("%.2fs", res.FirstTokenLatency),
			"total":       fmt.Sprintf("%.2fs", res.TotalLatency),
			"chars":       res.ResponseChars,
		}).Info("cell finished")
	}

	if res.Succeeded && useJudge {
		v := r.judge.Evaluate(ctx, res.Response, cell.Test.Prompt)
		res.Judge = &v
		clog.WithField("rating", v.Rating).Info("judged")
	}
	return res, true
}

func newResult(cell Cell, gen *ollama.Generation, err error) Result {
	res := Result{
		Model:             cell.Model,
		TestName:          cell.Test.Name,
		Category:          cell.Test.Category,
		Prompt:            cell.Test.Prompt,
		Response:          gen.Text,
		FirstTokenLatency: gen.FirstTokenLatency.Seconds(),
		TotalLatency:      gen.TotalLatency.Seconds(),
		ResponseChars:     gen.Chars,
		Succeeded:         err == nil,
		PromptEvalCount:   gen.PromptEvalCount,
		EvalCount:         gen.EvalCount,
	}
	if gen.EvalCount > 0 && gen.EvalDuration > 0 {
		res.TokensPerSecond = float64(gen.EvalCount) / gen.EvalDuration.Seconds()
	}
	if err != nil {
		res.Error = err.Error()
		res.ErrorKind = string(ollama.KindOf(err))
		if res.ErrorKind == "" {
			res.ErrorKind = "error"
		}
	}
	return res
}

func (r *Runner) export(rep *Report) error {
	if err := WriteJSON(rep.Files.JSON, rep); err != nil {
		return err
	}
	return WriteCSV(rep.Files.CSV, rep)
}

func sleepOrWake(ctx context.Context, d time.Duration, wake <-chan struct{}) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-wake:
	case <-t.C:
	}
}
