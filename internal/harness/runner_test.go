package harness

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwiater/gollamabench/internal/catalog"
	"github.com/mwiater/gollamabench/internal/judge"
	"github.com/mwiater/gollamabench/internal/ollama"
)

type fakeGen struct {
	mu    sync.Mutex
	calls []string
	fn    func(req ollama.GenerateRequest, onToken func(string)) (*ollama.Generation, error)
}

func (f *fakeGen) Generate(_ context.Context, req ollama.GenerateRequest, onToken func(string)) (*ollama.Generation, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req.Prompt+"/"+req.Model)
	f.mu.Unlock()
	if f.fn != nil {
		return f.fn(req, onToken)
	}
	return answer(req, "answer from "+req.Model, onToken), nil
}

func (f *fakeGen) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func answer(req ollama.GenerateRequest, text string, onToken func(string)) *ollama.Generation {
	for _, w := range strings.SplitAfter(text, " ") {
		if onToken != nil {
			onToken(w)
		}
	}
	return &ollama.Generation{
		Model:             req.Model,
		Text:              text,
		FirstTokenLatency: 100 * time.Millisecond,
		TotalLatency:      time.Second,
		Chars:             len([]rune(text)),
		EvalCount:         20,
		EvalDuration:      500 * time.Millisecond,
	}
}

type fakeJudge struct {
	mu     sync.Mutex
	calls  int
	rating func(candidate string) int
}

func (j *fakeJudge) Evaluate(_ context.Context, candidate, _ string) judge.Verdict {
	j.mu.Lock()
	j.calls++
	j.mu.Unlock()
	r := j.rating(candidate)
	just := "fine"
	if r == 0 {
		just = judge.NoJustification
	}
	return judge.Verdict{Model: "fake-judge", Rating: r, Justification: just}
}

func (j *fakeJudge) Model() string { return "fake-judge" }

type recorder struct {
	NopObserver
	mu     sync.Mutex
	events []string
	onCell func(c Cell)
}

func (r *recorder) add(s string) {
	r.mu.Lock()
	r.events = append(r.events, s)
	r.mu.Unlock()
}

func (r *recorder) RunStarted(rep Report) { r.add("start " + rep.Label) }
func (r *recorder) CellStarted(c Cell) { r.add(fmt.Sprintf("cell %d/%d %s", c.Index, c.Total, c.Model)) }
func (r *recorder) Token(c Cell, s string) { r.add("token " + s) }
func (r *recorder) CellFinished(c Cell, res Result) {
	r.add("done " + res.Model)
	if r.onCell != nil {
		r.onCell(c)
	}
}
func (r *recorder) RunFinished(rep *Report) { r.add("finished " + string(rep.State)) }

func (r *recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

// clock returns a Now func that advances a second per call.
func clock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

func newTestRunner(t *testing.T, gen Generator, j Judge) (*Runner, *[]time.Duration) {
	t.Helper()
	r := NewRunner(gen, j, Options{
		Delay:     2 * time.Second,
		OutputDir: t.TempDir(),
		Now:       clock(),
	})
	var sleeps []time.Duration
	r.sleep = func(_ context.Context, d time.Duration, _ <-chan struct{}) { sleeps = append(sleeps, d) }
	return r, &sleeps
}

func tests3() []catalog.Test {
	return []catalog.Test{
		{Name: "T1", Prompt: "p1", Options: map[string]any{"temperature": 0.1}},
		{Name: "T2", Prompt: "p2"},
		{Name: "T3", Prompt: "p3"},
	}
}

var cellHeader = regexp.MustCompile(`(?m)^Test: (\S+)\nModel: (\S+)$`)

func cellOrder(t *testing.T, path string) []string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	var out []string
	for _, m := range cellHeader.FindAllStringSubmatch(string(b), -1) {
		out = append(out, m[1]+"/"+m[2])
	}
	return out
}

func TestRun_RowMajorOrderIncludingFailures(t *testing.T) {
	gen := &fakeGen{fn: func(req ollama.GenerateRequest, onToken func(string)) (*ollama.Generation, error) {
		if req.Model == "b" && req.Prompt == "p2" {
			g := answer(req, "partial", onToken)
			return g, &ollama.Error{Kind: ollama.KindTimeout, Model: req.Model, Err: context.DeadlineExceeded}
		}
		return answer(req, "ok "+req.Model, onToken), nil
	}}
	r, sleeps := newTestRunner(t, gen, nil)

	rep, err := r.Run(context.Background(), RunRequest{Label: "quick", Models: []string{"a", "b"}, Tests: tests3()})
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, rep.State)
	assert.Equal(t, StateCompleted, r.State())

	want := []string{"T1/a", "T1/b", "T2/a", "T2/b", "T3/a", "T3/b"}
	assert.Equal(t, []string{"p1/a", "p1/b", "p2/a", "p2/b", "p3/a", "p3/b"}, gen.Calls())
	assert.Equal(t, want, cellOrder(t, rep.Files.Transcript))

	require.Len(t, rep.Results, 6)
	failed := rep.Results[3]
	assert.False(t, failed.Succeeded)
	assert.Equal(t, "timeout", failed.ErrorKind)
	assert.Equal(t, "partial", failed.Response)
	assert.Equal(t, 40.0, rep.Results[0].TokensPerSecond)

	assert.Len(t, *sleeps, 5, "pause between cells, not after the last")
	for _, d := range *sleeps {
		assert.Equal(t, 2*time.Second, d)
	}

	b, err := os.ReadFile(rep.Files.Transcript)
	require.NoError(t, err)
	text := string(b)
	assert.True(t, strings.HasPrefix(text, "Benchmark: quick - 2025-03-01 12:00:01\n"))
	assert.Contains(t, text, "Run ID: "+rep.RunID)
	assert.Contains(t, text, "Judge: inactive")
	assert.Contains(t, text, "Status: FAILED (timeout)")
	assert.Contains(t, text, "- First token: 0.10s\n- Total time: 1.00s\n- Response length: 4 chars\n")
	assert.Equal(t, 1, strings.Count(text, "SUMMARY"))
	assert.NotContains(t, text, "Judge rating")
}

func TestRun_ForwardsTokensAndEvents(t *testing.T) {
	gen := &fakeGen{}
	r, _ := newTestRunner(t, gen, nil)
	rec := &recorder{}

	_, err := r.Run(context.Background(), RunRequest{
		Label:    "custom",
		Models:   []string{"m"},
		Tests:    []catalog.Test{{Name: "Q", Prompt: "q"}},
		Observer: rec,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"start custom",
		"cell 0/1 m",
		"token answer ",
		"token from ",
		"token m",
		"done m",
		"finished completed",
	}, rec.Events())
}

func TestRun_SystemPromptAndOptions(t *testing.T) {
	var got []ollama.GenerateRequest
	gen := &fakeGen{fn: func(req ollama.GenerateRequest, onToken func(string)) (*ollama.Generation, error) {
		got = append(got, req)
		return answer(req, "x", onToken), nil
	}}
	r, _ := newTestRunner(t, gen, nil)

	rep, err := r.Run(context.Background(), RunRequest{
		Label:        "quick",
		Models:       []string{"m"},
		Tests:        tests3()[:1],
		SystemPrompt: "Answer in one word.",
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Answer in one word.", got[0].System)
	assert.True(t, got[0].Stream)
	assert.Equal(t, 0.1, got[0].Options["temperature"])

	b, err := os.ReadFile(rep.Files.Transcript)
	require.NoError(t, err)
	assert.Contains(t, string(b), "System prompt: Answer in one word.\n")
	assert.Contains(t, string(b), "System: Answer in one word.\n")
}

func TestRun_NilGenerationIsSkipped(t *testing.T) {
	gen := &fakeGen{fn: func(req ollama.GenerateRequest, onToken func(string)) (*ollama.Generation, error) {
		if req.Model == "ghost" {
			return nil, ollama.ErrEmptyModel
		}
		return answer(req, "fine", onToken), nil
	}}
	r, _ := newTestRunner(t, gen, nil)

	rep, err := r.Run(context.Background(), RunRequest{Label: "quick", Models: []string{"a", "ghost"}, Tests: tests3()[:2]})
	require.NoError(t, err)
	assert.Len(t, rep.Results, 2)
	assert.Equal(t, []string{"T1/a", "T2/a"}, cellOrder(t, rep.Files.Transcript))
}

func TestRun_CancelAtCellBoundary(t *testing.T) {
	for _, k := range []int{1, 2, 4} {
		t.Run(fmt.Sprintf("after %d", k), func(t *testing.T) {
			gen := &fakeGen{}
			r, _ := newTestRunner(t, gen, nil)
			rec := &recorder{}
			rec.onCell = func(c Cell) {
				if c.Index == k-1 {
					assert.True(t, r.Cancel())
				}
			}

			rep, err := r.Run(context.Background(), RunRequest{
				Label:    "quick",
				Models:   []string{"a", "b"},
				Tests:    tests3(),
				Observer: rec,
			})
			require.NoError(t, err)
			assert.Equal(t, StateCancelled, rep.State)
			assert.Len(t, rep.Results, k)
			assert.Len(t, gen.Calls(), k, "cell k+1 must never start")
			assert.Len(t, cellOrder(t, rep.Files.Transcript), k)

			require.NotEmpty(t, rep.Summary.Models)
			assert.FileExists(t, rep.Files.JSON)
			assert.FileExists(t, rep.Files.CSV)
			assert.False(t, r.Cancel(), "nothing to cancel once the run is over")
		})
	}
}

func TestRun_CancelCutsPauseShort(t *testing.T) {
	gen := &fakeGen{}
	r := NewRunner(gen, nil, Options{Delay: time.Hour, OutputDir: t.TempDir()})
	var once sync.Once
	rec := &recorder{onCell: func(Cell) {
		once.Do(func() {
			// lands while the runner is in its inter-cell pause
			go func() {
				time.Sleep(50 * time.Millisecond)
				r.Cancel()
			}()
		})
	}}

	done := make(chan State, 1)
	go func() {
		rep, _ := r.Run(context.Background(), RunRequest{Label: "quick", Models: []string{"a", "b"}, Tests: tests3(), Observer: rec})
		done <- rep.State
	}()

	select {
	case st := <-done:
		assert.Equal(t, StateCancelled, st)
	case <-time.After(5 * time.Second):
		t.Fatal("runner kept sleeping after Cancel")
	}
	assert.Len(t, gen.Calls(), 1)
}

func TestRun_ContextCancelStopsRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	gen := &fakeGen{fn: func(req ollama.GenerateRequest, onToken func(string)) (*ollama.Generation, error) {
		cancel()
		return answer(req, "x", onToken), nil
	}}
	r, _ := newTestRunner(t, gen, nil)

	rep, err := r.Run(ctx, RunRequest{Label: "quick", Models: []string{"a", "b"}, Tests: tests3()})
	require.NoError(t, err)
	assert.Equal(t, StateCancelled, rep.State)
	assert.Len(t, rep.Results, 1)
}

func TestRun_RejectsSecondRunWhileRunning(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	gen := &fakeGen{fn: func(req ollama.GenerateRequest, onToken func(string)) (*ollama.Generation, error) {
		once.Do(func() { close(started) })
		<-release
		return answer(req, "x", onToken), nil
	}}
	r, _ := newTestRunner(t, gen, nil)
	req := RunRequest{Label: "quick", Models: []string{"a"}, Tests: tests3()[:1]}

	errc := make(chan error, 1)
	go func() {
		_, err := r.Run(context.Background(), req)
		errc <- err
	}()
	<-started

	assert.Equal(t, StateRunning, r.State())
	_, err := r.Run(context.Background(), req)
	assert.ErrorIs(t, err, ErrRunInProgress)

	close(release)
	require.NoError(t, <-errc)
	assert.Equal(t, StateCompleted, r.State())

	rep, err := r.Run(context.Background(), req)
	require.NoError(t, err, "a finished runner accepts a new run")
	assert.Equal(t, StateCompleted, rep.State)
}

func TestRun_Validation(t *testing.T) {
	r, _ := newTestRunner(t, &fakeGen{}, nil)
	_, err := r.Run(context.Background(), RunRequest{Tests: tests3()})
	assert.ErrorIs(t, err, ErrNoModels)
	_, err = r.Run(context.Background(), RunRequest{Models: []string{"a"}})
	assert.ErrorIs(t, err, ErrNoTests)
	assert.Equal(t, StateIdle, r.State())
}

func TestRun_TwoModelJudgeScenario(t *testing.T) {
	gen := &fakeGen{}
	j := &fakeJudge{rating: func(candidate string) int {
		if strings.HasSuffix(candidate, " a") {
			return 5
		}
		return 0
	}}
	r, _ := newTestRunner(t, gen, j)

	rep, err := r.Run(context.Background(), RunRequest{
		Label:    "quick",
		Models:   []string{"a", "b"},
		Tests:    tests3()[:1],
		UseJudge: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "fake-judge", rep.Judge)

	s := rep.Summary
	require.Len(t, s.Models, 2)
	assert.Equal(t, "5.00", s.Models[0].RatingText())
	assert.Equal(t, "N/A", s.Models[1].RatingText())
	require.Len(t, s.Quality, 1)
	assert.Equal(t, Ranked{Model: "a", Value: 5}, s.Quality[0])
	assert.Len(t, s.Speed, 2)

	b, err := os.ReadFile(rep.Files.Transcript)
	require.NoError(t, err)
	text := string(b)
	assert.Contains(t, text, "Judge: fake-judge (active)")
	assert.Contains(t, text, "Judge rating (fake-judge): 5/5\nJudge justification: fine\n")
	assert.Contains(t, text, "Judge rating (fake-judge): 0/5")
}

func TestRun_JudgeSkippedForFailuresAndWhenOff(t *testing.T) {
	gen := &fakeGen{fn: func(req ollama.GenerateRequest, onToken func(string)) (*ollama.Generation, error) {
		if req.Model == "bad" {
			return &ollama.Generation{Model: req.Model}, &ollama.Error{Kind: ollama.KindConnection, Model: req.Model, Err: errors.New("refused")}
		}
		return answer(req, "x", onToken), nil
	}}
	j := &fakeJudge{rating: func(string) int { return 4 }}
	r, _ := newTestRunner(t, gen, j)

	rep, err := r.Run(context.Background(), RunRequest{Label: "quick", Models: []string{"good", "bad"}, Tests: tests3()[:1], UseJudge: true})
	require.NoError(t, err)
	assert.NotNil(t, rep.Results[0].Judge)
	assert.Nil(t, rep.Results[1].Judge)
	assert.Equal(t, "connection", rep.Results[1].ErrorKind)
	assert.Equal(t, 1, j.calls)

	rep, err = r.Run(context.Background(), RunRequest{Label: "quick", Models: []string{"good"}, Tests: tests3()[:1]})
	require.NoError(t, err)
	assert.Nil(t, rep.Results[0].Judge)
	assert.Empty(t, rep.Judge)
	assert.Equal(t, 1, j.calls)
}

var structuralLine = regexp.MustCompile(`^(Test|Model|System|Prompt|Response|Response time|- First token|- Total time|- Response length|Status|Judge rating[^:]*|Judge justification):`)

func structure(t *testing.T, path string) []string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	var keys []string
	for _, line := range strings.Split(string(b), "\n") {
		if m := structuralLine.FindStringSubmatch(line); m != nil {
			keys = append(keys, m[1])
		}
	}
	return keys
}

func TestRun_RerunsAreStructurallyIdentical(t *testing.T) {
	n := 0
	gen := &fakeGen{fn: func(req ollama.GenerateRequest, onToken func(string)) (*ollama.Generation, error) {
		n++
		g := answer(req, strings.Repeat("word ", n), onToken)
		g.TotalLatency = time.Duration(n) * time.Second
		return g, nil
	}}
	r, _ := newTestRunner(t, gen, nil)
	req := RunRequest{Label: "quick", Models: []string{"a", "b"}, Tests: tests3()}

	first, err := r.Run(context.Background(), req)
	require.NoError(t, err)
	second, err := r.Run(context.Background(), req)
	require.NoError(t, err)

	require.NotEqual(t, first.Files.Transcript, second.Files.Transcript)
	a, b := structure(t, first.Files.Transcript), structure(t, second.Files.Transcript)
	assert.NotEmpty(t, a)
	assert.Equal(t, a, b)
	assert.NotEqual(t, first.Results[0].Response, second.Results[0].Response)
}

func TestRun_SameLabelSameSecondGetsOwnFiles(t *testing.T) {
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	r := NewRunner(&fakeGen{}, nil, Options{
		OutputDir: t.TempDir(),
		Now:       func() time.Time { return fixed },
	})
	r.sleep = func(context.Context, time.Duration, <-chan struct{}) {}
	req := RunRequest{Label: "english_custom", Models: []string{"a", "b"}, Tests: tests3()[:1]}

	first, err := r.Run(context.Background(), req)
	require.NoError(t, err)
	second, err := r.Run(context.Background(), req)
	require.NoError(t, err)

	assert.NotEqual(t, first.Files.Transcript, second.Files.Transcript)
	assert.NotEqual(t, first.Files.JSON, second.Files.JSON)
	assert.NotEqual(t, first.Files.CSV, second.Files.CSV)

	for _, rep := range []*Report{first, second} {
		b, err := os.ReadFile(rep.Files.Transcript)
		require.NoError(t, err)
		text := string(b)
		assert.Equal(t, 2, strings.Count(text, "\n"+strings.Repeat("=", 80)+"\nTest: "))
		assert.Equal(t, 1, strings.Count(text, "Benchmark: "))
		assert.Equal(t, 1, strings.Count(text, "\nSUMMARY\n"))

		raw, err := os.ReadFile(rep.Files.JSON)
		require.NoError(t, err)
		var decoded Report
		require.NoError(t, json.Unmarshal(raw, &decoded))
		assert.Equal(t, rep.RunID, decoded.RunID)
	}
}

func TestRun_TranscriptFailureFailsRun(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	gen := &fakeGen{}
	r := NewRunner(gen, nil, Options{OutputDir: blocker})
	rep, err := r.Run(context.Background(), RunRequest{Label: "quick", Models: []string{"a"}, Tests: tests3()})
	require.Error(t, err)
	require.NotNil(t, rep)
	assert.Equal(t, StateFailed, rep.State)
	assert.Equal(t, StateFailed, r.State())
	assert.NotEmpty(t, rep.Error)
	assert.Empty(t, gen.Calls())
}

type failingWriter struct{ after int }

func (w *failingWriter) Write(p []byte) (int, error) {
	if w.after <= 0 {
		return 0, errors.New("disk full")
	}
	w.after--
	return len(p), nil
}

func (w *failingWriter) Close() error { return nil }

func TestTranscriptWriteErrorsSurface(t *testing.T) {
	tr := &transcript{w: &failingWriter{after: 1}}
	require.NoError(t, tr.writeHeader(Report{Label: "x"}, ""))
	err := tr.writeCell(Result{Model: "m", TestName: "t"}, "")
	assert.ErrorContains(t, err, "disk full")
}

func TestExports(t *testing.T) {
	gen := &fakeGen{}
	j := &fakeJudge{rating: func(string) int { return 3 }}
	r, _ := newTestRunner(t, gen, j)

	rep, err := r.Run(context.Background(), RunRequest{Label: "comprehensive suite", Models: []string{"a", "b"}, Tests: tests3()[:2], UseJudge: true})
	require.NoError(t, err)
	assert.Equal(t, "comprehensive_suite_20250301_120001_"+rep.RunID[:8]+".txt", filepath.Base(rep.Files.Transcript))

	raw, err := os.ReadFile(rep.Files.JSON)
	require.NoError(t, err)
	var decoded Report
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, rep.RunID, decoded.RunID)
	assert.Equal(t, StateCompleted, decoded.State)
	assert.Len(t, decoded.Results, 4)
	assert.Equal(t, 3, decoded.Results[0].Judge.Rating)
	assert.Len(t, decoded.Summary.Models, 2)

	f, err := os.Open(rep.Files.CSV)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, []string{rep.RunID, "a", "T1"}, rows[1][:3])
	assert.Equal(t, "3", rows[1][14])
}
