// cmd/gollamabench/console.go
package gollamabench

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/schollz/progressbar/v3"

	"github.com/mwiater/gollamabench/internal/harness"
)

type canceller interface {
	Cancel() bool
}

// runConsole runs req with output on out. The first interrupt asks the runner
// to stop after the cell in flight; a second one cancels that cell too.
func runConsole(ctx context.Context, r *harness.Runner, req harness.RunRequest, out io.Writer, quiet bool) (*harness.Report, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigs := make(chan os.Signal, 2)
	signal.Notify(sigs, os.Interrupt)
	defer signal.Stop(sigs)
	go watchInterrupts(ctx, sigs, r, cancel, out)

	req.Observer = newConsoleObserver(out, quiet)
	return r.Run(ctx, req)
}

func watchInterrupts(ctx context.Context, sigs <-chan os.Signal, r canceller, cancel context.CancelFunc, out io.Writer) {
	seen := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-sigs:
			seen++
			if seen == 1 {
				if r.Cancel() {
					fmt.Fprintln(out, "\nCancelling after the current cell. Press Ctrl+C again to abort it.")
				}
				continue
			}
			fmt.Fprintln(out, "\nAborting.")
			cancel()
			return
		}
	}
}

// consoleObserver streams answers to the terminal, or drives a progress bar
// in quiet mode.
type consoleObserver struct {
	out   io.Writer
	quiet bool
	bar   *progressbar.ProgressBar
}

func newConsoleObserver(out io.Writer, quiet bool) *consoleObserver {
	return &consoleObserver{out: out, quiet: quiet}
}

func (o *consoleObserver) RunStarted(r harness.Report) {
	judge := "inactive"
	if r.Judge != "" {
		judge = r.Judge + " (active)"
	}
	fmt.Fprintf(o.out, "Benchmark: %s\nModels: %s\nJudge: %s\n%s\n",
		r.Label, strings.Join(r.Models, ", "), judge, strings.Repeat("=", 80))
}

func (o *consoleObserver) CellStarted(c harness.Cell) {
	if o.quiet {
		if o.bar == nil {
			o.bar = progressbar.NewOptions(c.Total,
				progressbar.OptionSetWriter(o.out),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetRenderBlankState(true),
			)
		}
		o.bar.Describe(fmt.Sprintf("%s x %s", c.Test.Name, c.Model))
		return
	}
	fmt.Fprintf(o.out, "\n[%d/%d] %s - %s\n", c.Index+1, c.Total, c.Test.Name, c.Model)
}

func (o *consoleObserver) Token(_ harness.Cell, fragment string) {
	if !o.quiet {
		io.WriteString(o.out, fragment)
	}
}

func (o *consoleObserver) CellFinished(_ harness.Cell, res harness.Result) {
	if o.quiet {
		o.bar.Add(1)
		return
	}
	fmt.Fprintf(o.out, "\nFirst token: %.2fs | Total: %.2fs | %d chars\n",
		res.FirstTokenLatency, res.TotalLatency, res.ResponseChars)
	if !res.Succeeded {
		fmt.Fprintf(o.out, "FAILED (%s): %s\n", res.ErrorKind, res.Error)
	}
	if res.Judge != nil {
		fmt.Fprintf(o.out, "Judge rating: %d/5 - %s\n", res.Judge.Rating, res.Judge.Justification)
	}
}

func (o *consoleObserver) RunFinished(r *harness.Report) {
	if o.bar != nil {
		o.bar.Finish()
		fmt.Fprintln(o.out)
	}
	io.WriteString(o.out, r.Summary.Render())
	printOutcome(o.out, r)
}

func printOutcome(out io.Writer, r *harness.Report) {
	if r == nil {
		return
	}
	fmt.Fprintf(out, "\nRun %s with %d results.\n", r.State, len(r.Results))
	if r.Error != "" {
		fmt.Fprintf(out, "Error: %s\n", r.Error)
	}
	if r.State == harness.StateCompleted || r.State == harness.StateCancelled {
		fmt.Fprintf(out, "Transcript: %s\nJSON: %s\nCSV: %s\n", r.Files.Transcript, r.Files.JSON, r.Files.CSV)
	}
}
