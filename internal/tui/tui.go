// internal/tui/tui.go
// Package: tui

// Package tui renders a benchmark run live in the terminal. The runner runs
// on its own goroutine and its events reach the bubbletea loop through
// Program.Send.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mwiater/gollamabench/internal/harness"
)

const recentCells = 8

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1).
			Background(lipgloss.Color("62")).Foreground(lipgloss.Color("230"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type runStartedMsg struct{ report harness.Report }

type cellStartedMsg struct{ cell harness.Cell }

type tokenMsg struct {
	cell     harness.Cell
	fragment string
}

type cellFinishedMsg struct {
	cell   harness.Cell
	result harness.Result
}

type runFinishedMsg struct{ report *harness.Report }

// runErrMsg reports a run that was rejected before it started.
type runErrMsg struct{ err error }

type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// sender is the part of *tea.Program the observer needs.
type sender interface {
	Send(msg tea.Msg)
}

// observer turns runner events into tea messages.
type observer struct {
	p sender
}

func (o observer) RunStarted(r harness.Report) { o.p.Send(runStartedMsg{report: r}) }
func (o observer) CellStarted(c harness.Cell)  { o.p.Send(cellStartedMsg{cell: c}) }
func (o observer) Token(c harness.Cell, s string) {
	o.p.Send(tokenMsg{cell: c, fragment: s})
}
func (o observer) CellFinished(c harness.Cell, res harness.Result) {
	o.p.Send(cellFinishedMsg{cell: c, result: res})
}
func (o observer) RunFinished(r *harness.Report) { o.p.Send(runFinishedMsg{report: r}) }

type model struct {
	label  string
	judge  string
	models []string

	cancel     func() bool
	cancelling bool
	quitOnDone bool
	finished   bool
	report     *harness.Report
	err        error

	started  time.Time
	now      func() time.Time
	cell     *harness.Cell
	cellFrom time.Time
	response strings.Builder
	done     []string
	failures int

	spinner  spinner.Model
	viewport viewport.Model
	width    int
	height   int
}

func newModel(req harness.RunRequest, cancel func() bool) *model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = statusStyle
	return &model{
		label:   req.Label,
		models:  req.Models,
		cancel:  cancel,
		now:     time.Now,
		spinner: s,
	}
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tickCmd())
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		h := msg.Height - 8 - min(len(m.done), recentCells)
		if h < 3 {
			h = 3
		}
		if m.viewport.Width == 0 {
			m.viewport = viewport.New(msg.Width, h)
		} else {
			m.viewport.Width, m.viewport.Height = msg.Width, h
		}
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "c":
			m.requestCancel()
			return m, nil
		case "q":
			if m.finished {
				return m, tea.Quit
			}
			return m, nil
		case "ctrl+c":
			if m.finished {
				return m, tea.Quit
			}
			m.requestCancel()
			m.quitOnDone = true
			return m, nil
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case runStartedMsg:
		m.label = msg.report.Label
		m.judge = msg.report.Judge
		m.models = msg.report.Models
		m.started = msg.report.StartedAt
		return m, nil

	case cellStartedMsg:
		c := msg.cell
		m.cell = &c
		m.cellFrom = m.now()
		m.response.Reset()
		m.refresh()
		return m, nil

	case tokenMsg:
		if m.cell != nil && msg.cell.Index == m.cell.Index {
			m.response.WriteString(msg.fragment)
			m.refresh()
		}
		return m, nil

	case cellFinishedMsg:
		m.done = append(m.done, cellLine(msg.cell, msg.result))
		if !msg.result.Succeeded {
			m.failures++
		}
		return m, nil

	case runFinishedMsg:
		m.finished = true
		m.report = msg.report
		m.cell = nil
		m.refresh()
		if m.quitOnDone {
			return m, tea.Quit
		}
		return m, nil

	case runErrMsg:
		m.finished = true
		m.err = msg.err
		m.cell = nil
		if m.quitOnDone {
			return m, tea.Quit
		}
		return m, nil

	case tickMsg:
		if m.finished {
			return m, nil
		}
		return m, tickCmd()

	case spinner.TickMsg:
		if m.finished {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *model) requestCancel() {
	if m.finished || m.cancelling {
		return
	}
	if m.cancel != nil && m.cancel() {
		m.cancelling = true
	}
}

// refresh rebuilds the viewport body: the streaming answer while a cell runs,
// the summary once the run is over.
func (m *model) refresh() {
	if m.viewport.Width == 0 {
		return
	}
	if m.finished && m.report != nil {
		m.viewport.SetContent(m.report.Summary.Render())
		m.viewport.GotoTop()
		return
	}
	m.viewport.SetContent(lipgloss.NewStyle().Width(m.viewport.Width).Render(m.response.String()))
	m.viewport.GotoBottom()
}

func cellLine(c harness.Cell, r harness.Result) string {
	mark := okStyle.Render("ok")
	detail := fmt.Sprintf("first %.2fs, total %.2fs, %d chars", r.FirstTokenLatency, r.TotalLatency, r.ResponseChars)
	if !r.Succeeded {
		mark = errorStyle.Render("FAILED")
		detail = fmt.Sprintf("%s: %s", r.ErrorKind, r.Error)
	}
	if r.Judge != nil {
		detail += fmt.Sprintf(", rating %d/5", r.Judge.Rating)
	}
	return fmt.Sprintf("[%d/%d] %s %s x %s (%s)", c.Index+1, c.Total, mark, c.Test.Name, c.Model, detail)
}

func (m *model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}
	var b strings.Builder

	judge := "inactive"
	if m.judge != "" {
		judge = m.judge
	}
	b.WriteString(headerStyle.Render(fmt.Sprintf("Benchmark: %s", m.label)))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Models: %s | Judge: %s", strings.Join(m.models, ", "), judge)
	if !m.finished && !m.started.IsZero() {
		fmt.Fprintf(&b, " | Elapsed: %s", m.now().Sub(m.started).Round(time.Second))
	}
	b.WriteString("\n")

	switch {
	case m.finished && m.err != nil:
		b.WriteString(errorStyle.Render("Error: "+m.err.Error()) + "\n")
	case m.finished && m.report != nil:
		status := fmt.Sprintf("Run %s: %d results", m.report.State, len(m.report.Results))
		if m.report.Error != "" {
			b.WriteString(errorStyle.Render(status+" - "+m.report.Error) + "\n")
		} else {
			b.WriteString(okStyle.Render(status) + "\n")
		}
		if m.report.Files.Transcript != "" {
			fmt.Fprintf(&b, "Transcript: %s\n", m.report.Files.Transcript)
		}
	case m.cell != nil:
		elapsed := m.now().Sub(m.cellFrom).Round(time.Second)
		fmt.Fprintf(&b, "%s Cell %d/%d: %s x %s (%s)\n",
			m.spinner.View(), m.cell.Index+1, m.cell.Total, m.cell.Test.Name, m.cell.Model, elapsed)
	default:
		fmt.Fprintf(&b, "%s Starting...\n", m.spinner.View())
	}

	start := max(0, len(m.done)-recentCells)
	for _, line := range m.done[start:] {
		b.WriteString(line + "\n")
	}
	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	var help string
	switch {
	case m.finished:
		help = "q: quit"
	case m.cancelling:
		help = "cancelling after the current cell..."
	default:
		help = "c: cancel after current cell | ctrl+c: cancel and quit | arrows: scroll"
	}
	if m.failures > 0 {
		help += fmt.Sprintf(" | %d failed", m.failures)
	}
	b.WriteString(helpStyle.Render(help))
	return b.String()
}

// Run starts req on runner and shows it until the user quits. The runner's
// report and error are returned once both the run and the UI have ended.
func Run(ctx context.Context, runner *harness.Runner, req harness.RunRequest) (*harness.Report, error) {
	m := newModel(req, runner.Cancel)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	req.Observer = observer{p: p}

	type outcome struct {
		report *harness.Report
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		rep, err := runner.Run(ctx, req)
		if rep == nil && err != nil {
			p.Send(runErrMsg{err: err})
		}
		done <- outcome{rep, err}
	}()

	if _, err := p.Run(); err != nil {
		runner.Cancel()
		out := <-done
		if out.err != nil {
			return out.report, out.err
		}
		return out.report, fmt.Errorf("tui: %w", err)
	}
	out := <-done
	return out.report, out.err
}
