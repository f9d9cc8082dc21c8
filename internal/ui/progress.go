// Package ui renders build progress in the terminal.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"flintc/internal/buildpipeline"
)

// frontShare is the part of the bar owned by the stages shared by all
// targets; lowering fills the rest.
const frontShare = 0.5

// frontWeight is how far the front stages are once stage has finished.
var frontWeight = map[buildpipeline.Stage]float64{
	buildpipeline.StageDecode:  0.25,
	buildpipeline.StageCollect: 0.5,
	buildpipeline.StagePasses:  0.75,
	buildpipeline.StageLayout:  1,
	buildpipeline.StageWrite:   1,
}

var verbs = map[buildpipeline.Stage]string{
	buildpipeline.StageDecode:  "decoding",
	buildpipeline.StageCollect: "collecting",
	buildpipeline.StagePasses:  "rewriting",
	buildpipeline.StageLayout:  "layout",
	buildpipeline.StageLower:   "lowering",
	buildpipeline.StageWrite:   "writing",
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	idleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	busyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	dimStyle   = lipgloss.NewStyle().Faint(true)
)

type progressModel struct {
	title   string
	events  <-chan buildpipeline.Event
	spinner spinner.Model
	bar     progress.Model
	rows    []targetRow
	byName  map[string]*targetRow
	stage   string // verb of the shared stage in progress
	front   float64
	width   int
	done    bool
}

// targetRow is the state of one backend.
type targetRow struct {
	target  string
	status  buildpipeline.Status
	stage   buildpipeline.Stage
	elapsed time.Duration
	err     error
}

func (r *targetRow) label() string {
	if r.status == buildpipeline.StatusWorking {
		return verbs[r.stage]
	}
	return string(r.status)
}

type eventMsg buildpipeline.Event

type closedMsg struct{}

// NewProgressModel returns a Bubble Tea model showing one row per target.
// Events without a target drive the header and the first half of the bar.
func NewProgressModel(title string, targets []string, events <-chan buildpipeline.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = busyStyle
	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 76

	m := &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		bar:     bar,
		rows:    make([]targetRow, len(targets)),
		byName:  make(map[string]*targetRow, len(targets)),
		width:   80,
	}
	for i, t := range targets {
		m.rows[i] = targetRow{target: t, status: buildpipeline.StatusQueued}
		m.byName[t] = &m.rows[i]
	}
	return m
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.next)
}

// next waits for the following pipeline event.
func (m *progressModel) next() tea.Msg {
	ev, ok := <-m.events
	if !ok {
		return closedMsg{}
	}
	return eventMsg(ev)
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		return m, tea.Batch(m.applyEvent(buildpipeline.Event(msg)), m.next)
	case closedMsg:
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.bar.Width = msg.Width - 4
		}
	case spinner.TickMsg:
		if !m.done {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) applyEvent(ev buildpipeline.Event) tea.Cmd {
	if ev.Target == "" {
		if ev.Status == buildpipeline.StatusWorking {
			m.stage = verbs[ev.Stage]
		}
		if ev.Status == buildpipeline.StatusDone {
			m.front = max(m.front, frontWeight[ev.Stage])
		}
		return m.bar.SetPercent(m.percent())
	}
	row, ok := m.byName[ev.Target]
	if !ok {
		return nil
	}
	row.status, row.stage, row.err = ev.Status, ev.Stage, ev.Err
	if ev.Status.Finished() {
		row.elapsed = ev.Elapsed
	}
	return m.bar.SetPercent(m.percent())
}

// percent counts a target being lowered as half done.
func (m *progressModel) percent() float64 {
	if len(m.rows) == 0 {
		return m.front
	}
	var lowered float64
	for i := range m.rows {
		switch {
		case m.rows[i].status.Finished():
			lowered++
		case m.rows[i].status == buildpipeline.StatusWorking:
			lowered += 0.5
		}
	}
	return frontShare*m.front + (1-frontShare)*lowered/float64(len(m.rows))
}

func (m *progressModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.header()))
	b.WriteString("\n\n")
	nameWidth := max(m.width-30, 20)
	for i := range m.rows {
		b.WriteString(m.renderRow(&m.rows[i], nameWidth))
	}
	b.WriteString("\n")
	if m.done {
		b.WriteString(m.bar.ViewAs(1))
	} else {
		b.WriteString(m.bar.View())
	}
	b.WriteString("\n")
	return b.String()
}

func (m *progressModel) header() string {
	h := m.title
	if m.stage != "" {
		h += " (" + m.stage + ")"
	}
	if m.done {
		return "done: " + h
	}
	return m.spinner.View() + " " + h
}

func (m *progressModel) renderRow(r *targetRow, nameWidth int) string {
	style := busyStyle
	switch r.status {
	case buildpipeline.StatusDone, buildpipeline.StatusCached:
		style = okStyle
	case buildpipeline.StatusError:
		style = errStyle
	case buildpipeline.StatusQueued:
		style = idleStyle
	}
	line := fmt.Sprintf("  %s %s", style.Render(fmt.Sprintf("%10s", r.label())), truncate(r.target, nameWidth))
	if r.elapsed > 0 {
		line += dimStyle.Render(fmt.Sprintf("  %s", r.elapsed.Round(100*time.Microsecond)))
	}
	if r.err != nil {
		line += "\n" + errStyle.Render("    "+truncate(r.err.Error(), m.width-4))
	}
	return line + "\n"
}

func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}
