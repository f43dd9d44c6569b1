// Package ui draws the live progress view of `hintbook render`.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"hintbook/internal/pipeline"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	activeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	sessionSteps = []pipeline.Stage{pipeline.StageLoad, pipeline.StageRender, pipeline.StageCache}
)

const statusColumn = 10

// document is the last known state of one chapter.
type document struct {
	path   string
	stage  pipeline.Stage
	status pipeline.Status
	err    error
}

type progressModel struct {
	title   string
	events  <-chan pipeline.Event
	spinner spinner.Model
	bar     progress.Model

	docs   []document
	byPath map[string]int
	steps  map[pipeline.Stage]pipeline.Status // load, render, cache

	width, height int
	failed        bool
	finished      bool
}

type (
	eventMsg  pipeline.Event
	closedMsg struct{}
)

// NewProgressModel returns a Bubble Tea model fed by events. files seeds the
// document list in display order; documents reported later are appended.
// The program quits when events is closed.
func NewProgressModel(title string, files []string, events <-chan pipeline.Event) tea.Model {
	m := &progressModel{
		title:   title,
		events:  events,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(activeStyle)),
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(76)),
		byPath:  make(map[string]int, len(files)),
		steps:   make(map[pipeline.Stage]pipeline.Status, len(sessionSteps)),
		width:   80,
	}
	for _, f := range files {
		m.doc(f)
	}
	return m
}

// doc returns the entry for path, adding a queued one when it is new.
func (m *progressModel) doc(path string) *document {
	i, ok := m.byPath[path]
	if !ok {
		i = len(m.docs)
		m.docs = append(m.docs, document{path: path, stage: pipeline.StageRewrite})
		m.byPath[path] = i
	}
	return &m.docs[i]
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.next())
}

// next waits for one event; the model asks again after handling it.
func (m *progressModel) next() tea.Cmd {
	return func() tea.Msg {
		if ev, ok := <-m.events; ok {
			return eventMsg(ev)
		}
		return closedMsg{}
	}
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		return m, tea.Batch(m.apply(pipeline.Event(msg)), m.next())
	case closedMsg:
		m.finished = true
		return m, tea.Quit
	case tea.KeyMsg:
		// отмену работы выполняет вызывающий код через контекст
		if msg.Type == tea.KeyCtrlC {
			m.finished = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width, m.height = max(msg.Width, 20), msg.Height
		m.bar.Width = max(m.width-4, 10)
	case spinner.TickMsg:
		if !m.finished {
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

func (m *progressModel) apply(ev pipeline.Event) tea.Cmd {
	if ev.Status == pipeline.StatusError {
		m.failed = true
	}
	if ev.File == "" {
		m.steps[ev.Stage] = ev.Status
		return nil
	}
	d := m.doc(ev.File)
	d.stage, d.status = ev.Stage, ev.Status
	if ev.Err != nil {
		d.err = ev.Err
	}
	return m.bar.SetPercent(m.percent())
}

// settled reports whether d needs no more work.
func (d document) settled() bool {
	return d.status == pipeline.StatusError ||
		(d.status == pipeline.StatusDone && d.stage >= pipeline.StageRewrite)
}

// percent weighs a document in flight by how far along it is: rewriting
// counts half, writing nine tenths.
func (m *progressModel) percent() float64 {
	if len(m.docs) == 0 {
		return 0
	}
	var sum float64
	for _, d := range m.docs {
		switch {
		case d.settled():
			sum++
		case d.status == pipeline.StatusWorking && d.stage == pipeline.StageWrite:
			sum += 0.9
		case d.status == pipeline.StatusWorking:
			sum += 0.5
		}
	}
	return sum / float64(len(m.docs))
}

func (m *progressModel) counts() (settled, failed int) {
	for _, d := range m.docs {
		if d.settled() {
			settled++
		}
		if d.status == pipeline.StatusError {
			failed++
		}
	}
	return settled, failed
}

func (m *progressModel) View() string {
	var b strings.Builder

	header := m.title
	switch {
	case m.finished && m.failed:
		header = failStyle.Render("failed: ") + titleStyle.Render(header)
	case m.finished:
		header = okStyle.Render("done: ") + titleStyle.Render(header)
	default:
		header = m.spinner.View() + " " + titleStyle.Render(header)
	}
	b.WriteString(header + "\n")
	b.WriteString("  " + m.stepsLine() + "\n\n")

	for _, d := range m.visibleDocs() {
		label, style := docLabel(d)
		line := truncate(d.path, m.width-statusColumn-4)
		if d.err != nil {
			line = truncate(d.path+": "+d.err.Error(), m.width-statusColumn-4)
		}
		fmt.Fprintf(&b, "  %s %s\n", style.Render(fmt.Sprintf("%*s", statusColumn, label)), line)
	}

	b.WriteString("\n")
	if m.finished {
		b.WriteString(m.bar.ViewAs(1))
	} else {
		b.WriteString(m.bar.View())
	}
	settled, failed := m.counts()
	summary := fmt.Sprintf("%d/%d documents", settled, len(m.docs))
	if failed > 0 {
		summary += failStyle.Render(fmt.Sprintf(", %d failed", failed))
	}
	b.WriteString("\n  " + summary + "\n")
	return b.String()
}

// stepsLine shows the session stages, e.g. "catalog ok · render ... · cache".
func (m *progressModel) stepsLine() string {
	parts := make([]string, 0, len(sessionSteps))
	for _, st := range sessionSteps {
		name := stepName(st)
		status, seen := m.steps[st]
		switch {
		case !seen:
			parts = append(parts, mutedStyle.Render(name))
		case status == pipeline.StatusDone:
			parts = append(parts, okStyle.Render(name+" ok"))
		case status == pipeline.StatusError:
			parts = append(parts, failStyle.Render(name+" failed"))
		default:
			parts = append(parts, activeStyle.Render(name+" ..."))
		}
	}
	return strings.Join(parts, mutedStyle.Render(" · "))
}

func stepName(st pipeline.Stage) string {
	if st == pipeline.StageLoad {
		return "catalog"
	}
	return st.String()
}

// visibleDocs keeps the list within the terminal: documents in flight and
// failures first, then the most recent ones.
func (m *progressModel) visibleDocs() []document {
	room := m.height - 8
	if m.height == 0 || len(m.docs) <= room {
		return m.docs
	}
	room = max(room, 1)
	out := make([]document, 0, room)
	for _, d := range m.docs {
		if len(out) < room && (d.status == pipeline.StatusWorking || d.status == pipeline.StatusError) {
			out = append(out, d)
		}
	}
	for i := len(m.docs) - 1; i >= 0 && len(out) < room; i-- {
		if d := m.docs[i]; d.status == pipeline.StatusDone {
			out = append(out, d)
		}
	}
	return out
}

func docLabel(d document) (string, lipgloss.Style) {
	switch d.status {
	case pipeline.StatusError:
		return "error", failStyle
	case pipeline.StatusDone:
		return "done", okStyle
	case pipeline.StatusWorking:
		if d.stage == pipeline.StageWrite {
			return "writing", activeStyle
		}
		return "rewriting", activeStyle
	}
	return "queued", mutedStyle
}

// truncate shortens value to width display cells, ending in "..." when
// there is room for it.
func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	tail := "..."
	if width <= len(tail) {
		tail = ""
	}
	return runewidth.Truncate(value, width, tail)
}
