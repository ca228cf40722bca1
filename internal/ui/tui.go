// Package ui provides optional terminal interfaces.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nibzard/todoapp-go/internal/todo"
)

// Lister is the part of the task service the viewer reads from.
type Lister interface {
	List(ctx context.Context) ([]todo.Task, error)
}

// TUIOption configures the TUI behavior.
type TUIOption func(*tuiModel)

// WithRefreshInterval sets how often the list is reloaded.
func WithRefreshInterval(d time.Duration) TUIOption {
	return func(m *tuiModel) {
		if d > 0 {
			m.tickInterval = d
		}
	}
}

// RunTUI starts the read-only task viewer on stdout.
func RunTUI(ctx context.Context, tasks Lister, dataPath string, opts ...TUIOption) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}
	model := newTUIModel(ctx, tasks, dataPath, opts...)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

type tuiModel struct {
	ctx          context.Context
	tasks        Lister
	dataPath     string
	tickInterval time.Duration
	filter       todo.Filter
	showHelp     bool
	loadErr      error
	loaded       bool
	all          []todo.Task
}

type tickMsg time.Time

func newTUIModel(ctx context.Context, tasks Lister, dataPath string, opts ...TUIOption) *tuiModel {
	m := &tuiModel{
		ctx:          ctx,
		tasks:        tasks,
		dataPath:     dataPath,
		tickInterval: time.Second,
		filter:       todo.FilterAll,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *tuiModel) Init() tea.Cmd {
	m.refresh()
	return tickCmd(m.tickInterval)
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r", "f5":
			m.refresh()
		case "h", "?":
			m.showHelp = !m.showHelp
		case "0":
			m.filter = todo.FilterAll
		case "1":
			m.filter = todo.FilterActive
		case "2":
			m.filter = todo.FilterCompleted
		}
	case tickMsg:
		m.refresh()
		return m, tickCmd(m.tickInterval)
	}
	return m, nil
}

func (m *tuiModel) View() string {
	var b strings.Builder
	writeTitle(&b)

	if m.showHelp {
		writeHelp(&b)
		writeFooter(&b, m.tickInterval)
		return b.String()
	}

	if m.loadErr != nil {
		b.WriteString("Error loading tasks:\n")
		b.WriteString("  " + m.loadErr.Error() + "\n\n")
		writeFooter(&b, m.tickInterval)
		return b.String()
	}
	if !m.loaded {
		b.WriteString("Loading...\n\n")
		writeFooter(&b, m.tickInterval)
		return b.String()
	}

	writeOverview(&b, m.all)
	writeTasks(&b, m.filter, m.filter.Apply(m.all))
	fmt.Fprintf(&b, "  %s\n\n", itemsLeft(todo.Remaining(m.all)))
	fmt.Fprintf(&b, "Data File: %s\n\n", m.dataPath)
	writeFooter(&b, m.tickInterval)
	return b.String()
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *tuiModel) refresh() {
	tasks, err := m.tasks.List(m.ctx)
	if err != nil {
		m.loadErr = err
		return
	}
	m.loadErr = nil
	m.loaded = true
	m.all = tasks
}

func writeTitle(b *strings.Builder) {
	title := "todos"
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("=", len(title)) + "\n\n")
}

func writeOverview(b *strings.Builder, tasks []todo.Task) {
	active := todo.Remaining(tasks)
	fmt.Fprintf(b, "  All: %d  Active: %d  Completed: %d\n\n", len(tasks), active, len(tasks)-active)
}

func writeTasks(b *strings.Builder, filter todo.Filter, tasks []todo.Task) {
	if filter != todo.FilterAll {
		fmt.Fprintf(b, "Filter: %s (0 to clear)\n\n", filter)
	}
	if len(tasks) == 0 {
		b.WriteString("  Nothing to show.\n\n")
		return
	}
	for _, t := range tasks {
		b.WriteString(formatTask(t))
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func writeHelp(b *strings.Builder) {
	b.WriteString("Keyboard Shortcuts\n\n")
	b.WriteString("  q, ctrl+c    Quit\n")
	b.WriteString("  r, F5        Refresh data\n")
	b.WriteString("  h, ?         Toggle this help screen\n")
	b.WriteString("  0            Show all\n")
	b.WriteString("  1            Show active\n")
	b.WriteString("  2            Show completed\n\n")
}

func writeFooter(b *strings.Builder, interval time.Duration) {
	fmt.Fprintf(b, "Press h for help | q to quit | Refreshing every %s\n", interval)
}

func formatTask(t todo.Task) string {
	mark := " "
	if t.Completed {
		mark = "x"
	}
	return fmt.Sprintf("  [%s] %s  %s", mark, t.ID, t.Text)
}

func itemsLeft(n int) string {
	if n == 1 {
		return "1 item left"
	}
	return fmt.Sprintf("%d items left", n)
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
