// Package ui provides the interactive task browser.
package ui

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nibzard/rustybrain/internal/todo"
	"github.com/nibzard/rustybrain/internal/view"
)

// Store is the persistence the browser needs.
type Store interface {
	Load() (todo.List, error)
	Save(todo.List) error
}

// Option configures the browser.
type Option func(*Model)

// WithColor sets the color mode (auto, always, never) used for styling.
func WithColor(mode string) Option {
	return func(m *Model) {
		m.colorMode = mode
	}
}

// WithOutput sets the writer the program renders to.
func WithOutput(w io.Writer) Option {
	return func(m *Model) {
		m.out = w
	}
}

// Run starts the browser and blocks until the user quits. The returned error
// is non-nil when the store cannot be read, the program fails or a save fails.
func Run(ctx context.Context, store Store, opts todo.ViewOptions, options ...Option) error {
	model := New(store, opts, options...)
	if model.loadErr != nil {
		return model.loadErr
	}
	teaOpts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	if model.out != nil {
		teaOpts = append(teaOpts, tea.WithOutput(model.out))
	}
	program := tea.NewProgram(model, teaOpts...)
	finalModel, err := program.Run()
	if err != nil {
		return err
	}
	if m, ok := finalModel.(*Model); ok && m.saveErr != nil {
		return m.saveErr
	}
	return nil
}

// Model is the bubbletea model behind the browser.
type Model struct {
	store     Store
	out       io.Writer
	colorMode string
	styles    styles

	list    todo.List
	entries []todo.Entry
	cursor  int
	group   string
	sortKey todo.SortKey
	status  string
	loadErr error
	saveErr error
}

type styles struct {
	rows     view.Styles
	title    lipgloss.Style
	cursor   lipgloss.Style
	status   lipgloss.Style
	footer   lipgloss.Style
	errorMsg lipgloss.Style
}

// New builds a model with the initial filter and sort from opts and loads
// the list from store.
func New(store Store, opts todo.ViewOptions, options ...Option) *Model {
	m := &Model{
		store:   store,
		group:   opts.Group,
		sortKey: opts.Sort,
	}
	for _, opt := range options {
		opt(m)
	}
	if m.sortKey == "" {
		m.sortKey = todo.SortTime
	}
	m.styles = newStyles(m.out, m.colorMode)
	m.reload()
	return m
}

func newStyles(out io.Writer, colorMode string) styles {
	var lr *lipgloss.Renderer
	if out != nil {
		lr = lipgloss.NewRenderer(out)
		lr.SetColorProfile(view.ColorProfile(out, colorMode))
	} else {
		lr = lipgloss.DefaultRenderer()
	}
	return styles{
		rows:     view.NewStyles(lr),
		title:    lr.NewStyle().Bold(true).Foreground(lipgloss.Color("252")),
		cursor:   lr.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		status:   lr.NewStyle().Foreground(lipgloss.Color("42")),
		footer:   lr.NewStyle().Foreground(lipgloss.Color("240")),
		errorMsg: lr.NewStyle().Foreground(lipgloss.Color("196")),
	}
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.entries)-1 {
			m.cursor++
		}
	case " ", "space", "enter":
		if err := m.markSelected(); err != nil {
			m.saveErr = err
			return m, tea.Quit
		}
	case "s":
		m.sortKey = nextSortKey(m.sortKey)
		m.status = "Sorted by " + sortLabel(m.sortKey)
		m.refreshEntries()
	case "g":
		m.group = nextGroup(m.list.Groups(), m.group)
		m.cursor = 0
		m.status = "Showing " + groupLabel(m.group)
		m.refreshEntries()
	case "r":
		m.reload()
		if m.loadErr == nil {
			m.status = "Reloaded"
		}
	}
	return m, nil
}

func (m *Model) View() string {
	var b strings.Builder
	writeTitle(&b, m)

	if len(m.entries) == 0 {
		b.WriteString(view.EmptyMessage + "\n\n")
	} else {
		for i, e := range m.entries {
			prefix := "  "
			if i == m.cursor {
				prefix = m.styles.cursor.Render(">") + " "
			}
			b.WriteString(prefix + view.FormatRow(m.styles.rows, e) + "\n")
		}
		b.WriteString("\n")
	}

	switch {
	case m.saveErr != nil:
		b.WriteString(m.styles.errorMsg.Render("Save failed: "+m.saveErr.Error()) + "\n")
	case m.loadErr != nil:
		b.WriteString(m.styles.errorMsg.Render("Cannot read tasks, marking is disabled: "+m.loadErr.Error()) + "\n")
	case m.status != "":
		b.WriteString(m.styles.status.Render(m.status) + "\n")
	}
	writeFooter(&b, m)
	return b.String()
}

// Selected returns the entry under the cursor.
func (m *Model) Selected() (todo.Entry, bool) {
	if m.cursor < 0 || m.cursor >= len(m.entries) {
		return todo.Entry{}, false
	}
	return m.entries[m.cursor], true
}

// markSelected marks the task under the cursor. Nothing is saved while the
// last load failed, so an unreadable store is never overwritten.
func (m *Model) markSelected() error {
	e, ok := m.Selected()
	if !ok || m.loadErr != nil {
		return nil
	}
	changed, err := m.list.Mark(e.Position)
	if err != nil {
		m.status = err.Error()
		return nil
	}
	if changed {
		if err := m.store.Save(m.list); err != nil {
			return fmt.Errorf("saving tasks: %w", err)
		}
	}
	m.status = fmt.Sprintf("Task %d marked as done.", e.Position+1)
	m.refreshEntries()
	return nil
}

func (m *Model) reload() {
	list, err := m.store.Load()
	if err != nil {
		m.loadErr = fmt.Errorf("loading tasks: %w", err)
		return
	}
	m.loadErr = nil
	m.list = list
	if m.group != "" && !m.list.HasGroup(m.group) {
		m.group = ""
	}
	m.refreshEntries()
}

func (m *Model) refreshEntries() {
	m.entries = m.list.View(todo.ViewOptions{Group: m.group, Sort: m.sortKey})
	if m.cursor >= len(m.entries) {
		m.cursor = len(m.entries) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func nextSortKey(k todo.SortKey) todo.SortKey {
	switch k {
	case todo.SortTime:
		return todo.SortPriority
	case todo.SortPriority:
		return todo.SortInsertion
	default:
		return todo.SortTime
	}
}

// nextGroup steps through groups in first-seen order, then back to all.
func nextGroup(groups []string, current string) string {
	if len(groups) == 0 {
		return ""
	}
	if current == "" {
		return groups[0]
	}
	i := slices.Index(groups, current)
	if i < 0 || i+1 >= len(groups) {
		return ""
	}
	return groups[i+1]
}

func sortLabel(k todo.SortKey) string {
	switch k {
	case todo.SortTime:
		return "time"
	case todo.SortPriority:
		return "priority"
	default:
		return "insertion order"
	}
}

func groupLabel(group string) string {
	if group == "" {
		return "all groups"
	}
	return "group " + group
}

func writeTitle(b *strings.Builder, m *Model) {
	title := "RustyBrain"
	b.WriteString(m.styles.title.Render(title) + "\n")
	b.WriteString(strings.Repeat("=", len(title)) + "\n")
	b.WriteString(fmt.Sprintf("Group: %s | Sort: %s\n\n", groupLabel(m.group), sortLabel(m.sortKey)))
}

func writeFooter(b *strings.Builder, m *Model) {
	b.WriteString(m.styles.footer.Render("↑/k ↓/j move | space mark done | s sort | g group | r reload | q quit") + "\n")
}
