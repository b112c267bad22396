// Package view renders task lists for the terminal.
//
// Every row carries the 1-based index within the rendered list, the group,
// the description, a completion glyph and the priority:
//
//	1. [default] buy milk [✗] (Priority: 3)
//
// Styling is applied through a lipgloss renderer bound to the output writer,
// so the same code prints plain text into a pipe and colors on a terminal.
package view

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"github.com/nibzard/rustybrain/internal/config"
	"github.com/nibzard/rustybrain/internal/todo"
)

// Glyphs used for the completion column.
const (
	GlyphDone    = "✓"
	GlyphPending = "✗"
)

// Fixed messages printed around the task rows.
const (
	Header       = "Here's what you forgot to do:"
	EmptyMessage = "No tasks available. Looks like your brain is clear!"
)

// Renderer writes task lists to a writer.
type Renderer struct {
	out    io.Writer
	styles Styles
}

// Styles holds the lipgloss styles for each column.
type Styles struct {
	Header   lipgloss.Style
	Number   lipgloss.Style
	Group    lipgloss.Style
	Done     lipgloss.Style
	Pending  lipgloss.Style
	Muted    lipgloss.Style
	Priority map[todo.Priority]lipgloss.Style
}

// New returns a renderer for w. colorMode is one of config.ColorAuto,
// config.ColorAlways or config.ColorNever.
func New(w io.Writer, colorMode string) *Renderer {
	lr := lipgloss.NewRenderer(w)
	lr.SetColorProfile(ColorProfile(w, colorMode))
	return &Renderer{out: w, styles: NewStyles(lr)}
}

// NewStyles builds the column styles on the given lipgloss renderer.
func NewStyles(lr *lipgloss.Renderer) Styles {
	return Styles{
		Header:  lr.NewStyle().Bold(true),
		Number:  lr.NewStyle().Foreground(lipgloss.Color("245")),
		Group:   lr.NewStyle().Foreground(lipgloss.Color("39")),
		Done:    lr.NewStyle().Foreground(lipgloss.Color("42")),
		Pending: lr.NewStyle().Foreground(lipgloss.Color("196")),
		Muted:   lr.NewStyle().Foreground(lipgloss.Color("240")).Italic(true),
		Priority: map[todo.Priority]lipgloss.Style{
			todo.PriorityHigh:   lr.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
			todo.PriorityMedium: lr.NewStyle().Foreground(lipgloss.Color("214")),
			todo.PriorityLow:    lr.NewStyle().Foreground(lipgloss.Color("252")),
		},
	}
}

// ColorProfile picks the termenv profile for w under the given mode.
func ColorProfile(w io.Writer, colorMode string) termenv.Profile {
	switch colorMode {
	case config.ColorNever:
		return termenv.Ascii
	case config.ColorAlways:
		return termenv.ANSI256
	}
	if !IsTerminal(w) {
		return termenv.Ascii
	}
	return termenv.NewOutput(w).EnvColorProfile()
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Tasks writes the header and one row per entry, or the empty message when
// there is nothing to show.
func (r *Renderer) Tasks(entries []todo.Entry) error {
	var b strings.Builder
	if len(entries) == 0 {
		b.WriteString(EmptyMessage + "\n")
	} else {
		b.WriteString(r.styles.Header.Render(Header) + "\n")
		for _, e := range entries {
			b.WriteString(r.Row(e) + "\n")
		}
	}
	_, err := io.WriteString(r.out, b.String())
	return err
}

// Row formats a single entry.
func (r *Renderer) Row(e todo.Entry) string {
	return FormatRow(r.styles, e)
}

// FormatRow formats a single entry with the given styles.
func FormatRow(s Styles, e todo.Entry) string {
	desc := e.Task.Description
	if e.Task.IsPlaceholder() {
		desc = s.Muted.Render(desc)
	}
	glyph := s.Pending.Render(GlyphPending)
	if e.Task.Done {
		glyph = s.Done.Render(GlyphDone)
	}
	prioStyle, ok := s.Priority[e.Task.Priority]
	if !ok {
		prioStyle = s.Priority[todo.PriorityLow]
	}
	prio := prioStyle.Render(fmt.Sprintf("(Priority: %d)", int(e.Task.Priority)))
	return fmt.Sprintf("%s %s %s [%s] %s",
		s.Number.Render(fmt.Sprintf("%d.", e.Number)),
		s.Group.Render("["+e.Task.Group+"]"),
		desc,
		glyph,
		prio,
	)
}
