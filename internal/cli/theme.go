package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/comitanigiacomo/kanso-habit-engine/internal/core/domain"
)

const (
	iconDone   = "✔"
	iconTodo   = "·"
	iconFlame  = "🔥"
	iconError  = "✘"
	iconPaused = "⏸"
)

var (
	cPrimary = lipgloss.Color("63")
	cAccent  = lipgloss.Color("205")
	cGood    = lipgloss.Color("42")
	cWarn    = lipgloss.Color("214")
	cBad     = lipgloss.Color("196")
	cMuted   = lipgloss.Color("244")
)

// theme renders styled text, or plain text when styling is off.
type theme struct {
	styled bool

	title lipgloss.Style
	key   lipgloss.Style
	good  lipgloss.Style
	warn  lipgloss.Style
	bad   lipgloss.Style
	muted lipgloss.Style
	panel lipgloss.Style
}

// newTheme styles output only when color is enabled and w is a terminal.
func newTheme(w io.Writer, color bool) *theme {
	return &theme{
		styled: color && isTerminal(w),
		title:  lipgloss.NewStyle().Bold(true).Foreground(cAccent),
		key:    lipgloss.NewStyle().Bold(true).Foreground(cPrimary),
		good:   lipgloss.NewStyle().Bold(true).Foreground(cGood),
		warn:   lipgloss.NewStyle().Bold(true).Foreground(cWarn),
		bad:    lipgloss.NewStyle().Bold(true).Foreground(cBad),
		muted:  lipgloss.NewStyle().Foreground(cMuted),
		panel:  lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(cMuted).Padding(0, 1),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (t *theme) render(s lipgloss.Style, text string) string {
	if !t.styled {
		return text
	}
	return s.Render(text)
}

func (t *theme) Title(text string) string { return t.render(t.title, text) }
func (t *theme) Good(text string) string  { return t.render(t.good, text) }
func (t *theme) Warn(text string) string  { return t.render(t.warn, text) }
func (t *theme) Bad(text string) string   { return t.render(t.bad, text) }
func (t *theme) Muted(text string) string { return t.render(t.muted, text) }

func (t *theme) LabelValue(label string, value any) string {
	return fmt.Sprintf("%s %v", t.render(t.key, label+":"), value)
}

func (t *theme) Panel(lines ...string) string {
	body := strings.Join(lines, "\n")
	if !t.styled {
		return body
	}
	return t.panel.Render(body)
}

// Percent colors a percentage by how healthy it is.
func (t *theme) Percent(p int) string {
	text := fmt.Sprintf("%d%%", p)
	switch {
	case p >= 80:
		return t.Good(text)
	case p >= 40:
		return t.Warn(text)
	default:
		return t.Bad(text)
	}
}

func (t *theme) Streak(n int) string {
	if n == 0 {
		return t.Muted("0")
	}
	return t.Good(fmt.Sprintf("%d %s", n, iconFlame))
}

func (t *theme) HabitLine(h *domain.Habit, streak int) string {
	marker := iconTodo
	if h.IsArchived() {
		marker = iconPaused
	}
	return fmt.Sprintf("%s %s  %s  %s  %s",
		marker,
		t.Muted(h.ID),
		t.Title(h.Title),
		t.Muted(h.Schedule.String()),
		t.Streak(streak),
	)
}
