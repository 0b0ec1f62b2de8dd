// Package status provides status bar components for the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/dossier/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/dossier/internal/adapters/driving/tui/styles"
)

// State represents the current application state for display.
type State string

const (
	StateReady   State = "ready"
	StateWorking State = "working"
	StateError   State = "error"
)

// Bar displays the research target, agent activity and keybinding hints.
type Bar struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	spinner spinner.Model
	state   State
	company string
	message string
	kbReady bool
	width   int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = s.Spinner

	return &Bar{
		styles:  s,
		keymap:  km,
		spinner: sp,
		state:   StateReady,
		width:   80,
	}
}

// Init initialises the status bar.
func (b *Bar) Init() tea.Cmd {
	return nil
}

// Update advances the spinner while working.
func (b *Bar) Update(msg tea.Msg) (*Bar, tea.Cmd) {
	if _, ok := msg.(spinner.TickMsg); !ok || b.state != StateWorking {
		return b, nil
	}
	var cmd tea.Cmd
	b.spinner, cmd = b.spinner.Update(msg)
	return b, cmd
}

// View renders the status bar.
func (b *Bar) View() string {
	left := b.renderLeft()
	right := b.renderRight()

	padding := b.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if padding < 1 {
		padding = 1
	}

	return b.styles.StatusBar.Width(b.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

func (b *Bar) renderLeft() string {
	prefix := ""
	if b.company != "" {
		prefix = b.company
		if b.kbReady {
			prefix += " [kb]"
		}
		prefix += " · "
	}

	switch b.state {
	case StateWorking:
		msg := b.message
		if msg == "" {
			msg = "Working..."
		}
		return prefix + b.spinner.View() + " " + b.styles.Normal.Render(msg)
	case StateError:
		if b.message != "" {
			return prefix + b.styles.Error.Render(fmt.Sprintf("Error: %s", b.message))
		}
		return prefix + b.styles.Error.Render("Error")
	default:
		return prefix + b.styles.Muted.Render("Ready")
	}
}

func (b *Bar) renderRight() string {
	bindings := b.keymap.ShortHelp()
	hints := make([]string, 0, len(bindings))
	for _, kb := range bindings {
		h := kb.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return b.styles.Muted.Render(strings.Join(hints, " | "))
}

// StartWork switches to the working state and returns the spinner tick.
func (b *Bar) StartWork(message string) tea.Cmd {
	b.state = StateWorking
	b.message = message
	return b.spinner.Tick
}

// SetError shows an error message.
func (b *Bar) SetError(message string) {
	b.state = StateError
	b.message = message
}

// Clear resets the status bar to the ready state.
func (b *Bar) Clear() {
	b.state = StateReady
	b.message = ""
}

// State returns the current state.
func (b *Bar) State() State {
	return b.state
}

// Message returns the current message.
func (b *Bar) Message() string {
	return b.message
}

// SetCompany sets the research target shown on the left.
func (b *Bar) SetCompany(company string) {
	b.company = company
}

// SetKBReady marks that PDF evidence has been collected.
func (b *Bar) SetKBReady(ready bool) {
	b.kbReady = ready
}

// SetWidth sets the status bar width.
func (b *Bar) SetWidth(width int) {
	b.width = width
}

// Width returns the current width.
func (b *Bar) Width() int {
	return b.width
}
