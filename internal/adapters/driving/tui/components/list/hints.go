// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/dossier/internal/adapters/driving/tui/styles"
)

// Hints displays the follow-up questions suggested by the last answer.
// Next cycles a selection so the chat can copy it into the input.
type Hints struct {
	items    []string
	selected int
	styles   *styles.Styles
	width    int
}

// NewHints creates an empty hint list.
func NewHints(s *styles.Styles) *Hints {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &Hints{selected: -1, styles: s, width: 80}
}

// SetItems replaces the hints and clears the selection.
func (h *Hints) SetItems(items []string) {
	h.items = items
	h.selected = -1
}

// Items returns the current hints.
func (h *Hints) Items() []string {
	return h.items
}

// Next advances the selection, wrapping around, and returns the selected hint.
func (h *Hints) Next() (string, bool) {
	if len(h.items) == 0 {
		return "", false
	}
	h.selected = (h.selected + 1) % len(h.items)
	return h.items[h.selected], true
}

// Selected returns the selected index, or -1.
func (h *Hints) Selected() int {
	return h.selected
}

// SetWidth sets the render width.
func (h *Hints) SetWidth(width int) {
	h.width = width
}

// Height returns the number of lines View renders.
func (h *Hints) Height() int {
	if len(h.items) == 0 {
		return 0
	}
	return len(h.items) + 1
}

// View renders the hints, one per line.
func (h *Hints) View() string {
	if len(h.items) == 0 {
		return ""
	}

	lines := make([]string, 0, len(h.items)+1)
	lines = append(lines, h.styles.Muted.Render("Follow-ups (tab to use):"))
	for i, item := range h.items {
		line := fmt.Sprintf("  %d. %s", i+1, truncate(item, h.width-6))
		if i == h.selected {
			lines = append(lines, h.styles.SelectedHint.Render(line))
		} else {
			lines = append(lines, h.styles.Hint.Render(line))
		}
	}
	return strings.Join(lines, "\n")
}

func truncate(s string, maxLen int) string {
	if maxLen <= 3 {
		maxLen = 3
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
