package list

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHints_Empty(t *testing.T) {
	h := NewHints(nil)

	_, ok := h.Next()
	assert.False(t, ok)
	assert.Empty(t, h.View())
	assert.Equal(t, 0, h.Height())
	assert.Equal(t, -1, h.Selected())
}

func TestHints_NextWraps(t *testing.T) {
	h := NewHints(nil)
	h.SetItems([]string{"What about margins?", "Who are the competitors?"})

	got, ok := h.Next()
	assert.True(t, ok)
	assert.Equal(t, "What about margins?", got)

	got, _ = h.Next()
	assert.Equal(t, "Who are the competitors?", got)

	got, _ = h.Next()
	assert.Equal(t, "What about margins?", got)
	assert.Equal(t, 0, h.Selected())
}

func TestHints_SetItemsResetsSelection(t *testing.T) {
	h := NewHints(nil)
	h.SetItems([]string{"a"})
	h.Next()

	h.SetItems([]string{"b", "c"})

	assert.Equal(t, -1, h.Selected())
	assert.Equal(t, []string{"b", "c"}, h.Items())
	assert.Equal(t, 3, h.Height())
}

func TestHints_View(t *testing.T) {
	h := NewHints(nil)
	h.SetItems([]string{"What about margins?"})

	view := h.View()
	assert.Contains(t, view, "Follow-ups")
	assert.Contains(t, view, "1. What about margins?")
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"a much longer hint", 10, "a much ..."},
		{"tiny", 1, "..."},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, truncate(tt.in, tt.max))
		})
	}
}
