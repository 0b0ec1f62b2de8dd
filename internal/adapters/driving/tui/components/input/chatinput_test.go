package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChatInput(t *testing.T) {
	in := NewChatInput(nil)

	require.NotNil(t, in)
	assert.True(t, in.Focused())
	assert.Empty(t, in.Value())
	assert.Equal(t, 60, in.Width())
}

func TestChatInput_Typing(t *testing.T) {
	in := NewChatInput(nil)

	in, _ = in.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("revenue")})

	assert.Equal(t, "revenue", in.Value())
}

func TestChatInput_SetValueAndReset(t *testing.T) {
	in := NewChatInput(nil)

	in.SetValue("How did margins develop?")
	assert.Equal(t, "How did margins develop?", in.Value())

	in.Reset()
	assert.Empty(t, in.Value())
}

func TestChatInput_FocusBlur(t *testing.T) {
	in := NewChatInput(nil)

	in.Blur()
	assert.False(t, in.Focused())

	in.Focus()
	assert.True(t, in.Focused())
}

func TestChatInput_SetWidth(t *testing.T) {
	in := NewChatInput(nil)

	in.SetWidth(100)
	assert.Equal(t, 100, in.Width())

	in.SetWidth(10)
	assert.Equal(t, 10, in.Width())
}

func TestChatInput_ViewShowsPrompt(t *testing.T) {
	in := NewChatInput(nil)
	in.SetValue("hello")

	assert.Contains(t, in.View(), "> ")
	assert.Contains(t, in.View(), "hello")
}

func TestChatInput_Init(t *testing.T) {
	assert.NotNil(t, NewChatInput(nil).Init())
}
