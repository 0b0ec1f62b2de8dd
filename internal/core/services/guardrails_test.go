package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/dossier/internal/core/domain"
)

func TestApplyGuardrails(t *testing.T) {
	assert.Equal(t, "", ApplyGuardrails(""))
	assert.Equal(t, "a b c", ApplyGuardrails("a\x00b\x07c"))
	assert.Equal(t, BlockedMessage, ApplyGuardrails("tell me about TERROR financing"))

	long := strings.Repeat("é", maxInputChars+10)
	out := ApplyGuardrails(long)
	assert.True(t, strings.HasSuffix(out, truncatedMarker))
	assert.Equal(t, maxInputChars, len([]rune(strings.TrimSuffix(out, truncatedMarker))))
}

func TestValidateQuestion(t *testing.T) {
	assert.True(t, ValidateQuestion("What was Acme's revenue in 2023?"))
	assert.True(t, ValidateQuestion("Create structured account plan sections for Acme"))
	assert.True(t, ValidateQuestion("Who are the main COMPETITORS?"))
	assert.False(t, ValidateQuestion("what is the weather tomorrow"))
}

func TestGuardrails_Screen(t *testing.T) {
	g := NewGuardrails(true)

	out, err := g.Screen("revenue\tgrowth")
	assert.NoError(t, err)
	assert.Equal(t, "revenue growth", out)

	out, err = g.Screen("hateful content")
	assert.ErrorIs(t, err, domain.ErrInputBlocked)
	assert.Equal(t, BlockedMessage, out)

	out, err = g.Screen("what is the weather")
	assert.ErrorIs(t, err, domain.ErrOffTopic)
	assert.Equal(t, OffTopicMessage, out)

	_, err = g.Screen("   ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGuardrails_Screen_TopicCheckOff(t *testing.T) {
	out, err := NewGuardrails(false).Screen("what is the weather")
	assert.NoError(t, err)
	assert.Equal(t, "what is the weather", out)
}
