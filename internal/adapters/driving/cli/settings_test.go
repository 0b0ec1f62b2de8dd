package cli

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/dossier/internal/core/domain"
)

func withInput(t *testing.T, input string) {
	t.Helper()
	old := settingsInput
	settingsInput = strings.NewReader(input)
	t.Cleanup(func() { settingsInput = old })
}

func TestSettingsShow(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.settings.settings.LLM = domain.LLMSettings{
		Provider:   domain.AIProviderGemini,
		Model:      "gemini-1.5-flash-latest",
		Candidates: []string{"gemini-2.0-flash"},
		APIKey:     "AIzaSyExampleKey1234",
	}

	out, err := execute(t, "settings", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "Google Gemini (cloud)")
	assert.Contains(t, out, "Candidates: gemini-2.0-flash")
	assert.Contains(t, out, "AIza...1234")
	assert.NotContains(t, out, "AIzaSyExampleKey1234")
	assert.Contains(t, out, "Cache TTL: 30 days")
	assert.Contains(t, out, "Configuration is valid.")
}

func TestSettingsShow_ValidationWarning(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.settings.validateErr = errors.New("LLM provider not configured")

	out, err := execute(t, "settings")

	require.NoError(t, err)
	assert.Contains(t, out, "Warning: LLM provider not configured")
	assert.Contains(t, out, "dossier settings wizard")
}

func TestSettingsShow_ErrorsWithoutService(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	settingsService = nil

	_, err := execute(t, "settings", "show")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "settings service not configured")
}

func TestSettingsLLM_ReadsChoices(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	withInput(t, "2\n\nsk-test-key-123456\n")

	out, err := execute(t, "settings", "llm")

	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOpenAI, ts.settings.settings.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", ts.settings.settings.LLM.Model)
	assert.Equal(t, "sk-test-key-123456", ts.settings.settings.LLM.APIKey)
	assert.Contains(t, out, "Validating configuration... OK")
}

func TestSettingsSearch_GoogleNeedsCX(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	withInput(t, "2\nkey-123\n\n")

	_, err := execute(t, "settings", "search")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "search engine ID is required")
	assert.Equal(t, domain.SearchProviderSerpAPI, ts.settings.settings.Search.Provider)
}

func TestSettingsLinkedIn_DefaultsRedirect(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	withInput(t, "client-1\nsecret-1\n\n")

	out, err := execute(t, "settings", "linkedin")

	require.NoError(t, err)
	assert.Equal(t, [4]string{"client-1", "secret-1", "http://localhost:8765/callback", ""}, ts.settings.linkedIn)
	assert.Contains(t, out, "dossier updates login")
}

// Test helper functions in settings.go

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Short key",
			input:    "abc123",
			expected: "****",
		},
		{
			name:     "Exactly 8 chars",
			input:    "12345678",
			expected: "****",
		},
		{
			name:     "Long key",
			input:    "sk-1234567890abcdef",
			expected: "sk-1...cdef",
		},
		{
			name:     "Very long key",
			input:    "sk-proj-1234567890abcdefghijklmnop",
			expected: "sk-p...mnop",
		},
		{
			name:     "Empty key",
			input:    "",
			expected: "****",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := maskAPIKey(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		maxVal     int
		defaultVal int
		expected   int
	}{
		{
			name:       "Empty input returns default",
			input:      "",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Valid choice within range",
			input:      "3",
			maxVal:     5,
			defaultVal: 1,
			expected:   3,
		},
		{
			name:       "Choice below minimum returns default",
			input:      "0",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Choice above maximum returns default",
			input:      "6",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Invalid input returns default",
			input:      "abc",
			maxVal:     5,
			defaultVal: 2,
			expected:   2,
		},
		{
			name:       "Negative number returns default",
			input:      "-1",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Whitespace returns default",
			input:      "   ",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Maximum value is valid",
			input:      "5",
			maxVal:     5,
			defaultVal: 1,
			expected:   5,
		},
		{
			name:       "Minimum value is valid",
			input:      "1",
			maxVal:     5,
			defaultVal: 3,
			expected:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseChoice(tt.input, tt.maxVal, tt.defaultVal)
			assert.Equal(t, tt.expected, result)
		})
	}
}
