package services

import (
	"strings"
	"unicode"
)

// weakMarkers flag template placeholders or missing data in an answer.
var weakMarkers = []string{"[Insert", "Cite Source]", "Not available", "(Overview)"}

// CriticAgent judges whether an answer is too weak to return.
type CriticAgent struct{}

// NewCriticAgent creates a critic.
func NewCriticAgent() *CriticAgent {
	return &CriticAgent{}
}

// NeedsRetry reports whether answer is empty, carries a placeholder marker,
// or contains no digit at all.
func (CriticAgent) NeedsRetry(answer string) bool {
	if answer == "" || strings.Contains(answer, "(No answer)") {
		return true
	}
	for _, m := range weakMarkers {
		if strings.Contains(answer, m) {
			return true
		}
	}
	return !strings.ContainsFunc(answer, unicode.IsDigit)
}
