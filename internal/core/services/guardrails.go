package services

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/core/ports/driving"
)

// Ensure Guardrails implements the interface.
var _ driving.Guard = (*Guardrails)(nil)

const (
	// BlockedMessage replaces input that hits the blocklist.
	BlockedMessage = "(Input blocked due to policy violation.)"

	// OffTopicMessage answers questions unrelated to account planning.
	OffTopicMessage = "(Your question seems unrelated to account planning. Please ask relevant questions.)"

	maxInputChars   = 6000
	truncatedMarker = "\n(…truncated for safety…)"
)

var (
	controlChars = regexp.MustCompile(`[\x00-\x1f\x7f]`)

	blocklist = []string{"sexual", "porn", "violent", "hate", "terror", "extremist"}

	allowedTopics = []string{
		"revenue", "growth", "financial", "market", "competitors",
		"products", "swot", "account plan", "strategy", "stakeholders",
		"profit", "margin", "ebitda", "forecast", "pricing", "sales", "customer",
	}

	accountPlanPhrases = []string{"structured account plan sections", "create structured account plan"}
)

// ApplyGuardrails replaces control characters with spaces, blocks input
// containing blocklisted words and truncates overly long input.
func ApplyGuardrails(input string) string {
	if input == "" {
		return input
	}
	p := controlChars.ReplaceAllString(input, " ")

	lower := strings.ToLower(p)
	for _, kw := range blocklist {
		if strings.Contains(lower, kw) {
			return BlockedMessage
		}
	}

	if runes := []rune(p); len(runes) > maxInputChars {
		p = string(runes[:maxInputChars]) + truncatedMarker
	}
	return p
}

// ValidateQuestion reports whether text concerns account planning.
func ValidateQuestion(text string) bool {
	t := strings.ToLower(text)
	for _, phrase := range accountPlanPhrases {
		if strings.Contains(t, phrase) {
			return true
		}
	}
	for _, topic := range allowedTopics {
		if strings.Contains(t, topic) {
			return true
		}
	}
	return false
}

// Guardrails screens user questions at the driving edge.
type Guardrails struct {
	// TopicCheck enables account-planning topic validation.
	TopicCheck bool
}

// NewGuardrails creates a guard. With topicCheck off only sanitising and
// blocking apply.
func NewGuardrails(topicCheck bool) *Guardrails {
	return &Guardrails{TopicCheck: topicCheck}
}

// Screen sanitises input. Rejected input returns the user-facing message with
// domain.ErrInputBlocked or domain.ErrOffTopic.
func (g *Guardrails) Screen(input string) (string, error) {
	out := ApplyGuardrails(input)
	if out == BlockedMessage {
		return BlockedMessage, domain.ErrInputBlocked
	}
	if strings.TrimSpace(out) == "" {
		return "", fmt.Errorf("%w: empty input", domain.ErrInvalidInput)
	}
	if g.TopicCheck && !ValidateQuestion(out) {
		return OffTopicMessage, domain.ErrOffTopic
	}
	return out, nil
}
