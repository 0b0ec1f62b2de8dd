package domain

import "fmt"

// SynthesisResult is a synthesized answer with its supporting material.
type SynthesisResult struct {
	Answer  string        `json:"answer"`
	Sources []string      `json:"sources"`
	Hits    []EvidenceHit `json:"hits"`
}

// MultiAnswer is the result of the multi-agent question pipeline.
type MultiAnswer struct {
	SynthesisResult
	Followups []string `json:"followups"`
}

// QuickAnswer is an answer built from cached overview snippets only.
type QuickAnswer struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}

// EvidenceAnswer is a claim backed by indexed PDF evidence.
type EvidenceAnswer struct {
	Claim   string        `json:"claim"`
	Sources []string      `json:"sources"`
	Card    string        `json:"card"`
	Hits    []EvidenceHit `json:"hits"`
}

// AskMode selects which answering pipeline handles a question.
type AskMode string

// Available ask modes.
const (
	// AskModeMulti runs plan, retrieve, synthesize and critique.
	AskModeMulti AskMode = "multi"
	// AskModeQuick answers from cached overview snippets.
	AskModeQuick AskMode = "quick"
	// AskModeEvidence answers from indexed PDF evidence with an evidence card.
	AskModeEvidence AskMode = "evidence"
	// AskModeHybrid combines overview snippets and PDF evidence.
	AskModeHybrid AskMode = "hybrid"
)

// ParseAskMode maps a user-supplied mode to an AskMode. Empty means multi.
func ParseAskMode(s string) (AskMode, error) {
	switch m := AskMode(s); m {
	case "":
		return AskModeMulti, nil
	case AskModeMulti, AskModeQuick, AskModeEvidence, AskModeHybrid:
		return m, nil
	default:
		return "", fmt.Errorf("%w: unknown ask mode %q (want multi, quick, evidence or hybrid)", ErrInvalidInput, s)
	}
}

// Answer is the common shape returned by every ask mode.
type Answer struct {
	Mode      AskMode       `json:"mode"`
	Answer    string        `json:"answer"`
	Card      string        `json:"card,omitempty"`
	Sources   []string      `json:"sources"`
	Hits      []EvidenceHit `json:"hits,omitempty"`
	Followups []string      `json:"followups,omitempty"`
}
