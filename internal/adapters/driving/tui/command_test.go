package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/dossier/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/dossier/internal/core/domain"
)

func TestParseInput(t *testing.T) {
	tests := []struct {
		in   string
		want messages.Request
	}{
		{"What was revenue?", messages.Request{Kind: messages.CommandAsk, Mode: domain.AskModeMulti, Text: "What was revenue?"}},
		{"  padded  ", messages.Request{Kind: messages.CommandAsk, Mode: domain.AskModeMulti, Text: "padded"}},
		{"/overview", messages.Request{Kind: messages.CommandOverview}},
		{"/deep", messages.Request{Kind: messages.CommandDeep}},
		{"/report", messages.Request{Kind: messages.CommandReport}},
		{"/report focus on EMEA", messages.Request{Kind: messages.CommandReport, Text: "focus on EMEA"}},
		{"/quick revenue 2023", messages.Request{Kind: messages.CommandAsk, Mode: domain.AskModeQuick, Text: "revenue 2023"}},
		{"/Evidence margins", messages.Request{Kind: messages.CommandAsk, Mode: domain.AskModeEvidence, Text: "margins"}},
		{"/hybrid growth", messages.Request{Kind: messages.CommandAsk, Mode: domain.AskModeHybrid, Text: "growth"}},
		{"/help", messages.Request{Kind: messages.CommandHelp}},
		{"/?", messages.Request{Kind: messages.CommandHelp}},
		{"/clear", messages.Request{Kind: messages.CommandClear}},
		{"/frobnicate now", messages.Request{Kind: messages.CommandUnknown, Text: "frobnicate"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseInput(tt.in))
		})
	}
}
