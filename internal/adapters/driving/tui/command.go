package tui

import (
	"strings"

	"github.com/custodia-labs/dossier/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/dossier/internal/core/domain"
)

const helpText = `Type a question to run the full research pipeline. Commands:
  /overview              refresh the web overview
  /deep                  download and index PDF reports
  /report [directive]    generate the account plan
  /quick <question>      answer from overview snippets only
  /evidence <question>   answer from PDF evidence with an evidence card
  /hybrid <question>     combine overview snippets and PDF evidence
  /clear                 clear the transcript
  /help                  show this help`

// parseInput turns a line of chat input into a request.
func parseInput(line string) messages.Request {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "/") {
		return messages.Request{Kind: messages.CommandAsk, Mode: domain.AskModeMulti, Text: line}
	}

	name, rest, _ := strings.Cut(line[1:], " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(name) {
	case "overview":
		return messages.Request{Kind: messages.CommandOverview}
	case "deep":
		return messages.Request{Kind: messages.CommandDeep}
	case "report":
		return messages.Request{Kind: messages.CommandReport, Text: rest}
	case "help", "?":
		return messages.Request{Kind: messages.CommandHelp}
	case "clear":
		return messages.Request{Kind: messages.CommandClear}
	case "quick", "evidence", "hybrid", "multi":
		mode, _ := domain.ParseAskMode(strings.ToLower(name)) //nolint:errcheck // names checked above
		return messages.Request{Kind: messages.CommandAsk, Mode: mode, Text: rest}
	default:
		return messages.Request{Kind: messages.CommandUnknown, Text: name}
	}
}
