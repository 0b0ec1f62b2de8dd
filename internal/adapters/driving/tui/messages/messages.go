// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/dossier/internal/core/domain"
)

// Role identifies who produced a transcript turn.
type Role string

const (
	RoleUser   Role = "you"
	RoleAgent  Role = "dossier"
	RoleSystem Role = "system"
)

// Turn is one entry in the chat transcript.
type Turn struct {
	Role      Role
	Text      string
	Sources   []string
	Followups []string

	// Failed marks turns that report an error.
	Failed bool
}

// CommandKind is what a line of input asks the agent to do.
type CommandKind int

const (
	// CommandAsk answers a question in Mode.
	CommandAsk CommandKind = iota
	// CommandOverview refreshes the web overview.
	CommandOverview
	// CommandDeep runs deep PDF collection.
	CommandDeep
	// CommandReport generates the account plan; Text is the directive.
	CommandReport
	// CommandHelp lists the slash commands.
	CommandHelp
	// CommandClear empties the transcript.
	CommandClear
	// CommandUnknown is an unrecognised slash command.
	CommandUnknown
)

// String returns the slash form of the command.
func (k CommandKind) String() string {
	switch k {
	case CommandAsk:
		return "ask"
	case CommandOverview:
		return "/overview"
	case CommandDeep:
		return "/deep"
	case CommandReport:
		return "/report"
	case CommandHelp:
		return "/help"
	case CommandClear:
		return "/clear"
	default:
		return "unknown"
	}
}

// Request is a parsed line of input.
type Request struct {
	Kind CommandKind
	Mode domain.AskMode
	Text string
}

// NeedsAgent reports whether the request calls the research agent.
func (r Request) NeedsAgent() bool {
	switch r.Kind {
	case CommandAsk, CommandOverview, CommandDeep, CommandReport:
		return true
	default:
		return false
	}
}

// ResponseReady carries the agent's reply back to the model.
type ResponseReady struct {
	Request Request
	Turn    Turn

	// KBReady is true once a deep collection has completed.
	KBReady bool
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}
