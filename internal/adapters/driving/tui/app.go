package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/dossier/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/dossier/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/dossier/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/dossier/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/dossier/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/dossier/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/core/ports/driving"
)

const (
	defaultEvidenceK = 5

	// Rows used by the header, the bordered input and the status bar.
	headerHeight = 1
	inputHeight  = 3
	statusHeight = 1
)

// App is the chat application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports   *Ports
	ctx     context.Context
	profile domain.CompanyProfile
	agent   driving.ResearchAgent

	styles *styles.Styles
	keys   *keymap.KeyMap

	input      *input.ChatInput
	transcript viewport.Model
	hints      *list.Hints
	status     *status.Bar

	turns   []messages.Turn
	busy    bool
	kbReady bool
	err     error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a chat about the company in profile.
func NewApp(ports *Ports, profile domain.CompanyProfile) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}
	agent, err := ports.Sessions.Agent(profile)
	if err != nil {
		return nil, fmt.Errorf("creating agent: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()
	bar := status.NewBar(s, km)
	bar.SetCompany(profile.Name)

	a := &App{
		ports:      ports,
		ctx:        context.Background(),
		profile:    agent.Profile(),
		agent:      agent,
		styles:     s,
		keys:       km,
		input:      input.NewChatInput(s),
		transcript: viewport.New(80, 20),
		hints:      list.NewHints(s),
		status:     bar,
	}
	if a.profile.Name == "" {
		a.profile = profile
	}
	a.appendTurn(messages.Turn{
		Role: messages.RoleSystem,
		Text: fmt.Sprintf("Researching %s. Start with /overview, then ask away. Type /help for commands.", profile.Name),
	})
	return a, nil
}

// WithContext sets the context agent calls run under.
func (a *App) WithContext(ctx context.Context) *App {
	if ctx != nil {
		a.ctx = ctx
	}
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.input.Init(),
		tea.SetWindowTitle("dossier - "+a.profile.Name),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		a.transcript, cmd = a.transcript.Update(msg)
		return a, cmd

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.status, cmd = a.status.Update(msg)
		return a, cmd

	case messages.ResponseReady:
		a.busy = false
		a.err = nil
		a.status.Clear()
		if msg.KBReady {
			a.kbReady = true
			a.status.SetKBReady(true)
		}
		a.hints.SetItems(msg.Turn.Followups)
		a.turns = append(a.turns, msg.Turn)
		a.relayout()
		return a, nil

	case messages.ErrorOccurred:
		a.busy = false
		a.err = msg.Err
		a.status.SetError(msg.Err.Error())
		a.appendTurn(messages.Turn{Role: messages.RoleSystem, Text: msg.Err.Error(), Failed: true})
		return a, nil
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := msg.String()
	switch {
	case keymap.Matches(k, a.keys.Quit):
		return a, tea.Quit

	case keymap.Matches(k, a.keys.ScrollUp), keymap.Matches(k, a.keys.ScrollDown):
		var cmd tea.Cmd
		a.transcript, cmd = a.transcript.Update(msg)
		return a, cmd

	case keymap.Matches(k, a.keys.Clear):
		a.turns = nil
		a.refreshTranscript()
		return a, nil

	case keymap.Matches(k, a.keys.NextHint):
		if hint, ok := a.hints.Next(); ok {
			a.input.SetValue(hint)
		}
		return a, nil

	case keymap.Matches(k, a.keys.Send):
		return a, a.submit()
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// submit handles the current input line.
func (a *App) submit() tea.Cmd {
	line := strings.TrimSpace(a.input.Value())
	if line == "" || a.busy {
		return nil
	}
	a.input.Reset()

	req := parseInput(line)
	switch req.Kind {
	case messages.CommandHelp:
		a.appendTurn(messages.Turn{Role: messages.RoleSystem, Text: helpText})
		return nil
	case messages.CommandClear:
		a.turns = nil
		a.hints.SetItems(nil)
		a.refreshTranscript()
		return nil
	case messages.CommandUnknown:
		a.appendTurn(messages.Turn{
			Role:   messages.RoleSystem,
			Text:   fmt.Sprintf("Unknown command /%s. Type /help for commands.", req.Text),
			Failed: true,
		})
		return nil
	case messages.CommandAsk:
		if req.Text == "" {
			a.appendTurn(messages.Turn{Role: messages.RoleSystem, Text: "Usage: /" + string(req.Mode) + " <question>", Failed: true})
			return nil
		}
	case messages.CommandOverview, messages.CommandDeep, messages.CommandReport:
	}

	a.hints.SetItems(nil)
	a.turns = append(a.turns, messages.Turn{Role: messages.RoleUser, Text: line})
	a.relayout()

	if req.Kind == messages.CommandAsk || (req.Kind == messages.CommandReport && req.Text != "") {
		text, ok, err := a.screen(req.Text)
		if err != nil {
			a.appendTurn(messages.Turn{Role: messages.RoleSystem, Text: err.Error(), Failed: true})
			return nil
		}
		if !ok {
			a.appendTurn(messages.Turn{Role: messages.RoleAgent, Text: text})
			return nil
		}
		req.Text = text
	}

	a.busy = true
	return tea.Batch(a.status.StartWork(workLabel(req)), a.run(req))
}

// screen returns the sanitised text, or ok=false and the rejection message.
func (a *App) screen(text string) (string, bool, error) {
	if a.ports.Guard == nil {
		return text, true, nil
	}
	out, err := a.ports.Guard.Screen(text)
	switch {
	case err == nil:
		return out, true, nil
	case errors.Is(err, domain.ErrInputBlocked), errors.Is(err, domain.ErrOffTopic):
		return out, false, nil
	default:
		return "", false, err
	}
}

func workLabel(req messages.Request) string {
	switch req.Kind {
	case messages.CommandOverview:
		return "Searching the web..."
	case messages.CommandDeep:
		return "Collecting PDF reports..."
	case messages.CommandReport:
		return "Drafting the account plan..."
	default:
		return "Researching (" + string(req.Mode) + ")..."
	}
}

// run calls the agent off the UI goroutine.
func (a *App) run(req messages.Request) tea.Cmd {
	agent, ctx, kbReady, ttl := a.agent, a.ctx, a.kbReady, a.ports.TTLDays

	return func() tea.Msg {
		switch req.Kind {
		case messages.CommandOverview:
			ov, err := agent.Overview(ctx)
			if err != nil {
				return messages.ErrorOccurred{Err: fmt.Errorf("overview: %w", err)}
			}
			return messages.ResponseReady{Request: req, Turn: messages.Turn{
				Role:    messages.RoleAgent,
				Text:    ov.Summary,
				Sources: domain.SearchURLs(ov.Results),
			}}

		case messages.CommandDeep:
			rec, err := agent.DeepCollect(ctx, ttl)
			if err != nil {
				return messages.ErrorOccurred{Err: fmt.Errorf("deep collection: %w", err)}
			}
			paths := make([]string, 0, len(rec.Downloaded))
			for _, d := range rec.Downloaded {
				paths = append(paths, d.URL)
			}
			return messages.ResponseReady{
				Request: req,
				Turn: messages.Turn{
					Role:    messages.RoleAgent,
					Text:    fmt.Sprintf("Found %d PDF link(s) and indexed %d document(s).", len(rec.PDFLinks), len(rec.Downloaded)),
					Sources: paths,
				},
				KBReady: len(rec.Downloaded) > 0,
			}

		case messages.CommandReport:
			sections := agent.GenerateReport(ctx, req.Text)
			return messages.ResponseReady{Request: req, Turn: messages.Turn{
				Role: messages.RoleAgent,
				Text: reportText(sections),
			}}

		default:
			ans := agent.Ask(ctx, req.Mode, req.Text, defaultEvidenceK, kbReady)
			text := ans.Answer
			if ans.Card != "" {
				text += "\n\n" + ans.Card
			}
			return messages.ResponseReady{Request: req, Turn: messages.Turn{
				Role:      messages.RoleAgent,
				Text:      text,
				Sources:   ans.Sources,
				Followups: ans.Followups,
			}}
		}
	}
}

func reportText(sections domain.ReportSections) string {
	var b strings.Builder
	for _, key := range domain.ExpectedSectionKeys() {
		body := strings.TrimSpace(sections[key])
		if body == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("## " + key + "\n" + body)
	}
	if b.Len() == 0 {
		return "No report content was generated."
	}
	return b.String()
}

func (a *App) appendTurn(t messages.Turn) {
	a.turns = append(a.turns, t)
	a.refreshTranscript()
}

// refreshTranscript re-renders every turn and scrolls to the newest.
func (a *App) refreshTranscript() {
	width := a.transcript.Width
	if width <= 0 {
		width = 80
	}
	wrap := lipgloss.NewStyle().Width(width - 2)

	parts := make([]string, 0, len(a.turns))
	for _, t := range a.turns {
		var b strings.Builder
		switch t.Role {
		case messages.RoleUser:
			b.WriteString(a.styles.UserLabel.Render(string(t.Role)) + "\n")
		case messages.RoleAgent:
			b.WriteString(a.styles.AgentLabel.Render(string(t.Role)) + "\n")
		case messages.RoleSystem:
		}

		text := wrap.Render(t.Text)
		switch {
		case t.Failed:
			text = a.styles.Error.Render(text)
		case t.Role == messages.RoleSystem:
			text = a.styles.Muted.Render(text)
		}
		b.WriteString(text)

		for i, src := range t.Sources {
			b.WriteString(fmt.Sprintf("\n  [%d] %s", i+1, a.styles.Source.Render(src)))
		}
		parts = append(parts, b.String())
	}

	a.transcript.SetContent(strings.Join(parts, "\n\n"))
	a.transcript.GotoBottom()
}

// relayout resizes for the current hints, or just re-renders before the
// first WindowSizeMsg.
func (a *App) relayout() {
	if a.ready {
		a.layout()
		return
	}
	a.refreshTranscript()
}

func (a *App) layout() {
	h := a.height - headerHeight - inputHeight - statusHeight - a.hints.Height()
	if h < 3 {
		h = 3
	}
	a.transcript.Width = a.width
	a.transcript.Height = h
	a.input.SetWidth(a.width)
	a.hints.SetWidth(a.width)
	a.status.SetWidth(a.width)
	a.refreshTranscript()
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	header := a.styles.Title.Render("dossier") + a.styles.Muted.Render(fmt.Sprintf(
		" · %s · last %d years · %s", a.profile.Name, a.profile.Years, a.profile.DepartmentOrDefault()))

	parts := []string{header, a.transcript.View()}
	if hints := a.hints.View(); hints != "" {
		parts = append(parts, hints)
	}
	parts = append(parts, a.input.View(), a.status.View())
	return strings.Join(parts, "\n")
}

// Turns returns the transcript.
func (a *App) Turns() []messages.Turn {
	return a.turns
}

// Busy reports whether an agent call is in flight.
func (a *App) Busy() bool {
	return a.busy
}

// KBReady reports whether deep collection has indexed documents.
func (a *App) KBReady() bool {
	return a.kbReady
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has received its dimensions.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.layout()
}
