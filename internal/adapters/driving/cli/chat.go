package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/dossier/internal/adapters/driving/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Open an interactive research chat",
	Long: `Opens a terminal chat about the company given with --company.

Plain questions run the multi-agent answer pipeline. Slash commands:
  /overview  - refresh the web overview
  /deep      - download and index PDF reports
  /report    - generate the account plan (text after it is the directive)
  /quick, /evidence, /hybrid <question> - use another answer mode

Controls:
  Enter      - Send
  PgUp/PgDn  - Scroll transcript
  Ctrl+C     - Quit`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	if sessionPool == nil {
		return errors.New("research service not configured")
	}
	profile := currentProfile()
	if profile.Name == "" {
		return errors.New("company is required (use --company)")
	}

	app, err := tui.NewApp(&tui.Ports{
		Sessions: sessionPool,
		Guard:    guard,
		TTLDays:  cacheTTLDays,
	}, profile)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(cmd.Context())

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
