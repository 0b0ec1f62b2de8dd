// Package cli provides the command-line interface for dossier.
package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/core/ports/driving"
	"github.com/custodia-labs/dossier/internal/logger"
)

// version is overridden at build time with -ldflags.
var version = "dev"

// Services injected by the composition root.
var (
	sessionPool     driving.SessionPool
	settingsService driving.SettingsService
	guard           driving.Guard
	feedAuthorizer  driving.FeedAuthorizer
	cacheTTLDays    = 30
)

// Persistent flags.
var (
	companyName   string
	researchYears int
	department    string
	verbose       bool
)

var rootCmd = &cobra.Command{
	Use:   "dossier",
	Short: "Company research and account planning assistant",
	Long: `Dossier researches a company from the web and its published PDF reports,
answers questions with cited evidence and drafts a structured account plan.

Typical flow:
  dossier overview -c "Acme Corp"
  dossier deep -c "Acme Corp"
  dossier ask -c "Acme Corp" "What was revenue in 2023?"
  dossier report -c "Acme Corp" --render`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&companyName, "company", "c", "", "company to research")
	flags.IntVar(&researchYears, "years", domain.DefaultResearchYears, "look-back window in years")
	flags.StringVar(&department, "dept", "", "department the account plan targets")
	flags.BoolVarP(&verbose, "verbose", "v", false, "show pipeline progress")
}

// Services holds the driving ports the CLI commands use.
type Services struct {
	Sessions       driving.SessionPool
	Settings       driving.SettingsService
	Guard          driving.Guard
	FeedAuthorizer driving.FeedAuthorizer

	// CacheTTLDays is the default freshness window for deep collection.
	CacheTTLDays int
}

// SetServices injects the services used by every command.
func SetServices(s Services) {
	sessionPool = s.Sessions
	settingsService = s.Settings
	guard = s.Guard
	feedAuthorizer = s.FeedAuthorizer
	if s.CacheTTLDays > 0 {
		cacheTTLDays = s.CacheTTLDays
	}
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// currentProfile builds the research target from the persistent flags.
func currentProfile() domain.CompanyProfile {
	return domain.CompanyProfile{
		Name:       strings.TrimSpace(companyName),
		Years:      researchYears,
		Department: department,
	}
}

// currentAgent returns the agent for the --company flag.
func currentAgent() (driving.ResearchAgent, error) {
	if sessionPool == nil {
		return nil, errors.New("research service not configured")
	}
	p := currentProfile()
	if p.Name == "" {
		return nil, errors.New("company is required (use --company)")
	}
	return sessionPool.Agent(p)
}

// screenInput runs user text through the guard. ok is false when the
// returned text is a rejection message to show instead of an answer.
func screenInput(text string) (string, bool, error) {
	if guard == nil {
		return text, true, nil
	}
	out, err := guard.Screen(text)
	switch {
	case err == nil:
		return out, true, nil
	case errors.Is(err, domain.ErrInputBlocked), errors.Is(err, domain.ErrOffTopic):
		return out, false, nil
	default:
		return "", false, err
	}
}
