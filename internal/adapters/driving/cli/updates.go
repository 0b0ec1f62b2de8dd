package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/dossier/internal/adapters/driving/oauth"
)

const loginTimeout = 5 * time.Minute

var updatesJSON bool

var updatesCmd = &cobra.Command{
	Use:   "updates",
	Short: "Show recent LinkedIn activity for the company",
	Long: `Shows share statistics for the company's LinkedIn organization page.

Requires a LinkedIn access token. Run 'dossier updates login' once to obtain one.`,
	Args: cobra.NoArgs,
	RunE: runUpdates,
}

var updatesLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authorize dossier to read LinkedIn organization data",
	Long: `Opens the LinkedIn consent page in a browser and waits for the redirect on
the configured loopback URL. The access token is saved to the config file.

Configure the OAuth client first:
  dossier settings linkedin`,
	Args: cobra.NoArgs,
	RunE: runUpdatesLogin,
}

func init() {
	updatesCmd.Flags().BoolVar(&updatesJSON, "json", false, "output updates as JSON")
	updatesCmd.AddCommand(updatesLoginCmd)
	rootCmd.AddCommand(updatesCmd)
}

func runUpdates(cmd *cobra.Command, _ []string) error {
	agent, err := currentAgent()
	if err != nil {
		return err
	}

	updates, err := agent.Updates(cmd.Context())
	if err != nil {
		return fmt.Errorf("fetching updates: %w", err)
	}
	if updatesJSON {
		return printJSON(cmd, updates)
	}

	if len(updates) == 0 {
		cmd.Println("No updates found.")
		return nil
	}
	for _, u := range updates {
		cmd.Printf("- %s\n", u.Text)
		if u.Impressions > 0 {
			cmd.Printf("    impressions: %d  engagement: %.2f%%\n", u.Impressions, u.Engagement*100)
		}
		if u.URL != "" {
			cmd.Printf("    %s\n", u.URL)
		}
	}
	return nil
}

func runUpdatesLogin(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	if feedAuthorizer == nil {
		return errors.New("LinkedIn client not configured (run 'dossier settings linkedin')")
	}

	state, err := oauth.GenerateState()
	if err != nil {
		return fmt.Errorf("generating state: %w", err)
	}
	server, err := oauth.NewCallbackServerForRedirect(feedAuthorizer.RedirectURL(), state)
	if err != nil {
		return err
	}
	if err := server.Start(); err != nil {
		return fmt.Errorf("starting callback server: %w", err)
	}
	defer server.Stop() //nolint:errcheck

	verifier := feedAuthorizer.NewVerifier()
	authURL := feedAuthorizer.AuthCodeURL(state, verifier)

	cmd.Println("Opening LinkedIn in your browser. If it does not open, visit:")
	cmd.Println()
	cmd.Println("  " + authURL)
	cmd.Println()
	if err := oauth.OpenBrowser(authURL); err != nil {
		cmd.Printf("Could not open browser: %v\n", err)
	}

	cmd.Println("Waiting for authorization...")
	code, err := server.WaitForCode(cmd.Context(), loginTimeout)
	if err != nil {
		return fmt.Errorf("authorization failed: %w", err)
	}

	token, err := feedAuthorizer.Exchange(cmd.Context(), code, verifier)
	if err != nil {
		return fmt.Errorf("exchanging code: %w", err)
	}
	if err := settingsService.SetLinkedIn("", "", "", token); err != nil {
		return fmt.Errorf("saving token: %w", err)
	}

	cmd.Println("LinkedIn authorization saved.")
	return nil
}
