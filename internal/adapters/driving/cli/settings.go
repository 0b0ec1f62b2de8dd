package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/dossier/internal/core/domain"
)

// settingsInput is the reader the interactive prompts use. Tests replace it.
var settingsInput io.Reader = os.Stdin

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the LLM, embedding and web search providers, and the
LinkedIn client used for company updates.

Use subcommands to configure specific settings or run the interactive wizard.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard to configure all settings step by step.`,
	RunE:  runSettingsWizard,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider",
	Long: `Configure the embedding provider used to index PDF evidence.
Without one, evidence search falls back to deterministic pseudo-random vectors.`,
	RunE: runSettingsEmbedding,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure LLM provider",
	Long:  `Configure the LLM provider used for planning, summaries, answers and reports.`,
	RunE:  runSettingsLLM,
}

var settingsSearchCmd = &cobra.Command{
	Use:   "search",
	Short: "Configure web search provider",
	RunE:  runSettingsSearch,
}

var settingsLinkedInCmd = &cobra.Command{
	Use:   "linkedin",
	Short: "Configure the LinkedIn OAuth client",
	Long: `Store the client ID, secret and loopback redirect URL of a LinkedIn app.
Then run 'dossier updates login' to authorize.`,
	RunE: runSettingsLinkedIn,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	settingsCmd.AddCommand(settingsSearchCmd)
	settingsCmd.AddCommand(settingsLinkedInCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[LLM]")
	cmd.Printf("  Provider: %s\n", settings.LLM.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.LLM.Model)
	if len(settings.LLM.Candidates) > 0 {
		cmd.Printf("  Candidates: %s\n", strings.Join(settings.LLM.Candidates, ", "))
	}
	if settings.LLM.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", settings.LLM.BaseURL)
	}
	printKey(cmd, settings.LLM.Provider.RequiresAPIKey(), settings.LLM.APIKey)
	printStatus(cmd, settings.LLM.IsConfigured())

	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", settings.Embedding.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.Embedding.Model)
	if settings.Embedding.Provider.IsLocal() {
		cmd.Printf("  Base URL: %s\n", settings.Embedding.BaseURL)
	}
	printKey(cmd, settings.Embedding.Provider.RequiresAPIKey(), settings.Embedding.APIKey)
	printStatus(cmd, settings.Embedding.IsConfigured())

	cmd.Println("[Search]")
	cmd.Printf("  Provider: %s\n", settings.Search.Provider.Description())
	if settings.Search.Provider == domain.SearchProviderGoogleCSE {
		cmd.Printf("  Engine ID: %s\n", settings.Search.CX)
	}
	printKey(cmd, settings.Search.Provider.RequiresAPIKey(), settings.Search.APIKey)
	printStatus(cmd, settings.Search.IsConfigured())

	cmd.Println("[Research]")
	cmd.Printf("  Years: %d\n", settings.Research.Years)
	cmd.Printf("  Timebox: %d min\n", settings.Research.TimeboxMinutes)
	cmd.Printf("  Cache TTL: %d days\n", settings.Research.CacheTTLDays)
	cmd.Printf("  EUR/USD: %.4f\n", settings.Research.EURUSDRate)
	cmd.Printf("  Max PDFs: %d, max pages: %d\n", settings.Research.MaxPDFs, settings.Research.MaxPages)
	cmd.Printf("  Render pages: %t\n", settings.Research.RenderPages)
	cmd.Println()

	cmd.Println("[Storage]")
	cmd.Printf("  Cache: %s (%s)\n", settings.Cache.Backend, settings.Cache.Dir)
	cmd.Printf("  Extractor: %s\n", settings.Extractor.Backend)
	if settings.Extractor.Backend == domain.ExtractorTika {
		cmd.Printf("  Tika URL: %s\n", settings.Extractor.TikaURL)
	}
	cmd.Println()

	cmd.Println("[LinkedIn]")
	if settings.LinkedIn.ClientID != "" {
		cmd.Printf("  Client ID: %s\n", settings.LinkedIn.ClientID)
		cmd.Printf("  Redirect URL: %s\n", settings.LinkedIn.RedirectURL)
	}
	if settings.LinkedIn.AccessToken != "" {
		cmd.Printf("  Access Token: %s\n", maskAPIKey(settings.LinkedIn.AccessToken))
	}
	printStatus(cmd, settings.LinkedIn.IsConfigured())

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'dossier settings wizard' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func printKey(cmd *cobra.Command, required bool, key string) {
	if !required {
		return
	}
	if key != "" {
		cmd.Printf("  API Key: %s\n", maskAPIKey(key))
	} else {
		cmd.Printf("  API Key: (not set)\n")
	}
}

func printStatus(cmd *cobra.Command, configured bool) {
	status := "configured"
	if !configured {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	cmd.Println("Dossier Settings Wizard")
	cmd.Println("=======================")
	cmd.Println()

	reader := bufio.NewReader(settingsInput)

	cmd.Println("Step 1: Configure LLM Provider")
	cmd.Println("------------------------------")
	if err := configureLLMProvider(cmd, reader); err != nil {
		return err
	}

	cmd.Println("Step 2: Configure Web Search")
	cmd.Println("----------------------------")
	if err := configureSearchProvider(cmd, reader); err != nil {
		return err
	}

	cmd.Println("Step 3: Configure Embedding Provider (optional)")
	cmd.Println("-----------------------------------------------")
	cmd.Print("Configure embeddings for PDF evidence search? [y/N]: ")
	if strings.EqualFold(readLine(reader), "y") {
		if err := configureEmbeddingProvider(cmd, reader); err != nil {
			return err
		}
	} else {
		cmd.Println("Skipped. Evidence search will use fallback vectors.")
		cmd.Println()
	}

	cmd.Println("Configuration Complete!")
	cmd.Println("=======================")
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("All settings are valid and saved.")
	}

	return nil
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	return configureEmbeddingProvider(cmd, bufio.NewReader(settingsInput))
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	return configureLLMProvider(cmd, bufio.NewReader(settingsInput))
}

func runSettingsSearch(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	return configureSearchProvider(cmd, bufio.NewReader(settingsInput))
}

func runSettingsLinkedIn(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	reader := bufio.NewReader(settingsInput)

	cmd.Print("Client ID: ")
	clientID := readLine(reader)
	cmd.Print("Client secret: ")
	secret := readSecret(reader)
	cmd.Println()
	cmd.Print("Redirect URL [http://localhost:8765/callback]: ")
	redirect := readLine(reader)
	if redirect == "" {
		redirect = "http://localhost:8765/callback"
	}

	if clientID == "" || secret == "" {
		return errors.New("client ID and secret are required")
	}
	if err := settingsService.SetLinkedIn(clientID, secret, redirect, ""); err != nil {
		return fmt.Errorf("failed to save LinkedIn settings: %w", err)
	}
	cmd.Println("LinkedIn client saved. Run 'dossier updates login' to authorize.")
	return nil
}

//nolint:dupl // Similar to configureLLMProvider but for embeddings - intentional for CLI flow clarity
func configureEmbeddingProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select Embedding Provider")
	providers := domain.AllEmbeddingProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	selectedProvider := providers[idx-1]

	defaultModel := domain.DefaultEmbeddingModels()[selectedProvider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	var apiKey string
	if selectedProvider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readSecret(reader)
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := settingsService.SetEmbeddingProvider(selectedProvider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}

	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateEmbeddingConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("embedding configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("Embedding provider configured: %s (%s)\n\n", selectedProvider.Description(), model)
	return nil
}

//nolint:dupl // Similar to configureEmbeddingProvider but for LLM - intentional for CLI flow clarity
func configureLLMProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select LLM Provider")
	providers := domain.AllLLMProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	selectedProvider := providers[idx-1]

	defaultModel := domain.DefaultLLMModels()[selectedProvider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	var apiKey string
	if selectedProvider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readSecret(reader)
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := settingsService.SetLLMProvider(selectedProvider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure LLM provider: %w", err)
	}

	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateLLMConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("LLM configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("LLM provider configured: %s (%s)\n\n", selectedProvider.Description(), model)
	return nil
}

func configureSearchProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select Search Provider")
	providers := domain.AllSearchProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	selectedProvider := providers[idx-1]

	var apiKey, cx string
	if selectedProvider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readSecret(reader)
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}
	if selectedProvider == domain.SearchProviderGoogleCSE {
		cmd.Print("Enter search engine ID (cx): ")
		cx = readLine(reader)
		if cx == "" {
			return errors.New("search engine ID is required for Google Programmable Search")
		}
	}

	if err := settingsService.SetSearchProvider(selectedProvider, apiKey, cx); err != nil {
		return fmt.Errorf("failed to configure search provider: %w", err)
	}

	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateSearchConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("search configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("Search provider configured: %s\n\n", selectedProvider.Description())
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readSecret reads without echo when stdin is a terminal, otherwise from reader.
func readSecret(reader *bufio.Reader) string {
	if f, ok := settingsInput.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
