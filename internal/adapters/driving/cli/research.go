package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/dossier/internal/core/domain"
)

var (
	askMode    string
	askK       int
	askKBReady bool
	askJSON    bool

	deepTTL int

	reportDirective string
	reportRender    bool
	reportJSON      bool

	financialDocs int
	planKBReady   bool
)

var overviewCmd = &cobra.Command{
	Use:   "overview",
	Short: "Search the web for a company overview",
	Long: `Runs broad web searches about the company, summarises the snippets and
caches the result. Most other commands read this overview.`,
	Args: cobra.NoArgs,
	RunE: runOverview,
}

var clarifyCmd = &cobra.Command{
	Use:   "clarify",
	Short: "Suggest clarifying questions for the research scope",
	Args:  cobra.NoArgs,
	RunE:  runClarify,
}

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about the company",
	Long: `Answers a question from web snippets, the cached overview and indexed PDF evidence.

Modes:
  multi    - plan, search, synthesise and critique with one retry (default)
  quick    - cached overview snippets only
  evidence - indexed PDF evidence with an evidence card
  hybrid   - overview snippets plus PDF evidence`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

var deepCmd = &cobra.Command{
	Use:   "deep",
	Short: "Download and index the company's PDF reports",
	Long: `Follows the overview results, downloads linked PDF reports into the cache
and indexes their text for evidence answers. Cached downloads younger than
--ttl days are reused; --ttl 0 forces a fresh crawl.`,
	Args: cobra.NoArgs,
	RunE: runDeep,
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a structured account plan",
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

var financialsCmd = &cobra.Command{
	Use:   "financials",
	Short: "Extract a yearly revenue series from collected PDFs",
	Args:  cobra.NoArgs,
	RunE:  runFinancials,
}

var planCmd = &cobra.Command{
	Use:   "plan [request]",
	Short: "Show the searches planned for a request",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPlan,
}

func init() {
	askCmd.Flags().StringVarP(&askMode, "mode", "m", string(domain.AskModeMulti), "answering mode: multi, quick, evidence or hybrid")
	askCmd.Flags().IntVar(&askK, "k", 5, "number of evidence chunks to consult")
	askCmd.Flags().BoolVar(&askKBReady, "kb", false, "deep collection has already run")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")

	deepCmd.Flags().IntVar(&deepTTL, "ttl", -1, "reuse cached documents younger than this many days (default from settings)")

	reportCmd.Flags().StringVarP(&reportDirective, "directive", "d", "", "what the account plan should focus on")
	reportCmd.Flags().BoolVar(&reportRender, "render", false, "also write an HTML document into the cache")
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "output sections as JSON")

	financialsCmd.Flags().IntVar(&financialDocs, "max-docs", 9, "maximum number of PDFs to scan")

	planCmd.Flags().BoolVar(&planKBReady, "kb", false, "deep collection has already run")

	rootCmd.AddCommand(overviewCmd)
	rootCmd.AddCommand(clarifyCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(deepCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(financialsCmd)
	rootCmd.AddCommand(planCmd)
}

func runOverview(cmd *cobra.Command, _ []string) error {
	agent, err := currentAgent()
	if err != nil {
		return err
	}

	ov, err := agent.Overview(cmd.Context())
	if err != nil {
		return fmt.Errorf("overview failed: %w", err)
	}

	cmd.Println(ov.Summary)
	if len(ov.Results) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for i, hit := range ov.Results {
			cmd.Printf("  [%d] %s\n      %s\n", i+1, hit.Title, hit.URL)
		}
	}
	return nil
}

func runClarify(cmd *cobra.Command, _ []string) error {
	agent, err := currentAgent()
	if err != nil {
		return err
	}
	cmd.Println(agent.Clarify(cmd.Context()))
	return nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	mode, err := domain.ParseAskMode(askMode)
	if err != nil {
		return err
	}

	question, ok, err := screenInput(strings.Join(args, " "))
	if err != nil {
		return err
	}
	if !ok {
		cmd.Println(question)
		return nil
	}

	agent, err := currentAgent()
	if err != nil {
		return err
	}

	answer := agent.Ask(cmd.Context(), mode, question, askK, askKBReady)
	if askJSON {
		return printJSON(cmd, answer)
	}

	cmd.Println(answer.Answer)
	if answer.Card != "" {
		cmd.Println()
		cmd.Println(answer.Card)
	}
	printList(cmd, "Sources:", answer.Sources)
	printList(cmd, "You could also ask:", answer.Followups)
	return nil
}

func runDeep(cmd *cobra.Command, _ []string) error {
	agent, err := currentAgent()
	if err != nil {
		return err
	}

	ttl := deepTTL
	if ttl < 0 {
		ttl = cacheTTLDays
	}

	rec, err := agent.DeepCollect(cmd.Context(), ttl)
	if err != nil {
		return fmt.Errorf("deep collection failed: %w", err)
	}

	cmd.Printf("Found %d PDF link(s), downloaded %d document(s).\n", len(rec.PDFLinks), len(rec.Downloaded))
	for _, doc := range rec.Downloaded {
		cmd.Printf("  %s\n      %s\n", doc.Path, doc.URL)
	}
	return nil
}

func runReport(cmd *cobra.Command, _ []string) error {
	directive := reportDirective
	if strings.TrimSpace(directive) != "" {
		screened, ok, err := screenInput(directive)
		if err != nil {
			return err
		}
		if !ok {
			cmd.Println(screened)
			return nil
		}
		directive = screened
	}

	agent, err := currentAgent()
	if err != nil {
		return err
	}

	sections := agent.GenerateReport(cmd.Context(), directive)
	if reportJSON {
		if err := printJSON(cmd, sections); err != nil {
			return err
		}
	} else {
		printSections(cmd, sections)
	}

	if reportRender {
		path, err := agent.RenderReport(cmd.Context(), sections)
		if err != nil {
			return fmt.Errorf("rendering report: %w", err)
		}
		cmd.Printf("\nReport written to %s\n", path)
	}
	return nil
}

func runFinancials(cmd *cobra.Command, _ []string) error {
	agent, err := currentAgent()
	if err != nil {
		return err
	}

	fin := agent.ExtractFinancials(cmd.Context(), financialDocs)
	if len(fin.Series) == 0 {
		cmd.Println("No revenue figures found.")
	} else {
		cmd.Println("Year  Revenue (USD bn)  Source")
		for _, p := range fin.Series {
			cmd.Printf("%d  %16.2f  %s\n", p.Year, p.ValueBilUSD, p.Source)
		}
	}
	if fin.Notes != "" {
		cmd.Println()
		cmd.Println(fin.Notes)
	}
	return nil
}

func runPlan(cmd *cobra.Command, args []string) error {
	agent, err := currentAgent()
	if err != nil {
		return err
	}

	plan := agent.Plan(cmd.Context(), strings.Join(args, " "), planKBReady)
	cmd.Printf("Fresh search: %t\n", plan.NeedFreshSearch)
	printList(cmd, "Queries:", plan.SearchQueries)
	printList(cmd, "Follow-ups:", plan.Followups)
	return nil
}

func printSections(cmd *cobra.Command, sections domain.ReportSections) {
	first := true
	for _, key := range domain.ExpectedSectionKeys() {
		body := strings.TrimSpace(sections[key])
		if body == "" {
			continue
		}
		if !first {
			cmd.Println()
		}
		first = false
		cmd.Printf("## %s\n\n%s\n", key, body)
	}
	if first {
		cmd.Println("No report content was generated.")
	}
}

func printList(cmd *cobra.Command, title string, items []string) {
	if len(items) == 0 {
		return
	}
	cmd.Println()
	cmd.Println(title)
	for _, item := range items {
		cmd.Printf("  - %s\n", item)
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
