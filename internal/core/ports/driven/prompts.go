package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names used throughout the application.
// Templates use indexed fmt verbs; the comment on each name lists its arguments.
const (
	// PromptSystem is the system persona for every generation. No arguments.
	PromptSystem = "system"

	// PromptPlannerQueries asks for web queries. Args: company, user request.
	PromptPlannerQueries = "planner_queries"

	// PromptSynthesizeAnswer composes a chat answer.
	// Args: company, question, overview snippets, PDF sources, fresh snippets.
	PromptSynthesizeAnswer = "synthesize_answer"

	// PromptReportSections builds the structured account plan.
	// Args: company, directive, overview text, fresh snippets.
	PromptReportSections = "report_sections"

	// PromptStructuredSections requests directive-aware JSON sections.
	// Args: expected keys, company, years, department, directive.
	PromptStructuredSections = "structured_sections"

	// PromptOverviewSummary summarises overview snippets. Args: snippets.
	PromptOverviewSummary = "overview_summary"

	// PromptClarify asks clarifying questions. Args: company, years, department.
	PromptClarify = "clarify"

	// PromptQuickAnswer answers from overview snippets. Args: snippets, question.
	PromptQuickAnswer = "quick_answer"

	// PromptEvidenceClaim answers from PDF sources. Args: question, sources.
	PromptEvidenceClaim = "evidence_claim"

	// PromptEvidenceCard formats an evidence card. Args: claim, sources.
	PromptEvidenceCard = "evidence_card"

	// PromptEvidenceCardEmpty is used when there are no sources. No arguments.
	PromptEvidenceCardEmpty = "evidence_card_empty"

	// PromptHybridAnswer answers from overview and PDF context. Args: question, context.
	PromptHybridAnswer = "hybrid_answer"
)

// DefaultPrompts returns the built-in prompt templates keyed by name.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
func DefaultPrompts() map[string]string {
	return map[string]string{
		PromptSystem: `You are a research-driven, context-aware assistant for company analysis and account planning. Your goals: (1) retrieve facts from reliable sources, (2) synthesize concise, useful analysis aligned with user intent, (3) ask short, targeted follow-ups or next-step suggestions when they materially improve outcomes. Be conversational, constructive, and natural; prioritize clarity over verbosity. When citing data, include URLs. Never output ASCII graphs; use plain text or references only. Remove odd escapes (\\#, \\*, \\- ) and keep clean Markdown. Insert spaces between units and numbers (e.g., 'EUR 19.22B'). Handle different user types (confused, efficient, chatty, and edge cases) by adapting tone and structure. If data is not publicly available, say exactly 'Not publicly available'.`,

		PromptPlannerQueries: `Derive 2–4 focused web search queries from the user's request. Queries MUST be specific to the company and the metrics/entities mentioned. No bullets, no commentary, one query per line.
Company: %[1]s
User request: %[2]s
`,

		PromptSynthesizeAnswer: `Company: %[1]s
Question: %[2]s

Use ALL available context (overview + KB evidence + fresh web snippets).
Produce a direct, well-reasoned answer with:
- 1 short paragraph summarizing the answer and key drivers/insights
- 3–5 bullets of suggestions or inferred implications (NOT just restating data)
Rules:
- Plain Markdown only (no backslashes, no odd escapes)
- Include numbers with spaces (e.g., 'USD 20.8B')
- If confidence is low, explicitly say what's missing and propose follow-ups

Overview snippets:
%[3]s

KB PDF sources:
%[4]s

Fresh web snippets:
%[5]s
`,

		PromptReportSections: `Create a structured account plan for %[1]s.
Directive from user: %[2]s
Sections required:
- Company Overview (3–5 bullets)
- Main Products (5–8 items)
- Competitors (6–10 names + 1-line descriptors)
- Market Position (2–4 bullets)
- Financial Summary (revenue, growth %% if present)
- SWOT Analysis (4–6 bullets each)
- If the directive requests a TOP PRODUCTS TABLE with revenue, produce a Markdown table:
  | Product | FY (year) | Revenue (USD) | Source |
Use both the overview and the fresh web snippets below.
Rules:
- Plain Markdown only; bullets or tables; no pseudo formatting
- If data for a requested table is incomplete, include rows with 'N/A' and provide sources

Overview:
%[3]s

Fresh snippets:
%[4]s
`,

		PromptStructuredSections: `Return ONLY a JSON object with keys: %[1]s. Each value should be plain text (no markdown fences). Directive Response MUST explicitly address the user's directive (comparisons, reasons, next steps). Context: company=%[2]s, years=%[3]d, dept=%[4]s. User directive: %[5]s`,

		PromptOverviewSummary: `Summarize these search snippets into a neutral 3–6 bullet overview. Call out uncertainties or conflicts.

%[1]s`,

		PromptClarify: `Before we begin deep research on %[1]s, ask 2–4 clarifying questions ONLY if they improve outcomes. User already provided: years=%[2]d, department=%[3]s. Do NOT ask for these again. Keep questions short and relevant.`,

		PromptQuickAnswer: `Answer concisely using ONLY these snippets. Return plain Markdown.

%[1]s

Question: %[2]s`,

		PromptEvidenceClaim: `Answer concisely: %[1]s based only on sources: %[2]s`,

		PromptEvidenceCard: `Given the claim: '%[1]s' and sources: %[2]s. Output a compact Evidence Card with:
- one-line claim
- 1–2 source URLs
- 1–2 sentence evidence snippet
- confidence (0–1)`,

		PromptEvidenceCardEmpty: `No sources were provided. Output a placeholder Evidence Card:
- one-line claim
- sources: None
- evidence snippet: Not available
- confidence: 0`,

		PromptHybridAnswer: `Answer the question using BOTH overview snippets and PDF sources.
Question: %[1]s
Context:
%[2]s
Return a concise, factual answer in plain Markdown.`,
	}
}

// PromptStoreAware is an optional interface for services that can use custom prompts.
type PromptStoreAware interface {
	// SetPromptStore sets the prompt store for loading customisable prompts.
	// If not set, the service uses DefaultPrompts.
	SetPromptStore(store PromptStore)
}
