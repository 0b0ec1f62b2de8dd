package domain

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderGemini is Google Gemini through its OpenAI-compatible endpoint.
	AIProviderGemini AIProvider = "gemini"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic, AIProviderGemini:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic || p == AIProviderGemini
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderGemini:
		return "Google Gemini (cloud)"
	default:
		return unknownDescription
	}
}

// SearchProviderType identifies a web search backend.
type SearchProviderType string

// Available search providers.
const (
	SearchProviderSerpAPI    SearchProviderType = "serpapi"
	SearchProviderGoogleCSE  SearchProviderType = "google_cse"
	SearchProviderBrave      SearchProviderType = "brave"
	SearchProviderTavily     SearchProviderType = "tavily"
	SearchProviderDuckDuckGo SearchProviderType = "duckduckgo"
)

// IsValid returns true if the search provider is recognised.
func (p SearchProviderType) IsValid() bool {
	switch p {
	case SearchProviderSerpAPI, SearchProviderGoogleCSE, SearchProviderBrave,
		SearchProviderTavily, SearchProviderDuckDuckGo:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p SearchProviderType) RequiresAPIKey() bool {
	return p != SearchProviderDuckDuckGo
}

// String returns the string representation.
func (p SearchProviderType) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p SearchProviderType) Description() string {
	switch p {
	case SearchProviderSerpAPI:
		return "SerpAPI (Google results)"
	case SearchProviderGoogleCSE:
		return "Google Programmable Search"
	case SearchProviderBrave:
		return "Brave Search API"
	case SearchProviderTavily:
		return "Tavily"
	case SearchProviderDuckDuckGo:
		return "DuckDuckGo (no key)"
	default:
		return unknownDescription
	}
}

// ParseSearchProvider maps aliases used in environment variables to a provider.
// Unknown values fall back to SerpAPI.
func ParseSearchProvider(s string) SearchProviderType {
	switch SearchProviderType(s) {
	case "google":
		return SearchProviderGoogleCSE
	case SearchProviderGoogleCSE, SearchProviderBrave, SearchProviderTavily, SearchProviderDuckDuckGo:
		return SearchProviderType(s)
	default:
		return SearchProviderSerpAPI
	}
}

// CacheBackend selects where research records are persisted.
type CacheBackend string

// Available cache backends.
const (
	CacheBackendFile   CacheBackend = "file"
	CacheBackendSQLite CacheBackend = "sqlite"
	CacheBackendMemory CacheBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b CacheBackend) IsValid() bool {
	return b == CacheBackendFile || b == CacheBackendSQLite || b == CacheBackendMemory
}

// ExtractorBackend selects how PDF text is extracted.
type ExtractorBackend string

// Available extractor backends.
const (
	ExtractorPDFToText ExtractorBackend = "pdftotext"
	ExtractorTika      ExtractorBackend = "tika"
)

// IsValid returns true if the backend is recognised.
func (b ExtractorBackend) IsValid() bool {
	return b == ExtractorPDFToText || b == ExtractorTika
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the preferred model name.
	Model string

	// Candidates are fallback models tried when the preferred one is missing.
	Candidates []string

	// BaseURL is the API endpoint (for Ollama or OpenAI-compatible gateways).
	BaseURL string

	// APIKey is the API key (for cloud providers).
	APIKey string

	// Temperature is the default sampling temperature.
	Temperature float64
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// SearchSettings holds web search configuration.
type SearchSettings struct {
	// Provider is the search backend.
	Provider SearchProviderType

	// APIKey authenticates with the provider.
	APIKey string

	// CX is the Google Programmable Search engine ID.
	CX string

	// RequestsPerSecond throttles outgoing queries (0 = provider default).
	RequestsPerSecond float64
}

// IsConfigured returns true if the search provider is usable.
func (s SearchSettings) IsConfigured() bool {
	if !s.Provider.IsValid() {
		return false
	}
	if s.Provider.RequiresAPIKey() && s.APIKey == "" {
		return false
	}
	if s.Provider == SearchProviderGoogleCSE && s.CX == "" {
		return false
	}
	return true
}

// ResearchSettings tunes the research pipeline.
type ResearchSettings struct {
	// Years is the default look-back window.
	Years int

	// TimeboxMinutes bounds the link-discovery loop of deep collection.
	TimeboxMinutes int

	// CacheTTLDays is the age after which cached research is refreshed.
	CacheTTLDays int

	// EURUSDRate converts EUR figures to USD. It is never fetched live.
	EURUSDRate float64

	// MaxPDFs caps the number of PDFs downloaded per deep collection.
	MaxPDFs int

	// MaxPages caps the number of pages extracted per PDF.
	MaxPages int

	// RenderPages lets link discovery load script-built pages in a headless
	// browser when static HTML yields too few PDF links.
	RenderPages bool
}

// CacheSettings selects and locates the research cache.
type CacheSettings struct {
	Backend CacheBackend
	Dir     string
}

// ExtractorSettings selects the PDF text extractor.
type ExtractorSettings struct {
	Backend ExtractorBackend
	TikaURL string
}

// LinkedInSettings holds OAuth client configuration for company updates.
type LinkedInSettings struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	AccessToken  string
}

// IsConfigured returns true if enough is set to call the API.
func (l LinkedInSettings) IsConfigured() bool {
	return l.AccessToken != "" || (l.ClientID != "" && l.ClientSecret != "")
}

// AppSettings holds all application settings.
type AppSettings struct {
	LLM       LLMSettings
	Embedding EmbeddingSettings
	Search    SearchSettings
	Research  ResearchSettings
	Cache     CacheSettings
	Extractor ExtractorSettings
	LinkedIn  LinkedInSettings
}

// DefaultGeminiCandidates are tried in order when the preferred Gemini model is missing.
func DefaultGeminiCandidates() []string {
	return []string{
		"gemini-1.5-flash-latest",
		"gemini-2.0-flash",
		"gemini-flash-latest",
	}
}

// DefaultAppSettings returns settings with sensible defaults.
// AI providers are left unconfigured; the application degrades to no-op
// collaborators until they are set.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		LLM: LLMSettings{
			Temperature: 0.1,
		},
		Embedding: EmbeddingSettings{},
		Search: SearchSettings{
			Provider: SearchProviderSerpAPI,
		},
		Research: ResearchSettings{
			Years:          DefaultResearchYears,
			TimeboxMinutes: 5,
			CacheTTLDays:   30,
			EURUSDRate:     1.08,
			MaxPDFs:        10,
			MaxPages:       40,
			RenderPages:    true,
		},
		Cache: CacheSettings{
			Backend: CacheBackendFile,
			Dir:     "data/cache",
		},
		Extractor: ExtractorSettings{
			Backend: ExtractorPDFToText,
			TikaURL: "http://localhost:9998",
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderGemini,
		AIProviderOpenAI,
		AIProviderAnthropic,
		AIProviderOllama,
	}
}

// AllSearchProviders returns every supported search backend.
func AllSearchProviders() []SearchProviderType {
	return []SearchProviderType{
		SearchProviderSerpAPI,
		SearchProviderGoogleCSE,
		SearchProviderBrave,
		SearchProviderTavily,
		SearchProviderDuckDuckGo,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
		AIProviderGemini:    "gemini-1.5-flash-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		"nomic-embed-text":       768,
		"mxbai-embed-large":      1024,
		"all-minilm":             384,
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
