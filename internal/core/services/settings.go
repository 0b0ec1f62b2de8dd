package services

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/core/ports/driven"
	"github.com/custodia-labs/dossier/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyLLMProvider    = "llm.provider"
	keyLLMModel       = "llm.model"
	keyLLMCandidates  = "llm.candidates"
	keyLLMBaseURL     = "llm.base_url"
	keyLLMAPIKey      = "llm.api_key"
	keyLLMTemperature = "llm.temperature"

	keyEmbedProvider = "embedding.provider"
	keyEmbedModel    = "embedding.model"
	keyEmbedBaseURL  = "embedding.base_url"
	keyEmbedAPIKey   = "embedding.api_key"

	keySearchProvider = "search.provider"
	keySearchAPIKey   = "search.api_key"
	keySearchCX       = "search.cx"
	keySearchRPS      = "search.requests_per_second"

	keyResearchYears    = "research.years"
	keyResearchTimebox  = "research.timebox_minutes"
	keyResearchTTL      = "research.cache_ttl_days"
	keyResearchEURUSD   = "research.eurusd_rate"
	keyResearchMaxPDFs  = "research.max_pdfs"
	keyResearchMaxPages = "research.max_pages"
	keyResearchRender   = "research.render_pages"

	keyCacheBackend = "cache.backend"
	keyCacheDir     = "cache.dir"

	keyExtractorBackend = "extractor.backend"
	keyExtractorTikaURL = "extractor.tika_url"

	keyLinkedInClientID     = "linkedin.client_id"
	keyLinkedInClientSecret = "linkedin.client_secret"
	keyLinkedInRedirectURL  = "linkedin.redirect_url"
	keyLinkedInAccessToken  = "linkedin.access_token"
)

const defaultOllamaURL = "http://localhost:11434"

// SettingsService manages application settings stored in the config file.
// Environment variables override stored values when settings are read but
// are never written back.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	lookupEnv   func(string) (string, bool)
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		lookupEnv:   os.LookupEnv,
	}
}

// Get retrieves current application settings with environment overrides applied.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	settings := s.stored()
	s.applyEnv(settings)
	return settings, nil
}

// stored reads settings from the config store only, filling defaults.
func (s *SettingsService) stored() *domain.AppSettings {
	d := domain.DefaultAppSettings()

	candidates := s.configStore.GetStringSlice(keyLLMCandidates)
	if len(candidates) == 0 {
		candidates = domain.DefaultGeminiCandidates()
	}

	return &domain.AppSettings{
		LLM: domain.LLMSettings{
			Provider:    s.getProvider(keyLLMProvider, d.LLM.Provider),
			Model:       s.getString(keyLLMModel, d.LLM.Model),
			Candidates:  candidates,
			BaseURL:     s.configStore.GetString(keyLLMBaseURL), // No default - empty is valid for cloud providers
			APIKey:      s.configStore.GetString(keyLLMAPIKey),
			Temperature: s.getFloat(keyLLMTemperature, d.LLM.Temperature),
		},
		Embedding: domain.EmbeddingSettings{
			Provider: s.getProvider(keyEmbedProvider, d.Embedding.Provider),
			Model:    s.getString(keyEmbedModel, d.Embedding.Model),
			BaseURL:  s.configStore.GetString(keyEmbedBaseURL),
			APIKey:   s.configStore.GetString(keyEmbedAPIKey),
		},
		Search: domain.SearchSettings{
			Provider:          s.getSearchProvider(d.Search.Provider),
			APIKey:            s.configStore.GetString(keySearchAPIKey),
			CX:                s.configStore.GetString(keySearchCX),
			RequestsPerSecond: s.getFloat(keySearchRPS, d.Search.RequestsPerSecond),
		},
		Research: domain.ResearchSettings{
			Years:          s.getInt(keyResearchYears, d.Research.Years),
			TimeboxMinutes: s.getInt(keyResearchTimebox, d.Research.TimeboxMinutes),
			CacheTTLDays:   s.getInt(keyResearchTTL, d.Research.CacheTTLDays),
			EURUSDRate:     s.getFloat(keyResearchEURUSD, d.Research.EURUSDRate),
			MaxPDFs:        s.getInt(keyResearchMaxPDFs, d.Research.MaxPDFs),
			MaxPages:       s.getInt(keyResearchMaxPages, d.Research.MaxPages),
			RenderPages:    s.getBool(keyResearchRender, d.Research.RenderPages),
		},
		Cache: domain.CacheSettings{
			Backend: domain.CacheBackend(s.getString(keyCacheBackend, string(d.Cache.Backend))),
			Dir:     s.getString(keyCacheDir, d.Cache.Dir),
		},
		Extractor: domain.ExtractorSettings{
			Backend: domain.ExtractorBackend(s.getString(keyExtractorBackend, string(d.Extractor.Backend))),
			TikaURL: s.getString(keyExtractorTikaURL, d.Extractor.TikaURL),
		},
		LinkedIn: domain.LinkedInSettings{
			ClientID:     s.configStore.GetString(keyLinkedInClientID),
			ClientSecret: s.configStore.GetString(keyLinkedInClientSecret),
			RedirectURL:  s.configStore.GetString(keyLinkedInRedirectURL),
			AccessToken:  s.configStore.GetString(keyLinkedInAccessToken),
		},
	}
}

// applyEnv overlays the supported environment variables.
func (s *SettingsService) applyEnv(st *domain.AppSettings) {
	if v, ok := s.envInt("RESEARCH_TIMEBOX_MINUTES"); ok {
		st.Research.TimeboxMinutes = v
	}
	if v, ok := s.envInt("CACHE_TTL_DAYS"); ok {
		st.Research.CacheTTLDays = v
	}
	if v, ok := s.envString("EURUSD_RATE"); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			st.Research.EURUSDRate = f
		}
	}

	if v, ok := s.envString("SEARCH_PROVIDER"); ok {
		p := domain.ParseSearchProvider(strings.ToLower(v))
		if p != st.Search.Provider {
			st.Search.Provider = p
			st.Search.APIKey = ""
			st.Search.CX = ""
		}
	}
	switch st.Search.Provider {
	case domain.SearchProviderSerpAPI:
		if v, ok := s.envString("SERPAPI_API_KEY"); ok {
			st.Search.APIKey = v
		}
	case domain.SearchProviderGoogleCSE:
		if v, ok := s.envString("GOOGLE_CSE_API_KEY"); ok {
			st.Search.APIKey = v
		}
		if v, ok := s.envString("GOOGLE_CSE_CX"); ok {
			st.Search.CX = v
		}
	}

	if key, ok := s.envString("GOOGLE_API_KEY"); ok {
		if st.LLM.Provider == "" {
			st.LLM.Provider = domain.AIProviderGemini
			st.LLM.Model = domain.DefaultLLMModels()[domain.AIProviderGemini]
		}
		if st.LLM.Provider == domain.AIProviderGemini && st.LLM.APIKey == "" {
			st.LLM.APIKey = key
		}
	}
	if v, ok := s.envString("GEMINI_MODEL"); ok && st.LLM.Provider == domain.AIProviderGemini {
		st.LLM.Model = v
	}

	if key, ok := s.envString("OPENAI_API_KEY"); ok {
		if st.Embedding.Provider == "" {
			st.Embedding.Provider = domain.AIProviderOpenAI
			st.Embedding.Model = domain.DefaultEmbeddingModels()[domain.AIProviderOpenAI]
		}
		if st.Embedding.Provider == domain.AIProviderOpenAI && st.Embedding.APIKey == "" {
			st.Embedding.APIKey = key
		}
		if st.LLM.Provider == domain.AIProviderOpenAI && st.LLM.APIKey == "" {
			st.LLM.APIKey = key
		}
	}
	if v, ok := s.envString("OPENAI_EMBED_MODEL"); ok && st.Embedding.Provider == domain.AIProviderOpenAI {
		st.Embedding.Model = v
	}
}

// Save persists application settings. Empty secrets are not written so an
// existing key is never wiped by a partial update.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
		skip  bool
	}{
		{keyLLMProvider, settings.LLM.Provider.String(), false},
		{keyLLMModel, settings.LLM.Model, false},
		{keyLLMCandidates, settings.LLM.Candidates, len(settings.LLM.Candidates) == 0},
		{keyLLMBaseURL, settings.LLM.BaseURL, false},
		{keyLLMAPIKey, settings.LLM.APIKey, settings.LLM.APIKey == ""},
		{keyLLMTemperature, settings.LLM.Temperature, false},
		{keyEmbedProvider, settings.Embedding.Provider.String(), false},
		{keyEmbedModel, settings.Embedding.Model, false},
		{keyEmbedBaseURL, settings.Embedding.BaseURL, false},
		{keyEmbedAPIKey, settings.Embedding.APIKey, settings.Embedding.APIKey == ""},
		{keySearchProvider, settings.Search.Provider.String(), false},
		{keySearchAPIKey, settings.Search.APIKey, settings.Search.APIKey == ""},
		{keySearchCX, settings.Search.CX, false},
		{keySearchRPS, settings.Search.RequestsPerSecond, false},
		{keyResearchYears, settings.Research.Years, false},
		{keyResearchTimebox, settings.Research.TimeboxMinutes, false},
		{keyResearchTTL, settings.Research.CacheTTLDays, false},
		{keyResearchEURUSD, settings.Research.EURUSDRate, false},
		{keyResearchMaxPDFs, settings.Research.MaxPDFs, false},
		{keyResearchMaxPages, settings.Research.MaxPages, false},
		{keyResearchRender, settings.Research.RenderPages, false},
		{keyCacheBackend, string(settings.Cache.Backend), false},
		{keyCacheDir, settings.Cache.Dir, false},
		{keyExtractorBackend, string(settings.Extractor.Backend), false},
		{keyExtractorTikaURL, settings.Extractor.TikaURL, false},
		{keyLinkedInClientID, settings.LinkedIn.ClientID, settings.LinkedIn.ClientID == ""},
		{keyLinkedInClientSecret, settings.LinkedIn.ClientSecret, settings.LinkedIn.ClientSecret == ""},
		{keyLinkedInRedirectURL, settings.LinkedIn.RedirectURL, settings.LinkedIn.RedirectURL == ""},
		{keyLinkedInAccessToken, settings.LinkedIn.AccessToken, settings.LinkedIn.AccessToken == ""},
	}

	for _, v := range values {
		if v.skip {
			continue
		}
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid embedding provider: %s", domain.ErrInvalidInput, provider)
	}

	// Validate provider supports embeddings
	valid := false
	for _, p := range domain.AllEmbeddingProviders() {
		if p == provider {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("%w: provider %s does not support embeddings", domain.ErrInvalidInput, provider)
	}

	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidInput, provider)
	}

	settings := s.stored()
	settings.Embedding.Provider = provider
	settings.Embedding.Model = modelOrDefault(model, domain.DefaultEmbeddingModels()[provider])
	settings.Embedding.BaseURL = baseURLFor(provider, settings.Embedding.BaseURL)
	settings.Embedding.APIKey = apiKey

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid LLM provider: %s", domain.ErrInvalidInput, provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidInput, provider)
	}

	settings := s.stored()
	settings.LLM.Provider = provider
	settings.LLM.Model = modelOrDefault(model, domain.DefaultLLMModels()[provider])
	settings.LLM.BaseURL = baseURLFor(provider, settings.LLM.BaseURL)
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// SetSearchProvider configures the web search provider.
func (s *SettingsService) SetSearchProvider(provider domain.SearchProviderType, apiKey, cx string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid search provider: %s", domain.ErrInvalidInput, provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidInput, provider)
	}
	if provider == domain.SearchProviderGoogleCSE && cx == "" {
		return fmt.Errorf("%w: search engine ID (cx) required for %s", domain.ErrInvalidInput, provider)
	}

	settings := s.stored()
	settings.Search.Provider = provider
	settings.Search.APIKey = apiKey
	settings.Search.CX = cx

	return s.Save(settings)
}

// SetLinkedIn stores the LinkedIn OAuth client and, when non-empty, its access token.
func (s *SettingsService) SetLinkedIn(clientID, clientSecret, redirectURL, accessToken string) error {
	settings := s.stored()
	if clientID != "" {
		settings.LinkedIn.ClientID = clientID
	}
	if clientSecret != "" {
		settings.LinkedIn.ClientSecret = clientSecret
	}
	if redirectURL != "" {
		settings.LinkedIn.RedirectURL = redirectURL
	}
	if accessToken != "" {
		settings.LinkedIn.AccessToken = accessToken
	}
	return s.Save(settings)
}

// Validate checks that the settings are internally consistent.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	var errs []error
	if settings.LLM.Provider != "" && !settings.LLM.IsConfigured() {
		errs = append(errs, fmt.Errorf("LLM provider %q is not fully configured", settings.LLM.Provider))
	}
	if settings.Embedding.Provider != "" && !settings.Embedding.IsConfigured() {
		errs = append(errs, fmt.Errorf("embedding provider %q is not fully configured", settings.Embedding.Provider))
	}
	if !settings.Search.IsConfigured() {
		errs = append(errs, fmt.Errorf("search provider %q is not fully configured", settings.Search.Provider))
	}
	if !settings.Cache.Backend.IsValid() {
		errs = append(errs, fmt.Errorf("invalid cache backend: %s", settings.Cache.Backend))
	}
	if !settings.Extractor.Backend.IsValid() {
		errs = append(errs, fmt.Errorf("invalid extractor backend: %s", settings.Extractor.Backend))
	}
	if settings.Research.Years < 1 {
		errs = append(errs, fmt.Errorf("research years must be at least 1, got %d", settings.Research.Years))
	}
	if settings.Research.EURUSDRate <= 0 {
		errs = append(errs, fmt.Errorf("EUR/USD rate must be positive, got %v", settings.Research.EURUSDRate))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, errors.Join(errs...))
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// ValidateSearchConfig validates the current search configuration with a probe query.
func (s *SettingsService) ValidateSearchConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateSearch(&settings.Search)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getSearchProvider(defaultVal domain.SearchProviderType) domain.SearchProviderType {
	val := s.configStore.GetString(keySearchProvider)
	if val == "" {
		return defaultVal
	}
	return domain.ParseSearchProvider(val)
}

func (s *SettingsService) envString(name string) (string, bool) {
	v, ok := s.lookupEnv(name)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func (s *SettingsService) envInt(name string) (int, bool) {
	v, ok := s.envString(name)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func modelOrDefault(model, fallback string) string {
	if model != "" {
		return model
	}
	return fallback
}

// baseURLFor keeps a custom endpoint for local providers and clears it for cloud ones.
func baseURLFor(provider domain.AIProvider, current string) string {
	if !provider.IsLocal() {
		return ""
	}
	if current == "" {
		return defaultOllamaURL
	}
	return current
}
