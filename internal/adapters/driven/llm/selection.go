// Package llm holds model selection shared by the provider adapters in its
// subpackages.
package llm

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/core/ports/driven"
	"github.com/custodia-labs/dossier/internal/logger"
)

// ModelLister is the part of driven.LLMService selection needs.
type ModelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}

// ModelSelection tracks which model to call. It is built once at startup
// and shared by pointer.
type ModelSelection struct {
	mu         sync.RWMutex
	preferred  string
	candidates []string
	current    string
}

// NewModelSelection creates a selection that starts on the preferred model.
func NewModelSelection(preferred string, candidates []string) *ModelSelection {
	if preferred == "" && len(candidates) > 0 {
		preferred = candidates[0]
	}
	return &ModelSelection{
		preferred:  preferred,
		candidates: slices.Clone(candidates),
		current:    preferred,
	}
}

// Current returns the model in use.
func (m *ModelSelection) Current() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Candidates returns the fallback list.
func (m *ModelSelection) Candidates() []string {
	return slices.Clone(m.candidates)
}

// Resolve picks a model from what the provider lists: the preferred model if
// listed, else the first listed candidate, else the first listed model. When
// listing fails or returns nothing the preferred model is kept.
func (m *ModelSelection) Resolve(ctx context.Context, lister ModelLister) string {
	available, err := lister.ListModels(ctx)
	if err != nil {
		logger.Warn("listing models failed, keeping %s: %v", m.preferred, err)
	}

	chosen := m.preferred
	switch {
	case len(available) == 0:
	case slices.Contains(available, m.preferred):
	default:
		chosen = available[0]
		for _, c := range m.candidates {
			if slices.Contains(available, c) {
				chosen = c
				break
			}
		}
	}

	m.set(chosen)
	logger.Debug("model selected: %s", chosen)
	return chosen
}

func (m *ModelSelection) set(model string) {
	m.mu.Lock()
	m.current = model
	m.mu.Unlock()
}

// Ensure SelectingService implements the interface.
var _ driven.LLMService = (*SelectingService)(nil)

// SelectingService routes calls to the selected model and recovers from
// missing models and exhausted quotas.
type SelectingService struct {
	driven.LLMService
	selection *ModelSelection
}

// NewSelectingService wraps inner with selection.
func NewSelectingService(inner driven.LLMService, selection *ModelSelection) *SelectingService {
	return &SelectingService{LLMService: inner, selection: selection}
}

// Selection returns the shared selection.
func (s *SelectingService) Selection() *ModelSelection {
	return s.selection
}

// ModelName returns the currently selected model.
func (s *SelectingService) ModelName() string {
	if model := s.selection.Current(); model != "" {
		return model
	}
	return s.LLMService.ModelName()
}

// Generate calls the selected model. On domain.ErrModelNotFound it
// re-resolves once and retries once; on domain.ErrQuotaExceeded it tries each
// other candidate once and keeps the first that answers.
func (s *SelectingService) Generate(
	ctx context.Context,
	systemPrompt, userPrompt string,
	opts driven.GenerateOptions,
) (string, error) {
	if opts.Model != "" {
		return s.LLMService.Generate(ctx, systemPrompt, userPrompt, opts)
	}

	model := s.selection.Current()
	opts.Model = model
	out, err := s.LLMService.Generate(ctx, systemPrompt, userPrompt, opts)

	switch {
	case errors.Is(err, domain.ErrModelNotFound):
		resolved := s.selection.Resolve(ctx, s.LLMService)
		logger.Warn("model %s not found, retrying with %s", model, resolved)
		opts.Model = resolved
		return s.LLMService.Generate(ctx, systemPrompt, userPrompt, opts)

	case errors.Is(err, domain.ErrQuotaExceeded):
		for _, candidate := range s.selection.Candidates() {
			if candidate == model {
				continue
			}
			logger.Warn("quota exceeded on %s, trying %s", model, candidate)
			opts.Model = candidate
			out, cerr := s.LLMService.Generate(ctx, systemPrompt, userPrompt, opts)
			if cerr == nil {
				s.selection.set(candidate)
				return out, nil
			}
			err = cerr
		}
		return "", err
	}
	return out, err
}
