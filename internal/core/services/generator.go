package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/core/ports/driven"
	"github.com/custodia-labs/dossier/internal/logger"
)

// Generator renders named prompts and sends them to the language model
// under the shared system persona.
type Generator struct {
	llm         driven.LLMService
	prompts     driven.PromptStore
	temperature float64
}

// NewGenerator creates a generator. llm and prompts are optional; without a
// prompt store the built-in templates are used.
func NewGenerator(llm driven.LLMService, prompts driven.PromptStore, temperature float64) *Generator {
	return &Generator{
		llm:         llm,
		prompts:     prompts,
		temperature: temperature,
	}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (g *Generator) SetPromptStore(store driven.PromptStore) {
	g.prompts = store
}

// Available reports whether a language model is configured.
func (g *Generator) Available() bool {
	return g.llm != nil
}

// Prompt loads the named template and formats it with args.
func (g *Generator) Prompt(name string, args ...any) string {
	tmpl := ""
	if g.prompts != nil {
		loaded, err := g.prompts.Load(name)
		if err != nil {
			logger.Debug("Prompt %q not loaded, using default: %v", name, err)
		}
		tmpl = loaded
	}
	if tmpl == "" {
		tmpl = driven.DefaultPrompts()[name]
	}
	if len(args) == 0 {
		return tmpl
	}
	return fmt.Sprintf(tmpl, args...)
}

// Generate renders the named prompt and returns the model's completion.
// A zero opts.Temperature uses the configured default.
func (g *Generator) Generate(ctx context.Context, name string, opts driven.GenerateOptions, args ...any) (string, error) {
	if g.llm == nil {
		return "", domain.ErrLLMUnavailable
	}
	if opts.Temperature == 0 {
		opts.Temperature = g.temperature
	}

	out, err := g.llm.Generate(ctx, g.Prompt(driven.PromptSystem), g.Prompt(name, args...), opts)
	if err != nil {
		return "", fmt.Errorf("generate %s: %w", name, err)
	}
	return out, nil
}
