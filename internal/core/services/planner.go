package services

import (
	"context"
	"strings"

	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/core/ports/driven"
	"github.com/custodia-labs/dossier/internal/logger"
)

// maxPlanQueries caps the number of search queries in a plan.
const maxPlanQueries = 4

// kbOnlyTriggers switch off fresh search when the knowledge base is ready.
var kbOnlyTriggers = []string{"use kb", "from cached", "from pdf", "from overview"}

// PlannerAgent decides whether fresh web search is needed and which queries to run.
type PlannerAgent struct {
	gen *Generator
}

// NewPlannerAgent creates a planner.
func NewPlannerAgent(gen *Generator) *PlannerAgent {
	return &PlannerAgent{gen: gen}
}

// Plan derives search queries and follow-ups for a user prompt. It never fails;
// when the model is unavailable or returns nothing, template queries are used.
func (p *PlannerAgent) Plan(ctx context.Context, company, userPrompt string, kbReady bool) domain.Plan {
	plan := domain.Plan{
		NeedFreshSearch: true,
		Followups:       planFollowups(),
	}

	if kbReady {
		lower := strings.ToLower(userPrompt)
		for _, trigger := range kbOnlyTriggers {
			if strings.Contains(lower, trigger) {
				plan.NeedFreshSearch = false
				break
			}
		}
	}

	var queries []string
	text, err := p.gen.Generate(ctx, driven.PromptPlannerQueries, driven.GenerateOptions{}, company, userPrompt)
	if err != nil {
		logger.Warn("Planner: query generation failed: %v", err)
	} else {
		for _, line := range strings.Split(text, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				queries = append(queries, line)
			}
		}
	}

	if len(queries) == 0 {
		queries = fallbackQueries(company, userPrompt)
	}
	if len(queries) > maxPlanQueries {
		queries = queries[:maxPlanQueries]
	}
	plan.SearchQueries = queries

	logger.Debug("Planner: fresh=%t queries=%q", plan.NeedFreshSearch, plan.SearchQueries)
	return plan
}

func fallbackQueries(company, userPrompt string) []string {
	base := strings.TrimSpace(company)
	up := strings.TrimSpace(userPrompt)
	return []string{
		base + " " + up + " latest figures",
		base + " segment revenue by product last year",
		base + " top products revenue " + up,
		base + " annual report product revenue breakdown",
	}
}

func planFollowups() []string {
	return []string{
		"Should I compare the last 3 years or focus on the latest year?",
		"Do you want product-level revenue or segment-level revenue?",
		"Should I include competitor benchmarks for context?",
	}
}
