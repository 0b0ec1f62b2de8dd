package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/dossier/internal/core/domain"
)

func TestSynthesizerAgent_Answer_CombinesContext(t *testing.T) {
	ctx := context.Background()
	llm := &scriptedLLM{respond: func(string) (string, error) {
		return "  Revenue was USD20.8B,up 5\\%  ", nil
	}}
	index := NewEvidenceIndex(axisEmbedder())
	index.Add(ctx, []string{"revenue table"}, metas("https://acme.example/ar.pdf"))
	synth := NewSynthesizerAgent(NewGenerator(llm, nil, 0.1), index)

	overview := []domain.SearchHit{{Title: "O", URL: "https://o", Snippet: "Acme sells widgets"}, {URL: "https://blank"}}
	fresh := []domain.SearchHit{
		{Title: "News", URL: "https://news", Snippet: "Q4 beat"},
		{Title: "PDF", URL: "https://acme.example/ar.pdf", Snippet: "dup"},
	}

	res := synth.Answer(ctx, "Acme", "revenue", overview, fresh)

	assert.Equal(t, "Revenue was USD 20.8B, up 5\\%", res.Answer)
	assert.Equal(t, []string{"https://acme.example/ar.pdf", "https://news"}, res.Sources)
	require.Len(t, res.Hits, 1)

	require.Len(t, llm.prompts, 1)
	prompt := llm.prompts[0]
	assert.Contains(t, prompt, "Acme sells widgets")
	assert.Contains(t, prompt, "- News: Q4 beat (https://news)")
	assert.Contains(t, prompt, "KB PDF sources:\nhttps://acme.example/ar.pdf")
}

func TestSynthesizerAgent_Answer_ListsEachDocumentOnce(t *testing.T) {
	ctx := context.Background()
	llm := &scriptedLLM{}
	index := NewEvidenceIndex(axisEmbedder())
	index.Add(ctx, []string{"revenue", "revenue table", "products"},
		metas("https://acme.example/ar.pdf", "https://acme.example/ar.pdf", "https://acme.example/p.pdf"))
	synth := NewSynthesizerAgent(NewGenerator(llm, nil, 0), index)

	res := synth.Answer(ctx, "Acme", "revenue", nil, nil)

	require.Len(t, res.Hits, 3)
	assert.Equal(t, []string{"https://acme.example/ar.pdf", "https://acme.example/p.pdf"}, res.Sources)
	assert.Contains(t, llm.prompts[0], "KB PDF sources:\nhttps://acme.example/ar.pdf\nhttps://acme.example/p.pdf\n")
}

func TestSynthesizerAgent_Answer_LLMFailureIsEmpty(t *testing.T) {
	synth := NewSynthesizerAgent(NewGenerator(failingLLM(), nil, 0), NewEvidenceIndex(nil))
	res := synth.Answer(context.Background(), "Acme", "q", nil, nil)
	assert.Empty(t, res.Answer)
	assert.NotNil(t, res.Sources)
	assert.Empty(t, res.Hits)
}

func TestSynthesizerAgent_Answer_CapsSources(t *testing.T) {
	fresh := make([]domain.SearchHit, 0, 10)
	for i := 0; i < 10; i++ {
		fresh = append(fresh, domain.SearchHit{URL: fmt.Sprintf("https://%d", i)})
	}
	synth := NewSynthesizerAgent(NewGenerator(nil, nil, 0), nil)
	res := synth.Answer(context.Background(), "Acme", "q", nil, fresh)
	assert.Len(t, res.Sources, maxAnswerSources)
}

func TestSynthesizerAgent_BuildReportSections(t *testing.T) {
	llm := &scriptedLLM{respond: func(string) (string, error) { return "\\# Company Overview\n- Acme", nil }}
	synth := NewSynthesizerAgent(NewGenerator(llm, nil, 0), nil)

	sections := synth.BuildReportSections(context.Background(), "Acme", "focus on EMEA", "summary", nil)

	assert.Equal(t, domain.ReportSections{domain.SectionStructuredInsights: "# Company Overview\n- Acme"}, sections)
	assert.Contains(t, llm.prompts[0], "Directive from user: focus on EMEA")
}

func TestNormalizeAnswer(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`\(a\) \*b\* \-c \#d`, "(a) *b* -c #d"},
		{"1,2,3", "1, 2, 3"},
		{"a, b", "a, b"},
		{"trailing,", "trailing,"},
		{"USD20B and EUR5M", "USD 20B and EUR 5M"},
		{"XUSD20", "XUSD20"},
		{"  padded  ", "padded"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeAnswer(tt.in), tt.in)
	}
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "a b\nc", cleanText("a\u200b\tb  \n   c"))
}

func TestFirstUnique(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, firstUnique([]string{"a", "b", "a", "c"}, 2))
	assert.Equal(t, []string{"a", "b", "c"}, firstUnique([]string{"a", "b", "a", "c"}, 0))
}
