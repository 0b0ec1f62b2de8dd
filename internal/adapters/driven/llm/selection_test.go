package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/core/ports/driven"
)

// fakeLLM answers per model and records the models it was called with.
type fakeLLM struct {
	models    []string
	listErr   error
	responses map[string]error
	calls     []string
}

func (f *fakeLLM) Generate(_ context.Context, _, _ string, opts driven.GenerateOptions) (string, error) {
	f.calls = append(f.calls, opts.Model)
	if err := f.responses[opts.Model]; err != nil {
		return "", err
	}
	return "answer from " + opts.Model, nil
}

func (f *fakeLLM) ListModels(context.Context) ([]string, error) { return f.models, f.listErr }
func (f *fakeLLM) ModelName() string                             { return "inner" }
func (f *fakeLLM) Ping(context.Context) error                    { return nil }
func (f *fakeLLM) Close() error                                  { return nil }

func TestModelSelection_Resolve(t *testing.T) {
	candidates := domain.DefaultGeminiCandidates()

	tests := []struct {
		name      string
		preferred string
		available []string
		listErr   error
		want      string
	}{
		{"preferred listed", "gemini-2.0-flash", []string{"a", "gemini-2.0-flash"}, nil, "gemini-2.0-flash"},
		{"first listed candidate", "gone", []string{"x", "gemini-flash-latest", "gemini-2.0-flash"}, nil, "gemini-2.0-flash"},
		{"first listed model", "gone", []string{"x", "y"}, nil, "x"},
		{"nothing listed", "gone", nil, nil, "gone"},
		{"list error", "gone", nil, errors.New("boom"), "gone"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := NewModelSelection(tt.preferred, candidates)
			got := sel.Resolve(context.Background(), &fakeLLM{models: tt.available, listErr: tt.listErr})
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want, sel.Current())
		})
	}
}

func TestNewModelSelection_EmptyPreferred(t *testing.T) {
	sel := NewModelSelection("", []string{"first", "second"})
	assert.Equal(t, "first", sel.Current())
}

func TestSelectingService_UsesCurrentModel(t *testing.T) {
	inner := &fakeLLM{}
	svc := NewSelectingService(inner, NewModelSelection("m1", nil))

	out, err := svc.Generate(context.Background(), "", "q", driven.GenerateOptions{})

	require.NoError(t, err)
	assert.Equal(t, "answer from m1", out)
	assert.Equal(t, "m1", svc.ModelName())
}

func TestSelectingService_ExplicitModelBypassesSelection(t *testing.T) {
	inner := &fakeLLM{responses: map[string]error{"pinned": domain.ErrModelNotFound}}
	svc := NewSelectingService(inner, NewModelSelection("m1", nil))

	_, err := svc.Generate(context.Background(), "", "q", driven.GenerateOptions{Model: "pinned"})

	assert.ErrorIs(t, err, domain.ErrModelNotFound)
	assert.Equal(t, []string{"pinned"}, inner.calls)
}

func TestSelectingService_ModelNotFoundRetriesOnce(t *testing.T) {
	inner := &fakeLLM{
		models:    []string{"gemini-2.0-flash"},
		responses: map[string]error{"retired": fmt.Errorf("wrapped: %w", domain.ErrModelNotFound)},
	}
	sel := NewModelSelection("retired", domain.DefaultGeminiCandidates())
	svc := NewSelectingService(inner, sel)

	out, err := svc.Generate(context.Background(), "", "q", driven.GenerateOptions{})

	require.NoError(t, err)
	assert.Equal(t, "answer from gemini-2.0-flash", out)
	assert.Equal(t, []string{"retired", "gemini-2.0-flash"}, inner.calls)
	assert.Equal(t, "gemini-2.0-flash", sel.Current())
}

func TestSelectingService_ModelNotFoundGivesUpAfterOneRetry(t *testing.T) {
	inner := &fakeLLM{responses: map[string]error{"retired": domain.ErrModelNotFound}}
	svc := NewSelectingService(inner, NewModelSelection("retired", nil))

	_, err := svc.Generate(context.Background(), "", "q", driven.GenerateOptions{})

	assert.ErrorIs(t, err, domain.ErrModelNotFound)
	assert.Len(t, inner.calls, 2)
}

func TestSelectingService_QuotaTriesCandidates(t *testing.T) {
	inner := &fakeLLM{responses: map[string]error{
		"a": domain.ErrQuotaExceeded,
		"b": domain.ErrQuotaExceeded,
	}}
	sel := NewModelSelection("a", []string{"a", "b", "c"})
	svc := NewSelectingService(inner, sel)

	out, err := svc.Generate(context.Background(), "", "q", driven.GenerateOptions{})

	require.NoError(t, err)
	assert.Equal(t, "answer from c", out)
	assert.Equal(t, []string{"a", "b", "c"}, inner.calls)
	assert.Equal(t, "c", sel.Current())
}

func TestSelectingService_QuotaAllExhausted(t *testing.T) {
	inner := &fakeLLM{responses: map[string]error{
		"a": domain.ErrQuotaExceeded,
		"b": domain.ErrQuotaExceeded,
	}}
	svc := NewSelectingService(inner, NewModelSelection("a", []string{"b"}))

	_, err := svc.Generate(context.Background(), "", "q", driven.GenerateOptions{})

	assert.ErrorIs(t, err, domain.ErrQuotaExceeded)
	assert.Equal(t, []string{"a", "b"}, inner.calls)
}
