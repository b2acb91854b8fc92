package retrieval

import (
	"context"
	"errors"
	"testing"

	"web-automation-agent/internal/infrastructure/logger"
)

type fakeEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (f *fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if v, ok := f.vectors[text]; ok {
			out[i] = v
		} else {
			out[i] = []float32{0, 0, 1}
		}
	}
	return out, nil
}

func samplePages() []PageSummary {
	return []PageSummary{
		{
			URL:      "https://acme.example/login",
			Title:    "Login",
			Inputs:   []InputInfo{{Name: "username"}, {Name: "password"}},
			Headings: []string{"Sign in to Acme"},
		},
		{
			URL:      "https://acme.example/pricing",
			Title:    "Pricing",
			Headings: []string{"Plans and pricing"},
		},
	}
}

func TestIndex_LexicalRetrievalWithoutEmbedder(t *testing.T) {
	idx := NewIndex(nil, logger.NewNop())
	if err := idx.Build(context.Background(), samplePages()); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	snippets, err := idx.Retrieve(context.Background(), "login username password", 2)
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if len(snippets) == 0 {
		t.Fatal("Expected at least one snippet")
	}
	if snippets[0].SourceURL != "https://acme.example/login" {
		t.Errorf("Login page should rank first for login query, got %s", snippets[0].SourceURL)
	}
	if snippets[0].Score <= 0 {
		t.Errorf("Top snippet must have positive score, got %f", snippets[0].Score)
	}
}

func TestIndex_EmbeddingFailureFallsBackToLexical(t *testing.T) {
	idx := NewIndex(&fakeEmbedder{err: errors.New("quota exceeded")}, logger.NewNop())
	if err := idx.Build(context.Background(), samplePages()); err != nil {
		t.Fatalf("Build must not fail on embedding errors: %v", err)
	}

	snippets, err := idx.Retrieve(context.Background(), "pricing plans", 1)
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if len(snippets) != 1 || snippets[0].SourceURL != "https://acme.example/pricing" {
		t.Errorf("Lexical fallback should still rank, got %v", snippets)
	}
}

func TestIndex_EmptyIndex(t *testing.T) {
	idx := NewIndex(nil, logger.NewNop())

	snippets, err := idx.Retrieve(context.Background(), "anything", 5)
	if err != nil {
		t.Fatalf("Empty index must not error: %v", err)
	}
	if len(snippets) != 0 {
		t.Errorf("Expected no snippets, got %d", len(snippets))
	}
}

func TestIndex_KClampedToCorpus(t *testing.T) {
	idx := NewIndex(nil, logger.NewNop())
	if err := idx.Build(context.Background(), samplePages()); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	snippets, err := idx.Retrieve(context.Background(), "acme", 50)
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if len(snippets) > 2 {
		t.Errorf("Cannot return more snippets than chunks, got %d", len(snippets))
	}
}

func TestIndex_ZeroScoreExcluded(t *testing.T) {
	idx := NewIndex(nil, logger.NewNop())
	if err := idx.Build(context.Background(), samplePages()); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	snippets, err := idx.Retrieve(context.Background(), "zebra quantum xylophone", 5)
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if len(snippets) != 0 {
		t.Errorf("Unrelated query should yield nothing, got %d snippets", len(snippets))
	}
}

func TestCosine(t *testing.T) {
	if got := cosine([]float32{1, 0}, []float32{1, 0}); got < 0.999 {
		t.Errorf("Identical vectors should score ~1, got %f", got)
	}
	if got := cosine([]float32{1, 0}, []float32{0, 1}); got != 0 {
		t.Errorf("Orthogonal vectors should score 0, got %f", got)
	}
	if got := cosine([]float32{1, 0}, []float32{1, 0, 0}); got != 0 {
		t.Errorf("Mismatched lengths should score 0, got %f", got)
	}
}
