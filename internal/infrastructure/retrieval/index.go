package retrieval

import (
	"context"
	"math"
	"sort"
	"strings"

	"web-automation-agent/internal/application/port/output"
	"web-automation-agent/internal/domain/entity"

	"github.com/tmc/langchaingo/textsplitter"
)

var _ output.RetrievalPort = (*Index)(nil)

const (
	defaultChunkSize    = 1000
	defaultChunkOverlap = 100
)

type chunk struct {
	text      string
	sourceURL string
	vector    []float32
}

// Index is the in-memory knowledge base: scraped page summaries chunked
// and embedded. With no embedder configured it degrades to lexical
// token-overlap scoring instead of failing.
type Index struct {
	embedder output.EmbedderPort
	logger   output.LoggerPort
	splitter textsplitter.RecursiveCharacter
	chunks   []chunk
}

func NewIndex(embedder output.EmbedderPort, logger output.LoggerPort) *Index {
	return &Index{
		embedder: embedder,
		logger:   logger,
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(defaultChunkSize),
			textsplitter.WithChunkOverlap(defaultChunkOverlap),
		),
	}
}

// Build chunks and embeds the scraped pages. Embedding failure downgrades
// the whole index to lexical scoring; the pages are still searchable.
func (idx *Index) Build(ctx context.Context, pages []PageSummary) error {
	var texts []string
	var sources []string

	for _, page := range pages {
		parts, err := idx.splitter.SplitText(page.Text())
		if err != nil {
			// Splitter only fails on pathological config; keep the page whole.
			parts = []string{page.Text()}
		}
		for _, part := range parts {
			texts = append(texts, part)
			sources = append(sources, page.URL)
		}
	}

	idx.chunks = make([]chunk, len(texts))
	for i := range texts {
		idx.chunks[i] = chunk{text: texts[i], sourceURL: sources[i]}
	}

	if idx.embedder == nil || len(texts) == 0 {
		idx.logger.Info("Knowledge base built (lexical only)", "chunks", len(idx.chunks))
		return nil
	}

	vectors, err := idx.embedder.Embed(ctx, texts)
	if err != nil {
		idx.logger.Warn("Embedding failed, falling back to lexical ranking", "error", err)
		return nil
	}
	for i := range vectors {
		idx.chunks[i].vector = vectors[i]
	}

	idx.logger.Info("Knowledge base built", "chunks", len(idx.chunks))
	return nil
}

// Retrieve returns the k best chunks for the query, most relevant first.
// An empty index yields an empty result, not an error.
func (idx *Index) Retrieve(ctx context.Context, query string, k int) ([]entity.Snippet, error) {
	if len(idx.chunks) == 0 || k <= 0 {
		return nil, nil
	}

	scores := idx.scoreLexical(query)
	if idx.embedder != nil && idx.chunks[0].vector != nil {
		if vecScores, err := idx.scoreSemantic(ctx, query); err == nil {
			scores = vecScores
		} else {
			idx.logger.Warn("Query embedding failed, using lexical ranking", "error", err)
		}
	}

	order := make([]int, len(idx.chunks))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	if k > len(order) {
		k = len(order)
	}
	snippets := make([]entity.Snippet, 0, k)
	for _, i := range order[:k] {
		if scores[i] <= 0 {
			break
		}
		snippets = append(snippets, entity.Snippet{
			Content:   idx.chunks[i].text,
			SourceURL: idx.chunks[i].sourceURL,
			Score:     scores[i],
		})
	}
	return snippets, nil
}

func (idx *Index) scoreSemantic(ctx context.Context, query string) ([]float64, error) {
	vectors, err := idx.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	qv := vectors[0]

	scores := make([]float64, len(idx.chunks))
	for i, c := range idx.chunks {
		scores[i] = cosine(qv, c.vector)
	}
	return scores, nil
}

func (idx *Index) scoreLexical(query string) []float64 {
	queryTokens := tokenize(query)

	scores := make([]float64, len(idx.chunks))
	for i, c := range idx.chunks {
		text := strings.ToLower(c.text)
		hits := 0
		for _, tok := range queryTokens {
			if strings.Contains(text, tok) {
				hits++
			}
		}
		if len(queryTokens) > 0 {
			scores[i] = float64(hits) / float64(len(queryTokens))
		}
	}
	return scores
}

func tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'))
	})
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) >= 3 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
