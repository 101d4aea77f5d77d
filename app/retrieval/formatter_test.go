package retrieval

import (
	"strings"
	"testing"

	"clubassist/types"

	"github.com/stretchr/testify/assert"
)

func TestFormatContextEmptyEmitsSentinel(t *testing.T) {
	f := NewFormatter(0)
	got := f.FormatContext(types.RetrievalResult{}, nil)
	assert.Equal(t, NoContextSentinel, got)
}

func TestFormatContextRendersChunksInOrder(t *testing.T) {
	f := NewFormatter(0)
	result := types.RetrievalResult{
		Chunks: []types.DocumentChunk{
			chunk("mess_policy.pdf", strPtr("https://docs.example.edu/mess_policy.pdf"), 0.9),
			chunk("vpn_guide.md", nil, 0.6),
		},
	}

	got := f.FormatContext(result, nil)

	first := strings.Index(got, "mess_policy.pdf")
	second := strings.Index(got, "vpn_guide.md")
	assert.NotEqual(t, -1, first)
	assert.NotEqual(t, -1, second)
	assert.Less(t, first, second, "highest-relevance material must come first")
	assert.Contains(t, got, "https://docs.example.edu/mess_policy.pdf")
	assert.NotContains(t, got, NoContextSentinel)
}

func TestFormatContextFullDocumentsArePrimary(t *testing.T) {
	f := NewFormatter(0)
	result := types.RetrievalResult{
		Chunks: []types.DocumentChunk{
			chunk("mess_policy.pdf", strPtr("https://docs.example.edu/mess_policy.pdf"), 0.9),
		},
	}
	fullDocs := []types.FullDocument{
		{SourceURL: "https://docs.example.edu/mess_policy.pdf", Text: "full policy text"},
	}

	got := f.FormatContext(result, fullDocs)

	// primacy must be explicit in the rendered text, not just ordering
	assert.Contains(t, got, "PRIMARY SOURCE MATERIAL")
	assert.Contains(t, got, "SUPPLEMENTARY EXCERPTS")
	assert.Less(t,
		strings.Index(got, "full policy text"),
		strings.Index(got, "text from mess_policy.pdf"),
	)
}

func TestFormatContextHonorsTokenBudget(t *testing.T) {
	// a tiny budget stops chunk blocks from piling up; the fallback
	// heuristic counts roughly four characters per token
	f := NewFormatter(10)
	result := types.RetrievalResult{
		Chunks: []types.DocumentChunk{
			chunk("a.md", nil, 0.9),
			{SourceFile: "b.md", ChunkText: strings.Repeat("filler ", 200), Similarity: 0.8},
			{SourceFile: "c.md", ChunkText: strings.Repeat("more filler ", 200), Similarity: 0.7},
		},
	}

	got := f.FormatContext(result, nil)
	assert.NotContains(t, got, "more filler")
}

func TestFormatContextNoEmptySupplementarySection(t *testing.T) {
	// a full document that exhausts the budget must not leave a dangling
	// excerpts header with nothing under it
	f := NewFormatter(10)
	result := types.RetrievalResult{
		Chunks: []types.DocumentChunk{
			chunk("mess_policy.pdf", nil, 0.9),
		},
	}
	fullDocs := []types.FullDocument{
		{SourceURL: "https://docs.example.edu/mess_policy.pdf", Text: strings.Repeat("policy ", 200)},
	}

	got := f.FormatContext(result, fullDocs)
	assert.Contains(t, got, "PRIMARY SOURCE MATERIAL")
	assert.NotContains(t, got, "SUPPLEMENTARY EXCERPTS")
}
