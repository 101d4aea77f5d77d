package retrieval

import (
	"context"

	"clubassist/model"
	"clubassist/store"
	"clubassist/types"

	"github.com/rs/zerolog"
)

// MaxFullDocuments bounds how many complete sources the assembler nominates
// for fetching, no matter how many distinct URLs the chunks carry.
const MaxFullDocuments = 2

// Assembler turns free text into ranked context: embed the query, search
// the store, and pick which full sources are worth fetching.
type Assembler struct {
	embedder model.Embedder
	searcher store.Searcher
	logger   zerolog.Logger
}

func NewAssembler(embedder model.Embedder, searcher store.Searcher, logger zerolog.Logger) *Assembler {
	return &Assembler{
		embedder: embedder,
		searcher: searcher,
		logger:   logger,
	}
}

// Retrieve runs the embed-then-search pipeline. An empty result is a valid
// outcome meaning nothing relevant, not an error.
func (a *Assembler) Retrieve(ctx context.Context, queryText string, limit int, threshold float64) (types.RetrievalResult, error) {
	queryVec, err := a.embedder.Embed(ctx, queryText)
	if err != nil {
		return types.RetrievalResult{}, err
	}

	chunks, err := a.searcher.Search(ctx, queryVec, threshold, limit)
	if err != nil {
		return types.RetrievalResult{}, err
	}

	result := types.RetrievalResult{Chunks: chunks}
	result.FullSourceURLs = dedupSourceURLs(chunks)

	a.logger.Debug().
		Int("chunks", len(result.Chunks)).
		Int("full_sources", len(result.FullSourceURLs)).
		Msg("retrieval complete")
	return result, nil
}

// dedupSourceURLs collects distinct non-null source URLs in rank order.
// A single source usually contributes several chunks; it is fetched once.
func dedupSourceURLs(chunks []types.DocumentChunk) []string {
	seen := make(map[string]struct{}, len(chunks))
	var urls []string
	for _, chunk := range chunks {
		if chunk.SourceURL == nil || *chunk.SourceURL == "" {
			continue
		}
		url := *chunk.SourceURL
		if _, ok := seen[url]; ok {
			continue
		}
		seen[url] = struct{}{}
		urls = append(urls, url)
		if len(urls) == MaxFullDocuments {
			break
		}
	}
	return urls
}
