package retrieval

import (
	"fmt"
	"strings"

	"clubassist/types"

	"github.com/pkoukk/tiktoken-go"
)

// NoContextSentinel marks a turn where retrieval produced nothing. The
// persona layer turns it into an apology; it must stay distinguishable
// from a populated context.
const NoContextSentinel = "NO_RELEVANT_DOCUMENTS"

// Formatter renders retrieved material into the single context string the
// generative model receives, bounded by a token budget.
type Formatter struct {
	maxTokens int
}

func NewFormatter(maxTokens int) *Formatter {
	return &Formatter{maxTokens: maxTokens}
}

// FormatContext renders full documents first as primary material, then the
// chunk blocks in descending-similarity order. Generative models weight
// earlier context more heavily, so the highest-relevance material leads.
func (f *Formatter) FormatContext(result types.RetrievalResult, fullDocs []types.FullDocument) string {
	if result.Empty() {
		return NoContextSentinel
	}

	var sb strings.Builder

	header := ""
	if len(fullDocs) > 0 {
		sb.WriteString("PRIMARY SOURCE MATERIAL (authoritative, full documents):\n\n")
		for _, doc := range fullDocs {
			sb.WriteString(fmt.Sprintf("=== Full document: %s ===\n", doc.SourceURL))
			sb.WriteString(doc.Text)
			sb.WriteString("\n\n")
			if f.overBudget(sb.String()) {
				break
			}
		}
		// written lazily so a blown budget leaves no empty section behind
		header = "SUPPLEMENTARY EXCERPTS (fragments, use only to fill gaps):\n\n"
	}

	for _, chunk := range result.Chunks {
		block := renderChunk(chunk)
		if f.overBudget(sb.String() + header + block) {
			break
		}
		sb.WriteString(header)
		header = ""
		sb.WriteString(block)
	}

	return sb.String()
}

func renderChunk(chunk types.DocumentChunk) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("--- Source: %s", chunk.SourceFile))
	if chunk.SourceURL != nil && *chunk.SourceURL != "" {
		sb.WriteString(fmt.Sprintf(" (%s)", *chunk.SourceURL))
	}
	sb.WriteString(" ---\n")
	sb.WriteString(chunk.ChunkText)
	sb.WriteString("\n\n")
	return sb.String()
}

func (f *Formatter) overBudget(text string) bool {
	if f.maxTokens <= 0 {
		return false
	}
	count, err := CountTokens(text)
	if err != nil {
		// fall back to a rough character heuristic
		return len(text) > f.maxTokens*4
	}
	return count > f.maxTokens
}

// CountTokens measures text with the cl100k vocabulary, close enough for
// budgeting across the models we target.
func CountTokens(text string) (int, error) {
	enc, err := tiktoken.EncodingForModel("gpt-3.5-turbo")
	if err != nil {
		return 0, err
	}
	return len(enc.Encode(text, nil, nil)), nil
}
