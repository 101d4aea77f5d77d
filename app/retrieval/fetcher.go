package retrieval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"time"

	"clubassist/types"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/rs/zerolog"
)

const maxDocumentBytes = 2 << 20 // per fetched source

// Fetcher pulls complete source documents referenced by retrieved chunks.
// Every fetch is best effort: a failing URL is logged and skipped, the turn
// falls back to chunk-only context for that source.
type Fetcher struct {
	client       *http.Client
	converterURL string
	logger       zerolog.Logger
}

func NewFetcher(converterURL string, logger zerolog.Logger) *Fetcher {
	return &Fetcher{
		client:       &http.Client{Timeout: 15 * time.Second},
		converterURL: converterURL,
		logger:       logger,
	}
}

// FetchAll fetches the given URLs in parallel. The assembler caps the list
// at two, so there is no need for a worker pool. Order of the input is
// preserved in the output; failed fetches leave gaps that are compacted.
func (f *Fetcher) FetchAll(ctx context.Context, urls []string) []types.FullDocument {
	if len(urls) == 0 {
		return nil
	}

	docs := make([]*types.FullDocument, len(urls))
	var wg sync.WaitGroup
	for i, url := range urls {
		wg.Add(1)
		go func(i int, url string) {
			defer wg.Done()
			doc, err := f.fetch(ctx, url)
			if err != nil {
				f.logger.Warn().Err(types.DocumentFetchError(url, err)).Msg("full document skipped")
				return
			}
			docs[i] = doc
		}(i, url)
	}
	wg.Wait()

	var out []types.FullDocument
	for _, doc := range docs {
		if doc != nil {
			out = append(out, *doc)
		}
	}
	return out
}

func (f *Fetcher) fetch(ctx context.Context, url string) (*types.FullDocument, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	if err != nil {
		return nil, err
	}

	text := string(body)
	if isPDF(resp.Header.Get("Content-Type"), body) {
		text, err = f.convertPDF(ctx, url, body)
		if err != nil {
			return nil, err
		}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("empty document body")
	}
	return &types.FullDocument{SourceURL: url, Text: text}, nil
}

func isPDF(contentType string, body []byte) bool {
	if strings.Contains(contentType, "application/pdf") {
		return true
	}
	return bytes.HasPrefix(body, []byte("%PDF-"))
}

// convertPDF ships the PDF bytes to the converter service and returns its
// markdown rendering. The page-count probe rejects truncated or mislabeled
// downloads before they reach the converter.
func (f *Fetcher) convertPDF(ctx context.Context, url string, body []byte) (string, error) {
	if _, err := api.PageCount(bytes.NewReader(body), nil); err != nil {
		return "", fmt.Errorf("not a readable PDF: %w", err)
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("files", url)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(body); err != nil {
		return "", err
	}
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, "POST", f.converterURL, &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("converter status %d", resp.StatusCode)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var converted struct {
		Document struct {
			MdContent string `json:"md_content"`
		} `json:"document"`
	}
	if err := json.Unmarshal(respBody, &converted); err != nil {
		return "", err
	}
	return converted.Document.MdContent, nil
}
