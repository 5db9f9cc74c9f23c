package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/alexdjulin/ai-librarian/models"
	"github.com/alexdjulin/ai-librarian/vectordb"
)

// WikipediaService retrieves encyclopedia extracts, summarizes them and
// persists the summary for later retrieval. Wikipedia is an opaque provider
// of text given a query; errors propagate to the caller without retries.
type WikipediaService struct {
	httpClient *http.Client
	apiURL     string
	summarizer *Summarizer
	engine     *vectordb.Engine
}

// NewWikipediaService creates the Wikipedia lookup tool.
func NewWikipediaService(apiURL string, timeout time.Duration, summarizer *Summarizer, engine *vectordb.Engine) *WikipediaService {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &WikipediaService{
		httpClient: &http.Client{Timeout: timeout},
		apiURL:     apiURL,
		summarizer: summarizer,
		engine:     engine,
	}
}

// wikiExtractResponse is the subset of the MediaWiki query response we read.
type wikiExtractResponse struct {
	Query struct {
		Pages map[string]struct {
			Title   string `json:"title"`
			Extract string `json:"extract"`
		} `json:"pages"`
	} `json:"query"`
}

// Search retrieves the page content most relevant to the query, summarizes
// the parts relevant to it and stores the summary in book_info. The
// admission gate applies through the query metadata, so barely related
// pages are fetched but never cached.
func (s *WikipediaService) Search(ctx context.Context, query string) (string, error) {
	log.Printf("SERVICE: Tool call: search_wikipedia (query: '%s')", query)

	pageContent, title, err := s.fetchExtract(ctx, query)
	if err != nil {
		return "", err
	}

	summary, err := s.summarizer.Summarize(ctx, pageContent, query)
	if err != nil {
		return "", fmt.Errorf("could not summarize wikipedia page: %w", err)
	}

	metadata := models.Metadata{
		Query:  query,
		Title:  title,
		Source: "wikipedia",
	}
	if err := s.engine.AddToCollection(ctx, summary, vectordb.CollectionBookInfo, metadata); err != nil {
		return "", fmt.Errorf("could not store wikipedia summary: %w", err)
	}

	return summary, nil
}

// fetchExtract calls the MediaWiki API with a search generator and returns
// the plain-text extract of the best-matching page.
func (s *WikipediaService) fetchExtract(ctx context.Context, query string) (extract, title string, err error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("generator", "search")
	params.Set("gsrsearch", query)
	params.Set("gsrlimit", "1")
	params.Set("prop", "extracts")
	params.Set("explaintext", "1")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, s.apiURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", "", fmt.Errorf("failed to create wikipedia request: %w", err)
	}

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return "", "", fmt.Errorf("failed to call wikipedia api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", "", fmt.Errorf("wikipedia api returned non-200 status: %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var wikiResp wikiExtractResponse
	if err := json.NewDecoder(resp.Body).Decode(&wikiResp); err != nil {
		return "", "", fmt.Errorf("failed to decode wikipedia response: %w", err)
	}

	for _, page := range wikiResp.Query.Pages {
		if page.Extract != "" {
			return page.Extract, page.Title, nil
		}
	}
	return "", "", fmt.Errorf("no wikipedia page found for query: %s", query)
}
