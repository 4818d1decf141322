package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/fyrsmithlabs/researchd/internal/research"
)

const searchPrompt = "You are a research assistant. Given a search term, you search the web for that term and produce a concise summary of the results. The summary must be 1-2 paragraphs and less than 250 words. Capture the main points. Write succinctly, no need for complete sentences or good grammar. This will be consumed by someone synthesizing a report, so it is vital you capture the essence and ignore any fluff. Do not include any additional commentary other than the summary itself."

// Searcher performs one web search via the responses API and summarizes
// the results. It implements research.SearchAgent.
type Searcher struct {
	client *Client
	model  string
}

// NewSearcher builds the search agent.
func NewSearcher(client *Client, model string) *Searcher {
	return &Searcher{client: client, model: model}
}

// Search runs one planned search and returns the summary text.
func (s *Searcher) Search(ctx context.Context, task research.SearchTask) (string, error) {
	input := fmt.Sprintf("%s\n\nSearch term: %s\nReason for searching: %s", searchPrompt, task.Query, task.Reason)
	summary, err := s.client.WebSearch(ctx, s.model, input)
	if err != nil {
		return "", err
	}
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return "", fmt.Errorf("search returned empty summary")
	}
	return summary, nil
}
