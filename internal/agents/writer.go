package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fyrsmithlabs/researchd/internal/research"
)

const writerPrompt = `You are a senior researcher tasked with writing a comprehensive, in-depth report for a research query. You will be provided with the original query and some initial research done by a research assistant.

First come up with a detailed outline describing the structure and flow of the report, then generate the report as your final output. The report must be in markdown format, extensive and thoroughly detailed: aim for 5-10 pages, at least 800-2000 words. Include a comprehensive introduction with background context, multiple detailed sections with subsections, in-depth analysis, specific examples and data points where available, and thorough conclusions. Write substantively on each topic rather than summarizing briefly.

Also produce a short 2-3 sentence summary of the findings and a list of suggested topics to research further.`

var writerSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"short_summary": {"type": "string"},
		"markdown_report": {"type": "string"},
		"follow_up_questions": {"type": "array", "items": {"type": "string"}}
	},
	"required": ["short_summary", "markdown_report", "follow_up_questions"],
	"additionalProperties": false
}`)

// Writer synthesizes the final report from search summaries. It implements
// research.WriterAgent.
type Writer struct {
	client *Client
	model  string
}

// NewWriter builds the writer agent.
func NewWriter(client *Client, model string) *Writer {
	return &Writer{client: client, model: model}
}

// WriteReport returns the synthesized report for a query.
func (w *Writer) WriteReport(ctx context.Context, query string, summaries []string) (*research.ReportData, error) {
	var input strings.Builder
	fmt.Fprintf(&input, "Original query: %s\n\nSummarized search results:\n", query)
	for i, summary := range summaries {
		fmt.Fprintf(&input, "\n[%d] %s\n", i+1, summary)
	}

	var report research.ReportData
	if err := w.client.CompleteJSON(ctx, w.model, writerPrompt, input.String(), "report_data", writerSchema, &report); err != nil {
		return nil, err
	}
	if report.MarkdownReport == "" {
		return nil, fmt.Errorf("writer returned empty report")
	}
	return &report, nil
}
