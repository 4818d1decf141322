package agents

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fyrsmithlabs/researchd/internal/research"
)

const plannerPrompt = "You are a helpful research assistant. Given a query, come up with a set of web searches to perform to best answer the query. Output between 5 and 20 terms to query for. For each search give the term and your reasoning for why it matters to the query."

var plannerSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"searches": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"reason": {"type": "string"},
					"query": {"type": "string"}
				},
				"required": ["reason", "query"],
				"additionalProperties": false
			}
		}
	},
	"required": ["searches"],
	"additionalProperties": false
}`)

// Planner turns a query into a batch of web searches. It implements
// research.PlannerAgent.
type Planner struct {
	client *Client
	model  string
}

// NewPlanner builds the planner agent.
func NewPlanner(client *Client, model string) *Planner {
	return &Planner{client: client, model: model}
}

// PlanSearches returns the search plan for a query.
func (p *Planner) PlanSearches(ctx context.Context, query string) (*research.SearchPlan, error) {
	var plan research.SearchPlan
	if err := p.client.CompleteJSON(ctx, p.model, plannerPrompt, query, "search_plan", plannerSchema, &plan); err != nil {
		return nil, err
	}
	if len(plan.Searches) == 0 {
		return nil, fmt.Errorf("planner returned no searches")
	}
	return &plan, nil
}
