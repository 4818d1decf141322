package agents

import (
	"context"
	"encoding/json"

	"github.com/fyrsmithlabs/researchd/internal/research"
)

const triagePrompt = `You are a triage agent that decides whether a research query needs clarifying questions before research begins.

A query needs clarification when it:
- Lacks specific details about preferences (budget, timing, style)
- Is too broad, like "best restaurants" without location or cuisine
- Uses vague terms like "best", "good", "nice" without criteria
- Is location-based without specific criteria

A query needs no clarification when it:
- Is already specific with clear parameters and constraints
- Is a factual lookup that does not depend on user preferences

When clarification is needed, ask 2-3 concise, friendly questions that gather the missing context. Do not ask for information the user already provided. When no clarification is needed, return an empty question list.`

var triageSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"needs_clarification": {"type": "boolean"},
		"questions": {"type": "array", "items": {"type": "string"}}
	},
	"required": ["needs_clarification", "questions"],
	"additionalProperties": false
}`)

// Triage decides whether a query needs clarification. It implements
// research.TriageAgent.
type Triage struct {
	client *Client
	model  string
}

// NewTriage builds the triage agent.
func NewTriage(client *Client, model string) *Triage {
	return &Triage{client: client, model: model}
}

// Triage returns the clarification decision for one query.
func (t *Triage) Triage(ctx context.Context, query string) (*research.TriageOutcome, error) {
	var outcome research.TriageOutcome
	if err := t.client.CompleteJSON(ctx, t.model, triagePrompt, query, "triage_outcome", triageSchema, &outcome); err != nil {
		return nil, err
	}
	if !outcome.NeedsClarification {
		outcome.Questions = nil
	}
	return &outcome, nil
}
