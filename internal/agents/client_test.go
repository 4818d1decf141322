package agents

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/researchd/internal/research"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Timeout: 5 * time.Second,
	})
	require.NoError(t, err)
	return client, server
}

func chatReply(t *testing.T, w http.ResponseWriter, content string) {
	t.Helper()
	reply := map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]interface{}{"content": content}},
		},
	}
	require.NoError(t, json.NewEncoder(w).Encode(reply))
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient(Config{})
	require.Error(t, err)
}

func TestClient_Complete(t *testing.T) {
	var gotAuth string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)

		chatReply(t, w, "hello")
	})

	out, err := client.Complete(context.Background(), "gpt-4o-mini", "be brief", "hi")
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
	assert.Equal(t, "Bearer test-key", gotAuth)
}

func TestClient_CompleteJSON(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotNil(t, req.ResponseFormat)
		assert.Equal(t, "json_schema", req.ResponseFormat.Type)
		assert.Equal(t, "triage_outcome", req.ResponseFormat.JSONSchema.Name)

		chatReply(t, w, `{"needs_clarification": true, "questions": ["Budget?"]}`)
	})

	var outcome research.TriageOutcome
	err := client.CompleteJSON(context.Background(), "gpt-4o-mini", "sys", "user", "triage_outcome", triageSchema, &outcome)
	require.NoError(t, err)
	assert.True(t, outcome.NeedsClarification)
	assert.Equal(t, []string{"Budget?"}, outcome.Questions)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "upstream exploded", http.StatusInternalServerError)
			return
		}
		chatReply(t, w, "recovered")
	})

	out, err := client.Complete(context.Background(), "gpt-4o-mini", "sys", "user")
	require.NoError(t, err)
	assert.Equal(t, "recovered", out)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": {"message": "bad size", "type": "invalid_request_error"}}`))
	})

	_, err := client.Complete(context.Background(), "gpt-4o-mini", "sys", "user")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid_request_error")
	assert.Equal(t, int32(1), calls.Load())
	assert.True(t, research.IsTerminalActivityError(err))
}

func TestClient_WebSearch(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/responses", r.URL.Path)
		var req responsesRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Tools, 1)
		assert.Equal(t, "web_search_preview", req.Tools[0].Type)

		reply := map[string]interface{}{
			"output": []map[string]interface{}{
				{"type": "web_search_call"},
				{
					"type": "message",
					"content": []map[string]interface{}{
						{"type": "output_text", "text": "summary of findings"},
					},
				},
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(reply))
	})

	out, err := client.WebSearch(context.Background(), "gpt-4o-mini", "search for this")
	require.NoError(t, err)
	assert.Equal(t, "summary of findings", out)
}

func TestClient_GenerateImage(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/images/generations", r.URL.Path)
		reply := map[string]interface{}{
			"data": []map[string]interface{}{
				{"b64_json": "aGVsbG8="},
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(reply))
	})

	data, err := client.GenerateImage(context.Background(), ImageParams{
		Model:  "gpt-image-1",
		Prompt: "a diagram",
	})
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)
}

func TestPlanner_RejectsEmptyPlan(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		chatReply(t, w, `{"searches": []}`)
	})

	planner := NewPlanner(client, "gpt-4o")
	_, err := planner.PlanSearches(context.Background(), "anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no searches")
}

type fakeSink struct {
	data []byte
}

func (s *fakeSink) Save(data []byte, opts research.ImageStylingOptions) (string, string, error) {
	s.data = data
	return "/tmp/img.png", "image/png", nil
}

func TestImageAgent_Generate(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/chat/completions":
			chatReply(t, w, "A clean professional illustration of a transistor.")
		case "/v1/images/generations":
			reply := map[string]interface{}{
				"data": []map[string]interface{}{{"b64_json": "aW1n"}},
			}
			require.NoError(t, json.NewEncoder(w).Encode(reply))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	sink := &fakeSink{}
	agent := NewImageAgent(client, "gpt-4o-mini", "gpt-image-1", sink, research.DefaultImageStyling())

	path, mime, err := agent.Generate(context.Background(), "History of the transistor", research.DefaultImageStyling())
	require.NoError(t, err)
	assert.Equal(t, "/tmp/img.png", path)
	assert.Equal(t, "image/png", mime)
	assert.Equal(t, []byte("img"), sink.data)
}
