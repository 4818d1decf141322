package research

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveStatus(t *testing.T) {
	s := newSessionState()
	assert.Equal(t, StatusPending, s.deriveStatus())

	s.originalQuery = "best restaurants"
	require.NoError(t, s.ledger.SetQuestions([]string{"Budget?", "Timing?"}))
	s.triaged = true
	assert.Equal(t, StatusAwaitingClarifications, s.deriveStatus())
	assert.False(t, s.readyForPipeline())

	require.NoError(t, s.ledger.RecordAnswer(0, "under $50"))
	assert.Equal(t, StatusCollectingAnswers, s.deriveStatus())

	require.NoError(t, s.ledger.RecordAnswer(1, "soon"))
	assert.Equal(t, StatusResearching, s.deriveStatus())
	assert.True(t, s.readyForPipeline())

	s.reportData = &ReportData{MarkdownReport: "# R"}
	assert.Equal(t, StatusCompleted, s.deriveStatus())
	assert.True(t, s.deriveStatus().IsTerminal())
	assert.False(t, s.readyForPipeline())
}

func TestDeriveStatus_EndedWins(t *testing.T) {
	s := newSessionState()
	s.originalQuery = "anything"
	s.triaged = true
	s.reportData = &ReportData{MarkdownReport: "# R"}
	s.ended = true
	assert.Equal(t, StatusEnded, s.deriveStatus())
	assert.False(t, s.readyForPipeline())
}

func TestDeriveStatus_UntriagedQueryIsNotReady(t *testing.T) {
	s := newSessionState()
	s.originalQuery = "anything"
	assert.Equal(t, StatusResearching, s.deriveStatus())
	assert.False(t, s.readyForPipeline())
}

func TestProjection(t *testing.T) {
	s := newSessionState()
	s.originalQuery = "best restaurants"
	require.NoError(t, s.ledger.SetQuestions([]string{"Budget?", "Timing?"}))
	require.NoError(t, s.ledger.RecordAnswer(0, "under $50"))

	p := s.projection()
	assert.Equal(t, "best restaurants", p.OriginalQuery)
	assert.Equal(t, []string{"Budget?", "Timing?"}, p.ClarificationQuestions)
	assert.Equal(t, map[string]string{"question_0": "under $50"}, p.ClarificationResponses)
	assert.Equal(t, 1, p.CurrentQuestionIndex)
	assert.Equal(t, "Timing?", p.CurrentQuestion)
	assert.True(t, p.HasMoreQuestions())
	assert.False(t, p.ResearchCompleted)
}

func TestEnrichQuery(t *testing.T) {
	ledger := NewLedger()
	assert.Equal(t, "plain query", enrichQuery("plain query", ledger))

	require.NoError(t, ledger.SetQuestions([]string{"Budget?", "Timing?", "Style?"}))
	require.NoError(t, ledger.RecordAllAnswers(map[int]string{0: "casual"}))

	enriched := enrichQuery("best restaurants", ledger)
	assert.Equal(t,
		"best restaurants\nBudget?: casual\nTiming?: No specific preference\nStyle?: No specific preference",
		enriched)
}
