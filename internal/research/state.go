package research

// sessionState holds the durable facts of one research session. It is
// mutated only by the workflow goroutine, so no locking is needed; update
// and query handlers run on the same cooperative scheduler.
type sessionState struct {
	originalQuery string
	triaged       bool // triage outcome applied, or direct path requested
	ledger        *Ledger
	reportData    *ReportData
	imageFilePath string
	pdfFilePath   string
	ended         bool
}

func newSessionState() *sessionState {
	return &sessionState{ledger: NewLedger()}
}

// deriveStatus computes the session status from the underlying facts. It is
// recomputed on every request and never stored, so a replayed or restarted
// session can never report a stale value.
func (s *sessionState) deriveStatus() Status {
	switch {
	case s.ended:
		return StatusEnded
	case s.reportData != nil:
		return StatusCompleted
	case s.ledger.HasQuestions() && !s.ledger.IsComplete():
		if s.ledger.AnsweredCount() == 0 {
			return StatusAwaitingClarifications
		}
		return StatusCollectingAnswers
	case s.originalQuery != "":
		return StatusResearching
	default:
		return StatusPending
	}
}

// projection builds the read-only status view returned by the status query
// and by every update handler.
func (s *sessionState) projection() StatusProjection {
	p := StatusProjection{
		OriginalQuery:          s.originalQuery,
		ClarificationQuestions: s.ledger.Questions(),
		ClarificationResponses: s.ledger.Answers(),
		CurrentQuestionIndex:   s.ledger.NextIndex(),
		Status:                 s.deriveStatus(),
		ResearchCompleted:      s.reportData != nil,
	}
	if question, ok := s.ledger.CurrentQuestion(); ok {
		p.CurrentQuestion = question
	}
	return p
}

// readyForPipeline reports whether the clarification phase is finished and
// the pipeline has not yet produced a result.
func (s *sessionState) readyForPipeline() bool {
	if s.ended || s.reportData != nil || s.originalQuery == "" || !s.triaged {
		return false
	}
	if s.ledger.HasQuestions() {
		return s.ledger.IsComplete()
	}
	return true
}
