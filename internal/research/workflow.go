package research

import (
	"strings"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// Names of the workflow's public channels. Clients and tests address the
// session through these, never through internal state.
const (
	UpdateStartResearch              = "start_research"
	UpdateProvideSingleClarification = "provide_single_clarification"
	UpdateProvideClarifications      = "provide_clarifications"
	QueryGetStatus                   = "get_status"
	SignalEndWorkflow                = "end_workflow"
)

// Placeholder results for sessions that end without a report.
var (
	endedResult = InteractiveResearchResult{
		ShortSummary:   "Research ended by user",
		MarkdownReport: "Research workflow ended by user",
	}
	failedResult = ReportData{
		ShortSummary:   "No research completed",
		MarkdownReport: "Research failed to start properly",
	}
)

// InteractiveResearchWorkflow runs one research session end to end.
//
// The session collects a query through the start_research update, gathers
// clarification answers one at a time (or in bulk through the legacy path),
// then runs the research pipeline and returns the final report. All client
// interaction happens over updates, queries, and signals, so a client can
// disconnect and reattach by workflow ID at any point.
//
// The main loop is a reconciliation loop: on every wake it recomputes the
// session facts (ended, result present, clarifications complete) and picks
// the single next action. Nothing depends on observing a transition edge,
// which keeps the loop correct across worker restarts and history replay.
func InteractiveResearchWorkflow(ctx workflow.Context, input WorkflowInput) (*InteractiveResearchResult, error) {
	logger := workflow.GetLogger(ctx)
	state := newSessionState()

	var a *Activities

	if err := workflow.SetQueryHandler(ctx, QueryGetStatus, func() (StatusProjection, error) {
		return state.projection(), nil
	}); err != nil {
		return nil, err
	}

	// The end signal only flips a fact; the reconciliation loop reacts.
	workflow.Go(ctx, func(gctx workflow.Context) {
		ch := workflow.GetSignalChannel(gctx, SignalEndWorkflow)
		for {
			ch.Receive(gctx, nil)
			logger.Info("End signal received")
			state.ended = true
		}
	})

	if err := workflow.SetUpdateHandlerWithOptions(ctx, UpdateStartResearch,
		func(uctx workflow.Context, in UserQueryInput) (StatusProjection, error) {
			state.originalQuery = strings.TrimSpace(in.Query)
			if err := triageQuery(uctx, a, state, input.UseClarifications); err != nil {
				// Leave the session restartable rather than wedged.
				state.originalQuery = ""
				return state.projection(), err
			}
			return state.projection(), nil
		},
		workflow.UpdateHandlerOptions{
			Validator: func(in UserQueryInput) error {
				if strings.TrimSpace(in.Query) == "" {
					return NewValidationError("query cannot be empty")
				}
				if state.ended {
					return NewInvalidStateError("session has ended")
				}
				if state.originalQuery != "" {
					return NewInvalidStateError("research already started")
				}
				return nil
			},
		},
	); err != nil {
		return nil, err
	}

	if err := workflow.SetUpdateHandlerWithOptions(ctx, UpdateProvideSingleClarification,
		func(uctx workflow.Context, in SingleClarificationInput) (StatusProjection, error) {
			question, _ := state.ledger.CurrentQuestion()
			actx := workflow.WithActivityOptions(uctx, workflow.ActivityOptions{
				StartToCloseTimeout: 30 * time.Second,
				RetryPolicy: &temporal.RetryPolicy{
					InitialInterval:    time.Second,
					BackoffCoefficient: 2.0,
					MaximumAttempts:    3,
				},
			})
			var processed ProcessClarificationResult
			err := workflow.ExecuteActivity(actx, a.ProcessClarification, ProcessClarificationInput{
				Answer:               in.Answer,
				CurrentQuestionIndex: in.QuestionIndex,
				CurrentQuestion:      question,
				TotalQuestions:       len(state.ledger.Questions()),
			}).Get(actx, &processed)
			if err != nil {
				return state.projection(), err
			}
			if err := state.ledger.RecordAnswer(processed.QuestionIndex, processed.Answer); err != nil {
				return state.projection(), err
			}
			return state.projection(), nil
		},
		workflow.UpdateHandlerOptions{
			Validator: func(in SingleClarificationInput) error {
				if state.ended {
					return NewInvalidStateError("session has ended")
				}
				if !state.ledger.HasQuestions() || state.ledger.IsComplete() {
					return NewInvalidStateError("not collecting clarifications")
				}
				if strings.TrimSpace(in.Answer) == "" {
					return NewValidationError("answer cannot be empty")
				}
				return nil
			},
		},
	); err != nil {
		return nil, err
	}

	if err := workflow.SetUpdateHandlerWithOptions(ctx, UpdateProvideClarifications,
		func(uctx workflow.Context, in ClarificationInput) (StatusProjection, error) {
			answers := make(map[int]string, len(in.Responses))
			for key, answer := range in.Responses {
				if index, ok := ParseQuestionKey(key); ok {
					answers[index] = answer
				}
			}
			if err := state.ledger.RecordAllAnswers(answers); err != nil {
				return state.projection(), err
			}
			return state.projection(), nil
		},
		workflow.UpdateHandlerOptions{
			Validator: func(in ClarificationInput) error {
				if state.ended {
					return NewInvalidStateError("session has ended")
				}
				if len(in.Responses) == 0 {
					return NewValidationError("clarification responses cannot be empty")
				}
				return nil
			},
		},
	); err != nil {
		return nil, err
	}

	// A query supplied at start skips the start_research round-trip.
	if query := strings.TrimSpace(input.InitialQuery); query != "" {
		state.originalQuery = query
		if err := triageQuery(ctx, a, state, input.UseClarifications); err != nil {
			logger.Error("Triage failed for initial query", "error", err)
			state.reportData = &failedResult
		}
	}

	for state.reportData == nil && !state.ended {
		if err := workflow.Await(ctx, func() bool {
			return state.ended || state.reportData != nil || state.readyForPipeline()
		}); err != nil {
			return nil, err
		}
		if state.ended || state.reportData != nil {
			break
		}

		query := enrichQuery(state.originalQuery, state.ledger)
		logger.Info("Starting research pipeline", "query", query)
		outcome, err := runPipeline(ctx, a, query)
		if state.ended {
			// A result arriving after the end signal is discarded.
			logger.Info("Discarding pipeline result for ended session")
			break
		}
		if err != nil {
			logger.Error("Research pipeline failed", "error", err)
			state.reportData = &failedResult
			continue
		}
		state.reportData = outcome.Report
		state.imageFilePath = outcome.ImageFilePath
		state.pdfFilePath = outcome.PDFFilePath
	}

	// Let in-flight handlers observe the terminal state before returning.
	if err := workflow.Await(ctx, func() bool {
		return workflow.AllHandlersFinished(ctx)
	}); err != nil {
		return nil, err
	}

	if state.ended {
		logger.Info("Session ended by user")
		result := endedResult
		return &result, nil
	}

	logger.Info("Session completed",
		"image_file", state.imageFilePath,
		"pdf_file", state.pdfFilePath,
	)
	return &InteractiveResearchResult{
		ShortSummary:      state.reportData.ShortSummary,
		MarkdownReport:    state.reportData.MarkdownReport,
		FollowUpQuestions: state.reportData.FollowUpQuestions,
		ImageFilePath:     state.imageFilePath,
		PDFFilePath:       state.pdfFilePath,
	}, nil
}

// triageQuery decides whether the query needs clarifying questions. With
// clarifications disabled the query goes straight to the pipeline. A triage
// outcome with no questions also takes the direct path.
func triageQuery(ctx workflow.Context, a *Activities, state *sessionState, useClarifications bool) error {
	if !useClarifications {
		state.triaged = true
		return nil
	}
	actx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    3,
		},
	})
	var outcome TriageOutcome
	if err := workflow.ExecuteActivity(actx, a.Triage, TriageInput{Query: state.originalQuery}).Get(actx, &outcome); err != nil {
		return err
	}
	if outcome.NeedsClarification && len(outcome.Questions) > 0 {
		if err := state.ledger.SetQuestions(outcome.Questions); err != nil {
			return err
		}
	}
	state.triaged = true
	return nil
}
