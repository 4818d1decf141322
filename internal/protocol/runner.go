// Package protocol implements the client side of a research session: the
// locate-or-create handshake, the clarification prompt loop, and the
// bounded-retry wait for the final result. A client built on it can
// disconnect at any point and resume against the same workflow ID.
package protocol

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/converter"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/researchd/internal/logging"
	"github.com/fyrsmithlabs/researchd/internal/research"
)

const (
	// Session creation retries on a fixed interval inside a bounded window.
	createRetryInterval = 5 * time.Second
	createWindow        = 300 * time.Second

	// The result wait backs off multiplicatively inside its own window.
	resultInitialDelay = 2 * time.Second
	resultBackoff      = 1.5
	resultMaxDelay     = 5 * time.Second
	resultWindow       = 300 * time.Second
)

// Exhausted retry windows are design-level silent aborts: callers log and
// return without surfacing an error to the human.
var (
	ErrSessionUnavailable = errors.New("session could not be created within the retry window")
	ErrResultTimeout      = errors.New("result did not arrive within the wait window")
)

// Sentinel inputs that end the session from the prompt loop.
var endSentinels = map[string]struct{}{
	"exit": {},
	"quit": {},
	"end":  {},
	"done": {},
}

// IsEndSentinel reports whether the input asks to end the session.
func IsEndSentinel(input string) bool {
	_, ok := endSentinels[strings.ToLower(strings.TrimSpace(input))]
	return ok
}

// WorkflowClient is the slice of the Temporal client the runner needs.
type WorkflowClient interface {
	ExecuteWorkflow(ctx context.Context, options client.StartWorkflowOptions, workflow interface{}, args ...interface{}) (client.WorkflowRun, error)
	QueryWorkflow(ctx context.Context, workflowID, runID, queryType string, args ...interface{}) (converter.EncodedValue, error)
	UpdateWorkflow(ctx context.Context, options client.UpdateWorkflowOptions) (client.WorkflowUpdateHandle, error)
	SignalWorkflow(ctx context.Context, workflowID, runID, signalName string, arg interface{}) error
	GetWorkflow(ctx context.Context, workflowID, runID string) client.WorkflowRun
}

// Prompter is the human-facing side of the clarification loop.
type Prompter interface {
	// AskQuestion poses one clarifying question and returns the raw answer.
	AskQuestion(question string, index, total int) (string, error)
	// Notify shows a progress message.
	Notify(message string)
}

// Runner drives one session on behalf of a client.
type Runner struct {
	client    WorkflowClient
	clock     Clock
	prompter  Prompter
	logger    *logging.Logger
	taskQueue string
}

// NewRunner builds a runner. A nil clock means real time.
func NewRunner(wc WorkflowClient, prompter Prompter, logger *logging.Logger, taskQueue string, clock Clock) *Runner {
	if clock == nil {
		clock = SystemClock()
	}
	return &Runner{
		client:    wc,
		clock:     clock,
		prompter:  prompter,
		logger:    logger,
		taskQueue: taskQueue,
	}
}

// AttachOrCreate locates an existing non-terminal session under workflowID
// or creates a fresh one. When forceNew is set, or the existing session is
// terminal or missing, a new identifier is allocated by suffixing a
// high-resolution timestamp. It returns the session ID actually in use.
func (r *Runner) AttachOrCreate(ctx context.Context, workflowID string, forceNew bool) (string, error) {
	if !forceNew {
		proj, err := r.Status(ctx, workflowID)
		if err == nil && !proj.Status.IsTerminal() {
			r.logger.Info("Attached to existing session",
				zap.String("workflow_id", workflowID),
				zap.String("status", string(proj.Status)),
			)
			return workflowID, nil
		}
		if err != nil {
			r.logger.Debug("No attachable session", zap.String("workflow_id", workflowID), zap.Error(err))
		}
	}

	newID := fmt.Sprintf("%s-%d", workflowID, r.clock.Now().UnixNano())
	if err := r.createSession(ctx, newID); err != nil {
		return "", err
	}
	r.logger.Info("Created session", zap.String("workflow_id", newID))
	return newID, nil
}

// createSession starts the workflow, retrying on a fixed interval until
// the creation window closes.
func (r *Runner) createSession(ctx context.Context, workflowID string) error {
	deadline := r.clock.Now().Add(createWindow)
	for {
		_, err := r.client.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
			ID:        workflowID,
			TaskQueue: r.taskQueue,
		}, research.InteractiveResearchWorkflow, research.WorkflowInput{UseClarifications: true})
		if err == nil {
			return nil
		}
		r.logger.Warn("Session creation failed, retrying",
			zap.String("workflow_id", workflowID),
			zap.Error(err),
		)
		if r.clock.Now().Add(createRetryInterval).After(deadline) {
			return ErrSessionUnavailable
		}
		if err := r.clock.Sleep(ctx, createRetryInterval); err != nil {
			return err
		}
	}
}

// Status fetches the current status projection.
func (r *Runner) Status(ctx context.Context, workflowID string) (research.StatusProjection, error) {
	var proj research.StatusProjection
	value, err := r.client.QueryWorkflow(ctx, workflowID, "", research.QueryGetStatus)
	if err != nil {
		return proj, err
	}
	if err := value.Get(&proj); err != nil {
		return proj, err
	}
	return proj, nil
}

// StartResearch submits the initiating query and returns the resulting
// projection.
func (r *Runner) StartResearch(ctx context.Context, workflowID, query string) (research.StatusProjection, error) {
	return r.update(ctx, workflowID, research.UpdateStartResearch, research.UserQueryInput{Query: query})
}

// ProvideAnswer submits one clarification answer at the given index.
func (r *Runner) ProvideAnswer(ctx context.Context, workflowID string, index int, answer string) (research.StatusProjection, error) {
	return r.update(ctx, workflowID, research.UpdateProvideSingleClarification, research.SingleClarificationInput{
		QuestionIndex: index,
		Answer:        answer,
	})
}

// ProvideAllAnswers submits the bulk clarification map keyed
// "question_<index>".
func (r *Runner) ProvideAllAnswers(ctx context.Context, workflowID string, responses map[string]string) (research.StatusProjection, error) {
	return r.update(ctx, workflowID, research.UpdateProvideClarifications, research.ClarificationInput{Responses: responses})
}

// EndSession signals the workflow to end.
func (r *Runner) EndSession(ctx context.Context, workflowID string) error {
	return r.client.SignalWorkflow(ctx, workflowID, "", research.SignalEndWorkflow, nil)
}

func (r *Runner) update(ctx context.Context, workflowID, name string, arg interface{}) (research.StatusProjection, error) {
	var proj research.StatusProjection
	handle, err := r.client.UpdateWorkflow(ctx, client.UpdateWorkflowOptions{
		UpdateID:     uuid.NewString(),
		WorkflowID:   workflowID,
		UpdateName:   name,
		Args:         []interface{}{arg},
		WaitForStage: client.WorkflowUpdateStageCompleted,
	})
	if err != nil {
		return proj, err
	}
	if err := handle.Get(ctx, &proj); err != nil {
		return proj, err
	}
	return proj, nil
}

// AwaitResult blocks until the session's terminal result arrives, retrying
// transient failures with multiplicative backoff inside the wait window.
func (r *Runner) AwaitResult(ctx context.Context, workflowID string) (*research.InteractiveResearchResult, error) {
	deadline := r.clock.Now().Add(resultWindow)
	wait := backoff{delay: resultInitialDelay, factor: resultBackoff, max: resultMaxDelay}
	for {
		var result research.InteractiveResearchResult
		err := r.client.GetWorkflow(ctx, workflowID, "").Get(ctx, &result)
		if err == nil {
			return &result, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		delay := wait.next()
		if r.clock.Now().Add(delay).After(deadline) {
			r.logger.Warn("Gave up waiting for result", zap.String("workflow_id", workflowID))
			return nil, ErrResultTimeout
		}
		r.logger.Debug("Result not ready, retrying",
			zap.String("workflow_id", workflowID),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		if err := r.clock.Sleep(ctx, delay); err != nil {
			return nil, err
		}
	}
}

// Run drives a whole session: attach or create, submit the query if the
// session is fresh, walk the clarification loop, then await the result.
// The returned result is nil when the session was ended from the prompt
// loop or a retry window expired.
func (r *Runner) Run(ctx context.Context, workflowID, query string, forceNew bool) (*research.InteractiveResearchResult, error) {
	id, err := r.AttachOrCreate(ctx, workflowID, forceNew)
	if errors.Is(err, ErrSessionUnavailable) {
		// Prolonged substrate unavailability is logged, never surfaced.
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	proj, err := r.Status(ctx, id)
	if err != nil {
		return nil, err
	}
	if proj.Status == research.StatusPending {
		proj, err = r.StartResearch(ctx, id, query)
		if err != nil {
			return nil, err
		}
	}

	for proj.Status == research.StatusAwaitingClarifications || proj.Status == research.StatusCollectingAnswers {
		if !proj.HasMoreQuestions() {
			proj, err = r.Status(ctx, id)
			if err != nil {
				return nil, err
			}
			continue
		}

		answer, err := r.prompter.AskQuestion(proj.CurrentQuestion, proj.CurrentQuestionIndex+1, len(proj.ClarificationQuestions))
		if err != nil {
			return nil, err
		}
		if IsEndSentinel(answer) {
			if err := r.EndSession(ctx, id); err != nil {
				return nil, err
			}
			r.prompter.Notify("Session ended.")
			return nil, nil
		}
		if strings.TrimSpace(answer) == "" {
			answer = research.NoPreferenceAnswer
		}

		// The index always comes from the last projection, never from a
		// client-side counter, so a crashed and resumed client cannot
		// drift out of step with the session.
		proj, err = r.ProvideAnswer(ctx, id, proj.CurrentQuestionIndex, answer)
		if err != nil {
			return nil, err
		}
	}

	if proj.Status == research.StatusEnded {
		r.prompter.Notify("Session ended.")
		return nil, nil
	}

	r.prompter.Notify("Researching, this can take a few minutes...")
	result, err := r.AwaitResult(ctx, id)
	if errors.Is(err, ErrResultTimeout) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}
