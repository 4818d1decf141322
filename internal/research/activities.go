package research

import (
	"context"
	"strings"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"
)

// Activities bundles the session's external collaborators behind Temporal
// activity methods. Each agent is stateless and constructed once at worker
// startup; activities receive only by-value inputs and return by-value
// outputs, so retries and replays are safe.
type Activities struct {
	triage  TriageAgent
	planner PlannerAgent
	search  SearchAgent
	writer  WriterAgent
	images  ImageGenerator
	pdf     PDFRenderer
}

// NewActivities wires the agent collaborators into an activity set.
func NewActivities(triage TriageAgent, planner PlannerAgent, search SearchAgent, writer WriterAgent, images ImageGenerator, pdf PDFRenderer) *Activities {
	return &Activities{
		triage:  triage,
		planner: planner,
		search:  search,
		writer:  writer,
		images:  images,
		pdf:     pdf,
	}
}

// Triage asks the triage agent whether the query needs clarification.
func (a *Activities) Triage(ctx context.Context, input TriageInput) (*TriageOutcome, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Triaging query", "query", input.Query)
	outcome, err := a.triage.Triage(ctx, input.Query)
	if err != nil {
		return nil, err
	}
	logger.Info("Triage complete", "needs_clarification", outcome.NeedsClarification, "questions", len(outcome.Questions))
	return outcome, nil
}

// PlanSearches asks the planner agent for a batch of web searches.
func (a *Activities) PlanSearches(ctx context.Context, input PlanSearchesInput) (*SearchPlan, error) {
	plan, err := a.planner.PlanSearches(ctx, input.Query)
	if err != nil {
		return nil, err
	}
	activity.GetLogger(ctx).Info("Planned searches", "count", len(plan.Searches))
	return plan, nil
}

// Search runs one planned web search and returns its summary.
func (a *Activities) Search(ctx context.Context, input SearchInput) (*SearchOutput, error) {
	summary, err := a.search.Search(ctx, input.Task)
	if err != nil {
		return nil, err
	}
	return &SearchOutput{Summary: summary}, nil
}

// WriteReport synthesizes the final report from the surviving summaries.
func (a *Activities) WriteReport(ctx context.Context, input WriteReportInput) (*ReportData, error) {
	report, err := a.writer.WriteReport(ctx, input.Query, input.Summaries)
	if err != nil {
		return nil, err
	}
	return report, nil
}

// ProcessClarification validates and normalizes one clarification answer
// before the session commits it. Bad input is a caller error, so it is
// marked non-retryable rather than burning retry attempts.
func (a *Activities) ProcessClarification(ctx context.Context, input ProcessClarificationInput) (*ProcessClarificationResult, error) {
	answer := strings.TrimSpace(input.Answer)
	if answer == "" {
		return nil, temporal.NewNonRetryableApplicationError("answer cannot be empty", "ValidationError", nil)
	}
	if input.CurrentQuestionIndex < 0 || input.CurrentQuestionIndex >= input.TotalQuestions {
		return nil, temporal.NewNonRetryableApplicationError("no question at the given index", "ValidationError", nil)
	}
	activity.GetLogger(ctx).Info("Processed clarification",
		"question", input.CurrentQuestion,
		"index", input.CurrentQuestionIndex,
	)
	return &ProcessClarificationResult{
		QuestionIndex: input.CurrentQuestionIndex,
		Answer:        answer,
		NewIndex:      input.CurrentQuestionIndex + 1,
	}, nil
}

// GenerateImage produces an illustrative image for the report topic.
// Failures carrying a known non-retryable marker are surfaced as terminal
// so the retry policy stops immediately; the pipeline tolerates either way.
func (a *Activities) GenerateImage(ctx context.Context, input GenerateImageInput) (*ImageGenerationResult, error) {
	logger := activity.GetLogger(ctx)
	filePath, mimeType, err := a.images.Generate(ctx, input.Prompt, input.Styling)
	if err != nil {
		if IsTerminalActivityError(err) {
			logger.Warn("Image generation failed terminally", "error", err)
			return nil, temporal.NewNonRetryableApplicationError(err.Error(), "TerminalActivityError", err)
		}
		return nil, err
	}
	logger.Info("Image generated", "file", filePath, "mime_type", mimeType)
	return &ImageGenerationResult{
		ImageFilePath: filePath,
		MimeType:      mimeType,
		Success:       true,
	}, nil
}

// RenderPDF converts the markdown report to a styled PDF. Failure
// classification matches GenerateImage exactly.
func (a *Activities) RenderPDF(ctx context.Context, input RenderPDFInput) (*PDFGenerationResult, error) {
	logger := activity.GetLogger(ctx)
	filePath, err := a.pdf.Render(ctx, input.MarkdownContent, input.Title, input.ImageFilePath, input.Styling)
	if err != nil {
		if IsTerminalActivityError(err) {
			logger.Warn("PDF rendering failed terminally", "error", err)
			return nil, temporal.NewNonRetryableApplicationError(err.Error(), "TerminalActivityError", err)
		}
		return nil, err
	}
	logger.Info("PDF rendered", "file", filePath)
	return &PDFGenerationResult{
		PDFFilePath: filePath,
		Success:     true,
	}, nil
}
