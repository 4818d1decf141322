package research

import (
	"fmt"
	"strings"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// NoPreferenceAnswer substitutes for a clarification the user never
// answered, both at enrichment time and when a client submits a blank
// answer.
const NoPreferenceAnswer = "No specific preference"

// pipelineOutcome is the merged result of the text pipeline and the
// best-effort image and PDF tasks.
type pipelineOutcome struct {
	Report        *ReportData
	ImageFilePath string
	PDFFilePath   string
}

// runPipeline turns a query into a report. The image task launches first
// and runs concurrently with the whole text pipeline; it is joined only
// after the report is written and can never fail the run. Planning and
// writing failures are fatal and surface as a PipelineError; individual
// search failures are dropped and the writer works from whatever summaries
// survived.
func runPipeline(ctx workflow.Context, a *Activities, query string) (*pipelineOutcome, error) {
	logger := workflow.GetLogger(ctx)

	imageCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 3 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    15 * time.Second,
			MaximumAttempts:    3,
		},
	})
	// Styling is left empty so the worker-side agent applies its configured
	// defaults; baking concrete values into history would pin every replay
	// to whatever the config held at first execution.
	imageFuture := workflow.ExecuteActivity(imageCtx, a.GenerateImage, GenerateImageInput{Prompt: query})

	planCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    3,
		},
	})
	var plan SearchPlan
	if err := workflow.ExecuteActivity(planCtx, a.PlanSearches, PlanSearchesInput{Query: query}).Get(planCtx, &plan); err != nil {
		return nil, &PipelineError{Stage: "plan", Err: err}
	}
	logger.Info("Search plan ready", "searches", len(plan.Searches))

	summaries := fanOutSearches(ctx, a, plan.Searches)
	logger.Info("Searches finished", "succeeded", len(summaries), "planned", len(plan.Searches))

	writeCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 5 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    15 * time.Second,
			MaximumAttempts:    3,
		},
	})
	var report ReportData
	if err := workflow.ExecuteActivity(writeCtx, a.WriteReport, WriteReportInput{Query: query, Summaries: summaries}).Get(writeCtx, &report); err != nil {
		return nil, &PipelineError{Stage: "write", Err: err}
	}

	outcome := &pipelineOutcome{Report: &report}

	var image ImageGenerationResult
	if err := imageFuture.Get(ctx, &image); err != nil {
		logger.Warn("Image generation failed", "error", err)
	} else if image.Success {
		outcome.ImageFilePath = image.ImageFilePath
	} else if image.ErrorMessage != "" {
		logger.Warn("Image generation unsuccessful", "error", image.ErrorMessage)
	}

	pdfCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    15 * time.Second,
			MaximumAttempts:    3,
		},
	})
	var pdf PDFGenerationResult
	if err := workflow.ExecuteActivity(pdfCtx, a.RenderPDF, RenderPDFInput{
		MarkdownContent: report.MarkdownReport,
		Title:           report.ShortSummary,
		ImageFilePath:   outcome.ImageFilePath,
	}).Get(pdfCtx, &pdf); err != nil {
		logger.Warn("PDF rendering failed", "error", err)
	} else if pdf.Success {
		outcome.PDFFilePath = pdf.PDFFilePath
	} else if pdf.ErrorMessage != "" {
		logger.Warn("PDF rendering unsuccessful", "error", pdf.ErrorMessage)
	}

	return outcome, nil
}

// fanOutSearches runs every planned search concurrently and collects the
// summaries in completion order. A failed search contributes nothing; the
// batch never aborts.
func fanOutSearches(ctx workflow.Context, a *Activities, tasks []SearchTask) []string {
	logger := workflow.GetLogger(ctx)
	searchCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    2,
		},
	})

	summaries := make([]string, 0, len(tasks))
	selector := workflow.NewSelector(ctx)
	for _, task := range tasks {
		task := task
		selector.AddFuture(workflow.ExecuteActivity(searchCtx, a.Search, SearchInput{Task: task}), func(f workflow.Future) {
			var out SearchOutput
			if err := f.Get(ctx, &out); err != nil {
				logger.Warn("Search failed", "query", task.Query, "error", err)
				return
			}
			summaries = append(summaries, out.Summary)
		})
	}
	for range tasks {
		selector.Select(ctx)
	}
	return summaries
}

// enrichQuery appends one "<question>: <answer>" line per clarification to
// the original query. A question the user never answered gets the
// no-preference placeholder so enrichment always covers every question.
func enrichQuery(query string, ledger *Ledger) string {
	if !ledger.HasQuestions() {
		return query
	}
	lines := []string{query}
	for i, question := range ledger.Questions() {
		answer, ok := ledger.Answer(i)
		if !ok || strings.TrimSpace(answer) == "" {
			answer = NoPreferenceAnswer
		}
		lines = append(lines, fmt.Sprintf("%s: %s", question, answer))
	}
	return strings.Join(lines, "\n")
}
