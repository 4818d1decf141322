// Package research implements the durable interactive research session.
//
// A session runs as a single Temporal workflow that collects an initial
// query, optionally gathers clarifying answers from the user, and then
// drives the research pipeline (planning, parallel web searches, report
// writing) concurrently with best-effort image generation. The workflow
// survives worker crashes and client disconnects; clients reattach by
// workflow ID and resume exactly where the session left off.
package research

import "context"

// Status is the externally observable session status. It is always derived
// from the underlying session facts, never stored, so a restarted or
// replayed workflow can never report a stale value.
type Status string

const (
	// StatusPending means no query has been submitted yet.
	StatusPending Status = "pending"
	// StatusAwaitingClarifications means questions are set and none answered.
	StatusAwaitingClarifications Status = "awaiting_clarifications"
	// StatusCollectingAnswers means some but not all questions are answered.
	StatusCollectingAnswers Status = "collecting_answers"
	// StatusResearching means the pipeline is running.
	StatusResearching Status = "researching"
	// StatusCompleted means a pipeline result is stored. Terminal.
	StatusCompleted Status = "completed"
	// StatusEnded means the session was ended by the user. Terminal.
	StatusEnded Status = "ended"
)

// IsTerminal reports whether no further transition is possible.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusEnded
}

// WorkflowInput configures a research session at start.
type WorkflowInput struct {
	// InitialQuery, when set together with UseClarifications=false, runs the
	// pipeline immediately without the interactive loop.
	InitialQuery string `json:"initial_query"`
	// UseClarifications enables the interactive clarifying-questions flow.
	UseClarifications bool `json:"use_clarifications"`
}

// UserQueryInput is the argument to the start_research update.
type UserQueryInput struct {
	Query string `json:"query"`
}

// SingleClarificationInput is the argument to the
// provide_single_clarification update.
type SingleClarificationInput struct {
	QuestionIndex int    `json:"question_index"`
	Answer        string `json:"answer"`
}

// ClarificationInput is the argument to the legacy provide_clarifications
// update. Keys follow the "question_<index>" convention.
type ClarificationInput struct {
	Responses map[string]string `json:"responses"`
}

// StatusProjection is the derived, read-only view of a session returned by
// the get_status query and by every update handler.
type StatusProjection struct {
	OriginalQuery          string            `json:"original_query"`
	ClarificationQuestions []string          `json:"clarification_questions"`
	ClarificationResponses map[string]string `json:"clarification_responses"`
	CurrentQuestionIndex   int               `json:"current_question_index"`
	CurrentQuestion        string            `json:"current_question"`
	Status                 Status            `json:"status"`
	ResearchCompleted      bool              `json:"research_completed"`
}

// HasMoreQuestions reports whether a question is awaiting an answer.
func (p *StatusProjection) HasMoreQuestions() bool {
	return p.CurrentQuestionIndex < len(p.ClarificationQuestions)
}

// SearchTask is one planned web search: the term to search for and the
// planner's reason for wanting it.
type SearchTask struct {
	Reason string `json:"reason"`
	Query  string `json:"query"`
}

// SearchPlan is the planner agent's output.
type SearchPlan struct {
	Searches []SearchTask `json:"searches"`
}

// ReportData is the writer agent's output.
type ReportData struct {
	ShortSummary      string   `json:"short_summary"`
	MarkdownReport    string   `json:"markdown_report"`
	FollowUpQuestions []string `json:"follow_up_questions"`
}

// TriageOutcome is the triage agent's decision, expressed as a tagged
// result rather than a polymorphic payload: either clarification questions
// are needed, or the query is specific enough to research directly.
type TriageOutcome struct {
	NeedsClarification bool     `json:"needs_clarification"`
	Questions          []string `json:"questions"`
}

// InteractiveResearchResult is the workflow's terminal result.
type InteractiveResearchResult struct {
	ShortSummary      string   `json:"short_summary"`
	MarkdownReport    string   `json:"markdown_report"`
	FollowUpQuestions []string `json:"follow_up_questions"`
	ImageFilePath     string   `json:"image_file_path,omitempty"`
	PDFFilePath       string   `json:"pdf_file_path,omitempty"`
}

// Activity I/O types.

// TriageInput is the input to the Triage activity.
type TriageInput struct {
	Query string `json:"query"`
}

// PlanSearchesInput is the input to the PlanSearches activity.
type PlanSearchesInput struct {
	Query string `json:"query"`
}

// SearchInput is the input to the Search activity.
type SearchInput struct {
	Task SearchTask `json:"task"`
}

// SearchOutput is the output of the Search activity.
type SearchOutput struct {
	Summary string `json:"summary"`
}

// WriteReportInput is the input to the WriteReport activity.
type WriteReportInput struct {
	Query     string   `json:"query"`
	Summaries []string `json:"summaries"`
}

// ProcessClarificationInput is the input to the ProcessClarification
// activity.
type ProcessClarificationInput struct {
	Answer               string `json:"answer"`
	CurrentQuestionIndex int    `json:"current_question_index"`
	CurrentQuestion      string `json:"current_question"`
	TotalQuestions       int    `json:"total_questions"`
}

// ProcessClarificationResult is the output of the ProcessClarification
// activity.
type ProcessClarificationResult struct {
	QuestionIndex int    `json:"question_index"`
	Answer        string `json:"answer"`
	NewIndex      int    `json:"new_index"`
}

// ImageStylingOptions configures generated report images.
type ImageStylingOptions struct {
	Quality           string `json:"quality"`            // low, medium, high, auto
	Size              string `json:"size"`               // e.g. 1024x1024
	OutputFormat      string `json:"output_format"`      // png, jpeg, webp
	OutputCompression int    `json:"output_compression"` // 0-100 for jpeg/webp, 0 = default
	ResizeWidth       int    `json:"resize_width"`       // resize for PDF embedding, 0 = no resize
}

// DefaultImageStyling returns the styling used when none is configured.
func DefaultImageStyling() ImageStylingOptions {
	return ImageStylingOptions{
		Quality:      "high",
		Size:         "1024x1024",
		OutputFormat: "png",
		ResizeWidth:  600,
	}
}

// GenerateImageInput is the input to the GenerateImage activity.
type GenerateImageInput struct {
	Prompt  string              `json:"prompt"`
	Styling ImageStylingOptions `json:"styling"`
}

// ImageGenerationResult is the output of the GenerateImage activity.
type ImageGenerationResult struct {
	ImageFilePath string `json:"image_file_path"`
	MimeType      string `json:"mime_type"`
	Success       bool   `json:"success"`
	ErrorMessage  string `json:"error_message,omitempty"`
}

// PDFStylingOptions configures rendered PDF reports.
type PDFStylingOptions struct {
	FontSize     int    `json:"font_size"`
	PrimaryColor string `json:"primary_color"`
}

// RenderPDFInput is the input to the RenderPDF activity.
type RenderPDFInput struct {
	MarkdownContent string            `json:"markdown_content"`
	Title           string            `json:"title"`
	ImageFilePath   string            `json:"image_file_path,omitempty"`
	Styling         PDFStylingOptions `json:"styling"`
}

// PDFGenerationResult is the output of the RenderPDF activity.
type PDFGenerationResult struct {
	PDFFilePath  string `json:"pdf_file_path"`
	Success      bool   `json:"success"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// Agent collaborator contracts. Each agent is an opaque function: text in,
// structured result out. Implementations live in internal/agents; the
// workflow only ever sees them through the Activities value.

// TriageAgent decides whether a query needs clarifying questions.
type TriageAgent interface {
	Triage(ctx context.Context, query string) (*TriageOutcome, error)
}

// PlannerAgent turns a query into a plan of web searches.
type PlannerAgent interface {
	PlanSearches(ctx context.Context, query string) (*SearchPlan, error)
}

// SearchAgent performs one web search and summarizes the results.
type SearchAgent interface {
	Search(ctx context.Context, task SearchTask) (string, error)
}

// WriterAgent synthesizes a report from search summaries.
type WriterAgent interface {
	WriteReport(ctx context.Context, query string, summaries []string) (*ReportData, error)
}

// ImageGenerator produces an illustrative image for a research topic.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string, opts ImageStylingOptions) (filePath, mimeType string, err error)
}

// PDFRenderer converts a markdown report into a PDF file.
type PDFRenderer interface {
	Render(ctx context.Context, markdown, title, imagePath string, opts PDFStylingOptions) (filePath string, err error)
}
