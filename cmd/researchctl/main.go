// Package main implements the researchctl CLI for driving interactive
// research sessions: submitting a query, answering clarifying questions,
// checking session status, and rendering the final report.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"go.temporal.io/sdk/client"

	"github.com/fyrsmithlabs/researchd/internal/config"
	"github.com/fyrsmithlabs/researchd/internal/logging"
	"github.com/fyrsmithlabs/researchd/internal/protocol"
	"github.com/fyrsmithlabs/researchd/internal/research"
)

const (
	defaultWorkflowID = "interactive-research"
	reportFileName    = "interactive_research_report.md"
)

var (
	configPath   string
	workflowID   string
	statusOnly   bool
	clarifyPairs []string
	newSession   bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "researchctl [query]",
	Short: "Run an interactive research session",
	Long: `researchctl drives a durable research session: it submits your query,
walks you through any clarifying questions, and renders the final report.

Sessions survive disconnects. Re-running with the same --workflow-id
reattaches to an in-flight session and resumes where it left off.

Examples:
  # Start or resume a session
  researchctl "Best restaurants in Melbourne"

  # Check where a session is up to
  researchctl --status --workflow-id interactive-research

  # Answer all pending questions in one shot
  researchctl --clarify question_0=casual --clarify question_1="under $50"

  # Force a fresh session
  researchctl --new-session "Best restaurants in Melbourne"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runResearch,
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", "", "path to config file")
	rootCmd.Flags().StringVar(&workflowID, "workflow-id", defaultWorkflowID, "session identifier")
	rootCmd.Flags().BoolVar(&statusOnly, "status", false, "print session status and exit")
	rootCmd.Flags().StringArrayVar(&clarifyPairs, "clarify", nil, "bulk clarification answer as question_<index>=<answer>, repeatable")
	rootCmd.Flags().BoolVar(&newSession, "new-session", false, "always create a fresh session")
}

func runResearch(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger, err := logging.NewLogger(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    logging.NewTemporalAdapter(logger.Named("temporal")),
	})
	if err != nil {
		return fmt.Errorf("unable to create Temporal client: %w", err)
	}
	defer c.Close()

	runner := protocol.NewRunner(c, &stdinPrompter{in: bufio.NewScanner(os.Stdin)}, logger, cfg.Temporal.TaskQueue, nil)

	switch {
	case statusOnly:
		return printStatus(ctx, runner)
	case len(clarifyPairs) > 0:
		return bulkClarify(ctx, runner)
	default:
		if len(args) == 0 {
			return fmt.Errorf("a research query is required (or use --status / --clarify)")
		}
		return interactiveSession(ctx, runner, args[0])
	}
}

func printStatus(ctx context.Context, runner *protocol.Runner) error {
	proj, err := runner.Status(ctx, workflowID)
	if err != nil {
		return fmt.Errorf("querying session: %w", err)
	}

	fmt.Printf("Session:   %s\n", workflowID)
	fmt.Printf("Status:    %s\n", proj.Status)
	if proj.OriginalQuery != "" {
		fmt.Printf("Query:     %s\n", proj.OriginalQuery)
	}
	for i, question := range proj.ClarificationQuestions {
		answer, ok := proj.ClarificationResponses[research.QuestionKey(i)]
		if !ok {
			answer = "(unanswered)"
		}
		fmt.Printf("  %d. %s %s\n", i+1, question, answer)
	}
	if proj.HasMoreQuestions() {
		fmt.Printf("Next question: %s\n", proj.CurrentQuestion)
	}
	return nil
}

func bulkClarify(ctx context.Context, runner *protocol.Runner) error {
	responses := make(map[string]string, len(clarifyPairs))
	for _, pair := range clarifyPairs {
		key, value, found := strings.Cut(pair, "=")
		if !found {
			return fmt.Errorf("invalid --clarify value %q (expected question_<index>=<answer>)", pair)
		}
		if _, ok := research.ParseQuestionKey(key); !ok {
			return fmt.Errorf("invalid --clarify key %q (expected question_<index>)", key)
		}
		responses[key] = value
	}

	proj, err := runner.ProvideAllAnswers(ctx, workflowID, responses)
	if err != nil {
		return fmt.Errorf("submitting clarifications: %w", err)
	}
	fmt.Printf("Clarifications submitted, session status: %s\n", proj.Status)

	result, err := runner.AwaitResult(ctx, workflowID)
	if errors.Is(err, protocol.ErrResultTimeout) {
		// Timeout is a silent return by design.
		return nil
	}
	if err != nil {
		return err
	}
	return renderResult(result)
}

func interactiveSession(ctx context.Context, runner *protocol.Runner, query string) error {
	result, err := runner.Run(ctx, workflowID, query, newSession)
	if err != nil {
		return err
	}
	if result == nil {
		// Session ended by the user or a retry window expired.
		return nil
	}
	return renderResult(result)
}

func renderResult(result *research.InteractiveResearchResult) error {
	if err := os.WriteFile(reportFileName, []byte(result.MarkdownReport), 0o644); err != nil {
		return fmt.Errorf("saving report: %w", err)
	}

	out, err := glamour.Render(result.MarkdownReport, "auto")
	if err != nil {
		// Fall back to raw markdown if the terminal renderer chokes.
		out = result.MarkdownReport
	}
	fmt.Println(out)

	fmt.Printf("Summary: %s\n", result.ShortSummary)
	if len(result.FollowUpQuestions) > 0 {
		fmt.Println("\nSuggested follow-up research:")
		for _, q := range result.FollowUpQuestions {
			fmt.Printf("  - %s\n", q)
		}
	}
	fmt.Printf("\nReport saved to %s\n", reportFileName)
	if result.ImageFilePath != "" {
		fmt.Printf("Image saved to %s\n", result.ImageFilePath)
	}
	if result.PDFFilePath != "" {
		fmt.Printf("PDF saved to %s\n", result.PDFFilePath)
	}
	return nil
}

// stdinPrompter reads clarification answers from the terminal.
type stdinPrompter struct {
	in *bufio.Scanner
}

func (p *stdinPrompter) AskQuestion(question string, index, total int) (string, error) {
	fmt.Printf("\nQuestion %d/%d: %s\n", index, total, question)
	fmt.Print("> (press enter to skip, type 'exit' to end the session) ")
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", err
		}
		// EOF on stdin ends the session.
		return "exit", nil
	}
	return p.in.Text(), nil
}

func (p *stdinPrompter) Notify(message string) {
	fmt.Println(message)
}
