// Package main runs the Temporal worker hosting research sessions.
//
// The worker registers the interactive research workflow and the agent
// activities backing it: triage, search planning, web search, report
// writing, image generation, and PDF rendering.
//
// Usage:
//
//	OPENAI_API_KEY=sk-xxx \
//	TEMPORAL_HOST_PORT=localhost:7233 \
//	./research-worker --config config.yaml
package main

import (
	"flag"
	"fmt"
	"os"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/researchd/internal/agents"
	"github.com/fyrsmithlabs/researchd/internal/config"
	"github.com/fyrsmithlabs/researchd/internal/logging"
	"github.com/fyrsmithlabs/researchd/internal/render"
	"github.com/fyrsmithlabs/researchd/internal/research"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := logging.NewLogger(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	if !cfg.OpenAI.APIKey.IsSet() {
		return fmt.Errorf("OPENAI_API_KEY not set")
	}

	logger.Info("research worker starting",
		zap.String("temporal_host", cfg.Temporal.HostPort),
		zap.String("task_queue", cfg.Temporal.TaskQueue),
	)

	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    logging.NewTemporalAdapter(logger.Named("temporal")),
	})
	if err != nil {
		return fmt.Errorf("unable to create Temporal client: %w", err)
	}
	defer c.Close()

	apiClient, err := agents.NewClient(agents.Config{
		APIKey:  cfg.OpenAI.APIKey.Value(),
		BaseURL: cfg.OpenAI.BaseURL,
		Timeout: cfg.OpenAI.Timeout,
	})
	if err != nil {
		return fmt.Errorf("creating API client: %w", err)
	}

	imageSink := render.NewImageStore(cfg.Render.OutputDir)
	imageDefaults := research.ImageStylingOptions{
		Quality:      cfg.Render.ImageQuality,
		Size:         cfg.Render.ImageSize,
		OutputFormat: cfg.Render.ImageFormat,
		ResizeWidth:  cfg.Render.ImageWidth,
	}
	var pdf research.PDFRenderer = render.DisabledPDFRenderer{}
	if cfg.Render.PDFEnabled {
		pdf = render.NewPDFRenderer(cfg.Render.OutputDir, cfg.Render.BrowserBinPath, research.PDFStylingOptions{
			FontSize:     cfg.Render.PDFBaseFontSize,
			PrimaryColor: cfg.Render.PDFPrimaryColor,
		})
	}

	acts := research.NewActivities(
		agents.NewTriage(apiClient, cfg.OpenAI.TriageModel),
		agents.NewPlanner(apiClient, cfg.OpenAI.PlannerModel),
		agents.NewSearcher(apiClient, cfg.OpenAI.SearchModel),
		agents.NewWriter(apiClient, cfg.OpenAI.WriterModel),
		agents.NewImageAgent(apiClient, cfg.OpenAI.TriageModel, cfg.OpenAI.ImageModel, imageSink, imageDefaults),
		pdf,
	)

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})
	w.RegisterWorkflow(research.InteractiveResearchWorkflow)
	w.RegisterActivity(acts)

	logger.Info("worker running", zap.String("task_queue", cfg.Temporal.TaskQueue))
	if err := w.Run(worker.InterruptCh()); err != nil {
		return fmt.Errorf("worker stopped: %w", err)
	}
	return nil
}
