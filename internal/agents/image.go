package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/fyrsmithlabs/researchd/internal/research"
)

const imagePrompt = `You are an expert visual content specialist who creates compelling images for research reports. You will be provided with a research query that may be enriched with user preferences and context.

Write a 2-sentence image description that captures the essence of the research topic. Focus on professional, illustrative imagery that enhances understanding. Avoid text-heavy images or screenshots; prefer abstract concepts, diagrams, or representative scenes. Consider the research domain and make the description specific and detailed for high-quality output. Return only the description.`

// ImageSink persists generated image bytes, applying any configured
// resizing and re-encoding, and returns the stored path and MIME type.
type ImageSink interface {
	Save(data []byte, opts research.ImageStylingOptions) (filePath, mimeType string, err error)
}

// ImageAgent generates an illustrative image for a research topic: it asks
// a text model for a short visual description, renders it through the image
// API, and hands the bytes to the sink. It implements
// research.ImageGenerator.
type ImageAgent struct {
	client     *Client
	descModel  string
	imageModel string
	sink       ImageSink
	defaults   research.ImageStylingOptions
}

// NewImageAgent builds the image generation agent. defaults fill in any
// styling fields the caller leaves unset.
func NewImageAgent(client *Client, descModel, imageModel string, sink ImageSink, defaults research.ImageStylingOptions) *ImageAgent {
	return &ImageAgent{
		client:     client,
		descModel:  descModel,
		imageModel: imageModel,
		sink:       sink,
		defaults:   defaults,
	}
}

func (g *ImageAgent) styling(opts research.ImageStylingOptions) research.ImageStylingOptions {
	if opts.Quality == "" {
		opts.Quality = g.defaults.Quality
	}
	if opts.Size == "" {
		opts.Size = g.defaults.Size
	}
	if opts.OutputFormat == "" {
		opts.OutputFormat = g.defaults.OutputFormat
	}
	if opts.OutputCompression == 0 {
		opts.OutputCompression = g.defaults.OutputCompression
	}
	if opts.ResizeWidth == 0 {
		opts.ResizeWidth = g.defaults.ResizeWidth
	}
	return opts
}

// Generate produces and stores one image for the given research prompt.
func (g *ImageAgent) Generate(ctx context.Context, prompt string, opts research.ImageStylingOptions) (string, string, error) {
	opts = g.styling(opts)
	description, err := g.client.Complete(ctx, g.descModel, imagePrompt, prompt)
	if err != nil {
		return "", "", fmt.Errorf("describe image: %w", err)
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return "", "", fmt.Errorf("describe image: empty description")
	}

	data, err := g.client.GenerateImage(ctx, ImageParams{
		Model:             g.imageModel,
		Prompt:            description,
		Quality:           opts.Quality,
		Size:              opts.Size,
		OutputFormat:      opts.OutputFormat,
		OutputCompression: opts.OutputCompression,
	})
	if err != nil {
		return "", "", fmt.Errorf("generate image: %w", err)
	}

	filePath, mimeType, err := g.sink.Save(data, opts)
	if err != nil {
		return "", "", fmt.Errorf("store image: %w", err)
	}
	return filePath, mimeType, nil
}
