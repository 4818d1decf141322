package render

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/fyrsmithlabs/researchd/internal/research"
)

const (
	defaultFontSize     = 11
	defaultPrimaryColor = "#1a1a2e"
)

// PDFRenderer converts markdown reports into PDF files by rendering them
// to HTML and printing through headless Chrome. It implements
// research.PDFRenderer.
type PDFRenderer struct {
	outputDir  string
	browserBin string
	defaults   research.PDFStylingOptions
	md         goldmark.Markdown
}

// NewPDFRenderer builds a renderer writing into outputDir. browserBin may
// be empty, in which case the launcher finds or downloads a browser.
// defaults fill in styling fields a caller leaves unset.
func NewPDFRenderer(outputDir, browserBin string, defaults research.PDFStylingOptions) *PDFRenderer {
	return &PDFRenderer{
		outputDir:  outputDir,
		browserBin: browserBin,
		defaults:   defaults,
		md: goldmark.New(
			goldmark.WithExtensions(extension.Table, extension.Strikethrough),
			goldmark.WithRendererOptions(goldmarkhtml.WithUnsafe()),
		),
	}
}

// Render prints the report to a timestamped PDF file and returns its path.
func (r *PDFRenderer) Render(ctx context.Context, markdown, title, imagePath string, opts research.PDFStylingOptions) (string, error) {
	doc, err := r.buildHTML(markdown, title, imagePath, opts)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	htmlPath := filepath.Join(r.outputDir, fmt.Sprintf("report_%s.html", time.Now().Format("20060102_150405")))
	if err := os.WriteFile(htmlPath, []byte(doc), 0o644); err != nil {
		return "", fmt.Errorf("write html: %w", err)
	}
	defer os.Remove(htmlPath)

	pdfData, err := r.printToPDF(ctx, htmlPath)
	if err != nil {
		return "", err
	}

	pdfPath := filepath.Join(r.outputDir, fmt.Sprintf("research_report_%s.pdf", time.Now().Format("20060102_150405")))
	if err := os.WriteFile(pdfPath, pdfData, 0o644); err != nil {
		return "", fmt.Errorf("write pdf: %w", err)
	}
	return pdfPath, nil
}

func (r *PDFRenderer) printToPDF(ctx context.Context, htmlPath string) ([]byte, error) {
	launch := launcher.New().Headless(true)
	if r.browserBin != "" {
		launch = launch.Bin(r.browserBin)
	}
	controlURL, err := launch.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch chrome: %w", err)
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect to chrome: %w", err)
	}
	defer browser.Close()

	absPath, err := filepath.Abs(htmlPath)
	if err != nil {
		return nil, fmt.Errorf("resolve html path: %w", err)
	}
	page, err := browser.Page(proto.TargetCreateTarget{URL: "file://" + absPath})
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("wait for page load: %w", err)
	}

	printBackground := true
	stream, err := page.PDF(&proto.PagePrintToPDF{PrintBackground: printBackground})
	if err != nil {
		return nil, fmt.Errorf("print to pdf: %w", err)
	}
	defer stream.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, stream); err != nil {
		return nil, fmt.Errorf("read pdf stream: %w", err)
	}
	return buf.Bytes(), nil
}

// buildHTML renders the markdown and wraps it in the styled document
// template.
func (r *PDFRenderer) buildHTML(markdown, title, imagePath string, opts research.PDFStylingOptions) (string, error) {
	var body bytes.Buffer
	if err := r.md.Convert([]byte(markdown), &body); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}

	fontSize := opts.FontSize
	if fontSize <= 0 {
		fontSize = r.defaults.FontSize
	}
	if fontSize <= 0 {
		fontSize = defaultFontSize
	}
	primaryColor := opts.PrimaryColor
	if primaryColor == "" {
		primaryColor = r.defaults.PrimaryColor
	}
	if primaryColor == "" {
		primaryColor = defaultPrimaryColor
	}

	imageURL := ""
	if imagePath != "" {
		abs, err := filepath.Abs(imagePath)
		if err == nil {
			imageURL = "file://" + abs
		}
	}

	var doc bytes.Buffer
	err := documentTemplate.Execute(&doc, documentData{
		Title:        title,
		Body:         template.HTML(body.String()),
		ImageURL:     imageURL,
		FontSize:     fontSize,
		PrimaryColor: primaryColor,
	})
	if err != nil {
		return "", fmt.Errorf("render document: %w", err)
	}
	return doc.String(), nil
}

type documentData struct {
	Title        string
	Body         template.HTML
	ImageURL     string
	FontSize     int
	PrimaryColor string
}

var documentTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>{{.Title}}</title>
<style>
body {
	font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif;
	font-size: {{.FontSize}}pt;
	line-height: 1.6;
	color: #333;
	max-width: 800px;
	margin: 0 auto;
	padding: 20px;
}
h1.document-title {
	color: {{.PrimaryColor}};
	border-bottom: 3px solid {{.PrimaryColor}};
	padding-bottom: 10px;
}
h1, h2, h3, h4 {
	color: {{.PrimaryColor}};
	margin-top: 1.4em;
}
img.report-image {
	display: block;
	margin: 20px auto;
	max-width: 100%;
}
table {
	border-collapse: collapse;
	width: 100%;
	margin: 1em 0;
}
th, td {
	border: 1px solid #ccc;
	padding: 6px 10px;
	text-align: left;
}
th {
	background: #f4f4f6;
}
pre {
	background: #f4f4f6;
	padding: 12px;
	overflow-x: auto;
}
code {
	font-family: 'SF Mono', Menlo, Consolas, monospace;
	font-size: 0.92em;
}
blockquote {
	border-left: 4px solid {{.PrimaryColor}};
	margin-left: 0;
	padding-left: 16px;
	color: #555;
}
</style>
</head>
<body>
<h1 class="document-title">{{.Title}}</h1>
{{if .ImageURL}}<img class="report-image" src="{{.ImageURL}}" alt="Report illustration">{{end}}
<div class="content">
{{.Body}}
</div>
</body>
</html>
`))
