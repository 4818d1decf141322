package render

import (
	"context"
	"errors"

	"github.com/fyrsmithlabs/researchd/internal/research"
)

// ErrPDFDisabled is returned when PDF rendering is turned off in config.
var ErrPDFDisabled = errors.New("invalid_request_error: pdf rendering disabled")

// DisabledPDFRenderer stands in for the real renderer when PDF output is
// turned off. The error message carries a non-retryable marker so the task
// layer gives up immediately instead of retrying a permanent condition.
type DisabledPDFRenderer struct{}

// Render always fails with ErrPDFDisabled.
func (DisabledPDFRenderer) Render(context.Context, string, string, string, research.PDFStylingOptions) (string, error) {
	return "", ErrPDFDisabled
}
