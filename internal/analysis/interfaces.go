package analysis

import (
	"context"
	"errors"

	"github.com/jimmyshah83/doc-intellij-poc/pkg/models"
)

// ErrAnalysisFailed wraps every failure of the remote analysis service:
// unreachable or rejected locators, bad credentials, failed operations.
var ErrAnalysisFailed = errors.New("document analysis failed")

// DocumentAnalyzer runs a document through a document-understanding service
// and returns its key/value detections. The call blocks until the service has
// finished or failed.
type DocumentAnalyzer interface {
	Analyze(ctx context.Context, documentURL string) (*models.AnalysisResult, error)
}
