package analysis

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/jimmyshah83/doc-intellij-poc/internal/logger"
	"github.com/jimmyshah83/doc-intellij-poc/internal/storage"
	"github.com/jimmyshah83/doc-intellij-poc/pkg/models"
	"github.com/sirupsen/logrus"
)

const (
	moduleName    = "docintelligence"
	moduleVersion = "v1.0.0"

	apiKeyHeader = "Ocp-Apim-Subscription-Key"

	statusSucceeded = "succeeded"
)

// BlobSource downloads documents that the analysis service cannot reach on its own
type BlobSource interface {
	Owns(documentURL string) bool
	FetchDocument(ctx context.Context, documentURL string) (*storage.Document, error)
}

// DocIntelligenceOptions configures the Azure AI Document Intelligence client
type DocIntelligenceOptions struct {
	Endpoint   string
	Key        string
	ModelID    string
	APIVersion string

	// Blobs is optional; locators it owns are uploaded inline instead of by URL
	Blobs BlobSource

	PollFrequency time.Duration
	ClientOptions *policy.ClientOptions
}

// DocIntelligenceAnalyzer calls the Document Intelligence REST API and waits
// for the long-running analyze operation.
type DocIntelligenceAnalyzer struct {
	endpoint      string
	modelID       string
	apiVersion    string
	blobs         BlobSource
	pollFrequency time.Duration
	pl            runtime.Pipeline
}

func NewDocIntelligenceAnalyzer(opts DocIntelligenceOptions) (*DocIntelligenceAnalyzer, error) {
	if opts.Endpoint == "" || opts.Key == "" {
		return nil, errors.New("document intelligence endpoint and key are required")
	}
	if opts.ModelID == "" {
		opts.ModelID = "prebuilt-document"
	}
	if opts.APIVersion == "" {
		opts.APIVersion = "2023-07-31"
	}
	if opts.PollFrequency <= 0 {
		opts.PollFrequency = time.Second
	}

	clientOptions := policy.ClientOptions{}
	if opts.ClientOptions != nil {
		clientOptions = *opts.ClientOptions
	}

	pl := runtime.NewPipeline(moduleName, moduleVersion, runtime.PipelineOptions{
		PerCall: []policy.Policy{apiKeyPolicy{key: opts.Key}},
	}, &clientOptions)

	return &DocIntelligenceAnalyzer{
		endpoint:      strings.TrimRight(opts.Endpoint, "/"),
		modelID:       opts.ModelID,
		apiVersion:    opts.APIVersion,
		blobs:         opts.Blobs,
		pollFrequency: opts.PollFrequency,
		pl:            pl,
	}, nil
}

type apiKeyPolicy struct {
	key string
}

func (p apiKeyPolicy) Do(req *policy.Request) (*http.Response, error) {
	req.Raw().Header.Set(apiKeyHeader, p.key)
	return req.Next()
}

type analyzeDocumentRequest struct {
	URLSource    string `json:"urlSource,omitempty"`
	Base64Source []byte `json:"base64Source,omitempty"`
}

type analyzeOperation struct {
	Status        string          `json:"status"`
	Error         *operationError `json:"error,omitempty"`
	AnalyzeResult *analyzeResult  `json:"analyzeResult,omitempty"`
}

type operationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type analyzeResult struct {
	APIVersion    string             `json:"apiVersion"`
	ModelID       string             `json:"modelId"`
	KeyValuePairs []documentKeyValue `json:"keyValuePairs"`
}

type documentKeyValue struct {
	Key        *documentKeyValueElement `json:"key"`
	Value      *documentKeyValueElement `json:"value"`
	Confidence float64                  `json:"confidence"`
}

type documentKeyValueElement struct {
	Content string `json:"content"`
}

func (a *DocIntelligenceAnalyzer) analyzeURL() string {
	return fmt.Sprintf("%s/formrecognizer/documentModels/%s:analyze", a.endpoint, a.modelID)
}

// Analyze submits the document and polls the operation until it completes
func (a *DocIntelligenceAnalyzer) Analyze(ctx context.Context, documentURL string) (*models.AnalysisResult, error) {
	log := logger.WithFields(logrus.Fields{
		"component": "doc_intelligence",
		"model":     a.modelID,
		"url":       documentURL,
	})

	body, err := a.requestBody(ctx, documentURL)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch source document: %w", ErrAnalysisFailed, err)
	}

	req, err := runtime.NewRequest(ctx, http.MethodPost, a.analyzeURL())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAnalysisFailed, err)
	}
	query := req.Raw().URL.Query()
	query.Set("api-version", a.apiVersion)
	req.Raw().URL.RawQuery = query.Encode()
	req.Raw().Header.Set("Accept", "application/json")
	if err := runtime.MarshalAsJSON(req, body); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAnalysisFailed, err)
	}

	resp, err := a.pl.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAnalysisFailed, err)
	}
	if !runtime.HasStatusCode(resp, http.StatusAccepted) {
		return nil, fmt.Errorf("%w: %w", ErrAnalysisFailed, runtime.NewResponseError(resp))
	}
	log.WithField("operation", resp.Header.Get("Operation-Location")).Debug("Analyze operation started")

	poller, err := runtime.NewPoller[analyzeOperation](resp, a.pl, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAnalysisFailed, err)
	}

	op, err := poller.PollUntilDone(ctx, &runtime.PollUntilDoneOptions{Frequency: a.pollFrequency})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAnalysisFailed, err)
	}
	if !strings.EqualFold(op.Status, statusSucceeded) {
		if op.Error != nil {
			return nil, fmt.Errorf("%w: operation %s: %s: %s", ErrAnalysisFailed, op.Status, op.Error.Code, op.Error.Message)
		}
		return nil, fmt.Errorf("%w: operation ended with status %q", ErrAnalysisFailed, op.Status)
	}
	if op.AnalyzeResult == nil {
		return nil, fmt.Errorf("%w: operation returned no result", ErrAnalysisFailed)
	}

	result := toAnalysisResult(op.AnalyzeResult)
	log.WithField("key_value_pairs", len(result.KeyValuePairs)).Debug("Analyze operation completed")
	return result, nil
}

func (a *DocIntelligenceAnalyzer) requestBody(ctx context.Context, documentURL string) (analyzeDocumentRequest, error) {
	if a.blobs == nil || !a.blobs.Owns(documentURL) {
		return analyzeDocumentRequest{URLSource: documentURL}, nil
	}

	doc, err := a.blobs.FetchDocument(ctx, documentURL)
	if err != nil {
		return analyzeDocumentRequest{}, err
	}
	return analyzeDocumentRequest{Base64Source: doc.Content}, nil
}

func toAnalysisResult(r *analyzeResult) *models.AnalysisResult {
	result := &models.AnalysisResult{
		ModelID:       r.ModelID,
		KeyValuePairs: make([]models.KeyValuePair, 0, len(r.KeyValuePairs)),
	}
	for _, kv := range r.KeyValuePairs {
		pair := models.KeyValuePair{Confidence: kv.Confidence}
		if kv.Key != nil {
			pair.Key = &models.DocumentElement{Content: kv.Key.Content}
		}
		if kv.Value != nil {
			pair.Value = &models.DocumentElement{Content: kv.Value.Content}
		}
		result.KeyValuePairs = append(result.KeyValuePairs, pair)
	}
	return result
}
