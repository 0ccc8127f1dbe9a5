package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/gabriel-vasile/mimetype"
	"github.com/googleapis/gax-go/v2"
	"github.com/jimmyshah83/doc-intellij-poc/internal/logger"
	"github.com/jimmyshah83/doc-intellij-poc/internal/storage"
	"github.com/jimmyshah83/doc-intellij-poc/pkg/models"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// DocumentAIOptions configures the Google Document AI form parser client
type DocumentAIOptions struct {
	ProjectID       string
	Location        string
	ProcessorID     string
	CredentialsFile string
	Timeout         time.Duration
}

type processorClient interface {
	ProcessDocument(ctx context.Context, req *documentaipb.ProcessRequest, opts ...gax.CallOption) (*documentaipb.ProcessResponse, error)
	Close() error
}

// DocumentAIAnalyzer sends document bytes to a Document AI form parser
// processor and maps its form fields to key/value pairs.
type DocumentAIAnalyzer struct {
	client  processorClient
	fetcher storage.DocumentFetcher
	name    string
	timeout time.Duration
}

func NewDocumentAIAnalyzer(ctx context.Context, opts DocumentAIOptions, fetcher storage.DocumentFetcher) (*DocumentAIAnalyzer, error) {
	if opts.ProjectID == "" || opts.ProcessorID == "" {
		return nil, errors.New("document ai project and processor id are required")
	}
	if opts.Location == "" {
		opts.Location = "us"
	}

	clientOptions := []option.ClientOption{
		option.WithEndpoint(fmt.Sprintf("%s-documentai.googleapis.com:443", opts.Location)),
	}
	if opts.CredentialsFile != "" {
		clientOptions = append(clientOptions, option.WithCredentialsFile(opts.CredentialsFile))
	}

	client, err := documentai.NewDocumentProcessorClient(ctx, clientOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Document AI client for location %s: %w", opts.Location, err)
	}

	return newDocumentAIAnalyzer(client, fetcher, opts), nil
}

func newDocumentAIAnalyzer(client processorClient, fetcher storage.DocumentFetcher, opts DocumentAIOptions) *DocumentAIAnalyzer {
	return &DocumentAIAnalyzer{
		client:  client,
		fetcher: fetcher,
		name:    fmt.Sprintf("projects/%s/locations/%s/processors/%s", opts.ProjectID, opts.Location, opts.ProcessorID),
		timeout: opts.Timeout,
	}
}

func (a *DocumentAIAnalyzer) Analyze(ctx context.Context, documentURL string) (*models.AnalysisResult, error) {
	doc, err := a.fetcher.FetchDocument(ctx, documentURL)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch source document: %w", ErrAnalysisFailed, err)
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	mimeType := detectMimeType(doc)
	logger.WithFields(logrus.Fields{
		"component": "document_ai",
		"processor": a.name,
		"mime_type": mimeType,
		"bytes":     len(doc.Content),
	}).Debug("Processing document")

	resp, err := a.client.ProcessDocument(ctx, &documentaipb.ProcessRequest{
		Name: a.name,
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  doc.Content,
				MimeType: mimeType,
			},
		},
		SkipHumanReview: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAnalysisFailed, err)
	}
	if resp.GetDocument() == nil {
		return nil, fmt.Errorf("%w: no document in response", ErrAnalysisFailed)
	}

	return formFieldsToResult(resp.GetDocument()), nil
}

func (a *DocumentAIAnalyzer) Close() error {
	return a.client.Close()
}

// detectMimeType prefers a specific Content-Type header and otherwise sniffs
// the bytes.
func detectMimeType(doc *storage.Document) string {
	contentType, _, _ := strings.Cut(doc.ContentType, ";")
	contentType = strings.TrimSpace(strings.ToLower(contentType))
	if contentType != "" && contentType != "application/octet-stream" && contentType != "binary/octet-stream" {
		return contentType
	}

	detected, _, _ := strings.Cut(mimetype.Detect(doc.Content).String(), ";")
	return detected
}

func formFieldsToResult(doc *documentaipb.Document) *models.AnalysisResult {
	text := []rune(doc.GetText())
	result := &models.AnalysisResult{KeyValuePairs: []models.KeyValuePair{}}

	for _, page := range doc.GetPages() {
		for _, field := range page.GetFormFields() {
			pair := models.KeyValuePair{
				Confidence: float64(field.GetFieldName().GetConfidence()),
			}
			if name := layoutText(text, field.GetFieldName()); name != "" {
				pair.Key = &models.DocumentElement{Content: name}
			}
			if value := layoutText(text, field.GetFieldValue()); value != "" {
				pair.Value = &models.DocumentElement{Content: value}
			}
			result.KeyValuePairs = append(result.KeyValuePairs, pair)
		}
	}
	return result
}

// layoutText resolves a layout's text anchor against the document text.
// Segment indexes count characters, not bytes.
func layoutText(text []rune, layout *documentaipb.Document_Page_Layout) string {
	var b strings.Builder
	for _, segment := range layout.GetTextAnchor().GetTextSegments() {
		start, end := segment.GetStartIndex(), segment.GetEndIndex()
		if start < 0 || end > int64(len(text)) || start >= end {
			continue
		}
		b.WriteString(string(text[start:end]))
	}
	return strings.TrimSpace(b.String())
}
