package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jimmyshah83/doc-intellij-poc/internal/analysis"
	apperrors "github.com/jimmyshah83/doc-intellij-poc/internal/errors"
	"github.com/jimmyshah83/doc-intellij-poc/internal/extractor"
	"github.com/jimmyshah83/doc-intellij-poc/internal/logger"
	"github.com/jimmyshah83/doc-intellij-poc/internal/observer"
	"github.com/jimmyshah83/doc-intellij-poc/internal/repository"
	"github.com/jimmyshah83/doc-intellij-poc/internal/worker"
	"github.com/jimmyshah83/doc-intellij-poc/pkg/models"
	"github.com/jimmyshah83/doc-intellij-poc/pkg/validation"
	"github.com/sirupsen/logrus"
)

// FormService analyses documents and stores the extracted fields
type FormService interface {
	// AnalyzeForm analyses the document, persists every extracted field and
	// reports the per-record outcome. A failed record does not stop the others.
	AnalyzeForm(ctx context.Context, documentURL string) (*models.AnalysisOutcome, error)

	// ExtractFields analyses the document without persisting anything
	ExtractFields(ctx context.Context, documentURL string) ([]models.Field, error)
}

// Options bounds the remote calls made per request
type Options struct {
	AnalysisTimeout time.Duration
	PersistTimeout  time.Duration
}

type formAnalysisService struct {
	analyzer  analysis.DocumentAnalyzer
	repo      repository.FieldRepository
	pool      *worker.Pool
	validator *validation.URLValidator
	events    observer.Subject
	opts      Options
}

// NewFormAnalysisService creates a new form analysis service. repo may be nil
// when only ExtractFields is used; pool may be nil to persist inline.
func NewFormAnalysisService(
	documentAnalyzer analysis.DocumentAnalyzer,
	fieldRepository repository.FieldRepository,
	pool *worker.Pool,
	validator *validation.URLValidator,
	events observer.Subject,
	opts Options,
) FormService {
	if validator == nil {
		validator = validation.NewURLValidator()
	}
	return &formAnalysisService{
		analyzer:  documentAnalyzer,
		repo:      fieldRepository,
		pool:      pool,
		validator: validator,
		events:    events,
		opts:      opts,
	}
}

func (s *formAnalysisService) AnalyzeForm(ctx context.Context, documentURL string) (*models.AnalysisOutcome, error) {
	if s.repo == nil {
		return nil, apperrors.NewConfigurationError("persistence is not configured", nil)
	}

	start := time.Now()
	fields, err := s.analyze(ctx, documentURL)
	if err != nil {
		return nil, err
	}

	outcome := &models.AnalysisOutcome{
		DocumentURL: documentURL,
		Fields:      fields,
		Records:     s.persist(ctx, documentURL, fields),
	}

	failed := outcome.FailedIndexes()
	s.notify(ctx, observer.PipelineEvent{
		EventType:      observer.AnalysisCompleted,
		DocumentURL:    documentURL,
		ProcessingTime: time.Since(start),
		Success:        len(failed) == 0,
		Metadata: map[string]interface{}{
			"fields":         len(fields),
			"records_stored": outcome.StoredCount(),
			"records_failed": len(failed),
		},
	})

	return outcome, nil
}

func (s *formAnalysisService) ExtractFields(ctx context.Context, documentURL string) ([]models.Field, error) {
	start := time.Now()
	fields, err := s.analyze(ctx, documentURL)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, observer.PipelineEvent{
		EventType:      observer.AnalysisCompleted,
		DocumentURL:    documentURL,
		ProcessingTime: time.Since(start),
		Success:        true,
		Metadata:       map[string]interface{}{"fields": len(fields)},
	})
	return fields, nil
}

// analyze validates the locator, calls the analysis service and extracts fields
func (s *formAnalysisService) analyze(ctx context.Context, documentURL string) ([]models.Field, error) {
	if err := s.validator.ValidateDocumentURL(documentURL); err != nil {
		return nil, err
	}

	s.notify(ctx, observer.PipelineEvent{EventType: observer.AnalysisStarted, DocumentURL: documentURL})
	start := time.Now()

	analysisCtx := ctx
	if s.opts.AnalysisTimeout > 0 {
		var cancel context.CancelFunc
		analysisCtx, cancel = context.WithTimeout(ctx, s.opts.AnalysisTimeout)
		defer cancel()
	}

	result, err := s.analyzer.Analyze(analysisCtx, documentURL)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.Is(err, context.DeadlineExceeded) {
			appErr = apperrors.NewTimeoutError("document analysis timed out", err)
		} else {
			appErr = apperrors.NewAnalysisError("analysis unavailable", err)
		}

		s.notify(ctx, observer.PipelineEvent{
			EventType:      observer.AnalysisFailed,
			DocumentURL:    documentURL,
			ProcessingTime: time.Since(start),
			ErrorMessage:   err.Error(),
		})
		return nil, appErr
	}

	fields := extractor.Extract(result)
	for _, field := range fields {
		logger.WithFields(logrus.Fields{
			"key":        field.Key,
			"value":      field.Value,
			"confidence": field.Confidence,
		}).Debug("Field extracted")
	}
	return fields, nil
}

// persist stores every field and returns statuses in field order
func (s *formAnalysisService) persist(ctx context.Context, documentURL string, fields []models.Field) []models.RecordStatus {
	records := make([]models.RecordStatus, len(fields))

	if s.pool == nil {
		for i, field := range fields {
			records[i] = s.store(ctx, documentURL, i, field)
		}
		return records
	}

	var wg sync.WaitGroup
	for i, field := range fields {
		wg.Add(1)
		submitted := s.pool.Submit(func() {
			defer wg.Done()
			records[i] = s.store(ctx, documentURL, i, field)
		})
		if !submitted {
			wg.Done()
			records[i] = models.RecordStatus{Index: i, Error: "persistence workers are shut down"}
		}
	}
	wg.Wait()

	return records
}

func (s *formAnalysisService) store(ctx context.Context, documentURL string, index int, field models.Field) models.RecordStatus {
	storeCtx := ctx
	if s.opts.PersistTimeout > 0 {
		var cancel context.CancelFunc
		storeCtx, cancel = context.WithTimeout(ctx, s.opts.PersistTimeout)
		defer cancel()
	}

	id, err := s.repo.Store(storeCtx, field)
	if err != nil {
		s.notify(ctx, observer.PipelineEvent{
			EventType:    observer.RecordFailed,
			DocumentURL:  documentURL,
			ErrorMessage: err.Error(),
			Metadata:     map[string]interface{}{"index": index, "key": field.Key},
		})
		return models.RecordStatus{Index: index, Error: err.Error()}
	}

	s.notify(ctx, observer.PipelineEvent{
		EventType:   observer.RecordStored,
		DocumentURL: documentURL,
		Success:     true,
		Metadata:    map[string]interface{}{"index": index, "id": id},
	})
	return models.RecordStatus{Index: index, ID: id, Stored: true}
}

func (s *formAnalysisService) notify(ctx context.Context, event observer.PipelineEvent) {
	if s.events != nil {
		s.events.NotifyObservers(ctx, event)
	}
}
