package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// MaxDocumentSize bounds the bytes read for a single document (Document
// Intelligence rejects larger inputs anyway).
const MaxDocumentSize = 500 * 1024 * 1024

// ErrDocumentTooLarge is returned when a document exceeds MaxDocumentSize
var ErrDocumentTooLarge = errors.New("document exceeds maximum size")

// Document is a downloaded source document
type Document struct {
	Content     []byte
	ContentType string
}

// DocumentFetcher retrieves the raw bytes behind a document locator
type DocumentFetcher interface {
	FetchDocument(ctx context.Context, documentURL string) (*Document, error)
}

// HTTPDocumentFetcher downloads documents over HTTP(S) with retries on
// transient failures.
type HTTPDocumentFetcher struct {
	client  *http.Client
	backoff time.Duration
}

// NewHTTPDocumentFetcher creates an HTTP document fetcher
func NewHTTPDocumentFetcher() *HTTPDocumentFetcher {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,

		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &HTTPDocumentFetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   60 * time.Second,

			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("too many redirects (limit: 3)")
				}
				return nil
			},
		},
		backoff: time.Second,
	}
}

func (h *HTTPDocumentFetcher) FetchDocument(ctx context.Context, documentURL string) (*Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, documentURL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	req.Header.Set("Accept", "application/pdf, image/*, */*")
	req.Header.Set("User-Agent", "doc-intellij-poc/1.0")

	// Retry logic (3 attempts) - only retry on transient errors
	var resp *http.Response
	var lastErr error

	for attempt := 0; attempt < 3; attempt++ {
		resp, err = h.client.Do(req)
		if err != nil {
			lastErr = err
		}

		if err == nil && resp.StatusCode == http.StatusOK {
			break
		}

		if err == nil {
			resp.Body.Close()

			// 4xx client errors are non-retryable
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return nil, fmt.Errorf("failed to fetch document: client error: status code %d", resp.StatusCode)
			}
			lastErr = fmt.Errorf("server error: status code %d", resp.StatusCode)
			resp = nil
		}

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if attempt < 2 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt+1) * h.backoff):
			}
		}
	}

	if resp == nil {
		return nil, fmt.Errorf("failed to fetch document after 3 attempts: %w", lastErr)
	}
	defer resp.Body.Close()

	return readDocument(resp.Body, resp.Header.Get("Content-Type"))
}

func readDocument(body io.Reader, contentType string) (*Document, error) {
	content, err := io.ReadAll(io.LimitReader(body, MaxDocumentSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	if len(content) > MaxDocumentSize {
		return nil, ErrDocumentTooLarge
	}
	return &Document{Content: content, ContentType: contentType}, nil
}
