package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

type fakeDownloader struct {
	container string
	blob      string
	content   string
	err       error
}

func (f *fakeDownloader) DownloadStream(ctx context.Context, containerName string, blobName string, o *azblob.DownloadStreamOptions) (azblob.DownloadStreamResponse, error) {
	f.container = containerName
	f.blob = blobName
	var resp azblob.DownloadStreamResponse
	if f.err != nil {
		return resp, f.err
	}
	contentType := "application/pdf"
	resp.Body = io.NopCloser(strings.NewReader(f.content))
	resp.ContentType = &contentType
	return resp, nil
}

type stubFetcher struct {
	called bool
}

func (s *stubFetcher) FetchDocument(ctx context.Context, documentURL string) (*Document, error) {
	s.called = true
	return &Document{Content: []byte("http"), ContentType: "text/plain"}, nil
}

func TestParseBlobURL(t *testing.T) {
	tests := []struct {
		url           string
		wantContainer string
		wantBlob      string
		wantErr       bool
	}{
		{url: "https://acct.blob.core.windows.net/forms/invoice.pdf", wantContainer: "forms", wantBlob: "invoice.pdf"},
		{url: "https://acct.blob.core.windows.net/forms/2024/q1/w2%20form.pdf?sv=x", wantContainer: "forms", wantBlob: "2024/q1/w2 form.pdf"},
		{url: "https://acct.blob.core.windows.net/forms", wantErr: true},
		{url: "https://acct.blob.core.windows.net/forms/", wantErr: true},
		{url: "https://acct.blob.core.windows.net/", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			container, blob, err := parseBlobURL(tt.url)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error, got container=%q blob=%q", container, blob)
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if container != tt.wantContainer || blob != tt.wantBlob {
				t.Errorf("Expected %s/%s, got %s/%s", tt.wantContainer, tt.wantBlob, container, blob)
			}
		})
	}
}

func TestAzureBlobFetcher_FetchDocument(t *testing.T) {
	downloader := &fakeDownloader{content: "%PDF-1.7"}
	fetcher := &AzureBlobFetcher{client: downloader, host: blobHost("Acct")}

	doc, err := fetcher.FetchDocument(context.Background(), "https://acct.blob.core.windows.net/forms/a/b.pdf")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if downloader.container != "forms" || downloader.blob != "a/b.pdf" {
		t.Errorf("Unexpected download target %s/%s", downloader.container, downloader.blob)
	}
	if string(doc.Content) != "%PDF-1.7" || doc.ContentType != "application/pdf" {
		t.Errorf("Unexpected document %+v", doc)
	}
}

func TestAzureBlobFetcher_DownloadError(t *testing.T) {
	fetcher := &AzureBlobFetcher{client: &fakeDownloader{err: errors.New("403")}, host: blobHost("acct")}

	_, err := fetcher.FetchDocument(context.Background(), "https://acct.blob.core.windows.net/forms/b.pdf")
	if err == nil || !strings.Contains(err.Error(), "download failed") {
		t.Errorf("Expected download failure, got %v", err)
	}
}

func TestRoutingFetcher(t *testing.T) {
	blob := &AzureBlobFetcher{client: &fakeDownloader{content: "blob"}, host: blobHost("acct")}
	fallback := &stubFetcher{}
	router := NewRoutingFetcher(blob, fallback)

	doc, err := router.FetchDocument(context.Background(), "https://ACCT.blob.core.windows.net/forms/b.pdf")
	if err != nil || string(doc.Content) != "blob" {
		t.Fatalf("Expected blob content, got %+v, %v", doc, err)
	}
	if fallback.called {
		t.Error("Did not expect HTTP fallback for owned URL")
	}

	doc, err = router.FetchDocument(context.Background(), "https://other.blob.core.windows.net/forms/b.pdf")
	if err != nil || string(doc.Content) != "http" {
		t.Fatalf("Expected HTTP content, got %+v, %v", doc, err)
	}

	noBlob := NewRoutingFetcher(nil, &stubFetcher{})
	if _, err := noBlob.FetchDocument(context.Background(), "https://acct.blob.core.windows.net/forms/b.pdf"); err != nil {
		t.Errorf("Expected fallback without blob fetcher, got %v", err)
	}
}
