package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

type blobDownloader interface {
	DownloadStream(ctx context.Context, containerName string, blobName string, o *azblob.DownloadStreamOptions) (azblob.DownloadStreamResponse, error)
}

// AzureBlobFetcher downloads documents from one storage account with shared
// key credentials, so private blobs can be analysed without a SAS token.
type AzureBlobFetcher struct {
	client blobDownloader
	host   string
}

func NewAzureBlobFetcher(accountName string, accountKey string) (*AzureBlobFetcher, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("invalid storage credentials: %w", err)
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s.blob.core.windows.net", accountName),
		credential,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create blob client: %w", err)
	}

	return &AzureBlobFetcher{client: client, host: blobHost(accountName)}, nil
}

func blobHost(accountName string) string {
	return strings.ToLower(accountName) + ".blob.core.windows.net"
}

// Owns reports whether the URL points into this fetcher's storage account
func (s *AzureBlobFetcher) Owns(documentURL string) bool {
	parsedURL, err := url.Parse(documentURL)
	if err != nil {
		return false
	}
	return strings.EqualFold(parsedURL.Hostname(), s.host)
}

func (s *AzureBlobFetcher) FetchDocument(ctx context.Context, documentURL string) (*Document, error) {
	containerName, blobName, err := parseBlobURL(documentURL)
	if err != nil {
		return nil, err
	}

	downloadResponse, err := s.client.DownloadStream(ctx, containerName, blobName, nil)
	if err != nil {
		return nil, fmt.Errorf("download failed: %w", err)
	}

	body := downloadResponse.Body
	defer body.Close()

	contentType := ""
	if downloadResponse.ContentType != nil {
		contentType = *downloadResponse.ContentType
	}
	return readDocument(body, contentType)
}

// parseBlobURL splits https://<account>.blob.core.windows.net/<container>/<blob>
func parseBlobURL(blobURL string) (string, string, error) {
	parsedURL, err := url.Parse(blobURL)
	if err != nil {
		return "", "", fmt.Errorf("invalid blob URL: %w", err)
	}

	containerName, blobName, ok := strings.Cut(strings.TrimPrefix(parsedURL.Path, "/"), "/")
	if !ok || containerName == "" || blobName == "" {
		return "", "", fmt.Errorf("invalid blob URL: %q does not name a container and blob", blobURL)
	}
	return containerName, blobName, nil
}

// RoutingFetcher sends locators for the configured storage account to the
// blob fetcher and everything else over plain HTTP.
type RoutingFetcher struct {
	blob *AzureBlobFetcher
	http DocumentFetcher
}

// NewRoutingFetcher creates a fetcher; blob may be nil
func NewRoutingFetcher(blob *AzureBlobFetcher, fallback DocumentFetcher) *RoutingFetcher {
	return &RoutingFetcher{blob: blob, http: fallback}
}

func (r *RoutingFetcher) FetchDocument(ctx context.Context, documentURL string) (*Document, error) {
	if r.blob != nil && r.blob.Owns(documentURL) {
		return r.blob.FetchDocument(ctx, documentURL)
	}
	return r.http.FetchDocument(ctx, documentURL)
}
