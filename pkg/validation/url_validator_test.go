package validation

import (
	"errors"
	"testing"

	apperrors "github.com/jimmyshah83/doc-intellij-poc/internal/errors"
)

func TestNewURLValidator(t *testing.T) {
	validator := NewURLValidator()
	if validator == nil {
		t.Fatal("Expected non-nil URL validator")
	}

	expectedSchemes := []string{"http", "https"}
	if len(validator.allowedSchemes) != len(expectedSchemes) {
		t.Fatalf("Expected %d schemes, got %d", len(expectedSchemes), len(validator.allowedSchemes))
	}
	for i, scheme := range expectedSchemes {
		if validator.allowedSchemes[i] != scheme {
			t.Errorf("Expected scheme %s, got %s", scheme, validator.allowedSchemes[i])
		}
	}
}

func TestValidateDocumentURL(t *testing.T) {
	tests := []struct {
		name        string
		hosts       []string
		url         string
		wantMessage string // empty means valid
	}{
		{name: "blob url", url: "https://acct.blob.core.windows.net/forms/invoice.pdf"},
		{name: "sas query", url: "https://acct.blob.core.windows.net/forms/w2.pdf?sv=2022-11-02&sig=abc"},
		{name: "plain http", url: "http://192.168.1.1/scan.tiff"},
		{name: "uppercase scheme", url: "HTTPS://example.com/form.pdf"},
		{name: "empty", url: "", wantMessage: "URL cannot be empty"},
		{name: "whitespace", url: " \t\n", wantMessage: "URL cannot be empty"},
		{name: "bad format", url: "://missing-scheme", wantMessage: "Invalid URL format"},
		{name: "relative", url: "not-a-url", wantMessage: "URL scheme not allowed"},
		{name: "ftp", url: "ftp://example.com/form.pdf", wantMessage: "URL scheme not allowed"},
		{name: "file", url: "file://local/path/form.pdf", wantMessage: "URL scheme not allowed"},
		{name: "no host", url: "https://", wantMessage: "URL must have a valid host"},
		{name: "no host with path", url: "http:///path", wantMessage: "URL must have a valid host"},
		{
			name:  "allowed host with port",
			hosts: []string{"example.com"},
			url:   "https://example.com:8443/form.pdf",
		},
		{
			name:        "disallowed host",
			hosts:       []string{"example.com", "trusted.com"},
			url:         "https://malicious.com/form.pdf",
			wantMessage: "URL host not allowed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			validator := NewURLValidator()
			if len(tt.hosts) > 0 {
				validator = NewURLValidatorWithOptions([]string{"http", "https"}, tt.hosts)
			}

			err := validator.ValidateDocumentURL(tt.url)
			if tt.wantMessage == "" {
				if err != nil {
					t.Errorf("Expected %q to pass validation, got %v", tt.url, err)
				}
				return
			}

			var appErr *apperrors.AppError
			if !errors.As(err, &appErr) {
				t.Fatalf("Expected AppError, got %T (%v)", err, err)
			}
			if appErr.Type != apperrors.ErrorTypeValidation {
				t.Errorf("Expected validation error, got %s", appErr.Type)
			}
			if appErr.Message != tt.wantMessage {
				t.Errorf("Expected %q, got %q", tt.wantMessage, appErr.Message)
			}
		})
	}
}

func TestIsHostAllowed(t *testing.T) {
	validator := NewURLValidator()
	if !validator.isHostAllowed("example.com") {
		t.Error("Expected any host to be allowed when no restrictions")
	}

	restricted := NewURLValidatorWithOptions([]string{"https"}, []string{"example.com", "trusted.com"})
	if !restricted.isHostAllowed("Trusted.com") {
		t.Error("Expected host comparison to ignore case")
	}
	if restricted.isHostAllowed("malicious.com") {
		t.Error("Expected malicious.com to be disallowed")
	}
}
