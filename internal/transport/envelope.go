package transport

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/jimmyshah83/doc-intellij-poc/internal/logger"

	"github.com/gin-gonic/gin"
)

// invocationRequest is the HTTP trigger payload the Functions host sends
// when it does not forward the raw request
type invocationRequest struct {
	URL     string              `json:"Url"`
	Method  string              `json:"Method"`
	Query   map[string]string   `json:"Query"`
	Headers map[string][]string `json:"Headers"`
	Body    json.RawMessage     `json:"Body"`
}

type invocation struct {
	Data struct {
		Req *invocationRequest `json:"req"`
	} `json:"Data"`
}

type invocationResponse struct {
	StatusCode int               `json:"statusCode"`
	Body       string            `json:"body"`
	Headers    map[string]string `json:"headers"`
}

type invocationResult struct {
	Outputs struct {
		Res invocationResponse `json:"res"`
	} `json:"Outputs"`
	Logs        []string    `json:"Logs"`
	ReturnValue interface{} `json:"ReturnValue"`
}

// invocationEnvelope unwraps a Functions host invocation into a plain request
// and wraps whatever the handler writes into the host's output binding.
// Requests that are not envelopes pass through untouched.
func invocationEnvelope() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost || c.Request.Body == nil {
			c.Next()
			return
		}

		raw, err := io.ReadAll(c.Request.Body)
		if err != nil {
			code := http.StatusBadRequest
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				code = http.StatusRequestEntityTooLarge
			}
			respondError(c, code, "invalid request body", err)
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(raw))

		var env invocation
		if err := json.Unmarshal(raw, &env); err != nil || env.Data.Req == nil {
			c.Next()
			return
		}

		c.Request = unwrapInvocation(c.Request, env.Data.Req)

		original := c.Writer
		capture := &envelopeWriter{ResponseWriter: original, header: make(http.Header)}
		c.Writer = capture

		c.Next()

		c.Writer = original
		status := capture.Status()
		if status == 0 {
			status = http.StatusOK
		}

		var result invocationResult
		result.Outputs.Res = invocationResponse{
			StatusCode: status,
			Body:       capture.body.String(),
			Headers:    flattenHeader(capture.header),
		}
		result.Logs = []string{}

		logger.WithField("status_code", status).Debug("Wrapped invocation response")
		c.JSON(http.StatusOK, result)
	}
}

// unwrapInvocation rebuilds the inner HTTP request on the outer one's context
func unwrapInvocation(outer *http.Request, inner *invocationRequest) *http.Request {
	req := outer.Clone(outer.Context())

	if inner.Method != "" {
		req.Method = strings.ToUpper(inner.Method)
	}

	query := url.Values{}
	if parsed, err := url.Parse(inner.URL); err == nil {
		query = parsed.Query()
	}
	for key, value := range inner.Query {
		query.Set(key, value)
	}
	req.URL.RawQuery = query.Encode()

	req.Header = make(http.Header)
	for key, values := range inner.Headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	body := invocationBody(inner.Body)
	req.Body = io.NopCloser(strings.NewReader(body))
	req.ContentLength = int64(len(body))
	if body != "" && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	return req
}

// invocationBody accepts the body either as a JSON string or as inline JSON
func invocationBody(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}
	return string(raw)
}

func flattenHeader(header http.Header) map[string]string {
	flat := make(map[string]string, len(header))
	for key, values := range header {
		flat[key] = strings.Join(values, ", ")
	}
	return flat
}

// envelopeWriter buffers the handler's response instead of sending it
type envelopeWriter struct {
	gin.ResponseWriter
	header http.Header
	body   bytes.Buffer
	status int
}

func (w *envelopeWriter) Header() http.Header { return w.header }

func (w *envelopeWriter) WriteHeader(code int) {
	if code > 0 {
		w.status = code
	}
}

func (w *envelopeWriter) WriteHeaderNow() {}

func (w *envelopeWriter) Write(data []byte) (int, error) { return w.body.Write(data) }

func (w *envelopeWriter) WriteString(s string) (int, error) { return w.body.WriteString(s) }

func (w *envelopeWriter) Status() int { return w.status }

func (w *envelopeWriter) Size() int { return w.body.Len() }

func (w *envelopeWriter) Written() bool { return w.status != 0 || w.body.Len() > 0 }
