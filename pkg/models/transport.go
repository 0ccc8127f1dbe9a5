package models

// AnalyzeDocRequest is the body accepted by the function binding
type AnalyzeDocRequest struct {
	FormURL string `json:"formurl" binding:"required,url"`
}

// GreetingRequest is the optional body of the greeting endpoint
type GreetingRequest struct {
	Name string `json:"name"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// HealthResponse is returned by the health endpoint
type HealthResponse struct {
	Status  string                 `json:"status"`
	Version string                 `json:"version"`
	Time    string                 `json:"time"`
	Metrics map[string]interface{} `json:"metrics,omitempty"`
}
