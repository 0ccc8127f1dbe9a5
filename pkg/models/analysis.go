package models

// DocumentElement is a text region detected by the analysis service
type DocumentElement struct {
	Content string `json:"content"`
}

// KeyValuePair is one key/value detection. Key and Value are nil when the
// service did not detect or link the corresponding region.
type KeyValuePair struct {
	Key        *DocumentElement `json:"key,omitempty"`
	Value      *DocumentElement `json:"value,omitempty"`
	Confidence float64          `json:"confidence"`
}

// AnalysisResult is the provider-neutral output of a document analysis,
// pairs kept in the order the service returned them.
type AnalysisResult struct {
	ModelID       string         `json:"model_id,omitempty"`
	KeyValuePairs []KeyValuePair `json:"key_value_pairs"`
}
