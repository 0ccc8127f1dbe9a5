package models

// Field is one extracted key/value pair
type Field struct {
	Key        string  `json:"key"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

// Record is the persisted representation of a Field
type Record struct {
	ID         string  `json:"id"`
	Key        string  `json:"key"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

// NewRecord pairs a field with its generated identifier
func NewRecord(id string, field Field) Record {
	return Record{
		ID:         id,
		Key:        field.Key,
		Value:      field.Value,
		Confidence: field.Confidence,
	}
}

// RecordStatus reports the persistence outcome of the field at Index
type RecordStatus struct {
	Index  int    `json:"index"`
	ID     string `json:"id,omitempty"`
	Stored bool   `json:"stored"`
	Error  string `json:"error,omitempty"`
}

// AnalysisOutcome is the result of one analyze-and-store pass.
// Records holds one status per field, in field order.
type AnalysisOutcome struct {
	DocumentURL string         `json:"document_url"`
	Fields      []Field        `json:"fields"`
	Records     []RecordStatus `json:"records"`
}

// StoredCount returns the number of fields that were persisted
func (o *AnalysisOutcome) StoredCount() int {
	n := 0
	for _, r := range o.Records {
		if r.Stored {
			n++
		}
	}
	return n
}

// FailedIndexes returns the indexes of fields whose persistence failed
func (o *AnalysisOutcome) FailedIndexes() []int {
	var failed []int
	for _, r := range o.Records {
		if !r.Stored {
			failed = append(failed, r.Index)
		}
	}
	return failed
}
