package extractor

import "github.com/jimmyshah83/doc-intellij-poc/pkg/models"

// Extract converts an analysis result into fields, one per key/value pair in
// service order. A pair without a linked value yields an empty value; a pair
// without a key is skipped. The result is never nil.
func Extract(result *models.AnalysisResult) []models.Field {
	if result == nil {
		return []models.Field{}
	}

	fields := make([]models.Field, 0, len(result.KeyValuePairs))
	for _, pair := range result.KeyValuePairs {
		if pair.Key == nil {
			continue
		}

		field := models.Field{
			Key:        pair.Key.Content,
			Confidence: pair.Confidence,
		}
		if pair.Value != nil {
			field.Value = pair.Value.Content
		}
		fields = append(fields, field)
	}
	return fields
}
