package extractor

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/jimmyshah83/doc-intellij-poc/pkg/models"
)

func el(content string) *models.DocumentElement {
	return &models.DocumentElement{Content: content}
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name   string
		result *models.AnalysisResult
		want   []models.Field
	}{
		{
			name:   "nil result",
			result: nil,
			want:   []models.Field{},
		},
		{
			name:   "no pairs",
			result: &models.AnalysisResult{},
			want:   []models.Field{},
		},
		{
			name: "key and value present keep input order",
			result: &models.AnalysisResult{KeyValuePairs: []models.KeyValuePair{
				{Key: el("Zip"), Value: el("98052"), Confidence: 0.7},
				{Key: el("City"), Value: el("Redmond"), Confidence: 0.9},
				{Key: el("Zip"), Value: el("98052"), Confidence: 0.7},
			}},
			want: []models.Field{
				{Key: "Zip", Value: "98052", Confidence: 0.7},
				{Key: "City", Value: "Redmond", Confidence: 0.9},
				{Key: "Zip", Value: "98052", Confidence: 0.7},
			},
		},
		{
			name: "missing value becomes empty string",
			result: &models.AnalysisResult{KeyValuePairs: []models.KeyValuePair{
				{Key: el("Name"), Value: el("Jane"), Confidence: 0.98},
				{Key: el("Date"), Confidence: 0.81},
			}},
			want: []models.Field{
				{Key: "Name", Value: "Jane", Confidence: 0.98},
				{Key: "Date", Value: "", Confidence: 0.81},
			},
		},
		{
			name: "missing key is skipped",
			result: &models.AnalysisResult{KeyValuePairs: []models.KeyValuePair{
				{Value: el("orphan"), Confidence: 0.4},
				{Key: el("Signature"), Value: el("J. Doe"), Confidence: 0.66},
				{Confidence: 0.1},
			}},
			want: []models.Field{
				{Key: "Signature", Value: "J. Doe", Confidence: 0.66},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.result)
			if got == nil {
				t.Fatal("Expected non-nil slice")
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestExtract_Idempotent(t *testing.T) {
	result := &models.AnalysisResult{KeyValuePairs: []models.KeyValuePair{
		{Key: el("Name"), Value: el("Jane"), Confidence: 0.98},
		{Key: el("Date"), Confidence: 0.81},
		{Value: el("dangling"), Confidence: 0.2},
	}}

	first := Extract(result)
	second := Extract(result)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Expected identical results, got %+v and %+v", first, second)
	}
	if len(result.KeyValuePairs) != 3 || result.KeyValuePairs[1].Value != nil {
		t.Error("Expected input to be left untouched")
	}
}

func TestExtract_EmptyResultSerializesAsArray(t *testing.T) {
	body, err := json.Marshal(Extract(&models.AnalysisResult{}))
	if err != nil {
		t.Fatalf("Unexpected marshal error: %v", err)
	}
	if string(body) != "[]" {
		t.Errorf("Expected [], got %s", body)
	}
}
