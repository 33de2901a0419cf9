package service

import (
	"testing"

	"mansahay-rag/internal/vectorstore"
)

func TestParseVariants(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "empty", text: "", want: nil},
		{name: "blank lines dropped", text: "a\n\n  \nb\n", want: []string{"a", "b"}},
		{name: "list markers", text: "1. one\n2) two\n- three\n* four\n• five", want: []string{"one", "two", "three", "four", "five"}},
		{name: "quotes stripped", text: "\"quoted query\"\n'single'\n`tick`", want: []string{"quoted query", "single", "tick"}},
		{name: "numbers inside kept", text: "top 10 sleep tips", want: []string{"top 10 sleep tips"}},
		{name: "windows line endings", text: "a\r\nb\r\n", want: []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseVariants(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("parseVariants() = %q, want %q", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("parseVariants()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestCleanTitle(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{raw: "Exam Stress", want: "Exam Stress"},
		{raw: "\"Coping With Exam Stress.\"", want: "Coping With Exam Stress"},
		{raw: "**Sleep Trouble**", want: "Sleep Trouble"},
		{raw: "One Two Three Four Five Six", want: "One Two Three Four"},
		{raw: "Title Here\nExplanation of the title", want: "Title Here"},
		{raw: "“Feeling Low Today!”", want: "Feeling Low Today"},
		{raw: "   ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := cleanTitle(tt.raw); got != tt.want {
				t.Errorf("cleanTitle(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestDocumentFromResult(t *testing.T) {
	doc, ok := documentFromResult(vectorstore.SearchResult{
		PointID: "p1",
		Score:   0.5,
		Meta: map[string]any{
			vectorstore.FieldContent:  "text",
			vectorstore.FieldSource:   "a.md",
			vectorstore.FieldLocStart: int64(200),
			vectorstore.FieldLocEnd:   int64(1200),
		},
	})
	if !ok {
		t.Fatal("documentFromResult() ok = false")
	}
	if doc.Key() != "a.md_200" || doc.LocationEnd != 1200 {
		t.Errorf("documentFromResult() = %+v", doc)
	}

	if _, ok := documentFromResult(vectorstore.SearchResult{PointID: "p2"}); ok {
		t.Error("documentFromResult() should reject a point without content")
	}
}
