package llm

import (
	"testing"

	"google.golang.org/genai"
)

func TestGeminiSchema(t *testing.T) {
	def := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{"type": "string", "description": "quiz title"},
			"kind":  map[string]any{"type": "string", "enum": []string{"mcq", "true_false"}},
			"points": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "integer"},
			},
		},
		"required":             []any{"title"},
		"additionalProperties": false,
	}

	s := geminiSchema(def)
	if s.Type != genai.TypeObject {
		t.Fatalf("type = %v", s.Type)
	}
	if len(s.Required) != 1 || s.Required[0] != "title" {
		t.Fatalf("required = %v", s.Required)
	}
	if s.Properties["title"].Description != "quiz title" {
		t.Fatalf("description lost")
	}
	if got := s.Properties["kind"].Enum; len(got) != 2 {
		t.Fatalf("enum = %v", got)
	}
	if s.Properties["points"].Items.Type != genai.TypeInteger {
		t.Fatalf("items type = %v", s.Properties["points"].Items.Type)
	}
}

func TestStringList(t *testing.T) {
	if got := stringList([]any{"a", 1, "b"}); len(got) != 2 {
		t.Fatalf("stringList([]any) = %v", got)
	}
	if got := stringList(nil); got != nil {
		t.Fatalf("stringList(nil) = %v", got)
	}
}
