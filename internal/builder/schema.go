package builder

import "github.com/wahaj323/quizengine/internal/llm"

// DraftSchema is the structured output requested from the model when
// drafting a quiz. Every field is required so strict providers accept it;
// fields that do not apply to a question's type are left empty.
var DraftSchema = &llm.Schema{
	Name:        "quiz-draft",
	Description: "A draft quiz with typed questions and their answer keys",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{
				"type":        "string",
				"description": "Short quiz title",
			},
			"description": map[string]any{
				"type":        "string",
				"description": "One sentence describing what the quiz covers",
			},
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"type": map[string]any{
							"type":        "string",
							"enum":        []any{"mcq", "fill_blank", "true_false", "matching"},
							"description": "Question type",
						},
						"text": map[string]any{
							"type":        "string",
							"description": "The prompt shown to the learner. Mark each blank of a fill_blank question with ___",
						},
						"explanation": map[string]any{
							"type":        "string",
							"description": "Why the answer is correct, shown after submission",
						},
						"options": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"description": "Answer options for mcq, 3 to 5 entries. Empty for other types.",
						},
						"correct_index": map[string]any{
							"type":        "integer",
							"description": "0-based index of the correct option for mcq. 0 for other types.",
						},
						"blanks": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"description": "Expected answer per blank for fill_blank, in order. Empty for other types.",
						},
						"answer": map[string]any{
							"type":        "boolean",
							"description": "Whether the statement is true, for true_false. false for other types.",
						},
						"pairs": map[string]any{
							"type": "array",
							"items": map[string]any{
								"type": "object",
								"properties": map[string]any{
									"left":  map[string]any{"type": "string"},
									"right": map[string]any{"type": "string"},
								},
								"required":             []any{"left", "right"},
								"additionalProperties": false,
							},
							"description": "Items to match for matching, 3 to 6 pairs. Empty for other types.",
						},
					},
					"required":             []any{"type", "text", "explanation", "options", "correct_index", "blanks", "answer", "pairs"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"title", "description", "questions"},
		"additionalProperties": false,
	},
}
