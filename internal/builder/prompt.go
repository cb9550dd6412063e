package builder

import (
	"fmt"
	"strings"

	"github.com/wahaj323/quizengine/internal/quiz"
)

const draftSystemPrompt = `You are a teacher writing a short assessment quiz for a language course.

Rules:
- Write exactly the requested number of questions, using only the allowed question types.
- Each question must be self-contained and test a single idea from the topic.
- mcq: 3 to 5 options, exactly one correct, distractors reflect common learner mistakes.
- fill_blank: mark every blank in the text with ___ and give one expected answer per blank, in order.
- true_false: a single statement that is clearly true or clearly false.
- matching: 3 to 6 pairs with unique left items.
- Leave fields that do not apply to a question's type empty (empty list, 0 or false).
- Keep explanations to one or two sentences.`

// buildDraftMessage constructs the user message for a draft request.
func buildDraftMessage(in DraftInput) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Topic: %s\n", in.Topic)
	if in.Level != "" {
		fmt.Fprintf(&b, "Level: %s\n", in.Level)
	}
	fmt.Fprintf(&b, "Number of questions: %d\n", in.Count)

	kinds := in.Kinds
	if len(kinds) == 0 {
		kinds = quiz.Kinds
	}
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	fmt.Fprintf(&b, "Allowed types: %s\n", strings.Join(names, ", "))

	if in.Notes != "" {
		b.WriteString("\nTeacher notes:\n")
		b.WriteString(in.Notes)
		b.WriteString("\n")
	}
	return b.String()
}
