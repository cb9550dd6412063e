package builder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/wahaj323/quizengine/internal/llm"
	"github.com/wahaj323/quizengine/internal/quiz"
)

// ErrDraft is returned when the model output cannot be turned into a quiz.
var ErrDraft = errors.New("invalid quiz draft")

// MaxDraftQuestions caps the size of a single draft request.
const MaxDraftQuestions = 30

// DraftInput describes the quiz to draft.
type DraftInput struct {
	Topic string

	// Count is the number of questions, 1 to MaxDraftQuestions.
	Count int

	// Kinds restricts the question types. Empty allows all of them.
	Kinds []quiz.Kind

	// Level and Notes are optional prompt context.
	Level string
	Notes string
}

// DraftConfig controls the Drafter.
type DraftConfig struct {
	MaxTokens   int
	Temperature float64
}

// DefaultDraftConfig returns the recommended settings.
func DefaultDraftConfig() DraftConfig {
	return DraftConfig{MaxTokens: 4096, Temperature: 0.7}
}

// Drafter asks an LLM for a first version of a quiz.
type Drafter struct {
	provider llm.Provider
	config   DraftConfig
}

// NewDrafter creates a Drafter.
func NewDrafter(provider llm.Provider, cfg DraftConfig) *Drafter {
	return &Drafter{provider: provider, config: cfg}
}

type draftOutput struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Questions   []draftQuestion `json:"questions"`
}

type draftQuestion struct {
	Type         string      `json:"type"`
	Text         string      `json:"text"`
	Explanation  string      `json:"explanation"`
	Options      []string    `json:"options"`
	CorrectIndex int         `json:"correct_index"`
	Blanks       []string    `json:"blanks"`
	Answer       bool        `json:"answer"`
	Pairs        []quiz.Pair `json:"pairs"`
}

// Draft returns an unpublished quiz that passes draft validation. The quiz
// has no id; saving it assigns one.
func (d *Drafter) Draft(ctx context.Context, in DraftInput) (quiz.Quiz, error) {
	if strings.TrimSpace(in.Topic) == "" {
		return quiz.Quiz{}, fmt.Errorf("%w: topic is required", ErrDraft)
	}
	if in.Count < 1 || in.Count > MaxDraftQuestions {
		return quiz.Quiz{}, fmt.Errorf("%w: count must be between 1 and %d", ErrDraft, MaxDraftQuestions)
	}
	for _, k := range in.Kinds {
		if !k.Valid() {
			return quiz.Quiz{}, fmt.Errorf("%w: unknown question type %q", ErrDraft, k)
		}
	}

	ctx = llm.WithPurpose(ctx, "quiz-draft")
	resp, err := d.provider.Generate(ctx, llm.Request{
		System: draftSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildDraftMessage(in)},
		},
		Schema:      DraftSchema,
		MaxTokens:   d.config.MaxTokens,
		Temperature: d.config.Temperature,
	})
	if err != nil {
		return quiz.Quiz{}, fmt.Errorf("LLM drafting failed: %w", err)
	}

	var raw draftOutput
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		return quiz.Quiz{}, fmt.Errorf("failed to parse LLM response: %w", err)
	}

	q, err := raw.toQuiz(in.Kinds)
	if err != nil {
		return quiz.Quiz{}, err
	}
	if err := Validate(q, Draft); err != nil {
		return quiz.Quiz{}, fmt.Errorf("%w: %w", ErrDraft, err)
	}
	return q, nil
}

func (o draftOutput) toQuiz(allowed []quiz.Kind) (quiz.Quiz, error) {
	q := quiz.Quiz{
		Title:       strings.TrimSpace(o.Title),
		Description: strings.TrimSpace(o.Description),
		Settings:    quiz.DefaultSettings(),
	}
	questions := make([]quiz.Question, 0, len(o.Questions))
	for i, dq := range o.Questions {
		kind := quiz.Kind(dq.Type)
		if len(allowed) > 0 && !slices.Contains(allowed, kind) {
			return quiz.Quiz{}, fmt.Errorf("%w: question %d has type %q which was not requested", ErrDraft, i+1, dq.Type)
		}
		body, err := dq.body(kind)
		if err != nil {
			return quiz.Quiz{}, fmt.Errorf("%w: question %d: %w", ErrDraft, i+1, err)
		}
		questions = append(questions, quiz.Question{
			Text:        strings.TrimSpace(dq.Text),
			Points:      1,
			Explanation: strings.TrimSpace(dq.Explanation),
			Body:        body,
		})
	}
	q.SetQuestions(questions)
	return q, nil
}

func (dq draftQuestion) body(kind quiz.Kind) (quiz.Body, error) {
	switch kind {
	case quiz.KindMCQ:
		return quiz.MultipleChoice{Options: dq.Options, CorrectIndex: dq.CorrectIndex}, nil
	case quiz.KindFillBlank:
		return quiz.FillBlank{Blanks: dq.Blanks}, nil
	case quiz.KindTrueFalse:
		return quiz.TrueFalse{Answer: dq.Answer}, nil
	case quiz.KindMatching:
		return quiz.Matching{Pairs: dq.Pairs}, nil
	}
	return nil, fmt.Errorf("unknown question type %q", dq.Type)
}
