// Package result shows a graded attempt right after submission.
package result

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/wahaj323/quizengine/internal/history"
	"github.com/wahaj323/quizengine/internal/quiz"
	"github.com/wahaj323/quizengine/internal/router"
	"github.com/wahaj323/quizengine/internal/screen"
	"github.com/wahaj323/quizengine/internal/screens/review"
	"github.com/wahaj323/quizengine/internal/ui/components"
	"github.com/wahaj323/quizengine/internal/ui/layout"
	"github.com/wahaj323/quizengine/internal/ui/theme"
)

// ResultScreen displays the score of one attempt.
type ResultScreen struct {
	backend screen.Backend
	view    quiz.View
	attempt quiz.Attempt
}

var _ screen.Screen = (*ResultScreen)(nil)
var _ screen.KeyHintProvider = (*ResultScreen)(nil)

// New creates a ResultScreen for attempt a of the quiz in view.
func New(backend screen.Backend, view quiz.View, a quiz.Attempt) *ResultScreen {
	return &ResultScreen{backend: backend, view: view, attempt: a}
}

func (s *ResultScreen) Init() tea.Cmd {
	return nil
}

func (s *ResultScreen) Title() string {
	return "Result"
}

func (s *ResultScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{{Key: "Enter", Description: "Quizzes"}}
	if s.view.Settings.AllowReview {
		hints = append(hints, layout.KeyHint{Key: "R", Description: "Review answers"})
	}
	return hints
}

func (s *ResultScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter", "esc":
			return s, router.PopToRootCmd
		case "r", "R":
			if s.view.Settings.AllowReview {
				return s, router.PushCmd(review.New(s.backend, s.attempt.ID))
			}
		}
	}
	return s, nil
}

func (s *ResultScreen) View(width, height int) string {
	a := s.attempt
	center := func(str string) string { return layout.Centered(str, width) }

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(center(theme.Title.Render(s.view.Title)))
	b.WriteString("\n\n")

	verdict := theme.Incorrect.Render("Not passed")
	if a.Passed {
		verdict = theme.Correct.Render("Passed!")
	}
	b.WriteString(center(lipgloss.NewStyle().Bold(true).Foreground(theme.Text).
		Render(fmt.Sprintf("%d%%  ", a.Score)) + verdict))
	b.WriteString("\n")
	b.WriteString(center(components.NewProgressBar("", float64(a.Score)/100, false, min(width-8, 40)).View()))
	b.WriteString("\n\n")

	correct := 0
	for _, c := range a.Correct {
		if c {
			correct++
		}
	}
	lines := []string{
		fmt.Sprintf("Grade %s · passing score %d%%", history.LetterGrade(a.Score), s.view.Settings.PassingScore),
		fmt.Sprintf("%d of %d questions correct · %d of %d points", correct, len(a.Correct), a.EarnedPoints, a.TotalPoints),
		fmt.Sprintf("Time spent %s · attempt %d", layout.FormatCountdown(a.Elapsed()), a.Number),
	}
	if s.view.AttemptsRemaining > 0 {
		left := s.view.AttemptsRemaining - 1
		lines = append(lines, fmt.Sprintf("%d attempts left", left))
	}
	for _, l := range lines {
		b.WriteString(center(theme.Body.Render(l)))
		b.WriteString("\n")
	}
	if a.Feedback != "" {
		b.WriteString("\n")
		b.WriteString(center(theme.Hint.Render("Feedback: " + a.Feedback)))
		b.WriteString("\n")
	}
	return b.String()
}
