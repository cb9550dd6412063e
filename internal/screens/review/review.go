// Package review walks through a graded attempt question by question.
package review

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/wahaj323/quizengine/internal/quiz"
	"github.com/wahaj323/quizengine/internal/router"
	"github.com/wahaj323/quizengine/internal/scoring"
	"github.com/wahaj323/quizengine/internal/screen"
	"github.com/wahaj323/quizengine/internal/ui/layout"
	"github.com/wahaj323/quizengine/internal/ui/theme"
)

type loadedMsg struct {
	Review scoring.Review
	Err    error
}

// ReviewScreen shows one review item at a time.
type ReviewScreen struct {
	backend   screen.Backend
	attemptID string

	review   scoring.Review
	selected int
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*ReviewScreen)(nil)
var _ screen.KeyHintProvider = (*ReviewScreen)(nil)

func New(backend screen.Backend, attemptID string) *ReviewScreen {
	return &ReviewScreen{backend: backend, attemptID: attemptID}
}

func (s *ReviewScreen) Init() tea.Cmd {
	return func() tea.Msg {
		rv, err := s.backend.Review(context.Background(), s.attemptID)
		return loadedMsg{Review: rv, Err: err}
	}
}

func (s *ReviewScreen) Title() string {
	return "Review"
}

func (s *ReviewScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "←→", Description: "Question"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *ReviewScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		s.loaded = true
		switch {
		case errors.Is(msg.Err, scoring.ErrReviewDisabled):
			s.errMsg = "Review is not available for this quiz."
		case msg.Err != nil:
			s.errMsg = msg.Err.Error()
		default:
			s.review = msg.Review
		}
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "q":
			return s, router.PopCmd
		case "left", "up", "k", "shift+tab":
			if s.selected > 0 {
				s.selected--
			}
		case "right", "down", "j", "tab", "enter":
			if s.selected < len(s.review.Items)-1 {
				s.selected++
			}
		}
	}
	return s, nil
}

func (s *ReviewScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\n%s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading review...")
	}
	items := s.review.Items
	if len(items) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  Nothing to review.")
	}

	cw := min(width-4, 72)
	it := items[s.selected]

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(layout.Centered(theme.Hint.Render(fmt.Sprintf(
		"Question %d of %d · score %d%%", s.selected+1, len(items), s.review.Score)), width))
	b.WriteString("\n\n")
	b.WriteString(layout.Centered(strip(items, s.selected), width))
	b.WriteString("\n\n")

	b.WriteString(layout.Centered(lipgloss.NewStyle().Width(cw).Bold(true).Foreground(theme.Text).Render(it.Text), width))
	b.WriteString("\n\n")

	mark := theme.Incorrect.Render("✗ Incorrect")
	if it.Correct {
		mark = theme.Correct.Render("✓ Correct")
	}
	lines := []string{
		mark + theme.Hint.Render(fmt.Sprintf("  (%s)", points(it))),
		"Your answer: " + it.Format(it.Answer.Response),
	}
	if it.Kind == quiz.KindFillBlank && len(it.BlankMatches) > 1 {
		lines = append(lines, "Blanks: "+blankMarks(it.BlankMatches))
	}
	if it.Expected != nil {
		lines = append(lines, "Correct answer: "+it.Format(it.Expected))
	}
	if it.Explanation != "" {
		lines = append(lines, "", theme.Hint.Render(it.Explanation))
	}
	b.WriteString(layout.Centered(lipgloss.NewStyle().Width(cw).Foreground(theme.Text).
		Render(strings.Join(lines, "\n")), width))
	return b.String()
}

func points(it scoring.ReviewItem) string {
	if it.Points == 1 {
		return "1 point"
	}
	return fmt.Sprintf("%d points", it.Points)
}

// strip renders one mark per question, the selected one bracketed.
func strip(items []scoring.ReviewItem, selected int) string {
	parts := make([]string, len(items))
	for i, it := range items {
		mark := theme.Incorrect.Render("✗")
		if it.Correct {
			mark = theme.Correct.Render("✓")
		}
		if i == selected {
			mark = "[" + mark + "]"
		}
		parts[i] = mark
	}
	return strings.Join(parts, " ")
}

func blankMarks(matches []bool) string {
	parts := make([]string, len(matches))
	for i, ok := range matches {
		if ok {
			parts[i] = theme.Correct.Render(fmt.Sprintf("%d ✓", i+1))
		} else {
			parts[i] = theme.Incorrect.Render(fmt.Sprintf("%d ✗", i+1))
		}
	}
	return strings.Join(parts, "  ")
}
