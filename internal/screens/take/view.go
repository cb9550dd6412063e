package take

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/wahaj323/quizengine/internal/quiz"
	"github.com/wahaj323/quizengine/internal/session"
	"github.com/wahaj323/quizengine/internal/ui/components"
	"github.com/wahaj323/quizengine/internal/ui/layout"
	"github.com/wahaj323/quizengine/internal/ui/theme"
)

func (s *TakeScreen) View(width, height int) string {
	switch {
	case s.errMsg != "":
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render("\n\n" + s.errMsg)
	case !s.loaded:
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading quiz...")
	case s.ctl.Len() == 0:
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  This quiz has no questions. Press Ctrl+S to submit.")
	}

	it := s.ctl.Current()
	total := s.ctl.Len()
	cw := min(width-4, 72)

	var b strings.Builder
	b.WriteString("\n")

	progress := components.NewProgressBar(
		fmt.Sprintf("Question %d of %d", it.Position+1, total),
		components.Fraction(s.ctl.Answered(), total), false, cw-14).View()
	b.WriteString(layout.Centered(progress+theme.Hint.Render(fmt.Sprintf("  %d answered", s.ctl.Answered())), width))
	b.WriteString("\n\n")

	meta := it.Question.Kind().Label()
	if pts := it.Question.Weight(); pts == 1 {
		meta += " · 1 point"
	} else {
		meta += fmt.Sprintf(" · %d points", pts)
	}
	b.WriteString(layout.Centered(theme.Hint.Render(meta), width))
	b.WriteString("\n")
	b.WriteString(layout.Centered(lipgloss.NewStyle().
		Foreground(theme.Text).Bold(true).Width(cw).
		Render(it.Question.Text), width))
	b.WriteString("\n")
	if !layout.IsCompactHeight(height) {
		b.WriteString("\n")
	}

	b.WriteString(layout.Centered(s.renderAnswer(it, cw), width))
	b.WriteString("\n")

	if s.notice != "" {
		b.WriteString("\n")
		b.WriteString(layout.Centered(theme.Hint.Render(s.notice), width))
	}
	if s.confirm != confirmNone {
		b.WriteString("\n")
		b.WriteString(layout.Centered(s.renderConfirm(), width))
	}
	return b.String()
}

func (s *TakeScreen) renderAnswer(it session.Item, cw int) string {
	switch b := it.Question.Body.(type) {
	case quiz.MultipleChoice, quiz.TrueFalse:
		return lipgloss.NewStyle().Width(cw).Render(s.options.View())
	case quiz.FillBlank:
		return s.input.View()
	case quiz.Matching:
		return s.renderMatching(b.Lefts(), cw)
	}
	return ""
}

func (s *TakeScreen) renderMatching(lefts []string, cw int) string {
	var b strings.Builder
	for row, left := range lefts {
		prefix := "  "
		style := theme.Unselected
		if row == s.matchRow {
			prefix = "▸ "
			style = theme.Selected
		}
		right := "?"
		if row < len(s.matches) && s.matches[row] >= 0 {
			right = s.rights[s.matches[row]]
		}
		b.WriteString(style.Render(fmt.Sprintf("%s%s  →  %s", prefix, left, right)))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	for i, right := range s.rights {
		b.WriteString(theme.Hint.Render(fmt.Sprintf("  %d) %s", i+1, right)))
		b.WriteString("\n")
	}
	return lipgloss.NewStyle().Width(cw).Render(b.String())
}

func (s *TakeScreen) renderConfirm() string {
	var text string
	switch s.confirm {
	case confirmSubmit:
		noun := "questions are"
		if s.unanswered == 1 {
			noun = "question is"
		}
		text = fmt.Sprintf("%d %s unanswered. Submit anyway? (y/n)", s.unanswered, noun)
	case confirmAbandon:
		text = "Abandon this attempt? Your answers will be discarded. (y/n)"
	}
	return theme.Card.
		BorderForeground(theme.Warning).
		Foreground(theme.Text).
		Render(text)
}
