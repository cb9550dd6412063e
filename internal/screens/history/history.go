package history

import (
	"cmp"
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/wahaj323/quizengine/internal/history"
	"github.com/wahaj323/quizengine/internal/quiz"
	"github.com/wahaj323/quizengine/internal/router"
	"github.com/wahaj323/quizengine/internal/screen"
	"github.com/wahaj323/quizengine/internal/screens/review"
	"github.com/wahaj323/quizengine/internal/ui/layout"
	"github.com/wahaj323/quizengine/internal/ui/theme"
)

type historyLoadedMsg struct {
	Attempts []quiz.Attempt
	Titles   map[string]string // quizID → title
	Summary  history.Summary
	Err      error
}

// HistoryScreen displays the learner's past attempts, newest first.
type HistoryScreen struct {
	backend  screen.Backend
	attempts []quiz.Attempt
	titles   map[string]string
	summary  history.Summary
	selected int
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(backend screen.Backend) *HistoryScreen {
	return &HistoryScreen{backend: backend}
}

func (s *HistoryScreen) Init() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()

		attempts, err := s.backend.History(ctx)
		if err != nil {
			return historyLoadedMsg{Err: err}
		}
		history.SortRecent(attempts)

		// Titles are cosmetic; a failed listing falls back to quiz ids.
		titles := make(map[string]string)
		if views, err := s.backend.ListQuizzes(ctx, ""); err == nil {
			for _, v := range views {
				titles[v.ID] = v.Title
			}
		}
		return historyLoadedMsg{Attempts: attempts, Titles: titles, Summary: history.Summarize(attempts)}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Review"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.attempts = msg.Attempts
			s.titles = msg.Titles
			s.summary = msg.Summary
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, router.PopCmd
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < len(s.attempts)-1 {
				s.selected++
			}
			return s, nil
		case "enter":
			if s.selected < len(s.attempts) {
				return s, router.PushCmd(review.New(s.backend, s.attempts[s.selected].ID))
			}
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}
	if len(s.attempts) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No attempts yet. Pick a quiz to get started!")
	}

	var b strings.Builder
	b.WriteString("\n")
	sum := s.summary
	b.WriteString(layout.Centered(theme.Hint.Render(fmt.Sprintf(
		"%d attempts · %d passed · %d failed · best %d%% · average %d%%",
		sum.Attempts, sum.Passed, sum.Failed, sum.Best, sum.Average)), width))
	b.WriteString("\n\n")

	// Keep the selection visible on short terminals.
	rows := max(height-4, 1)
	start := 0
	if s.selected >= rows {
		start = s.selected - rows + 1
	}
	end := min(start+rows, len(s.attempts))

	for i := start; i < end; i++ {
		a := s.attempts[i]
		title := cmp.Or(s.titles[a.QuizID], a.QuizID)

		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}
		status := "failed"
		if a.Passed {
			status = "passed"
		}
		line := fmt.Sprintf("%s%s  %-24s  #%d  %3d%%  %s  %s",
			prefix, a.SubmittedAt.Local().Format("Jan 02, 2006 15:04"), truncate(title, 24),
			a.Number, a.Score, status, layout.FormatCountdown(a.Elapsed()))

		style := lipgloss.NewStyle().Foreground(theme.Text)
		switch {
		case i == s.selected:
			style = style.Foreground(theme.Primary).Bold(true)
		case !a.Passed:
			style = style.Foreground(theme.TextDim)
		}
		b.WriteString(layout.Centered(style.Render(line), width))
		b.WriteString("\n")
	}

	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
