// Package catalog is the start screen: the quizzes available to the learner
// with the server's access decision for each.
package catalog

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/wahaj323/quizengine/internal/history"
	"github.com/wahaj323/quizengine/internal/quiz"
	"github.com/wahaj323/quizengine/internal/router"
	"github.com/wahaj323/quizengine/internal/screen"
	historyscreen "github.com/wahaj323/quizengine/internal/screens/history"
	"github.com/wahaj323/quizengine/internal/screens/take"
	"github.com/wahaj323/quizengine/internal/session"
	"github.com/wahaj323/quizengine/internal/ui/components"
	"github.com/wahaj323/quizengine/internal/ui/layout"
	"github.com/wahaj323/quizengine/internal/ui/theme"
)

type loadedMsg struct {
	Views   []quiz.View
	Summary history.Summary
	Err     error
}

// CatalogScreen lists quizzes. Locked or exhausted quizzes are shown
// disabled with the reason.
type CatalogScreen struct {
	backend     screen.Backend
	courseID    string
	sessionOpts []session.Option

	views   []quiz.View
	summary history.Summary
	menu    components.Menu
	loaded  bool
	errMsg  string
}

var _ screen.Screen = (*CatalogScreen)(nil)
var _ screen.KeyHintProvider = (*CatalogScreen)(nil)

// New creates a catalog for courseID, or every course when it is empty.
// sessionOpts are passed to every attempt started from here.
func New(backend screen.Backend, courseID string, sessionOpts ...session.Option) *CatalogScreen {
	return &CatalogScreen{backend: backend, courseID: courseID, sessionOpts: sessionOpts}
}

func (s *CatalogScreen) Init() tea.Cmd {
	s.loaded = false
	return func() tea.Msg {
		ctx := context.Background()
		views, err := s.backend.ListQuizzes(ctx, s.courseID)
		if err != nil {
			return loadedMsg{Err: err}
		}
		sum, err := s.backend.Summary(ctx, "")
		if err != nil {
			return loadedMsg{Err: err}
		}
		return loadedMsg{Views: views, Summary: sum}
	}
}

func (s *CatalogScreen) Title() string {
	return "Quizzes"
}

func (s *CatalogScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Start"},
		{Key: "H", Description: "History"},
		{Key: "R", Description: "Refresh"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (s *CatalogScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		s.loaded = true
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.errMsg = ""
		s.views = msg.Views
		s.summary = msg.Summary
		s.menu = components.NewMenu(s.items())
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "r", "R":
			return s, s.Init()
		case "h", "H":
			return s, router.PushCmd(historyscreen.New(s.backend))
		}
		if !s.loaded || s.errMsg != "" {
			return s, nil
		}
		var cmd tea.Cmd
		s.menu, cmd = s.menu.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *CatalogScreen) items() []components.MenuItem {
	items := make([]components.MenuItem, len(s.views))
	for i, v := range s.views {
		items[i] = components.MenuItem{
			Label:    v.Title,
			Detail:   describe(v),
			Disabled: !v.CanAttempt,
			Action:   s.start(v.ID),
		}
	}
	return items
}

func (s *CatalogScreen) start(quizID string) func() tea.Cmd {
	return func() tea.Cmd {
		return router.PushCmd(take.New(s.backend, quizID, s.sessionOpts...))
	}
}

// describe summarizes a quiz for its menu line.
func describe(v quiz.View) string {
	parts := []string{fmt.Sprintf("%d questions", v.QuestionCount)}
	if v.Settings.Timed() {
		parts = append(parts, fmt.Sprintf("%d min", v.Settings.TimeLimit))
	}
	switch {
	case !v.CanAttempt:
		parts = append(parts, v.Reason)
	case v.AttemptsRemaining < 0:
		parts = append(parts, "unlimited attempts")
	case v.AttemptsRemaining == 1:
		parts = append(parts, "1 attempt left")
	default:
		parts = append(parts, fmt.Sprintf("%d attempts left", v.AttemptsRemaining))
	}
	return strings.Join(parts, " · ")
}

func (s *CatalogScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s\n\nPress R to retry.", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading quizzes...")
	}
	if len(s.views) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No quizzes published yet.")
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(s.menu.View())
	b.WriteString("\n")

	if s.summary.HasData {
		line := fmt.Sprintf("%d attempts · %d passed · best %d%% · average %d%%",
			s.summary.Attempts, s.summary.Passed, s.summary.Best, s.summary.Average)
		if g, ok := s.summary.BestGrade(); ok {
			line += fmt.Sprintf(" · grade %s", g)
		}
		b.WriteString(theme.Hint.Render("  " + line))
	} else {
		b.WriteString(theme.Hint.Render("  No attempts yet."))
	}
	return b.String()
}
