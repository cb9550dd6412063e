package result

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/wahaj323/quizengine/internal/quiz"
	"github.com/wahaj323/quizengine/internal/router"
	"github.com/wahaj323/quizengine/internal/screen/screentest"
	"github.com/wahaj323/quizengine/internal/screens/review"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func testView(allowReview bool) quiz.View {
	s := quiz.DefaultSettings()
	s.AllowReview = allowReview
	s.MaxAttempts = 3
	return quiz.View{
		Quiz:              quiz.Quiz{ID: "q1", Title: "Tiere", Settings: s},
		CanAttempt:        true,
		AttemptsUsed:      0,
		AttemptsRemaining: 3,
	}
}

func testAttempt() quiz.Attempt {
	return quiz.Attempt{
		ID: "att-1", QuizID: "q1", Number: 1,
		Correct: []bool{true, true, false, true},
		Score:   75, EarnedPoints: 3, TotalPoints: 4, Passed: true,
		TimeSpent: 95,
	}
}

func TestView(t *testing.T) {
	s := New(screentest.New("ana"), testView(true), testAttempt())
	view := s.View(100, 30)
	for _, want := range []string{"Tiere", "75%", "Passed!", "Grade C", "3 of 4 questions correct", "1:35", "attempt 1", "2 attempts left"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestReviewKey(t *testing.T) {
	s := New(screentest.New("ana"), testView(true), testAttempt())
	_, cmd := s.Update(keyPress('r'))
	if cmd == nil {
		t.Fatal("r should open the review")
	}
	msg, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatal("expected PushScreenMsg")
	}
	if _, ok := msg.Screen.(*review.ReviewScreen); !ok {
		t.Errorf("pushed %T, want review", msg.Screen)
	}

	s = New(screentest.New("ana"), testView(false), testAttempt())
	if _, cmd := s.Update(keyPress('r')); cmd != nil {
		t.Error("review must stay closed when the quiz disallows it")
	}
	for _, h := range s.KeyHints() {
		if h.Key == "R" {
			t.Error("no review hint expected")
		}
	}
}

func TestEnterReturnsToCatalog(t *testing.T) {
	s := New(screentest.New("ana"), testView(true), testAttempt())
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if _, ok := cmd().(router.PopToRootMsg); !ok {
		t.Error("enter should unwind to the catalog")
	}
}
