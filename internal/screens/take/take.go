// Package take runs one quiz attempt in the terminal on top of a
// session.Controller.
package take

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/wahaj323/quizengine/internal/gate"
	"github.com/wahaj323/quizengine/internal/quiz"
	"github.com/wahaj323/quizengine/internal/router"
	"github.com/wahaj323/quizengine/internal/screen"
	"github.com/wahaj323/quizengine/internal/screens/result"
	"github.com/wahaj323/quizengine/internal/session"
	"github.com/wahaj323/quizengine/internal/ui/components"
	"github.com/wahaj323/quizengine/internal/ui/layout"
	"github.com/wahaj323/quizengine/internal/ui/theme"
)

type confirmKind int

const (
	confirmNone confirmKind = iota
	confirmSubmit
	confirmAbandon
)

// lowTime is when the countdown turns red.
const lowTime = time.Minute

// TakeScreen implements screen.Screen for an attempt in progress.
type TakeScreen struct {
	backend screen.Backend
	ctl     *session.Controller

	// Widgets for the current question. Only the one matching its type
	// is live.
	options  components.OptionList
	input    components.TextInput
	rights   []string
	matches  []int
	matchRow int

	confirm    confirmKind
	unanswered int
	remaining  time.Duration
	notice     string
	errMsg     string
	loaded     bool
	done       bool
}

var _ screen.Screen = (*TakeScreen)(nil)
var _ screen.KeyHintProvider = (*TakeScreen)(nil)
var _ screen.StatusProvider = (*TakeScreen)(nil)

// New creates the screen. The attempt starts when the quiz has loaded.
func New(backend screen.Backend, quizID string, opts ...session.Option) *TakeScreen {
	return &TakeScreen{
		backend: backend,
		ctl:     session.New(backend, quizID, opts...),
	}
}

func (s *TakeScreen) Init() tea.Cmd {
	return func() tea.Msg {
		return loadedMsg{Err: s.ctl.Load(context.Background())}
	}
}

func (s *TakeScreen) Title() string {
	if title := s.ctl.View().Title; title != "" {
		return title
	}
	return "Quiz"
}

// Status shows the countdown of a timed attempt.
func (s *TakeScreen) Status() string {
	if !s.loaded || !s.ctl.Timed() || s.done {
		return ""
	}
	style := theme.TimerNormal
	if s.remaining < lowTime {
		style = theme.TimerLow
	}
	return style.Render("⏱ " + layout.FormatCountdown(s.remaining))
}

func (s *TakeScreen) KeyHints() []layout.KeyHint {
	if s.errMsg != "" {
		return []layout.KeyHint{{Key: "any key", Description: "Back"}}
	}
	if s.confirm != confirmNone {
		return []layout.KeyHint{
			{Key: "Y", Description: "Yes"},
			{Key: "N", Description: "No"},
		}
	}
	hints := []layout.KeyHint{{Key: "Tab/⇧Tab", Description: "Next/Prev"}}
	switch s.ctl.Current().Question.Kind() {
	case quiz.KindMCQ, quiz.KindTrueFalse:
		hints = append(hints, layout.KeyHint{Key: "↑↓ Enter/1-9", Description: "Choose"})
	case quiz.KindFillBlank:
		hints = append(hints, layout.KeyHint{Key: "Type", Description: "Answer"})
	case quiz.KindMatching:
		hints = append(hints, layout.KeyHint{Key: "↑↓ 1-9", Description: "Match"})
	}
	return append(hints,
		layout.KeyHint{Key: "Ctrl+S", Description: "Submit"},
		layout.KeyHint{Key: "Esc", Description: "Abandon"},
	)
}

func (s *TakeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		return s.handleLoaded(msg)

	case eventMsg:
		return s.handleEvent(session.Event(msg))

	case eventsClosedMsg:
		if s.ctl.State() == session.StateCompleted {
			return s.finish()
		}
		return s, nil

	case submitDoneMsg:
		return s.handleSubmitDone(msg.Err)

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	// Cursor blink and friends.
	if s.live() && s.ctl.Current().Question.Kind() == quiz.KindFillBlank {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *TakeScreen) live() bool {
	return s.loaded && s.errMsg == "" && !s.done && s.ctl.State() == session.StateInProgress
}

func (s *TakeScreen) handleLoaded(msg loadedMsg) (screen.Screen, tea.Cmd) {
	s.loaded = true
	if msg.Err != nil {
		s.errMsg = describe(msg.Err)
		return s, nil
	}
	s.remaining = s.ctl.Remaining()
	return s, tea.Batch(s.sync(), listen(s.ctl.Events()))
}

func (s *TakeScreen) handleEvent(e session.Event) (screen.Screen, tea.Cmd) {
	next := listen(s.ctl.Events())
	switch e.Type {
	case session.EventTick:
		s.remaining = e.Remaining
	case session.EventExpired:
		s.remaining = 0
		s.confirm = confirmNone
		s.notice = "Time is up. Submitting your answers..."
	case session.EventSubmitted:
		return s.finish()
	case session.EventFailed:
		if e.State == session.StateFailed {
			s.errMsg = describe(e.Err)
			return s, nil
		}
		s.notice = fmt.Sprintf("Submission failed, retrying: %v", e.Err)
	}
	return s, next
}

func (s *TakeScreen) handleSubmitDone(err error) (screen.Screen, tea.Cmd) {
	s.notice = ""
	switch {
	case err == nil:
		return s.finish()
	case errors.Is(err, session.ErrNeedsConfirmation):
		s.confirm = confirmSubmit
		s.unanswered = len(s.ctl.Unanswered())
	case s.ctl.State() == session.StateFailed:
		s.errMsg = describe(err)
	default:
		s.notice = fmt.Sprintf("Submission failed: %v", err)
	}
	return s, nil
}

// finish swaps this screen for the result once the graded attempt is in.
func (s *TakeScreen) finish() (screen.Screen, tea.Cmd) {
	a, ok := s.ctl.Result()
	if !ok || s.done {
		return s, nil
	}
	s.done = true
	return s, router.ReplaceCmd(result.New(s.backend, s.ctl.View(), a))
}

func (s *TakeScreen) submit(confirm bool) tea.Cmd {
	s.notice = "Submitting..."
	return func() tea.Msg {
		return submitDoneMsg{Err: s.ctl.Submit(context.Background(), confirm)}
	}
}

func (s *TakeScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	// Error state, any key goes back.
	if s.errMsg != "" {
		return s, router.PopCmd
	}
	if !s.loaded || s.done {
		return s, nil
	}

	switch s.confirm {
	case confirmSubmit:
		switch key {
		case "y", "Y":
			s.confirm = confirmNone
			return s, s.submit(true)
		case "n", "N", "esc":
			s.confirm = confirmNone
		}
		return s, nil
	case confirmAbandon:
		switch key {
		case "y", "Y":
			s.confirm = confirmNone
			if err := s.ctl.Abandon(); err != nil {
				s.notice = fmt.Sprintf("Cannot abandon: %v", err)
				return s, nil
			}
			return s, router.PopCmd
		case "n", "N", "esc":
			s.confirm = confirmNone
		}
		return s, nil
	}

	switch key {
	case "esc":
		s.confirm = confirmAbandon
		return s, nil
	case "ctrl+s":
		return s, s.submit(false)
	case "tab":
		return s, s.move(s.ctl.Next())
	case "shift+tab":
		return s, s.move(s.ctl.Prev())
	}

	if s.ctl.State() != session.StateInProgress || s.ctl.Expired() {
		return s, nil
	}

	switch s.ctl.Current().Question.Kind() {
	case quiz.KindMCQ:
		return s.handleChoice(msg, func(i int) error { return s.ctl.SelectOption(i) })
	case quiz.KindTrueFalse:
		switch key {
		case "t", "T":
			msg = tea.KeyPressMsg{Code: '1', Text: "1"}
		case "f", "F":
			msg = tea.KeyPressMsg{Code: '2', Text: "2"}
		}
		return s.handleChoice(msg, func(i int) error { return s.ctl.SetAnswer(quiz.Verdict(i == 0)) })
	case quiz.KindFillBlank:
		return s.handleText(msg)
	case quiz.KindMatching:
		return s.handleMatching(key)
	}
	return s, nil
}

// move resyncs the widgets after navigation.
func (s *TakeScreen) move(moved bool) tea.Cmd {
	if !moved {
		return nil
	}
	return s.sync()
}

func (s *TakeScreen) handleChoice(msg tea.KeyMsg, store func(int) error) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "right", "l":
		return s, s.move(s.ctl.Next())
	case "left", "h":
		return s, s.move(s.ctl.Prev())
	case "backspace", "delete", "x":
		s.notice = ""
		_ = s.ctl.Clear()
		return s, s.sync()
	}
	var picked bool
	s.options, picked = s.options.Update(msg)
	if picked {
		if err := store(s.options.Chosen); err != nil {
			s.notice = err.Error()
		}
	}
	return s, nil
}

func (s *TakeScreen) handleText(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	if msg.String() == "enter" {
		if !s.ctl.Next() {
			return s, s.submit(false)
		}
		return s, s.sync()
	}
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)

	body, _ := s.ctl.Current().Question.Body.(quiz.FillBlank)
	blanks := s.input.Blanks(max(len(body.Blanks), 1))
	if slices.ContainsFunc(blanks, func(b string) bool { return b != "" }) {
		_ = s.ctl.SetAnswer(quiz.Blanks(blanks))
	} else {
		_ = s.ctl.Clear()
	}
	return s, cmd
}

func (s *TakeScreen) handleMatching(key string) (screen.Screen, tea.Cmd) {
	switch key {
	case "up", "k":
		if s.matchRow > 0 {
			s.matchRow--
		}
		return s, nil
	case "down", "j":
		if s.matchRow < len(s.matches)-1 {
			s.matchRow++
		}
		return s, nil
	case "right", "l", "enter":
		return s, s.move(s.ctl.Next())
	case "left", "h":
		return s, s.move(s.ctl.Prev())
	case "backspace", "delete", "x":
		if s.matchRow < len(s.matches) {
			s.matches[s.matchRow] = -1
		}
	default:
		if len(key) != 1 || key[0] < '1' || key[0] > '9' {
			return s, nil
		}
		choice := int(key[0] - '1')
		if choice >= len(s.rights) || s.matchRow >= len(s.matches) {
			return s, nil
		}
		s.matches[s.matchRow] = choice
		if s.matchRow < len(s.matches)-1 {
			s.matchRow++
		}
	}
	s.storeMatches()
	return s, nil
}

func (s *TakeScreen) storeMatches() {
	body, _ := s.ctl.Current().Question.Body.(quiz.Matching)
	lefts := body.Lefts()
	var pairs quiz.Pairings
	for row, ri := range s.matches {
		if ri >= 0 && row < len(lefts) {
			pairs = append(pairs, quiz.Pair{Left: lefts[row], Right: s.rights[ri]})
		}
	}
	if len(pairs) == 0 {
		_ = s.ctl.Clear()
		return
	}
	_ = s.ctl.SetAnswer(pairs)
}

// sync rebuilds the widget of the current question from its buffered
// answer.
func (s *TakeScreen) sync() tea.Cmd {
	it := s.ctl.Current()
	switch b := it.Question.Body.(type) {
	case quiz.MultipleChoice:
		s.options = components.NewOptionList(it.Options, it.Selected)

	case quiz.TrueFalse:
		chosen := -1
		if v, ok := it.Response.(quiz.Verdict); ok {
			chosen = 1
			if v {
				chosen = 0
			}
		}
		s.options = components.NewOptionList([]string{"True", "False"}, chosen)

	case quiz.FillBlank:
		placeholder := "Type your answer..."
		if len(b.Blanks) > 1 {
			placeholder = fmt.Sprintf("%d answers separated by %s", len(b.Blanks), components.BlankSeparator)
		}
		s.input = components.NewTextInput(placeholder, 200)
		if v, ok := it.Response.(quiz.Blanks); ok {
			s.input.SetValue(strings.Join(v, components.BlankSeparator+" "))
		}
		return s.input.Init()

	case quiz.Matching:
		lefts := b.Lefts()
		s.rights = b.Rights()
		s.matches = make([]int, len(lefts))
		for i := range s.matches {
			s.matches[i] = -1
		}
		if v, ok := it.Response.(quiz.Pairings); ok {
			for _, p := range v {
				if li := slices.Index(lefts, p.Left); li >= 0 {
					s.matches[li] = slices.Index(s.rights, p.Right)
				}
			}
		}
		s.matchRow = 0
	}
	return nil
}

// describe turns a load or submit failure into a sentence for the learner.
func describe(err error) string {
	var denied *gate.DeniedError
	if errors.As(err, &denied) {
		return fmt.Sprintf("This quiz is not available: %s.", denied.Reason)
	}
	return err.Error()
}
