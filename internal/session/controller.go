// Package session runs one attempt at a quiz: it buffers answers, drives the
// countdown and submits exactly once.
package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wahaj323/quizengine/internal/gate"
	"github.com/wahaj323/quizengine/internal/quiz"
)

var (
	// ErrNotInProgress is returned by mutations outside the InProgress state.
	ErrNotInProgress = errors.New("attempt is not in progress")

	// ErrSessionClosed is returned once the session reached a terminal state.
	ErrSessionClosed = errors.New("session is closed")

	// ErrNeedsConfirmation is returned by a manual submit with empty answer
	// slots. Submitting again with confirmation proceeds.
	ErrNeedsConfirmation = errors.New("unanswered questions need confirmation")

	// ErrOutOfRange is returned for a position outside the quiz.
	ErrOutOfRange = errors.New("question position out of range")

	// ErrAnswerKind is returned when a response does not fit the question.
	ErrAnswerKind = errors.New("response does not match question type")

	// ErrSubmitInFlight is returned by Abandon while a submission is pending.
	ErrSubmitInFlight = errors.New("submission in flight")

	// ErrExpired is returned by mutations once the countdown reached zero.
	// The answers are frozen until the forced submission goes through.
	ErrExpired = errors.New("time is up")
)

const (
	tickInterval       = time.Second
	defaultEventBuffer = 64
)

// Backend is the remote side of a session. The attempt it returns is
// authoritative.
type Backend interface {
	GetQuiz(ctx context.Context, quizID string) (quiz.View, error)
	SubmitAttempt(ctx context.Context, quizID string, sub quiz.Submission) (quiz.Attempt, error)
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock replaces the wall clock.
func WithClock(clock Clock) Option {
	return func(c *Controller) { c.clock = clock }
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Controller) { c.log = log }
}

// WithRand sets the source used to shuffle questions and options.
func WithRand(r *rand.Rand) Option {
	return func(c *Controller) { c.rng = r }
}

// WithEventBuffer sets the capacity of the event channel.
func WithEventBuffer(n int) Option {
	return func(c *Controller) { c.events = make(chan Event, n) }
}

// Controller owns the state of one attempt. All methods are safe for
// concurrent use; the countdown runs on its own goroutine.
type Controller struct {
	backend Backend
	quizID  string
	clock   Clock
	log     *zap.Logger
	rng     *rand.Rand
	events  chan Event

	mu      sync.Mutex
	state   State
	loading bool
	view    quiz.View

	// order maps presentation positions to question indexes.
	order []int

	// options maps displayed option positions to canonical ones, per question
	// index. Nil entries are unshuffled.
	options [][]int

	// answers is indexed by question index. Nil slots are unanswered.
	answers []quiz.Response

	pos       int
	startedAt time.Time
	deadline  time.Time
	attempt   quiz.Attempt
	err       error
	closed    bool

	// expired is set once the countdown reached zero. It survives a
	// transient submit failure.
	expired bool

	stop     context.CancelFunc
	stopOnce sync.Once
}

// New returns a controller in the Loading state. Call Load to start.
func New(backend Backend, quizID string, opts ...Option) *Controller {
	c := &Controller{
		backend: backend,
		quizID:  quizID,
		clock:   SystemClock(),
		log:     zap.NewNop(),
		state:   StateLoading,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.rng == nil {
		c.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if c.events == nil {
		c.events = make(chan Event, defaultEventBuffer)
	}
	return c
}

// Load fetches the quiz and starts the attempt. A denial attached to the
// quiz by the server moves the session to Failed with a *gate.DeniedError.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateLoading || c.loading {
		c.mu.Unlock()
		return ErrSessionClosed
	}
	c.loading = true
	c.mu.Unlock()

	view, err := c.backend.GetQuiz(ctx, c.quizID)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if c.state != StateLoading {
		return ErrSessionClosed
	}
	if err != nil {
		c.fail(fmt.Errorf("load quiz %s: %w", c.quizID, err))
		return c.err
	}
	if d := gate.FromView(view); !d.Allowed {
		c.fail(d.Err())
		return c.err
	}

	c.view = view
	n := len(view.Questions)
	c.answers = make([]quiz.Response, n)
	c.order = c.presentationOrder(n, view.Settings.ShuffleQuestions)
	c.options = make([][]int, n)
	if view.Settings.ShuffleOptions {
		for i, q := range view.Questions {
			if mc, ok := q.Body.(quiz.MultipleChoice); ok {
				c.options[i] = c.rng.Perm(len(mc.Options))
			}
		}
	}
	c.pos = 0
	c.startedAt = c.clock.Now()
	c.state = StateInProgress

	if view.Settings.Timed() {
		c.deadline = c.startedAt.Add(view.Settings.Duration())
		tctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		c.stop = cancel
		go c.countdown(tctx, c.clock.NewTicker(tickInterval))
	}
	c.log.Debug("attempt started",
		zap.String("quiz_id", c.quizID),
		zap.Int("questions", n),
		zap.Duration("time_limit", view.Settings.Duration()))
	return nil
}

func (c *Controller) presentationOrder(n int, shuffle bool) []int {
	if shuffle {
		return c.rng.Perm(n)
	}
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	return order
}

// countdown ticks until the session ends. At zero it forces a submission;
// after a transient failure the next tick tries again.
func (c *Controller) countdown(ctx context.Context, t Ticker) {
	defer t.Stop()
	for {
		var now time.Time
		select {
		case <-ctx.Done():
			return
		case now = <-t.C():
		}
		if !c.tick(now) {
			continue
		}
		if err := c.submit(ctx, true); err != nil {
			c.log.Warn("forced submission failed", zap.String("quiz_id", c.quizID), zap.Error(err))
		}
	}
}

// tick publishes the remaining time and reports whether the countdown
// expired while the attempt is still open.
func (c *Controller) tick(now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateInProgress {
		return false
	}
	remaining := max(c.deadline.Sub(now), 0)
	if remaining > 0 {
		c.emit(Event{Type: EventTick, State: c.state, Remaining: remaining})
		return false
	}
	if !c.expired {
		c.expired = true
		c.emit(Event{Type: EventExpired, State: c.state})
	}
	return true
}

// Submit sends the answers. Without confirm, empty slots yield
// ErrNeedsConfirmation and nothing changes, unless the countdown already
// expired. A second call while a submission is in flight, or after it
// completed, is a no-op.
func (c *Controller) Submit(ctx context.Context, confirm bool) error {
	return c.submit(ctx, confirm)
}

func (c *Controller) submit(ctx context.Context, confirm bool) error {
	c.mu.Lock()
	switch c.state {
	case StateSubmitting, StateCompleted:
		c.mu.Unlock()
		return nil
	case StateInProgress:
	case StateLoading:
		c.mu.Unlock()
		return ErrNotInProgress
	default:
		c.mu.Unlock()
		return ErrSessionClosed
	}
	if !confirm && !c.expired {
		if n := c.unansweredLocked(); n > 0 {
			c.mu.Unlock()
			return fmt.Errorf("%w: %d of %d unanswered", ErrNeedsConfirmation, n, len(c.answers))
		}
	}
	c.state = StateSubmitting
	c.err = nil
	sub := quiz.Submission{
		Answers:     c.collect(),
		StartedAt:   c.startedAt,
		SubmittedAt: c.clock.Now(),
	}
	c.mu.Unlock()

	attempt, err := c.backend.SubmitAttempt(ctx, c.quizID, sub)

	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case err == nil:
		c.attempt = attempt
		c.state = StateCompleted
		c.stopTimer()
		c.emit(Event{Type: EventSubmitted, State: c.state})
		c.closeEvents()
		c.log.Debug("attempt submitted",
			zap.String("quiz_id", c.quizID),
			zap.String("attempt_id", attempt.ID),
			zap.Int("score", attempt.Score))
		return nil
	case errors.Is(err, gate.ErrDenied):
		c.fail(fmt.Errorf("submit: %w", err))
		return c.err
	default:
		c.state = StateInProgress
		c.err = fmt.Errorf("submit: %w", err)
		c.emit(Event{Type: EventFailed, State: c.state, Err: c.err})
		return c.err
	}
}

func (c *Controller) collect() []quiz.Answer {
	out := make([]quiz.Answer, 0, len(c.answers))
	for i, r := range c.answers {
		if r != nil {
			out = append(out, quiz.Answer{Index: i, Response: r})
		}
	}
	return out
}

// Abandon discards the attempt. Nothing is persisted.
func (c *Controller) Abandon() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.state.Terminal():
		return nil
	case c.state == StateSubmitting:
		return ErrSubmitInFlight
	}
	c.state = StateAbandoned
	c.stopTimer()
	c.closeEvents()
	return nil
}

func (c *Controller) fail(err error) {
	c.state = StateFailed
	c.err = err
	c.stopTimer()
	c.emit(Event{Type: EventFailed, State: c.state, Err: err})
	c.closeEvents()
}

func (c *Controller) stopTimer() {
	c.stopOnce.Do(func() {
		if c.stop != nil {
			c.stop()
		}
	})
}

// emit never blocks; ticks are dropped when the consumer falls behind.
func (c *Controller) emit(e Event) {
	if c.closed {
		return
	}
	select {
	case c.events <- e:
	default:
		c.log.Debug("session event dropped", zap.Stringer("type", e.Type))
	}
}

func (c *Controller) closeEvents() {
	if !c.closed {
		c.closed = true
		close(c.events)
	}
}

// Events returns the event channel. It is closed when the session ends.
func (c *Controller) Events() <-chan Event {
	return c.events
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err returns the last load or submit error.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Result returns the graded attempt once Completed.
func (c *Controller) Result() (quiz.Attempt, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attempt, c.state == StateCompleted
}

// View returns the quiz as loaded, with the server's gate decision.
func (c *Controller) View() quiz.View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// Expired reports whether the countdown reached zero.
func (c *Controller) Expired() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.expired
}

// Timed reports whether the attempt runs against a countdown.
func (c *Controller) Timed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.deadline.IsZero()
}

// Remaining returns the time left, or 0 for untimed attempts.
func (c *Controller) Remaining() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remainingLocked()
}

func (c *Controller) remainingLocked() time.Duration {
	if c.deadline.IsZero() {
		return 0
	}
	return max(c.deadline.Sub(c.clock.Now()), 0)
}

// Elapsed returns the time since the attempt started.
func (c *Controller) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.startedAt.IsZero() {
		return 0
	}
	return c.clock.Now().Sub(c.startedAt)
}
