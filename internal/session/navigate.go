package session

import (
	"slices"

	"github.com/wahaj323/quizengine/internal/quiz"
)

// Item is one question as presented to the learner.
type Item struct {
	// Position is the 0-based place in presentation order.
	Position int

	// Index is the question's position inside the quiz definition.
	Index    int
	Question quiz.Question

	// Options lists MCQ options in display order.
	Options []string

	// Selected is the displayed position of the chosen MCQ option, or -1.
	Selected int

	// Response is the buffered answer in quiz terms, nil when empty.
	Response quiz.Response
}

// Len returns the number of questions.
func (c *Controller) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.order)
}

// Position returns the current presentation position.
func (c *Controller) Position() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pos
}

// Goto moves to any position. Navigation is free in both directions.
func (c *Controller) Goto(pos int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateInProgress {
		return ErrNotInProgress
	}
	if pos < 0 || pos >= len(c.order) {
		return ErrOutOfRange
	}
	c.pos = pos
	return nil
}

// Next moves forward and reports whether it moved.
func (c *Controller) Next() bool {
	return c.step(1)
}

// Prev moves back and reports whether it moved.
func (c *Controller) Prev() bool {
	return c.step(-1)
}

func (c *Controller) step(delta int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	next := c.pos + delta
	if c.state != StateInProgress || next < 0 || next >= len(c.order) {
		return false
	}
	c.pos = next
	return true
}

// Current returns the item at the current position. It is the zero Item
// before the quiz is loaded.
func (c *Controller) Current() Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.order) == 0 {
		return Item{Selected: -1}
	}
	return c.itemLocked(c.pos)
}

// ItemAt returns the item at pos.
func (c *Controller) ItemAt(pos int) (Item, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if pos < 0 || pos >= len(c.order) {
		return Item{}, ErrOutOfRange
	}
	return c.itemLocked(pos), nil
}

func (c *Controller) itemLocked(pos int) Item {
	idx := c.order[pos]
	q := c.view.Questions[idx]
	it := Item{
		Position: pos,
		Index:    idx,
		Question: q,
		Selected: -1,
		Response: c.answers[idx],
	}
	if mc, ok := q.Body.(quiz.MultipleChoice); ok {
		perm := c.options[idx]
		it.Options = make([]string, len(mc.Options))
		for j := range mc.Options {
			it.Options[j] = mc.Options[c.canonical(perm, j)]
		}
		if choice, ok := it.Response.(quiz.Choice); ok {
			it.Selected = c.display(perm, int(choice))
		}
	}
	return it
}

func (c *Controller) canonical(perm []int, display int) int {
	if perm == nil {
		return display
	}
	return perm[display]
}

func (c *Controller) display(perm []int, canonical int) int {
	if perm == nil {
		return canonical
	}
	return slices.Index(perm, canonical)
}

// SetAnswer stores r for the current question. r is expressed in quiz terms;
// use SelectOption for an MCQ option picked from the displayed list.
func (c *Controller) SetAnswer(r quiz.Response) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editableLocked(); err != nil {
		return err
	}
	idx := c.order[c.pos]
	if r != nil && r.Kind() != c.view.Questions[idx].Kind() {
		return ErrAnswerKind
	}
	c.answers[idx] = r
	return nil
}

// SelectOption answers the current MCQ question with the option shown at
// display position.
func (c *Controller) SelectOption(display int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editableLocked(); err != nil {
		return err
	}
	idx := c.order[c.pos]
	mc, ok := c.view.Questions[idx].Body.(quiz.MultipleChoice)
	if !ok {
		return ErrAnswerKind
	}
	if display < 0 || display >= len(mc.Options) {
		return ErrOutOfRange
	}
	c.answers[idx] = quiz.Choice(c.canonical(c.options[idx], display))
	return nil
}

func (c *Controller) editableLocked() error {
	switch {
	case c.state != StateInProgress:
		return ErrNotInProgress
	case c.expired:
		return ErrExpired
	}
	return nil
}

// Clear empties the current answer slot.
func (c *Controller) Clear() error {
	return c.SetAnswer(nil)
}

// Answered returns how many slots hold an answer.
func (c *Controller) Answered() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.answers) - c.unansweredLocked()
}

// Unanswered returns the presentation positions of empty slots.
func (c *Controller) Unanswered() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []int
	for pos, idx := range c.order {
		if c.answers[idx] == nil {
			out = append(out, pos)
		}
	}
	return out
}

func (c *Controller) unansweredLocked() int {
	n := 0
	for _, r := range c.answers {
		if r == nil {
			n++
		}
	}
	return n
}
