package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/wahaj323/quizengine/internal/ui/theme"
)

// OptionList is a single-choice selector. Chosen marks the picked option,
// Cursor the highlighted one. In review mode the correct option is shown
// in green and a wrong pick in red.
type OptionList struct {
	Options []string
	Cursor  int

	// Chosen is -1 while nothing is picked.
	Chosen int

	review  bool
	correct int
}

// NewOptionList creates a selector with chosen preselected, or -1.
func NewOptionList(options []string, chosen int) OptionList {
	cursor := max(chosen, 0)
	return OptionList{Options: options, Cursor: cursor, Chosen: chosen, correct: -1}
}

// Review freezes the list and marks correct, or nothing when it is -1.
func (o OptionList) Review(correct int) OptionList {
	o.review = true
	o.correct = correct
	return o
}

// Update moves the cursor. Enter, space or a digit picks an option; picked
// reports whether the choice changed.
func (o OptionList) Update(msg tea.Msg) (list OptionList, picked bool) {
	if o.review {
		return o, false
	}
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return o, false
	}

	key := kmsg.String()
	switch key {
	case "up", "k":
		if o.Cursor > 0 {
			o.Cursor--
		}
	case "down", "j":
		if o.Cursor < len(o.Options)-1 {
			o.Cursor++
		}
	case "enter", "space", " ":
		return o.pick(o.Cursor)
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			return o.pick(int(key[0] - '1'))
		}
	}
	return o, false
}

func (o OptionList) pick(i int) (OptionList, bool) {
	if i < 0 || i >= len(o.Options) {
		return o, false
	}
	o.Cursor = i
	changed := o.Chosen != i
	o.Chosen = i
	return o, changed
}

// View renders the options with letter labels.
func (o OptionList) View() string {
	var b strings.Builder
	for i, opt := range o.Options {
		prefix := "  "
		if i == o.Cursor && !o.review {
			prefix = "▸ "
		}
		mark := "( )"
		if i == o.Chosen {
			mark = "(•)"
		}
		line := fmt.Sprintf("%s%s %s)  %s", prefix, mark, optionLabel(i), opt)

		style := theme.Unselected
		switch {
		case o.review && i == o.correct:
			style = theme.Correct
		case o.review && i == o.Chosen:
			style = theme.Incorrect
		case o.review:
			style = theme.Disabled
		case i == o.Cursor:
			style = theme.Selected
		}
		b.WriteString(style.Render(line) + "\n")
	}
	return b.String()
}

func optionLabel(i int) string {
	if i < 26 {
		return string(rune('A' + i))
	}
	return fmt.Sprint(i + 1)
}
