package quiz

import (
	"encoding/json"
	"fmt"
)

// questionWire is the flat JSON shape of a question: the base fields plus
// the fields of whichever variant the "type" tag selects.
type questionWire struct {
	Type        Kind   `json:"type"`
	Text        string `json:"text"`
	Points      int    `json:"points"`
	Explanation string `json:"explanation,omitempty"`
	Order       int    `json:"order"`

	Options      []string `json:"options,omitempty"`
	CorrectIndex *int     `json:"correct_index,omitempty"`

	Blanks        []string `json:"blanks,omitempty"`
	CaseSensitive bool     `json:"case_sensitive,omitempty"`

	Answer *bool `json:"answer,omitempty"`

	Pairs []Pair `json:"pairs,omitempty"`

	Redacted bool `json:"redacted,omitempty"`
}

func (q Question) MarshalJSON() ([]byte, error) {
	w := questionWire{
		Type:        q.Kind(),
		Text:        q.Text,
		Points:      q.Weight(),
		Explanation: q.Explanation,
		Order:       q.Order,
		Redacted:    q.redacted,
	}
	switch b := q.Body.(type) {
	case MultipleChoice:
		w.Options = nonNil(b.Options)
		if !q.redacted {
			idx := b.CorrectIndex
			w.CorrectIndex = &idx
		}
	case FillBlank:
		w.Blanks = nonNil(b.Blanks)
		w.CaseSensitive = b.CaseSensitive
	case TrueFalse:
		if !q.redacted {
			v := b.Answer
			w.Answer = &v
		}
	case Matching:
		w.Pairs = b.Pairs
		if w.Pairs == nil {
			w.Pairs = []Pair{}
		}
	case nil:
		return nil, fmt.Errorf("question %d has no body", q.Order)
	}
	return json.Marshal(w)
}

func (q *Question) UnmarshalJSON(data []byte) error {
	var w questionWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	*q = Question{
		Text:        w.Text,
		Points:      w.Points,
		Explanation: w.Explanation,
		Order:       w.Order,
		redacted:    w.Redacted,
	}
	if q.Points == 0 {
		q.Points = 1
	}

	switch w.Type {
	case KindMCQ:
		idx := -1
		if w.CorrectIndex != nil {
			idx = *w.CorrectIndex
		}
		q.Body = MultipleChoice{Options: w.Options, CorrectIndex: idx}
	case KindFillBlank:
		q.Body = FillBlank{Blanks: w.Blanks, CaseSensitive: w.CaseSensitive}
	case KindTrueFalse:
		var v bool
		if w.Answer != nil {
			v = *w.Answer
		}
		q.Body = TrueFalse{Answer: v}
	case KindMatching:
		q.Body = Matching{Pairs: w.Pairs}
	default:
		return fmt.Errorf("unknown question type %q", w.Type)
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
