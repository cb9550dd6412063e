package quiz

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Response is a learner's answer payload. Its concrete type mirrors the
// variant of the question it answers.
type Response interface {
	Kind() Kind
}

// Choice answers a multiple-choice question with an option index.
type Choice int

// Blanks answers a fill-in-the-blank question, one string per blank.
type Blanks []string

// Verdict answers a true/false question.
type Verdict bool

// Pairings answers a matching question.
type Pairings []Pair

// Malformed carries a payload that could not be bound to the question's
// variant. It is never correct.
type Malformed struct {
	Raw json.RawMessage
}

func (Choice) Kind() Kind    { return KindMCQ }
func (Blanks) Kind() Kind    { return KindFillBlank }
func (Verdict) Kind() Kind   { return KindTrueFalse }
func (Pairings) Kind() Kind  { return KindMatching }
func (Malformed) Kind() Kind { return "" }

// Answer is the submitted payload for the question at Index.
type Answer struct {
	// Index is the position of the question inside the quiz.
	Index int

	// Response is nil when the question was left unanswered.
	Response Response

	// pending holds a payload received without a type tag. Bind resolves it.
	pending json.RawMessage
}

// Answered reports whether the answer carries a payload.
func (a Answer) Answered() bool {
	return a.Response != nil || len(a.pending) > 0
}

// malformedTag marks a stored Malformed payload on the wire.
const malformedTag Kind = "malformed"

type answerWire struct {
	Index  int             `json:"index"`
	Type   Kind            `json:"type,omitempty"`
	Answer json.RawMessage `json:"answer"`
}

func (a Answer) MarshalJSON() ([]byte, error) {
	w := answerWire{Index: a.Index, Answer: json.RawMessage("null")}
	switch r := a.Response.(type) {
	case nil:
		if len(a.pending) > 0 {
			w.Answer = a.pending
		}
	case Malformed:
		w.Type = malformedTag
		if len(r.Raw) > 0 {
			w.Answer = r.Raw
		}
	default:
		raw, err := json.Marshal(r)
		if err != nil {
			return nil, fmt.Errorf("marshal %s answer: %w", r.Kind(), err)
		}
		w.Type = r.Kind()
		w.Answer = raw
	}
	return json.Marshal(w)
}

// UnmarshalJSON accepts {"index", "type", "answer"}. A payload whose shape
// does not fit the declared type becomes Malformed rather than an error.
func (a *Answer) UnmarshalJSON(data []byte) error {
	var w answerWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*a = Answer{Index: w.Index}
	if w.Type == malformedTag {
		var raw json.RawMessage
		if !isNull(w.Answer) {
			raw = append(raw, w.Answer...)
		}
		a.Response = Malformed{Raw: raw}
		return nil
	}
	if isNull(w.Answer) {
		return nil
	}
	if w.Type == "" {
		a.pending = append(json.RawMessage(nil), w.Answer...)
		return nil
	}
	resp, err := DecodeResponse(w.Type, w.Answer)
	if err != nil {
		a.Response = Malformed{Raw: append(json.RawMessage(nil), w.Answer...)}
		return nil
	}
	a.Response = resp
	return nil
}

// DecodeResponse binds a raw JSON payload to the response type of kind.
// A null payload yields a nil Response.
func DecodeResponse(kind Kind, raw json.RawMessage) (Response, error) {
	if isNull(raw) {
		return nil, nil
	}
	switch kind {
	case KindMCQ:
		var idx int
		if err := json.Unmarshal(raw, &idx); err != nil {
			return nil, fmt.Errorf("mcq answer must be an option index: %w", err)
		}
		return Choice(idx), nil

	case KindFillBlank:
		var blanks []string
		if err := json.Unmarshal(raw, &blanks); err == nil {
			return Blanks(blanks), nil
		}
		var single string
		if err := json.Unmarshal(raw, &single); err != nil {
			return nil, fmt.Errorf("fill_blank answer must be a list of strings: %w", err)
		}
		return Blanks{single}, nil

	case KindTrueFalse:
		var v bool
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("true_false answer must be a boolean: %w", err)
		}
		return Verdict(v), nil

	case KindMatching:
		var pairs []Pair
		if err := json.Unmarshal(raw, &pairs); err == nil {
			return Pairings(pairs), nil
		}
		var m map[string]string
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("matching answer must be a list of pairs: %w", err)
		}
		out := make(Pairings, 0, len(m))
		for left, right := range m {
			out = append(out, Pair{Left: left, Right: right})
		}
		return out, nil
	}
	return nil, fmt.Errorf("unknown question type %q", kind)
}

// BindAnswers resolves untyped payloads against the question types of q and
// marks payloads whose declared type disagrees with the question as
// Malformed. Answers pointing outside the quiz are dropped.
func BindAnswers(q Quiz, answers []Answer) []Answer {
	out := make([]Answer, 0, len(answers))
	for _, a := range answers {
		if a.Index < 0 || a.Index >= len(q.Questions) {
			continue
		}
		kind := q.Questions[a.Index].Kind()
		switch {
		case len(a.pending) > 0:
			resp, err := DecodeResponse(kind, a.pending)
			if err != nil {
				a.Response = Malformed{Raw: a.pending}
			} else {
				a.Response = resp
			}
			a.pending = nil
		case a.Response != nil && a.Response.Kind() != kind:
			raw, _ := json.Marshal(a.Response)
			a.Response = Malformed{Raw: raw}
		}
		out = append(out, a)
	}
	return out
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
