package quiz

import "strings"

// IsCorrect reports whether r answers q correctly. Missing, malformed or
// mismatched responses are incorrect, never an error.
//
// Matching questions are correct iff every left item of the definition is
// paired with its designated right item and no other pairing is submitted.
func IsCorrect(q Question, r Response) bool {
	if r == nil {
		return false
	}
	switch b := q.Body.(type) {
	case MultipleChoice:
		c, ok := r.(Choice)
		if !ok {
			return false
		}
		idx := int(c)
		return idx >= 0 && idx < len(b.Options) && idx == b.CorrectIndex

	case FillBlank:
		got, ok := r.(Blanks)
		if !ok || len(b.Blanks) == 0 {
			return false
		}
		for _, m := range b.matches(got) {
			if !m {
				return false
			}
		}
		return true

	case TrueFalse:
		v, ok := r.(Verdict)
		return ok && bool(v) == b.Answer

	case Matching:
		got, ok := r.(Pairings)
		if !ok || len(b.Pairs) == 0 {
			return false
		}
		return b.correct(got)
	}
	return false
}

// BlankMatches reports per-blank correctness for a fill-in-the-blank question.
// It is a display aid only; scoring uses IsCorrect.
func BlankMatches(q Question, r Response) []bool {
	b, ok := q.Body.(FillBlank)
	if !ok {
		return nil
	}
	got, _ := r.(Blanks)
	return b.matches(got)
}

func (b FillBlank) matches(got Blanks) []bool {
	out := make([]bool, len(b.Blanks))
	for i, want := range b.Blanks {
		if i >= len(got) {
			continue
		}
		out[i] = b.equal(got[i], want)
	}
	return out
}

func (b FillBlank) equal(got, want string) bool {
	if b.CaseSensitive {
		return got == want
	}
	return normalize(got) == normalize(want)
}

func (m Matching) correct(got Pairings) bool {
	chosen := make(map[string]string, len(got))
	for _, p := range got {
		left := strings.TrimSpace(p.Left)
		right := strings.TrimSpace(p.Right)
		if prev, seen := chosen[left]; seen && prev != right {
			return false
		}
		chosen[left] = right
	}
	if len(chosen) != len(m.Pairs) {
		return false
	}
	for _, p := range m.Pairs {
		right, ok := chosen[strings.TrimSpace(p.Left)]
		if !ok || right != strings.TrimSpace(p.Right) {
			return false
		}
	}
	return true
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
