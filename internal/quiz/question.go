package quiz

// Kind is the type tag of a question variant.
type Kind string

const (
	KindMCQ       Kind = "mcq"
	KindFillBlank Kind = "fill_blank"
	KindTrueFalse Kind = "true_false"
	KindMatching  Kind = "matching"
)

// Kinds lists every supported variant in display order.
var Kinds = []Kind{KindMCQ, KindFillBlank, KindTrueFalse, KindMatching}

// Valid reports whether k names a supported variant.
func (k Kind) Valid() bool {
	switch k {
	case KindMCQ, KindFillBlank, KindTrueFalse, KindMatching:
		return true
	}
	return false
}

// Label returns a short human-readable name for the variant.
func (k Kind) Label() string {
	switch k {
	case KindMCQ:
		return "Multiple choice"
	case KindFillBlank:
		return "Fill in the blank"
	case KindTrueFalse:
		return "True / False"
	case KindMatching:
		return "Matching"
	}
	return string(k)
}

// Question is one entry of a quiz: a shared base plus a variant payload.
type Question struct {
	// Text is the prompt shown to the learner.
	Text string

	// Points is the weight used by scoring. Values below 1 count as 1.
	Points int

	// Explanation is shown after submission when the quiz allows it.
	Explanation string

	// Order is the position of the question inside its quiz.
	Order int

	// Body holds the variant payload. Nil only for a malformed definition.
	Body Body

	// redacted is set on learner copies whose answer key was stripped.
	redacted bool
}

// Kind returns the variant tag, or "" when the body is missing.
func (q Question) Kind() Kind {
	if q.Body == nil {
		return ""
	}
	return q.Body.Kind()
}

// Weight returns the scoring weight of the question, floored at 1.
func (q Question) Weight() int {
	if q.Points < 1 {
		return 1
	}
	return q.Points
}

// Redacted reports whether the answer key was removed from this copy.
func (q Question) Redacted() bool {
	return q.redacted
}

// Body is the closed set of question variants.
type Body interface {
	Kind() Kind
	sealed()
}

// MultipleChoice is a single-answer question over an ordered option list.
type MultipleChoice struct {
	Options      []string
	CorrectIndex int
}

// FillBlank expects one string per blank.
type FillBlank struct {
	Blanks        []string
	CaseSensitive bool
}

// TrueFalse expects a single boolean.
type TrueFalse struct {
	Answer bool
}

// Matching pairs every left item with one right item.
type Matching struct {
	Pairs []Pair
}

// Pair is one left/right association of a matching question.
type Pair struct {
	Left  string `json:"left"`
	Right string `json:"right"`
}

func (MultipleChoice) Kind() Kind { return KindMCQ }
func (FillBlank) Kind() Kind      { return KindFillBlank }
func (TrueFalse) Kind() Kind      { return KindTrueFalse }
func (Matching) Kind() Kind       { return KindMatching }

func (MultipleChoice) sealed() {}
func (FillBlank) sealed()      {}
func (TrueFalse) sealed()      {}
func (Matching) sealed()       {}

// Lefts returns the left items in definition order.
func (m Matching) Lefts() []string {
	out := make([]string, len(m.Pairs))
	for i, p := range m.Pairs {
		out[i] = p.Left
	}
	return out
}

// Rights returns the right items in definition order.
func (m Matching) Rights() []string {
	out := make([]string, len(m.Pairs))
	for i, p := range m.Pairs {
		out[i] = p.Right
	}
	return out
}

// EmptyBody returns a zero-valued body for kind, used by builders that add a
// blank question of a chosen type.
func EmptyBody(kind Kind) (Body, bool) {
	switch kind {
	case KindMCQ:
		return MultipleChoice{Options: []string{"", ""}}, true
	case KindFillBlank:
		return FillBlank{Blanks: []string{""}}, true
	case KindTrueFalse:
		return TrueFalse{Answer: true}, true
	case KindMatching:
		return Matching{Pairs: []Pair{{}, {}}}, true
	}
	return nil, false
}
