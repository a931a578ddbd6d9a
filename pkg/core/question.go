// Package core holds the question model shared by every format adapter.
package core

import "fmt"

// Kind identifies the variant of a Question.
type Kind string

const (
	KindCategory    Kind = "category"
	KindDescription Kind = "description"
	KindChoice      Kind = "multichoice"
)

// Question is the closed set of records produced by an import.
// Only *Category, *Description and *Choice implement it.
type Question interface {
	Kind() Kind
	question()
}

// Category is a synthetic entry carrying only the target grouping name.
type Category struct {
	Name string
}

// Description is an informational block without answers.
type Description struct {
	Name  string
	Body  string
	Files []File
}

// Choice is a multiple or single choice question.
type Choice struct {
	Name            string
	Body            string
	GeneralFeedback string
	Shuffle         bool
	Single          bool
	Answers         []Answer
	Files           []File
}

// Answer is one option of a Choice question.
type Answer struct {
	Text     string
	Feedback string
	Weight   Weight
}

// File is an image payload referenced from question text as @@PLUGINFILE@@/Name.
type File struct {
	Name string
	Type string
	Data []byte
}

func (*Category) Kind() Kind    { return KindCategory }
func (*Description) Kind() Kind { return KindDescription }
func (*Choice) Kind() Kind      { return KindChoice }

func (*Category) question()    {}
func (*Description) question() {}
func (*Choice) question()      {}

// NameOf returns the display name of any question record.
func NameOf(q Question) string {
	switch v := q.(type) {
	case *Category:
		return v.Name
	case *Description:
		return v.Name
	case *Choice:
		return v.Name
	}
	return ""
}

// WeightKind tells whether a weight is still a provisional marker. The zero
// kind is an explicit fraction, so a zero Weight is a resolved 0.
type WeightKind int

const (
	WeightExplicit WeightKind = iota
	WeightTrue
	WeightFalse
)

// Weight is either a correctness marker awaiting grading or a fraction in [-1, 1].
type Weight struct {
	Kind  WeightKind
	Value float64
}

// TrueMarker marks an answer as correct without a numeric weight.
func TrueMarker() Weight { return Weight{Kind: WeightTrue} }

// FalseMarker marks an answer as wrong without a numeric weight.
func FalseMarker() Weight { return Weight{Kind: WeightFalse} }

// Fraction returns a resolved weight.
func Fraction(v float64) Weight { return Weight{Kind: WeightExplicit, Value: v} }

// Resolved reports whether the weight carries a numeric value.
func (w Weight) Resolved() bool { return w.Kind == WeightExplicit }

func (w Weight) String() string {
	switch w.Kind {
	case WeightTrue:
		return "true"
	case WeightFalse:
		return "false"
	}
	return fmt.Sprintf("%g", w.Value)
}

// FlattenAnswers collapses parallel per-index arrays into answer records.
func FlattenAnswers(texts, feedbacks []string, weights []Weight) ([]Answer, error) {
	if len(texts) != len(feedbacks) || len(texts) != len(weights) {
		return nil, fmt.Errorf("%w: %d texts, %d feedbacks, %d weights",
			ErrAnswerArity, len(texts), len(feedbacks), len(weights))
	}
	answers := make([]Answer, len(texts))
	for i := range texts {
		answers[i] = Answer{
			Text:     texts[i],
			Feedback: feedbacks[i],
			Weight:   weights[i],
		}
	}
	return answers, nil
}
