// Package grading resolves true/false answer markers to numeric fractions.
//
// Every scheme leaves explicit fractions untouched and refuses questions that
// mix explicit fractions with markers.
package grading

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/qtex/pkg/core"
)

// Scheme names.
const (
	NameDefault = "default"
	NameSchemeB = "scheme-b"
	NameSchemeC = "scheme-c"
)

var registry = map[string]core.Grader{
	NameDefault:   Default{},
	NameSchemeB:   SchemeB{},
	"akveld":      SchemeB{},
	NameSchemeC:   SchemeC{},
	"akveld-exam": SchemeC{},
}

// Lookup returns the scheme registered under name. The empty name yields Default.
func Lookup(name string) (core.Grader, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return Default{}, nil
	}
	g, ok := registry[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownGradingScheme, name)
	}
	return g, nil
}

// Names lists the accepted scheme names, aliases included.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// census counts the weight kinds of a question and rejects mixtures.
func census(q *core.Choice) (trues, falses, explicit int, err error) {
	for _, a := range q.Answers {
		switch a.Weight.Kind {
		case core.WeightTrue:
			trues++
		case core.WeightFalse:
			falses++
		default:
			explicit++
		}
	}
	if explicit > 0 && trues+falses > 0 {
		return trues, falses, explicit, core.ErrMixedWeights
	}
	return trues, falses, explicit, nil
}

// resolve replaces markers with the given values.
func resolve(q *core.Choice, whenTrue, whenFalse float64) {
	for i, a := range q.Answers {
		switch a.Weight.Kind {
		case core.WeightTrue:
			q.Answers[i].Weight = core.Fraction(whenTrue)
		case core.WeightFalse:
			q.Answers[i].Weight = core.Fraction(whenFalse)
		}
	}
}

// Default splits a total weight of 1 among the correct answers. Wrong answers
// score 0 on single choice and -1 on multiple choice questions.
type Default struct{}

func (Default) Name() string { return NameDefault }

func (Default) Grade(q *core.Choice) error {
	trues, _, explicit, err := census(q)
	if err != nil {
		return err
	}
	if explicit > 0 {
		return nil
	}
	if trues == 0 {
		return core.ErrNoTrueAnswer
	}
	wrong := -1.0
	if q.Single {
		wrong = 0
	}
	resolve(q, 1/float64(trues), wrong)
	return nil
}

func (Default) DefaultMark(*core.Choice) float64 { return 1 }

// SchemeB gives +1 per correct answer. A wrong answer costs 1 on two-answer
// questions and a quarter otherwise.
type SchemeB struct{}

func (SchemeB) Name() string { return NameSchemeB }

func (SchemeB) Grade(q *core.Choice) error {
	if _, _, _, err := census(q); err != nil {
		return err
	}
	if len(q.Answers) == 2 {
		resolve(q, 1, -1)
	} else {
		resolve(q, 1, -0.25)
	}
	return nil
}

func (SchemeB) DefaultMark(q *core.Choice) float64 {
	if len(q.Answers) == 2 {
		return 1
	}
	return 2
}

// SchemeC is symmetric: +1 for correct and -1 for wrong answers.
type SchemeC struct{}

func (SchemeC) Name() string { return NameSchemeC }

func (SchemeC) Grade(q *core.Choice) error {
	if _, _, _, err := census(q); err != nil {
		return err
	}
	resolve(q, 1, -1)
	return nil
}

func (SchemeC) DefaultMark(*core.Choice) float64 { return 1 }

var (
	_ core.Grader = Default{}
	_ core.Grader = SchemeB{}
	_ core.Grader = SchemeC{}
)
