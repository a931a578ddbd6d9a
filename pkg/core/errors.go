package core

import "errors"

// Hard failures. Parsing and grading return these wrapped with the question name.
var (
	ErrNoAnswers            = errors.New("choice question has no answers")
	ErrNoTrueAnswer         = errors.New("choice question has no correct answer")
	ErrMixedWeights         = errors.New("explicit fractions mixed with true/false markers")
	ErrUnresolvedWeight     = errors.New("answer weight is not resolved")
	ErrUnknownRenderTarget  = errors.New("unknown render target")
	ErrUnknownGradingScheme = errors.New("unknown grading scheme")
	ErrNoBlocks             = errors.New("no question block could be recognized")
	ErrAnswerArity          = errors.New("answer arrays differ in length")
	ErrNoBank               = errors.New("no question bank configured")
	ErrBankNotFound         = errors.New("question bank not found")
)
