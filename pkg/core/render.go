package core

import (
	"fmt"
	"strings"
)

// RenderTarget selects the formula dialect emitted on import.
type RenderTarget string

const (
	TargetJSMath  RenderTarget = "jsmath"
	TargetMathJax RenderTarget = "mathjax"
	TargetTeX     RenderTarget = "tex"
)

// DefaultRenderTarget is used when nothing is configured.
const DefaultRenderTarget = TargetTeX

// ParseRenderTarget accepts the target names and the letters A, B and C.
// The empty string yields the default target.
func ParseRenderTarget(s string) (RenderTarget, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DefaultRenderTarget, nil
	case "jsmath", "a":
		return TargetJSMath, nil
	case "mathjax", "b":
		return TargetMathJax, nil
	case "tex", "c":
		return TargetTeX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRenderTarget, s)
}

// Valid reports whether t is one of the known targets.
func (t RenderTarget) Valid() bool {
	switch t {
	case TargetJSMath, TargetMathJax, TargetTeX:
		return true
	}
	return false
}
