package tex

import (
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strings"

	"github.com/aretw0/qtex/pkg/core"
)

// Preamble opens every exported document.
const Preamble = `% QuestionTeX

% User information
% ================
%   - Compile with latex or pdflatex.
%   - The macro file included below must be in the same folder.
%   - User-defined macros are not supported on import.
`

// weightTolerance absorbs float noise when comparing graded weights.
const weightTolerance = 1e-9

var reCategoryVars = regexp.MustCompile(`(?s)\$(?:.*?)\$/?`)

// Serializer writes question records as canonical QuestionTeX.
type Serializer struct {
	aliases  *core.AliasTable
	settings core.Settings
	target   core.RenderTarget
	sink     core.WarningSink
	logger   *slog.Logger
}

// NewSerializer creates a Serializer. It accepts the same options as NewParser;
// grading and image resolution options are ignored.
func NewSerializer(opts ...Option) *Serializer {
	c := defaultConfig()
	c.apply(opts)
	return &Serializer{
		aliases:  c.aliases,
		settings: c.settings,
		target:   c.target,
		sink:     c.sink,
		logger:   c.logger,
	}
}

// Serialize renders questions as a complete document and returns the image
// payloads keyed by include name. Every answer weight must be resolved.
func (s *Serializer) Serialize(qs []core.Question) (string, map[string][]byte, error) {
	if !s.target.Valid() {
		return "", nil, fmt.Errorf("%w: %q", core.ErrUnknownRenderTarget, s.target)
	}
	ex := &extraction{
		folder:   s.settings.ImageFolder,
		files:    make(map[string]core.File),
		payloads: make(map[string][]byte),
		log:      core.NewWarningLog(s.sink),
	}

	var b strings.Builder
	for _, q := range qs {
		switch v := q.(type) {
		case *core.Category:
			b.WriteString(s.category(v))
		case *core.Description:
			addFiles(ex, v.Files)
			b.WriteString(s.macro(core.IDDescription, v.Name, v.Body))
		case *core.Choice:
			addFiles(ex, v.Files)
			text, err := s.choice(v)
			if err != nil {
				return "", nil, err
			}
			b.WriteString(text)
		default:
			ex.log.Warn(core.Warning{Code: core.WarnUnknownExportFormat, Detail: fmt.Sprintf("%T", q)})
		}
	}

	content := s.extractImages(b.String(), ex)
	content = cleanup(content)
	doc := s.document(content)

	s.logger.Debug("document serialized", "questions", len(qs), "images", len(ex.payloads))
	return doc, ex.payloads, nil
}

func addFiles(ex *extraction, files []core.File) {
	for _, f := range files {
		ex.files[f.Name] = f
	}
}

func (s *Serializer) category(c *core.Category) string {
	name := reCategoryVars.ReplaceAllString(c.Name, "")
	return s.settings.Newline + s.macro(core.IDTitle, "", name) + s.settings.Newline
}

func (s *Serializer) choice(q *core.Choice) (string, error) {
	var b strings.Builder
	b.WriteString(s.macro(core.IDMultichoice, q.Name, q.Body))
	if !q.Shuffle {
		b.WriteString(s.macro(core.IDShuffleAnswers, "", "false"))
	}
	if !q.Single {
		b.WriteString(s.macro(core.IDMultianswer, ""))
	}
	for i, a := range q.Answers {
		if !a.Weight.Resolved() {
			return "", fmt.Errorf("question %q answer %d: %w", q.Name, i+1, core.ErrUnresolvedWeight)
		}
	}
	bare := q.Single && markersSuffice(q.Answers)
	for _, a := range q.Answers {
		id := core.IDFalse
		if a.Weight.Value > 0 {
			id = core.IDTrue
		}
		if bare {
			b.WriteString(s.macro(id, "", a.Text))
		} else {
			b.WriteString(s.macro(id, formatPercent(a.Weight.Value), a.Text))
		}
		if a.Feedback != "" {
			b.WriteString(s.macro(core.IDFeedback, "", a.Feedback))
		}
	}
	if q.GeneralFeedback != "" {
		b.WriteString(s.macro(core.IDExplanation, "", q.GeneralFeedback))
	}
	return b.String(), nil
}

// markersSuffice reports whether bare true/false macros grade back to the
// same single-choice weights: wrong answers 0, right answers sharing 1.
func markersSuffice(answers []core.Answer) bool {
	right := 0
	for _, a := range answers {
		if a.Weight.Value > 0 {
			right++
		}
	}
	if right == 0 {
		return false
	}
	share := 1 / float64(right)
	for _, a := range answers {
		want := 0.0
		if a.Weight.Value > 0 {
			want = share
		}
		if math.Abs(a.Weight.Value-want) > weightTolerance {
			return false
		}
	}
	return true
}

// macro renders \canonical[optional]{arg}... followed by a newline.
func (s *Serializer) macro(id, optional string, args ...string) string {
	var b strings.Builder
	b.WriteString(`\`)
	b.WriteString(s.aliases.Canonical(id))
	if optional != "" {
		b.WriteString("[" + optional + "]")
	}
	for _, arg := range args {
		b.WriteString("{" + arg + "}")
	}
	b.WriteString(s.settings.Newline)
	return b.String()
}

func (s *Serializer) document(content string) string {
	nl := s.settings.Newline
	var b strings.Builder
	b.WriteString(strings.ReplaceAll(Preamble, "\n", nl))
	b.WriteString(nl)
	b.WriteString(`\documentclass[a4paper,oneside]{article}` + nl)
	b.WriteString(`\input{` + s.settings.MacroFile + `}` + nl)
	b.WriteString(`\showsolution` + nl)
	b.WriteString(`\showfeedback` + nl)
	b.WriteString(nl)
	b.WriteString(`\begin{document}` + nl)
	b.WriteString(content)
	b.WriteString(`\end{document}` + nl)
	return b.String()
}
