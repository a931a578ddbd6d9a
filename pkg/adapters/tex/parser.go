package tex

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aretw0/qtex/pkg/core"
	"github.com/aretw0/qtex/pkg/grading"
)

// Parser converts QuestionTeX documents into question records.
// A Parser holds no per-call state and may be shared between goroutines.
type Parser struct {
	aliases  *core.AliasTable
	settings core.Settings
	target   core.RenderTarget
	grader   core.Grader
	resolver core.ImageResolver
	sink     core.WarningSink
	logger   *slog.Logger

	scanner     *Scanner
	title       *Pattern
	answers     *Pattern
	answerStop  *Pattern
	feedback    *Pattern
	explanation *Pattern
	shuffle     *Pattern
	multianswer *Pattern
	image       *Pattern
}

// Option configures a Parser or a Serializer.
type Option func(*config)

type config struct {
	aliases  *core.AliasTable
	settings core.Settings
	target   core.RenderTarget
	grader   core.Grader
	resolver core.ImageResolver
	sink     core.WarningSink
	logger   *slog.Logger
}

func defaultConfig() *config {
	return &config{
		aliases:  core.DefaultAliases(),
		settings: core.DefaultSettings(),
		target:   core.DefaultRenderTarget,
		grader:   grading.Default{},
	}
}

// WithAliases sets the macro vocabulary.
func WithAliases(t *core.AliasTable) Option {
	return func(c *config) {
		if t != nil {
			c.aliases = t
		}
	}
}

// WithSettings overrides the format settings.
func WithSettings(s core.Settings) Option {
	return func(c *config) { c.settings = s }
}

// WithRenderTarget selects the formula dialect.
func WithRenderTarget(t core.RenderTarget) Option {
	return func(c *config) { c.target = t }
}

// WithGrader sets the grading scheme applied to choice questions.
func WithGrader(g core.Grader) Option {
	return func(c *config) {
		if g != nil {
			c.grader = g
		}
	}
}

// WithResolver provides image payloads referenced by the document.
func WithResolver(r core.ImageResolver) Option {
	return func(c *config) { c.resolver = r }
}

// WithWarningSink forwards every warning as it is recorded.
func WithWarningSink(s core.WarningSink) Option {
	return func(c *config) { c.sink = s }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

func (c *config) apply(opts []Option) {
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
}

// NewParser creates a Parser.
func NewParser(opts ...Option) *Parser {
	c := defaultConfig()
	c.apply(opts)

	t := c.aliases
	stops := append([]string{core.IDTrue, core.IDFalse, core.IDExplanation}, t.Environments()...)
	return &Parser{
		aliases:  t,
		settings: c.settings,
		target:   c.target,
		grader:   c.grader,
		resolver: c.resolver,
		sink:     c.sink,
		logger:   c.logger,

		scanner:     NewScanner(t),
		title:       Compile(t, []string{core.IDTitle}, ModeMacro, 1, false),
		answers:     Compile(t, []string{core.IDTrue, core.IDFalse}, ModeMacro, 1, true),
		answerStop:  Compile(t, stops, ModeMacro, NoArgs, false),
		feedback:    Compile(t, []string{core.IDFeedback}, ModeMacro, 1, false),
		explanation: Compile(t, []string{core.IDExplanation}, ModeMacro, 1, false),
		shuffle:     Compile(t, []string{core.IDShuffleAnswers}, ModeMacro, 1, false),
		multianswer: Compile(t, []string{core.IDMultianswer}, ModeMacro, NoArgs, false),
		image:       Compile(t, []string{core.IDImage}, ModeMacro, 1, false),
	}
}

// parse holds the state of a single Parse call.
type parse struct {
	*Parser
	log    *core.WarningLog
	images map[string]core.Image
}

// Parse converts a document into question records. The first record is
// always the category. Warnings are returned in the order they occurred.
func (p *Parser) Parse(doc string) ([]core.Question, []core.Warning, error) {
	if !p.target.Valid() {
		return nil, nil, fmt.Errorf("%w: %q", core.ErrUnknownRenderTarget, p.target)
	}
	st := &parse{Parser: p, log: core.NewWarningLog(p.sink)}

	text := Transform(Prepare(doc), p.target)
	st.images = st.collectImages(text)

	questions := []core.Question{st.category(text)}
	blocks := p.scanner.Scan(text)
	if len(blocks) == 0 && p.scanner.Openings(text) > 0 {
		return nil, st.log.Warnings(), core.ErrNoBlocks
	}

	ordinal := 0
	for _, block := range blocks {
		q, err := st.build(block, ordinal+1)
		if err != nil {
			return nil, st.log.Warnings(), err
		}
		if q == nil {
			continue
		}
		ordinal++
		questions = append(questions, q)
	}

	warnings := st.log.Warnings()
	p.logger.Debug("document parsed", "questions", ordinal, "warnings", len(warnings), "target", string(p.target))
	return questions, warnings, nil
}

func (st *parse) category(text string) *core.Category {
	name := st.settings.DefaultCategory
	if st.settings.CategoryFromTitle {
		if m, ok := st.title.Find(text, 0); ok && strings.TrimSpace(m.Arg(1)) != "" {
			name = m.Arg(1)
		}
	}
	return &core.Category{Name: Sanitize(name)}
}

func (st *parse) build(block RawMatch, ordinal int) (core.Question, error) {
	switch block.ID {
	case core.IDMultichoice, core.IDSinglechoice:
		return st.choice(block, ordinal)
	case core.IDDescription:
		return st.description(block, ordinal), nil
	}
	st.log.Warn(core.Warning{
		Code:   core.WarnUnknownEnvironment,
		Detail: block.Spelling,
	})
	return nil, nil
}

func (st *parse) description(block RawMatch, ordinal int) *core.Description {
	var files fileSet
	return &core.Description{
		Name:  questionName(block, ordinal, st.settings.QuestionNameLength),
		Body:  st.field(block.Body, &files),
		Files: files.list,
	}
}

func (st *parse) choice(block RawMatch, ordinal int) (*core.Choice, error) {
	var files fileSet
	body := block.Tail
	q := &core.Choice{
		Name:    questionName(block, ordinal, st.settings.QuestionNameLength),
		Single:  true,
		Shuffle: true,
	}
	q.Body = st.field(block.Body, &files)

	if block.ID == core.IDMultichoice && st.multianswer.Contains(body) {
		q.Single = false
	}
	if m, ok := st.shuffle.Find(body, 0); ok && strings.TrimSpace(m.Arg(1)) == "false" {
		q.Shuffle = false
	}
	if m, ok := st.explanation.Find(body, 0); ok {
		q.GeneralFeedback = st.field(m.Arg(1), &files)
	}

	var (
		texts     []string
		feedbacks []string
		weights   []core.Weight
	)
	for _, m := range st.answers.FindAll(body) {
		end := len(body)
		if next, ok := st.answerStop.Find(body, m.End); ok {
			end = next.Start
		}
		feedback := ""
		if f, ok := st.feedback.Find(body[m.End:end], 0); ok {
			feedback = st.field(f.Arg(1), &files)
		}
		texts = append(texts, st.field(m.Arg(1), &files))
		feedbacks = append(feedbacks, feedback)
		weights = append(weights, st.weight(m, q.Name))
	}

	answers, err := core.FlattenAnswers(texts, feedbacks, weights)
	if err != nil {
		return nil, err
	}
	if len(answers) == 0 {
		st.log.Warn(core.Warning{Code: core.WarnNoAnswers, Question: q.Name, Detail: "question has no answers"})
		return nil, fmt.Errorf("question %q: %w", q.Name, core.ErrNoAnswers)
	}
	q.Answers = answers
	q.Files = files.list

	if err := st.grader.Grade(q); err != nil {
		return nil, fmt.Errorf("question %q: %w", q.Name, err)
	}
	return q, nil
}

func (st *parse) weight(m Match, question string) core.Weight {
	if m.HasOptional && strings.TrimSpace(m.Optional) != "" {
		fraction, ok := parsePercent(m.Optional)
		if !ok {
			st.log.Warn(core.Warning{
				Code:     core.WarnBadPercentage,
				Question: question,
				Detail:   m.Optional,
			})
		}
		return core.Fraction(fraction)
	}
	if m.ID == core.IDTrue {
		return core.TrueMarker()
	}
	return core.FalseMarker()
}

// field finishes an extracted argument: images are embedded and escaped
// braces outside formulas are unescaped.
func (st *parse) field(text string, files *fileSet) string {
	return UnescapeBraces(st.embedImages(text, files))
}
