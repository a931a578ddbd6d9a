// Package moodlexml reads and writes the Moodle question bank XML format.
package moodlexml

import (
	"encoding/xml"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/aretw0/qtex/pkg/core"
	"github.com/aretw0/qtex/pkg/grading"
)

// Question types understood by the codec.
const (
	TypeCategory    = "category"
	TypeMultichoice = "multichoice"
	TypeDescription = "description"
)

type quiz struct {
	XMLName   xml.Name   `xml:"quiz"`
	Questions []question `xml:"question"`
}

type question struct {
	Type            string   `xml:"type,attr"`
	Category        *text    `xml:"category,omitempty"`
	Name            *text    `xml:"name,omitempty"`
	QuestionText    *rich    `xml:"questiontext,omitempty"`
	GeneralFeedback *rich    `xml:"generalfeedback,omitempty"`
	DefaultGrade    string   `xml:"defaultgrade,omitempty"`
	Penalty         string   `xml:"penalty,omitempty"`
	Hidden          string   `xml:"hidden,omitempty"`
	Single          string   `xml:"single,omitempty"`
	ShuffleAnswers  string   `xml:"shuffleanswers,omitempty"`
	AnswerNumbering string   `xml:"answernumbering,omitempty"`
	Answers         []answer `xml:"answer"`
}

type text struct {
	Text string `xml:"text"`
}

type rich struct {
	Format string `xml:"format,attr,omitempty"`
	Text   string `xml:"text"`
	Files  []file `xml:"file"`
}

type file struct {
	Name     string `xml:"name,attr"`
	Path     string `xml:"path,attr"`
	Encoding string `xml:"encoding,attr"`
	Data     string `xml:",chardata"`
}

type answer struct {
	Fraction string `xml:"fraction,attr"`
	Format   string `xml:"format,attr,omitempty"`
	Text     string `xml:"text"`
	Files    []file `xml:"file"`
	Feedback *rich  `xml:"feedback,omitempty"`
}

// Codec converts between question records and Moodle XML.
type Codec struct {
	grader core.Grader
	sink   core.WarningSink
	logger *slog.Logger
}

// Option configures a Codec.
type Option func(*Codec)

// WithGrader sets the scheme whose DefaultMark becomes the question's default grade.
func WithGrader(g core.Grader) Option {
	return func(c *Codec) {
		if g != nil {
			c.grader = g
		}
	}
}

// WithWarningSink forwards every warning as it is recorded.
func WithWarningSink(s core.WarningSink) Option {
	return func(c *Codec) { c.sink = s }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Codec) { c.logger = l }
}

// New creates a Codec.
func New(opts ...Option) *Codec {
	c := &Codec{grader: grading.Default{}}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c
}

// Serialize implements core.Exporter. Moodle XML carries its files inline,
// so no payloads are returned.
func (c *Codec) Serialize(qs []core.Question) (string, map[string][]byte, error) {
	var b strings.Builder
	if _, err := c.Write(&b, qs); err != nil {
		return "", nil, err
	}
	return b.String(), nil, nil
}

// Parse implements core.Importer.
func (c *Codec) Parse(doc string) ([]core.Question, []core.Warning, error) {
	return c.Read(strings.NewReader(doc))
}

// formatPercent renders a fraction as a Moodle percentage.
func formatPercent(fraction float64) string {
	pct := math.Round(fraction*100*1e5) / 1e5
	if pct == 0 {
		pct = 0
	}
	return strconv.FormatFloat(pct, 'f', -1, 64)
}

var (
	_ core.Exporter = (*Codec)(nil)
	_ core.Importer = (*Codec)(nil)
)
