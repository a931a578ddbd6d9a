package moodlexml

import (
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aretw0/qtex/pkg/core"
)

const (
	formatHTML      = "html"
	defaultPenalty  = "0.3333333"
	answerNumbering = "abc"
	pluginFile      = "@@PLUGINFILE@@/"
)

// Write encodes questions as a Moodle quiz. Answer fractions that Moodle
// does not accept are moved to the nearest allowed grade with a
// changedpercentage warning.
func (c *Codec) Write(w io.Writer, qs []core.Question) ([]core.Warning, error) {
	log := core.NewWarningLog(c.sink)
	doc := quiz{Questions: make([]question, 0, len(qs))}

	for _, q := range qs {
		switch v := q.(type) {
		case *core.Category:
			doc.Questions = append(doc.Questions, question{
				Type:     TypeCategory,
				Category: &text{Text: categoryPath(v.Name)},
			})
		case *core.Description:
			files := attach(v.Files)
			doc.Questions = append(doc.Questions, question{
				Type:            TypeDescription,
				Name:            &text{Text: v.Name},
				QuestionText:    &rich{Format: formatHTML, Text: v.Body, Files: files.take(v.Body, true)},
				GeneralFeedback: &rich{Format: formatHTML},
				DefaultGrade:    "0",
				Penalty:         "0",
				Hidden:          "0",
			})
		case *core.Choice:
			x, err := c.choice(v, log)
			if err != nil {
				return log.Warnings(), err
			}
			doc.Questions = append(doc.Questions, x)
		default:
			log.Warn(core.Warning{Code: core.WarnUnknownExportFormat, Detail: fmt.Sprintf("%T", q)})
		}
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return log.Warnings(), err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return log.Warnings(), fmt.Errorf("failed to encode quiz: %w", err)
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return log.Warnings(), err
	}

	c.logger.Debug("quiz written", "questions", len(doc.Questions))
	return log.Warnings(), nil
}

func (c *Codec) choice(q *core.Choice, log *core.WarningLog) (question, error) {
	files := attach(q.Files)
	x := question{
		Type:            TypeMultichoice,
		Name:            &text{Text: q.Name},
		QuestionText:    &rich{Format: formatHTML, Text: q.Body, Files: files.take(q.Body, false)},
		GeneralFeedback: &rich{Format: formatHTML, Text: q.GeneralFeedback, Files: files.take(q.GeneralFeedback, false)},
		DefaultGrade:    strconv.FormatFloat(c.grader.DefaultMark(q), 'f', -1, 64),
		Penalty:         defaultPenalty,
		Hidden:          "0",
		Single:          strconv.FormatBool(q.Single),
		ShuffleAnswers:  strconv.FormatBool(q.Shuffle),
		AnswerNumbering: answerNumbering,
	}

	for i, a := range q.Answers {
		if !a.Weight.Resolved() {
			return question{}, fmt.Errorf("question %q answer %d: %w", q.Name, i+1, core.ErrUnresolvedWeight)
		}
		fraction, changed := snap(a.Weight.Value)
		if changed {
			log.Warn(core.Warning{
				Code:     core.WarnChangedPercentage,
				Question: q.Name,
				Detail:   fmt.Sprintf("%s%% changed to %s%%", formatPercent(a.Weight.Value), formatPercent(fraction)),
			})
		}
		xa := answer{
			Fraction: formatPercent(fraction),
			Format:   formatHTML,
			Text:     a.Text,
			Files:    files.take(a.Text, false),
		}
		if a.Feedback != "" {
			xa.Feedback = &rich{Format: formatHTML, Text: a.Feedback, Files: files.take(a.Feedback, false)}
		}
		x.Answers = append(x.Answers, xa)
	}

	// Files nobody references still travel with the question text.
	x.QuestionText.Files = append(x.QuestionText.Files, files.rest()...)
	return x, nil
}

// categoryPath prefixes a plain category name with the course context.
func categoryPath(name string) string {
	if strings.HasPrefix(name, "$") {
		return name
	}
	return "$course$/" + name
}

// attachments hands each file to the first field that references it.
type attachments struct {
	files []core.File
	used  []bool
}

func attach(files []core.File) *attachments {
	return &attachments{files: files, used: make([]bool, len(files))}
}

func (a *attachments) take(field string, all bool) []file {
	var out []file
	for i, f := range a.files {
		if a.used[i] {
			continue
		}
		if all || strings.Contains(field, pluginFile+f.Name) {
			a.used[i] = true
			out = append(out, encodeFile(f))
		}
	}
	return out
}

func (a *attachments) rest() []file {
	return a.take("", true)
}

func encodeFile(f core.File) file {
	return file{
		Name:     f.Name,
		Path:     "/",
		Encoding: "base64",
		Data:     base64.StdEncoding.EncodeToString(f.Data),
	}
}
