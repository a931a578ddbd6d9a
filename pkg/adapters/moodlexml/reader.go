package moodlexml

import (
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/aretw0/qtex/pkg/core"
)

const coursePrefix = "$course$/"

// Read decodes a Moodle quiz. Question types without a record counterpart
// are skipped with an unknownexportformat warning.
func (c *Codec) Read(r io.Reader) ([]core.Question, []core.Warning, error) {
	var doc quiz
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, nil, fmt.Errorf("failed to decode quiz: %w", err)
	}
	log := core.NewWarningLog(c.sink)

	qs := make([]core.Question, 0, len(doc.Questions))
	for _, x := range doc.Questions {
		switch x.Type {
		case TypeCategory:
			name := ""
			if x.Category != nil {
				name = strings.TrimPrefix(strings.TrimSpace(x.Category.Text), coursePrefix)
			}
			qs = append(qs, &core.Category{Name: name})
		case TypeDescription:
			d := &core.Description{Name: nameOf(x)}
			var files fileSet
			if x.QuestionText != nil {
				d.Body = x.QuestionText.Text
				files.add(x.QuestionText.Files)
			}
			d.Files = files.decode(log, d.Name)
			qs = append(qs, d)
		case TypeMultichoice:
			qs = append(qs, c.readChoice(x, log))
		default:
			log.Warn(core.Warning{Code: core.WarnUnknownExportFormat, Question: nameOf(x), Detail: x.Type})
		}
	}

	c.logger.Debug("quiz read", "questions", len(qs))
	return qs, log.Warnings(), nil
}

func (c *Codec) readChoice(x question, log *core.WarningLog) *core.Choice {
	q := &core.Choice{
		Name:    nameOf(x),
		Single:  parseBool(x.Single, true),
		Shuffle: parseBool(x.ShuffleAnswers, true),
	}
	var files fileSet
	if x.QuestionText != nil {
		q.Body = x.QuestionText.Text
		files.add(x.QuestionText.Files)
	}
	if x.GeneralFeedback != nil {
		q.GeneralFeedback = x.GeneralFeedback.Text
		files.add(x.GeneralFeedback.Files)
	}

	for _, xa := range x.Answers {
		a := core.Answer{Text: xa.Text}
		files.add(xa.Files)
		if xa.Feedback != nil {
			a.Feedback = xa.Feedback.Text
			files.add(xa.Feedback.Files)
		}
		pct, err := strconv.ParseFloat(strings.TrimSpace(xa.Fraction), 64)
		if err != nil {
			log.Warn(core.Warning{Code: core.WarnBadPercentage, Question: q.Name, Detail: xa.Fraction})
			pct = 0
		}
		a.Weight = core.Fraction(pct / 100)
		q.Answers = append(q.Answers, a)
	}
	if len(q.Answers) == 0 {
		log.Warn(core.Warning{Code: core.WarnNoAnswers, Question: q.Name, Detail: "question has no answers"})
	}
	q.Files = files.decode(log, q.Name)
	return q
}

func nameOf(x question) string {
	if x.Name == nil {
		return ""
	}
	return strings.TrimSpace(x.Name.Text)
}

func parseBool(s string, fallback bool) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return fallback
	}
	return v
}

type fileSet []file

func (s *fileSet) add(files []file) {
	*s = append(*s, files...)
}

// decode turns base64 file elements into records, one per name.
func (s fileSet) decode(log *core.WarningLog, question string) []core.File {
	var out []core.File
	seen := make(map[string]bool)
	for _, f := range s {
		if seen[f.Name] {
			continue
		}
		seen[f.Name] = true
		data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(f.Data))
		if err != nil {
			log.Warn(core.Warning{Code: core.WarnEmbedError, Question: question, Detail: f.Name})
			continue
		}
		out = append(out, core.File{Name: f.Name, Type: fileType(f.Name, data), Data: data})
	}
	return out
}

// fileType prefers the extension and falls back to sniffing the payload.
func fileType(name string, data []byte) string {
	if ext := strings.TrimPrefix(path.Ext(name), "."); ext != "" {
		return strings.ToLower(ext)
	}
	ct := http.DetectContentType(data)
	if sub, ok := strings.CutPrefix(ct, "image/"); ok {
		if sub == "jpeg" {
			return "jpg"
		}
		return sub
	}
	return ""
}
