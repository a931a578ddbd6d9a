package core

import (
	"encoding/json"
	"fmt"
)

type fileJSON struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
	Data []byte `json:"data"`
}

type weightJSON struct {
	Kind  string  `json:"kind"`
	Value float64 `json:"value,omitempty"`
}

type answerJSON struct {
	Text     string     `json:"text"`
	Feedback string     `json:"feedback,omitempty"`
	Weight   weightJSON `json:"weight"`
}

type questionJSON struct {
	Kind            Kind         `json:"kind"`
	Name            string       `json:"name"`
	Body            string       `json:"body,omitempty"`
	GeneralFeedback string       `json:"general_feedback,omitempty"`
	Shuffle         bool         `json:"shuffle,omitempty"`
	Single          bool         `json:"single,omitempty"`
	Answers         []answerJSON `json:"answers,omitempty"`
	Files           []fileJSON   `json:"files,omitempty"`
}

// MarshalQuestions encodes records with a "kind" discriminator.
func MarshalQuestions(qs []Question) ([]byte, error) {
	out := make([]questionJSON, 0, len(qs))
	for _, q := range qs {
		v, err := toJSON(q)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return json.Marshal(out)
}

// UnmarshalQuestions decodes the output of MarshalQuestions.
func UnmarshalQuestions(data []byte) ([]Question, error) {
	var in []questionJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("failed to decode questions: %w", err)
	}
	qs := make([]Question, 0, len(in))
	for _, v := range in {
		q, err := fromJSON(v)
		if err != nil {
			return nil, err
		}
		qs = append(qs, q)
	}
	return qs, nil
}

// MarshalQuestion encodes a single record.
func MarshalQuestion(q Question) ([]byte, error) {
	v, err := toJSON(q)
	if err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

// UnmarshalQuestion decodes a single record.
func UnmarshalQuestion(data []byte) (Question, error) {
	var v questionJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to decode question: %w", err)
	}
	return fromJSON(v)
}

func toJSON(q Question) (questionJSON, error) {
	switch v := q.(type) {
	case *Category:
		return questionJSON{Kind: KindCategory, Name: v.Name}, nil
	case *Description:
		return questionJSON{Kind: KindDescription, Name: v.Name, Body: v.Body, Files: filesToJSON(v.Files)}, nil
	case *Choice:
		out := questionJSON{
			Kind:            KindChoice,
			Name:            v.Name,
			Body:            v.Body,
			GeneralFeedback: v.GeneralFeedback,
			Shuffle:         v.Shuffle,
			Single:          v.Single,
			Files:           filesToJSON(v.Files),
		}
		for _, a := range v.Answers {
			out.Answers = append(out.Answers, answerJSON{
				Text:     a.Text,
				Feedback: a.Feedback,
				Weight:   weightToJSON(a.Weight),
			})
		}
		return out, nil
	}
	return questionJSON{}, fmt.Errorf("unsupported question type %T", q)
}

func fromJSON(v questionJSON) (Question, error) {
	switch v.Kind {
	case KindCategory:
		return &Category{Name: v.Name}, nil
	case KindDescription:
		return &Description{Name: v.Name, Body: v.Body, Files: filesFromJSON(v.Files)}, nil
	case KindChoice:
		q := &Choice{
			Name:            v.Name,
			Body:            v.Body,
			GeneralFeedback: v.GeneralFeedback,
			Shuffle:         v.Shuffle,
			Single:          v.Single,
			Files:           filesFromJSON(v.Files),
		}
		for _, a := range v.Answers {
			w, err := weightFromJSON(a.Weight)
			if err != nil {
				return nil, err
			}
			q.Answers = append(q.Answers, Answer{Text: a.Text, Feedback: a.Feedback, Weight: w})
		}
		return q, nil
	}
	return nil, fmt.Errorf("unknown question kind %q", v.Kind)
}

func weightToJSON(w Weight) weightJSON {
	switch w.Kind {
	case WeightTrue:
		return weightJSON{Kind: "true"}
	case WeightFalse:
		return weightJSON{Kind: "false"}
	}
	return weightJSON{Kind: "explicit", Value: w.Value}
}

func weightFromJSON(w weightJSON) (Weight, error) {
	switch w.Kind {
	case "true":
		return TrueMarker(), nil
	case "false":
		return FalseMarker(), nil
	case "explicit":
		return Fraction(w.Value), nil
	}
	return Weight{}, fmt.Errorf("unknown weight kind %q", w.Kind)
}

func filesToJSON(files []File) []fileJSON {
	if len(files) == 0 {
		return nil
	}
	out := make([]fileJSON, len(files))
	for i, f := range files {
		out[i] = fileJSON{Name: f.Name, Type: f.Type, Data: f.Data}
	}
	return out
}

func filesFromJSON(files []fileJSON) []File {
	if len(files) == 0 {
		return nil
	}
	out := make([]File, len(files))
	for i, f := range files {
		out[i] = File{Name: f.Name, Type: f.Type, Data: f.Data}
	}
	return out
}
