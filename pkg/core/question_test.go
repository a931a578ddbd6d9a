package core_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/qtex/pkg/core"
)

func TestFlattenAnswers(t *testing.T) {
	answers, err := core.FlattenAnswers(
		[]string{"1", "2"},
		[]string{"", "even"},
		[]core.Weight{core.FalseMarker(), core.Fraction(1)},
	)
	require.NoError(t, err)
	require.Len(t, answers, 2)
	assert.Equal(t, "2", answers[1].Text)
	assert.Equal(t, "even", answers[1].Feedback)
	assert.True(t, answers[1].Weight.Resolved())
	assert.False(t, answers[0].Weight.Resolved())

	_, err = core.FlattenAnswers([]string{"1"}, nil, nil)
	assert.True(t, errors.Is(err, core.ErrAnswerArity))
}

func TestWeight_ZeroValue(t *testing.T) {
	var a core.Answer
	assert.True(t, a.Weight.Resolved(), "a zero answer must not read as a marker")
	assert.Equal(t, core.Fraction(0), a.Weight)
	assert.NotEqual(t, core.TrueMarker(), a.Weight)
	assert.Equal(t, "0", a.Weight.String())
}

func TestAliasTable(t *testing.T) {
	table := core.DefaultAliases()

	t.Run("canonical spelling is first", func(t *testing.T) {
		assert.Equal(t, "question", table.Canonical(core.IDMultichoice))
		assert.Equal(t, "quiztitle", table.Canonical(core.IDTitle))
		assert.Equal(t, "includegraphics", table.Canonical(core.IDImage))
	})

	t.Run("unknown identifier is a literal spelling", func(t *testing.T) {
		assert.Equal(t, []string{"newcommand"}, table.Spellings("newcommand"))
	})

	t.Run("environments are listed in stable order", func(t *testing.T) {
		assert.Equal(t, []string{"description", "multichoice", "singlechoice"}, table.Environments())
		assert.True(t, table.IsEnvironment(core.IDSinglechoice))
		assert.False(t, table.IsEnvironment(core.IDTrue))
	})

	t.Run("returned slices do not alias the table", func(t *testing.T) {
		s := table.Spellings(core.IDTrue)
		s[0] = "broken"
		assert.Equal(t, "true", table.Canonical(core.IDTrue))
	})

	t.Run("override keeps the rest", func(t *testing.T) {
		custom := table.Override(map[string][]string{core.IDTrue: {"richtig", "true"}}, nil)
		assert.Equal(t, "richtig", custom.Canonical(core.IDTrue))
		assert.Equal(t, "false", custom.Canonical(core.IDFalse))
		assert.Equal(t, "true", table.Canonical(core.IDTrue))
		assert.Equal(t, table.Len(), custom.Len())
	})
}

func TestParseRenderTarget(t *testing.T) {
	tests := []struct {
		in   string
		want core.RenderTarget
	}{
		{"", core.TargetTeX},
		{"A", core.TargetJSMath},
		{"mathjax", core.TargetMathJax},
		{" TeX ", core.TargetTeX},
	}
	for _, tt := range tests {
		got, err := core.ParseRenderTarget(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := core.ParseRenderTarget("latexml")
	assert.ErrorIs(t, err, core.ErrUnknownRenderTarget)
}

func TestQuestionCodec(t *testing.T) {
	qs := []core.Question{
		&core.Category{Name: "Algebra"},
		&core.Description{Name: "Intro", Body: "Read carefully."},
		&core.Choice{
			Name:            "Even",
			Body:            "Which are even?",
			GeneralFeedback: "2 and 4.",
			Shuffle:         true,
			Answers: []core.Answer{
				{Text: "1", Weight: core.Fraction(0)},
				{Text: "2", Feedback: "yes", Weight: core.Fraction(1)},
				{Text: "3", Weight: core.FalseMarker()},
			},
			Files: []core.File{{Name: "a.png", Type: "png", Data: []byte{1, 2}}},
		},
	}

	data, err := core.MarshalQuestions(qs)
	require.NoError(t, err)

	back, err := core.UnmarshalQuestions(data)
	require.NoError(t, err)
	assert.Equal(t, qs, back)

	_, err = core.UnmarshalQuestion([]byte(`{"kind":"essay"}`))
	assert.Error(t, err)
}

func TestWarningLog(t *testing.T) {
	var forwarded []core.Warning
	log := core.NewWarningLog(core.SinkFunc(func(w core.Warning) {
		forwarded = append(forwarded, w)
	}))

	log.Warn(core.Warning{Code: core.WarnImageMissing, Detail: "images/a"})
	log.Warn(core.Warning{Code: core.WarnBadPercentage, Question: "q1", Detail: "5x"})

	assert.Len(t, log.Warnings(), 2)
	assert.Equal(t, log.Warnings(), forwarded)
	assert.Equal(t, "badpercentage: 5x (q1)", forwarded[1].String())
}
