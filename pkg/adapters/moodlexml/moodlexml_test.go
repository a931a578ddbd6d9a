package moodlexml

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/qtex/pkg/core"
	"github.com/aretw0/qtex/pkg/grading"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func sample() []core.Question {
	return []core.Question{
		&core.Category{Name: "Arithmetic"},
		&core.Description{Name: "Intro", Body: "<p>Read <i>carefully</i> &amp; answer.</p>"},
		&core.Choice{
			Name:            "Even numbers",
			Body:            "Which are even? <img src=\"@@PLUGINFILE@@/images_cat\" alt=\"images/cat\">",
			GeneralFeedback: "2 and 4.",
			Shuffle:         false,
			Single:          false,
			Answers: []core.Answer{
				{Text: "1", Weight: core.Fraction(-1)},
				{Text: "2", Feedback: "Yes.", Weight: core.Fraction(0.5)},
				{Text: "3", Weight: core.Fraction(-1)},
				{Text: "4", Weight: core.Fraction(0.5)},
			},
			Files: []core.File{{Name: "images_cat", Type: "png", Data: pngHeader}},
		},
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	c := New()
	var buf bytes.Buffer
	warnings, err := c.Write(&buf, sample())
	require.NoError(t, err)
	assert.Empty(t, warnings)

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, out, `<question type="category">`)
	assert.Contains(t, out, `<text>$course$/Arithmetic</text>`)
	assert.Contains(t, out, `<answer fraction="-100" format="html">`)
	assert.Contains(t, out, `<file name="images_cat" path="/" encoding="base64">`)

	qs, warnings, err := c.Read(&buf)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, sample(), qs)
}

func TestCodec_Write(t *testing.T) {
	choice := func(ws ...float64) *core.Choice {
		q := &core.Choice{Name: "Q", Body: "B", Shuffle: true}
		for _, w := range ws {
			q.Answers = append(q.Answers, core.Answer{Text: "a", Weight: core.Fraction(w)})
		}
		return q
	}

	t.Run("fractions snap to allowed grades", func(t *testing.T) {
		var seen []core.Warning
		c := New(WithWarningSink(core.SinkFunc(func(w core.Warning) { seen = append(seen, w) })))

		doc, _, err := c.Serialize([]core.Question{choice(0.33, -0.33, 0.5)})
		require.NoError(t, err)
		assert.Contains(t, doc, `fraction="33.33333"`)
		assert.Contains(t, doc, `fraction="-33.33333"`)
		assert.Contains(t, doc, `fraction="50"`)
		require.Len(t, seen, 2)
		assert.Equal(t, core.WarnChangedPercentage, seen[0].Code)
		assert.Equal(t, "Q", seen[0].Question)
	})

	t.Run("default grade follows the scheme", func(t *testing.T) {
		c := New(WithGrader(grading.SchemeB{}))
		doc, _, err := c.Serialize([]core.Question{choice(1, -0.25, -0.25, -0.25)})
		require.NoError(t, err)
		assert.Contains(t, doc, `<defaultgrade>2</defaultgrade>`)
	})

	t.Run("unresolved weight", func(t *testing.T) {
		q := choice(1)
		q.Answers[0].Weight = core.TrueMarker()
		_, _, err := New().Serialize([]core.Question{q})
		assert.ErrorIs(t, err, core.ErrUnresolvedWeight)
	})

	t.Run("markup is escaped", func(t *testing.T) {
		doc, _, err := New().Serialize([]core.Question{&core.Description{Name: "D", Body: "a < b"}})
		require.NoError(t, err)
		assert.Contains(t, doc, `<text>a &lt; b</text>`)
	})
}

func TestCodec_Read(t *testing.T) {
	t.Run("unknown type", func(t *testing.T) {
		doc := `<quiz>
  <question type="essay"><name><text>E</text></name></question>
  <question type="multichoice"><name><text>M</text></name>
    <questiontext format="html"><text>Body</text></questiontext>
    <single>false</single>
    <answer fraction="abc"><text>x</text></answer>
    <answer fraction="100"><text>y</text></answer>
  </question>
</quiz>`
		qs, warnings, err := New().Parse(doc)
		require.NoError(t, err)
		require.Len(t, qs, 1)
		require.Len(t, warnings, 2)
		assert.Equal(t, core.WarnUnknownExportFormat, warnings[0].Code)
		assert.Equal(t, "E", warnings[0].Question)
		assert.Equal(t, core.WarnBadPercentage, warnings[1].Code)

		q := qs[0].(*core.Choice)
		assert.False(t, q.Single)
		assert.True(t, q.Shuffle)
		assert.Equal(t, 0.0, q.Answers[0].Weight.Value)
		assert.Equal(t, 1.0, q.Answers[1].Weight.Value)
	})

	t.Run("malformed", func(t *testing.T) {
		_, _, err := New().Parse("<quiz><question>")
		assert.Error(t, err)
	})
}

func TestSnap(t *testing.T) {
	tests := []struct {
		in      float64
		want    float64
		changed bool
	}{
		{1, 1, false},
		{0.5, 0.5, false},
		{0.33333, 0.33333, false},
		{-0.25, -0.25, false},
		{0.33, 0.3333333, true},
		{0.97, 1, true},
		{-0.04, -0.05, true},
		{0.01, 0, true},
	}
	for _, tt := range tests {
		got, changed := snap(tt.in)
		assert.InDelta(t, tt.want, got, 1e-9, "snap(%v)", tt.in)
		assert.Equal(t, tt.changed, changed, "snap(%v)", tt.in)
	}
}
