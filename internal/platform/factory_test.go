package platform_test

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/qtex/internal/platform"
	"github.com/aretw0/qtex/pkg/adapters/archive"
	"github.com/aretw0/qtex/pkg/core"
)

const quiz = `\documentclass{article}
\begin{document}
\question{Which are even?}
\true{2} \false{3} \true{4} \false{5}
\end{document}
`

func TestNew_ConvertAndStore(t *testing.T) {
	ctx := context.Background()
	dsn := "file:" + filepath.Join(t.TempDir(), "bank.db")

	var warnings []core.Warning
	rt, err := platform.New(ctx,
		platform.WithGradingScheme("akveld"),
		platform.WithStore("sqlite", dsn),
		platform.WithWarningSink(core.SinkFunc(func(w core.Warning) { warnings = append(warnings, w) })),
	)
	require.NoError(t, err)
	defer rt.Close()

	qs, _, err := rt.Service.Import(rt.Parser(), quiz)
	require.NoError(t, err)
	require.Len(t, qs, 2)

	q := qs[1].(*core.Choice)
	var got []float64
	for _, a := range q.Answers {
		got = append(got, a.Weight.Value)
	}
	assert.Equal(t, []float64{1, -0.25, 1, -0.25}, got)

	xml, _, err := rt.Service.Export(rt.XML(), qs)
	require.NoError(t, err)
	assert.Contains(t, xml, "<defaultgrade>2</defaultgrade>")
	assert.Contains(t, xml, `fraction="-25"`)
	assert.Empty(t, warnings)

	require.NoError(t, rt.Service.Store(ctx, "evens", qs))
	loaded, err := rt.Service.Load(ctx, "evens")
	require.NoError(t, err)
	assert.Equal(t, qs, loaded)

	doc, _, err := rt.Service.Export(rt.Serializer(), loaded)
	require.NoError(t, err)
	assert.True(t, strings.Contains(doc, `\false[-25]{3}`), doc)

	require.NotNil(t, rt.Store())
	assert.Equal(t, "sqlstore", rt.Service.State().(core.ServiceState).BankType)
}

func TestNew_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("Unknown grading scheme", func(t *testing.T) {
		_, err := platform.New(ctx, platform.WithGradingScheme("curve"))
		require.ErrorIs(t, err, core.ErrUnknownGradingScheme)
	})

	t.Run("Unknown render target", func(t *testing.T) {
		_, err := platform.New(ctx, platform.WithRenderTarget("latex2html"))
		require.ErrorIs(t, err, core.ErrUnknownRenderTarget)
	})

	t.Run("No bank configured", func(t *testing.T) {
		rt, err := platform.New(ctx)
		require.NoError(t, err)
		assert.Nil(t, rt.Store())
		_, err = rt.Service.Banks(ctx)
		require.ErrorIs(t, err, core.ErrNoBank)
		assert.NoError(t, rt.Close())
	})
}

func TestRuntime_Bundles(t *testing.T) {
	ctx := context.Background()
	rt, err := platform.New(ctx)
	require.NoError(t, err)

	t.Run("Parameters override the runtime", func(t *testing.T) {
		b := &archive.Bundle{
			Document:  quiz,
			HasParams: true,
			Params:    archive.Params{GradingScheme: "akveld-exam"},
		}
		qs, _, err := rt.ImportBundle(b)
		require.NoError(t, err)
		q := qs[1].(*core.Choice)
		assert.Equal(t, -1.0, q.Answers[1].Weight.Value)

		codec, err := rt.XMLFor(b)
		require.NoError(t, err)
		doc, _, err := codec.Serialize(qs)
		require.NoError(t, err)
		assert.Contains(t, doc, "<defaultgrade>1</defaultgrade>")
	})

	t.Run("Invalid parameters", func(t *testing.T) {
		b := &archive.Bundle{Document: quiz, HasParams: true, Params: archive.Params{RenderEngine: "html"}}
		_, _, err := rt.ImportBundle(b)
		require.ErrorIs(t, err, core.ErrUnknownRenderTarget)
	})

	t.Run("Archive round trip", func(t *testing.T) {
		qs, _, err := rt.ImportBundle(&archive.Bundle{Document: quiz})
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, rt.ExportArchive(&buf, qs))

		b, err := rt.Unpack(buf.Bytes())
		require.NoError(t, err)
		assert.Equal(t, "MoodleQuiz.tex", b.DocumentName)

		again, _, err := rt.ImportBundle(b)
		require.NoError(t, err)
		require.Len(t, again, 2)
		assert.Equal(t, qs[1].(*core.Choice).Answers, again[1].(*core.Choice).Answers)
	})
}
