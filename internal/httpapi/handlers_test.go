package httpapi_test

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/qtex/internal/httpapi"
	"github.com/aretw0/qtex/internal/platform"
)

const quiz = `\begin{document}
\question{Capital of France?}
\true{Paris}
\false{Rome}
\explanation{Geography.}
\end{document}`

const threeAnswers = `\begin{document}
\question{Largest planet?}
\true{Jupiter}
\false{Mars}
\false{Venus}
\end{document}`

type convertBody struct {
	Document  string            `json:"document"`
	Files     map[string][]byte `json:"files"`
	Questions int               `json:"questions"`
	Warnings  []struct {
		Code string `json:"code"`
	} `json:"warnings"`
}

func newServer(t *testing.T, opts ...platform.Option) *httptest.Server {
	t.Helper()
	rt, err := platform.New(context.Background(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rt.Close() })

	srv := httptest.NewServer(httpapi.NewRouter(rt, httpapi.Options{}))
	t.Cleanup(srv.Close)
	return srv
}

func withBank(t *testing.T) platform.Option {
	return platform.WithStore("sqlite", "file:"+filepath.Join(t.TempDir(), "bank.db"))
}

func zipOf(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		f, err := zw.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func post(t *testing.T, url, contentType string, body []byte) *http.Response {
	t.Helper()
	resp, err := http.Post(url, contentType, bytes.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestTeXToXML(t *testing.T) {
	srv := newServer(t)

	t.Run("Plain document", func(t *testing.T) {
		resp := post(t, srv.URL+"/v1/tex2xml", "text/x-tex", []byte(quiz))
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body convertBody
		decode(t, resp, &body)
		assert.Equal(t, 2, body.Questions)
		assert.Empty(t, body.Warnings)
		assert.Contains(t, body.Document, `<question type="multichoice">`)
		assert.Contains(t, body.Document, `fraction="100"`)
		assert.Contains(t, body.Document, "Geography.")
	})

	t.Run("Raw XML and scheme override", func(t *testing.T) {
		resp := post(t, srv.URL+"/v1/tex2xml?raw=true&gradingscheme=akveld-exam", "text/plain", []byte(quiz))
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, resp.Header.Get("Content-Type"), "application/xml")

		var buf bytes.Buffer
		_, _ = buf.ReadFrom(resp.Body)
		assert.Contains(t, buf.String(), `fraction="-100"`)
	})

	t.Run("Zip upload with image", func(t *testing.T) {
		doc := `\begin{document}
\question{Which shape? \includegraphics{circle}}
\true{Circle}
\false{Square}
\end{document}`
		data := zipOf(t, map[string]string{
			"exam/quiz.tex":   doc,
			"exam/circle.png": "\x89PNG",
		})

		resp := post(t, srv.URL+"/v1/tex2xml", "application/zip", data)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body convertBody
		decode(t, resp, &body)
		assert.Empty(t, body.Warnings)
		assert.Contains(t, body.Document, `<file name="circle"`)
	})

	t.Run("Zip parameters grade the export", func(t *testing.T) {
		data := zipOf(t, map[string]string{
			"quiz.tex":    threeAnswers,
			"params.json": `{"gradingscheme":"akveld"}`,
		})

		resp := post(t, srv.URL+"/v1/tex2xml?raw=true", "application/zip", data)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(resp.Body)
		assert.Contains(t, buf.String(), `fraction="-25"`)
		assert.Contains(t, buf.String(), "<defaultgrade>2</defaultgrade>")
	})

	t.Run("Query scheme beats zip parameters", func(t *testing.T) {
		data := zipOf(t, map[string]string{
			"quiz.tex":    threeAnswers,
			"params.json": `{"gradingscheme":"akveld"}`,
		})

		resp := post(t, srv.URL+"/v1/tex2xml?raw=true&gradingscheme=akveld-exam", "application/zip", data)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(resp.Body)
		assert.Contains(t, buf.String(), `fraction="-100"`)
		assert.Contains(t, buf.String(), "<defaultgrade>1</defaultgrade>")
	})

	t.Run("Multipart upload", func(t *testing.T) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		fw, err := mw.CreateFormFile("file", "quiz.tex")
		require.NoError(t, err)
		_, _ = fw.Write([]byte(quiz))
		require.NoError(t, mw.Close())

		resp := post(t, srv.URL+"/v1/tex2xml", mw.FormDataContentType(), buf.Bytes())
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("Errors", func(t *testing.T) {
		resp := post(t, srv.URL+"/v1/tex2xml?renderengine=latex2html", "text/plain", []byte(quiz))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		resp = post(t, srv.URL+"/v1/tex2xml", "text/plain", []byte(`\question{Q}`))
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})
}

func TestXMLToTeX(t *testing.T) {
	srv := newServer(t)

	resp := post(t, srv.URL+"/v1/tex2xml?raw=true", "text/plain", []byte(quiz))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var xml bytes.Buffer
	_, _ = xml.ReadFrom(resp.Body)

	t.Run("Document", func(t *testing.T) {
		resp := post(t, srv.URL+"/v1/xml2tex", "application/xml", xml.Bytes())
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body convertBody
		decode(t, resp, &body)
		assert.Contains(t, body.Document, `\true{Paris}`)
		assert.Contains(t, body.Document, `\explanation{Geography.}`)
	})

	t.Run("Archive", func(t *testing.T) {
		resp := post(t, srv.URL+"/v1/xml2tex?archive=true", "application/xml", xml.Bytes())
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/zip", resp.Header.Get("Content-Type"))

		var buf bytes.Buffer
		_, _ = buf.ReadFrom(resp.Body)
		zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
		require.NoError(t, err)
		require.NotEmpty(t, zr.File)
		assert.Equal(t, "MoodleQuiz.tex", zr.File[0].Name)
	})

	t.Run("Malformed XML", func(t *testing.T) {
		resp := post(t, srv.URL+"/v1/xml2tex", "application/xml", []byte("<quiz>"))
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	})
}

func TestBanks(t *testing.T) {
	srv := newServer(t, withBank(t))

	resp := post(t, srv.URL+"/v1/banks/geo", "text/plain", []byte(quiz))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err := http.Get(srv.URL + "/v1/banks")
	require.NoError(t, err)
	defer resp.Body.Close()
	var list struct {
		Banks []string `json:"banks"`
	}
	decode(t, resp, &list)
	assert.Equal(t, []string{"geo"}, list.Banks)

	for format, want := range map[string]string{
		"json": `"kind":"multichoice"`,
		"xml":  `<question type="category">`,
		"tex":  `\\question`,
	} {
		t.Run("Get as "+format, func(t *testing.T) {
			resp, err := http.Get(srv.URL + "/v1/banks/geo?format=" + format)
			require.NoError(t, err)
			defer resp.Body.Close()
			require.Equal(t, http.StatusOK, resp.StatusCode)
			var buf bytes.Buffer
			_, _ = buf.ReadFrom(resp.Body)
			assert.True(t, strings.Contains(buf.String(), want), buf.String())
		})
	}

	t.Run("Missing bank", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/v1/banks/nope")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("Delete", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/v1/banks/geo", nil)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)

		resp2, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp2.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp2.StatusCode)
	})
}

func TestBanks_NotConfigured(t *testing.T) {
	srv := newServer(t)

	resp, err := http.Get(srv.URL + "/v1/banks")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)
}

func TestHealthAndState(t *testing.T) {
	srv := newServer(t, withBank(t))

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/v1/state")
	require.NoError(t, err)
	defer resp.Body.Close()
	var state map[string]json.RawMessage
	decode(t, resp, &state)
	assert.Contains(t, state, "service")
	assert.Contains(t, state, "sqlstore")
}
