package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/aretw0/qtex/internal/platform"
	"github.com/aretw0/qtex/pkg/adapters/archive"
	"github.com/aretw0/qtex/pkg/adapters/moodlexml"
	"github.com/aretw0/qtex/pkg/adapters/tex"
	"github.com/aretw0/qtex/pkg/core"
	"github.com/aretw0/qtex/pkg/grading"
)

type convertResponse struct {
	Document  string            `json:"document"`
	Files     map[string][]byte `json:"files,omitempty"`
	Questions int               `json:"questions"`
	Warnings  []core.Warning    `json:"warnings"`
}

type bankResponse struct {
	Bank      string         `json:"bank"`
	Questions int            `json:"questions"`
	Warnings  []core.Warning `json:"warnings"`
}

// POST /v1/tex2xml (body: .tex, .zip or multipart file=)
// Query: renderengine, gradingscheme, raw=true for a plain XML response.
func TeXToXMLHandler(rt *platform.Runtime) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ov, err := parseOverrides(r)
		if err != nil {
			writeError(w, err)
			return
		}
		bundle, qs, warnings, err := importRequest(rt, w, r, ov)
		if err != nil {
			writeError(w, err)
			return
		}

		codec, err := ov.codec(rt, bundle)
		if err != nil {
			writeError(w, err)
			return
		}
		doc, _, err := rt.Service.Export(codec, qs)
		if err != nil {
			writeError(w, err)
			return
		}

		if isTrue(r.URL.Query().Get("raw")) {
			w.Header().Set("Content-Type", "application/xml; charset=utf-8")
			_, _ = io.WriteString(w, doc)
			return
		}
		writeJSON(w, http.StatusOK, convertResponse{
			Document:  doc,
			Questions: len(qs),
			Warnings:  nonNil(warnings),
		})
	}
}

// POST /v1/xml2tex (body: Moodle XML)
// Query: archive=true for a zip response.
func XMLToTeXHandler(rt *platform.Runtime) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := readBody(w, r)
		if err != nil {
			writeError(w, err)
			return
		}
		qs, warnings, err := rt.Service.Import(rt.XML(), string(data))
		if err != nil {
			writeError(w, err)
			return
		}
		writeTeX(w, rt, "quiz", qs, warnings, isTrue(r.URL.Query().Get("archive")))
	}
}

// GET /v1/banks
func ListBanksHandler(rt *platform.Runtime) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		names, err := rt.Service.Banks(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		if names == nil {
			names = []string{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"banks": names})
	}
}

// GET /v1/banks/{bank}?format=json|xml|tex|zip
func GetBankHandler(rt *platform.Runtime) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bank := chi.URLParam(r, "bank")
		qs, err := rt.Service.Load(r.Context(), bank)
		if err != nil {
			writeError(w, err)
			return
		}

		switch strings.ToLower(r.URL.Query().Get("format")) {
		case "", "json":
			data, err := core.MarshalQuestions(qs)
			if err != nil {
				writeError(w, err)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write(data)
		case "xml":
			doc, _, err := rt.Service.Export(rt.XML(), qs)
			if err != nil {
				writeError(w, err)
				return
			}
			w.Header().Set("Content-Type", "application/xml; charset=utf-8")
			_, _ = io.WriteString(w, doc)
		case "tex":
			writeTeX(w, rt, bank, qs, nil, false)
		case "zip":
			writeTeX(w, rt, bank, qs, nil, true)
		default:
			http.Error(w, "unknown format", http.StatusBadRequest)
		}
	}
}

// POST /v1/banks/{bank} (body: .tex, .zip, multipart file= or Moodle XML)
func StoreBankHandler(rt *platform.Runtime) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bank := chi.URLParam(r, "bank")

		var (
			qs       []core.Question
			warnings []core.Warning
			err      error
		)
		if strings.Contains(r.Header.Get("Content-Type"), "xml") {
			var data []byte
			data, err = readBody(w, r)
			if err == nil {
				qs, warnings, err = rt.Service.Import(rt.XML(), string(data))
			}
		} else {
			var ov overrides
			if ov, err = parseOverrides(r); err == nil {
				_, qs, warnings, err = importRequest(rt, w, r, ov)
			}
		}
		if err != nil {
			writeError(w, err)
			return
		}

		if err := rt.Service.Store(r.Context(), bank, qs); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, bankResponse{Bank: bank, Questions: len(qs), Warnings: nonNil(warnings)})
	}
}

// DELETE /v1/banks/{bank}
func DeleteBankHandler(rt *platform.Runtime) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := rt.Service.Delete(r.Context(), chi.URLParam(r, "bank")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// GET /v1/state
func StateHandler(rt *platform.Runtime) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out := map[string]any{"service": rt.Service.State()}
		if store := rt.Store(); store != nil {
			out[store.ComponentType()] = store.State()
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// importRequest parses an uploaded document or archive with the query
// overrides and returns the bundle it read.
func importRequest(rt *platform.Runtime, w http.ResponseWriter, r *http.Request, ov overrides) (*archive.Bundle, []core.Question, []core.Warning, error) {
	data, err := readBody(w, r)
	if err != nil {
		return nil, nil, nil, err
	}

	bundle := &archive.Bundle{Document: string(data)}
	if bytes.HasPrefix(data, []byte("PK\x03\x04")) {
		bundle, err = rt.Unpack(data)
		if err != nil {
			return nil, nil, nil, err
		}
	}
	qs, warnings, err := rt.ImportBundle(bundle, ov.texOptions()...)
	return bundle, qs, warnings, err
}

// readBody returns the request body, or the multipart field "file".
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		f, _, err := r.FormFile("file")
		if err != nil {
			return nil, errBadRequest("file required")
		}
		defer f.Close()
		return io.ReadAll(f)
	}
	return io.ReadAll(r.Body)
}

// overrides are the renderengine and gradingscheme query parameters.
type overrides struct {
	target core.RenderTarget
	grader core.Grader
}

func parseOverrides(r *http.Request) (overrides, error) {
	var ov overrides
	q := r.URL.Query()
	if v := q.Get("renderengine"); v != "" {
		target, err := core.ParseRenderTarget(v)
		if err != nil {
			return ov, err
		}
		ov.target = target
	}
	if v := q.Get("gradingscheme"); v != "" {
		g, err := grading.Lookup(v)
		if err != nil {
			return ov, err
		}
		ov.grader = g
	}
	return ov, nil
}

// codec grades the XML export like the import: the query scheme wins over the
// bundle parameters, which win over the runtime.
func (ov overrides) codec(rt *platform.Runtime, b *archive.Bundle) (*moodlexml.Codec, error) {
	if ov.grader != nil {
		return rt.XML(moodlexml.WithGrader(ov.grader)), nil
	}
	return rt.XMLFor(b)
}

func (ov overrides) texOptions() []tex.Option {
	var opts []tex.Option
	if ov.target != "" {
		opts = append(opts, tex.WithRenderTarget(ov.target))
	}
	if ov.grader != nil {
		opts = append(opts, tex.WithGrader(ov.grader))
	}
	return opts
}

func writeTeX(w http.ResponseWriter, rt *platform.Runtime, name string, qs []core.Question, warnings []core.Warning, asArchive bool) {
	if asArchive {
		var buf bytes.Buffer
		if err := rt.ExportArchive(&buf, qs); err != nil {
			writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/zip")
		w.Header().Set("Content-Disposition", `attachment; filename="`+name+`.zip"`)
		_, _ = w.Write(buf.Bytes())
		return
	}

	doc, files, err := rt.Service.Export(rt.Serializer(), qs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, convertResponse{
		Document:  doc,
		Files:     files,
		Questions: len(qs),
		Warnings:  nonNil(warnings),
	})
}

func isTrue(s string) bool {
	b, _ := strconv.ParseBool(s)
	return b
}

func nonNil(ws []core.Warning) []core.Warning {
	if ws == nil {
		return []core.Warning{}
	}
	return ws
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errBadRequest string

func (e errBadRequest) Error() string { return string(e) }

// writeError maps domain errors to status codes.
func writeError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	var bad errBadRequest
	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &tooLarge):
		status = http.StatusRequestEntityTooLarge
	case errors.As(err, &bad),
		errors.Is(err, core.ErrUnknownRenderTarget),
		errors.Is(err, core.ErrUnknownGradingScheme):
		status = http.StatusBadRequest
	case errors.Is(err, core.ErrBankNotFound):
		status = http.StatusNotFound
	case errors.Is(err, core.ErrNoBank):
		status = http.StatusNotImplemented
	case errors.Is(err, core.ErrNoBlocks),
		errors.Is(err, core.ErrNoAnswers),
		errors.Is(err, core.ErrNoTrueAnswer),
		errors.Is(err, core.ErrMixedWeights),
		errors.Is(err, core.ErrUnresolvedWeight),
		errors.Is(err, archive.ErrNoDocument),
		errors.Is(err, archive.ErrManyDocuments):
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
