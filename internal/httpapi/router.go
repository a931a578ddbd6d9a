// Package httpapi exposes the converters and the question bank over HTTP.
package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/aretw0/qtex/internal/platform"
)

// MaxUploadSize bounds request bodies.
const MaxUploadSize = 32 << 20

// Options configures the router.
type Options struct {
	AllowedOrigins []string
	Timeout        time.Duration
}

// NewRouter mounts every route on a chi router.
func NewRouter(rt *platform.Runtime, opts Options) http.Handler {
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  slog.NewLogLogger(rt.Logger.Handler(), slog.LevelDebug),
		NoColor: true,
	}))
	r.Use(middleware.Timeout(opts.Timeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"Content-Length", "Content-Disposition"},
		MaxAge:         300,
	}))

	r.Route("/v1", func(v chi.Router) {
		v.Post("/tex2xml", TeXToXMLHandler(rt))
		v.Post("/xml2tex", XMLToTeXHandler(rt))

		v.Get("/banks", ListBanksHandler(rt))
		v.Get("/banks/{bank}", GetBankHandler(rt))
		v.Post("/banks/{bank}", StoreBankHandler(rt))
		v.Delete("/banks/{bank}", DeleteBankHandler(rt))

		v.Get("/state", StateHandler(rt))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	return r
}
