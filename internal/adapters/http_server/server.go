package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

const (
	defaultRequestTimeout = 15 * time.Second
	defaultExportRPS      = 2
)

// Options tunes the dashboard server. Zero values take the defaults.
type Options struct {
	// RequestTimeout bounds every handler, exports included.
	RequestTimeout time.Duration
	// ExportRPS caps CSV/XLSX downloads per connecting peer.
	ExportRPS float64
}

// Server is the dashboard HTTP surface: the middleware chain plus the export
// limiter shared by every mounted handler set.
type Server struct {
	mux     *chi.Mux
	exports *IPRateLimiter
}

func New(opts Options) *Server {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = defaultRequestTimeout
	}
	if opts.ExportRPS <= 0 {
		opts.ExportRPS = defaultExportRPS
	}

	m := chi.NewRouter()
	// PeerAddr runs before RealIP so the limiter sees the socket, not headers.
	m.Use(PeerAddr)
	m.Use(chimw.RealIP)
	m.Use(chimw.RequestID)
	m.Use(chimw.Recoverer)
	m.Use(Timeout(opts.RequestTimeout))
	m.Use(Metrics)
	m.Use(Logger(log.Logger))

	return &Server{mux: m, exports: NewIPRateLimiter(opts.ExportRPS)}
}

func (s *Server) Mux() http.Handler { return s.mux }

// Mount attaches an extra handler such as /metrics to the router.
func (s *Server) Mount(path string, h http.Handler) {
	s.mux.Handle(path, h)
}
