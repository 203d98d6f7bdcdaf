// internal/adapters/http_server/handlers.go
package httpserver

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"estate_dashboard/internal/app"
	"estate_dashboard/internal/domain"
)

// Service is the part of the dashboard engine the handlers depend on.
type Service interface {
	Ping(ctx context.Context) error
	Cities(ctx context.Context) ([]domain.City, error)
	Equipment(ctx context.Context) ([]domain.Equipment, error)
	FilterListings(ctx context.Context, f domain.ListingFilter) ([]domain.ListingRow, error)
	CountByCity(ctx context.Context) ([]domain.CityCount, error)
	EquipmentDistribution(ctx context.Context) ([]domain.EquipmentCount, error)
	TemporalCounts(ctx context.Context) ([]domain.MonthCount, error)
	Dashboard(ctx context.Context, f domain.ListingFilter) (domain.DashboardView, error)
}

const maxHistogramBins = 100

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type Handlers struct {
	S Service
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

type listingsResponse struct {
	Count int                 `json:"count"`
	Items []domain.ListingRow `json:"items"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/readyz", h.ready)
	s.mux.Get("/", h.page)

	s.mux.Route("/v1", func(r chi.Router) {
		r.Get("/cities", h.cities)
		r.Get("/equipment", h.equipment)
		r.Get("/listings", h.listings)
		r.Get("/stats/cities", h.statsCities)
		r.Get("/stats/prices", h.statsPrices)
		r.Get("/stats/prices/by-city", h.statsPricesByCity)
		r.Get("/stats/equipment", h.statsEquipment)
		r.Get("/stats/months", h.statsMonths)
		r.Get("/stats/surface-price", h.statsSurfacePrice)
		r.Get("/dashboard", h.dashboard)

		r.Group(func(r chi.Router) {
			r.Use(s.exports.Middleware)
			r.Get("/listings/export.csv", h.exportCSV)
			r.Get("/listings/export.xlsx", h.exportXLSX)
		})
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps engine errors onto problem responses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidFilter):
		writeProblem(w, http.StatusBadRequest, "Invalid filter", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error())
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "the request could not be completed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// writeJSON sends v with a weak ETag, or 304 when the client already has it.
func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if body == nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "response could not be encoded")
		return
	}
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("failed to write body")
	}
}

// parseFilter reads min_price, max_price, city and repeated equipment
// parameters. Missing values take the dashboard defaults.
func parseFilter(r *http.Request) (domain.ListingFilter, error) {
	q := r.URL.Query()
	f := domain.DefaultFilter()

	price := func(key string, dst *float64) error {
		v := strings.TrimSpace(q.Get(key))
		if v == "" {
			return nil
		}
		p, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(p) {
			return fmt.Errorf("%w: %s must be a number", domain.ErrInvalidFilter, key)
		}
		if p < domain.PriceFloor || p > domain.PriceCeiling {
			return fmt.Errorf("%w: %s must be between %d and %d", domain.ErrInvalidFilter, key, domain.PriceFloor, domain.PriceCeiling)
		}
		*dst = p
		return nil
	}
	if err := price("min_price", &f.PriceMin); err != nil {
		return f, err
	}
	if err := price("max_price", &f.PriceMax); err != nil {
		return f, err
	}
	if c := strings.TrimSpace(q.Get("city")); c != "" {
		f.City = c
	}
	for _, e := range q["equipment"] {
		if e = strings.TrimSpace(e); e != "" {
			f.Equipment = append(f.Equipment, e)
		}
	}
	return f, f.Validate()
}

func (h *Handlers) ready(w http.ResponseWriter, r *http.Request) {
	if err := h.S.Ping(r.Context()); err != nil {
		log.Warn().Err(err).Msg("readiness check failed")
		writeProblem(w, http.StatusServiceUnavailable, "Service Unavailable", "database not reachable")
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (h *Handlers) cities(w http.ResponseWriter, r *http.Request) {
	out, err := h.S.Cities(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, out)
}

func (h *Handlers) equipment(w http.ResponseWriter, r *http.Request) {
	out, err := h.S.Equipment(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, out)
}

// filtered parses the request filter and runs it, writing the problem
// response itself on failure.
func (h *Handlers) filtered(w http.ResponseWriter, r *http.Request) ([]domain.ListingRow, bool) {
	f, err := parseFilter(r)
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	rows, err := h.S.FilterListings(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	return rows, true
}

func (h *Handlers) listings(w http.ResponseWriter, r *http.Request) {
	rows, ok := h.filtered(w, r)
	if !ok {
		return
	}
	writeJSON(w, r, listingsResponse{Count: len(rows), Items: rows})
}

func (h *Handlers) exportCSV(w http.ResponseWriter, r *http.Request) {
	rows, ok := h.filtered(w, r)
	if !ok {
		return
	}
	b, err := app.ExportCSV(rows)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeAttachment(w, r, contentTypeCSV, app.CSVFileName, b)
}

func (h *Handlers) exportXLSX(w http.ResponseWriter, r *http.Request) {
	rows, ok := h.filtered(w, r)
	if !ok {
		return
	}
	b, err := app.ExportXLSX(rows)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeAttachment(w, r, contentTypeXLSX, app.XLSXFileName, b)
}

func writeAttachment(w http.ResponseWriter, r *http.Request, contentType, name string, b []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	w.Header().Set("Content-Length", strconv.Itoa(len(b)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(b); err != nil {
		log.Error().Err(err).Str("file", name).Msg("failed to write export")
	}
}

func (h *Handlers) statsCities(w http.ResponseWriter, r *http.Request) {
	out, err := h.S.CountByCity(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, out)
}

func (h *Handlers) statsPrices(w http.ResponseWriter, r *http.Request) {
	bins := app.DefaultPriceBuckets
	if v := r.URL.Query().Get("bins"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxHistogramBins {
			writeProblem(w, http.StatusBadRequest, "Invalid bins", fmt.Sprintf("bins must be an integer between 1 and %d", maxHistogramBins))
			return
		}
		bins = n
	}
	rows, ok := h.filtered(w, r)
	if !ok {
		return
	}
	writeJSON(w, r, app.PriceHistogram(rows, bins))
}

func (h *Handlers) statsPricesByCity(w http.ResponseWriter, r *http.Request) {
	rows, ok := h.filtered(w, r)
	if !ok {
		return
	}
	writeJSON(w, r, app.PriceByCity(rows))
}

func (h *Handlers) statsEquipment(w http.ResponseWriter, r *http.Request) {
	out, err := h.S.EquipmentDistribution(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, out)
}

func (h *Handlers) statsMonths(w http.ResponseWriter, r *http.Request) {
	out, err := h.S.TemporalCounts(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, out)
}

func (h *Handlers) statsSurfacePrice(w http.ResponseWriter, r *http.Request) {
	rows, ok := h.filtered(w, r)
	if !ok {
		return
	}
	writeJSON(w, r, app.SurfaceVsPrice(rows))
}

func (h *Handlers) dashboard(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	v, err := h.S.Dashboard(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, v)
}
