package httpserver

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rs/zerolog/log"

	"estate_dashboard/internal/domain"
)

//go:embed templates/*.html
var templatesFS embed.FS

var pageTmpl = template.Must(template.New("dashboard.html").Funcs(template.FuncMap{
	"price": func(v float64) string { return strconv.FormatFloat(v, 'f', 0, 64) },
	"num":   func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) },
}).ParseFS(templatesFS, "templates/dashboard.html"))

type bar struct {
	Label string
	Count int
	Pct   float64
}

type option struct {
	Name     string
	Selected bool
}

type pageData struct {
	Error      string
	Filter     domain.ListingFilter
	Cities     []option
	Equipment  []option
	View       domain.DashboardView
	ByCity     []bar
	Prices     []bar
	EquipBars  []bar
	Months     []bar
	CSVHref    template.URL
	XLSXHref   template.URL
	PriceFloor int
	PriceCeil  int
}

// bars scales counts to percentages of the largest one.
func bars[T any](items []T, label func(T) string, count func(T) int) []bar {
	peak := 0
	for _, it := range items {
		if c := count(it); c > peak {
			peak = c
		}
	}
	out := make([]bar, 0, len(items))
	for _, it := range items {
		b := bar{Label: label(it), Count: count(it)}
		if peak > 0 {
			b.Pct = 100 * float64(b.Count) / float64(peak)
		}
		out = append(out, b)
	}
	return out
}

// filterQuery re-encodes f so download links export exactly what is shown.
func filterQuery(f domain.ListingFilter) string {
	q := url.Values{}
	q.Set("min_price", strconv.FormatFloat(f.PriceMin, 'f', -1, 64))
	q.Set("max_price", strconv.FormatFloat(f.PriceMax, 'f', -1, 64))
	if f.City != "" {
		q.Set("city", f.City)
	}
	for _, e := range f.EquipmentNames() {
		q.Add("equipment", e)
	}
	return q.Encode()
}

func (h *Handlers) page(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	status := http.StatusOK
	data := pageData{PriceFloor: domain.PriceFloor, PriceCeil: domain.PriceCeiling}

	f, err := parseFilter(r)
	if err != nil {
		status = http.StatusBadRequest
		data.Error = err.Error()
		f = domain.DefaultFilter()
	}
	data.Filter = f
	q := filterQuery(f)
	data.CSVHref = template.URL("/v1/listings/export.csv?" + q)
	data.XLSXHref = template.URL("/v1/listings/export.xlsx?" + q)

	cities, err := h.S.Cities(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	equipment, err := h.S.Equipment(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	data.Cities = append(data.Cities, option{Name: domain.AllCities, Selected: !f.CityRestricted()})
	for _, c := range cities {
		data.Cities = append(data.Cities, option{Name: c.Name, Selected: c.Name == f.City})
	}
	selected := make(map[string]bool)
	for _, e := range f.EquipmentNames() {
		selected[e] = true
	}
	for _, e := range equipment {
		data.Equipment = append(data.Equipment, option{Name: e.Name, Selected: selected[e.Name]})
	}

	v, err := h.S.Dashboard(ctx, f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	data.View = v
	data.ByCity = bars(v.ByCity, func(c domain.CityCount) string { return c.City }, func(c domain.CityCount) int { return c.Count })
	data.EquipBars = bars(v.Equipment, func(e domain.EquipmentCount) string { return e.Equipment }, func(e domain.EquipmentCount) int { return e.Count })
	data.Months = bars(v.Months, func(m domain.MonthCount) string { return m.Month }, func(m domain.MonthCount) int { return m.Count })
	data.Prices = bars(v.Prices.Buckets, func(b domain.Bucket) string {
		return strconv.FormatFloat(b.Lower, 'f', 0, 64) + " – " + strconv.FormatFloat(b.Upper, 'f', 0, 64)
	}, func(b domain.Bucket) int { return b.Count })

	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, data); err != nil {
		log.Error().Err(err).Msg("render dashboard page failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "page could not be rendered")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}
