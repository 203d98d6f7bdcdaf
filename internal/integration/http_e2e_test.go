//go:build integration || !unit

package integration

import (
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	server "estate_dashboard/internal/adapters/http_server"
	redisad "estate_dashboard/internal/adapters/redis"
	"estate_dashboard/internal/app"
	"estate_dashboard/internal/domain"
	"estate_dashboard/internal/shared"
	"estate_dashboard/internal/storage"
)

// ---------- helpers ----------

func startMySQL(t *testing.T) string {
	t.Helper()
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("dockertest: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("docker not reachable: %v", err)
	}
	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=real_estate",
		},
	}
	resource, err := pool.RunWithOptions(runOpts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	dsn := fmt.Sprintf("root:root@tcp(127.0.0.1:%s)/real_estate?parseTime=true&charset=utf8mb4,utf8&loc=UTC",
		resource.GetPort("3306/tcp"))

	// wait for the server to accept connections before handing out the DSN
	if err := pool.Retry(func() error {
		db, e := sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		defer db.Close()
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	return dsn
}

func getJSON(t *testing.T, url string, dst any) {
	t.Helper()
	res, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("GET %s: status %d", url, res.StatusCode)
	}
	if err := json.NewDecoder(res.Body).Decode(dst); err != nil {
		t.Fatalf("decode %s: %v", url, err)
	}
}

func sumCities(cs []domain.CityCount) int {
	n := 0
	for _, c := range cs {
		n += c.Count
	}
	return n
}

// ---------- the test ----------

func TestHTTP_EndToEnd_SeedFilterExport(t *testing.T) {
	dsn := startMySQL(t)
	ctx := context.Background()

	st, err := storage.Open(ctx, shared.Config{DBDriver: shared.DriverMySQL, DatabaseURL: dsn, DBMaxOpen: 4})
	if err != nil {
		t.Fatalf("storage.Open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	mr := miniredis.RunT(t)
	cache := redisad.New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = cache.Close() })

	now := time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC)
	gen := app.NewListingGenerator(rand.New(rand.NewPCG(7, 8)), func() time.Time { return now })
	seeder := app.NewSeedService(st.Repo, cache, gen)
	if _, err := seeder.Seed(ctx, app.DefaultCities, app.DefaultEquipment, 100); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	srv := server.New(server.Options{ExportRPS: 100})
	srv.MountHandlers(&server.Handlers{S: app.NewDashboardService(st.Repo, cache, time.Minute)})
	ts := httptest.NewServer(srv.Mux())
	defer ts.Close()

	// Rabat between 100k and 500k
	var listings struct {
		Count int                 `json:"count"`
		Items []domain.ListingRow `json:"items"`
	}
	getJSON(t, ts.URL+"/v1/listings?city=Rabat&min_price=100000&max_price=500000", &listings)
	for _, it := range listings.Items {
		if it.City != "Rabat" || it.Price < 100000 || it.Price > 500000 {
			t.Fatalf("row escapes filter: %+v", it)
		}
	}

	res, err := http.Get(ts.URL + "/v1/listings/export.csv?city=Rabat&min_price=100000&max_price=500000")
	if err != nil {
		t.Fatalf("GET export: %v", err)
	}
	recs, err := csv.NewReader(res.Body).ReadAll()
	res.Body.Close()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(recs) != listings.Count+1 {
		t.Fatalf("csv has %d records, want header + %d", len(recs), listings.Count)
	}

	// aggregates are cached, and the seeder invalidates them
	var byCity []domain.CityCount
	getJSON(t, ts.URL+"/v1/stats/cities", &byCity)
	if got := sumCities(byCity); got != 100 {
		t.Fatalf("city counts sum to %d, want 100", got)
	}
	if !mr.Exists("dashboard:by_city") {
		t.Fatalf("expected by-city aggregate in cache")
	}

	if _, err := seeder.Seed(ctx, app.DefaultCities, app.DefaultEquipment, 100); err != nil {
		t.Fatalf("Seed again: %v", err)
	}
	getJSON(t, ts.URL+"/v1/stats/cities", &byCity)
	if got := sumCities(byCity); got != 200 {
		t.Fatalf("after reseed city counts sum to %d, want 200", got)
	}

	var cities []domain.City
	getJSON(t, ts.URL+"/v1/cities", &cities)
	if len(cities) != len(app.DefaultCities) {
		t.Fatalf("expected %d cities, got %d", len(app.DefaultCities), len(cities))
	}
}
