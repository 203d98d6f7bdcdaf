package app

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"estate_dashboard/internal/domain"
)

// Cache keys for the aggregates computed over the whole dataset. Filtered
// results are never cached.
const (
	keyByCity    = "dashboard:by_city"
	keyEquipment = "dashboard:equipment"
	keyMonths    = "dashboard:months"
)

var aggregateKeys = []string{keyByCity, keyEquipment, keyMonths}

// dashboardFanOut bounds the concurrent reads issued for one dashboard view.
const dashboardFanOut = 4

type DashboardService struct {
	repo     domain.ListingRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewDashboardService(r domain.ListingRepository, c domain.Cache, ttl time.Duration) *DashboardService {
	if c == nil {
		c = NopCache{}
	}
	return &DashboardService{repo: r, cache: c, cacheTTL: ttl}
}

func (s *DashboardService) Ping(ctx context.Context) error { return s.repo.Ping(ctx) }

func (s *DashboardService) Cities(ctx context.Context) ([]domain.City, error) {
	cs, err := s.repo.ListCities(ctx)
	if err != nil {
		return nil, fmt.Errorf("list cities: %w", err)
	}
	return cs, nil
}

func (s *DashboardService) Equipment(ctx context.Context) ([]domain.Equipment, error) {
	es, err := s.repo.ListEquipment(ctx)
	if err != nil {
		return nil, fmt.Errorf("list equipment: %w", err)
	}
	return es, nil
}

// FilterListings returns the listings matching f. An unknown city or unknown
// equipment names simply match nothing.
func (s *DashboardService) FilterListings(ctx context.Context, f domain.ListingFilter) ([]domain.ListingRow, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	rows, err := s.repo.FilterListings(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("filter listings: %w", err)
	}
	if rows == nil {
		rows = []domain.ListingRow{}
	}
	return rows, nil
}

func (s *DashboardService) CountByCity(ctx context.Context) ([]domain.CityCount, error) {
	return cached(ctx, s, keyByCity, s.repo.CountByCity)
}

func (s *DashboardService) EquipmentDistribution(ctx context.Context) ([]domain.EquipmentCount, error) {
	return cached(ctx, s, keyEquipment, s.repo.EquipmentDistribution)
}

func (s *DashboardService) TemporalCounts(ctx context.Context) ([]domain.MonthCount, error) {
	return cached(ctx, s, keyMonths, s.repo.TemporalCounts)
}

// Dashboard computes the filtered table and every aggregate for one request.
// The reads are independent, so they run concurrently; the first failure
// cancels the rest.
func (s *DashboardService) Dashboard(ctx context.Context, f domain.ListingFilter) (domain.DashboardView, error) {
	if err := f.Validate(); err != nil {
		return domain.DashboardView{}, err
	}

	view := domain.DashboardView{Filter: f}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(dashboardFanOut)

	g.Go(func() (err error) {
		view.Listings, err = s.FilterListings(gctx, f)
		return err
	})
	g.Go(func() (err error) {
		view.ByCity, err = s.CountByCity(gctx)
		return err
	})
	g.Go(func() (err error) {
		view.Equipment, err = s.EquipmentDistribution(gctx)
		return err
	})
	g.Go(func() (err error) {
		view.Months, err = s.TemporalCounts(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.DashboardView{}, err
	}

	view.Prices = PriceHistogram(view.Listings, DefaultPriceBuckets)
	view.PriceByCity = PriceByCity(view.Listings)
	view.SurfacePrice = SurfaceVsPrice(view.Listings)
	return view, nil
}

// cached serves key from the cache when possible. Cache failures fall back to
// the repository.
func cached[T any](ctx context.Context, s *DashboardService, key string, load func(context.Context) ([]T, error)) ([]T, error) {
	var out []T
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}
	out, err := load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	if out == nil {
		out = []T{}
	}
	_ = s.cache.Set(ctx, key, out, int(s.cacheTTL.Seconds()))
	return out, nil
}

// NopCache never stores anything.
type NopCache struct{}

func (NopCache) Get(context.Context, string, any) (bool, error)   { return false, nil }
func (NopCache) Set(context.Context, string, any, int) error      { return nil }
func (NopCache) Del(context.Context, ...string) error             { return nil }
