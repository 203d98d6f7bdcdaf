package gormstore_test

import (
	"context"
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"estate_dashboard/internal/app"
	"estate_dashboard/internal/domain"
	"estate_dashboard/internal/storage/gormstore"
)

// setupTestDB opens a private in-memory SQLite database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gormstore.Open(context.Background(), gormstore.DriverSQLite, dsn, 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = gormstore.Close(db) })
	return db
}

type fixture struct {
	repo      *gormstore.Repo
	city      map[string]int64
	equipment map[string]int64
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	repo := gormstore.New(setupTestDB(t))
	ctx := context.Background()
	fx := fixture{repo: repo, city: map[string]int64{}, equipment: map[string]int64{}}
	for _, c := range []string{"Rabat", "Agadir", "Tangier"} {
		id, err := repo.EnsureCity(ctx, c)
		require.NoError(t, err)
		fx.city[c] = id
	}
	for _, e := range []string{"Garage", "Garden", "Balcony"} {
		id, err := repo.EnsureEquipment(ctx, e)
		require.NoError(t, err)
		fx.equipment[e] = id
	}
	return fx
}

func (fx fixture) listing(title string, price float64, city string, at time.Time, equipment ...string) domain.Listing {
	l := domain.Listing{
		Title:       title,
		Price:       price,
		OccurredAt:  at,
		RoomCount:   2,
		BathCount:   1,
		SurfaceArea: 80,
		Link:        "https://listings.example.com/" + title,
		CityID:      fx.city[city],
	}
	for _, e := range equipment {
		l.EquipmentIDs = append(l.EquipmentIDs, fx.equipment[e])
	}
	return l
}

func seedKnown(t *testing.T, fx fixture) {
	t.Helper()
	jan := time.Date(2026, time.January, 10, 9, 0, 0, 0, time.UTC)
	mar := time.Date(2026, time.March, 2, 18, 30, 0, 0, time.UTC)
	err := fx.repo.InsertListings(context.Background(), []domain.Listing{
		fx.listing("r-cheap", 120000, "Rabat", jan, "Garage"),
		fx.listing("r-mid", 450000, "Rabat", mar, "Garden", "Balcony"),
		fx.listing("r-pricey", 900000, "Rabat", mar),
		fx.listing("a-mid", 300000, "Agadir", jan, "Garage", "Garden"),
		fx.listing("a-edge", 500000, "Agadir", mar),
	})
	require.NoError(t, err)
}

func titles(rows []domain.ListingRow) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Title)
	}
	return out
}

func TestFilterListings_PriceBoundsInclusive(t *testing.T) {
	fx := newFixture(t)
	seedKnown(t, fx)

	rows, err := fx.repo.FilterListings(context.Background(), domain.ListingFilter{PriceMin: 120000, PriceMax: 500000, City: domain.AllCities})
	require.NoError(t, err)
	assert.Equal(t, []string{"r-cheap", "r-mid", "a-mid", "a-edge"}, titles(rows))
	for _, r := range rows {
		assert.True(t, r.Price >= 120000 && r.Price <= 500000)
	}
}

func TestFilterListings_City(t *testing.T) {
	fx := newFixture(t)
	seedKnown(t, fx)
	ctx := context.Background()

	rows, err := fx.repo.FilterListings(ctx, domain.ListingFilter{PriceMin: 0, PriceMax: 1_000_000, City: "Rabat"})
	require.NoError(t, err)
	assert.Equal(t, []string{"r-cheap", "r-mid", "r-pricey"}, titles(rows))
	for _, r := range rows {
		assert.Equal(t, "Rabat", r.City)
	}

	rows, err = fx.repo.FilterListings(ctx, domain.ListingFilter{PriceMin: 0, PriceMax: 1_000_000, City: "Atlantis"})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestFilterListings_EquipmentIsUnion(t *testing.T) {
	fx := newFixture(t)
	seedKnown(t, fx)
	ctx := context.Background()

	f := domain.ListingFilter{PriceMin: 0, PriceMax: 1_000_000, Equipment: []string{"Garage", "Balcony"}}
	rows, err := fx.repo.FilterListings(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, []string{"r-cheap", "r-mid", "a-mid"}, titles(rows))

	f.Equipment = []string{"Jacuzzi"}
	rows, err = fx.repo.FilterListings(ctx, f)
	require.NoError(t, err)
	assert.Empty(t, rows)

	f.Equipment = []string{"Jacuzzi", "Garden"}
	rows, err = fx.repo.FilterListings(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, []string{"r-mid", "a-mid"}, titles(rows))
}

func TestFilterListings_RowShape(t *testing.T) {
	fx := newFixture(t)
	seedKnown(t, fx)

	rows, err := fx.repo.FilterListings(context.Background(), domain.ListingFilter{PriceMin: 300000, PriceMax: 300000, City: "Agadir"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, domain.ListingRow{Title: "a-mid", Price: 300000, Rooms: 2, Bathrooms: 1, Surface: 80, City: "Agadir"}, rows[0])
}

func TestAggregates(t *testing.T) {
	fx := newFixture(t)
	seedKnown(t, fx)
	ctx := context.Background()

	byCity, err := fx.repo.CountByCity(ctx)
	require.NoError(t, err)
	// Tangier has no listing, so it is absent
	assert.Equal(t, []domain.CityCount{{City: "Agadir", Count: 2}, {City: "Rabat", Count: 3}}, byCity)

	dist, err := fx.repo.EquipmentDistribution(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.EquipmentCount{
		{Equipment: "Balcony", Count: 1},
		{Equipment: "Garage", Count: 2},
		{Equipment: "Garden", Count: 2},
	}, dist)

	months, err := fx.repo.TemporalCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.MonthCount{{Month: "2026-01", Count: 2}, {Month: "2026-03", Count: 3}}, months)
}

func TestReferenceLists(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	cities, err := fx.repo.ListCities(ctx)
	require.NoError(t, err)
	require.Len(t, cities, 3)
	assert.Equal(t, "Agadir", cities[0].Name)
	assert.Equal(t, fx.city["Agadir"], cities[0].ID)

	eq, err := fx.repo.ListEquipment(ctx)
	require.NoError(t, err)
	assert.Len(t, eq, 3)
}

func TestEnsure_IsIdempotent(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	id, err := fx.repo.EnsureCity(ctx, "Rabat")
	require.NoError(t, err)
	assert.Equal(t, fx.city["Rabat"], id)

	id, err = fx.repo.EnsureEquipment(ctx, "Garage")
	require.NoError(t, err)
	assert.Equal(t, fx.equipment["Garage"], id)

	cities, _ := fx.repo.ListCities(ctx)
	assert.Len(t, cities, 3)
}

func TestInsertListings_UnknownCityRollsBack(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	good := fx.listing("ok", 1, "Rabat", time.Now())
	bad := good
	bad.Title, bad.CityID = "orphan", 9999

	assert.Error(t, fx.repo.InsertListings(ctx, []domain.Listing{good, bad}))
	n, err := fx.repo.CountListings(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

// The end-to-end scenario: five cities, five equipment, 100 listings, then a
// Rabat filter that must agree with a direct count.
func TestSeededScenario(t *testing.T) {
	db := setupTestDB(t)
	repo := gormstore.New(db)
	ctx := context.Background()

	now := time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC)
	gen := app.NewListingGenerator(rand.New(rand.NewPCG(11, 12)), func() time.Time { return now })
	seeder := app.NewSeedService(repo, nil, gen)

	n, err := seeder.Seed(ctx, app.DefaultCities, app.DefaultEquipment, 100)
	require.NoError(t, err)
	require.Equal(t, 100, n)

	_, err = seeder.Seed(ctx, app.DefaultCities, app.DefaultEquipment, 0)
	require.NoError(t, err)
	cities, _ := repo.ListCities(ctx)
	assert.Len(t, cities, 5)

	f := domain.ListingFilter{PriceMin: 100000, PriceMax: 500000, City: "Rabat"}
	rows, err := repo.FilterListings(ctx, f)
	require.NoError(t, err)
	for _, r := range rows {
		assert.Equal(t, "Rabat", r.City)
		assert.LessOrEqual(t, r.Price, 500000.0)
	}

	var direct int64
	require.NoError(t, db.Table("listing AS l").
		Joins("JOIN city c ON c.id = l.city_id").
		Where("c.name = ? AND l.price BETWEEN ? AND ?", "Rabat", 100000, 500000).
		Count(&direct).Error)
	assert.Equal(t, int(direct), len(rows))

	total, err := repo.CountListings(ctx)
	require.NoError(t, err)

	byCity, err := repo.CountByCity(ctx)
	require.NoError(t, err)
	sum := 0
	for _, c := range byCity {
		sum += c.Count
	}
	assert.Equal(t, total, sum)

	months, err := repo.TemporalCounts(ctx)
	require.NoError(t, err)
	sum = 0
	for i, m := range months {
		if i > 0 {
			assert.Less(t, months[i-1].Month, m.Month)
		}
		sum += m.Count
	}
	assert.Equal(t, total, sum)

	dist, err := repo.EquipmentDistribution(ctx)
	require.NoError(t, err)
	for _, e := range dist {
		var joins int64
		require.NoError(t, db.Table("listing_equipment AS le").
			Joins("JOIN equipment e ON e.id = le.equipment_id").
			Where("e.name = ?", e.Equipment).
			Count(&joins).Error)
		assert.Equal(t, int(joins), e.Count, e.Equipment)
	}

	// listings are appended, never replaced
	_, err = seeder.Seed(ctx, app.DefaultCities, app.DefaultEquipment, 100)
	require.NoError(t, err)
	after, _ := repo.CountListings(ctx)
	assert.Equal(t, total+100, after)
}
