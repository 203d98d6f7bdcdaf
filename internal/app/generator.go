package app

import (
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"

	"estate_dashboard/internal/domain"
)

// Ranges of the synthetic listings.
const (
	seedPriceMin   = 100_000
	seedPriceMax   = 1_000_000
	seedRoomsMax   = 10
	seedBathsMax   = 5
	seedSurfaceMin = 50.0
	seedSurfaceMax = 500.0
	seedMaxTags    = 3
)

var (
	DefaultCities    = []string{"Casablanca", "Rabat", "Marrakech", "Tangier", "Agadir"}
	DefaultEquipment = []string{"Balcony", "Elevator", "Garage", "Swimming Pool", "Garden"}
)

var (
	titleAdjectives = []string{"Bright", "Spacious", "Renovated", "Quiet", "Modern", "Charming", "Sunny", "Cosy", "Elegant", "Large"}
	titleKinds      = []string{"apartment", "villa", "studio", "duplex", "riad", "penthouse", "house", "loft"}
	titlePlaces     = []string{"near the medina", "with sea view", "in the city centre", "close to the tramway", "by the park", "in a gated residence", "next to the beach", "on a calm street"}
)

// ListingGenerator produces random listings. It is not safe for concurrent use.
type ListingGenerator struct {
	rnd *rand.Rand
	now func() time.Time
}

func NewListingGenerator(rnd *rand.Rand, now func() time.Time) *ListingGenerator {
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x5eed))
	}
	if now == nil {
		now = time.Now
	}
	return &ListingGenerator{rnd: rnd, now: now}
}

// Next builds one listing referencing one of cityIDs and up to three of equipmentIDs.
func (g *ListingGenerator) Next(cityIDs, equipmentIDs []int64) domain.Listing {
	return domain.Listing{
		Title:        g.title(),
		Price:        float64(seedPriceMin + g.rnd.IntN(seedPriceMax-seedPriceMin+1)),
		OccurredAt:   g.thisYear(),
		RoomCount:    1 + g.rnd.IntN(seedRoomsMax),
		BathCount:    1 + g.rnd.IntN(seedBathsMax),
		SurfaceArea:  math.Round((seedSurfaceMin+g.rnd.Float64()*(seedSurfaceMax-seedSurfaceMin))*100) / 100,
		Link:         "https://listings.example.com/" + uuid.NewString(),
		CityID:       cityIDs[g.rnd.IntN(len(cityIDs))],
		EquipmentIDs: g.pick(equipmentIDs),
	}
}

func (g *ListingGenerator) title() string {
	parts := []string{
		titleAdjectives[g.rnd.IntN(len(titleAdjectives))],
		titleKinds[g.rnd.IntN(len(titleKinds))],
		titlePlaces[g.rnd.IntN(len(titlePlaces))],
	}
	return strings.Join(parts, " ")
}

// thisYear returns a second-precision instant between January 1st and now.
func (g *ListingGenerator) thisYear() time.Time {
	now := g.now().UTC()
	start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	span := now.Sub(start)
	if span <= 0 {
		return start
	}
	return start.Add(time.Duration(g.rnd.Int64N(int64(span)))).Truncate(time.Second)
}

func (g *ListingGenerator) pick(ids []int64) []int64 {
	if len(ids) == 0 {
		return nil
	}
	n := g.rnd.IntN(min(seedMaxTags, len(ids)) + 1)
	out := make([]int64, 0, n)
	for _, i := range g.rnd.Perm(len(ids))[:n] {
		out = append(out, ids[i])
	}
	return out
}
