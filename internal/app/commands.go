package app

import (
	"context"
	"errors"
	"fmt"

	"estate_dashboard/internal/domain"
)

// insertBatchSize caps how many listings go into one InsertListings call.
const insertBatchSize = 50

var ErrNoCities = errors.New("seed: no cities to attach listings to")

type SeedService struct {
	repo  domain.ListingRepository
	cache domain.Cache
	gen   *ListingGenerator
}

func NewSeedService(r domain.ListingRepository, cache domain.Cache, gen *ListingGenerator) *SeedService {
	if cache == nil {
		cache = NopCache{}
	}
	if gen == nil {
		gen = NewListingGenerator(nil, nil)
	}
	return &SeedService{repo: r, cache: cache, gen: gen}
}

// Reference holds the ids of the seeded reference rows.
type Reference struct {
	CityIDs      []int64
	EquipmentIDs []int64
}

// SeedReference inserts every missing city and equipment name. Running it
// again is a no-op apart from returning the existing ids.
func (s *SeedService) SeedReference(ctx context.Context, cities, equipment []string) (Reference, error) {
	var ref Reference
	for _, name := range cities {
		id, err := s.repo.EnsureCity(ctx, name)
		if err != nil {
			return Reference{}, fmt.Errorf("ensure city %q: %w", name, err)
		}
		ref.CityIDs = append(ref.CityIDs, id)
	}
	for _, name := range equipment {
		id, err := s.repo.EnsureEquipment(ctx, name)
		if err != nil {
			return Reference{}, fmt.Errorf("ensure equipment %q: %w", name, err)
		}
		ref.EquipmentIDs = append(ref.EquipmentIDs, id)
	}
	return ref, nil
}

// SeedListings appends n synthetic listings in batches of insertBatchSize,
// one transaction per batch. City ids come only from ref, so every listing
// points at an existing city. When a later batch fails, the batches already
// committed stay and the count of inserted rows is returned with the error.
func (s *SeedService) SeedListings(ctx context.Context, ref Reference, n int) (inserted int, err error) {
	if n <= 0 {
		return 0, nil
	}
	if len(ref.CityIDs) == 0 {
		return 0, ErrNoCities
	}

	// Aggregates over the whole dataset change as soon as one batch commits.
	defer func() {
		if inserted > 0 {
			_ = s.cache.Del(context.WithoutCancel(ctx), aggregateKeys...)
		}
	}()

	batch := make([]domain.Listing, 0, min(n, insertBatchSize))
	for inserted < n {
		batch = batch[:0]
		for len(batch) < insertBatchSize && inserted+len(batch) < n {
			l := s.gen.Next(ref.CityIDs, ref.EquipmentIDs)
			if err := l.Validate(); err != nil {
				return inserted, err
			}
			batch = append(batch, l)
		}
		if err := s.repo.InsertListings(ctx, batch); err != nil {
			return inserted, fmt.Errorf("insert listings after %d rows: %w", inserted, err)
		}
		inserted += len(batch)
	}
	return inserted, nil
}

// Seed runs SeedReference followed by SeedListings.
func (s *SeedService) Seed(ctx context.Context, cities, equipment []string, n int) (int, error) {
	ref, err := s.SeedReference(ctx, cities, equipment)
	if err != nil {
		return 0, err
	}
	return s.SeedListings(ctx, ref, n)
}
