package domain

import "context"

type ListingRepository interface {
	// Write paths
	EnsureCity(ctx context.Context, name string) (int64, error)
	EnsureEquipment(ctx context.Context, name string) (int64, error)
	InsertListings(ctx context.Context, ls []Listing) error

	// Read paths
	ListCities(ctx context.Context) ([]City, error)
	ListEquipment(ctx context.Context) ([]Equipment, error)
	FilterListings(ctx context.Context, f ListingFilter) ([]ListingRow, error)
	CountByCity(ctx context.Context) ([]CityCount, error)
	EquipmentDistribution(ctx context.Context) ([]EquipmentCount, error)
	TemporalCounts(ctx context.Context) ([]MonthCount, error)
	CountListings(ctx context.Context) (int, error)

	Ping(ctx context.Context) error
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, keys ...string) error
}
