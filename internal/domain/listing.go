package domain

import (
	"fmt"
	"strings"
	"time"
)

// OccurredAtLayout is how listing timestamps are stored in the text column.
const OccurredAtLayout = "2006-01-02 15:04:05"

type City struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Equipment struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Listing is the write model. EquipmentIDs become listing_equipment rows.
type Listing struct {
	ID           int64
	Title        string
	Price        float64
	OccurredAt   time.Time
	RoomCount    int
	BathCount    int
	SurfaceArea  float64
	Link         string
	CityID       int64
	EquipmentIDs []int64
}

func (l Listing) Validate() error {
	switch {
	case strings.TrimSpace(l.Title) == "":
		return fmt.Errorf("%w: title is required", ErrInvalidListing)
	case l.Price < 0:
		return fmt.Errorf("%w: price must be non-negative", ErrInvalidListing)
	case l.RoomCount < 1:
		return fmt.Errorf("%w: room_count must be positive", ErrInvalidListing)
	case l.BathCount < 1:
		return fmt.Errorf("%w: bath_count must be positive", ErrInvalidListing)
	case l.SurfaceArea <= 0:
		return fmt.Errorf("%w: surface_area must be positive", ErrInvalidListing)
	case l.CityID <= 0:
		return fmt.Errorf("%w: city_id is required", ErrInvalidListing)
	}
	return nil
}

// OccurredAtText formats the timestamp the way it is persisted.
func (l Listing) OccurredAtText() string {
	return l.OccurredAt.UTC().Format(OccurredAtLayout)
}

// ListingRow is one line of the filtered table.
type ListingRow struct {
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Rooms     int     `json:"rooms"`
	Bathrooms int     `json:"bathrooms"`
	Surface   float64 `json:"surface"`
	City      string  `json:"city"`
}
