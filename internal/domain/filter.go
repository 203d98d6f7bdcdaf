package domain

import (
	"fmt"
	"strings"
)

const (
	// AllCities disables the city restriction.
	AllCities = "All"

	PriceFloor      = 0
	PriceCeiling    = 1_000_000
	DefaultPriceMin = 100_000
	DefaultPriceMax = 500_000
)

type ListingFilter struct {
	PriceMin  float64
	PriceMax  float64
	City      string
	Equipment []string
}

func DefaultFilter() ListingFilter {
	return ListingFilter{PriceMin: DefaultPriceMin, PriceMax: DefaultPriceMax, City: AllCities}
}

func (f ListingFilter) Validate() error {
	if f.PriceMin < 0 || f.PriceMax < 0 {
		return fmt.Errorf("%w: price bounds must be non-negative", ErrInvalidFilter)
	}
	if f.PriceMin > f.PriceMax {
		return fmt.Errorf("%w: min price %.0f exceeds max price %.0f", ErrInvalidFilter, f.PriceMin, f.PriceMax)
	}
	return nil
}

// CityRestricted reports whether a single city was selected.
func (f ListingFilter) CityRestricted() bool {
	c := strings.TrimSpace(f.City)
	return c != "" && c != AllCities
}

// EquipmentNames returns the selected names with blanks and duplicates removed.
func (f ListingFilter) EquipmentNames() []string {
	seen := make(map[string]struct{}, len(f.Equipment))
	out := make([]string, 0, len(f.Equipment))
	for _, n := range f.Equipment {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
