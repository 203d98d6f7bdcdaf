package app

import (
	"math"
	"sort"

	"estate_dashboard/internal/domain"
)

// DefaultPriceBuckets matches the bin count of the price distribution chart.
const DefaultPriceBuckets = 20

// PriceHistogram splits the prices of rows into bucketCount equal-width buckets
// between the smallest and largest observed price. The last bucket is closed on
// the right so the maximum is always counted.
func PriceHistogram(rows []domain.ListingRow, bucketCount int) domain.Histogram {
	if len(rows) == 0 {
		return domain.Histogram{Buckets: []domain.Bucket{}}
	}
	if bucketCount <= 0 {
		bucketCount = DefaultPriceBuckets
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, r := range rows {
		lo = math.Min(lo, r.Price)
		hi = math.Max(hi, r.Price)
	}

	h := domain.Histogram{Min: lo, Max: hi}
	if lo == hi {
		h.Buckets = []domain.Bucket{{Lower: lo, Upper: hi, Count: len(rows)}}
		return h
	}

	width := (hi - lo) / float64(bucketCount)
	h.Buckets = make([]domain.Bucket, bucketCount)
	for i := range h.Buckets {
		h.Buckets[i].Lower = lo + float64(i)*width
		h.Buckets[i].Upper = lo + float64(i+1)*width
	}
	h.Buckets[bucketCount-1].Upper = hi

	for _, r := range rows {
		idx := int((r.Price - lo) / width)
		if idx >= bucketCount {
			idx = bucketCount - 1
		}
		h.Buckets[idx].Count++
	}
	return h
}

// PriceByCity returns the five-number summary of prices for every city present
// in rows, ordered by city name.
func PriceByCity(rows []domain.ListingRow) []domain.CitySummary {
	byCity := map[string][]float64{}
	for _, r := range rows {
		byCity[r.City] = append(byCity[r.City], r.Price)
	}

	out := make([]domain.CitySummary, 0, len(byCity))
	for city, prices := range byCity {
		sort.Float64s(prices)
		out = append(out, domain.CitySummary{
			City:   city,
			Count:  len(prices),
			Min:    prices[0],
			Q1:     quantile(prices, 0.25),
			Median: quantile(prices, 0.5),
			Q3:     quantile(prices, 0.75),
			Max:    prices[len(prices)-1],
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].City < out[j].City })
	return out
}

// quantile interpolates linearly between the closest ranks of a sorted slice.
func quantile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

func SurfaceVsPrice(rows []domain.ListingRow) []domain.ScatterPoint {
	out := make([]domain.ScatterPoint, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.ScatterPoint{
			Surface:   r.Surface,
			Price:     r.Price,
			City:      r.City,
			Rooms:     r.Rooms,
			Bathrooms: r.Bathrooms,
		})
	}
	return out
}
