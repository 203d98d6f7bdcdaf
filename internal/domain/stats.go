package domain

// Aggregate read models returned by the dashboard.

type CityCount struct {
	City  string `json:"city"`
	Count int    `json:"count"`
}

type EquipmentCount struct {
	Equipment string `json:"equipment"`
	Count     int    `json:"count"`
}

// MonthCount holds a calendar month as YYYY-MM.
type MonthCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

type Bucket struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

type Histogram struct {
	Min     float64  `json:"min"`
	Max     float64  `json:"max"`
	Buckets []Bucket `json:"buckets"`
}

// CitySummary is the five-number summary of one city's prices.
type CitySummary struct {
	City   string  `json:"city"`
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
}

type ScatterPoint struct {
	Surface   float64 `json:"surface"`
	Price     float64 `json:"price"`
	City      string  `json:"city"`
	Rooms     int     `json:"rooms"`
	Bathrooms int     `json:"bathrooms"`
}

// DashboardView is everything one interaction renders.
type DashboardView struct {
	Filter       ListingFilter    `json:"-"`
	Listings     []ListingRow     `json:"listings"`
	ByCity       []CityCount      `json:"by_city"`
	Prices       Histogram        `json:"prices"`
	PriceByCity  []CitySummary    `json:"price_by_city"`
	Equipment    []EquipmentCount `json:"equipment"`
	Months       []MonthCount     `json:"months"`
	SurfacePrice []ScatterPoint   `json:"surface_price"`
}
