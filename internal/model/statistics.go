package model

import (
	"time"
)

// UnitGroup is the derived per-unit, per-cycle view powering the admin
// submission-status table. Recomputed on every request, never persisted.
type UnitGroup struct {
	UnitName     string        `json:"unit_name"`
	Campus       string        `json:"campus"`
	Requests     []ISSPRequest `json:"requests"`
	RequestCount int           `json:"request_count"`
	LastUpdated  time.Time     `json:"last_updated"`
	Status       string        `json:"status"` // derived display label
}

// YearStats holds per-year aggregates inside a price bucket.
type YearStats struct {
	Count      int     `json:"count"`
	TotalValue float64 `json:"total_value"`
}

// PriceBucket is one fixed price range with its aggregates.
// Max is nil for the unbounded top bucket.
type PriceBucket struct {
	Label           string                `json:"label"`
	Min             float64               `json:"min"`
	Max             *float64              `json:"max"`
	Count           int                   `json:"count"`
	TotalValue      float64               `json:"total_value"`
	ByYear          map[string]*YearStats `json:"by_year"`
	Percentage      int                   `json:"percentage"`
	ValuePercentage int                   `json:"value_percentage"`
	AveragePrice    float64               `json:"average_price"`
}

// PriceDistribution aggregates approved line items of one year cycle
// into the five fixed buckets, for the dashboard chart.
type PriceDistribution struct {
	YearCycle    string                `json:"year_cycle"`
	Years        []string              `json:"years"`
	Buckets      []PriceBucket         `json:"buckets"`
	TotalItems   int                   `json:"total_items"`
	TotalValue   float64               `json:"total_value"`
	AveragePrice float64               `json:"average_price"`
	TotalsByYear map[string]*YearStats `json:"totals_by_year"`
}
