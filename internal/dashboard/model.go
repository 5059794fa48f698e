package dashboard

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// ReviewRecord is one restaurant review joined with the restaurant's city.
type ReviewRecord struct {
	RestaurantID   string              `json:"restaurant_id"`
	DateTime       time.Time           `json:"datetime"`
	RatingDelivery decimal.NullDecimal `json:"rating_delivery"`
	RatingFood     decimal.NullDecimal `json:"rating_food"`
	City           string              `json:"location_city"`
}

// Date truncates DateTime to its UTC calendar date.
func (r ReviewRecord) Date() civil.Date {
	return civil.DateOf(r.DateTime.UTC())
}

// CaseRecord is one published daily case total for a municipality.
type CaseRecord struct {
	Municipality  string    `json:"municipality_name"`
	PublishedAt   time.Time `json:"date_of_publication"`
	TotalReported int64     `json:"total_reported"`
}

// Date is the UTC publication date.
func (r CaseRecord) Date() civil.Date {
	return civil.DateOf(r.PublishedAt.UTC())
}

// Observation is a raw row normalized to the aggregation key plus a value.
type Observation struct {
	Date  civil.Date
	City  string
	Value int64
}

// AggregatedCount is one row of a tidy table: the count (or total) for a
// single (date, city) group.
type AggregatedCount struct {
	Date  civil.Date `json:"date"`
	City  string     `json:"city"`
	Value int64      `json:"value"`
}
