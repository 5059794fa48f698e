package dashboard

import (
	"slices"
	"strings"

	"cloud.google.com/go/civil"
)

// AggFunc selects how observations in a (date, city) group are combined.
type AggFunc string

const (
	AggCount AggFunc = "count"
	AggSum   AggFunc = "sum"
)

func (f AggFunc) Valid() bool {
	return f == AggCount || f == AggSum
}

type groupKey struct {
	date civil.Date
	city string
}

// Aggregate groups observations by (date, city) and either counts the rows
// or sums their values. Output is ordered by date then city. Groups with no
// observations do not appear.
func Aggregate(obs []Observation, fn AggFunc) []AggregatedCount {
	index := make(map[groupKey]int, len(obs))
	out := make([]AggregatedCount, 0)

	for _, o := range obs {
		k := groupKey{date: o.Date, city: o.City}
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, AggregatedCount{Date: o.Date, City: o.City})
		}
		if fn == AggSum {
			out[i].Value += o.Value
		} else {
			out[i].Value++
		}
	}

	slices.SortFunc(out, compareRows)
	return out
}

func compareRows(a, b AggregatedCount) int {
	switch {
	case a.Date.Before(b.Date):
		return -1
	case a.Date.After(b.Date):
		return 1
	}
	return strings.Compare(a.City, b.City)
}

// ReviewObservations maps each review to a unit observation for its date and city.
func ReviewObservations(rows []ReviewRecord) []Observation {
	out := make([]Observation, len(rows))
	for i, r := range rows {
		out[i] = Observation{Date: r.Date(), City: r.City, Value: 1}
	}
	return out
}

// CaseObservations maps each case row to its reported total.
func CaseObservations(rows []CaseRecord) []Observation {
	out := make([]Observation, len(rows))
	for i, r := range rows {
		out[i] = Observation{Date: r.Date(), City: r.Municipality, Value: r.TotalReported}
	}
	return out
}

// AggregateReviews counts reviews per (date, city).
func AggregateReviews(rows []ReviewRecord) []AggregatedCount {
	return Aggregate(ReviewObservations(rows), AggCount)
}

// AggregateCases sums total_reported per (date, municipality).
func AggregateCases(rows []CaseRecord) []AggregatedCount {
	return Aggregate(CaseObservations(rows), AggSum)
}
