package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleTable() []AggregatedCount {
	return []AggregatedCount{
		{Date: day("2022-01-01"), City: "Amsterdam", Value: 4},
		{Date: day("2022-01-02"), City: "Amsterdam", Value: 2},
		{Date: day("2022-01-02"), City: "Rotterdam", Value: 1},
		{Date: day("2022-01-05"), City: "Groningen", Value: 3},
		{Date: day("2022-01-09"), City: "Rotterdam", Value: 6},
	}
}

func TestFilterRange(t *testing.T) {
	rows := sampleTable()

	testCases := []struct {
		name  string
		rng   DateRange
		dates []string
	}{
		{"inclusive on both ends", DateRange{Start: day("2022-01-02"), End: day("2022-01-05")}, []string{"2022-01-02", "2022-01-02", "2022-01-05"}},
		{"single day", DateRange{Start: day("2022-01-09"), End: day("2022-01-09")}, []string{"2022-01-09"}},
		{"range between rows", DateRange{Start: day("2022-01-06"), End: day("2022-01-08")}, nil},
		{"inverted range is empty", DateRange{Start: day("2022-01-09"), End: day("2022-01-01")}, nil},
		{"range wider than data", DateRange{Start: day("2021-12-01"), End: day("2023-01-01")}, []string{"2022-01-01", "2022-01-02", "2022-01-02", "2022-01-05", "2022-01-09"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := FilterRange(rows, tc.rng)

			var dates []string
			for _, r := range got {
				dates = append(dates, r.Date.String())
				assert.True(t, tc.rng.Contains(r.Date))
			}
			assert.Equal(t, tc.dates, dates)

			kept := 0
			for _, r := range rows {
				if tc.rng.Contains(r.Date) {
					kept++
				}
			}
			assert.Len(t, got, kept)
		})
	}
}

func TestFilterRangeFullBoundsRoundTrip(t *testing.T) {
	rows := sampleTable()
	bounds, ok := Bounds(rows)

	assert.True(t, ok)
	assert.Equal(t, DateRange{Start: day("2022-01-01"), End: day("2022-01-09")}, bounds)
	assert.Equal(t, rows, FilterRange(rows, bounds))
}

func TestBoundsEmpty(t *testing.T) {
	_, ok := Bounds(nil)
	assert.False(t, ok)
}

func TestValidateRange(t *testing.T) {
	bounds := DateRange{Start: day("2022-01-01"), End: day("2022-12-31")}
	window := DateRange{Start: day("2022-01-01"), End: day("2023-01-01")}

	testCases := []struct {
		name      string
		requested DateRange
		level     Level
		message   string
	}{
		{
			name:      "start before data minimum",
			requested: DateRange{Start: day("2021-12-15"), End: day("2022-06-01")},
			level:     LevelError,
			message:   "Start date must fall after 2022-01-01.",
		},
		{
			name:      "end after data maximum",
			requested: DateRange{Start: day("2022-02-01"), End: day("2023-03-01")},
			level:     LevelError,
			message:   "End date must fall before 2023-01-01.",
		},
		{
			name:      "start after end",
			requested: DateRange{Start: day("2022-08-01"), End: day("2022-07-01")},
			level:     LevelError,
			message:   "End date must fall after start date.",
		},
		{
			name:      "first failing check wins",
			requested: DateRange{Start: day("2021-01-01"), End: day("2024-01-01")},
			level:     LevelError,
			message:   "Start date must fall after 2022-01-01.",
		},
		{
			name:      "full bounds are valid",
			requested: bounds,
			level:     LevelSuccess,
			message:   "Start date: 2022-01-01, end date: 2022-12-31",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := ValidateRange(tc.requested, bounds, window)
			assert.Equal(t, tc.level, got.Level)
			assert.Equal(t, tc.message, got.Message)
			assert.Equal(t, tc.level == LevelSuccess, got.OK())
		})
	}
}

func TestValidationDoesNotBlockFiltering(t *testing.T) {
	rows := sampleTable()
	bounds, _ := Bounds(rows)
	window := DateRange{Start: day("2022-01-01"), End: day("2023-01-01")}
	requested := DateRange{Start: day("2021-12-25"), End: day("2022-01-02")}

	advisory := ValidateRange(requested, bounds, window)
	got := FilterRange(rows, requested)

	assert.False(t, advisory.OK())
	assert.Len(t, got, 3)
}
