package dashboard

import (
	"fmt"

	"cloud.google.com/go/civil"
)

// DateRange is an inclusive range of calendar dates.
type DateRange struct {
	Start civil.Date `json:"start"`
	End   civil.Date `json:"end"`
}

func (r DateRange) Contains(d civil.Date) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}

func (r DateRange) String() string {
	return r.Start.String() + ".." + r.End.String()
}

// FilterRange returns the rows whose date lies in r, in their original order.
func FilterRange(rows []AggregatedCount, r DateRange) []AggregatedCount {
	out := make([]AggregatedCount, 0, len(rows))
	for _, row := range rows {
		if r.Contains(row.Date) {
			out = append(out, row)
		}
	}
	return out
}

// Bounds returns the earliest and latest dates present in rows. ok is false
// for an empty table.
func Bounds(rows []AggregatedCount) (r DateRange, ok bool) {
	for i, row := range rows {
		if i == 0 || row.Date.Before(r.Start) {
			r.Start = row.Date
		}
		if i == 0 || row.Date.After(r.End) {
			r.End = row.Date
		}
	}
	return r, len(rows) > 0
}

type Level string

const (
	LevelError   Level = "error"
	LevelSuccess Level = "success"
)

// Advisory is shown next to the date inputs. It never changes what is filtered.
type Advisory struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

func (a Advisory) OK() bool {
	return a.Level == LevelSuccess
}

// ValidateRange checks a requested range against the bounds of the data. Only
// the first failing check is reported. Messages cite the configured query
// window, which is what users chose dates from.
func ValidateRange(requested, bounds, window DateRange) Advisory {
	switch {
	case requested.Start.Before(bounds.Start):
		return Advisory{Level: LevelError, Message: fmt.Sprintf("Start date must fall after %s.", window.Start)}
	case requested.End.After(bounds.End):
		return Advisory{Level: LevelError, Message: fmt.Sprintf("End date must fall before %s.", window.End)}
	case requested.Start.After(requested.End):
		return Advisory{Level: LevelError, Message: "End date must fall after start date."}
	}
	return Advisory{
		Level:   LevelSuccess,
		Message: fmt.Sprintf("Start date: %s, end date: %s", requested.Start, requested.End),
	}
}
