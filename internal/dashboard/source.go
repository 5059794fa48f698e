package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/deliverable/cityinsights/internal/cache"
	"github.com/deliverable/cityinsights/internal/repository"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

const (
	SourceReviews    = "reviews"
	SourceCaseCounts = "case_counts"
)

// Source runs the two read-only dashboard queries for a fixed set of cities
// and date window. Results are memoized per (query, cities, window).
type Source struct {
	queries repository.Querier
	memo    *cache.Memo
	cities  []string
	window  DateRange
	logger  *slog.Logger
}

func NewSource(q repository.Querier, memo *cache.Memo, cities []string, window DateRange, logger *slog.Logger) *Source {
	return &Source{
		queries: q,
		memo:    memo,
		cities:  cities,
		window:  window,
		logger:  logger.With("component", "dashboard_source"),
	}
}

// Register installs the reviews and case-count loaders.
func (s *Source) Register(r *Registry) {
	r.Register(SourceReviews, func(ctx context.Context) ([]Observation, error) {
		rows, err := s.FetchReviews(ctx)
		if err != nil {
			return nil, err
		}
		return ReviewObservations(rows), nil
	})
	r.Register(SourceCaseCounts, func(ctx context.Context) ([]Observation, error) {
		rows, err := s.FetchCaseCounts(ctx)
		if err != nil {
			return nil, err
		}
		return CaseObservations(rows), nil
	})
}

func (s *Source) key(query string) cache.Key {
	return cache.Key{
		Query:  query,
		Params: []string{strings.Join(s.cities, ","), s.window.Start.String(), s.window.End.String()},
	}
}

// FetchReviews returns every review for the configured cities whose timestamp
// falls in the window.
func (s *Source) FetchReviews(ctx context.Context) ([]ReviewRecord, error) {
	return cache.Load(ctx, s.memo, s.key(SourceReviews), s.queryReviews)
}

// FetchCaseCounts returns every daily municipality total for the configured
// cities whose publication date falls in the window.
func (s *Source) FetchCaseCounts(ctx context.Context) ([]CaseRecord, error) {
	return cache.Load(ctx, s.memo, s.key(SourceCaseCounts), s.queryCaseCounts)
}

func (s *Source) queryReviews(ctx context.Context) ([]ReviewRecord, error) {
	start := time.Now()
	rows, err := s.queries.ListReviews(ctx, repository.ListReviewsParams{
		Cities: s.cities,
		From:   s.window.Start.In(time.UTC),
		To:     s.window.End.In(time.UTC),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}

	records := make([]ReviewRecord, 0, len(rows))
	for _, row := range rows {
		delivery, err := numericToDecimal(row.RatingDelivery)
		if err != nil {
			return nil, fmt.Errorf("review for restaurant %s: rating_delivery: %w", row.RestaurantID, err)
		}
		food, err := numericToDecimal(row.RatingFood)
		if err != nil {
			return nil, fmt.Errorf("review for restaurant %s: rating_food: %w", row.RestaurantID, err)
		}
		records = append(records, ReviewRecord{
			RestaurantID:   row.RestaurantID,
			DateTime:       row.Datetime,
			RatingDelivery: delivery,
			RatingFood:     food,
			City:           row.LocationCity,
		})
	}

	s.logger.InfoContext(ctx, "Fetched reviews", "rows", len(records), "window", s.window.String(), "latency_ms", time.Since(start).Milliseconds())
	return records, nil
}

func (s *Source) queryCaseCounts(ctx context.Context) ([]CaseRecord, error) {
	start := time.Now()
	rows, err := s.queries.ListMunicipalityTotals(ctx, repository.ListMunicipalityTotalsParams{
		Municipalities: s.cities,
		From:           s.window.Start.In(time.UTC),
		To:             s.window.End.In(time.UTC),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query municipality totals: %w", err)
	}

	records := make([]CaseRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, CaseRecord{
			Municipality:  row.MunicipalityName,
			PublishedAt:   row.DateOfPublication,
			TotalReported: row.TotalReported.Int64, // NULL reads as 0
		})
	}

	s.logger.InfoContext(ctx, "Fetched case counts", "rows", len(records), "window", s.window.String(), "latency_ms", time.Since(start).Milliseconds())
	return records, nil
}

func numericToDecimal(n pgtype.Numeric) (decimal.NullDecimal, error) {
	if !n.Valid {
		return decimal.NullDecimal{}, nil
	}
	if n.NaN || n.InfinityModifier != pgtype.Finite {
		return decimal.NullDecimal{}, fmt.Errorf("non-finite numeric")
	}
	if n.Int == nil {
		return decimal.NullDecimal{Decimal: decimal.Zero, Valid: true}, nil
	}
	return decimal.NullDecimal{Decimal: decimal.NewFromBigInt(n.Int, n.Exp), Valid: true}, nil
}
