package repository

import (
	"context"
)

type Querier interface {
	ListMunicipalityTotals(ctx context.Context, arg ListMunicipalityTotalsParams) ([]ListMunicipalityTotalsRow, error)
	ListReviews(ctx context.Context, arg ListReviewsParams) ([]ListReviewsRow, error)
}

var _ Querier = (*Queries)(nil)
