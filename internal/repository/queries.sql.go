package repository

import (
	"context"
	"time"
)

const listReviews = `-- name: ListReviews :many
SELECT rv.restaurant_id::text,
       rv.datetime,
       rv.rating_delivery::numeric,
       rv.rating_food::numeric,
       rs.location_city
FROM reviews AS rv
INNER JOIN restaurants rs ON rv.restaurant_id = rs.restaurant_id
WHERE rs.location_city = ANY($1::text[])
  AND rv.datetime BETWEEN $2 AND $3
ORDER BY rv.datetime, rs.location_city
`

type ListReviewsParams struct {
	Cities []string  `json:"cities"`
	From   time.Time `json:"from"`
	To     time.Time `json:"to"`
}

func (q *Queries) ListReviews(ctx context.Context, arg ListReviewsParams) ([]ListReviewsRow, error) {
	rows, err := q.db.Query(ctx, listReviews, arg.Cities, arg.From, arg.To)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ListReviewsRow{}
	for rows.Next() {
		var i ListReviewsRow
		if err := rows.Scan(
			&i.RestaurantID,
			&i.Datetime,
			&i.RatingDelivery,
			&i.RatingFood,
			&i.LocationCity,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listMunicipalityTotals = `-- name: ListMunicipalityTotals :many
SELECT municipality_name,
       date_of_publication::timestamp,
       total_reported::bigint
FROM municipality_totals_daily
WHERE municipality_name = ANY($1::text[])
  AND date_of_publication BETWEEN $2 AND $3
ORDER BY date_of_publication, municipality_name
`

type ListMunicipalityTotalsParams struct {
	Municipalities []string  `json:"municipalities"`
	From           time.Time `json:"from"`
	To             time.Time `json:"to"`
}

func (q *Queries) ListMunicipalityTotals(ctx context.Context, arg ListMunicipalityTotalsParams) ([]ListMunicipalityTotalsRow, error) {
	rows, err := q.db.Query(ctx, listMunicipalityTotals, arg.Municipalities, arg.From, arg.To)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ListMunicipalityTotalsRow{}
	for rows.Next() {
		var i ListMunicipalityTotalsRow
		if err := rows.Scan(&i.MunicipalityName, &i.DateOfPublication, &i.TotalReported); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
