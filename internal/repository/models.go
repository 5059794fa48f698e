package repository

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

type ListReviewsRow struct {
	RestaurantID   string         `json:"restaurant_id"`
	Datetime       time.Time      `json:"datetime"`
	RatingDelivery pgtype.Numeric `json:"rating_delivery"`
	RatingFood     pgtype.Numeric `json:"rating_food"`
	LocationCity   string         `json:"location_city"`
}

type ListMunicipalityTotalsRow struct {
	MunicipalityName  string      `json:"municipality_name"`
	DateOfPublication time.Time   `json:"date_of_publication"`
	TotalReported     pgtype.Int8 `json:"total_reported"`
}
