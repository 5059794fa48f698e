package repository

import (
	"context"
	"database/sql"
	"embed"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//go:embed testdata/migrations/*.sql
var migrations embed.FS

// openTestDB migrates TEST_DATABASE_URL and returns a transaction that is
// rolled back when the test ends.
func openTestDB(t *testing.T) pgx.Tx {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	sqlDB, err := sql.Open("pgx", dsn)
	require.NoError(t, err)
	defer sqlDB.Close()

	goose.SetBaseFS(migrations)
	require.NoError(t, goose.SetDialect("postgres"))
	require.NoError(t, goose.Up(sqlDB, "testdata/migrations"))

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close(context.Background()) })

	tx, err := conn.Begin(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = tx.Rollback(context.Background()) })
	return tx
}

func TestQueriesIntegration(t *testing.T) {
	tx := openTestDB(t)
	ctx := context.Background()

	seed := []string{
		`INSERT INTO restaurants (restaurant_id, location_city) VALUES
			(9001, 'Amsterdam'), (9002, 'Rotterdam'), (9003, 'Utrecht')`,
		`INSERT INTO reviews (restaurant_id, datetime, rating_delivery, rating_food) VALUES
			(9001, '2022-01-01 09:15:00', 8, 9),
			(9001, '2022-01-01 18:40:00', 6, NULL),
			(9002, '2022-01-02 12:00:00', 10, 7),
			(9003, '2022-01-02 12:00:00', 5, 5),
			(9001, '2021-12-31 23:59:59', 1, 1)`,
		`INSERT INTO municipality_totals_daily (municipality_name, date_of_publication, total_reported) VALUES
			('Amsterdam', '2022-01-01', 120),
			('Amsterdam', '2022-01-01', 30),
			('Groningen', '2022-01-02', NULL),
			('Utrecht', '2022-01-02', 99)`,
	}
	for _, stmt := range seed {
		_, err := tx.Exec(ctx, stmt)
		require.NoError(t, err)
	}

	q := New(nil).WithTx(tx)
	from := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	cities := []string{"Amsterdam", "Rotterdam", "Groningen"}

	t.Run("ListReviews restricts cities and window", func(t *testing.T) {
		rows, err := q.ListReviews(ctx, ListReviewsParams{Cities: cities, From: from, To: to})
		require.NoError(t, err)

		var own []ListReviewsRow
		for _, r := range rows {
			if r.RestaurantID == "9001" || r.RestaurantID == "9002" || r.RestaurantID == "9003" {
				own = append(own, r)
			}
		}
		require.Len(t, own, 3)
		assert.Equal(t, "Amsterdam", own[0].LocationCity)
		assert.True(t, own[0].RatingDelivery.Valid)
		assert.False(t, own[1].RatingFood.Valid)
		assert.Equal(t, "Rotterdam", own[2].LocationCity)
	})

	t.Run("ListMunicipalityTotals keeps NULL totals as invalid", func(t *testing.T) {
		rows, err := q.ListMunicipalityTotals(ctx, ListMunicipalityTotalsParams{Municipalities: cities, From: from, To: to})
		require.NoError(t, err)

		var sawNull bool
		for _, r := range rows {
			assert.NotEqual(t, "Utrecht", r.MunicipalityName)
			if r.MunicipalityName == "Groningen" && !r.TotalReported.Valid {
				sawNull = true
			}
		}
		assert.True(t, sawNull)
	})
}
