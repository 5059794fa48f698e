package dashboard

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const reviewsYAML = `
name: reviews
source: reviews
title: "Reviews in Amsterdam, Rotterdam & Groningen:"
value_label: Count of reviews
aggregate: count
order: 1
bounds: true
`

const casesYAML = `
name: cases
source: case_counts
title: "Covid cases in Amsterdam, Rotterdam & Groningen:"
value_label: Count of covid cases
aggregate: sum
order: 2
`

func writeConfigs(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
	return dir
}

func TestNewConfigLoader(t *testing.T) {
	t.Run("loads, defaults and orders datasets", func(t *testing.T) {
		dir := writeConfigs(t, map[string]string{
			"b/cases.yml":  casesYAML,
			"reviews.yaml": reviewsYAML,
			"README.md":    "ignored",
		})

		loader, err := NewConfigLoader(dir)
		require.NoError(t, err)

		datasets := loader.Datasets()
		require.Len(t, datasets, 2)
		assert.Equal(t, "reviews", datasets[0].Name)
		assert.Equal(t, "cases", datasets[1].Name)
		assert.Equal(t, AggSum, datasets[1].Aggregate)
		assert.Equal(t, "Date", datasets[1].DateLabel)
		assert.Equal(t, "City", datasets[1].CityLabel)

		cfg, ok := loader.GetConfig("reviews")
		require.True(t, ok)
		assert.True(t, cfg.Bounds)
		assert.Equal(t, "Reviews in Amsterdam, Rotterdam & Groningen:", cfg.Title)
	})

	testCases := []struct {
		name          string
		files         map[string]string
		errorContains string
	}{
		{
			name:          "Invalid - unknown aggregate",
			files:         map[string]string{"r.yaml": reviewsYAML, "c.yaml": "name: c\nsource: s\ntitle: t\nvalue_label: v\naggregate: mean\n"},
			errorContains: "must be one of count, sum",
		},
		{
			name:          "Invalid - missing source",
			files:         map[string]string{"r.yaml": "name: r\ntitle: t\nvalue_label: v\naggregate: count\nbounds: true\n"},
			errorContains: "source is required",
		},
		{
			name:          "Invalid - duplicate name",
			files:         map[string]string{"a.yaml": reviewsYAML, "b.yaml": reviewsYAML},
			errorContains: "duplicate dataset name 'reviews'",
		},
		{
			name:          "Invalid - no bounds dataset",
			files:         map[string]string{"c.yaml": casesYAML},
			errorContains: "exactly one dataset must set bounds",
		},
		{
			name:          "Invalid - malformed yaml",
			files:         map[string]string{"r.yaml": "name: [unterminated"},
			errorContains: "failed to parse YAML",
		},
		{
			name:          "Invalid - empty directory",
			files:         map[string]string{},
			errorContains: "no dataset configs found",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewConfigLoader(writeConfigs(t, tc.files))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errorContains)
		})
	}
}

func TestRepositoryDatasetConfigs(t *testing.T) {
	loader, err := NewConfigLoader(filepath.Join("..", "..", "configs", "datasets"))
	require.NoError(t, err)

	datasets := loader.Datasets()
	require.Len(t, datasets, 2)
	assert.Equal(t, SourceReviews, datasets[0].Source)
	assert.Equal(t, SourceCaseCounts, datasets[1].Source)
}
