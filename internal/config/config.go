package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/joho/godotenv"
)

// Config holds all application-wide configuration loaded from environment variables.
type Config struct {
	DatabaseURL      string
	AppEnv           string
	Port             string
	SentryDSN        string
	CacheTTL         time.Duration
	DatasetConfigDir string
	AllowOrigins     []string
	Cities           []string
	WindowFrom       civil.Date
	WindowTo         civil.Date
}

// LoadConfig reads configuration from environment variables or a .env file.
// It is the single source of truth for application configuration.
func LoadConfig() (*Config, error) {
	// Local development reads .env; deployed environments set variables directly.
	_ = godotenv.Load()

	dbURL, err := databaseURL()
	if err != nil {
		return nil, err
	}

	appEnv := os.Getenv("APP_ENV")
	if appEnv == "" {
		appEnv = "development"
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	cacheTTL := time.Hour
	if raw := os.Getenv("CACHE_TTL"); raw != "" {
		cacheTTL, err = time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("FATAL: CACHE_TTL %q is not a duration: %w", raw, err)
		}
		if cacheTTL <= 0 {
			return nil, fmt.Errorf("FATAL: CACHE_TTL must be positive, got %s", cacheTTL)
		}
	}

	datasetDir := os.Getenv("DATASET_CONFIG_DIR")
	if datasetDir == "" {
		datasetDir = "./configs/datasets"
	}

	cities := splitList(os.Getenv("DASHBOARD_CITIES"))
	if len(cities) == 0 {
		cities = []string{"Amsterdam", "Rotterdam", "Groningen"}
	}

	from, err := dateEnv("DASHBOARD_FROM", civil.Date{Year: 2022, Month: time.January, Day: 1})
	if err != nil {
		return nil, err
	}
	to, err := dateEnv("DASHBOARD_TO", civil.Date{Year: 2023, Month: time.January, Day: 1})
	if err != nil {
		return nil, err
	}
	if to.Before(from) {
		return nil, fmt.Errorf("FATAL: DASHBOARD_TO (%s) is before DASHBOARD_FROM (%s)", to, from)
	}

	origins := splitList(os.Getenv("CORS_ALLOW_ORIGINS"))
	if len(origins) == 0 {
		origins = []string{"http://localhost:8080"}
	}

	return &Config{
		DatabaseURL:      dbURL,
		AppEnv:           appEnv,
		Port:             port,
		SentryDSN:        os.Getenv("SENTRY_DSN"),
		CacheTTL:         cacheTTL,
		DatasetConfigDir: datasetDir,
		AllowOrigins:     origins,
		Cities:           cities,
		WindowFrom:       from,
		WindowTo:         to,
	}, nil
}

// databaseURL prefers DATABASE_URL and otherwise assembles a DSN from the
// individual DB_* variables.
func databaseURL() (string, error) {
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		return dbURL, nil
	}

	required := map[string]string{}
	for _, key := range []string{"DB_USER", "DB_PASSWORD", "DB_HOST", "DB_NAME"} {
		v := os.Getenv(key)
		if v == "" {
			return "", fmt.Errorf("FATAL: %s environment variable not set (or set DATABASE_URL)", key)
		}
		required[key] = v
	}

	port := os.Getenv("DB_PORT")
	if port == "" {
		port = "5432"
	}
	sslMode := os.Getenv("DB_SSLMODE")
	if sslMode == "" {
		sslMode = "prefer"
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(required["DB_USER"], required["DB_PASSWORD"]),
		Host:     required["DB_HOST"] + ":" + port,
		Path:     "/" + required["DB_NAME"],
		RawQuery: url.Values{"sslmode": []string{sslMode}}.Encode(),
	}
	return u.String(), nil
}

func dateEnv(key string, fallback civil.Date) (civil.Date, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := civil.ParseDate(raw)
	if err != nil {
		return civil.Date{}, fmt.Errorf("FATAL: %s %q is not a YYYY-MM-DD date: %w", key, raw, err)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
