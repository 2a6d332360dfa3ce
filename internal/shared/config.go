package shared

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string
	ScorerBase  string
	ScorerRPS   int
	PlayBase    string
	PlayRPS     int
	Workers     int
	ReviewCount int
	InputCSV    string
	OutputCSV   string
	SourceTag   string
	KeywordsK   int
	Migrate     bool
	CacheTTL    time.Duration
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ":9100"),
		MySQLDSN:    env("MYSQL_DSN", "root:root@tcp(localhost:3306)/bank_reviews?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:   env("REDIS_ADDR", "localhost:6379"),
		RedisPass:   env("REDIS_PASSWORD", ""),
		RedisDB:     atoi("REDIS_DB", 0),
		ScorerBase:  env("SCORER_BASE_URL", "http://localhost:8501"),
		ScorerRPS:   atoi("SCORER_RPS", 10),
		PlayBase:    env("PLAY_BASE_URL", "https://gplay-proxy.internal/v1"),
		PlayRPS:     atoi("PLAY_RPS", 5),
		Workers:     atoi("COLLECT_WORKERS", 4),
		ReviewCount: atoi("COLLECT_REVIEW_COUNT", 500),
		InputCSV:    env("INPUT_CSV", "bank_reviews.csv"),
		OutputCSV:   env("OUTPUT_CSV", "bank_reviews_analyzed.csv"),
		SourceTag:   env("SOURCE_TAG", "Google Play"),
		KeywordsK:   atoi("KEYWORDS_PER_BANK", 10),
		Migrate:     env("PIPELINE_MIGRATE", "true") == "true",
		CacheTTL:    time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// Apps maps bank names to their Play Store app ids; the collector walks this
// registry. Ids come from the Play URL after 'id='.
var Apps = map[string]string{
	"CBE":    "com.combanketh.mobilebanking",
	"BOA":    "com.bankofabyssinia.mobilebanking",
	"Dashen": "com.dashenbank.mobile",
}
