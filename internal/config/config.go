package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	HTTPAddr string

	// Dataset source: csv reads DatasetPath once; sqlite/postgres read the
	// question_rows table through DBDSN.
	DatasetDriver string // csv|sqlite|postgres
	DatasetPath   string
	DBDSN         string

	AssetBasePath string
	StaticDir     string

	SessionSecret string
	SessionTTLMin int

	CORSOrigins []string
}

func FromEnv() Config {
	return Config{
		HTTPAddr:      envOr("HTTP_ADDR", ":8080"),
		DatasetDriver: envOr("DATASET_DRIVER", "csv"),
		DatasetPath:   envOr("DATASET_PATH", "Master_questions.csv"),
		DBDSN:         os.Getenv("DB_DSN"),
		AssetBasePath: envOr("ASSET_BASE_PATH", "./assets"),
		StaticDir:     os.Getenv("STATIC_DIR"),
		SessionSecret: envOr("SESSION_SECRET", "dev-only-session-secret"),
		SessionTTLMin: envInt("SESSION_TTL_MIN", 240),
		CORSOrigins:   csvOr("CORS_ORIGINS", "http://localhost:3000"),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
