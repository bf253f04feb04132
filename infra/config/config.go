package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	ServiceName    string
	ListenAddr     string
	BackendBaseURL string
	RedisAddr      string
	LokiURL        string
	OTLPEndpoint   string
	LogLevel       string
	BulkWorkers    int
	RequestTimeout int // seconds
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

// Load reads .env if present, then the environment, with local-dev defaults.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		ServiceName:    getenv("SERVICE_NAME", "inventory"),
		ListenAddr:     getenv("LISTEN_ADDR", ":3140"),
		BackendBaseURL: getenv("BACKEND_BASE_URL", "http://localhost:8080/api"),
		RedisAddr:      getenv("REDIS_ADDR", ""),
		LokiURL:        getenv("LOKI_URL", ""),
		OTLPEndpoint:   getenv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		LogLevel:       getenv("LOG_LEVEL", "info"),
		BulkWorkers:    getenvInt("BULK_WORKERS", 4),
		RequestTimeout: getenvInt("REQUEST_TIMEOUT_SECONDS", 30),
	}
}
