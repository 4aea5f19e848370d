package infra

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv            string
	Port              string
	HuggingFaceAPIKey string
	HunyuanEndpoint   string
	AllowedOrigins    []string
	HTTPReadTimeout   time.Duration
	HTTPWriteTimeout  time.Duration
	HTTPIdleTimeout   time.Duration
	GenerateTimeout   time.Duration
	MaxConcurrentJobs int
	JobTTL            time.Duration
	JobSweepInterval  time.Duration
	RateLimitPerMin   int
}

// LoadConfig loads configuration from environment variables and applies
// defaults where needed. A missing HUGGINGFACE_API_KEY is not an error: the
// process starts and every generation call fails fast instead.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:            getEnv("APP_ENV", "development"),
		Port:              getEnv("PORT", "8000"),
		HuggingFaceAPIKey: strings.TrimSpace(os.Getenv("HUGGINGFACE_API_KEY")),
		HunyuanEndpoint:   os.Getenv("HUNYUAN3D_MODEL_ENDPOINT"),
		AllowedOrigins:    splitOrigins(getEnv("ALLOWED_ORIGINS", "*")),
		HTTPReadTimeout:   time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 30)),
		// The synchronous path blocks for the whole generation, so the write
		// timeout has to cover the generator deadline.
		HTTPWriteTimeout:  time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 660)),
		HTTPIdleTimeout:   time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		GenerateTimeout:   time.Second * time.Duration(getEnvInt("GENERATE_TIMEOUT_SECONDS", 600)),
		MaxConcurrentJobs: getEnvInt("MAX_CONCURRENT_JOBS", 4),
		JobTTL:            time.Minute * time.Duration(getEnvInt("JOB_TTL_MINUTES", 60)),
		JobSweepInterval:  time.Minute * time.Duration(getEnvInt("JOB_SWEEP_INTERVAL_MINUTES", 5)),
		RateLimitPerMin:   getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
	}

	return cfg, nil
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, part := range strings.Split(raw, ",") {
		if origin := strings.TrimSpace(part); origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return origins
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
