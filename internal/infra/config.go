package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv             string
	Port               string
	DatabaseURL        string
	GeoIPDBPath        string
	DefaultLocale      string
	CORSAllowedOrigins []string
	GeminiAPIKey       string
	GeminiModel        string
	GeminiBaseURL      string
	GeminiTimeout      time.Duration
	RenderAPIKey       string
	RenderBaseURL      string
	RenderVoiceType    string
	RenderVoiceID      string
	RenderSourceURL    string
	RenderTimeout      time.Duration
	VideoPollInterval  time.Duration
	VideoMaxAttempts   int
	VideoTimeout       time.Duration
	HTTPReadTimeout    time.Duration
	HTTPWriteTimeout   time.Duration
	HTTPIdleTimeout    time.Duration
	RateLimitPerMin    int
	RateLimitWindow    time.Duration
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	return loadConfig(true)
}

// LoadClientConfig is LoadConfig for tools that never open the database.
func LoadClientConfig() (*Config, error) {
	return loadConfig(false)
}

func loadConfig(requireDatabase bool) (*Config, error) {
	cfg := &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		Port:               getEnv("PORT", "8080"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		GeoIPDBPath:        os.Getenv("GEOIP_DB_PATH"),
		DefaultLocale:      strings.ToLower(getEnv("DEFAULT_LOCALE", "es")),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		GeminiModel:        getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiBaseURL:      getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		GeminiTimeout:      time.Second * time.Duration(getEnvInt("GEMINI_TIMEOUT_SECONDS", 60)),
		RenderAPIKey:       os.Getenv("D_ID_API_KEY"),
		RenderBaseURL:      getEnv("D_ID_BASE_URL", "https://api.d-id.com"),
		RenderVoiceType:    getEnv("D_ID_VOICE_PROVIDER", "microsoft"),
		RenderVoiceID:      getEnv("D_ID_VOICE_ID", "es-ES-ElviraNeural"),
		RenderSourceURL:    getEnv("D_ID_SOURCE_URL", "https://d-id-public-bucket.s3.amazonaws.com/alice.jpg"),
		RenderTimeout:      time.Second * time.Duration(getEnvInt("D_ID_TIMEOUT_SECONDS", 30)),
		VideoPollInterval:  time.Second * time.Duration(getEnvInt("VIDEO_POLL_INTERVAL_SECONDS", 3)),
		VideoMaxAttempts:   getEnvInt("VIDEO_MAX_POLL_ATTEMPTS", 60),
		VideoTimeout:       time.Second * time.Duration(getEnvInt("VIDEO_TIMEOUT_SECONDS", 285)),
		HTTPReadTimeout:    time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:   time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 300)),
		HTTPIdleTimeout:    time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:    getEnvInt("RATE_LIMIT_PER_MINUTE", 10),
		RateLimitWindow:    time.Second * time.Duration(getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60)),
	}

	if requireDatabase && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.VideoPollInterval <= 0 {
		return nil, fmt.Errorf("VIDEO_POLL_INTERVAL_SECONDS must be positive")
	}

	if cfg.VideoMaxAttempts <= 0 {
		return nil, fmt.Errorf("VIDEO_MAX_POLL_ATTEMPTS must be positive")
	}

	if cfg.GeminiTimeout <= 0 || cfg.RenderTimeout <= 0 {
		return nil, fmt.Errorf("GEMINI_TIMEOUT_SECONDS and D_ID_TIMEOUT_SECONDS must be positive")
	}

	if ceiling := cfg.VideoCeiling(); cfg.VideoTimeout < ceiling {
		return nil, fmt.Errorf("VIDEO_TIMEOUT_SECONDS (%s) must cover script generation, job submission and polling (%s)", cfg.VideoTimeout, ceiling)
	}

	if cfg.HTTPWriteTimeout <= cfg.VideoTimeout {
		return nil, fmt.Errorf("HTTP_WRITE_TIMEOUT_SECONDS (%s) must exceed VIDEO_TIMEOUT_SECONDS (%s)", cfg.HTTPWriteTimeout, cfg.VideoTimeout)
	}

	return cfg, nil
}

// VideoCeiling is the longest a video request runs when every step uses its
// full budget: one script call, one submission and the polling waits.
func (c *Config) VideoCeiling() time.Duration {
	return c.GeminiTimeout + c.RenderTimeout + c.VideoPollInterval*time.Duration(c.VideoMaxAttempts)
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

func getEnvList(key string, fallback []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
