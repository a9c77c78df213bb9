package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"

	PromptProviderStatic = "static"
	PromptProviderOpenAI = "openai"
	PromptProviderGemini = "gemini"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv             string
	Port               string
	StoreDriver        string
	DatabaseURL        string
	JWTSecret          string
	JWTIssuer          string
	ToolsConfigPath    string
	GeoIPDBPath        string
	GeoIPOverrides     map[string]string
	PromptProvider     string
	GeminiAPIKey       string
	GeminiModel        string
	OpenAIAPIKey       string
	OpenAIModel        string
	OpenAIBaseURL      string
	OpenAIOrg          string
	OpenAIMaxRetries   int
	CORSAllowedOrigins []string
	GuestCookieName    string
	DefaultLocale      string
	SessionTTL         time.Duration
	GenerationTimeout  time.Duration
	HTTPReadTimeout    time.Duration
	HTTPWriteTimeout   time.Duration
	HTTPIdleTimeout    time.Duration
	ShutdownTimeout    time.Duration
	RateLimitPerMin    int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		Port:               getEnv("PORT", "8080"),
		StoreDriver:        strings.ToLower(getEnv("STORE_DRIVER", StoreDriverPostgres)),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		JWTIssuer:          getEnv("JWT_ISSUER", "tekxora-tools"),
		ToolsConfigPath:    os.Getenv("TOOLS_CONFIG_PATH"),
		GeoIPDBPath:        os.Getenv("GEOIP_DB_PATH"),
		GeoIPOverrides:     getEnvPairs("GEOIP_OVERRIDES"),
		PromptProvider:     strings.ToLower(getEnv("PROMPT_PROVIDER", PromptProviderStatic)),
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		GeminiModel:        getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		OpenAIAPIKey:       os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:        getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:      os.Getenv("OPENAI_BASE_URL"),
		OpenAIOrg:          os.Getenv("OPENAI_ORG"),
		OpenAIMaxRetries:   getEnvInt("OPENAI_MAX_RETRIES", 2),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		GuestCookieName:    getEnv("GUEST_COOKIE_NAME", "tk_guest"),
		DefaultLocale:      getEnv("DEFAULT_LOCALE", "en"),
		SessionTTL:         time.Minute * time.Duration(getEnvInt("SESSION_TTL_MINUTES", 30)),
		GenerationTimeout:  time.Second * time.Duration(getEnvInt("GENERATION_TIMEOUT_SECONDS", 60)),
		HTTPReadTimeout:    time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:   time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 90)),
		HTTPIdleTimeout:    time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		ShutdownTimeout:    time.Second * time.Duration(getEnvInt("SHUTDOWN_TIMEOUT_SECONDS", 15)),
		RateLimitPerMin:    getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
	}

	switch cfg.StoreDriver {
	case StoreDriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	case StoreDriverMemory:
	default:
		return nil, fmt.Errorf("unsupported STORE_DRIVER %q", cfg.StoreDriver)
	}

	switch cfg.PromptProvider {
	case PromptProviderStatic, PromptProviderOpenAI, PromptProviderGemini:
	default:
		return nil, fmt.Errorf("unsupported PROMPT_PROVIDER %q", cfg.PromptProvider)
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

// IsDevelopment reports whether the service runs with development defaults.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
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

// getEnvPairs parses "k1=v1,k2=v2". Entries without "=" are skipped.
func getEnvPairs(key string) map[string]string {
	out := make(map[string]string)
	for _, part := range getEnvList(key, nil) {
		k, v, ok := strings.Cut(part, "=")
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if !ok || k == "" || v == "" {
			continue
		}
		out[k] = v
	}
	return out
}
