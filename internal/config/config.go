package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/riskibarqy/wato-stats/internal/platform/logging"
)

const (
	defaultSourceTimezone  = "Asia/Seoul"
	defaultDayBoundaryHour = 5
	defaultSlugs           = "pan_setkacup"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv                     string
	ServiceName                string
	ServiceVersion             string
	HTTPAddr                   string
	DBURL                      string
	DBBinaryParameters         bool
	CacheEnabled               bool
	CacheTTL                   time.Duration
	CORSAllowedOrigins         []string
	ReadTimeout                time.Duration
	WriteTimeout               time.Duration
	ShutdownTimeout            time.Duration
	PprofEnabled               bool
	PprofAddr                  string
	SwaggerEnabled             bool
	MetricsEnabled             bool
	CrawlerSecretKey           string
	Slugs                      []string
	CrawlBaseURL               string
	CrawlPages                 int
	CrawlWorkers               int
	CrawlPostDelay             time.Duration
	CrawlPageDelay             time.Duration
	CrawlTimeout               time.Duration
	CrawlMaxRetries            int
	CrawlUserAgent             string
	CrawlCircuitEnabled        bool
	CrawlCircuitFailureCount   int
	CrawlCircuitOpenTimeout    time.Duration
	CrawlCircuitHalfOpenMaxReq int
	SourceTimezone             *time.Location
	DayBoundaryHour            int
	UptraceEnabled             bool
	UptraceDSN                 string
	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
	LogLevel                   logging.Level
}

// Load reads the process environment. A .env file in the working directory
// is applied first without overriding variables that are already set.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	swaggerDefault := "true"
	if appEnv == EnvProd {
		swaggerDefault = "false"
	}

	swaggerEnabled, err := strconv.ParseBool(getEnv("SWAGGER_ENABLED", swaggerDefault))
	if err != nil {
		return Config{}, fmt.Errorf("parse SWAGGER_ENABLED: %w", err)
	}
	metricsEnabled, err := strconv.ParseBool(getEnv("METRICS_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse METRICS_ENABLED: %w", err)
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if pprofEnabled && pprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	crawlPages, err := getEnvAsInt("CRAWL_PAGES", 8)
	if err != nil {
		return Config{}, fmt.Errorf("parse CRAWL_PAGES: %w", err)
	}
	if crawlPages < 1 {
		return Config{}, fmt.Errorf("CRAWL_PAGES must be >= 1")
	}
	crawlWorkers, err := getEnvAsInt("CRAWL_WORKERS", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse CRAWL_WORKERS: %w", err)
	}
	if crawlWorkers < 1 {
		return Config{}, fmt.Errorf("CRAWL_WORKERS must be >= 1")
	}
	crawlPostDelay, err := time.ParseDuration(getEnv("CRAWL_POST_DELAY", "300ms"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CRAWL_POST_DELAY: %w", err)
	}
	crawlPageDelay, err := time.ParseDuration(getEnv("CRAWL_PAGE_DELAY", "1s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CRAWL_PAGE_DELAY: %w", err)
	}
	if crawlPostDelay < 0 || crawlPageDelay < 0 {
		return Config{}, fmt.Errorf("CRAWL_POST_DELAY and CRAWL_PAGE_DELAY must be >= 0")
	}
	crawlTimeout, err := time.ParseDuration(getEnv("CRAWL_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CRAWL_TIMEOUT: %w", err)
	}
	if crawlTimeout <= 0 {
		return Config{}, fmt.Errorf("CRAWL_TIMEOUT must be > 0")
	}
	crawlMaxRetries, err := getEnvAsInt("CRAWL_MAX_RETRIES", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse CRAWL_MAX_RETRIES: %w", err)
	}
	if crawlMaxRetries < 0 {
		return Config{}, fmt.Errorf("CRAWL_MAX_RETRIES must be >= 0")
	}
	crawlCircuitEnabled, err := strconv.ParseBool(getEnv("CRAWL_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CRAWL_CIRCUIT_ENABLED: %w", err)
	}
	crawlCircuitFailureCount, err := getEnvAsInt("CRAWL_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse CRAWL_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if crawlCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("CRAWL_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	crawlCircuitOpenTimeout, err := time.ParseDuration(getEnv("CRAWL_CIRCUIT_OPEN_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CRAWL_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if crawlCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("CRAWL_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	crawlCircuitHalfOpenMaxReq, err := getEnvAsInt("CRAWL_CIRCUIT_HALF_OPEN_MAX_REQ", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse CRAWL_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if crawlCircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("CRAWL_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	sourceTimezone, err := time.LoadLocation(strings.TrimSpace(getEnv("SOURCE_TIMEZONE", defaultSourceTimezone)))
	if err != nil {
		return Config{}, fmt.Errorf("parse SOURCE_TIMEZONE: %w", err)
	}
	dayBoundaryHour, err := getEnvAsInt("DAY_BOUNDARY_HOUR", defaultDayBoundaryHour)
	if err != nil {
		return Config{}, fmt.Errorf("parse DAY_BOUNDARY_HOUR: %w", err)
	}
	if dayBoundaryHour < 0 || dayBoundaryHour > 23 {
		return Config{}, fmt.Errorf("DAY_BOUNDARY_HOUR must be between 0 and 23")
	}

	cfg := Config{
		AppEnv:                     appEnv,
		ServiceName:                getEnv("APP_SERVICE_NAME", "wato-stats"),
		ServiceVersion:             getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:                   getEnv("APP_HTTP_ADDR", ":8080"),
		DBURL:                      resolveDBURL(),
		CORSAllowedOrigins:         splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		PprofEnabled:               pprofEnabled,
		PprofAddr:                  pprofAddr,
		SwaggerEnabled:             swaggerEnabled,
		MetricsEnabled:             metricsEnabled,
		CrawlerSecretKey:           strings.TrimSpace(getEnv("CRAWLER_SECRET_KEY", "")),
		Slugs:                      splitCSV(getEnv("SLUGS", defaultSlugs)),
		CrawlBaseURL:               strings.TrimSpace(getEnv("CRAWL_BASE_URL", "")),
		CrawlPages:                 crawlPages,
		CrawlWorkers:               crawlWorkers,
		CrawlPostDelay:             crawlPostDelay,
		CrawlPageDelay:             crawlPageDelay,
		CrawlTimeout:               crawlTimeout,
		CrawlMaxRetries:            crawlMaxRetries,
		CrawlUserAgent:             strings.TrimSpace(getEnv("CRAWL_USER_AGENT", "")),
		CrawlCircuitEnabled:        crawlCircuitEnabled,
		CrawlCircuitFailureCount:   crawlCircuitFailureCount,
		CrawlCircuitOpenTimeout:    crawlCircuitOpenTimeout,
		CrawlCircuitHalfOpenMaxReq: crawlCircuitHalfOpenMaxReq,
		SourceTimezone:             sourceTimezone,
		DayBoundaryHour:            dayBoundaryHour,
		UptraceEnabled:             uptraceEnabled,
		UptraceDSN:                 uptraceDSN,
		PyroscopeEnabled:           pyroscopeEnabled,
		PyroscopeServerAddress:     pyroscopeServerAddress,
		PyroscopeAuthToken:         strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:     strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword: strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:        pyroscopeUploadRate,
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}
	if len(cfg.Slugs) == 0 {
		return Config{}, fmt.Errorf("SLUGS cannot be empty")
	}

	dbBinaryParameters, err := strconv.ParseBool(getEnv("DB_BINARY_PARAMETERS", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_BINARY_PARAMETERS: %w", err)
	}
	cfg.DBBinaryParameters = dbBinaryParameters

	cacheEnabled, err := strconv.ParseBool(getEnv("CACHE_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_ENABLED: %w", err)
	}
	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", "60s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_TTL: %w", err)
	}
	if cacheTTL <= 0 {
		return Config{}, fmt.Errorf("CACHE_TTL must be > 0")
	}
	cfg.CacheEnabled = cacheEnabled
	cfg.CacheTTL = cacheTTL

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}
	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}
	shutdownTimeout, err := time.ParseDuration(getEnv("APP_SHUTDOWN_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_SHUTDOWN_TIMEOUT: %w", err)
	}
	if shutdownTimeout <= 0 {
		return Config{}, fmt.Errorf("APP_SHUTDOWN_TIMEOUT must be > 0")
	}
	cfg.ReadTimeout = readTimeout
	cfg.WriteTimeout = writeTimeout
	cfg.ShutdownTimeout = shutdownTimeout
	cfg.LogLevel = logging.ParseLevel(getEnv("LOG_LEVEL", "info"))

	return cfg, nil
}

// resolveDBURL prefers DB_URL and otherwise assembles a postgres URL from
// DB_HOST and friends. An empty result selects the in-memory store.
func resolveDBURL() string {
	if raw := strings.TrimSpace(getEnv("DB_URL", "")); raw != "" {
		return raw
	}

	host := strings.TrimSpace(getEnv("DB_HOST", ""))
	if host == "" {
		return ""
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(getEnv("DB_USER", "postgres"), getEnv("DB_PASSWORD", "")),
		Host:     net.JoinHostPort(host, getEnv("DB_PORT", "5432")),
		Path:     "/" + getEnv("DB_NAME", "wato_stats"),
		RawQuery: "sslmode=" + getEnv("DB_SSLMODE", "disable"),
	}
	return u.String()
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
