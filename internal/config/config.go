package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/nba-gamelogs/internal/platform/logging"
)

// Config stores runtime configuration for the gamelog builder.
type Config struct {
	AppEnv                      string
	ServiceName                 string
	ServiceVersion              string
	LogLevel                    logging.Level
	LogFormat                   string
	StatsBaseURL                string
	CDNBaseURL                  string
	ProviderUserAgent           string
	ProviderTimeout             time.Duration
	ProviderRequestsPerSecond   float64
	ProviderCircuitEnabled      bool
	ProviderCircuitFailureCount int
	ProviderCircuitOpenTimeout  time.Duration
	ProviderCircuitHalfOpenReq  int
	PacingPerEntity             time.Duration
	PacingBulk                  time.Duration
	OutputDir                   string
	StaticSeasons               []string
	DefaultSeason               string
	RosterMinRows               int
	MaxEntityFailures           int
	BackfillMissingThreshold    int
	RebuildMinCovered           int
	RebuildMinRatio             float64
	StrictMinCovered            int
	StrictMinRatio              float64
	FallbackMinCovered          int
	FallbackMinRatio            float64
	PublishWorkers              int
	LedgerDBURL                 string
	DBDisablePreparedBinary     bool
	UptraceEnabled              bool
	UptraceDSN                  string
	UptraceLogsEnabled          bool
	PyroscopeEnabled            bool
	PyroscopeServerAddress      string
	PyroscopeAppName            string
	PyroscopeAuthToken          string
	PyroscopeBasicAuthUser      string
	PyroscopeBasicAuthPassword  string
	PyroscopeUploadRate         time.Duration
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	logFormat, err := parseLogFormat(getEnv("APP_LOG_FORMAT", defaultLogFormat(appEnv)))
	if err != nil {
		return Config{}, err
	}

	providerTimeout, err := getEnvAsDuration("PROVIDER_TIMEOUT", 30*time.Second)
	if err != nil {
		return Config{}, fmt.Errorf("parse PROVIDER_TIMEOUT: %w", err)
	}
	if providerTimeout <= 0 {
		return Config{}, fmt.Errorf("PROVIDER_TIMEOUT must be > 0")
	}
	providerRPS, err := getEnvAsFloat("PROVIDER_RPS", 0)
	if err != nil {
		return Config{}, fmt.Errorf("parse PROVIDER_RPS: %w", err)
	}
	if providerRPS < 0 {
		return Config{}, fmt.Errorf("PROVIDER_RPS must be >= 0")
	}

	providerCircuitEnabled, err := strconv.ParseBool(getEnv("PROVIDER_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PROVIDER_CIRCUIT_ENABLED: %w", err)
	}
	providerCircuitFailureCount, err := getEnvAsInt("PROVIDER_CIRCUIT_FAILURE_COUNT", 8)
	if err != nil {
		return Config{}, fmt.Errorf("parse PROVIDER_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	providerCircuitOpenTimeout, err := getEnvAsDuration("PROVIDER_CIRCUIT_OPEN_TIMEOUT", 30*time.Second)
	if err != nil {
		return Config{}, fmt.Errorf("parse PROVIDER_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	providerCircuitHalfOpenReq, err := getEnvAsInt("PROVIDER_CIRCUIT_HALF_OPEN_MAX_REQ", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse PROVIDER_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}

	pacingPerEntity, err := getEnvAsDuration("PACING_PER_ENTITY", 80*time.Millisecond)
	if err != nil {
		return Config{}, fmt.Errorf("parse PACING_PER_ENTITY: %w", err)
	}
	pacingBulk, err := getEnvAsDuration("PACING_BULK", time.Second)
	if err != nil {
		return Config{}, fmt.Errorf("parse PACING_BULK: %w", err)
	}
	if pacingPerEntity < 0 || pacingBulk < 0 {
		return Config{}, fmt.Errorf("PACING_PER_ENTITY and PACING_BULK must be >= 0")
	}

	outputDir := strings.TrimSpace(getEnv("OUTPUT_DIR", "data"))
	staticSeasons := splitCSV(getEnv("STATIC_SEASONS", ""))
	defaultSeason := strings.TrimSpace(getEnv("DEFAULT_SEASON", ""))

	var (
		rosterMinRows            int
		maxEntityFailures        int
		backfillMissingThreshold int
		rebuildMinCovered        int
		strictMinCovered         int
		fallbackMinCovered       int
		publishWorkers           int
	)
	ints := []intSetting{
		{key: "ROSTER_MIN_ROWS", fallback: 300, min: 1, out: &rosterMinRows},
		{key: "MAX_ENTITY_FAILURES", fallback: 25, min: 0, out: &maxEntityFailures},
		{key: "BACKFILL_MISSING_THRESHOLD", fallback: 25, min: 0, out: &backfillMissingThreshold},
		{key: "REBUILD_MIN_COVERED", fallback: 50, min: 0, out: &rebuildMinCovered},
		{key: "COVERAGE_STRICT_MIN_COVERED", fallback: 150, min: 0, out: &strictMinCovered},
		{key: "COVERAGE_FALLBACK_MIN_COVERED", fallback: 100, min: 0, out: &fallbackMinCovered},
		{key: "PUBLISH_WORKERS", fallback: 4, min: 1, out: &publishWorkers},
	}
	for _, item := range ints {
		value, err := getEnvAsInt(item.key, item.fallback)
		if err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", item.key, err)
		}
		if value < item.min {
			return Config{}, fmt.Errorf("%s must be >= %d", item.key, item.min)
		}
		*item.out = value
	}

	rebuildMinRatio, err := getEnvAsRatio("REBUILD_MIN_RATIO", 0.15)
	if err != nil {
		return Config{}, err
	}
	strictMinRatio, err := getEnvAsRatio("COVERAGE_STRICT_MIN_RATIO", 0.55)
	if err != nil {
		return Config{}, err
	}
	fallbackMinRatio, err := getEnvAsRatio("COVERAGE_FALLBACK_MIN_RATIO", 0.35)
	if err != nil {
		return Config{}, err
	}

	dbDisablePreparedBinary, err := strconv.ParseBool(getEnv("DB_DISABLE_PREPARED_BINARY_RESULT", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_DISABLE_PREPARED_BINARY_RESULT: %w", err)
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
	uptraceLogsEnabled, err := strconv.ParseBool(getEnv("UPTRACE_LOGS_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_LOGS_ENABLED: %w", err)
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := getEnvAsDuration("PYROSCOPE_UPLOAD_RATE", 15*time.Second)
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	serviceName := getEnv("APP_SERVICE_NAME", "nba-gamelogs")

	return Config{
		AppEnv:                      appEnv,
		ServiceName:                 serviceName,
		ServiceVersion:              getEnv("APP_SERVICE_VERSION", "dev"),
		LogLevel:                    parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
		LogFormat:                   logFormat,
		StatsBaseURL:                strings.TrimSpace(getEnv("NBA_STATS_BASE_URL", "")),
		CDNBaseURL:                  strings.TrimSpace(getEnv("NBA_CDN_BASE_URL", "")),
		ProviderUserAgent:           strings.TrimSpace(getEnv("PROVIDER_USER_AGENT", "")),
		ProviderTimeout:             providerTimeout,
		ProviderRequestsPerSecond:   providerRPS,
		ProviderCircuitEnabled:      providerCircuitEnabled,
		ProviderCircuitFailureCount: providerCircuitFailureCount,
		ProviderCircuitOpenTimeout:  providerCircuitOpenTimeout,
		ProviderCircuitHalfOpenReq:  providerCircuitHalfOpenReq,
		PacingPerEntity:             pacingPerEntity,
		PacingBulk:                  pacingBulk,
		OutputDir:                   outputDir,
		StaticSeasons:               staticSeasons,
		DefaultSeason:               defaultSeason,
		RosterMinRows:               rosterMinRows,
		MaxEntityFailures:           maxEntityFailures,
		BackfillMissingThreshold:    backfillMissingThreshold,
		RebuildMinCovered:           rebuildMinCovered,
		RebuildMinRatio:             rebuildMinRatio,
		StrictMinCovered:            strictMinCovered,
		StrictMinRatio:              strictMinRatio,
		FallbackMinCovered:          fallbackMinCovered,
		FallbackMinRatio:            fallbackMinRatio,
		PublishWorkers:              publishWorkers,
		LedgerDBURL:                 strings.TrimSpace(getEnv("LEDGER_DB_URL", "")),
		DBDisablePreparedBinary:     dbDisablePreparedBinary,
		UptraceEnabled:              uptraceEnabled,
		UptraceDSN:                  uptraceDSN,
		UptraceLogsEnabled:          uptraceLogsEnabled,
		PyroscopeEnabled:            pyroscopeEnabled,
		PyroscopeServerAddress:      pyroscopeServerAddress,
		PyroscopeAppName:            getEnv("PYROSCOPE_APP_NAME", serviceName),
		PyroscopeAuthToken:          getEnv("PYROSCOPE_AUTH_TOKEN", ""),
		PyroscopeBasicAuthUser:      getEnv("PYROSCOPE_BASIC_AUTH_USER", ""),
		PyroscopeBasicAuthPassword:  getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", ""),
		PyroscopeUploadRate:         pyroscopeUploadRate,
	}, nil
}

type intSetting struct {
	key      string
	fallback int
	min      int
	out      *int
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func defaultLogFormat(appEnv string) string {
	if appEnv == EnvDev {
		return logging.FormatConsole
	}
	return logging.FormatJSON
}

func parseLogFormat(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case logging.FormatJSON, logging.FormatConsole:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_LOG_FORMAT %q: valid values are %s, %s", v, logging.FormatJSON, logging.FormatConsole)
	}
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

func getEnvAsFloat(key string, fallback float64) (float64, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	return strconv.ParseFloat(value, 64)
}

func getEnvAsRatio(key string, fallback float64) (float64, error) {
	value, err := getEnvAsFloat(key, fallback)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if value < 0 || value > 1 {
		return 0, fmt.Errorf("%s must be within [0, 1]", key)
	}
	return value, nil
}

func getEnvAsDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	return time.ParseDuration(value)
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
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
