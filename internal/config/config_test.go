package config

import (
	"testing"
	"time"

	"github.com/riskibarqy/nba-gamelogs/internal/platform/logging"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvProd)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("APP_LOG_FORMAT", "")
	t.Setenv("OUTPUT_DIR", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.LogFormat != logging.FormatJSON {
		t.Fatalf("expected json log format in prod, got %q", cfg.LogFormat)
	}
	if cfg.OutputDir != "data" {
		t.Fatalf("unexpected OutputDir: %q", cfg.OutputDir)
	}
	if cfg.ProviderTimeout != 30*time.Second {
		t.Fatalf("unexpected ProviderTimeout: %s", cfg.ProviderTimeout)
	}
	if cfg.RosterMinRows != 300 || cfg.MaxEntityFailures != 25 || cfg.BackfillMissingThreshold != 25 {
		t.Fatalf("unexpected escalation defaults: %+v", cfg)
	}
	if cfg.StrictMinCovered != 150 || cfg.StrictMinRatio != 0.55 {
		t.Fatalf("unexpected strict thresholds: %d %.2f", cfg.StrictMinCovered, cfg.StrictMinRatio)
	}
	if cfg.FallbackMinCovered != 100 || cfg.FallbackMinRatio != 0.35 {
		t.Fatalf("unexpected fallback thresholds: %d %.2f", cfg.FallbackMinCovered, cfg.FallbackMinRatio)
	}
	if cfg.RebuildMinCovered != 50 || cfg.RebuildMinRatio != 0.15 {
		t.Fatalf("unexpected rebuild floor: %d %.2f", cfg.RebuildMinCovered, cfg.RebuildMinRatio)
	}
	if !cfg.DBDisablePreparedBinary {
		t.Fatalf("expected DBDisablePreparedBinary=true by default")
	}
}

func TestLoad_DevDefaultsToConsoleLogs(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("APP_LOG_FORMAT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.LogFormat != logging.FormatConsole {
		t.Fatalf("expected console log format in dev, got %q", cfg.LogFormat)
	}
}

func TestLoad_InvalidLogFormat(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("APP_LOG_FORMAT", "xml")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_LOG_FORMAT")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_UptraceDSNFromOTLPHeaders(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "x-other=1, uptrace-dsn='https://token@api.uptrace.dev?grpc=4317'")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.UptraceDSN != "https://token@api.uptrace.dev?grpc=4317" {
		t.Fatalf("unexpected UptraceDSN: %q", cfg.UptraceDSN)
	}
}

func TestLoad_PyroscopeRequiresServerAddressWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when PYROSCOPE_ENABLED=true without PYROSCOPE_SERVER_ADDRESS")
	}
}

func TestLoad_PyroscopeAppNameDefaultsToServiceName(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("APP_SERVICE_NAME", "nba-gamelogs-test")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "http://localhost:4040")
	t.Setenv("PYROSCOPE_APP_NAME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PyroscopeAppName != "nba-gamelogs-test" {
		t.Fatalf("unexpected pyroscope app name: %q", cfg.PyroscopeAppName)
	}
}

func TestLoad_SeasonsAndThresholds(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("STATIC_SEASONS", " 2024-25, ,2025-26 ")
	t.Setenv("DEFAULT_SEASON", "2025-26")
	t.Setenv("COVERAGE_STRICT_MIN_RATIO", "0.6")
	t.Setenv("PACING_PER_ENTITY", "250ms")
	t.Setenv("PROVIDER_RPS", "1.5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if len(cfg.StaticSeasons) != 2 || cfg.StaticSeasons[0] != "2024-25" || cfg.StaticSeasons[1] != "2025-26" {
		t.Fatalf("unexpected StaticSeasons: %+v", cfg.StaticSeasons)
	}
	if cfg.DefaultSeason != "2025-26" {
		t.Fatalf("unexpected DefaultSeason: %q", cfg.DefaultSeason)
	}
	if cfg.StrictMinRatio != 0.6 {
		t.Fatalf("unexpected StrictMinRatio: %v", cfg.StrictMinRatio)
	}
	if cfg.PacingPerEntity != 250*time.Millisecond {
		t.Fatalf("unexpected PacingPerEntity: %s", cfg.PacingPerEntity)
	}
	if cfg.ProviderRequestsPerSecond != 1.5 {
		t.Fatalf("unexpected ProviderRequestsPerSecond: %v", cfg.ProviderRequestsPerSecond)
	}
}

func TestLoad_RejectsInvalidNumbers(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	cases := map[string]string{
		"COVERAGE_FALLBACK_MIN_RATIO": "1.5",
		"PUBLISH_WORKERS":             "0",
		"MAX_ENTITY_FAILURES":         "many",
		"PROVIDER_TIMEOUT":            "0s",
		"PROVIDER_RPS":                "-1",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", key, value)
			}
		})
	}
}
