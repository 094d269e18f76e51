package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/riskibarqy/archive-ingest/internal/platform/logging"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
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
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "uptrace-dsn='https://token@api.uptrace.dev/1'")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.UptraceDSN != "https://token@api.uptrace.dev/1" {
		t.Fatalf("unexpected UptraceDSN: %q", cfg.UptraceDSN)
	}
}

func TestLoad_IngestDefaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("INGEST_PARSE_WORKERS", "")
	t.Setenv("INGEST_DRY_RUN", "")
	t.Setenv("INGEST_PERSIST_RUN", "")
	t.Setenv("APP_LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.ParseWorkers != 1 || cfg.DryRun || !cfg.PersistRun {
		t.Fatalf("unexpected ingest defaults: %+v", cfg)
	}
	if cfg.LogLevel != logging.LevelDebug {
		t.Fatalf("unexpected log level: %v", cfg.LogLevel)
	}
	if cfg.PyroscopeUploadRate != 15*time.Second {
		t.Fatalf("unexpected PyroscopeUploadRate: %s", cfg.PyroscopeUploadRate)
	}
}

func TestLoad_ParseWorkersValidation(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Setenv("INGEST_PARSE_WORKERS", "0")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for INGEST_PARSE_WORKERS=0")
	}

	t.Setenv("INGEST_PARSE_WORKERS", "four")
	if _, err := Load(); err == nil {
		t.Fatalf("expected parse error for INGEST_PARSE_WORKERS")
	}

	t.Setenv("INGEST_PARSE_WORKERS", "4")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.ParseWorkers != 4 {
		t.Fatalf("unexpected ParseWorkers: %d", cfg.ParseWorkers)
	}
}

func TestLoad_ReportsEveryInvalidVariable(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "maybe")
	t.Setenv("INGEST_DRY_RUN", "sometimes")
	t.Setenv("PYROSCOPE_UPLOAD_RATE", "-1s")

	_, err := Load()
	if err == nil {
		t.Fatalf("expected error for invalid variables")
	}
	for _, key := range []string{"UPTRACE_ENABLED", "INGEST_DRY_RUN", "PYROSCOPE_UPLOAD_RATE"} {
		if !strings.Contains(err.Error(), key) {
			t.Fatalf("error must name %s: %v", key, err)
		}
	}
}

func TestLoad_PyroscopeRequiresServerAddress(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when PYROSCOPE_ENABLED=true without PYROSCOPE_SERVER_ADDRESS")
	}
}

func TestLoadRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := `primary_club:
  name: 1. FC Kaiserslautern
  patterns:
    - '^sv kaiserslautern$'
nations:
  - Saarland
non_person_words:
  - Pfostenschuss
files:
  league:
    - 'kreisklasse*'
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write rules: %v", err)
	}

	rules, err := LoadRules(path)
	if err != nil {
		t.Fatalf("LoadRules error: %v", err)
	}
	if rules.PrimaryClub.Name != "1. FC Kaiserslautern" || len(rules.PrimaryClub.Patterns) != 1 {
		t.Fatalf("unexpected primary club rules: %+v", rules.PrimaryClub)
	}
	if len(rules.Nations) != 1 || rules.NonPersonWords[0] != "Pfostenschuss" || rules.Files.League[0] != "kreisklasse*" {
		t.Fatalf("unexpected rules: %+v", rules)
	}
}

func TestLoadRulesRejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte("primary_clubs:\n  name: x\n"), 0o644); err != nil {
		t.Fatalf("write rules: %v", err)
	}
	if _, err := LoadRules(path); err == nil {
		t.Fatalf("expected error for unknown field")
	}
}

func TestLoadRulesEmptyPath(t *testing.T) {
	rules, err := LoadRules("  ")
	if err != nil {
		t.Fatalf("LoadRules error: %v", err)
	}
	if rules.PrimaryClub.Name != "" || len(rules.Nations) != 0 {
		t.Fatalf("expected empty rules, got %+v", rules)
	}
}
