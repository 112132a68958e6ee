package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// clearTriageEnv blanks every env var LoadConfig reads so ambient
// shell state cannot leak into assertions.
func clearTriageEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DB_PATH", "RULES_PATH", "MODEL_PATH",
		"ORACLE_PROVIDER", "ORACLE_MODEL",
		"OPENAI_API_KEY", "GEMINI_API_KEY", "ANTHROPIC_API_KEY",
		"SLACK_BOT_TOKEN", "ALERT_CHANNEL_ID",
		"PENDING_SCHEDULE", "RESWEEP_SCHEDULE", "BATCH_SIZE",
		"EXTERNAL_HTTP_TIMEOUT_SECONDS", "TIMEZONE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearTriageEnv(t)
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "absent.yaml"))

	cfg := LoadConfig()
	if cfg.DBPath != "./triagebot.db" {
		t.Errorf("default DBPath = %q", cfg.DBPath)
	}
	if cfg.ModelPath != "./models/classifier.json" {
		t.Errorf("default ModelPath = %q", cfg.ModelPath)
	}
	if cfg.PendingSchedule != "*/5 * * * *" || cfg.ResweepSchedule != "0 3 * * *" {
		t.Errorf("default schedules = %q, %q", cfg.PendingSchedule, cfg.ResweepSchedule)
	}
	if cfg.BatchSize != 100 {
		t.Errorf("default BatchSize = %d", cfg.BatchSize)
	}
	if cfg.OracleProvider != "" {
		t.Errorf("default OracleProvider = %q", cfg.OracleProvider)
	}
	if cfg.Location != time.Local {
		t.Errorf("default Location = %v", cfg.Location)
	}
}

func TestLoadConfigFromYAML(t *testing.T) {
	clearTriageEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	contents := `
db_path: /var/lib/triage.db
oracle_provider: gemini
gemini_api_key: g-test
batch_size: 25
pending_schedule: "*/10 * * * *"
timezone: Asia/Ho_Chi_Minh
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	t.Setenv("CONFIG_PATH", path)

	cfg := LoadConfig()
	if cfg.DBPath != "/var/lib/triage.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.OracleProvider != "gemini" || cfg.GeminiAPIKey != "g-test" {
		t.Errorf("oracle settings = %q, %q", cfg.OracleProvider, cfg.GeminiAPIKey)
	}
	if cfg.BatchSize != 25 {
		t.Errorf("BatchSize = %d", cfg.BatchSize)
	}
	if cfg.PendingSchedule != "*/10 * * * *" {
		t.Errorf("PendingSchedule = %q", cfg.PendingSchedule)
	}
	if cfg.Location == nil || cfg.Location.String() != "Asia/Ho_Chi_Minh" {
		t.Errorf("Location = %v", cfg.Location)
	}
}

func TestEnvOverridesYAML(t *testing.T) {
	clearTriageEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("db_path: /from/yaml.db\nbatch_size: 10\n"), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("DB_PATH", "/from/env.db")
	t.Setenv("BATCH_SIZE", "50")

	cfg := LoadConfig()
	if cfg.DBPath != "/from/env.db" {
		t.Errorf("env override lost: DBPath = %q", cfg.DBPath)
	}
	if cfg.BatchSize != 50 {
		t.Errorf("env override lost: BatchSize = %d", cfg.BatchSize)
	}
}

func TestMissingCredentialsAreNotFatal(t *testing.T) {
	clearTriageEnv(t)
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "absent.yaml"))
	t.Setenv("ORACLE_PROVIDER", "openai")

	// No OPENAI_API_KEY: the pipeline runs on its rule-based paths.
	cfg := LoadConfig()
	if cfg.OracleProvider != "openai" || cfg.OpenAIAPIKey != "" {
		t.Fatalf("unexpected oracle settings %q, %q", cfg.OracleProvider, cfg.OpenAIAPIKey)
	}
}

func TestEnvOverrideHelpers(t *testing.T) {
	t.Setenv("TRIAGE_TEST_STR", "value")
	s := "orig"
	envOverride(&s, "TRIAGE_TEST_STR")
	if s != "value" {
		t.Errorf("envOverride: %q", s)
	}

	t.Setenv("TRIAGE_TEST_STR", "")
	s = "kept"
	envOverride(&s, "TRIAGE_TEST_STR")
	if s != "kept" {
		t.Errorf("empty env must not override, got %q", s)
	}

	t.Setenv("TRIAGE_TEST_INT", "42")
	n := 7
	envOverrideInt(&n, "TRIAGE_TEST_INT")
	if n != 42 {
		t.Errorf("envOverrideInt: %d", n)
	}
}
