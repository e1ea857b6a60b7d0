package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeYAML(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "dreamjournal.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	return path
}

const validYAML = `
database:
  dsn: "postgres://u:p@localhost:5432/dreams"
  max_conns: 2

log:
  level: "debug"
  format: "text"

storage:
  local_db_path: "/tmp/dj.sqlite"
  audio_dir: "/tmp/recordings"

analysis:
  anthropic_api_key: "sk-ant"
  structure_model: "claude-test"
  max_tokens: 1024

connectivity:
  probe_url: "http://probe.local/ok"
  probe_interval: "30s"

capture:
  auto_retry: true
  retry_initial: "2s"

report:
  time_zone: "Europe/Berlin"
  top_n: 3
`

func TestLoad_ValidYAML(t *testing.T) {
	path := writeYAML(t, t.TempDir(), validYAML)
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Database.DSN != "postgres://u:p@localhost:5432/dreams" {
		t.Errorf("database.dsn = %q", cfg.Database.DSN)
	}
	if cfg.Database.MaxConns != 2 {
		t.Errorf("database.max_conns = %d, want 2", cfg.Database.MaxConns)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "text" {
		t.Errorf("log = %+v", cfg.Log)
	}
	if cfg.Storage.LocalDBPath != "/tmp/dj.sqlite" {
		t.Errorf("storage.local_db_path = %q", cfg.Storage.LocalDBPath)
	}
	if cfg.Analysis.StructureModel != "claude-test" || cfg.Analysis.MaxTokens != 1024 {
		t.Errorf("analysis = %+v", cfg.Analysis)
	}
	if cfg.Analysis.TranscriptionModel != "whisper-1" {
		t.Errorf("analysis.transcription_model = %q, want default whisper-1", cfg.Analysis.TranscriptionModel)
	}
	if cfg.Connectivity.ProbeInterval != 30*time.Second {
		t.Errorf("connectivity.probe_interval = %v, want 30s", cfg.Connectivity.ProbeInterval)
	}
	if !cfg.Capture.AutoRetry || cfg.Capture.RetryInitial != 2*time.Second {
		t.Errorf("capture = %+v", cfg.Capture)
	}
	if cfg.Report.TopN != 3 {
		t.Errorf("report.top_n = %d, want 3", cfg.Report.TopN)
	}
	if cfg.Report.Location == nil || cfg.Report.Location.String() != "Europe/Berlin" {
		t.Errorf("report.location = %v, want Europe/Berlin", cfg.Report.Location)
	}
}

func TestLoad_ENVOverridesYAML(t *testing.T) {
	path := writeYAML(t, t.TempDir(), validYAML)
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("REPORT_TOP_N", "7")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Log.Level != "warn" {
		t.Errorf("log.level = %q, want warn (ENV override)", cfg.Log.Level)
	}
	if cfg.Report.TopN != 7 {
		t.Errorf("report.top_n = %d, want 7 (ENV override)", cfg.Report.TopN)
	}
}

func TestLoad_NoFile_ENVOnly(t *testing.T) {
	t.Setenv("DATABASE_DSN", "postgres://u:p@localhost:5432/dreams")
	t.Setenv("CONFIG_PATH", "")

	origDir, _ := os.Getwd()
	t.Cleanup(func() { _ = os.Chdir(origDir) })
	_ = os.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Capture.AutoRetry {
		t.Error("capture.auto_retry should default to false")
	}
	if cfg.Report.TopN != 5 {
		t.Errorf("report.top_n = %d, want 5 (default)", cfg.Report.TopN)
	}
	if cfg.Report.Location != time.Local {
		t.Errorf("report.location = %v, want Local", cfg.Report.Location)
	}
}

func TestLoad_ExplicitPathNotFound(t *testing.T) {
	t.Setenv("CONFIG_PATH", "/nonexistent/dreamjournal.yaml")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing explicit config path")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeYAML(t, t.TempDir(), `{{{invalid yaml`)
	t.Setenv("CONFIG_PATH", path)

	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestValidate_Rules(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty local db path", func(c *Config) { c.Storage.LocalDBPath = " " }},
		{"zero probe interval", func(c *Config) { c.Connectivity.ProbeInterval = 0 }},
		{"zero max tokens", func(c *Config) { c.Analysis.MaxTokens = 0 }},
		{"auto retry without initial", func(c *Config) {
			c.Capture.AutoRetry = true
			c.Capture.RetryInitial = 0
		}},
		{"zero top n", func(c *Config) { c.Report.TopN = 0 }},
		{"zero report check interval", func(c *Config) { c.Report.CheckInterval = 0 }},
		{"bad time zone", func(c *Config) { c.Report.TimeZone = "Mars/Olympus" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Report.Location == nil {
		t.Error("Validate should resolve report location")
	}
}

func TestParseTimeZone(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"", "Local", "local"} {
		loc, err := ParseTimeZone(name)
		if err != nil || loc != time.Local {
			t.Errorf("ParseTimeZone(%q) = %v, %v; want Local", name, loc, err)
		}
	}

	loc, err := ParseTimeZone("UTC")
	if err != nil || loc.String() != "UTC" {
		t.Errorf("ParseTimeZone(UTC) = %v, %v", loc, err)
	}
}

// validConfig returns a Config that passes all validation checks.
func validConfig() Config {
	return Config{
		Storage:      StorageConfig{LocalDBPath: "/tmp/dj.sqlite"},
		Analysis:     AnalysisConfig{MaxTokens: 2048},
		Connectivity: ConnectivityConfig{ProbeInterval: 15 * time.Second},
		Report:       ReportConfig{TimeZone: "UTC", TopN: 5, CheckInterval: time.Hour},
	}
}
