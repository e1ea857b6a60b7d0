package config

import "time"

// Config is the root application configuration.
type Config struct {
	Database     DatabaseConfig     `yaml:"database"`
	Log          LogConfig          `yaml:"log"`
	Storage      StorageConfig      `yaml:"storage"`
	Analysis     AnalysisConfig     `yaml:"analysis"`
	Connectivity ConnectivityConfig `yaml:"connectivity"`
	Capture      CaptureConfig      `yaml:"capture"`
	Enrichment   EnrichmentConfig   `yaml:"enrichment"`
	Report       ReportConfig       `yaml:"report"`
	Status       StatusConfig       `yaml:"status"`
}

// DatabaseConfig holds PostgreSQL connection settings for the remote store.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"4"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"0"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"5m"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// StorageConfig holds device-local storage settings.
type StorageConfig struct {
	LocalDBPath string `yaml:"local_db_path" env:"STORAGE_LOCAL_DB_PATH" env-default:"./dreamjournal.sqlite"`
	AudioDir    string `yaml:"audio_dir"     env:"STORAGE_AUDIO_DIR"     env-default:"./recordings"`
}

// AnalysisConfig holds settings for the external analysis service.
type AnalysisConfig struct {
	AnthropicAPIKey    string        `yaml:"anthropic_api_key"    env:"ANALYSIS_ANTHROPIC_API_KEY"`
	AnthropicBaseURL   string        `yaml:"anthropic_base_url"   env:"ANALYSIS_ANTHROPIC_BASE_URL"`
	StructureModel     string        `yaml:"structure_model"      env:"ANALYSIS_STRUCTURE_MODEL"      env-default:"claude-sonnet-4-5"`
	DeepModel          string        `yaml:"deep_model"           env:"ANALYSIS_DEEP_MODEL"           env-default:"claude-opus-4-1"`
	MaxTokens          int64         `yaml:"max_tokens"           env:"ANALYSIS_MAX_TOKENS"           env-default:"2048"`
	OpenAIAPIKey       string        `yaml:"openai_api_key"       env:"ANALYSIS_OPENAI_API_KEY"`
	OpenAIBaseURL      string        `yaml:"openai_base_url"      env:"ANALYSIS_OPENAI_BASE_URL"`
	TranscriptionModel string        `yaml:"transcription_model"  env:"ANALYSIS_TRANSCRIPTION_MODEL"  env-default:"whisper-1"`
	RequestTimeout     time.Duration `yaml:"request_timeout"      env:"ANALYSIS_REQUEST_TIMEOUT"      env-default:"90s"`
	MaxRetries         int           `yaml:"max_retries"          env:"ANALYSIS_MAX_RETRIES"          env-default:"2"`
}

// ConnectivityConfig holds reachability probe settings.
type ConnectivityConfig struct {
	ProbeURL      string        `yaml:"probe_url"      env:"CONNECTIVITY_PROBE_URL"      env-default:"https://www.gstatic.com/generate_204"`
	ProbeInterval time.Duration `yaml:"probe_interval" env:"CONNECTIVITY_PROBE_INTERVAL" env-default:"15s"`
	ProbeTimeout  time.Duration `yaml:"probe_timeout"  env:"CONNECTIVITY_PROBE_TIMEOUT"  env-default:"5s"`
}

// CaptureConfig holds capture pipeline settings.
type CaptureConfig struct {
	// AutoRetry drives SyncPendingDreams from connectivity edges. Off by default:
	// pending captures are retried only on explicit request.
	AutoRetry       bool          `yaml:"auto_retry"        env:"CAPTURE_AUTO_RETRY"        env-default:"false"`
	RetryInitial    time.Duration `yaml:"retry_initial"     env:"CAPTURE_RETRY_INITIAL"     env-default:"5s"`
	RetryMaxElapsed time.Duration `yaml:"retry_max_elapsed" env:"CAPTURE_RETRY_MAX_ELAPSED" env-default:"10m"`
	RetryMaxTries   uint64        `yaml:"retry_max_tries"   env:"CAPTURE_RETRY_MAX_TRIES"   env-default:"5"`
}

// EnrichmentConfig holds background enrichment settings.
type EnrichmentConfig struct {
	Timeout time.Duration `yaml:"timeout" env:"ENRICHMENT_TIMEOUT" env-default:"3m"`
}

// ReportConfig holds weekly aggregate settings.
type ReportConfig struct {
	TimeZone      string        `yaml:"time_zone"      env:"REPORT_TIME_ZONE"      env-default:"Local"`
	TopN          int           `yaml:"top_n"          env:"REPORT_TOP_N"          env-default:"5"`
	CheckInterval time.Duration `yaml:"check_interval" env:"REPORT_CHECK_INTERVAL" env-default:"1h"`

	// Location is resolved from TimeZone during validation.
	Location *time.Location `yaml:"-" env:"-"`
}

// StatusConfig holds the local status/metrics HTTP server settings.
type StatusConfig struct {
	Host            string        `yaml:"host"             env:"STATUS_HOST"             env-default:"127.0.0.1"`
	Port            int           `yaml:"port"             env:"STATUS_PORT"             env-default:"9464"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"STATUS_READ_TIMEOUT"     env-default:"5s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"STATUS_SHUTDOWN_TIMEOUT" env-default:"5s"`
}
