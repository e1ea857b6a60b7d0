package config

import (
	"fmt"
	"strings"
	"time"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Storage.LocalDBPath) == "" {
		return fmt.Errorf("storage.local_db_path is required")
	}

	if c.Connectivity.ProbeInterval <= 0 {
		return fmt.Errorf("connectivity.probe_interval must be > 0 (got %v)", c.Connectivity.ProbeInterval)
	}

	if c.Analysis.MaxTokens <= 0 {
		return fmt.Errorf("analysis.max_tokens must be > 0 (got %d)", c.Analysis.MaxTokens)
	}

	if c.Analysis.MaxRetries < 0 {
		return fmt.Errorf("analysis.max_retries must be >= 0 (got %d)", c.Analysis.MaxRetries)
	}

	if c.Capture.AutoRetry && c.Capture.RetryInitial <= 0 {
		return fmt.Errorf("capture.retry_initial must be > 0 when auto_retry is enabled")
	}

	if err := c.Report.validate(); err != nil {
		return fmt.Errorf("report: %w", err)
	}

	return nil
}

func (r *ReportConfig) validate() error {
	if r.TopN <= 0 {
		return fmt.Errorf("top_n must be > 0 (got %d)", r.TopN)
	}

	if r.CheckInterval <= 0 {
		return fmt.Errorf("check_interval must be > 0 (got %v)", r.CheckInterval)
	}

	loc, err := ParseTimeZone(r.TimeZone)
	if err != nil {
		return fmt.Errorf("time_zone: %w", err)
	}
	r.Location = loc

	return nil
}

// ParseTimeZone resolves an IANA zone name. Empty or "Local" yields time.Local.
func ParseTimeZone(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid time zone %q: %w", name, err)
	}
	return loc, nil
}
