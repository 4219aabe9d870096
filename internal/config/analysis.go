package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	EnvAnalysisWorkers          = "LACUNA_ANALYSIS_WORKERS"
	EnvAnalysisStoreTimeout     = "LACUNA_ANALYSIS_STORE_TIMEOUT"
	EnvAnalysisStoreRetries     = "LACUNA_ANALYSIS_STORE_RETRIES"
	EnvAnalysisReportInterval   = "LACUNA_ANALYSIS_REPORT_INTERVAL"
	EnvAnalysisVolumeScale      = "LACUNA_ANALYSIS_VOLUME_SCALE"
	EnvAnalysisHalfLife         = "LACUNA_ANALYSIS_HALF_LIFE"
	EnvAnalysisClusterThreshold = "LACUNA_ANALYSIS_CLUSTER_THRESHOLD"
	EnvAnalysisCacheTTL         = "LACUNA_ANALYSIS_CACHE_TTL"
)

// AnalysisConfig tunes gap detection, FAQ generation, and report scheduling.
type AnalysisConfig struct {
	Workers          int     `toml:"workers"`
	StoreTimeout     string  `toml:"store_timeout"`
	StoreRetries     int     `toml:"store_retries"`
	ReportInterval   string  `toml:"report_interval"`
	VolumeScale      float64 `toml:"volume_scale"`
	HalfLife         string  `toml:"half_life"`
	ClusterThreshold float64 `toml:"cluster_threshold"`
	CacheTTL         string  `toml:"cache_ttl"`
}

// StoreTimeoutDuration returns StoreTimeout as a time.Duration.
func (c *AnalysisConfig) StoreTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.StoreTimeout)
	return d
}

// ReportIntervalDuration returns ReportInterval as a time.Duration. An empty
// interval returns zero, which disables scheduled snapshots.
func (c *AnalysisConfig) ReportIntervalDuration() time.Duration {
	d, _ := time.ParseDuration(c.ReportInterval)
	return d
}

// HalfLifeDuration returns HalfLife as a time.Duration.
func (c *AnalysisConfig) HalfLifeDuration() time.Duration {
	d, _ := time.ParseDuration(c.HalfLife)
	return d
}

// CacheTTLDuration returns CacheTTL as a time.Duration.
func (c *AnalysisConfig) CacheTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.CacheTTL)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *AnalysisConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *AnalysisConfig) Merge(overlay *AnalysisConfig) {
	if overlay.Workers != 0 {
		c.Workers = overlay.Workers
	}
	if overlay.StoreTimeout != "" {
		c.StoreTimeout = overlay.StoreTimeout
	}
	if overlay.StoreRetries != 0 {
		c.StoreRetries = overlay.StoreRetries
	}
	if overlay.ReportInterval != "" {
		c.ReportInterval = overlay.ReportInterval
	}
	if overlay.VolumeScale != 0 {
		c.VolumeScale = overlay.VolumeScale
	}
	if overlay.HalfLife != "" {
		c.HalfLife = overlay.HalfLife
	}
	if overlay.ClusterThreshold != 0 {
		c.ClusterThreshold = overlay.ClusterThreshold
	}
	if overlay.CacheTTL != "" {
		c.CacheTTL = overlay.CacheTTL
	}
}

func (c *AnalysisConfig) loadDefaults() {
	if c.Workers == 0 {
		c.Workers = 4
	}
	if c.StoreTimeout == "" {
		c.StoreTimeout = "5s"
	}
	if c.StoreRetries == 0 {
		c.StoreRetries = 2
	}
	if c.VolumeScale == 0 {
		c.VolumeScale = 8
	}
	if c.HalfLife == "" {
		c.HalfLife = "168h"
	}
	if c.ClusterThreshold == 0 {
		c.ClusterThreshold = 0.3
	}
	if c.CacheTTL == "" {
		c.CacheTTL = "5m"
	}
}

func (c *AnalysisConfig) loadEnv() {
	if v := os.Getenv(EnvAnalysisWorkers); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Workers = n
		}
	}
	if v := os.Getenv(EnvAnalysisStoreTimeout); v != "" {
		c.StoreTimeout = v
	}
	if v := os.Getenv(EnvAnalysisStoreRetries); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.StoreRetries = n
		}
	}
	if v := os.Getenv(EnvAnalysisReportInterval); v != "" {
		c.ReportInterval = v
	}
	if v := os.Getenv(EnvAnalysisVolumeScale); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.VolumeScale = f
		}
	}
	if v := os.Getenv(EnvAnalysisHalfLife); v != "" {
		c.HalfLife = v
	}
	if v := os.Getenv(EnvAnalysisClusterThreshold); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.ClusterThreshold = f
		}
	}
	if v := os.Getenv(EnvAnalysisCacheTTL); v != "" {
		c.CacheTTL = v
	}
}

func (c *AnalysisConfig) validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive: %d", c.Workers)
	}
	if c.StoreRetries < 0 {
		return fmt.Errorf("store_retries must not be negative: %d", c.StoreRetries)
	}
	if c.VolumeScale <= 0 {
		return fmt.Errorf("volume_scale must be positive: %v", c.VolumeScale)
	}
	if c.ClusterThreshold <= 0 || c.ClusterThreshold > 1 {
		return fmt.Errorf("cluster_threshold must be in (0,1]: %v", c.ClusterThreshold)
	}
	if d, err := time.ParseDuration(c.StoreTimeout); err != nil || d <= 0 {
		return fmt.Errorf("invalid store_timeout %q", c.StoreTimeout)
	}
	if d, err := time.ParseDuration(c.HalfLife); err != nil || d <= 0 {
		return fmt.Errorf("invalid half_life %q", c.HalfLife)
	}
	if _, err := time.ParseDuration(c.CacheTTL); err != nil {
		return fmt.Errorf("invalid cache_ttl: %w", err)
	}
	if c.ReportInterval != "" {
		if d, err := time.ParseDuration(c.ReportInterval); err != nil || d < 0 {
			return fmt.Errorf("invalid report_interval %q", c.ReportInterval)
		}
	}
	return nil
}
