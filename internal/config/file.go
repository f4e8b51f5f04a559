package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/otvetbot/internal/flagx"
	"github.com/dmitrijs2005/otvetbot/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is a DTO used exclusively for decoding config files.
// Zero values mean "not set" and leave the defaults untouched.
type FileConfig struct {
	StorePath         string         `json:"store_path" yaml:"store_path"`
	StoreKind         string         `json:"store_kind" yaml:"store_kind"`
	PlatformURL       string         `json:"platform_url" yaml:"platform_url"`
	PollInterval      timex.Duration `json:"poll_interval" yaml:"poll_interval"`
	RequestTimeout    timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	RequestsPerSecond float64        `json:"requests_per_second" yaml:"requests_per_second"`
	Backend           string         `json:"backend" yaml:"backend"`
	BackendURL        string         `json:"backend_url" yaml:"backend_url"`
	BackendProvider   string         `json:"backend_provider" yaml:"backend_provider"`
	Model             string         `json:"model" yaml:"model"`
	Language          string         `json:"language" yaml:"language"`
	WebSearch         bool           `json:"web_search" yaml:"web_search"`
	EnrollMaxAttempts int            `json:"enroll_max_attempts" yaml:"enroll_max_attempts"`
	Verbose           bool           `json:"verbose" yaml:"verbose"`
}

// parseFile overlays cfg with values from the file named by -c/-config.
// Files ending in .yaml or .yml are decoded as YAML, anything else as JSON.
func parseFile(cfg *Config, args []string) error {
	path := flagx.ConfigFile(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var fc FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}

	fc.apply(cfg)
	return nil
}

func (fc *FileConfig) apply(cfg *Config) {
	setString(&cfg.StorePath, fc.StorePath)
	setString(&cfg.StoreKind, fc.StoreKind)
	setString(&cfg.PlatformURL, fc.PlatformURL)
	setString(&cfg.Backend, fc.Backend)
	setString(&cfg.BackendURL, fc.BackendURL)
	setString(&cfg.BackendProvider, fc.BackendProvider)
	setString(&cfg.Model, fc.Model)
	setString(&cfg.Language, fc.Language)

	if fc.PollInterval.Duration > 0 {
		cfg.PollInterval = fc.PollInterval.Duration
	}
	if fc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}
	if fc.RequestsPerSecond > 0 {
		cfg.RequestsPerSecond = fc.RequestsPerSecond
	}
	if fc.EnrollMaxAttempts > 0 {
		cfg.EnrollMaxAttempts = fc.EnrollMaxAttempts
	}
	cfg.WebSearch = cfg.WebSearch || fc.WebSearch
	cfg.Verbose = cfg.Verbose || fc.Verbose
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
