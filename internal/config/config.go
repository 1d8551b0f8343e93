// Package config loads the zashabot YAML configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration loaded from config.yaml.
type Config struct {
	AdsPower     AdsPower     `yaml:"adspower"`
	Game         Game         `yaml:"game"`
	Threading    Threading    `yaml:"threading"`
	GoogleSheets GoogleSheets `yaml:"google_sheets"`
}

// AdsPower configures the profile gateway client.
type AdsPower struct {
	BaseURL  string `yaml:"base_url"`
	Headless bool   `yaml:"headless"`
}

// Game configures the browser driver. Timeouts follow the original UI
// budgets: page loads and element waits are in milliseconds, the win
// animation budget is in seconds.
type Game struct {
	BaseURL           string `yaml:"base_url"`
	CollectionURL     string `yaml:"collection_url"`
	PageLoadTimeoutMs int    `yaml:"page_load_timeout"`
	ElementWaitMs     int    `yaml:"element_wait_timeout"`
	AnimationMaxWaitS int    `yaml:"animation_max_wait"`
}

// PageLoadTimeout returns the page load budget as a duration.
func (g Game) PageLoadTimeout() time.Duration {
	return time.Duration(g.PageLoadTimeoutMs) * time.Millisecond
}

// ElementWaitTimeout returns the element wait budget as a duration.
func (g Game) ElementWaitTimeout() time.Duration {
	return time.Duration(g.ElementWaitMs) * time.Millisecond
}

// AnimationMaxWait returns the win animation budget as a duration.
func (g Game) AnimationMaxWait() time.Duration {
	return time.Duration(g.AnimationMaxWaitS) * time.Second
}

// Threading configures the worker pool.
type Threading struct {
	MaxWorkers int `yaml:"max_workers"`
}

// GoogleSheets configures the result recorder. Columns maps logical field
// names (serial_number, daruma_fox, ..., status_error) to column letters.
type GoogleSheets struct {
	CredentialsFile string            `yaml:"credentials_file"`
	SpreadsheetID   string            `yaml:"spreadsheet_id"`
	SheetName       string            `yaml:"sheet_name"`
	DataStartRow    int               `yaml:"data_start_row"`
	Columns         map[string]string `yaml:"columns"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		AdsPower: AdsPower{
			BaseURL: "http://localhost:50325",
		},
		Game: Game{
			BaseURL:           "https://www.zashapon.com/",
			CollectionURL:     "https://zashapon.com/collection",
			PageLoadTimeoutMs: 60000,
			ElementWaitMs:     30000,
			AnimationMaxWaitS: 120,
		},
		Threading: Threading{
			MaxWorkers: 3,
		},
		GoogleSheets: GoogleSheets{
			CredentialsFile: "service_account.json",
			SheetName:       "Sheet1",
			DataStartRow:    2,
		},
	}
}

// Load loads config from the given path, applying defaults for unset keys.
// Environment variables in string values are expanded, so secrets like the
// spreadsheet id can live in the environment.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}
