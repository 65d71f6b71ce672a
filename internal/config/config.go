package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration loaded from config.yaml.
type Config struct {
	// LogGlob locates the per-night CSU log files; SyslogPath is the live
	// operational log appended last to the processing order.
	LogGlob    string `yaml:"log_glob"    json:"log_glob"`
	SyslogPath string `yaml:"syslog_path" json:"syslog_path"`

	// CacheBackend selects where per-directory results are cached:
	// "json" (odometer.json next to the logs) or "sqlite".
	CacheBackend string `yaml:"cache_backend" json:"cache_backend"`

	DBPath     string `yaml:"db_path"      json:"-"`
	HTTPAddr   string `yaml:"http_addr"    json:"-"`
	Schedule   string `yaml:"schedule"     json:"schedule"`
	Paused     bool   `yaml:"paused"       json:"paused"`
	RunOnStart bool   `yaml:"run_on_start" json:"run_on_start"`
	OutputDir  string `yaml:"output_dir"   json:"output_dir"`
	LogLevel   string `yaml:"log_level"    json:"-"`
}

// applyDefaults fills zero/empty fields with sensible defaults. The glob
// and syslog defaults are the instrument's operational locations.
func (c *Config) applyDefaults() {
	if c.LogGlob == "" {
		c.LogGlob = "/h/instrlogs/mosfire/*/CSU.log*"
	}
	if c.SyslogPath == "" {
		c.SyslogPath = "/sdata1300/syslogs/CSU.log"
	}
	if c.CacheBackend == "" {
		c.CacheBackend = "json"
	}
	if c.DBPath == "" {
		c.DBPath = "/data/csuodo.db"
	}
	if c.HTTPAddr == "" {
		c.HTTPAddr = ":8080"
	}
	if c.Schedule == "" {
		c.Schedule = "0 18 * * *"
	}
	if c.OutputDir == "" {
		c.OutputDir = "."
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// validate rejects values the rest of the system cannot act on.
func (c *Config) validate() error {
	switch c.CacheBackend {
	case "json", "sqlite":
		return nil
	default:
		return fmt.Errorf("cache_backend must be \"json\" or \"sqlite\", got %q", c.CacheBackend)
	}
}

// Load reads and parses the YAML config file at path.
// If the file does not exist, Load returns a default Config so the service
// can start without a mounted config file.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		var cfg Config
		cfg.applyDefaults()
		return &cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open config %q: %w", path, err)
	}
	defer f.Close()

	var cfg Config
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse config %q: %w", path, err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %q: %w", path, err)
	}
	return &cfg, nil
}

// MergeDBSettings overlays settings stored in the DB on top of the config.
// Keys recognised: "schedule", "paused". Unknown keys are silently ignored.
func MergeDBSettings(cfg *Config, settings map[string]string) {
	if v, ok := settings["schedule"]; ok && v != "" {
		cfg.Schedule = v
	}
	if v, ok := settings["paused"]; ok {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Paused = b
		}
	}
}
