package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "json" or "console"
}

type Config struct {
	Addr        string    `yaml:"addr"`
	EventsAddr  string    `yaml:"events_addr"`
	UploadDir   string    `yaml:"upload_dir"`
	OutputDir   string    `yaml:"output_dir"`
	DBPath      string    `yaml:"db_path"`
	MaxUploadMB int       `yaml:"max_upload_mb"`
	Log         LogConfig `yaml:"log"`
}

func DefaultConfig() *Config {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = "."
	}
	return &Config{
		Addr:        ":8080",
		EventsAddr:  ":7070",
		UploadDir:   "uploads",
		OutputDir:   filepath.Join("static", "outputs"),
		DBPath:      filepath.Join(home, ".mediastats", "runs.db"),
		MaxUploadMB: 32,
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads the YAML file at path (a missing file or empty path yields
// defaults) and then applies MEDIASTATS_* environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg.applyEnv(os.LookupEnv)
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = strings.TrimSpace(v)
		}
	}

	str("MEDIASTATS_ADDR", &c.Addr)
	// set-but-empty disables the TCP feed
	str("MEDIASTATS_EVENTS_ADDR", &c.EventsAddr)
	str("MEDIASTATS_UPLOAD_DIR", &c.UploadDir)
	str("MEDIASTATS_OUTPUT_DIR", &c.OutputDir)
	str("MEDIASTATS_DB_PATH", &c.DBPath)
	str("MEDIASTATS_LOG_LEVEL", &c.Log.Level)
	str("MEDIASTATS_LOG_FORMAT", &c.Log.Format)

	if v, ok := lookup("MEDIASTATS_MAX_UPLOAD_MB"); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			c.MaxUploadMB = n
		}
	}
}

// MaxUploadBytes is the multipart body limit.
func (c *Config) MaxUploadBytes() int64 {
	if c.MaxUploadMB <= 0 {
		return 32 << 20
	}
	return int64(c.MaxUploadMB) << 20
}
