// Package config loads civicsim settings from YAML, a .env file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all civicsim configuration.
type Config struct {
	Campaign CampaignConfig `yaml:"campaign"`
	Engine   EngineConfig   `yaml:"engine"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	LLM      LLMConfig      `yaml:"llm"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// CampaignConfig seeds a new campaign.
type CampaignConfig struct {
	Seed               int64  `yaml:"seed"` // 0 draws a fresh seed
	Country            string `yaml:"country"`
	CityName           string `yaml:"city_name"`
	RegionName         string `yaml:"region_name"`
	Cities             int    `yaml:"cities"`
	StatePopulation    int    `yaml:"state_population"`
	StartDate          string `yaml:"start_date"` // YYYY-MM-DD
	PlayerName         string `yaml:"player_name"`
	PlayerParty        string `yaml:"player_party"`
	PlayerRunsForMayor bool   `yaml:"player_runs_for_mayor"` // stand in the first mayoral race too
}

// EngineConfig controls the monthly loop.
type EngineConfig struct {
	MonthInterval string  `yaml:"month_interval"` // real time per month at speed 1
	Speed         float64 `yaml:"speed"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port        int    `yaml:"port"`
	AdminKey    string `yaml:"admin_key"`
	CORSOrigins string `yaml:"cors_origins"` // comma-separated, added to the localhost dev origins
	GazetteRate int    `yaml:"gazette_rate"` // requests per IP per hour
}

// DatabaseConfig points at the SQLite file.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LLMConfig configures the optional narrative client.
type LLMConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// LoggingConfig selects the log level and format.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // auto, text, json
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Campaign: CampaignConfig{
			Country:         "USA",
			Cities:          4,
			StatePopulation: 1_000_000,
			StartDate:       "2025-01-01",
			PlayerName:      "",
		},
		Engine: EngineConfig{
			MonthInterval: "10s",
			Speed:         1,
		},
		Server: ServerConfig{
			Port:        8080,
			GazetteRate: 10,
		},
		Database: DatabaseConfig{
			Path: "data/civicsim.db",
		},
		LLM: LLMConfig{
			Model: "claude-haiku-4-5-20251001",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "auto",
		},
	}
}

// Load reads the YAML file at path, writing the defaults there first when it
// does not exist. A .env file next to the working directory is loaded before
// environment overrides are applied.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := cfg.Save(path); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	// A missing .env is normal.
	_ = godotenv.Load()

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("CIVICSIM_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("CIVICSIM_SEED %q: %w", v, err)
		}
		c.Campaign.Seed = seed
	}
	if v := os.Getenv("CIVICSIM_ADMIN_KEY"); v != "" {
		c.Server.AdminKey = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("CIVICSIM_DB"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.Server.CORSOrigins = v
	}
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}
	return nil
}

// MonthDuration returns the engine interval, defaulting to ten seconds.
func (c *Config) MonthDuration() time.Duration {
	d, err := time.ParseDuration(c.Engine.MonthInterval)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}

// Origins splits the configured CORS origins.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.Server.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Start parses the campaign start date.
func (c *Config) Start() (time.Time, error) {
	if c.Campaign.StartDate == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, c.Campaign.StartDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("campaign start date: %w", err)
	}
	return t, nil
}

// Validate checks values the engine cannot recover from.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Engine.Speed < 0 {
		return fmt.Errorf("invalid engine speed %v", c.Engine.Speed)
	}
	if c.Campaign.Cities < 0 || c.Campaign.StatePopulation < 0 {
		return errors.New("campaign cities and population must not be negative")
	}
	if _, err := c.Start(); err != nil {
		return err
	}
	return nil
}
