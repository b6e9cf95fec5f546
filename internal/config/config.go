package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"flashstudy/internal/srs"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Log       LogConfig       `mapstructure:"log"`
	Study     StudyConfig     `mapstructure:"study"`
	Reminders RemindersConfig `mapstructure:"reminders"`
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Port           string        `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
}

// DatabaseConfig selects the SQL backend
type DatabaseConfig struct {
	Type string `mapstructure:"type"`
	Path string `mapstructure:"path"`
	URL  string `mapstructure:"url"`
}

// AuthConfig holds the access token settings shared with the login service
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// StudyConfig holds scheduling behaviour
type StudyConfig struct {
	Timezone      string        `mapstructure:"timezone"`
	MediaBaseURL  string        `mapstructure:"media_base_url"`
	SessionMaxAge time.Duration `mapstructure:"session_max_age"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
	RateLimit     int           `mapstructure:"rate_limit"`
	SRS           SRSConfig     `mapstructure:"srs"`
}

// SRSConfig overrides the interval algorithm constants. Zero keeps the default.
type SRSConfig struct {
	InitialEase       float64       `mapstructure:"initial_ease"`
	MinimumEase       float64       `mapstructure:"minimum_ease"`
	LapsePenalty      float64       `mapstructure:"lapse_penalty"`
	HardPenalty       float64       `mapstructure:"hard_penalty"`
	EasyBonus         float64       `mapstructure:"easy_bonus"`
	HardMultiplier    float64       `mapstructure:"hard_multiplier"`
	EasyMultiplier    float64       `mapstructure:"easy_multiplier"`
	FirstGoodInterval int           `mapstructure:"first_good_interval"`
	LapseDelay        time.Duration `mapstructure:"lapse_delay"`
	MaximumInterval   int           `mapstructure:"maximum_interval"`
}

// RemindersConfig controls the due-card email digest
type RemindersConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	AWSRegion  string `mapstructure:"aws_region"`
	FromEmail  string `mapstructure:"from_email"`
	AppBaseURL string `mapstructure:"app_base_url"`
}

// Load reads configuration from .env, an optional config file, and STUDY_* environment variables
func Load() (*Config, error) {
	// .env is optional; real environment variables win over it
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	setDefaults(v)

	v.SetEnvPrefix("STUDY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8000")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173"})

	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.path", "./flashstudy.db")
	v.SetDefault("database.url", "")

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("study.timezone", "UTC")
	v.SetDefault("study.media_base_url", "")
	v.SetDefault("study.session_max_age", 12*time.Hour)
	v.SetDefault("study.sweep_interval", 15*time.Minute)
	v.SetDefault("study.rate_limit", 120)
	d := srs.DefaultConfig()
	v.SetDefault("study.srs.initial_ease", d.InitialEase)
	v.SetDefault("study.srs.minimum_ease", d.MinimumEase)
	v.SetDefault("study.srs.lapse_penalty", d.LapsePenalty)
	v.SetDefault("study.srs.hard_penalty", d.HardPenalty)
	v.SetDefault("study.srs.easy_bonus", d.EasyBonus)
	v.SetDefault("study.srs.hard_multiplier", d.HardMultiplier)
	v.SetDefault("study.srs.easy_multiplier", d.EasyMultiplier)
	v.SetDefault("study.srs.first_good_interval", d.FirstGoodInterval)
	v.SetDefault("study.srs.lapse_delay", d.LapseDelay)
	v.SetDefault("study.srs.maximum_interval", d.MaximumInterval)

	v.SetDefault("reminders.enabled", false)
	v.SetDefault("reminders.aws_region", "us-east-1")
	v.SetDefault("reminders.from_email", "")
	v.SetDefault("reminders.app_base_url", "http://localhost:5173")
}

// Validate checks values that would otherwise fail later at runtime
func (c *Config) Validate() error {
	switch c.Database.Type {
	case "sqlite", "postgres", "mysql":
	default:
		return fmt.Errorf("unsupported database type %q", c.Database.Type)
	}
	if c.Database.Type != "sqlite" && c.Database.URL == "" {
		return fmt.Errorf("database.url is required for %s", c.Database.Type)
	}
	if _, err := time.LoadLocation(c.Study.Timezone); err != nil {
		return fmt.Errorf("invalid study.timezone: %w", err)
	}
	if c.Study.RateLimit < 0 {
		return errors.New("study.rate_limit must not be negative")
	}
	if c.Reminders.Enabled && c.Reminders.FromEmail == "" {
		return errors.New("reminders.from_email is required when reminders are enabled")
	}
	return nil
}

// Location returns the time zone used to group the review calendar
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Study.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// SchedulerConfig converts the srs overrides into algorithm constants
func (c *Config) SchedulerConfig() srs.Config {
	s := c.Study.SRS
	return srs.Config{
		InitialEase:       s.InitialEase,
		MinimumEase:       s.MinimumEase,
		LapsePenalty:      s.LapsePenalty,
		HardPenalty:       s.HardPenalty,
		EasyBonus:         s.EasyBonus,
		HardMultiplier:    s.HardMultiplier,
		EasyMultiplier:    s.EasyMultiplier,
		FirstGoodInterval: s.FirstGoodInterval,
		LapseDelay:        s.LapseDelay,
		MaximumInterval:   s.MaximumInterval,
	}
}
