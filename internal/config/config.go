package config

import (
	"log/slog"

	"github.com/spf13/viper"
)

type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

type SRSConfig struct {
	NewWordsPerDay  int `mapstructure:"new_words_per_day"`
	ReviewsPerDay   int `mapstructure:"reviews_per_day"`
	DeckOverflowMax int `mapstructure:"deck_overflow_max"`
	DeckCutSize     int `mapstructure:"deck_cut_size"`
}

type AppConfig struct {
	DefaultTimezone       string   `mapstructure:"default_timezone"`
	CacheTTLSeconds       int      `mapstructure:"cache_ttl_seconds"`
	AdminUserIDs          []string `mapstructure:"admin_user_ids"`
	NotificationStartHour int      `mapstructure:"notification_start_hour"`
	NotificationEndHour   int      `mapstructure:"notification_end_hour"`
}

type JWTConfig struct {
	SecretKey string `mapstructure:"secret_key"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Server   ServerConfig   `mapstructure:"server"`
	SRS      SRSConfig      `mapstructure:"srs"`
	App      AppConfig      `mapstructure:"app"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Log      LogConfig      `mapstructure:"log"`
}

// Load reads config.yaml from the given paths, with APP_-prefixed environment
// overrides, and applies defaults for anything unset.
func Load(paths ...string) (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	for _, p := range paths {
		viper.AddConfigPath(p)
	}
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("APP")
	viper.AutomaticEnv()
	viper.BindEnv("database.url", "DATABASE_URL")
	viper.BindEnv("jwt.secret_key", "JWT_SECRET_KEY")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			slog.Warn("Config file not found, using defaults and environment")
		} else {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = DefaultServerPort
	}
	if c.SRS.NewWordsPerDay <= 0 {
		c.SRS.NewWordsPerDay = DefaultNewWordsPerDay
	}
	if c.SRS.ReviewsPerDay <= 0 {
		c.SRS.ReviewsPerDay = DefaultReviewsPerDay
	}
	if c.SRS.DeckOverflowMax <= 0 {
		c.SRS.DeckOverflowMax = DefaultDeckOverflowMax
	}
	if c.SRS.DeckCutSize <= 0 {
		c.SRS.DeckCutSize = DefaultDeckCutSize
	}
	if c.App.DefaultTimezone == "" {
		c.App.DefaultTimezone = DefaultTimezone
	}
	if c.App.CacheTTLSeconds <= 0 {
		c.App.CacheTTLSeconds = DefaultCacheTTLSeconds
	}
	if c.App.NotificationStartHour <= 0 {
		c.App.NotificationStartHour = DefaultNotificationStartHour
	}
	if c.App.NotificationEndHour <= 0 {
		c.App.NotificationEndHour = DefaultNotificationEndHour
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
}
