package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config stores all configuration for the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	Pricing  PricingConfig
	Catalog  CatalogConfig
	Database DatabaseConfig
	Server   ServerConfig
	Feeds    map[string]FeedConfig
}

// PricingConfig defines the analytics engine parameters.
type PricingConfig struct {
	DefaultTargetMarginPct float64 `mapstructure:"default_target_margin_pct"`
	TopOpportunities       int     `mapstructure:"top_opportunities"`
}

// CatalogConfig locates the product-channel record file.
type CatalogConfig struct {
	Path string
}

// DatabaseConfig defines the database connection settings.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

// ConnString builds a pgx connection string from the settings.
func (d DatabaseConfig) ConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s", d.User, d.Password, d.Host, d.Port, d.DBName)
}

// ServerConfig defines the HTTP API listen settings.
type ServerConfig struct {
	Host string
	Port int
}

// FeedConfig defines settings for one competitor price feed.
type FeedConfig struct {
	URL     string `mapstructure:"url"`
	Enabled bool   `mapstructure:"enabled"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("pricing.default_target_margin_pct", 25.0)
	viper.SetDefault("pricing.top_opportunities", 3)
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	if config.Pricing.DefaultTargetMarginPct >= 100 || config.Pricing.DefaultTargetMarginPct < 0 {
		err = fmt.Errorf("pricing.default_target_margin_pct must be in [0, 100), got %v", config.Pricing.DefaultTargetMarginPct)
	}
	return
}
