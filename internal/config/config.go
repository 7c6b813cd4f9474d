package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Scrape   ScrapeConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
}

type ScrapeConfig struct {
	Stores            []string
	UserAgent         string
	Timeout           time.Duration
	RequestsPerSecond int
	StartPage         int
	Pages             int
	BiblusiCategory   int
}

func Load() *Config {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("SCRAPE_STORES", []string{"biblusi", "parnasi"})
	viper.SetDefault("SCRAPE_USER_AGENT", "Mozilla/5.0 (compatible; bookscoutBot/0.1)")
	viper.SetDefault("SCRAPE_TIMEOUT", "25s")
	viper.SetDefault("SCRAPE_REQUESTS_PER_SECOND", 4)
	viper.SetDefault("SCRAPE_START_PAGE", 1)
	viper.SetDefault("SCRAPE_PAGES", 2)
	viper.SetDefault("SCRAPE_BIBLUSI_CATEGORY", 291)

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	return &Config{
		Server: ServerConfig{
			Port: viper.GetString("SERVER_PORT"),
			Env:  viper.GetString("SERVER_ENV"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Database: viper.GetString("DB_DATABASE"),
			SSLMode:  viper.GetString("DB_SSLMODE"),
		},
		Scrape: ScrapeConfig{
			Stores:            viper.GetStringSlice("SCRAPE_STORES"),
			UserAgent:         viper.GetString("SCRAPE_USER_AGENT"),
			Timeout:           viper.GetDuration("SCRAPE_TIMEOUT"),
			RequestsPerSecond: viper.GetInt("SCRAPE_REQUESTS_PER_SECOND"),
			StartPage:         viper.GetInt("SCRAPE_START_PAGE"),
			Pages:             viper.GetInt("SCRAPE_PAGES"),
			BiblusiCategory:   viper.GetInt("SCRAPE_BIBLUSI_CATEGORY"),
		},
	}
}
