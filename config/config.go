package config

import (
	"github.com/spf13/viper"
)

// Config holds all runtime settings for the import service.
type Config struct {
	ServerPort        string `mapstructure:"server_port"`
	DocIntelURL       string `mapstructure:"docintel_url"`
	DocIntelAPIKey    string `mapstructure:"docintel_api_key"`
	PollIntervalMS    int    `mapstructure:"poll_interval_ms"`
	MaxPollAttempts   int    `mapstructure:"max_poll_attempts"`
	TesseractDataPath string `mapstructure:"tessdata_prefix"`
	MaxFileSize       int64  `mapstructure:"max_file_size"`
	LogLevel          string `mapstructure:"log_level"`
	LogFormat         string `mapstructure:"log_format"`
}

// LoadConfig reads settings from config.yaml and the environment. A missing
// config file is fine; defaults and environment variables cover everything.
func LoadConfig() (*Config, error) {
	viper.SetDefault("server_port", "8080")
	viper.SetDefault("docintel_url", "http://localhost:9090")
	viper.SetDefault("docintel_api_key", "")
	viper.SetDefault("poll_interval_ms", 1500)
	viper.SetDefault("max_poll_attempts", 20)
	viper.SetDefault("tessdata_prefix", "/usr/share/tesseract-ocr/4.00/tessdata")
	viper.SetDefault("max_file_size", 10*1024*1024)
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_format", "text")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
