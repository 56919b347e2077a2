package utils

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	MQTT      MQTTConfig
	Scheduler SchedulerConfig
}

type AppConfig struct {
	Name    string
	Port    string
	Debug   bool
	LogPath string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	MaxConns int32
}

type MQTTConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	UseTLS   bool
}

type SchedulerConfig struct {
	BroadcastInterval time.Duration
	CleanupInterval   time.Duration
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("LOG_PATH", "logs/")
	viper.SetDefault("MQTT_PORT", 8883)
	viper.SetDefault("MQTT_TLS", true)
	viper.SetDefault("STATUS_BROADCAST_SECONDS", 30)
	viper.SetDefault("CLEANUP_MINUTES", 30)

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	viper.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:    viper.GetString("APP_NAME"),
			Port:    viper.GetString("PORT"),
			Debug:   viper.GetBool("DEBUG"),
			LogPath: viper.GetString("LOG_PATH"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASS"),
			MaxConns: viper.GetInt32("DB_MAX_CONNS"),
		},
		MQTT: MQTTConfig{
			Host:     viper.GetString("MQTT_HOST"),
			Port:     viper.GetInt("MQTT_PORT"),
			Username: viper.GetString("MQTT_USERNAME"),
			Password: viper.GetString("MQTT_PASSWORD"),
			UseTLS:   viper.GetBool("MQTT_TLS"),
		},
		Scheduler: SchedulerConfig{
			BroadcastInterval: time.Duration(viper.GetInt("STATUS_BROADCAST_SECONDS")) * time.Second,
			CleanupInterval:   time.Duration(viper.GetInt("CLEANUP_MINUTES")) * time.Minute,
		},
	}

	return config, nil
}
