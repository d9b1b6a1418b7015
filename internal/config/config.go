package config

import (
	"log"

	"github.com/spf13/viper"
)

type Database struct {
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	SSLMode  string `mapstructure:"ssl-mode"`
}

type Settlement struct {
	URL       string `mapstructure:"url"`
	Token     string `mapstructure:"token"`
	TimeoutMs int    `mapstructure:"timeout-ms"`
}

type AccountingAuth struct {
	PollIntervalMs int `mapstructure:"poll-interval-ms"`
	TimeoutMs      int `mapstructure:"timeout-ms"`
}

type AccountingSync struct {
	DefaultDaysBack int `mapstructure:"default-days-back"`
	MaxDaysBack     int `mapstructure:"max-days-back"`
}

type Accounting struct {
	URL       string         `mapstructure:"url"`
	Token     string         `mapstructure:"token"`
	TimeoutMs int            `mapstructure:"timeout-ms"`
	Auth      AccountingAuth `mapstructure:"auth"`
	Sync      AccountingSync `mapstructure:"sync"`
}

type KafkaWriter struct {
	BatchSize      int `mapstructure:"batch-size"`
	BatchTimeoutMs int `mapstructure:"batch-timeout-ms"`
}

type KafkaBroker struct {
	URL string `mapstructure:"url"`
}

type KafkaTopic struct {
	PaymentEvents    string `mapstructure:"payment-events"`
	SettlementEvents string `mapstructure:"settlement-events"`
}

type KafkaReader struct {
	GroupID string `mapstructure:"group-id"`
}

type Kafka struct {
	Writer KafkaWriter `mapstructure:"writer"`
	Broker KafkaBroker `mapstructure:"broker"`
	Topic  KafkaTopic  `mapstructure:"topic"`
	Reader KafkaReader `mapstructure:"reader"`
}

type Server struct {
	Port string `mapstructure:"port"`
}

type Metrics struct {
	URL          string `mapstructure:"url"`
	IntervalMs   int    `mapstructure:"interval-ms"`
	CommonLabels string `mapstructure:"common-labels"`
}

type Logs struct {
	URL string `mapstructure:"url"`
}

type Config struct {
	Database   Database   `mapstructure:"database"`
	Settlement Settlement `mapstructure:"settlement"`
	Accounting Accounting `mapstructure:"accounting"`
	Kafka      Kafka      `mapstructure:"kafka"`
	Server     Server     `mapstructure:"server"`
	Metrics    Metrics    `mapstructure:"metrics"`
	Logs       Logs       `mapstructure:"logs"`
}

func LoadConfig(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func MustLoadConfig(path string) *Config {
	config, err := LoadConfig(path)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	return config
}
