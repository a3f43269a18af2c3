package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
	"github.com/wb-go/wbf/zlog"
)

// Config holds the main configuration for the application.
type Config struct {
	Mode     string   `mapstructure:"mode"` // "batch" (one-shot) or "consume" (Kafka-driven)
	Batch    Batch    `mapstructure:"batch"`
	Kafka    Kafka    `mapstructure:"kafka"`
	Storage  Storage  `mapstructure:"storage"`
	Database Database `mapstructure:"database"`
	Retry    Retry    `mapstructure:"retry"`
}

// Batch holds the parameters of a one-shot batch run.
type Batch struct {
	InputDir  string `mapstructure:"input_dir"`  // directory with source images
	OutputDir string `mapstructure:"output_dir"` // directory for processed images
	Profile   string `mapstructure:"profile"`    // transform profile name
	Workers   int    `mapstructure:"workers"`    // 0 derives the pool size from cores

	WatermarkText string `mapstructure:"watermark_text"` // empty disables the watermark step
	WatermarkFont string `mapstructure:"watermark_font"` // TTF path; empty uses the built-in face
}

// Kafka holds configuration for the Kafka message queue.
type Kafka struct {
	Enabled      bool     `mapstructure:"enabled"`
	GroupID      string   `mapstructure:"group_id"`      // consumer group ID
	RequestTopic string   `mapstructure:"request_topic"` // batch request topic
	EventTopic   string   `mapstructure:"event_topic"`   // result event topic
	Brokers      []string `mapstructure:"brokers"`       // list of Kafka broker addresses
}

// Storage holds configuration for the processed-file mirror backend.
type Storage struct {
	Enabled    bool   `mapstructure:"enabled"`
	Endpoint   string `mapstructure:"endpoint"`
	AccessKey  string `mapstructure:"access_key"`
	SecretKey  string `mapstructure:"secret_key"`
	BucketName string `mapstructure:"bucket_name"`
	UseSSL     bool   `mapstructure:"use_ssl"`
}

// Database holds run-history database configuration.
type Database struct {
	Enabled bool           `mapstructure:"enabled"`
	Master  DatabaseNode   `mapstructure:"master"`
	Slaves  []DatabaseNode `mapstructure:"slaves"`

	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DatabaseNode holds connection parameters for a single database node.
type DatabaseNode struct {
	Host    string `mapstructure:"host"`
	Port    string `mapstructure:"port"`
	User    string `mapstructure:"user"`
	Pass    string `mapstructure:"pass"`
	Name    string `mapstructure:"name"`
	SSLMode string `mapstructure:"ssl_mode"`
}

// Retry defines retry policy configuration for external calls.
type Retry struct {
	Attempts int           `mapstructure:"attempts"` // number of retry attempts
	Delay    time.Duration `mapstructure:"delay"`    // initial delay between retries
	Backoff  float64       `mapstructure:"backoff"`  // backoff multiplier for delays
}

// DSN returns the PostgreSQL DSN string for connecting to this database node.
func (n DatabaseNode) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		n.User, n.Pass, n.Host, n.Port, n.Name, n.SSLMode,
	)
}

// mustBindEnv binds critical environment variables to Viper keys.
//
// It panics if any environment variable cannot be bound.
func mustBindEnv() {
	bindings := map[string]string{
		"database.master.host": "DB_HOST",
		"database.master.port": "DB_PORT",
		"database.master.user": "DB_USER",
		"database.master.pass": "DB_PASSWORD",
		"database.master.name": "DB_NAME",
		"storage.access_key":   "STORAGE_ACCESS_KEY",
		"storage.secret_key":   "STORAGE_SECRET_KEY",
	}

	for key, env := range bindings {
		if err := viper.BindEnv(key, env); err != nil {
			zlog.Logger.Panic().Err(err).Msgf("failed to bind env %s", env)
		}
	}
}

// MustLoad loads the configuration from the specified file path.
// It panics if the configuration file cannot be loaded or unmarshaled.
func MustLoad(path string) *Config {
	viper.SetConfigFile(path)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		zlog.Logger.Panic().Err(err).Msg("failed to read config")
	}

	mustBindEnv()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		zlog.Logger.Panic().Err(err).Msgf("failed to unmarshal config: %v", err)
	}

	return &cfg
}
