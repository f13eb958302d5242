package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	NATS     NATSConfig     `mapstructure:"nats"`
	Neo4J    Neo4JConfig    `mapstructure:"neo4j"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Graph    GraphConfig    `mapstructure:"graph"`
	Topology TopologyConfig `mapstructure:"topology"`
}

// AppConfig represents application-specific configuration
type AppConfig struct {
	Env            string `mapstructure:"env"`
	LogLevel       string `mapstructure:"log_level"`
	WorkerPoolSize int    `mapstructure:"worker_pool_size"`
}

// HTTPConfig represents the API server configuration
type HTTPConfig struct {
	Port           int           `mapstructure:"port"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
}

// NATSConfig represents NATS configuration for extraction-result intake
type NATSConfig struct {
	URL                string        `mapstructure:"url"`
	StreamName         string        `mapstructure:"stream_name"`
	SubjectPrefix      string        `mapstructure:"subject_prefix"`
	ConsumerGroup      string        `mapstructure:"consumer_group"`
	ConnectTimeout     time.Duration `mapstructure:"connect_timeout"`
	ReconnectAttempts  int           `mapstructure:"reconnect_attempts"`
	ReconnectDelay     time.Duration `mapstructure:"reconnect_delay"`
	MaxPendingMessages int           `mapstructure:"max_pending_messages"`
	Enabled            bool          `mapstructure:"enabled"`
}

// Neo4JConfig represents Neo4J configuration
type Neo4JConfig struct {
	URI                          string        `mapstructure:"uri"`
	Username                     string        `mapstructure:"username"`
	Password                     string        `mapstructure:"password"`
	Database                     string        `mapstructure:"database"`
	ConnectTimeout               time.Duration `mapstructure:"connect_timeout"`
	MaxConnectionPoolSize        int           `mapstructure:"max_connection_pool_size"`
	ConnectionAcquisitionTimeout time.Duration `mapstructure:"connection_acquisition_timeout"`
}

// StorageConfig represents the S3-compatible evidence image store
type StorageConfig struct {
	Endpoint  string        `mapstructure:"endpoint"`
	Region    string        `mapstructure:"region"`
	AccessKey string        `mapstructure:"access_key"`
	SecretKey string        `mapstructure:"secret_key"`
	Bucket    string        `mapstructure:"bucket"`
	URLExpiry time.Duration `mapstructure:"url_expiry"`
	Enabled   bool          `mapstructure:"enabled"`
}

// GraphConfig represents graph reader behavior
type GraphConfig struct {
	// GlobalAggregates computes per-account connection/transaction/amount
	// aggregates over the whole edge set instead of the filtered subgraph.
	GlobalAggregates bool `mapstructure:"global_aggregates"`
}

// TopologyConfig represents synthetic network generation defaults
type TopologyConfig struct {
	RequiredBank string `mapstructure:"required_bank"`
}

// Load loads configuration from environment variables and files
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/suspicious-account-graph")

	// Environment variables
	viper.AutomaticEnv()
	viper.SetEnvPrefix("")

	// Map environment variables to nested config keys
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Default values
	setDefaults()

	// Read config file if exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// App defaults
	viper.SetDefault("app.env", "development")
	viper.SetDefault("app.log_level", "info")
	viper.SetDefault("app.worker_pool_size", 4)

	// HTTP defaults
	viper.SetDefault("http.port", 8080)
	viper.SetDefault("http.allowed_origins", []string{"*"})
	viper.SetDefault("http.read_timeout", "15s")
	viper.SetDefault("http.write_timeout", "30s")

	// NATS defaults
	viper.SetDefault("nats.url", "nats://localhost:4222")
	viper.SetDefault("nats.stream_name", "EXTRACTIONS")
	viper.SetDefault("nats.subject_prefix", "extractions")
	viper.SetDefault("nats.consumer_group", "account-graph")
	viper.SetDefault("nats.connect_timeout", "10s")
	viper.SetDefault("nats.reconnect_attempts", 5)
	viper.SetDefault("nats.reconnect_delay", "2s")
	viper.SetDefault("nats.max_pending_messages", 1000)
	viper.SetDefault("nats.enabled", true)

	// Neo4J defaults
	viper.SetDefault("neo4j.uri", "neo4j://localhost:7687")
	viper.SetDefault("neo4j.username", "neo4j")
	viper.SetDefault("neo4j.password", "password")
	viper.SetDefault("neo4j.database", "neo4j")
	viper.SetDefault("neo4j.connect_timeout", "10s")
	viper.SetDefault("neo4j.max_connection_pool_size", 50)
	viper.SetDefault("neo4j.connection_acquisition_timeout", "60s")

	// Storage defaults
	viper.SetDefault("storage.region", "us-west-1")
	viper.SetDefault("storage.url_expiry", "1h")
	viper.SetDefault("storage.enabled", false)

	// Graph defaults
	viper.SetDefault("graph.global_aggregates", true)

	// Topology defaults
	viper.SetDefault("topology.required_bank", "BCA")

	// Bind env for NATS URL
	viper.BindEnv("nats.url", "NATS_URL")
}
