package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Neo4j      Neo4jConfig      `mapstructure:"neo4j"`
	NATS       NATSConfig       `mapstructure:"nats"`
	CORS       CORSConfig       `mapstructure:"cors"`
	RateLimit  RateLimitConfig  `mapstructure:"ratelimit"`
	Logger     LoggerConfig     `mapstructure:"logger"`
	Assessment AssessmentConfig `mapstructure:"assessment"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	Version     string `mapstructure:"version"`
	Debug       bool   `mapstructure:"debug"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	HTTPPort        int           `mapstructure:"http_port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	Schema          string        `mapstructure:"schema"`
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s&search_path=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.Schema,
	)
}

type RedisConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type Neo4jConfig struct {
	Enabled            bool   `mapstructure:"enabled"`
	URI                string `mapstructure:"uri"`
	Username           string `mapstructure:"username"`
	Password           string `mapstructure:"password"`
	Database           string `mapstructure:"database"`
	MaxConnections     int    `mapstructure:"max_connections"`
	MaxLifetimeMinutes int    `mapstructure:"max_lifetime_minutes"`
}

type NATSConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	URL        string `mapstructure:"url"`
	StreamName string `mapstructure:"stream_name"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute"`
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	TimeFormat string `mapstructure:"time_format"`
}

// AssessmentConfig tunes the risk pipeline
type AssessmentConfig struct {
	AnalyzerTimeout time.Duration  `mapstructure:"analyzer_timeout"`
	ProbeTimeout    time.Duration  `mapstructure:"probe_timeout"`
	BaselineSize    int            `mapstructure:"baseline_size"`
	WindowHours     int            `mapstructure:"window_hours"`
	DecisionCacheTTL time.Duration `mapstructure:"decision_cache_ttl"`
	Weights         WeightsConfig  `mapstructure:"weights"`
}

// WeightsConfig holds the per-analyzer weights for the final combination
type WeightsConfig struct {
	Entity     float64 `mapstructure:"entity"`
	Legal      float64 `mapstructure:"legal"`
	Payment    float64 `mapstructure:"payment"`
	Behavioral float64 `mapstructure:"behavioral"`
	Network    float64 `mapstructure:"network"`
	Trust      float64 `mapstructure:"trust"`
}

// DefaultWeights returns the tuned default analyzer weights
func DefaultWeights() WeightsConfig {
	return WeightsConfig{
		Entity:     0.30,
		Legal:      0.15,
		Payment:    0.15,
		Behavioral: 0.15,
		Network:    0.15,
		Trust:      0.10,
	}
}

// Load reads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/vendorguard")
	}

	v.SetEnvPrefix("VENDORGUARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Bind nested env vars explicitly (viper doesn't auto-bind nested struct fields)
	v.BindEnv("redis.host", "VENDORGUARD_REDIS_HOST")
	v.BindEnv("redis.port", "VENDORGUARD_REDIS_PORT")
	v.BindEnv("redis.password", "VENDORGUARD_REDIS_PASSWORD")
	v.BindEnv("database.host", "VENDORGUARD_DATABASE_HOST")
	v.BindEnv("database.port", "VENDORGUARD_DATABASE_PORT")
	v.BindEnv("database.user", "VENDORGUARD_DATABASE_USER")
	v.BindEnv("database.password", "VENDORGUARD_DATABASE_PASSWORD")
	v.BindEnv("database.dbname", "VENDORGUARD_DATABASE_DBNAME")
	v.BindEnv("database.sslmode", "VENDORGUARD_DATABASE_SSLMODE")
	v.BindEnv("neo4j.enabled", "VENDORGUARD_NEO4J_ENABLED")
	v.BindEnv("nats.enabled", "VENDORGUARD_NATS_ENABLED")
	v.BindEnv("app.environment", "VENDORGUARD_APP_ENVIRONMENT")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine, env vars and defaults still apply
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Assessment.Weights == (WeightsConfig{}) {
		cfg.Assessment.Weights = DefaultWeights()
	}

	return &cfg, nil
}

// LoadDefault loads configuration with default path
func LoadDefault() (*Config, error) {
	return Load("")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "vendorguard")
	v.SetDefault("app.environment", "development")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.http_port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.schema", "public")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("redis.key_prefix", "vendorguard:")
	v.SetDefault("assessment.analyzer_timeout", 10*time.Second)
	v.SetDefault("assessment.probe_timeout", 5*time.Second)
	v.SetDefault("assessment.baseline_size", 500)
	v.SetDefault("assessment.window_hours", 24)
	v.SetDefault("assessment.decision_cache_ttl", time.Hour)
}
