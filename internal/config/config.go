package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Database   DatabaseConfig   `mapstructure:"database"`
	Mongo      MongoConfig      `mapstructure:"mongo"`
	GRPC       GRPCConfig       `mapstructure:"grpc"`
	HTTP       HTTPConfig       `mapstructure:"http"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Scheduling SchedulingConfig `mapstructure:"scheduling"`
}

// DatabaseConfig selects the store backend.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // "sqlite" or "mongo"
	Path   string `mapstructure:"path"`   // SQLite database file path
}

// MongoConfig is used when Database.Driver is "mongo".
type MongoConfig struct {
	URI          string `mapstructure:"uri"`
	DBName       string `mapstructure:"db_name"`
	Transactions bool   `mapstructure:"transactions"` // requires a replica set
}

// GRPCConfig contains gRPC server settings.
type GRPCConfig struct {
	Address string `mapstructure:"address"` // e.g. ":50051"
}

// HTTPConfig contains REST server settings.
type HTTPConfig struct {
	Address     string   `mapstructure:"address"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// AuthConfig contains authentication settings.
type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

// SchedulingConfig tunes the booking rules.
type SchedulingConfig struct {
	MissionDuration time.Duration `mapstructure:"mission_duration"`
	ConflictMode    string        `mapstructure:"conflict_mode"`
}

const devSecret = "dev-secret-change-me"

const (
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"
)

var envKeys = map[string]string{
	"database.driver":             "DB_DRIVER",
	"database.path":               "DB_PATH",
	"mongo.uri":                   "MONGO_URI",
	"mongo.db_name":               "MONGO_DBNAME",
	"mongo.transactions":          "MONGO_TRANSACTIONS",
	"grpc.address":                "GRPC_ADDRESS",
	"http.address":                "HTTP_ADDRESS",
	"http.cors_origins":           "HTTP_CORS_ORIGINS",
	"auth.jwt_secret":             "JWT_SECRET",
	"auth.token_ttl":              "JWT_TTL",
	"scheduling.mission_duration": "MISSION_DURATION",
	"scheduling.conflict_mode":    "CONFLICT_MODE",
}

// Load reads .env (if present), an optional config.yaml and the environment.
// JWT_SECRET is required.
func Load() (*Config, error) {
	cfg, err := load("")
	if err != nil {
		return nil, err
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is not set; required for production")
	}
	return cfg, nil
}

// LoadWithDefaults is like Load but uses a safe default for JWT_SECRET in development.
// WARNING: Only use in development! Use Load() in production.
func LoadWithDefaults() (*Config, error) {
	return load(devSecret)
}

func load(secretDefault string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.path", "fleethq.db")
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.db_name", "fleethq")
	v.SetDefault("mongo.transactions", false)
	v.SetDefault("grpc.address", ":50051")
	v.SetDefault("http.address", ":8080")
	v.SetDefault("http.cors_origins", []string{"*"})
	v.SetDefault("auth.jwt_secret", secretDefault)
	v.SetDefault("auth.token_ttl", "24h")
	v.SetDefault("scheduling.mission_duration", "1h")
	v.SetDefault("scheduling.conflict_mode", "overlap")
	for key, env := range envKeys {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	// env values are split on commas but not trimmed
	cfg.HTTP.CORSOrigins = splitList(strings.Join(cfg.HTTP.CORSOrigins, ","))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings that have a closed set of values.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite, DriverMongo:
	default:
		return fmt.Errorf("unknown database driver %q (want sqlite or mongo)", c.Database.Driver)
	}
	if c.Scheduling.MissionDuration <= 0 {
		return fmt.Errorf("mission duration must be positive, got %s", c.Scheduling.MissionDuration)
	}
	switch c.Scheduling.ConflictMode {
	case "overlap", "exact":
	default:
		return fmt.Errorf("unknown conflict mode %q (want overlap or exact)", c.Scheduling.ConflictMode)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// String returns a string representation of the config (sensitive values are masked).
func (c *Config) String() string {
	store := c.Database.Path
	if c.Database.Driver == DriverMongo {
		store = c.Mongo.DBName
	}
	return fmt.Sprintf("Config{DB: %s(%s), gRPC: %s, HTTP: %s, mission: %s/%s, Auth: *** (masked) ***}",
		c.Database.Driver, store, c.GRPC.Address, c.HTTP.Address, c.Scheduling.MissionDuration, c.Scheduling.ConflictMode)
}
