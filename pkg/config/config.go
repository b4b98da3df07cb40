package config

import (
	"errors"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port string
	Env  string

	DatabaseDriver    string
	PostgresUrl       string
	SqlitePath        string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration

	SearchBackend string
	SearchTimeout time.Duration
	MongoURI      string
	MongoDatabase string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	SessionSecret string
	SessionTTL    time.Duration
	PostsPerPage  int

	LogLevel  string
	LogFormat string
}

const (
	DriverSqlite   = "sqlite"
	DriverPostgres = "postgres"

	SearchMongo  = "mongo"
	SearchMemory = "memory"
	SearchNone   = "none"
)

// Load reads .env (if present), an optional config.yaml and the process environment.
// Environment variables win over the file.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("config: no .env file found, assuming environment variables are set")
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			slog.Warn("config: unable to read config file, using environment only", "error", err)
		}
	}

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("env", "development")
	v.SetDefault("database_driver", DriverSqlite)
	v.SetDefault("postgres_url", "")
	v.SetDefault("sqlite_path", "groupnet.db")
	v.SetDefault("db_max_open_conns", 25)
	v.SetDefault("db_max_idle_conns", 5)
	v.SetDefault("db_conn_max_lifetime", time.Hour)
	v.SetDefault("search_backend", SearchMemory)
	v.SetDefault("search_timeout", 3*time.Second)
	v.SetDefault("mongo_uri", "")
	v.SetDefault("mongo_database", "groupnet")
	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("session_secret", "very-excellent-password")
	v.SetDefault("session_ttl", 72*time.Hour)
	v.SetDefault("posts_per_page", 5)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{
		Port:              v.GetString("port"),
		Env:               v.GetString("env"),
		DatabaseDriver:    v.GetString("database_driver"),
		PostgresUrl:       v.GetString("postgres_url"),
		SqlitePath:        v.GetString("sqlite_path"),
		DBMaxOpenConns:    v.GetInt("db_max_open_conns"),
		DBMaxIdleConns:    v.GetInt("db_max_idle_conns"),
		DBConnMaxLifetime: v.GetDuration("db_conn_max_lifetime"),
		SearchBackend:     v.GetString("search_backend"),
		SearchTimeout:     v.GetDuration("search_timeout"),
		MongoURI:          v.GetString("mongo_uri"),
		MongoDatabase:     v.GetString("mongo_database"),
		RedisAddr:         v.GetString("redis_addr"),
		RedisPassword:     v.GetString("redis_password"),
		RedisDB:           v.GetInt("redis_db"),
		SessionSecret:     v.GetString("session_secret"),
		SessionTTL:        v.GetDuration("session_ttl"),
		PostsPerPage:      v.GetInt("posts_per_page"),
		LogLevel:          v.GetString("log_level"),
		LogFormat:         v.GetString("log_format"),
	}
	if cfg.PostsPerPage <= 0 {
		cfg.PostsPerPage = 5
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 72 * time.Hour
	}
	return cfg
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
