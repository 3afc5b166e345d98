package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port          string        `mapstructure:"PORT"`
	MySQLHost     string        `mapstructure:"MYSQL_HOST"`
	MySQLPort     string        `mapstructure:"MYSQL_PORT"`
	MySQLUser     string        `mapstructure:"MYSQL_USER"`
	MySQLPassword string        `mapstructure:"MYSQL_PASSWORD"`
	MySQLDB       string        `mapstructure:"MYSQL_DB"`
	SecretKey     string        `mapstructure:"SECRET_KEY"`
	RedisAddr     string        `mapstructure:"REDIS_ADDR"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	SessionTTL    time.Duration `mapstructure:"SESSION_TTL"`
	SecureCookie  bool          `mapstructure:"SECURE_COOKIE"`
	CORSOrigins   string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
	LogLevel      string        `mapstructure:"LOG_LEVEL"`
	GinMode       string        `mapstructure:"GIN_MODE"`
}

var defaults = map[string]any{
	"PORT":                 "5008",
	"MYSQL_HOST":           "localhost",
	"MYSQL_PORT":           "3306",
	"MYSQL_USER":           "root",
	"MYSQL_PASSWORD":       "",
	"MYSQL_DB":             "social_platform",
	"SECRET_KEY":           "friendcircle-secret-key-change-in-production",
	"REDIS_ADDR":           "localhost:6379",
	"REDIS_PASSWORD":       "",
	"SESSION_TTL":          24 * time.Hour,
	"SECURE_COOKIE":        false,
	"CORS_ALLOWED_ORIGINS": "http://localhost:5173,http://localhost:3000",
	"LOG_LEVEL":            "info",
	"GIN_MODE":             "release",
}

// Load reads an optional .env file, then the process environment.
// Every key needs a default, otherwise viper.Unmarshal skips it.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) ServerAddr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

func (c Config) AllowedOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(c.CORSOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
