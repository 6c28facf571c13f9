package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const DefaultAPIURL = "http://localhost:8000/api"

type Config struct {
	APIURL      string        `mapstructure:"api_url"`
	Port        string        `mapstructure:"port"`
	JWTSecret   string        `mapstructure:"jwt_secret"`
	RedisURL    string        `mapstructure:"redis_url"`
	DatabaseURL string        `mapstructure:"database_url"`
	TokenStore  string        `mapstructure:"token_store"`
	TokenFile   string        `mapstructure:"token_file"`
	SessionIdle time.Duration `mapstructure:"session_idle"`
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`
	LogLevel    string        `mapstructure:"log_level"`
	Env         string        `mapstructure:"env"`
	CORSOrigins string        `mapstructure:"cors_origins"`
}

func (c Config) Production() bool {
	return c.Env == "production"
}

// Load reads evex.yaml (if any) and then the environment. Env always wins.
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("api_url", DefaultAPIURL)
	v.SetDefault("port", "8082")
	v.SetDefault("jwt_secret", "dev-secret-key-change-in-production")
	v.SetDefault("token_store", "memory")
	v.SetDefault("token_file", defaultTokenFile())
	v.SetDefault("session_idle", 30*time.Minute)
	v.SetDefault("http_timeout", time.Duration(0))
	v.SetDefault("log_level", "info")
	v.SetDefault("cors_origins", "http://localhost:3000")

	v.SetConfigName("evex")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".evex"))
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, err
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("api_url", "EVEX_API_URL", "NEXT_PUBLIC_API_URL")
	_ = v.BindEnv("port", "PORT")
	_ = v.BindEnv("jwt_secret", "JWT_SECRET")
	_ = v.BindEnv("redis_url", "REDIS_URL")
	_ = v.BindEnv("database_url", "DATABASE_URL")
	_ = v.BindEnv("token_store", "EVEX_TOKEN_STORE")
	_ = v.BindEnv("token_file", "EVEX_TOKEN_FILE")
	_ = v.BindEnv("session_idle", "EVEX_SESSION_IDLE")
	_ = v.BindEnv("http_timeout", "EVEX_HTTP_TIMEOUT")
	_ = v.BindEnv("log_level", "EVEX_LOG_LEVEL")
	_ = v.BindEnv("env", "GO_ENV")
	_ = v.BindEnv("cors_origins", "CORS_ORIGINS")

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, err
	}
	c.APIURL = strings.TrimRight(c.APIURL, "/")
	return c, nil
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".evex-session.json"
	}
	return filepath.Join(home, ".evex", "session.json")
}
