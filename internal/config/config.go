package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 服务配置；yaml 文件 + 环境变量（GIFTSHOP_ 前缀）覆盖
type Config struct {
	Server struct {
		Addr  string `mapstructure:"addr"`
		Debug bool   `mapstructure:"debug"`
	} `mapstructure:"server"`

	Database struct {
		Driver string `mapstructure:"driver"` // postgres / sqlite
		DSN    string `mapstructure:"dsn"`
	} `mapstructure:"database"`

	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`

	Auth struct {
		JWTSecret  string        `mapstructure:"jwt_secret"`
		SessionTTL time.Duration `mapstructure:"session_ttl"`
		LoginRate  float64       `mapstructure:"login_rate"`  // 每秒允许的登录尝试
		LoginBurst int           `mapstructure:"login_burst"` // 突发容量
	} `mapstructure:"auth"`

	Cache struct {
		ListTTL time.Duration `mapstructure:"list_ttl"`
	} `mapstructure:"cache"`

	Sentry struct {
		DSN string `mapstructure:"dsn"`
	} `mapstructure:"sentry"`

	Otel struct {
		Endpoint string `mapstructure:"endpoint"`
	} `mapstructure:"otel"`
}

// Load 读取配置文件（可选）并应用环境变量覆盖
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.debug", false)
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.dsn", "host=localhost user=postgres password=postgres dbname=giftshop port=5432 sslmode=disable")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("auth.jwt_secret", "dev-secret-change-me")
	v.SetDefault("auth.session_ttl", 24*time.Hour)
	v.SetDefault("auth.login_rate", 1.0)
	v.SetDefault("auth.login_burst", 5)
	v.SetDefault("cache.list_ttl", 30*time.Second)

	v.SetEnvPrefix("GIFTSHOP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}
