package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig          `mapstructure:"server"`
	Database DatabaseConfig        `mapstructure:"database"`
	Redis    RedisConfig           `mapstructure:"redis"`
	JWT      JWTConfig             `mapstructure:"jwt"`
	Session  SessionConfig         `mapstructure:"session"`
	Admin    AdminConfig           `mapstructure:"admin"`
	Referral ReferralConfig        `mapstructure:"referral"`
	Plans    map[string]PlanConfig `mapstructure:"plans"`
	Email    EmailConfig           `mapstructure:"email"`
	Queue    QueueConfig           `mapstructure:"queue"`
	CORS     CORSConfig            `mapstructure:"cors"`
	Log      LogConfig             `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

// SessionConfig controls admin sessions kept in Redis.
type SessionConfig struct {
	TTLHours int `mapstructure:"ttl_hours"`
}

// AdminConfig is the bootstrap administrator created at startup when missing.
type AdminConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type ReferralConfig struct {
	MaxCodeAttempts       int     `mapstructure:"max_code_attempts"`
	DefaultCommissionRate float64 `mapstructure:"default_commission_rate"`
}

type PlanConfig struct {
	Price        float64 `mapstructure:"price"`
	DurationDays int     `mapstructure:"duration_days"`
}

type EmailConfig struct {
	SMTPHost string `mapstructure:"smtp_host"`
	SMTPPort int    `mapstructure:"smtp_port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type QueueConfig struct {
	NotificationQueue string `mapstructure:"notification_queue"`
	PopTimeoutSeconds int    `mapstructure:"pop_timeout_seconds"`
	Workers           int    `mapstructure:"workers"`
	MaxAttempts       int    `mapstructure:"max_attempts"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

func Load(configPath string) (*Config, error) {
	// .env is optional; real environment variables win over it
	_ = godotenv.Load()

	// config.local.yaml 包含真实密钥，不提交到 git
	dir := filepath.Dir(configPath)
	localConfigPath := filepath.Join(dir, "config.local.yaml")
	if _, err := os.Stat(localConfigPath); err == nil {
		configPath = localConfigPath
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	v.SetDefault("referral.max_code_attempts", 10)
	v.SetDefault("referral.default_commission_rate", 10)
	v.SetDefault("session.ttl_hours", 12)
	v.SetDefault("queue.notification_queue", "notifications")
	v.SetDefault("queue.pop_timeout_seconds", 5)
	v.SetDefault("queue.workers", 2)
	v.SetDefault("queue.max_attempts", 3)

	// 环境变量覆盖
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Plan looks up a plan by name.
func (c *Config) Plan(name string) (PlanConfig, bool) {
	p, ok := c.Plans[name]
	return p, ok
}
