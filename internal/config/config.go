package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Mode   string `mapstructure:"mode"`
	Port   int    `mapstructure:"port"`
	Secret string `mapstructure:"secret"`

	// Grid constants shared with the client; not negotiated per-connection.
	Step           int `mapstructure:"step"`
	ProximityRange int `mapstructure:"proximity_range"`

	ChatMaxLen    int           `mapstructure:"chat_max_len"`
	ChatBurst     int           `mapstructure:"chat_burst"`
	ChatWindow    time.Duration `mapstructure:"chat_window"`
	ReadLimit     int64         `mapstructure:"read_limit"`
	PingPeriod    time.Duration `mapstructure:"ping_period"`
	SendBuffer    int           `mapstructure:"send_buffer"`
	DefaultAvatar string        `mapstructure:"default_avatar"`

	Catalog       string `mapstructure:"catalog"` // memory | redis
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("step", 32)
	v.SetDefault("proximity_range", 64)
	v.SetDefault("chat_max_len", 500)
	v.SetDefault("chat_burst", 20)
	v.SetDefault("chat_window", "10s")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("send_buffer", 64)
	v.SetDefault("default_avatar", "FemaleAdventurer")
	v.SetDefault("catalog", "memory")
	v.SetDefault("redis_addr", "localhost:6379")

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("⚠️ Config file not found (%s), using defaults\n", fileName)
	} else {
		fmt.Printf("✅ Loaded config: %s\n", fileName)
	}

	if secret := os.Getenv("PLAZA_SECRET"); secret != "" {
		v.Set("secret", secret)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	fmt.Printf("🧩 Mode: %s | Port: %d | Catalog: %s\n", cfg.Mode, cfg.Port, cfg.Catalog)
	return &cfg, nil
}
