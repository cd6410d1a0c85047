package config

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/mentorhub/signaling/internal/domain"
)

type AuthConfig struct {
	Secret   string `mapstructure:"secret"`
	Issuer   string `mapstructure:"issuer"`
	Audience string `mapstructure:"audience"`
}

type RateLimitConfig struct {
	JoinLimit    int           `mapstructure:"join_limit"`
	JoinInterval time.Duration `mapstructure:"join_interval"`
}

type Config struct {
	Mode           string             `mapstructure:"mode"`
	Port           int                `mapstructure:"port"`
	StaticPath     string             `mapstructure:"static_path"`
	ReadLimit      int64              `mapstructure:"read_limit"`
	PingPeriod     time.Duration      `mapstructure:"ping_period"`
	MetricsEnabled bool               `mapstructure:"metrics_enabled"`
	Auth           AuthConfig         `mapstructure:"auth"`
	RateLimit      RateLimitConfig    `mapstructure:"rate_limit"`
	Media          domain.MediaConfig `mapstructure:"media"`
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
	v.SetDefault("static_path", "./web")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("metrics_enabled", true)
	v.SetDefault("auth.issuer", "mentorhub")
	v.SetDefault("auth.audience", "signaling")
	v.SetDefault("rate_limit.join_limit", 10)
	v.SetDefault("rate_limit.join_interval", "10s")
	v.SetDefault("media.video.width", 1280)
	v.SetDefault("media.video.height", 720)
	v.SetDefault("media.video.frame_rate", 30)
	v.SetDefault("media.audio.enabled", true)
	v.SetDefault("media.audio.echo_cancellation", true)
	v.SetDefault("media.audio.noise_suppression", true)

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("file", fileName).Msg("loaded config")
	}

	// The shared secret can come from the environment in any mode.
	if secret := os.Getenv("AUTH_SECRET"); secret != "" {
		v.Set("auth.secret", secret)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
