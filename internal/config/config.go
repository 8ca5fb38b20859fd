package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

type Config struct {
	DiscordToken string        `yaml:"discord_token"`
	GuildID      string        `yaml:"guild_id"`
	DataDir      string        `yaml:"data_dir"`
	LogLevel     string        `yaml:"log_level"`
	Channels     ChannelConfig `yaml:"channels"`
	Roles        RoleConfig    `yaml:"roles"`
	Twitch       TwitchConfig  `yaml:"twitch"`
	Socials      SocialConfig  `yaml:"socials"`
	Polling      PollingConfig `yaml:"polling"`
}

type ChannelConfig struct {
	Suggestions   string `yaml:"suggestions"`
	TwitchPings   string `yaml:"twitch_pings"`
	ModerationLog string `yaml:"moderation_log"`
	Welcome       string `yaml:"welcome"`
}

type RoleConfig struct {
	Member string `yaml:"member"`
	Warn1  string `yaml:"warn1"`
	Warn2  string `yaml:"warn2"`
}

type TwitchConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	Login        string `yaml:"login"`
}

type SocialConfig struct {
	Instagram string `yaml:"instagram"`
	TikTok    string `yaml:"tiktok"`
	Twitter   string `yaml:"twitter"`
	YouTube   string `yaml:"youtube"`
}

type PollingConfig struct {
	StatusSeconds       int `yaml:"status_seconds"`
	CountersMinutes     int `yaml:"counters_minutes"`
	TokenRefreshMinutes int `yaml:"token_refresh_minutes"`
}

func DefaultConfig() Config {
	return Config{
		DataDir:  "data",
		LogLevel: "info",
		Polling: PollingConfig{
			StatusSeconds:       10,
			CountersMinutes:     10,
			TokenRefreshMinutes: 60,
		},
	}
}

func Load() (Config, error) {
	cfg := DefaultConfig()

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, err
		}
	}

	applyEnv(&cfg)
	if cfg.DiscordToken == "" {
		return Config{}, errors.New("DISCORD_TOKEN is required")
	}
	if cfg.Polling.StatusSeconds <= 0 {
		cfg.Polling.StatusSeconds = 10
	}
	if cfg.Polling.CountersMinutes <= 0 {
		cfg.Polling.CountersMinutes = 10
	}
	if cfg.Polling.TokenRefreshMinutes <= 0 {
		cfg.Polling.TokenRefreshMinutes = 60
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.DiscordToken = envString("DISCORD_TOKEN", cfg.DiscordToken)
	cfg.GuildID = envString("GUILD_ID", cfg.GuildID)
	cfg.DataDir = envString("DATA_DIR", cfg.DataDir)
	cfg.LogLevel = envString("LOG_LEVEL", cfg.LogLevel)
	cfg.Channels.Suggestions = envString("CHANNEL_SUGGESTIONS", cfg.Channels.Suggestions)
	cfg.Channels.TwitchPings = envString("CHANNEL_TWITCH_PINGS", cfg.Channels.TwitchPings)
	cfg.Channels.ModerationLog = envString("CHANNEL_MODERATION_LOG", cfg.Channels.ModerationLog)
	cfg.Channels.Welcome = envString("CHANNEL_WELCOME", cfg.Channels.Welcome)
	cfg.Roles.Member = envString("ROLE_MEMBER", cfg.Roles.Member)
	cfg.Roles.Warn1 = envString("ROLE_WARN1", cfg.Roles.Warn1)
	cfg.Roles.Warn2 = envString("ROLE_WARN2", cfg.Roles.Warn2)
	cfg.Twitch.ClientID = envString("TWITCH_CLIENT_ID", cfg.Twitch.ClientID)
	cfg.Twitch.ClientSecret = envString("TWITCH_CLIENT_SECRET", cfg.Twitch.ClientSecret)
	cfg.Twitch.Login = envString("TWITCH_LOGIN", cfg.Twitch.Login)
	cfg.Socials.Instagram = envString("SOCIAL_INSTAGRAM", cfg.Socials.Instagram)
	cfg.Socials.TikTok = envString("SOCIAL_TIKTOK", cfg.Socials.TikTok)
	cfg.Socials.Twitter = envString("SOCIAL_TWITTER", cfg.Socials.Twitter)
	cfg.Socials.YouTube = envString("SOCIAL_YOUTUBE", cfg.Socials.YouTube)
	cfg.Polling.StatusSeconds = envInt("POLL_STATUS_SECONDS", cfg.Polling.StatusSeconds)
	cfg.Polling.CountersMinutes = envInt("POLL_COUNTERS_MINUTES", cfg.Polling.CountersMinutes)
	cfg.Polling.TokenRefreshMinutes = envInt("POLL_TOKEN_REFRESH_MINUTES", cfg.Polling.TokenRefreshMinutes)
}

func BuildLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "json"
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.MessageKey = "message"
	cfg.EncoderConfig.LevelKey = "level"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	lvl := strings.ToLower(level)
	switch lvl {
	case "debug", "info", "warn", "error":
		cfg.Level = zap.NewAtomicLevelAt(parseLevel(lvl))
	default:
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	return cfg.Build()
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func envString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}
