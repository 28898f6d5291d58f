package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all configuration for the application
type Config struct {
	Discord DiscordConfig
	Redis   RedisConfig
	Rules   RulesConfig
}

// DiscordConfig holds Discord-specific configuration
type DiscordConfig struct {
	Token    string
	AppID    string
	GuildID  string // Optional: for guild-specific commands
	GMUserID string // Optional: receives WhisperGM notices
}

// RedisConfig holds Redis-specific configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RulesConfig holds the house-rule toggles of the rules engine
type RulesConfig struct {
	// ClampFloor floors HP at zero inside the resource ledger. The
	// reference behavior clamps at the maximum only and leaves the floor
	// to display code, so this defaults off.
	ClampFloor bool

	// AutoReorder re-sorts the turn order after initiative changes
	AutoReorder bool

	// IgnoreLimitsOnMinions exempts minion classes from stamina costs
	// and limit checks
	IgnoreLimitsOnMinions bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Discord: DiscordConfig{
			Token:    os.Getenv("DISCORD_TOKEN"),
			AppID:    os.Getenv("DISCORD_APP_ID"),
			GuildID:  os.Getenv("DISCORD_GUILD_ID"),
			GMUserID: os.Getenv("DISCORD_GM_USER_ID"),
		},
		Redis: RedisConfig{
			Addr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getEnvAsIntOrDefault("REDIS_DB", 0),
		},
		Rules: RulesConfig{
			ClampFloor:            getEnvAsBool("RULES_CLAMP_FLOOR"),
			AutoReorder:           getEnvAsBool("RULES_AUTO_REORDER"),
			IgnoreLimitsOnMinions: getEnvAsBool("RULES_IGNORE_MINION_LIMITS"),
		},
	}

	// Validate required fields
	if cfg.Discord.Token == "" {
		return nil, fmt.Errorf("DISCORD_TOKEN is required")
	}
	if cfg.Discord.AppID == "" {
		return nil, fmt.Errorf("DISCORD_APP_ID is required")
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && value
}
