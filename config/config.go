package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"mod-ledger/model"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load loads the configuration from the environment and an optional
// config file (config.yaml in the working directory or ./data).
func Load() (*model.Config, error) {
	// .env is optional; real deployments use plain environment variables.
	if err := godotenv.Load(); err != nil {
		log.Println("Info: .env file not found, relying on environment variables")
	}

	v := viper.New()
	v.SetEnvPrefix("MODLEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("log_level", "info")
	v.SetDefault("case_db_path", "data/cases.db")
	v.SetDefault("restriction_db_path", "data/restrictions.db")
	v.SetDefault("evidence.path", "data/evidence")
	v.SetDefault("evidence.max_age_days", 30)
	v.SetDefault("gateway.timeout", 10*time.Second)
	v.SetDefault("gateway.max_attempts", 3)
	v.SetDefault("gateway.base_backoff", 500*time.Millisecond)
	v.SetDefault("stats.interval", time.Hour)
	v.SetDefault("stats.period", 24*time.Hour)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("data")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	token := v.GetString("bot_token")
	if token == "" {
		return nil, fmt.Errorf("MODLEDGER_BOT_TOKEN is not set")
	}
	appID := v.GetString("app_id")
	if appID == "" {
		return nil, fmt.Errorf("MODLEDGER_APP_ID is not set")
	}

	cfg := &model.Config{
		BotToken:          token,
		AppID:             appID,
		LogLevel:          v.GetString("log_level"),
		CaseDBPath:        v.GetString("case_db_path"),
		RestrictionDBPath: v.GetString("restriction_db_path"),
		Evidence: model.EvidenceConfig{
			Path:       v.GetString("evidence.path"),
			MaxAgeDays: v.GetInt("evidence.max_age_days"),
		},
		Gateway: model.GatewayConfig{
			Timeout:     v.GetDuration("gateway.timeout"),
			MaxAttempts: v.GetInt("gateway.max_attempts"),
			BaseBackoff: v.GetDuration("gateway.base_backoff"),
		},
		StatsInterval:            v.GetDuration("stats.interval"),
		StatsPeriod:              v.GetDuration("stats.period"),
		DisableCommandUnregister: v.GetBool("disable_command_unregister"),
	}

	if err := v.UnmarshalKey("guild_roles", &cfg.GuildRoles); err != nil {
		return nil, fmt.Errorf("failed to parse guild_roles config: %w", err)
	}
	if err := v.UnmarshalKey("stats_channels", &cfg.StatsChannels); err != nil {
		return nil, fmt.Errorf("failed to parse stats_channels config: %w", err)
	}
	if cfg.GuildRoles == nil {
		cfg.GuildRoles = make(map[string]model.GuildRoleConfig)
	}

	if cfg.Gateway.MaxAttempts < 1 {
		cfg.Gateway.MaxAttempts = 1
	}

	return cfg, nil
}
