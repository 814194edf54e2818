package model

import "time"

// GuildRoleConfig 定义了每个服务器用于执行限制的身份组
type GuildRoleConfig struct {
	Name             string   `mapstructure:"name" json:"name"`
	SilenceRoleID    string   `mapstructure:"silence_role_id" json:"silence_role_id"`
	IsolationRoleID  string   `mapstructure:"isolation_role_id" json:"isolation_role_id"`
	ModeratorRoleIDs []string `mapstructure:"moderator_role_ids" json:"moderator_role_ids"`
}

// EvidenceConfig controls the on-disk evidence store and its retention sweep.
type EvidenceConfig struct {
	Path       string `mapstructure:"path"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// GatewayConfig bounds calls to the platform action gateway.
type GatewayConfig struct {
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxAttempts int           `mapstructure:"max_attempts"`
	BaseBackoff time.Duration `mapstructure:"base_backoff"`
}

// StatsChannelConfig is one channel that receives the periodic
// moderator leaderboard embed.
type StatsChannelConfig struct {
	ChannelID     string `mapstructure:"channel_id" json:"channel_id"`
	MessageID     string `mapstructure:"message_id" json:"message_id"`
	TargetGuildID string `mapstructure:"target_guild_id" json:"target_guild_id"`
}

// Config 存储应用程序的配置
type Config struct {
	BotToken                 string
	AppID                    string
	LogLevel                 string
	CaseDBPath               string
	RestrictionDBPath        string
	Evidence                 EvidenceConfig
	Gateway                  GatewayConfig
	GuildRoles               map[string]GuildRoleConfig // keyed by guild ID
	StatsChannels            []StatsChannelConfig
	StatsInterval            time.Duration
	StatsPeriod              time.Duration
	DisableCommandUnregister bool
}
