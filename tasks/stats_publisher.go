package tasks

import (
	"fmt"
	"strings"
	"time"

	"mod-ledger/ledger"
	"mod-ledger/model"
	"mod-ledger/stats"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// StatsPublisher periodically renders the moderation stats report into
// a leaderboard embed and keeps one pinned message per configured
// channel up to date.
type StatsPublisher struct {
	session  *discordgo.Session
	ledger   *ledger.Ledger
	channels []model.StatsChannelConfig
	period   time.Duration
	log      *zap.Logger
}

func NewStatsPublisher(session *discordgo.Session, l *ledger.Ledger, channels []model.StatsChannelConfig, period time.Duration, log *zap.Logger) *StatsPublisher {
	return &StatsPublisher{
		session:  session,
		ledger:   l,
		channels: channels,
		period:   period,
		log:      log,
	}
}

// PublishAll refreshes every configured stats channel.
func (p *StatsPublisher) PublishAll() {
	for i := range p.channels {
		if err := p.publish(&p.channels[i]); err != nil {
			p.log.Error("failed to publish stats embed",
				zap.String("channel_id", p.channels[i].ChannelID),
				zap.Error(err))
		}
	}
}

func (p *StatsPublisher) publish(ch *model.StatsChannelConfig) error {
	embed, err := p.GenerateStatsEmbed(ch.TargetGuildID)
	if err != nil {
		return err
	}

	if ch.MessageID == "" {
		msg, err := p.session.ChannelMessageSendEmbed(ch.ChannelID, embed)
		if err != nil {
			return fmt.Errorf("failed to send stats message to channel %s: %w", ch.ChannelID, err)
		}
		ch.MessageID = msg.ID
		return nil
	}

	if _, err := p.session.ChannelMessageEditEmbed(ch.ChannelID, ch.MessageID, embed); err != nil {
		return fmt.Errorf("failed to edit stats message %s in channel %s: %w", ch.MessageID, ch.ChannelID, err)
	}
	return nil
}

// GenerateStatsEmbed renders the ledger stats for a guild as an embed.
func (p *StatsPublisher) GenerateStatsEmbed(guildID string) (*discordgo.MessageEmbed, error) {
	records, err := p.ledger.ListAll(guildID)
	if err != nil {
		return nil, err
	}
	report := stats.Compute(records, guildID, p.period, time.Now())

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("### 过去 %s 内处罚统计\n", p.period.String()))
	builder.WriteString(fmt.Sprintf("**总计: %d** (未结 %d / 已结 %d, 结案率 %.1f%%)\n\n", report.TotalCases, report.OpenCases, report.ResolvedCases, report.ResolutionRate))
	builder.WriteString("**管理员击杀榜:**\n")
	for i, mod := range report.TopModerators {
		builder.WriteString(fmt.Sprintf("%d. <@%s>: %d\n", i+1, mod.ModeratorID, mod.Count))
	}

	embed := &discordgo.MessageEmbed{
		Title:       "处罚排行榜",
		Description: builder.String(),
		Timestamp:   time.Now().Format(time.RFC3339),
		Color:       0x00ff00,
	}
	return embed, nil
}
