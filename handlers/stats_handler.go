package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"mod-ledger/bot"
	"mod-ledger/model"
	"mod-ledger/utils"

	"github.com/bwmarrin/discordgo"
)

// HandleModStats renders the moderation stats report for the guild.
func HandleModStats(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	opts := optionMap(i)
	period := 24 * time.Hour
	periodLabel := "24h"
	if opt, ok := opts["period"]; ok {
		periodLabel = opt.StringValue()
		if periodLabel == "all" {
			period = 0
		} else {
			parsed, err := utils.ParseDuration(periodLabel)
			if err != nil {
				utils.SendEphemeralResponse(s, i, "❌ 无效的统计周期")
				return
			}
			period = parsed
		}
	}

	report, err := b.Service.GetStats(context.Background(), i.GuildID, period)
	if err != nil {
		utils.SendEphemeralResponse(s, i, "❌ "+translateError(err))
		return
	}

	embed := buildStatsEmbed(report, periodLabel)
	s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	})
}

func buildStatsEmbed(report *model.StatsReport, periodLabel string) *discordgo.MessageEmbed {
	var severity strings.Builder
	for _, sev := range []model.Severity{model.SeverityLow, model.SeverityMedium, model.SeverityHigh, model.SeverityCritical} {
		if n := report.BySeverity[sev]; n > 0 {
			severity.WriteString(fmt.Sprintf("%s: %d\n", sev, n))
		}
	}
	if severity.Len() == 0 {
		severity.WriteString("无")
	}

	var leaderboard strings.Builder
	for idx, mod := range report.TopModerators {
		leaderboard.WriteString(fmt.Sprintf("%d. <@%s>: %d\n", idx+1, mod.ModeratorID, mod.Count))
	}
	if leaderboard.Len() == 0 {
		leaderboard.WriteString("无")
	}

	return &discordgo.MessageEmbed{
		Title: fmt.Sprintf("处罚统计（%s）", periodLabel),
		Color: 0x00ff00,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "总计", Value: fmt.Sprintf("%d", report.TotalCases), Inline: true},
			{Name: "未结 / 已结", Value: fmt.Sprintf("%d / %d", report.OpenCases, report.ResolvedCases), Inline: true},
			{Name: "结案率", Value: fmt.Sprintf("%.1f%%", report.ResolutionRate), Inline: true},
			{Name: "按严重程度", Value: severity.String(), Inline: false},
			{Name: "管理员击杀榜", Value: leaderboard.String(), Inline: false},
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}
}
