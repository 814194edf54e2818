package handlers

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"mod-ledger/bot"
	"mod-ledger/model"
	"mod-ledger/moderr"
	"mod-ledger/utils"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// HandlePunish records a new moderation case with an evidence snapshot
// captured from the linked messages.
func HandlePunish(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if err := utils.DeferResponse(s, i, true); err != nil {
		b.Log.Error("failed to defer interaction", zap.Error(err))
		return
	}

	opts := optionMap(i)
	targetUser := opts["user"].UserValue(s)
	in := model.CaseInput{
		ModeratorID: i.Member.User.ID,
		ActionType:  model.ActionType(opts["action"].StringValue()),
		Severity:    model.Severity(opts["severity"].StringValue()),
		Reason:      opts["reason"].StringValue(),
		GuildID:     i.GuildID,
	}
	if opt, ok := opts["duration"]; ok {
		d := opt.IntValue()
		in.DurationMinutes = &d
	}

	if opt, ok := opts["message_links"]; ok {
		in.Evidence = captureEvidence(s, strings.Fields(opt.StringValue()), b)
	}

	caseNumber, err := b.Service.OpenCase(context.Background(), targetUser.ID, in)
	if err != nil {
		utils.SendFollowUpError(s, i.Interaction, translateError(err))
		return
	}

	utils.SendFollowUp(s, i.Interaction, fmt.Sprintf("已记录案件 **#%d**：<@%s>（%s / %s）", caseNumber, targetUser.ID, in.ActionType, in.Severity))
}

// HandleResolve closes an open case.
func HandleResolve(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	opts := optionMap(i)
	targetUser := opts["user"].UserValue(s)
	caseNumber := opts["case_number"].IntValue()
	comment := ""
	if opt, ok := opts["comment"]; ok {
		comment = opt.StringValue()
	}

	err := b.Service.ResolveCase(context.Background(), targetUser.ID, caseNumber, i.Member.User.ID, comment)
	if err != nil {
		utils.SendEphemeralResponse(s, i, "❌ "+translateError(err))
		return
	}
	utils.SendEphemeralResponse(s, i, fmt.Sprintf("案件 **#%d** 已结案。", caseNumber))
}

// HandleCaseHistory lists a subject's cases, newest first.
func HandleCaseHistory(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	opts := optionMap(i)
	targetUser := opts["user"].UserValue(s)

	records, err := b.Service.CaseHistory(context.Background(), targetUser.ID)
	if err != nil {
		utils.SendEphemeralResponse(s, i, "❌ "+translateError(err))
		return
	}
	if len(records) == 0 {
		utils.SendEphemeralResponse(s, i, fmt.Sprintf("<@%s> 没有任何处罚记录。", targetUser.ID))
		return
	}

	sort.Slice(records, func(a, c int) bool { return records[a].CaseNumber > records[c].CaseNumber })
	var builder strings.Builder
	for idx, c := range records {
		if idx >= 10 {
			builder.WriteString(fmt.Sprintf("……以及另外 %d 条记录\n", len(records)-10))
			break
		}
		statusMark := "🟠"
		if c.Status == model.CaseResolved {
			statusMark = "✅"
		}
		builder.WriteString(fmt.Sprintf("%s **#%d** %s / %s — %s <t:%d:R>\n", statusMark, c.CaseNumber, c.ActionType, c.Severity, c.Reason, c.CreatedAt))
	}

	embed := &discordgo.MessageEmbed{
		Title:       "处罚记录",
		Description: builder.String(),
		Color:       0x5865F2,
		Timestamp:   time.Now().Format(time.RFC3339),
	}
	s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
}

// captureEvidence freezes the linked messages into the snapshot stored
// with the case. Attachments are downloaded into the on-disk evidence
// store; a link that cannot be fetched is skipped rather than failing
// the whole case.
func captureEvidence(s *discordgo.Session, links []string, b *bot.Bot) model.EvidenceSnapshot {
	snapshot := model.EvidenceSnapshot{CapturedAt: time.Now().Unix()}
	for _, link := range links {
		channelID, messageID, err := utils.ParseMessageLink(link)
		if err != nil {
			b.Log.Warn("skipping malformed evidence link", zap.String("link", link), zap.Error(err))
			continue
		}
		msg, err := s.ChannelMessage(channelID, messageID)
		if err != nil {
			b.Log.Warn("failed to fetch evidence message", zap.String("link", link), zap.Error(err))
			continue
		}

		ev := model.EvidenceMessage{
			MessageID: msg.ID,
			ChannelID: msg.ChannelID,
			AuthorID:  msg.Author.ID,
			Content:   msg.Content,
			SentAt:    msg.Timestamp.Unix(),
		}
		for _, att := range msg.Attachments {
			path, err := utils.DownloadAttachment(b.GetConfig().Evidence.Path, msg.ID, att.Filename, att.URL)
			if err != nil {
				b.Log.Warn("failed to download evidence attachment", zap.String("url", att.URL), zap.Error(err))
				continue
			}
			ev.Attachments = append(ev.Attachments, path)
		}
		snapshot.Messages = append(snapshot.Messages, ev)
	}
	return snapshot
}

// translateError turns a domain error into user-facing text.
func translateError(err error) string {
	switch {
	case moderr.IsValidation(err):
		return "参数无效：" + err.Error()
	case moderr.IsNotFound(err):
		return "未找到对应记录"
	case moderr.IsConflict(err):
		return "操作冲突：" + err.Error()
	case moderr.IsGateway(err):
		return "平台操作失败，请稍后重试"
	default:
		return "内部错误，请联系开发者"
	}
}
