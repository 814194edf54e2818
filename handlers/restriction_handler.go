package handlers

import (
	"context"
	"fmt"

	"mod-ledger/bot"
	"mod-ledger/model"
	"mod-ledger/moderr"
	"mod-ledger/utils"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// HandleRestrict applies a timed restriction. The platform effect is
// applied before the registry entry is persisted, so a failed apply
// leaves nothing behind.
func HandleRestrict(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if err := utils.DeferResponse(s, i, true); err != nil {
		b.Log.Error("failed to defer interaction", zap.Error(err))
		return
	}

	opts := optionMap(i)
	targetUser := opts["user"].UserValue(s)
	in := model.RestrictionInput{
		SubjectID:       targetUser.ID,
		Type:            model.RestrictionType(opts["type"].StringValue()),
		DurationMinutes: opts["duration"].IntValue(),
		ModeratorID:     i.Member.User.ID,
		GuildID:         i.GuildID,
	}
	if opt, ok := opts["mod_comment"]; ok {
		in.ModComment = opt.StringValue()
	}
	if opt, ok := opts["user_comment"]; ok {
		in.UserComment = opt.StringValue()
	}

	r, err := b.Service.ApplyRestriction(context.Background(), in)
	if err != nil {
		utils.SendFollowUpError(s, i.Interaction, translateError(err))
		return
	}

	utils.SendFollowUp(s, i.Interaction, fmt.Sprintf("已对 <@%s> 施加 **%s** 限制，<t:%d:R> 自动解除。", targetUser.ID, r.Type, r.ExpiresAt().Unix()))
}

// HandleUnrestrict lifts a restriction ahead of schedule.
func HandleUnrestrict(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if err := utils.DeferResponse(s, i, true); err != nil {
		b.Log.Error("failed to defer interaction", zap.Error(err))
		return
	}

	opts := optionMap(i)
	targetUser := opts["user"].UserValue(s)
	reason := opts["reason"].StringValue()

	removed, err := b.Service.RemoveRestriction(context.Background(), targetUser.ID, reason)
	if err != nil {
		if moderr.IsGateway(err) && removed != nil {
			utils.SendFollowUpError(s, i.Interaction, "限制记录已删除，但平台效果解除失败，请手动处理。")
			return
		}
		utils.SendFollowUpError(s, i.Interaction, translateError(err))
		return
	}

	utils.SendFollowUp(s, i.Interaction, fmt.Sprintf("已解除 <@%s> 的 **%s** 限制（原因：%s）。", targetUser.ID, removed.Type, reason))
}

// HandleExtend adds time to an active restriction.
func HandleExtend(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	opts := optionMap(i)
	targetUser := opts["user"].UserValue(s)
	additional := opts["additional"].IntValue()

	r, err := b.Service.ExtendRestriction(context.Background(), targetUser.ID, additional)
	if err != nil {
		utils.SendEphemeralResponse(s, i, "❌ "+translateError(err))
		return
	}

	utils.SendEphemeralResponse(s, i, fmt.Sprintf("已延长 <@%s> 的限制 %d 分钟，<t:%d:R> 自动解除。", targetUser.ID, additional, r.ExpiresAt().Unix()))
}
