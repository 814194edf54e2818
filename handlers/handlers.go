package handlers

import (
	"mod-ledger/bot"
	"mod-ledger/utils"

	"github.com/bwmarrin/discordgo"
)

// Register wires every slash command to its handler. Each handler is
// gated on the guild's configured moderator roles before it touches
// the service.
func Register(b *bot.Bot) {
	dispatch := map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot){
		"punish":       HandlePunish,
		"resolve":      HandleResolve,
		"case_history": HandleCaseHistory,
		"restrict":     HandleRestrict,
		"unrestrict":   HandleUnrestrict,
		"extend":       HandleExtend,
		"modstats":     HandleModStats,
		"sysinfo":      HandleSystemInfo,
	}

	b.Session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if i.Type != discordgo.InteractionApplicationCommand {
			return
		}
		handler, ok := dispatch[i.ApplicationCommandData().Name]
		if !ok {
			return
		}
		if !isAllowed(i, b) {
			utils.SendEphemeralResponse(s, i, "你没有权限使用此命令")
			return
		}
		handler(s, i, b)
	})
}

func isAllowed(i *discordgo.InteractionCreate, b *bot.Bot) bool {
	if i.Member == nil {
		return false
	}
	roleCfg, ok := b.GetConfig().GuildRoles[i.GuildID]
	if !ok {
		return false
	}
	return utils.IsModerator(i.Member.Roles, roleCfg.ModeratorRoleIDs)
}

// optionMap indexes interaction options by name.
func optionMap(i *discordgo.InteractionCreate) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	options := i.ApplicationCommandData().Options
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		m[opt.Name] = opt
	}
	return m
}
