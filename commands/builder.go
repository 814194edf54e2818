package commands

import (
	"mod-ledger/commands/defs"

	"github.com/bwmarrin/discordgo"
)

// All returns every application command the bot registers per guild.
func All() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		defs.Punish,
		defs.Resolve,
		defs.CaseHistory,
		defs.Restrict,
		defs.Unrestrict,
		defs.Extend,
		defs.ModStats,
		defs.SystemInfo,
	}
}
