package defs

import "github.com/bwmarrin/discordgo"

var ModStats = &discordgo.ApplicationCommand{
	Name:        "modstats",
	Description: "Show moderation statistics for this server",
	NameLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "处罚统计",
	},
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "period",
			Description: "统计周期",
			Required:    false,
			Choices: []*discordgo.ApplicationCommandOptionChoice{
				{Name: "24小时", Value: "24h"},
				{Name: "7天", Value: "7d"},
				{Name: "30天", Value: "30d"},
				{Name: "全部", Value: "all"},
			},
		},
	},
}

var SystemInfo = &discordgo.ApplicationCommand{
	Name:        "sysinfo",
	Description: "Show bot host diagnostics",
	NameLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "系统信息",
	},
}
