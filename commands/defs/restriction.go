package defs

import "github.com/bwmarrin/discordgo"

var restrictionChoices = []*discordgo.ApplicationCommandOptionChoice{
	{Name: "静默", Value: "silence"},
	{Name: "语音禁言", Value: "voice_timeout"},
	{Name: "全面限制", Value: "full_restriction"},
	{Name: "隔离", Value: "isolation"},
}

var Restrict = &discordgo.ApplicationCommand{
	Name:        "restrict",
	Description: "Apply a timed restriction to a user",
	NameLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "限制",
	},
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "要限制的用户",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "type",
			Description: "限制类型",
			Required:    true,
			Choices:     restrictionChoices,
		},
		{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "duration",
			Description: "时长（分钟）",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "mod_comment",
			Description: "管理员备注",
			Required:    false,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "user_comment",
			Description: "向用户展示的说明",
			Required:    false,
		},
	},
}

var Unrestrict = &discordgo.ApplicationCommand{
	Name:        "unrestrict",
	Description: "Lift a user's restriction ahead of schedule",
	NameLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "解除限制",
	},
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "要解除限制的用户",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "reason",
			Description: "解除原因",
			Required:    true,
		},
	},
}

var Extend = &discordgo.ApplicationCommand{
	Name:        "extend",
	Description: "Extend a user's active restriction",
	NameLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "延长限制",
	},
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "要延长限制的用户",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "additional",
			Description: "追加时长（分钟）",
			Required:    true,
		},
	},
}
