package defs

import "github.com/bwmarrin/discordgo"

var actionChoices = []*discordgo.ApplicationCommandOptionChoice{
	{Name: "警告", Value: "warn"},
	{Name: "禁言", Value: "timeout"},
	{Name: "踢出", Value: "kick"},
	{Name: "封禁", Value: "ban"},
	{Name: "管理备注", Value: "mod_note"},
	{Name: "静默", Value: "silence"},
}

var severityChoices = []*discordgo.ApplicationCommandOptionChoice{
	{Name: "低", Value: "low"},
	{Name: "中", Value: "medium"},
	{Name: "高", Value: "high"},
	{Name: "严重", Value: "critical"},
}

var Punish = &discordgo.ApplicationCommand{
	Name:        "punish",
	Description: "Record a moderation case against a user",
	NameLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "处罚",
	},
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "要处罚的用户",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "action",
			Description: "处罚类型",
			Required:    true,
			Choices:     actionChoices,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "severity",
			Description: "严重程度",
			Required:    true,
			Choices:     severityChoices,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "reason",
			Description: "处罚原因",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "duration",
			Description: "时长（分钟），禁言/静默必填",
			Required:    false,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "message_links",
			Description: "作为证据的消息链接，多个链接请用空格分开",
			Required:    false,
		},
	},
}

var Resolve = &discordgo.ApplicationCommand{
	Name:        "resolve",
	Description: "Resolve an open moderation case",
	NameLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "结案",
	},
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "案件所属的用户",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "case_number",
			Description: "案件编号",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "comment",
			Description: "结案说明",
			Required:    false,
		},
	},
}

var CaseHistory = &discordgo.ApplicationCommand{
	Name:        "case_history",
	Description: "Show a user's moderation case history",
	NameLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "处罚记录",
	},
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "要查询的用户",
			Required:    true,
		},
	},
}
