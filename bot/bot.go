package bot

import (
	"context"
	"fmt"

	"mod-ledger/commands"
	"mod-ledger/gateway/discord"
	"mod-ledger/ledger"
	"mod-ledger/model"
	"mod-ledger/restriction"
	"mod-ledger/utils"
	casesdb "mod-ledger/utils/database/cases"
	restrictionsdb "mod-ledger/utils/database/restrictions"

	"github.com/bwmarrin/discordgo"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type Bot struct {
	Session            *discordgo.Session
	RegisteredCommands []*discordgo.ApplicationCommand
	Service            *Service
	Log                *zap.Logger

	cfg           *model.Config
	caseDB        *sqlx.DB
	restrictionDB *sqlx.DB
	registry      *restriction.Registry
	ledger        *ledger.Ledger
	scheduler     *TaskScheduler
}

func (b *Bot) GetConfig() *model.Config {
	return b.cfg
}

func New(cfg *model.Config) (*Bot, error) {
	log, err := utils.NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	caseDB, err := casesdb.Init(cfg.CaseDBPath)
	if err != nil {
		return nil, err
	}
	restrictionDB, err := restrictionsdb.Init(cfg.RestrictionDBPath)
	if err != nil {
		caseDB.Close()
		return nil, err
	}

	dg, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		caseDB.Close()
		restrictionDB.Close()
		return nil, err
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentsGuildMembers
	dg.StateEnabled = true

	gw := discord.New(dg, cfg.GuildRoles)
	l := ledger.New(caseDB, log)
	reg := restriction.NewRegistry(restrictionDB, gw, cfg.Gateway, log)

	b := &Bot{
		Session:       dg,
		Service:       NewService(l, reg),
		Log:           log,
		cfg:           cfg,
		caseDB:        caseDB,
		restrictionDB: restrictionDB,
		registry:      reg,
		ledger:        l,
	}
	b.scheduler = NewTaskScheduler(b)
	return b, nil
}

// Run recovers persisted restriction timers, opens the gateway session
// and starts the background tasks. The recovery pass completes before
// the session opens so an already-expired restriction is never still
// enforced while the bot is accepting commands.
func (b *Bot) Run() error {
	if err := b.registry.Recover(context.Background()); err != nil {
		return fmt.Errorf("restriction recovery failed: %w", err)
	}

	if err := b.Session.Open(); err != nil {
		return fmt.Errorf("failed to open gateway connection: %w", err)
	}

	for guildID := range b.cfg.GuildRoles {
		cmds, err := b.Session.ApplicationCommandBulkOverwrite(b.cfg.AppID, guildID, commands.All())
		if err != nil {
			b.Log.Error("failed to register commands", zap.String("guild_id", guildID), zap.Error(err))
			continue
		}
		b.RegisteredCommands = append(b.RegisteredCommands, cmds...)
	}

	b.scheduler.Start()
	b.Log.Info("bot is now running")
	return nil
}

func (b *Bot) Close() {
	b.Log.Info("gracefully shutting down")
	b.scheduler.Stop()
	b.registry.Scheduler().Stop()
	if !b.cfg.DisableCommandUnregister {
		for _, cmd := range b.RegisteredCommands {
			if err := b.Session.ApplicationCommandDelete(b.cfg.AppID, cmd.GuildID, cmd.ID); err != nil {
				b.Log.Warn("failed to unregister command", zap.String("command", cmd.Name), zap.Error(err))
			}
		}
	}
	if err := b.Session.Close(); err != nil {
		b.Log.Error("failed to close session", zap.Error(err))
	}
	b.caseDB.Close()
	b.restrictionDB.Close()
	b.Log.Sync()
}
