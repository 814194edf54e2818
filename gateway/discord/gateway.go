// Package discord implements the action gateway against the Discord
// API: silences and isolations are role assignments, voice timeouts
// use the native member timeout.
package discord

import (
	"context"
	"fmt"
	"time"

	"mod-ledger/model"

	"github.com/bwmarrin/discordgo"
)

type Gateway struct {
	session *discordgo.Session
	roles   map[string]model.GuildRoleConfig // keyed by guild ID
}

func New(session *discordgo.Session, roles map[string]model.GuildRoleConfig) *Gateway {
	return &Gateway{session: session, roles: roles}
}

func (g *Gateway) ApplyRestriction(ctx context.Context, subjectID string, t model.RestrictionType, guildID string, duration time.Duration) error {
	opt := discordgo.WithContext(ctx)
	switch t {
	case model.RestrictSilence:
		return g.addRole(subjectID, guildID, func(rc model.GuildRoleConfig) string { return rc.SilenceRoleID }, opt)
	case model.RestrictIsolation:
		return g.addRole(subjectID, guildID, func(rc model.GuildRoleConfig) string { return rc.IsolationRoleID }, opt)
	case model.RestrictVoiceTimeout:
		until := time.Now().Add(duration)
		if err := g.session.GuildMemberTimeout(guildID, subjectID, &until, opt); err != nil {
			return fmt.Errorf("failed to timeout member %s: %w", subjectID, err)
		}
		return nil
	case model.RestrictFullRestriction:
		until := time.Now().Add(duration)
		if err := g.session.GuildMemberTimeout(guildID, subjectID, &until, opt); err != nil {
			return fmt.Errorf("failed to timeout member %s: %w", subjectID, err)
		}
		return g.addRole(subjectID, guildID, func(rc model.GuildRoleConfig) string { return rc.SilenceRoleID }, opt)
	default:
		return fmt.Errorf("unsupported restriction type %q", t)
	}
}

func (g *Gateway) RemoveRestriction(ctx context.Context, subjectID string, t model.RestrictionType, guildID string) error {
	opt := discordgo.WithContext(ctx)
	switch t {
	case model.RestrictSilence:
		return g.removeRole(subjectID, guildID, func(rc model.GuildRoleConfig) string { return rc.SilenceRoleID }, opt)
	case model.RestrictIsolation:
		return g.removeRole(subjectID, guildID, func(rc model.GuildRoleConfig) string { return rc.IsolationRoleID }, opt)
	case model.RestrictVoiceTimeout:
		if err := g.session.GuildMemberTimeout(guildID, subjectID, nil, opt); err != nil {
			return fmt.Errorf("failed to clear timeout for member %s: %w", subjectID, err)
		}
		return nil
	case model.RestrictFullRestriction:
		if err := g.session.GuildMemberTimeout(guildID, subjectID, nil, opt); err != nil {
			return fmt.Errorf("failed to clear timeout for member %s: %w", subjectID, err)
		}
		return g.removeRole(subjectID, guildID, func(rc model.GuildRoleConfig) string { return rc.SilenceRoleID }, opt)
	default:
		return fmt.Errorf("unsupported restriction type %q", t)
	}
}

func (g *Gateway) roleFor(guildID string, pick func(model.GuildRoleConfig) string) (string, error) {
	rc, ok := g.roles[guildID]
	if !ok {
		return "", fmt.Errorf("no role configuration for guild %s", guildID)
	}
	roleID := pick(rc)
	if roleID == "" {
		return "", fmt.Errorf("restriction role not configured for guild %s", guildID)
	}
	return roleID, nil
}

func (g *Gateway) addRole(subjectID, guildID string, pick func(model.GuildRoleConfig) string, opt discordgo.RequestOption) error {
	roleID, err := g.roleFor(guildID, pick)
	if err != nil {
		return err
	}
	if err := g.session.GuildMemberRoleAdd(guildID, subjectID, roleID, opt); err != nil {
		return fmt.Errorf("failed to add role %s to member %s: %w", roleID, subjectID, err)
	}
	return nil
}

func (g *Gateway) removeRole(subjectID, guildID string, pick func(model.GuildRoleConfig) string, opt discordgo.RequestOption) error {
	roleID, err := g.roleFor(guildID, pick)
	if err != nil {
		return err
	}
	if err := g.session.GuildMemberRoleRemove(guildID, subjectID, roleID, opt); err != nil {
		return fmt.Errorf("failed to remove role %s from member %s: %w", roleID, subjectID, err)
	}
	return nil
}
