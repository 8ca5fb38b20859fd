// Package moderation implements the warning ladder: first offence adds the
// Warn1 role, second adds Warn2, third bans.
package moderation

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

type Action int

const (
	ActionWarn1 Action = iota
	ActionWarn2
	ActionBan
)

func (a Action) String() string {
	switch a {
	case ActionWarn1:
		return "Premier avertissement (Warn 1)"
	case ActionWarn2:
		return "Deuxième avertissement (Warn 2)"
	case ActionBan:
		return "Bannissement"
	default:
		return "unknown"
	}
}

// DefaultReason is used when the moderator supplies no reason.
const DefaultReason = "Aucune raison spécifiée"

// Decide maps a member's current warning roles to the next sanction. Warn2
// presence alone is ban-eligible even without Warn1; roles can be removed
// out of band and the ladder does not repair that state.
func Decide(hasWarn1, hasWarn2 bool) Action {
	switch {
	case hasWarn2:
		return ActionBan
	case hasWarn1:
		return ActionWarn2
	default:
		return ActionWarn1
	}
}

// Session is the slice of the gateway client the policy needs.
type Session interface {
	GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	GuildBanCreateWithReason(guildID, userID, reason string, days int, options ...discordgo.RequestOption) error
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

type Target struct {
	UserID      string
	DisplayName string
	Tag         string
	HasWarn1    bool
	HasWarn2    bool
}

type Policy struct {
	session      Session
	logger       *zap.Logger
	warn1RoleID  string
	warn2RoleID  string
	logChannelID string
}

func NewPolicy(session Session, warn1RoleID, warn2RoleID, logChannelID string, logger *zap.Logger) *Policy {
	return &Policy{
		session:      session,
		logger:       logger,
		warn1RoleID:  warn1RoleID,
		warn2RoleID:  warn2RoleID,
		logChannelID: logChannelID,
	}
}

// Punish applies the next sanction on target and posts a moderation-log
// embed. A failed role or ban mutation surfaces as a single error; the log
// embed is best effort.
func (p *Policy) Punish(guildID string, target Target, moderatorTag, reason string) (Action, error) {
	if reason == "" {
		reason = DefaultReason
	}

	action := Decide(target.HasWarn1, target.HasWarn2)
	var err error
	switch action {
	case ActionWarn1:
		err = p.session.GuildMemberRoleAdd(guildID, target.UserID, p.warn1RoleID)
	case ActionWarn2:
		err = p.session.GuildMemberRoleAdd(guildID, target.UserID, p.warn2RoleID)
	case ActionBan:
		err = p.session.GuildBanCreateWithReason(guildID, target.UserID, reason, 0)
	}
	if err != nil {
		return action, fmt.Errorf("apply sanction: %w", err)
	}

	p.logSanction(target, action, moderatorTag, reason)
	return action, nil
}

func (p *Policy) logSanction(target Target, action Action, moderatorTag, reason string) {
	if p.logChannelID == "" {
		return
	}
	embed := &discordgo.MessageEmbed{
		Title: "Action de modération",
		Color: 0xE34242,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Membre sanctionné", Value: fmt.Sprintf("%s (%s)", target.DisplayName, target.Tag), Inline: true},
			{Name: "Sanction", Value: action.String(), Inline: true},
			{Name: "Modérateur", Value: moderatorTag, Inline: true},
			{Name: "Raison", Value: reason, Inline: false},
		},
		Footer:    &discordgo.MessageEmbedFooter{Text: "Système de punitions"},
		Timestamp: time.Now().Format(time.RFC3339),
	}
	if _, err := p.session.ChannelMessageSendEmbed(p.logChannelID, embed); err != nil {
		p.logger.Warn("moderation log message failed", zap.Error(err))
	}
}
