package moderation

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSession struct {
	rolesAdded []string
	banned     []string
	embeds     []*discordgo.MessageEmbed
	failNext   error
}

func (f *fakeSession) GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error {
	if f.failNext != nil {
		return f.failNext
	}
	f.rolesAdded = append(f.rolesAdded, roleID)
	return nil
}

func (f *fakeSession) GuildBanCreateWithReason(guildID, userID, reason string, days int, options ...discordgo.RequestOption) error {
	if f.failNext != nil {
		return f.failNext
	}
	f.banned = append(f.banned, userID)
	return nil
}

func (f *fakeSession) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.embeds = append(f.embeds, embed)
	return &discordgo.Message{ID: "log"}, nil
}

func TestDecide(t *testing.T) {
	cases := []struct {
		name     string
		w1, w2   bool
		expected Action
	}{
		{"no warnings", false, false, ActionWarn1},
		{"warn1 only", true, false, ActionWarn2},
		{"both warnings", true, true, ActionBan},
		{"warn2 without warn1", false, true, ActionBan},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, Decide(tc.w1, tc.w2))
		})
	}
}

func TestEscalationLadder(t *testing.T) {
	session := &fakeSession{}
	policy := NewPolicy(session, "warn1", "warn2", "modlog", zap.NewNop())

	target := Target{UserID: "u1", DisplayName: "Alice", Tag: "alice#0"}

	action, err := policy.Punish("g1", target, "mod#0", "spam")
	require.NoError(t, err)
	require.Equal(t, ActionWarn1, action)

	target.HasWarn1 = true
	action, err = policy.Punish("g1", target, "mod#0", "spam again")
	require.NoError(t, err)
	require.Equal(t, ActionWarn2, action)

	target.HasWarn2 = true
	action, err = policy.Punish("g1", target, "mod#0", "")
	require.NoError(t, err)
	require.Equal(t, ActionBan, action)

	require.Equal(t, []string{"warn1", "warn2"}, session.rolesAdded)
	require.Equal(t, []string{"u1"}, session.banned)
	require.Len(t, session.embeds, 3)
}

func TestDefaultReasonInLogEmbed(t *testing.T) {
	session := &fakeSession{}
	policy := NewPolicy(session, "warn1", "warn2", "modlog", zap.NewNop())

	_, err := policy.Punish("g1", Target{UserID: "u1"}, "mod#0", "")
	require.NoError(t, err)
	require.Len(t, session.embeds, 1)
	require.Equal(t, DefaultReason, session.embeds[0].Fields[3].Value)
}

func TestFailedSanctionSurfacesError(t *testing.T) {
	session := &fakeSession{failNext: discordgo.ErrUnauthorized}
	policy := NewPolicy(session, "warn1", "warn2", "modlog", zap.NewNop())

	_, err := policy.Punish("g1", Target{UserID: "u1"}, "mod#0", "x")
	require.Error(t, err)
	require.Empty(t, session.embeds, "no log embed on failed sanction")
}

func TestNoLogChannelConfigured(t *testing.T) {
	session := &fakeSession{}
	policy := NewPolicy(session, "warn1", "warn2", "", zap.NewNop())

	_, err := policy.Punish("g1", Target{UserID: "u1"}, "mod#0", "x")
	require.NoError(t, err)
	require.Empty(t, session.embeds)
}
