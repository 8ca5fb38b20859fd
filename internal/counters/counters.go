// Package counters manages the statistics category: three voice channels
// whose names display the guild member count and the Twitch/TikTok follower
// totals.
package counters

import (
	"context"
	"fmt"

	"streamwarden/internal/store"

	"go.uber.org/zap"
)

// Guild is the slice of the gateway client the counters need.
type Guild interface {
	MemberCount() (int, error)
	ChannelExists(channelID string) bool
	RenameChannel(channelID, name string) error
	CreateCategory(name string) (string, error)
	CreateVoiceChannel(name, categoryID string) (string, error)
	DeleteChannel(channelID string) error
}

// FollowerSource yields a follower total for a platform login.
type FollowerSource interface {
	FollowerTotal(ctx context.Context, login string) (int, error)
}

// StateStore persists the managed channel identifiers.
type StateStore interface {
	Get() (store.CounterState, error)
	Set(store.CounterState) error
}

const (
	categoryName     = "📈 - Statistiques"
	memberNameFormat = "👪┋Membres : %d"
	twitchNameFormat = "🟣┋Twitch : %d"
	tiktokNameFormat = "📱┋TikTok : %d"
)

type Counters struct {
	state       StateStore
	guild       Guild
	twitch      FollowerSource
	tiktok      FollowerSource
	twitchLogin string
	tiktokLogin string
	logger      *zap.Logger
}

func New(state StateStore, guild Guild, twitchSource, tiktokSource FollowerSource, twitchLogin, tiktokLogin string, logger *zap.Logger) *Counters {
	return &Counters{
		state:       state,
		guild:       guild,
		twitch:      twitchSource,
		tiktok:      tiktokSource,
		twitchLogin: twitchLogin,
		tiktokLogin: tiktokLogin,
		logger:      logger,
	}
}

// Tick refreshes the three channel names. The update is all-or-nothing: a
// stale channel reference or a failed follower fetch skips the entire tick
// rather than renaming a subset.
func (c *Counters) Tick(ctx context.Context) error {
	state, err := c.state.Get()
	if err != nil {
		return fmt.Errorf("load counter state: %w", err)
	}
	if !state.Active {
		return nil
	}

	for _, id := range []string{state.MemberChannelID, state.TwitchChannelID, state.TikTokChannelID} {
		if !c.guild.ChannelExists(id) {
			// Stale reference: a reconfigure via /setupcounters is required.
			c.logger.Warn("counter channel unresolvable, skipping tick", zap.String("channel_id", id))
			return nil
		}
	}

	members, err := c.guild.MemberCount()
	if err != nil {
		return fmt.Errorf("member count: %w", err)
	}
	twitchFollowers, err := c.twitch.FollowerTotal(ctx, c.twitchLogin)
	if err != nil {
		return fmt.Errorf("twitch followers: %w", err)
	}
	tiktokFollowers, err := c.tiktok.FollowerTotal(ctx, c.tiktokLogin)
	if err != nil {
		return fmt.Errorf("tiktok followers: %w", err)
	}

	renames := []struct {
		id   string
		name string
	}{
		{state.MemberChannelID, fmt.Sprintf(memberNameFormat, members)},
		{state.TwitchChannelID, fmt.Sprintf(twitchNameFormat, twitchFollowers)},
		{state.TikTokChannelID, fmt.Sprintf(tiktokNameFormat, tiktokFollowers)},
	}
	for _, r := range renames {
		if err := c.guild.RenameChannel(r.id, r.name); err != nil {
			return fmt.Errorf("rename channel %s: %w", r.id, err)
		}
	}
	return nil
}

// Setup tears down any previously managed category and recreates the
// category plus the three counter channels, persisting their identifiers.
func (c *Counters) Setup(ctx context.Context) error {
	state, err := c.state.Get()
	if err != nil {
		return fmt.Errorf("load counter state: %w", err)
	}
	c.deleteManaged(state)

	categoryID, err := c.guild.CreateCategory(categoryName)
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	memberID, err := c.guild.CreateVoiceChannel(fmt.Sprintf(memberNameFormat, 0), categoryID)
	if err != nil {
		return fmt.Errorf("create member channel: %w", err)
	}
	twitchID, err := c.guild.CreateVoiceChannel(fmt.Sprintf(twitchNameFormat, 0), categoryID)
	if err != nil {
		return fmt.Errorf("create twitch channel: %w", err)
	}
	tiktokID, err := c.guild.CreateVoiceChannel(fmt.Sprintf(tiktokNameFormat, 0), categoryID)
	if err != nil {
		return fmt.Errorf("create tiktok channel: %w", err)
	}

	state = store.CounterState{
		MemberChannelID: memberID,
		TwitchChannelID: twitchID,
		TikTokChannelID: tiktokID,
		CategoryID:      categoryID,
		Active:          true,
	}
	if err := c.state.Set(state); err != nil {
		return fmt.Errorf("persist counter state: %w", err)
	}

	// First fill is best effort; the poller catches up on the next tick.
	if err := c.Tick(ctx); err != nil {
		c.logger.Warn("initial counter refresh failed", zap.Error(err))
	}
	return nil
}

// Remove deletes the managed channels and category and deactivates the
// counters.
func (c *Counters) Remove(ctx context.Context) error {
	_ = ctx
	state, err := c.state.Get()
	if err != nil {
		return fmt.Errorf("load counter state: %w", err)
	}
	c.deleteManaged(state)
	if err := c.state.Set(store.CounterState{}); err != nil {
		return fmt.Errorf("persist counter state: %w", err)
	}
	return nil
}

func (c *Counters) deleteManaged(state store.CounterState) {
	for _, id := range []string{state.MemberChannelID, state.TwitchChannelID, state.TikTokChannelID, state.CategoryID} {
		if id == "" || !c.guild.ChannelExists(id) {
			continue
		}
		if err := c.guild.DeleteChannel(id); err != nil {
			c.logger.Warn("managed channel delete failed", zap.String("channel_id", id), zap.Error(err))
		}
	}
}
