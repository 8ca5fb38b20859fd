// Package bot wires the engines to the Discord gateway: slash commands,
// suggestion votes, welcome cards, and the three reconciliation pollers.
package bot

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"time"

	"streamwarden/internal/config"
	"streamwarden/internal/counters"
	"streamwarden/internal/livestatus"
	"streamwarden/internal/moderation"
	"streamwarden/internal/poller"
	"streamwarden/internal/store"
	"streamwarden/internal/suggest"
	"streamwarden/internal/twitch"
	"streamwarden/internal/welcome"

	"github.com/bwmarrin/discordgo"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

type Bot struct {
	cfg        config.Config
	logger     *zap.Logger
	session    *discordgo.Session
	suggest    *suggest.Engine
	policy     *moderation.Policy
	counters   *counters.Counters
	reconciler *livestatus.Reconciler
	refresher  *twitch.Refresher
	welcome    *welcome.Renderer
	cancel     context.CancelFunc
}

func New(cfg config.Config, logger *zap.Logger, st *store.Store, twitchClient *twitch.Client, refresher *twitch.Refresher) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, err
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers

	renderer, err := welcome.NewRenderer()
	if err != nil {
		return nil, err
	}

	b := &Bot{
		cfg:       cfg,
		logger:    logger,
		session:   session,
		refresher: refresher,
		welcome:   renderer,
	}

	b.suggest = suggest.NewEngine(store.NewSuggestionRepo(st), logger)
	b.policy = moderation.NewPolicy(session, cfg.Roles.Warn1, cfg.Roles.Warn2, cfg.Channels.ModerationLog, logger)
	b.counters = counters.New(store.NewCounterRepo(st), b, twitchClient, counters.TikTokSource{}, cfg.Twitch.Login, cfg.Socials.TikTok, logger)
	b.reconciler = livestatus.New(cfg.Twitch.Login, socialRotation(cfg.Socials), twitchClient, store.NewStatusRepo(st), b, logger)

	return b, nil
}

func (b *Bot) Start() error {
	b.session.AddHandler(b.onReady)
	b.session.AddHandler(b.onGuildMemberAdd)
	b.session.AddHandler(b.onInteractionCreate)

	if err := b.session.Open(); err != nil {
		return err
	}

	if err := b.registerCommands(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel
	clock := clockwork.NewRealClock()
	poller.New("twitch-token", time.Duration(b.cfg.Polling.TokenRefreshMinutes)*time.Minute, clock, b.logger, b.refresher.Tick).Start(ctx)
	poller.New("live-status", time.Duration(b.cfg.Polling.StatusSeconds)*time.Second, clock, b.logger, b.reconciler.Tick).Start(ctx)
	poller.New("counters", time.Duration(b.cfg.Polling.CountersMinutes)*time.Minute, clock, b.logger, b.counters.Tick).Start(ctx)

	return nil
}

func (b *Bot) Close(ctx context.Context) {
	_ = ctx
	if b.cancel != nil {
		b.cancel()
	}
	if b.session != nil {
		_ = b.session.Close()
	}
}

func (b *Bot) onReady(session *discordgo.Session, event *discordgo.Ready) {
	b.logger.Info("discord ready", zap.String("user", session.State.User.Username))
}

func (b *Bot) onGuildMemberAdd(session *discordgo.Session, event *discordgo.GuildMemberAdd) {
	if event.GuildID != b.cfg.GuildID || event.User == nil {
		return
	}

	if b.cfg.Channels.Welcome != "" {
		b.sendWelcomeCard(session, event.Member)
	}
	if b.cfg.Roles.Member != "" {
		if err := session.GuildMemberRoleAdd(event.GuildID, event.User.ID, b.cfg.Roles.Member); err != nil {
			b.logger.Warn("member role add failed", zap.String("user_id", event.User.ID), zap.Error(err))
		}
	}
}

func (b *Bot) sendWelcomeCard(session *discordgo.Session, member *discordgo.Member) {
	avatar, err := fetchAvatar(member.User.AvatarURL("256"))
	if err != nil {
		b.logger.Warn("welcome avatar fetch failed", zap.String("user_id", member.User.ID), zap.Error(err))
		return
	}

	guildName := b.cfg.GuildID
	if guild, err := session.State.Guild(b.cfg.GuildID); err == nil {
		guildName = guild.Name
	}

	card, err := b.welcome.Render(avatar, guildName)
	if err != nil {
		b.logger.Warn("welcome card render failed", zap.Error(err))
		return
	}

	_, err = session.ChannelMessageSendComplex(b.cfg.Channels.Welcome, &discordgo.MessageSend{
		Content: fmt.Sprintf("Bienvenue <@%s> !", member.User.ID),
		Files: []*discordgo.File{
			{Name: "bienvenue.png", ContentType: "image/png", Reader: bytes.NewReader(card)},
		},
	})
	if err != nil {
		b.logger.Warn("welcome message failed", zap.Error(err))
	}
}

func fetchAvatar(url string) (image.Image, error) {
	resp, err := http.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("avatar fetch: status %d", resp.StatusCode)
	}
	img, _, err := image.Decode(resp.Body)
	return img, err
}

// MemberCount implements counters.Guild.
func (b *Bot) MemberCount() (int, error) {
	if guild, err := b.session.State.Guild(b.cfg.GuildID); err == nil && guild.MemberCount > 0 {
		return guild.MemberCount, nil
	}
	guild, err := b.session.Guild(b.cfg.GuildID)
	if err != nil {
		return 0, err
	}
	return guild.MemberCount, nil
}

func (b *Bot) ChannelExists(channelID string) bool {
	if _, err := b.session.State.Channel(channelID); err == nil {
		return true
	}
	_, err := b.session.Channel(channelID)
	return err == nil
}

func (b *Bot) RenameChannel(channelID, name string) error {
	_, err := b.session.ChannelEdit(channelID, &discordgo.ChannelEdit{Name: name})
	return err
}

func (b *Bot) CreateCategory(name string) (string, error) {
	channel, err := b.session.GuildChannelCreateComplex(b.cfg.GuildID, discordgo.GuildChannelCreateData{
		Name: name,
		Type: discordgo.ChannelTypeGuildCategory,
	})
	if err != nil {
		return "", err
	}
	return channel.ID, nil
}

func (b *Bot) CreateVoiceChannel(name, categoryID string) (string, error) {
	channel, err := b.session.GuildChannelCreateComplex(b.cfg.GuildID, discordgo.GuildChannelCreateData{
		Name:     name,
		Type:     discordgo.ChannelTypeGuildVoice,
		ParentID: categoryID,
	})
	if err != nil {
		return "", err
	}
	return channel.ID, nil
}

func (b *Bot) DeleteChannel(channelID string) error {
	_, err := b.session.ChannelDelete(channelID)
	return err
}

// AnnounceLive implements livestatus.Notifier.
func (b *Bot) AnnounceLive(stream twitch.Stream, boxArtURL string) error {
	if b.cfg.Channels.TwitchPings == "" {
		return nil
	}
	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🔴 %s est en live !", b.cfg.Twitch.Login),
		URL:         twitch.ChannelURL(b.cfg.Twitch.Login),
		Description: stream.Title,
		Color:       0x9146FF,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Jeu", Value: stream.GameName, Inline: true},
			{Name: "Spectateurs", Value: fmt.Sprintf("%d", stream.ViewerCount), Inline: true},
		},
		Image:     &discordgo.MessageEmbedImage{URL: twitch.PreviewURL(b.cfg.Twitch.Login)},
		Timestamp: time.Now().Format(time.RFC3339),
	}
	if boxArtURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: boxArtURL}
	}
	_, err := b.session.ChannelMessageSendComplex(b.cfg.Channels.TwitchPings, &discordgo.MessageSend{
		Content: "@everyone",
		Embeds:  []*discordgo.MessageEmbed{embed},
	})
	return err
}

func (b *Bot) AnnounceEnded() error {
	if b.cfg.Channels.TwitchPings == "" {
		return nil
	}
	_, err := b.session.ChannelMessageSend(b.cfg.Channels.TwitchPings, "Le live est terminé, merci à tous d'être passés !")
	return err
}

func (b *Bot) SetStreamingActivity(title string) error {
	return b.session.UpdateStreamingStatus(0, title, twitch.ChannelURL(b.cfg.Twitch.Login))
}

func (b *Bot) SetWatchingActivity(text string) error {
	return b.session.UpdateWatchStatus(0, text)
}

func socialRotation(socials config.SocialConfig) []string {
	entries := []struct {
		label  string
		handle string
	}{
		{"Instagram", socials.Instagram},
		{"TikTok", socials.TikTok},
		{"Twitter", socials.Twitter},
		{"YouTube", socials.YouTube},
	}
	rotation := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.handle == "" {
			continue
		}
		rotation = append(rotation, fmt.Sprintf("%s : %s", entry.label, entry.handle))
	}
	return rotation
}

func (b *Bot) respond(session *discordgo.Session, interaction *discordgo.InteractionCreate, content string, ephemeral bool) {
	flags := discordgo.MessageFlags(0)
	if ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}
	_ = session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   flags,
		},
	})
}
