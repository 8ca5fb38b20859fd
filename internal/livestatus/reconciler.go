// Package livestatus reconciles the streamer's Twitch live state with the
// guild: an announcement when the stream starts, a notice when it ends, and
// the bot's presence text on every tick.
package livestatus

import (
	"context"
	"fmt"

	"streamwarden/internal/store"
	"streamwarden/internal/twitch"

	"go.uber.org/zap"
)

// StreamSource yields the current stream, nil when offline.
type StreamSource interface {
	StreamByLogin(ctx context.Context, login string) (*twitch.Stream, error)
	GameBoxArt(ctx context.Context, gameID string) (string, error)
}

// Notifier applies the guild-side effects of a transition.
type Notifier interface {
	AnnounceLive(stream twitch.Stream, boxArtURL string) error
	AnnounceEnded() error
	SetStreamingActivity(title string) error
	SetWatchingActivity(text string) error
}

// StatusStore persists the last-known live flag.
type StatusStore interface {
	Get() (store.LiveStatus, error)
	Set(store.LiveStatus) error
}

type Reconciler struct {
	login    string
	source   StreamSource
	status   StatusStore
	notifier Notifier
	machine  *Machine
	logger   *zap.Logger

	socials   []string
	socialIdx int
}

func New(login string, socials []string, source StreamSource, status StatusStore, notifier Notifier, logger *zap.Logger) *Reconciler {
	persisted, _ := status.Get()
	return &Reconciler{
		login:    login,
		source:   source,
		status:   status,
		notifier: notifier,
		machine:  NewMachine(persisted.IsLive),
		logger:   logger,
		socials:  socials,
	}
}

// Tick polls the stream once. A failed fetch leaves both the machine and the
// persisted flag untouched; the poller logs the returned error and retries
// on the next tick.
func (r *Reconciler) Tick(ctx context.Context) error {
	stream, err := r.source.StreamByLogin(ctx, r.login)
	if err != nil {
		return fmt.Errorf("fetch stream: %w", err)
	}

	switch r.machine.Observe(stream != nil) {
	case TransitionWentLive:
		r.announceLive(ctx, *stream)
		r.persist(true)
	case TransitionWentOffline:
		if err := r.notifier.AnnounceEnded(); err != nil {
			r.logger.Warn("stream-ended notice failed", zap.Error(err))
		}
		r.persist(false)
	}

	r.updateActivity(stream)
	return nil
}

func (r *Reconciler) announceLive(ctx context.Context, stream twitch.Stream) {
	boxArt, err := r.source.GameBoxArt(ctx, stream.GameID)
	if err != nil {
		r.logger.Warn("game box art fetch failed", zap.String("game_id", stream.GameID), zap.Error(err))
		boxArt = ""
	}
	if err := r.notifier.AnnounceLive(stream, boxArt); err != nil {
		r.logger.Warn("live announcement failed", zap.Error(err))
	}
}

func (r *Reconciler) persist(live bool) {
	if err := r.status.Set(store.LiveStatus{IsLive: live}); err != nil {
		// In-memory state keeps the transition; only durability is lost.
		r.logger.Warn("live status persist failed", zap.Bool("is_live", live), zap.Error(err))
	}
}

// updateActivity refreshes the presence text on every tick: the stream
// title while live, a rotating social handle otherwise.
func (r *Reconciler) updateActivity(stream *twitch.Stream) {
	if stream != nil {
		if err := r.notifier.SetStreamingActivity(stream.Title); err != nil {
			r.logger.Debug("presence update failed", zap.Error(err))
		}
		return
	}
	if len(r.socials) == 0 {
		return
	}
	text := r.socials[r.socialIdx%len(r.socials)]
	r.socialIdx++
	if err := r.notifier.SetWatchingActivity(text); err != nil {
		r.logger.Debug("presence update failed", zap.Error(err))
	}
}
