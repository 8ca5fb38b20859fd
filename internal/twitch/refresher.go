package twitch

import (
	"context"
	"fmt"
	"time"

	"streamwarden/internal/store"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/oauth2/endpoints"
)

// TokenStore persists the app token across restarts. The refresher is its
// sole writer.
type TokenStore interface {
	Get() (store.TwitchToken, error)
	Set(store.TwitchToken) error
}

// Refresher obtains a fresh client-credentials token every tick and rotates
// it into the shared client.
type Refresher struct {
	conf   *clientcredentials.Config
	tokens TokenStore
	client *Client
	logger *zap.Logger
}

func NewRefresher(clientID, clientSecret string, tokens TokenStore, client *Client, logger *zap.Logger) *Refresher {
	return &Refresher{
		conf: &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     endpoints.Twitch.TokenURL,
			AuthStyle:    oauth2.AuthStyleInParams,
		},
		tokens: tokens,
		client: client,
		logger: logger,
	}
}

// Seed loads the persisted token, if any, into the client so API calls can
// start before the first refresh tick.
func (r *Refresher) Seed() {
	token, err := r.tokens.Get()
	if err != nil || token.AccessToken == "" {
		return
	}
	r.client.SetAppToken(token.AccessToken)
	r.logger.Info("twitch token restored from store", zap.Time("obtained_at", token.ObtainedAt))
}

// Tick requests a new token. The previous token stays in use when the
// request fails; a failed persist is logged but the fresh token is still
// rotated in.
func (r *Refresher) Tick(ctx context.Context) error {
	token, err := r.conf.Token(ctx)
	if err != nil {
		return fmt.Errorf("request app token: %w", err)
	}
	if err := r.tokens.Set(store.TwitchToken{AccessToken: token.AccessToken, ObtainedAt: time.Now()}); err != nil {
		r.logger.Warn("twitch token persist failed", zap.Error(err))
	}
	r.client.SetAppToken(token.AccessToken)
	r.logger.Info("twitch token refreshed")
	return nil
}
