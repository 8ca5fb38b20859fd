package twitch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"streamwarden/internal/store"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeTokenStore struct {
	token   store.TwitchToken
	setErr  error
	updates int
}

func (f *fakeTokenStore) Get() (store.TwitchToken, error) { return f.token, nil }

func (f *fakeTokenStore) Set(token store.TwitchToken) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.token = token
	f.updates++
	return nil
}

func TestRefresherTickRotatesAndPersists(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"fresh-token","expires_in":3600,"token_type":"bearer"}`))
	}))
	defer server.Close()

	client, err := NewClient("client-id", zap.NewNop())
	require.NoError(t, err)

	tokens := &fakeTokenStore{}
	refresher := NewRefresher("client-id", "secret", tokens, client, zap.NewNop())
	refresher.conf.TokenURL = server.URL

	require.NoError(t, refresher.Tick(context.Background()))
	require.Equal(t, "fresh-token", tokens.token.AccessToken)
	require.Equal(t, 1, tokens.updates)
	require.Equal(t, "fresh-token", client.AppToken())
}

func TestRefresherTickFailureLeavesTokenAlone(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer server.Close()

	client, err := NewClient("client-id", zap.NewNop())
	require.NoError(t, err)
	client.SetAppToken("old-token")

	tokens := &fakeTokenStore{}
	refresher := NewRefresher("client-id", "secret", tokens, client, zap.NewNop())
	refresher.conf.TokenURL = server.URL

	require.Error(t, refresher.Tick(context.Background()))
	require.Zero(t, tokens.updates)
	require.Equal(t, "old-token", client.AppToken())
}

func TestSeedRestoresPersistedToken(t *testing.T) {
	client, err := NewClient("client-id", zap.NewNop())
	require.NoError(t, err)

	tokens := &fakeTokenStore{token: store.TwitchToken{AccessToken: "persisted"}}
	refresher := NewRefresher("client-id", "secret", tokens, client, zap.NewNop())
	refresher.Seed()

	require.Equal(t, "persisted", client.AppToken())
}

func TestSizeBoxArt(t *testing.T) {
	url := sizeBoxArt("https://example.com/art-{width}x{height}.jpg")
	require.Equal(t, "https://example.com/art-285x380.jpg", url)
}
