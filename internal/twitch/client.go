// Package twitch wraps the Helix API behind the few calls the reconcilers
// need. A single helix client is shared; the token refresher rotates its
// app token under the client mutex.
package twitch

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/nicklaw5/helix/v2"
	"go.uber.org/zap"
)

// Stream is the subset of Helix stream data the bot renders.
type Stream struct {
	Title        string
	GameID       string
	GameName     string
	ViewerCount  int
	ThumbnailURL string
}

type Client struct {
	mu     sync.Mutex
	helix  *helix.Client
	logger *zap.Logger

	// broadcaster IDs are stable; resolved once per login
	idsMu sync.Mutex
	ids   map[string]string
}

func NewClient(clientID string, logger *zap.Logger) (*Client, error) {
	h, err := helix.NewClient(&helix.Options{ClientID: clientID})
	if err != nil {
		return nil, fmt.Errorf("create helix client: %w", err)
	}
	return &Client{helix: h, logger: logger, ids: make(map[string]string)}, nil
}

// SetAppToken rotates the app access token used for all subsequent calls.
func (c *Client) SetAppToken(token string) {
	c.mu.Lock()
	c.helix.SetAppAccessToken(token)
	c.mu.Unlock()
}

// AppToken returns the token currently in use, empty before the first
// refresh.
func (c *Client) AppToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.helix.GetAppAccessToken()
}

// StreamByLogin returns the live stream for login, or nil when the channel
// is offline.
func (c *Client) StreamByLogin(ctx context.Context, login string) (*Stream, error) {
	_ = ctx
	c.mu.Lock()
	resp, err := c.helix.GetStreams(&helix.StreamsParams{UserLogins: []string{login}})
	c.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("helix streams: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("helix streams: status %d: %s", resp.StatusCode, resp.ErrorMessage)
	}
	if len(resp.Data.Streams) == 0 {
		return nil, nil
	}
	s := resp.Data.Streams[0]
	return &Stream{
		Title:        s.Title,
		GameID:       s.GameID,
		GameName:     s.GameName,
		ViewerCount:  s.ViewerCount,
		ThumbnailURL: s.ThumbnailURL,
	}, nil
}

// GameBoxArt returns the box-art URL for a game, sized for an embed
// thumbnail. Empty when the game is unknown.
func (c *Client) GameBoxArt(ctx context.Context, gameID string) (string, error) {
	_ = ctx
	if gameID == "" {
		return "", nil
	}
	c.mu.Lock()
	resp, err := c.helix.GetGames(&helix.GamesParams{IDs: []string{gameID}})
	c.mu.Unlock()
	if err != nil {
		return "", fmt.Errorf("helix games: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("helix games: status %d: %s", resp.StatusCode, resp.ErrorMessage)
	}
	if len(resp.Data.Games) == 0 {
		return "", nil
	}
	return sizeBoxArt(resp.Data.Games[0].BoxArtURL), nil
}

// FollowerTotal returns the follower count of the channel behind login.
func (c *Client) FollowerTotal(ctx context.Context, login string) (int, error) {
	broadcasterID, err := c.resolveUserID(ctx, login)
	if err != nil {
		return 0, err
	}
	c.mu.Lock()
	resp, err := c.helix.GetChannelFollows(&helix.GetChannelFollowsParams{BroadcasterID: broadcasterID, First: 1})
	c.mu.Unlock()
	if err != nil {
		return 0, fmt.Errorf("helix followers: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("helix followers: status %d: %s", resp.StatusCode, resp.ErrorMessage)
	}
	return int(resp.Data.Total), nil
}

func (c *Client) resolveUserID(ctx context.Context, login string) (string, error) {
	_ = ctx
	c.idsMu.Lock()
	id, ok := c.ids[login]
	c.idsMu.Unlock()
	if ok {
		return id, nil
	}

	c.mu.Lock()
	resp, err := c.helix.GetUsers(&helix.UsersParams{Logins: []string{login}})
	c.mu.Unlock()
	if err != nil {
		return "", fmt.Errorf("helix users: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("helix users: status %d: %s", resp.StatusCode, resp.ErrorMessage)
	}
	if len(resp.Data.Users) == 0 {
		return "", fmt.Errorf("helix users: no user for login %q", login)
	}
	id = resp.Data.Users[0].ID

	c.idsMu.Lock()
	c.ids[login] = id
	c.idsMu.Unlock()
	return id, nil
}

func sizeBoxArt(url string) string {
	url = strings.ReplaceAll(url, "{width}", "285")
	return strings.ReplaceAll(url, "{height}", "380")
}

// PreviewURL builds the live preview image URL for a channel.
func PreviewURL(login string) string {
	return fmt.Sprintf("https://static-cdn.jtvnw.net/previews-ttv/live_user_%s-640x360.jpg", strings.ToLower(login))
}

// ChannelURL builds the public channel URL.
func ChannelURL(login string) string {
	return "https://twitch.tv/" + login
}
