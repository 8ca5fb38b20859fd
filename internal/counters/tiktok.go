package counters

import "context"

// TikTokSource is a placeholder follower source. TikTok exposes no public
// follower API; the counter shows zero until one exists.
// TODO: wire a real TikTok source once the scraping endpoint is settled.
type TikTokSource struct{}

func (TikTokSource) FollowerTotal(ctx context.Context, login string) (int, error) {
	return 0, nil
}
