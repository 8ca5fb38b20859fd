package livestatus

import (
	"context"
	"errors"
	"testing"

	"streamwarden/internal/store"
	"streamwarden/internal/twitch"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSource struct {
	streams []*twitch.Stream
	errs    []error
	idx     int
}

func (f *fakeSource) StreamByLogin(ctx context.Context, login string) (*twitch.Stream, error) {
	i := f.idx
	f.idx++
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	if err != nil {
		return nil, err
	}
	return f.streams[i], nil
}

func (f *fakeSource) GameBoxArt(ctx context.Context, gameID string) (string, error) {
	return "https://example.com/art.jpg", nil
}

type fakeNotifier struct {
	liveAnnouncements  []twitch.Stream
	endedAnnouncements int
	streamingActivity  []string
	watchingActivity   []string
}

func (f *fakeNotifier) AnnounceLive(stream twitch.Stream, boxArtURL string) error {
	f.liveAnnouncements = append(f.liveAnnouncements, stream)
	return nil
}

func (f *fakeNotifier) AnnounceEnded() error {
	f.endedAnnouncements++
	return nil
}

func (f *fakeNotifier) SetStreamingActivity(title string) error {
	f.streamingActivity = append(f.streamingActivity, title)
	return nil
}

func (f *fakeNotifier) SetWatchingActivity(text string) error {
	f.watchingActivity = append(f.watchingActivity, text)
	return nil
}

type fakeStatusStore struct {
	status store.LiveStatus
	sets   int
}

func (f *fakeStatusStore) Get() (store.LiveStatus, error) { return f.status, nil }

func (f *fakeStatusStore) Set(status store.LiveStatus) error {
	f.status = status
	f.sets++
	return nil
}

func TestMachineTransitions(t *testing.T) {
	m := NewMachine(false)
	require.Equal(t, TransitionNone, m.Observe(false))
	require.Equal(t, TransitionWentLive, m.Observe(true))
	require.Equal(t, TransitionNone, m.Observe(true))
	require.Equal(t, TransitionWentOffline, m.Observe(false))
	require.Equal(t, TransitionNone, m.Observe(false))
}

func TestExactlyTwoTransitionsOverFiveTicks(t *testing.T) {
	live := &twitch.Stream{Title: "parties classées", GameName: "Tetris", ViewerCount: 12}
	source := &fakeSource{streams: []*twitch.Stream{nil, nil, live, live, nil}}
	notifier := &fakeNotifier{}
	status := &fakeStatusStore{}

	r := New("streamer", []string{"Twitch : streamer"}, source, status, notifier, zap.NewNop())
	for i := 0; i < 5; i++ {
		require.NoError(t, r.Tick(context.Background()))
	}

	require.Len(t, notifier.liveAnnouncements, 1)
	require.Equal(t, 1, notifier.endedAnnouncements)
	require.False(t, status.status.IsLive)
	require.Equal(t, 2, status.sets, "only transitions persist the flag")
}

func TestFetchFailureLeavesStateAlone(t *testing.T) {
	live := &twitch.Stream{Title: "t"}
	source := &fakeSource{
		streams: []*twitch.Stream{live, nil, live},
		errs:    []error{nil, errors.New("api down"), nil},
	}
	notifier := &fakeNotifier{}
	status := &fakeStatusStore{}

	r := New("streamer", nil, source, status, notifier, zap.NewNop())

	require.NoError(t, r.Tick(context.Background()))
	require.Len(t, notifier.liveAnnouncements, 1)

	// Failed fetch: no transition, no ended notice, error surfaced.
	require.Error(t, r.Tick(context.Background()))
	require.Equal(t, 0, notifier.endedAnnouncements)
	require.True(t, status.status.IsLive)

	// Stream still up on the next successful poll: no duplicate announce.
	require.NoError(t, r.Tick(context.Background()))
	require.Len(t, notifier.liveAnnouncements, 1)
}

func TestPersistedStateSeedsMachine(t *testing.T) {
	source := &fakeSource{streams: []*twitch.Stream{{Title: "t"}}}
	notifier := &fakeNotifier{}
	status := &fakeStatusStore{status: store.LiveStatus{IsLive: true}}

	r := New("streamer", nil, source, status, notifier, zap.NewNop())
	require.NoError(t, r.Tick(context.Background()))

	// Already live across a restart: no second announcement.
	require.Empty(t, notifier.liveAnnouncements)
}

func TestActivityRotatesWhileOffline(t *testing.T) {
	source := &fakeSource{streams: []*twitch.Stream{nil, nil, nil}}
	notifier := &fakeNotifier{}

	r := New("streamer", []string{"a", "b"}, source, &fakeStatusStore{}, notifier, zap.NewNop())
	for i := 0; i < 3; i++ {
		require.NoError(t, r.Tick(context.Background()))
	}
	require.Equal(t, []string{"a", "b", "a"}, notifier.watchingActivity)
}
