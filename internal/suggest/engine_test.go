package suggest

import (
	"testing"

	"streamwarden/internal/store"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	s, err := store.New(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	return NewEngine(store.NewSuggestionRepo(s), zap.NewNop())
}

func TestCreateThenUpvote(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Create("m1", "titre", "description", store.SuggestionAuthor{Name: "alice#0"})
	require.NoError(t, err)

	res, err := e.CastVote("m1", "u1", DirectionUp)
	require.NoError(t, err)
	require.Equal(t, StatusCounted, res.Status)
	require.Equal(t, 1, res.Upvotes)
	require.Equal(t, 0, res.Downvotes)
}

func TestDuplicateVoteRejectedEitherDirection(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Create("m1", "t", "d", store.SuggestionAuthor{})
	require.NoError(t, err)

	first, err := e.CastVote("m1", "u1", DirectionUp)
	require.NoError(t, err)
	require.Equal(t, StatusCounted, first.Status)

	// Same user, opposite direction: rejected, counts unchanged.
	second, err := e.CastVote("m1", "u1", DirectionDown)
	require.NoError(t, err)
	require.Equal(t, StatusAlreadyVoted, second.Status)
	require.Equal(t, 1, second.Upvotes)
	require.Equal(t, 0, second.Downvotes)

	record, ok := e.Record("m1")
	require.True(t, ok)
	require.Equal(t, []string{"u1"}, record.Voters)
}

func TestVoteInvariantHolds(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Create("m1", "t", "d", store.SuggestionAuthor{})
	require.NoError(t, err)

	votes := []struct {
		user string
		dir  Direction
	}{
		{"u1", DirectionUp},
		{"u2", DirectionDown},
		{"u3", DirectionUp},
		{"u1", DirectionUp},   // duplicate
		{"u2", DirectionUp},   // duplicate, flipped
		{"u4", DirectionDown},
	}
	for _, v := range votes {
		_, err := e.CastVote("m1", v.user, v.dir)
		require.NoError(t, err)
	}

	record, ok := e.Record("m1")
	require.True(t, ok)
	require.Equal(t, record.Upvotes+record.Downvotes, len(record.Voters))
	require.Equal(t, 2, record.Upvotes)
	require.Equal(t, 2, record.Downvotes)

	seen := make(map[string]bool)
	for _, voter := range record.Voters {
		require.False(t, seen[voter], "voter %s appears twice", voter)
		seen[voter] = true
	}
}

func TestVoteOnUnknownRecord(t *testing.T) {
	e := newTestEngine(t)

	res, err := e.CastVote("missing", "u1", DirectionUp)
	require.NoError(t, err)
	require.Equal(t, StatusUnknownRecord, res.Status)
}

func TestInvalidDirectionRejected(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Create("m1", "t", "d", store.SuggestionAuthor{})
	require.NoError(t, err)

	res, err := e.CastVote("m1", "u1", Direction("sideways"))
	require.NoError(t, err)
	require.Equal(t, StatusInvalidDirection, res.Status)

	record, _ := e.Record("m1")
	require.Empty(t, record.Voters)
}

func TestSwapExplanationReturnsOldPointer(t *testing.T) {
	e := newTestEngine(t)

	old, err := e.SwapExplanation("e1")
	require.NoError(t, err)
	require.Empty(t, old)

	old, err = e.SwapExplanation("e2")
	require.NoError(t, err)
	require.Equal(t, "e1", old)
}
