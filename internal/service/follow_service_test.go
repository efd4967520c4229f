package service

import (
	"context"
	"testing"

	"mixshare/internal/model"
	"mixshare/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFollowFixture() (*fakeFollowRepo, *fakeUserRepo, *recordingNotifier, FollowService) {
	follows := newFakeFollowRepo()
	users := newFakeUserRepo()
	notifier := &recordingNotifier{}
	return follows, users, notifier, NewFollowService(follows, users, notifier)
}

func TestFollowToggleRoundTrip(t *testing.T) {
	follows, users, notifier, svc := newFollowFixture()
	alice := users.add(&model.User{Username: "alice", Email: "alice@example.com"})
	bob := users.add(&model.User{Username: "bob", Email: "bob@example.com"})

	result, err := svc.Toggle(context.Background(), alice.ID, "bob")
	require.NoError(t, err)
	assert.True(t, result.Following)
	assert.Equal(t, int64(1), result.FollowersCount)
	assert.Equal(t, 1, notifier.count())
	assert.Equal(t, model.NotificationTypeFollow, notifier.sent[0].Type)
	assert.Equal(t, bob.ID, notifier.sent[0].User)

	exists, err := follows.Exists(context.Background(), alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	// Second toggle unfollows and sends no notification
	result, err = svc.Toggle(context.Background(), alice.ID, "bob")
	require.NoError(t, err)
	assert.False(t, result.Following)
	assert.Equal(t, int64(0), result.FollowersCount)
	assert.Equal(t, 1, notifier.count())
}

func TestFollowSelfRejected(t *testing.T) {
	_, users, _, svc := newFollowFixture()
	alice := users.add(&model.User{Username: "alice", Email: "alice@example.com"})

	_, err := svc.Toggle(context.Background(), alice.ID, "alice")
	assert.ErrorIs(t, err, ErrSelfFollow)
}

func TestFollowUnknownUser(t *testing.T) {
	_, users, _, svc := newFollowFixture()
	alice := users.add(&model.User{Username: "alice", Email: "alice@example.com"})

	_, err := svc.Toggle(context.Background(), alice.ID, "ghost")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestFollowersAndFollowing(t *testing.T) {
	_, users, _, svc := newFollowFixture()
	alice := users.add(&model.User{Username: "alice", Email: "alice@example.com"})
	bob := users.add(&model.User{Username: "bob", Email: "bob@example.com"})
	users.add(&model.User{Username: "cara", Email: "cara@example.com"})

	_, err := svc.Toggle(context.Background(), alice.ID, "bob")
	require.NoError(t, err)

	followers, total, err := svc.Followers(context.Background(), "bob", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, followers, 1)
	assert.Equal(t, alice.ID, followers[0].ID)

	following, total, err := svc.Following(context.Background(), "alice", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, following, 1)
	assert.Equal(t, bob.ID, following[0].ID)

	// No edges for cara
	followers, total, err = svc.Followers(context.Background(), "cara", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
	assert.Empty(t, followers)
}
