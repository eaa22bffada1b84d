package services

import (
	"context"
	"testing"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// assertSymmetric checks that a follows b exactly when b lists a as a follower.
func assertSymmetric(t *testing.T, env *testEnv, a, b primitive.ObjectID) {
	t.Helper()
	ua, ub := env.users.Get(a), env.users.Get(b)
	assert.Equal(t, ua.IsFollowing(b), containsObjectID(ub.Followers, a))
	assert.Equal(t, ub.IsFollowing(a), containsObjectID(ua.Followers, b))
}

func containsObjectID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func TestFollowUnfollowToggle(t *testing.T) {
	env := newTestEnv(t)
	alice, bob := env.signup(t, "alice"), env.signup(t, "bob")
	ctx := context.Background()

	res, err := env.graph.FollowUnfollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, res.Following)
	assert.Equal(t, "You are now following this account", res.Message)
	assert.True(t, env.users.Get(alice.ID).IsFollowing(bob.ID))
	assertSymmetric(t, env, alice.ID, bob.ID)

	inbox := env.notifications.For(bob.ID)
	require.Len(t, inbox, 1)
	assert.Equal(t, models.NotificationFollow, inbox[0].Type)
	assert.Equal(t, alice.ID, inbox[0].From)
	assert.False(t, inbox[0].Read)

	res, err = env.graph.FollowUnfollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, res.Following)
	assert.Equal(t, "You unfollowed this account", res.Message)
	assert.Empty(t, env.users.Get(alice.ID).Following)
	assert.Empty(t, env.users.Get(bob.ID).Followers)
	assertSymmetric(t, env, alice.ID, bob.ID)

	// unfollow does not notify
	assert.Len(t, env.notifications.For(bob.ID), 1)
}

func TestFollowSelfRejected(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signup(t, "alice")

	_, err := env.graph.FollowUnfollow(context.Background(), alice.ID, alice.ID)
	assert.ErrorIs(t, err, models.ErrSelfFollow)
	requireAppError(t, err, models.KindValidation, "You can't follow/unfollow yourself")

	stored := env.users.Get(alice.ID)
	assert.Empty(t, stored.Following)
	assert.Empty(t, stored.Followers)
	assert.Zero(t, env.users.Calls("GetUserByID"))
}

func TestFollowMissingUser(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signup(t, "alice")

	_, err := env.graph.FollowUnfollow(context.Background(), alice.ID, primitive.NewObjectID())
	requireAppError(t, err, models.KindNotFound, "User not found")
	assert.Empty(t, env.users.Get(alice.ID).Following)
}

func TestFollowRevertsFirstSideWhenSecondFails(t *testing.T) {
	env := newTestEnv(t)
	alice, bob := env.signup(t, "alice"), env.signup(t, "bob")
	env.users.FailOn("AddFollower", errBoom)

	_, err := env.graph.FollowUnfollow(context.Background(), alice.ID, bob.ID)
	requireAppError(t, err, models.KindInternal, "")

	assert.Empty(t, env.users.Get(alice.ID).Following)
	assert.Empty(t, env.users.Get(bob.ID).Followers)
	assert.Zero(t, env.notifications.Count())
}

func TestUnfollowRevertsFirstSideWhenSecondFails(t *testing.T) {
	env := newTestEnv(t)
	alice, bob := env.signup(t, "alice"), env.signup(t, "bob")
	ctx := context.Background()
	_, err := env.graph.FollowUnfollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	env.users.FailOn("RemoveFollower", errBoom)
	_, err = env.graph.FollowUnfollow(ctx, alice.ID, bob.ID)
	requireAppError(t, err, models.KindInternal, "")

	assert.True(t, env.users.Get(alice.ID).IsFollowing(bob.ID))
	assertSymmetric(t, env, alice.ID, bob.ID)
}

func TestFollowRevertsBothSidesWhenNotificationFails(t *testing.T) {
	env := newTestEnv(t)
	alice, bob := env.signup(t, "alice"), env.signup(t, "bob")
	env.notifications.FailOn("CreateNotification", errBoom)

	_, err := env.graph.FollowUnfollow(context.Background(), alice.ID, bob.ID)
	requireAppError(t, err, models.KindInternal, "")

	assert.Empty(t, env.users.Get(alice.ID).Following)
	assert.Empty(t, env.users.Get(bob.ID).Followers)
}

func TestSuggestedUsers(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signup(t, "alice")
	ctx := context.Background()

	var others []*models.User
	for _, name := range []string{"bob", "carol", "dave", "erin", "frank", "grace"} {
		others = append(others, env.signup(t, name))
	}
	_, err := env.graph.FollowUnfollow(ctx, alice.ID, others[0].ID)
	require.NoError(t, err)
	_, err = env.graph.FollowUnfollow(ctx, alice.ID, others[1].ID)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		suggested, err := env.graph.SuggestedUsers(ctx, alice.ID)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(suggested), 4)
		for _, u := range suggested {
			assert.NotEqual(t, alice.ID, u.ID)
			assert.NotEqual(t, others[0].ID, u.ID)
			assert.NotEqual(t, others[1].ID, u.ID)
		}
	}
}

func TestFollowersAndFollowing(t *testing.T) {
	env := newTestEnv(t)
	alice, bob, carol := env.signup(t, "alice"), env.signup(t, "bob"), env.signup(t, "carol")
	ctx := context.Background()

	_, err := env.graph.FollowUnfollow(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	_, err = env.graph.FollowUnfollow(ctx, carol.ID, alice.ID)
	require.NoError(t, err)

	followers, err := env.graph.Followers(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, followers, 2)
	assert.Equal(t, "bob", followers[0].Username)
	assert.Equal(t, "carol", followers[1].Username)

	following, err := env.graph.Following(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, alice.ID, following[0].ID)

	_, err = env.graph.Followers(ctx, "ghost")
	requireAppError(t, err, models.KindNotFound, "User not found")
}
