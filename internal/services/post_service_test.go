package services

import (
	"context"
	"testing"

	"github.com/anonto42/nano-social/backend/internal/media"
	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCreatePost(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signup(t, "alice")
	ctx := context.Background()

	_, err := env.feed.Create(ctx, alice.ID, models.CreatePostRequest{Text: "   "})
	requireAppError(t, err, models.KindValidation, "Post must have a text or image")

	view, err := env.feed.Create(ctx, alice.ID, models.CreatePostRequest{Text: "hello world"})
	require.NoError(t, err)
	assert.Equal(t, "hello world", view.Text)
	assert.Equal(t, "alice", view.User.Username)
	assert.Empty(t, view.Likes)
	assert.Empty(t, view.Comments)

	withImg, err := env.feed.Create(ctx, alice.ID, models.CreatePostRequest{Img: testutil.PNG})
	require.NoError(t, err)
	assert.NotEmpty(t, withImg.Img)
	assert.True(t, env.media.Has(withImg.Img))

	_, err = env.feed.Create(ctx, alice.ID, models.CreatePostRequest{Img: "https://example.com/a.png"})
	requireAppError(t, err, models.KindValidation, "Invalid image data")

	_, err = env.feed.Create(ctx, primitive.NewObjectID(), models.CreatePostRequest{Text: "orphan"})
	requireAppError(t, err, models.KindNotFound, "User not found")
}

func TestCreatePostRemovesUploadWhenInsertFails(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signup(t, "alice")
	env.posts.FailOn("CreatePost", errBoom)

	_, err := env.feed.Create(context.Background(), alice.ID, models.CreatePostRequest{Text: "hi", Img: testutil.PNG})
	requireAppError(t, err, models.KindInternal, "")
	assert.Equal(t, 1, env.media.Calls("Upload"))
	assert.Len(t, env.media.Deleted(), 1)
}

func TestDeletePost(t *testing.T) {
	env := newTestEnv(t)
	alice, bob := env.signup(t, "alice"), env.signup(t, "bob")
	ctx := context.Background()

	post, err := env.feed.Create(ctx, alice.ID, models.CreatePostRequest{Text: "mine", Img: testutil.PNG})
	require.NoError(t, err)

	err = env.feed.Delete(ctx, bob.ID, post.ID)
	requireAppError(t, err, models.KindForbidden, "You are not authorized to delete this post")
	assert.NotNil(t, env.posts.Get(post.ID))
	assert.True(t, env.media.Has(post.Img))

	require.NoError(t, env.feed.Delete(ctx, alice.ID, post.ID))
	assert.Nil(t, env.posts.Get(post.ID))
	assert.False(t, env.media.Has(post.Img))
	assert.Equal(t, []string{media.AssetID(post.Img)}, env.media.Deleted())

	err = env.feed.Delete(ctx, alice.ID, post.ID)
	requireAppError(t, err, models.KindNotFound, "Post not found")
}

func TestDeletePostKeepsDocumentWhenImageDeleteFails(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signup(t, "alice")
	ctx := context.Background()

	post, err := env.feed.Create(ctx, alice.ID, models.CreatePostRequest{Img: testutil.PNG})
	require.NoError(t, err)

	env.media.FailOn("Delete", errBoom)
	err = env.feed.Delete(ctx, alice.ID, post.ID)
	requireAppError(t, err, models.KindInternal, "")
	assert.NotNil(t, env.posts.Get(post.ID))
}

func TestCommentOnPost(t *testing.T) {
	env := newTestEnv(t)
	alice, bob := env.signup(t, "alice"), env.signup(t, "bob")
	ctx := context.Background()

	post, err := env.feed.Create(ctx, alice.ID, models.CreatePostRequest{Text: "hi"})
	require.NoError(t, err)

	_, err = env.feed.Comment(ctx, bob.ID, post.ID, "  ")
	requireAppError(t, err, models.KindValidation, "Text is required")

	_, err = env.feed.Comment(ctx, bob.ID, primitive.NewObjectID(), "hello")
	requireAppError(t, err, models.KindNotFound, "Post not found")

	_, err = env.feed.Comment(ctx, bob.ID, post.ID, "first")
	require.NoError(t, err)
	view, err := env.feed.Comment(ctx, alice.ID, post.ID, "second")
	require.NoError(t, err)

	require.Len(t, view.Comments, 2)
	assert.Equal(t, "first", view.Comments[0].Text)
	assert.Equal(t, "bob", view.Comments[0].User.Username)
	assert.Equal(t, "second", view.Comments[1].Text)
	assert.Equal(t, "alice", view.Comments[1].User.Username)
}

func TestLikeUnlikeToggle(t *testing.T) {
	env := newTestEnv(t)
	alice, bob := env.signup(t, "alice"), env.signup(t, "bob")
	ctx := context.Background()

	post, err := env.feed.Create(ctx, alice.ID, models.CreatePostRequest{Text: "like me"})
	require.NoError(t, err)

	res, err := env.feed.LikeUnlike(ctx, bob.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, res.Liked)
	assert.Equal(t, "You liked this post", res.Message)
	assert.Equal(t, []primitive.ObjectID{bob.ID}, res.Likes)
	assert.Equal(t, []primitive.ObjectID{post.ID}, env.users.Get(bob.ID).LikedPosts)

	res, err = env.feed.LikeUnlike(ctx, bob.ID, post.ID)
	require.NoError(t, err)
	assert.False(t, res.Liked)
	assert.Equal(t, "You unliked this post", res.Message)
	assert.Empty(t, res.Likes)
	assert.Empty(t, env.posts.Get(post.ID).Likes)
	assert.Empty(t, env.users.Get(bob.ID).LikedPosts)

	assert.Len(t, env.notifications.For(alice.ID), 1)

	_, err = env.feed.LikeUnlike(ctx, bob.ID, primitive.NewObjectID())
	requireAppError(t, err, models.KindNotFound, "Post not found")
}

func TestSelfLikeDoesNotNotify(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signup(t, "alice")
	ctx := context.Background()

	post, err := env.feed.Create(ctx, alice.ID, models.CreatePostRequest{Text: "me"})
	require.NoError(t, err)

	res, err := env.feed.LikeUnlike(ctx, alice.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, res.Liked)
	assert.Zero(t, env.notifications.Count())
}

func TestLikeRevertsWhenNotificationFails(t *testing.T) {
	env := newTestEnv(t)
	alice, bob := env.signup(t, "alice"), env.signup(t, "bob")
	ctx := context.Background()

	post, err := env.feed.Create(ctx, alice.ID, models.CreatePostRequest{Text: "x"})
	require.NoError(t, err)

	env.notifications.FailOn("CreateNotification", errBoom)
	_, err = env.feed.LikeUnlike(ctx, bob.ID, post.ID)
	requireAppError(t, err, models.KindInternal, "")

	assert.Empty(t, env.posts.Get(post.ID).Likes)
	assert.Empty(t, env.users.Get(bob.ID).LikedPosts)
}

func TestLikeRevertsWhenLikedListUpdateFails(t *testing.T) {
	env := newTestEnv(t)
	alice, bob := env.signup(t, "alice"), env.signup(t, "bob")
	ctx := context.Background()

	post, err := env.feed.Create(ctx, alice.ID, models.CreatePostRequest{Text: "x"})
	require.NoError(t, err)

	env.users.FailOn("AddLikedPost", errBoom)
	_, err = env.feed.LikeUnlike(ctx, bob.ID, post.ID)
	requireAppError(t, err, models.KindInternal, "")
	assert.Empty(t, env.posts.Get(post.ID).Likes)
	assert.Zero(t, env.notifications.Count())
}

func TestFeeds(t *testing.T) {
	env := newTestEnv(t)
	alice, bob, carol := env.signup(t, "alice"), env.signup(t, "bob"), env.signup(t, "carol")
	ctx := context.Background()

	p1, err := env.feed.Create(ctx, bob.ID, models.CreatePostRequest{Text: "bob 1"})
	require.NoError(t, err)
	p2, err := env.feed.Create(ctx, carol.ID, models.CreatePostRequest{Text: "carol 1"})
	require.NoError(t, err)
	p3, err := env.feed.Create(ctx, bob.ID, models.CreatePostRequest{Text: "bob 2"})
	require.NoError(t, err)

	all, err := env.feed.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []primitive.ObjectID{p3.ID, p2.ID, p1.ID}, postIDs(all))

	_, err = env.graph.FollowUnfollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	following, err := env.feed.Following(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{p3.ID, p1.ID}, postIDs(following))

	byBob, err := env.feed.ByUser(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{p3.ID, p1.ID}, postIDs(byBob))
	_, err = env.feed.ByUser(ctx, "ghost")
	requireAppError(t, err, models.KindNotFound, "User not found")

	_, err = env.feed.LikeUnlike(ctx, alice.ID, p2.ID)
	require.NoError(t, err)
	_, err = env.feed.LikeUnlike(ctx, alice.ID, p1.ID)
	require.NoError(t, err)
	liked, err := env.feed.Liked(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{p2.ID, p1.ID}, postIDs(liked))

	require.NoError(t, env.feed.Delete(ctx, carol.ID, p2.ID))
	liked, err = env.feed.Liked(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{p1.ID}, postIDs(liked))

	_, err = env.feed.Liked(ctx, primitive.NewObjectID())
	requireAppError(t, err, models.KindNotFound, "User not found")
}

func TestAliceBobLikeEndToEnd(t *testing.T) {
	env := newTestEnv(t)
	alice, bob := env.signup(t, "alice"), env.signup(t, "bob")
	ctx := context.Background()

	post, err := env.feed.Create(ctx, alice.ID, models.CreatePostRequest{Text: "hi"})
	require.NoError(t, err)

	_, err = env.feed.LikeUnlike(ctx, bob.ID, post.ID)
	require.NoError(t, err)
	assert.Contains(t, env.posts.Get(post.ID).Likes, bob.ID)

	inbox, err := env.notifier.List(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, models.NotificationLike, inbox[0].Type)
	assert.Equal(t, bob.ID, inbox[0].From.ID)
	assert.Equal(t, "bob", inbox[0].From.Username)
	assert.Equal(t, alice.ID, inbox[0].To)
	assert.False(t, inbox[0].Read)

	stored := env.notifications.For(alice.ID)
	require.Len(t, stored, 1)
	assert.True(t, stored[0].Read)
}

func postIDs(views []models.PostView) []primitive.ObjectID {
	ids := make([]primitive.ObjectID, 0, len(views))
	for _, v := range views {
		ids = append(ids, v.ID)
	}
	return ids
}
