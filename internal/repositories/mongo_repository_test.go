package repositories

import (
	"context"
	"testing"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func updateResponse(matched int32) bson.D {
	return mtest.CreateSuccessResponse(bson.E{Key: "n", Value: matched}, bson.E{Key: "nModified", Value: matched})
}

func countResponse(ns string, n int32) bson.D {
	return mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{{Key: "n", Value: n}})
}

func TestUserRepositoryTranslatesErrors(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("missing user", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.users", mtest.FirstBatch))

		_, err := repo.GetUserByID(context.Background(), primitive.NewObjectID())
		assert.ErrorIs(t, err, ErrNotFound)
	})

	mt.Run("duplicate username", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: db.users index: username_1",
		}))

		err := repo.CreateUser(context.Background(), &models.User{Username: "alice", Email: "alice@example.com"})
		assert.ErrorIs(t, err, ErrDuplicateKey)
	})
}

func TestUserRepositoryConditionalUpdates(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	userID, targetID := primitive.NewObjectID(), primitive.NewObjectID()

	mt.Run("edge added", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB)
		mt.AddMockResponses(updateResponse(1))

		changed, err := repo.AddFollowing(context.Background(), userID, targetID)
		require.NoError(t, err)
		assert.True(t, changed)
	})

	mt.Run("edge already present", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB)
		mt.AddMockResponses(updateResponse(0), countResponse("db.users", 1))

		changed, err := repo.AddFollowing(context.Background(), userID, targetID)
		require.NoError(t, err)
		assert.False(t, changed)
	})

	mt.Run("user gone", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB)
		mt.AddMockResponses(updateResponse(0), countResponse("db.users", 0))

		_, err := repo.RemoveFollower(context.Background(), userID, targetID)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestPostRepositoryLikes(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	postID, userID := primitive.NewObjectID(), primitive.NewObjectID()

	mt.Run("like added", func(mt *mtest.T) {
		repo := NewMongoPostRepository(mt.DB)
		mt.AddMockResponses(updateResponse(1))

		changed, err := repo.AddLike(context.Background(), postID, userID)
		require.NoError(t, err)
		assert.True(t, changed)
	})

	mt.Run("unlike on missing post", func(mt *mtest.T) {
		repo := NewMongoPostRepository(mt.DB)
		mt.AddMockResponses(updateResponse(0), countResponse("db.posts", 0))

		_, err := repo.RemoveLike(context.Background(), postID, userID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	mt.Run("delete missing post", func(mt *mtest.T) {
		repo := NewMongoPostRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: int32(0)}))

		assert.ErrorIs(t, repo.DeletePost(context.Background(), postID), ErrNotFound)
	})
}

var (
	_ UserRepository         = (*MongoUserRepository)(nil)
	_ PostRepository         = (*MongoPostRepository)(nil)
	_ NotificationRepository = (*MongoNotificationRepository)(nil)
)

func TestUserRepositoryLinkFirebaseUID(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	userID := primitive.NewObjectID()

	mt.Run("linked", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB)
		mt.AddMockResponses(updateResponse(1))

		linked, err := repo.LinkFirebaseUID(context.Background(), userID, "fb-1")
		require.NoError(t, err)
		assert.True(t, linked)
	})

	mt.Run("already linked", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB)
		mt.AddMockResponses(updateResponse(0), countResponse("db.users", 1))

		linked, err := repo.LinkFirebaseUID(context.Background(), userID, "fb-2")
		require.NoError(t, err)
		assert.False(t, linked)
	})

	mt.Run("uid owned by another user", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: db.users index: firebaseUid_1",
		}))

		_, err := repo.LinkFirebaseUID(context.Background(), userID, "fb-3")
		assert.ErrorIs(t, err, ErrDuplicateKey)
	})
}

func TestNotificationRepositoryMarkAsReadSkipsEmpty(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("no ids", func(mt *mtest.T) {
		repo := NewMongoNotificationRepository(mt.DB)
		// no mock response queued: any round trip would fail
		assert.NoError(t, repo.MarkAsRead(context.Background(), primitive.NewObjectID(), nil))
	})
}

func TestNotificationRepositoryDelete(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("deleted", func(mt *mtest.T) {
		repo := NewMongoNotificationRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: int32(1)}))

		assert.NoError(t, repo.DeleteNotification(context.Background(), primitive.NewObjectID()))
	})

	mt.Run("bulk delete count", func(mt *mtest.T) {
		repo := NewMongoNotificationRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: int32(3)}))

		n, err := repo.DeleteByRecipientID(context.Background(), primitive.NewObjectID())
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
	})
}
