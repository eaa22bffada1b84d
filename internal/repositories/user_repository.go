package repositories

import (
	"context"
	"time"

	"github.com/anonto42/nano-social/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// UserRepository defines the interface for user data operations.
//
// The Add*/Remove* methods are atomic conditional updates on a single document:
// they report whether the document changed, so a repeated call is a no-op.
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByFirebaseUID(ctx context.Context, uid string) (*models.User, error)
	LinkFirebaseUID(ctx context.Context, userID primitive.ObjectID, uid string) (bool, error)
	GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	SampleUsers(ctx context.Context, excludeID primitive.ObjectID, size int) ([]models.User, error)
	AddFollowing(ctx context.Context, userID, targetID primitive.ObjectID) (bool, error)
	RemoveFollowing(ctx context.Context, userID, targetID primitive.ObjectID) (bool, error)
	AddFollower(ctx context.Context, userID, followerID primitive.ObjectID) (bool, error)
	RemoveFollower(ctx context.Context, userID, followerID primitive.ObjectID) (bool, error)
	AddLikedPost(ctx context.Context, userID, postID primitive.ObjectID) (bool, error)
	RemoveLikedPost(ctx context.Context, userID, postID primitive.ObjectID) (bool, error)
}

// MongoUserRepository implements UserRepository for MongoDB
type MongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new MongoUserRepository
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{collection: db.Collection("users")}
}

// CreateUser inserts a new user with empty relationship lists.
func (r *MongoUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	// $push on a null field fails, so the arrays must exist from the start
	if user.Followers == nil {
		user.Followers = []primitive.ObjectID{}
	}
	if user.Following == nil {
		user.Following = []primitive.ObjectID{}
	}
	if user.LikedPosts == nil {
		user.LikedPosts = []primitive.ObjectID{}
	}
	_, err := r.collection.InsertOne(ctx, user)
	return translate(err)
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	if err := r.collection.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// GetUserByID retrieves a user by ID
func (r *MongoUserRepository) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// GetUserByUsername retrieves a user by handle
func (r *MongoUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

// GetUserByEmail retrieves a user by email
func (r *MongoUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// GetUserByFirebaseUID retrieves the user linked to a Firebase account
func (r *MongoUserRepository) GetUserByFirebaseUID(ctx context.Context, uid string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"firebaseUid": uid})
}

// LinkFirebaseUID attaches uid to a user that has no Firebase account yet.
// false means the user is already linked.
func (r *MongoUserRepository) LinkFirebaseUID(ctx context.Context, userID primitive.ObjectID, uid string) (bool, error) {
	filter := bson.M{"_id": userID, "firebaseUid": bson.M{"$exists": false}}
	update := bson.M{"$set": bson.M{"firebaseUid": uid, "updatedAt": time.Now()}}
	changed, err := r.conditionalUpdate(ctx, userID, filter, update)
	return changed, translate(err)
}

// GetUsersByIDs retrieves every existing user in ids, in no particular order.
func (r *MongoUserRepository) GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	users := []models.User{}
	if len(ids) == 0 {
		return users, nil
	}
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateUser writes the identity and profile fields of user. Relationship lists are
// never written here; they only change through the conditional updates below.
func (r *MongoUserRepository) UpdateUser(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now()
	update := bson.M{
		"$set": bson.M{
			"username":   user.Username,
			"fullName":   user.FullName,
			"email":      user.Email,
			"password":   user.Password,
			"bio":        user.Bio,
			"link":       user.Link,
			"profilePic": user.ProfilePic,
			"coverPic":   user.CoverPic,
			"updatedAt":  user.UpdatedAt,
		},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": user.ID}, update)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SampleUsers returns up to size random users other than excludeID.
func (r *MongoUserRepository) SampleUsers(ctx context.Context, excludeID primitive.ObjectID, size int) ([]models.User, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "_id", Value: bson.D{{Key: "$ne", Value: excludeID}}}}}},
		{{Key: "$sample", Value: bson.D{{Key: "size", Value: size}}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// addToList appends value to the array field unless it is already present.
func (r *MongoUserRepository) addToList(ctx context.Context, id primitive.ObjectID, field string, value primitive.ObjectID) (bool, error) {
	filter := bson.M{"_id": id, field: bson.M{"$ne": value}}
	update := bson.M{
		"$push": bson.M{field: value},
		"$set":  bson.M{"updatedAt": time.Now()},
	}
	return r.conditionalUpdate(ctx, id, filter, update)
}

// removeFromList pulls value from the array field if it is present.
func (r *MongoUserRepository) removeFromList(ctx context.Context, id primitive.ObjectID, field string, value primitive.ObjectID) (bool, error) {
	filter := bson.M{"_id": id, field: value}
	update := bson.M{
		"$pull": bson.M{field: value},
		"$set":  bson.M{"updatedAt": time.Now()},
	}
	return r.conditionalUpdate(ctx, id, filter, update)
}

func (r *MongoUserRepository) conditionalUpdate(ctx context.Context, id primitive.ObjectID, filter, update bson.M) (bool, error) {
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	if res.MatchedCount > 0 {
		return true, nil
	}
	// the condition failed: either the list was already in the target state or the user is gone
	n, err := r.collection.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, ErrNotFound
	}
	return false, nil
}

func (r *MongoUserRepository) AddFollowing(ctx context.Context, userID, targetID primitive.ObjectID) (bool, error) {
	return r.addToList(ctx, userID, "following", targetID)
}

func (r *MongoUserRepository) RemoveFollowing(ctx context.Context, userID, targetID primitive.ObjectID) (bool, error) {
	return r.removeFromList(ctx, userID, "following", targetID)
}

func (r *MongoUserRepository) AddFollower(ctx context.Context, userID, followerID primitive.ObjectID) (bool, error) {
	return r.addToList(ctx, userID, "followers", followerID)
}

func (r *MongoUserRepository) RemoveFollower(ctx context.Context, userID, followerID primitive.ObjectID) (bool, error) {
	return r.removeFromList(ctx, userID, "followers", followerID)
}

func (r *MongoUserRepository) AddLikedPost(ctx context.Context, userID, postID primitive.ObjectID) (bool, error) {
	return r.addToList(ctx, userID, "likedPosts", postID)
}

func (r *MongoUserRepository) RemoveLikedPost(ctx context.Context, userID, postID primitive.ObjectID) (bool, error) {
	return r.removeFromList(ctx, userID, "likedPosts", postID)
}
