package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post is a document in the posts collection.
type Post struct {
	ID        primitive.ObjectID   `json:"_id" bson:"_id,omitempty"`
	User      primitive.ObjectID   `json:"user" bson:"user"`
	Text      string               `json:"text,omitempty" bson:"text,omitempty"`
	Img       string               `json:"img,omitempty" bson:"img,omitempty"`
	Likes     []primitive.ObjectID `json:"likes" bson:"likes"`
	Comments  []Comment            `json:"comments" bson:"comments"`
	CreatedAt time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// LikedBy reports whether userID is in the post's like set.
func (p *Post) LikedBy(userID primitive.ObjectID) bool {
	return containsID(p.Likes, userID)
}

// Comment is embedded in Post.Comments in insertion order.
type Comment struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id"`
	Text      string             `json:"text" bson:"text"`
	User      primitive.ObjectID `json:"user" bson:"user"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

// PostView is a post with its author and commenters joined in.
type PostView struct {
	ID        primitive.ObjectID   `json:"_id"`
	User      UserSummary          `json:"user"`
	Text      string               `json:"text,omitempty"`
	Img       string               `json:"img,omitempty"`
	Likes     []primitive.ObjectID `json:"likes"`
	Comments  []CommentView        `json:"comments"`
	CreatedAt time.Time            `json:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt"`
}

// CommentView is a comment with its author joined in.
type CommentView struct {
	ID        primitive.ObjectID `json:"_id"`
	Text      string             `json:"text"`
	User      UserSummary        `json:"user"`
	CreatedAt time.Time          `json:"createdAt"`
}

// CreatePostRequest is the body of POST /api/posts/create. Img is a data URI.
type CreatePostRequest struct {
	Text string `json:"text,omitempty" validate:"omitempty,max=2000"`
	Img  string `json:"img,omitempty"`
}

// CommentRequest is the body of POST /api/posts/comment/:id.
type CommentRequest struct {
	Text string `json:"text" validate:"max=1000"`
}

// LikeResult is returned by both branches of the like toggle.
type LikeResult struct {
	Message string               `json:"message"`
	Liked   bool                 `json:"liked"`
	Likes   []primitive.ObjectID `json:"likes"`
}
