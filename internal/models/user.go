package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an account document in the users collection.
type User struct {
	ID          primitive.ObjectID   `json:"_id" bson:"_id,omitempty"`
	Username    string               `json:"username" bson:"username"`
	FullName    string               `json:"fullName" bson:"fullName"`
	Email       string               `json:"email" bson:"email"`
	Password    string               `json:"-" bson:"password"` // bcrypt hash, never serialized
	FirebaseUID string               `json:"-" bson:"firebaseUid,omitempty"`
	Followers   []primitive.ObjectID `json:"followers" bson:"followers"`
	Following   []primitive.ObjectID `json:"following" bson:"following"`
	ProfilePic  string               `json:"profilePic" bson:"profilePic"`
	CoverPic    string               `json:"coverPic" bson:"coverPic"`
	Bio         string               `json:"bio" bson:"bio"`
	Link        string               `json:"link" bson:"link"`
	LikedPosts  []primitive.ObjectID `json:"likedPosts" bson:"likedPosts"`
	CreatedAt   time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// UserSummary is the author info joined onto posts, comments and notifications.
type UserSummary struct {
	ID         primitive.ObjectID `json:"_id"`
	Username   string             `json:"username"`
	FullName   string             `json:"fullName"`
	ProfilePic string             `json:"profilePic"`
}

// ToSummary returns the compact public view of the user.
func (u *User) ToSummary() UserSummary {
	return UserSummary{
		ID:         u.ID,
		Username:   u.Username,
		FullName:   u.FullName,
		ProfilePic: u.ProfilePic,
	}
}

// IsFollowing reports whether the user follows id.
func (u *User) IsFollowing(id primitive.ObjectID) bool {
	return containsID(u.Following, id)
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// SignupRequest is the body of POST /api/auth/signup.
type SignupRequest struct {
	Username string `json:"username" validate:"required,min=1,max=50"`
	FullName string `json:"fullName" validate:"required,max=100"`
	Email    string `json:"email" validate:"emailshape"`
	Password string `json:"password"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// FirebaseLoginRequest is the body of POST /api/auth/firebase.
type FirebaseLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// UpdateProfileRequest is the body of POST /api/users/update. Empty fields keep their current value.
type UpdateProfileRequest struct {
	Username        string `json:"username,omitempty" validate:"omitempty,max=50"`
	FullName        string `json:"fullName,omitempty" validate:"omitempty,max=100"`
	Email           string `json:"email,omitempty" validate:"omitempty,emailshape"`
	CurrentPassword string `json:"currentPassword,omitempty"`
	NewPassword     string `json:"newPassword,omitempty"`
	Bio             string `json:"bio,omitempty" validate:"omitempty,max=300"`
	Link            string `json:"link,omitempty" validate:"omitempty,max=200"`
	ProfilePic      string `json:"profilePic,omitempty"`
	CoverPic        string `json:"coverPic,omitempty"`
}

// JwtCustomClaims are the session token claims.
type JwtCustomClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}
