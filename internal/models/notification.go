package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationType is the action that produced a notification.
type NotificationType string

const (
	NotificationFollow NotificationType = "follow"
	NotificationLike   NotificationType = "like"
)

// Notification is a document in the notifications collection, owned by its To recipient.
type Notification struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Type      NotificationType   `json:"type" bson:"type"`
	From      primitive.ObjectID `json:"from" bson:"from"`
	To        primitive.ObjectID `json:"to" bson:"to"`
	Read      bool               `json:"read" bson:"read"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

// NotificationView is a notification with the sender joined in.
type NotificationView struct {
	ID        primitive.ObjectID `json:"_id"`
	Type      NotificationType   `json:"type"`
	From      UserSummary        `json:"from"`
	To        primitive.ObjectID `json:"to"`
	Read      bool               `json:"read"`
	CreatedAt time.Time          `json:"createdAt"`
}

// FollowResult is returned by both branches of the follow toggle.
type FollowResult struct {
	Message   string `json:"message"`
	Following bool   `json:"following"`
}
