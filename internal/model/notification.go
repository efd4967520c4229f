package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types
const (
	NotificationTypeLike     = "like"
	NotificationTypeComment  = "comment"
	NotificationTypeFollow   = "follow"
	NotificationTypeApproval = "approval"
)

type Notification struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	User      primitive.ObjectID  `bson:"user" json:"user"` // recipient
	Sender    *primitive.ObjectID `bson:"sender,omitempty" json:"sender,omitempty"`
	Type      string              `bson:"type" json:"type"`
	Message   string              `bson:"message" json:"message"`
	TargetID  *primitive.ObjectID `bson:"targetId,omitempty" json:"target_id,omitempty"`
	IsRead    bool                `bson:"isRead" json:"is_read"`
	CreatedAt time.Time           `bson:"createdAt" json:"created_at"`
}
