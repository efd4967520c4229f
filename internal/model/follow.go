package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Follow is the join document between a follower and the account they
// follow. The (follower, following) pair is unique, enforced by a
// compound index.
type Follow struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Follower  primitive.ObjectID `bson:"follower" json:"follower"`
	Following primitive.ObjectID `bson:"following" json:"following"`
	CreatedAt time.Time          `bson:"createdAt" json:"created_at"`
}
