package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"`
	Username     string             `bson:"username" json:"username"`
	PasswordHash string             `bson:"passwordHash" json:"-"`
	Name         string             `bson:"name" json:"name"`
	Bio          string             `bson:"bio,omitempty" json:"bio,omitempty"`
	Avatar       *Image             `bson:"avatar,omitempty" json:"avatar,omitempty"`
	IsVerified   bool               `bson:"isVerified" json:"is_verified"`
	IsAdmin      bool               `bson:"isAdmin" json:"is_admin"`
	IsBanned     bool               `bson:"isBanned" json:"is_banned"`
	LastLogin    *time.Time         `bson:"lastLogin,omitempty" json:"last_login,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updated_at"`
}

// PublicUser is the user shape attached to cocktails, comments and
// follow listings. Both listing paths must produce exactly this shape.
type PublicUser struct {
	ID         primitive.ObjectID `bson:"_id" json:"id"`
	Name       string             `bson:"name" json:"name"`
	Username   string             `bson:"username" json:"username"`
	Avatar     *Image             `bson:"avatar,omitempty" json:"avatar,omitempty"`
	IsVerified bool               `bson:"isVerified" json:"is_verified"`
}

// Public strips the user down to its publicly visible fields.
func (u *User) Public() *PublicUser {
	return &PublicUser{
		ID:         u.ID,
		Name:       u.Name,
		Username:   u.Username,
		Avatar:     u.Avatar,
		IsVerified: u.IsVerified,
	}
}
