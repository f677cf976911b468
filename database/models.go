package database

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// User represents a registered account.
// The password is only ever stored as a bcrypt hash.
type User struct {
	ID           bson.ObjectID `bson:"_id,omitempty"`
	Name         string        `bson:"name"`
	Email        string        `bson:"email,omitempty"`
	Phone        string        `bson:"phone"`
	PasswordHash string        `bson:"password"`
	IsAdmin      bool          `bson:"is_admin"`
	Avatar       *Avatar       `bson:"avatar,omitempty"`
	CreatedAt    time.Time     `bson:"created_at"`
	UpdatedAt    time.Time     `bson:"updated_at"`
}

// Avatar references an uploaded profile image.
type Avatar struct {
	URL      string `bson:"url"`
	Filename string `bson:"filename"`
}

// UserUpdate describes a partial update of a user record. Nil fields are left
// untouched. IsAdmin is deliberately absent: the public surface never allows
// changing it, so the store doesn't either.
type UserUpdate struct {
	Name         *string
	Email        *string
	Phone        *string
	PasswordHash *string
	Avatar       *Avatar
}
