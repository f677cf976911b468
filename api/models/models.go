package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Identity is the session-resolved reference to the authenticated user. It is
// rebuilt from the store on every request, never cached across requests.
type Identity struct {
	ID      bson.ObjectID
	Name    string
	IsAdmin bool
}

// UserView is the template-facing representation of a user record.
type UserView struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	IsAdmin   bool
	AvatarURL string
	HasAvatar bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
