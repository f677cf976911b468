package database

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
)

var (
	// ErrNotFound is returned when no user matches the given id or phone.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicatePhone is returned when a create or update would violate the
	// unique phone index.
	ErrDuplicatePhone = errors.New("phone number already registered")
)

// Store defines the user store operations used by the handlers.
type Store interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByID(ctx context.Context, id bson.ObjectID) (*User, error)
	GetUserByPhone(ctx context.Context, phone string) (*User, error)
	UpdateUser(ctx context.Context, id bson.ObjectID, update UserUpdate) error
	DeleteUser(ctx context.Context, id bson.ObjectID) error
	ListUsers(ctx context.Context) ([]User, error)
}
