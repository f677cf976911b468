package database

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// CreateUser inserts a new user and fills in its ID and timestamps.
// A phone collision returns ErrDuplicatePhone.
func (db *DB) CreateUser(ctx context.Context, user *User) error {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	res, err := db.users.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicatePhone
		}
		log.Error("failed to create user", "error", err)
		return err
	}

	id, ok := res.InsertedID.(bson.ObjectID)
	if !ok {
		return errors.New("unexpected inserted id type")
	}
	user.ID = id
	return nil
}

// GetUserByID fetches a user by its object id.
func (db *DB) GetUserByID(ctx context.Context, id bson.ObjectID) (*User, error) {
	var user User
	if err := db.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		log.Error("failed to get user by id", "error", err)
		return nil, err
	}
	return &user, nil
}

// GetUserByPhone fetches a user by phone number.
func (db *DB) GetUserByPhone(ctx context.Context, phone string) (*User, error) {
	var user User
	if err := db.users.FindOne(ctx, bson.M{"phone": phone}).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		log.Error("failed to get user by phone", "error", err)
		return nil, err
	}
	return &user, nil
}

// UpdateUser applies the non-nil fields of update to the user record.
// Updating the phone into an existing value returns ErrDuplicatePhone.
func (db *DB) UpdateUser(ctx context.Context, id bson.ObjectID, update UserUpdate) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Email != nil {
		set["email"] = *update.Email
	}
	if update.Phone != nil {
		set["phone"] = *update.Phone
	}
	if update.PasswordHash != nil {
		set["password"] = *update.PasswordHash
	}
	if update.Avatar != nil {
		set["avatar"] = update.Avatar
	}

	res, err := db.users.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicatePhone
		}
		log.Error("failed to update user", "error", err)
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteUser removes a user record permanently.
func (db *DB) DeleteUser(ctx context.Context, id bson.ObjectID) error {
	res, err := db.users.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		log.Error("failed to delete user", "error", err)
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListUsers returns all users ordered by creation time.
func (db *DB) ListUsers(ctx context.Context) ([]User, error) {
	cursor, err := db.users.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		log.Error("failed to list users", "error", err)
		return nil, err
	}
	var users []User
	if err := cursor.All(ctx, &users); err != nil {
		log.Error("failed to decode users", "error", err)
		return nil, err
	}
	return users, nil
}
