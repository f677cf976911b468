package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/rollcall-app/rollcall/config"
)

const usersCollection = "users"

// DB wraps the MongoDB client and the collections used by Rollcall.
type DB struct {
	client *mongo.Client
	users  *mongo.Collection
}

// New connects to MongoDB and ensures the indexes Rollcall relies on.
func New(ctx context.Context, cfg *config.DatabaseConfig) (*DB, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(cfg.URL))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{
		client: client,
		users:  client.Database(cfg.Name).Collection(usersCollection),
	}

	if err := db.ensureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}

	return db, nil
}

// ensureIndexes creates the unique phone index. Phone uniqueness is enforced
// here, not in application code.
func (db *DB) ensureIndexes(ctx context.Context) error {
	_, err := db.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "phone", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// Close disconnects the underlying MongoDB client.
func (db *DB) Close(ctx context.Context) error {
	return db.client.Disconnect(ctx)
}
