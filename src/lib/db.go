package lib

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/theleywin/SkillShare/src/logging"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var DB *mongo.Database

var client *mongo.Client

// ConnectDB opens the MongoDB connection and sets the global DB variable
func ConnectDB(uri, database string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	c, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return errors.Wrap(err, "connect to mongo")
	}
	if err := c.Ping(ctx, nil); err != nil {
		return errors.Wrap(err, "ping mongo")
	}

	client = c
	DB = c.Database(database)
	logging.For("db").WithField("database", database).Info("Connected to MongoDB")
	return nil
}

// DisconnectDB closes the connection opened by ConnectDB
func DisconnectDB(ctx context.Context) error {
	if client == nil {
		return nil
	}
	return client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes the handlers rely on
func EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		"users": {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "provider", Value: 1}, {Key: "providerId", Value: 1}}},
		},
		"posts":            {{Keys: bson.D{{Key: "author", Value: 1}, {Key: "createdAt", Value: -1}}}},
		"comments":         {{Keys: bson.D{{Key: "post", Value: 1}, {Key: "createdAt", Value: 1}}}},
		"shared_posts":     {{Keys: bson.D{{Key: "sharer", Value: 1}, {Key: "sharedAt", Value: -1}}}},
		"learning_plans":   {{Keys: bson.D{{Key: "owner", Value: 1}}}, {Keys: bson.D{{Key: "tasks._id", Value: 1}}}},
		"progress_updates": {{Keys: bson.D{{Key: "createdAt", Value: -1}}}},
		"notifications":    {{Keys: bson.D{{Key: "recipient", Value: 1}, {Key: "createdAt", Value: -1}}}},
	}

	for collection, models := range indexes {
		if _, err := DB.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return errors.Wrapf(err, "create indexes on %s", collection)
		}
	}
	return nil
}
