package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// IndexSpec returns the indexes every collection needs. The unique indexes are the
// storage-level backstop for slug races and webhook redelivery.
func IndexSpec() map[string][]mongo.IndexModel {
	unique := func(field string) mongo.IndexModel {
		return mongo.IndexModel{
			Keys:    bson.D{{Key: field, Value: 1}},
			Options: options.Index().SetUnique(true).SetName(field + "_unique"),
		}
	}
	// empty values are left out so accounts without a name or email can coexist
	uniqueNonEmpty := func(field string) mongo.IndexModel {
		opts := options.Index().SetUnique(true).SetName(field + "_unique_nonempty").
			SetPartialFilterExpression(bson.M{field: bson.M{"$gt": ""}})
		return mongo.IndexModel{Keys: bson.D{{Key: field, Value: 1}}, Options: opts}
	}
	byField := func(field string) mongo.IndexModel {
		return mongo.IndexModel{Keys: bson.D{{Key: field, Value: 1}}}
	}
	return map[string][]mongo.IndexModel{
		UsersCollection: {
			unique("externalId"),
			uniqueNonEmpty("userName"),
			uniqueNonEmpty("email"),
		},
		PostsCollection: {
			unique("slug"),
			byField("user"),
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		},
		CommentsCollection: {
			byField("user"),
			{Keys: bson.D{{Key: "post", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
	}
}

// EnsureIndexes creates the indexes returned by IndexSpec (idempotent).
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for col, models := range IndexSpec() {
		if _, err := db.Collection(col).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("ensure indexes on %s: %w", col, err)
		}
	}
	return nil
}
