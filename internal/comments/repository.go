package comments

import (
	"context"
	"time"

	"github.com/xmoure/blog-api-server/internal/database"
	"github.com/xmoure/blog-api-server/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Repository defines persistence operations for comments.
type Repository interface {
	Create(ctx context.Context, c *models.Comment) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error)
	ListByPost(ctx context.Context, post primitive.ObjectID) ([]*models.Comment, error)
	DeleteByID(ctx context.Context, id primitive.ObjectID) (models.Outcome, error)
	DeleteByOwner(ctx context.Context, owner primitive.ObjectID) (int64, error)
}

type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Create(ctx context.Context, c *models.Comment) error {
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	res, err := r.col.InsertOne(ctx, c)
	if err != nil {
		return database.WriteError("insert comment", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		c.ID = oid
	}
	return nil
}

func (r *MongoRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	var c models.Comment
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		if database.IsNoDocuments(err) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *MongoRepository) ListByPost(ctx context.Context, post primitive.ObjectID) ([]*models.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"post": post}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*models.Comment{}
	for cur.Next(ctx) {
		var c models.Comment
		if err := cur.Decode(&c); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	return out, cur.Err()
}

func (r *MongoRepository) DeleteByID(ctx context.Context, id primitive.ObjectID) (models.Outcome, error) {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return models.NotFound, database.WriteError("delete comment", err)
	}
	if res.DeletedCount == 0 {
		return models.NotFound, nil
	}
	return models.Deleted, nil
}

func (r *MongoRepository) DeleteByOwner(ctx context.Context, owner primitive.ObjectID) (int64, error) {
	res, err := r.col.DeleteMany(ctx, bson.M{"user": owner})
	if err != nil {
		return 0, database.WriteError("delete comments by owner", err)
	}
	return res.DeletedCount, nil
}
