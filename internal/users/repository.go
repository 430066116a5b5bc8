package users

import (
	"context"
	"time"

	"github.com/xmoure/blog-api-server/internal/database"
	"github.com/xmoure/blog-api-server/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Repository defines persistence operations for users.
// Lookups return (nil, nil) when nothing matches.
type Repository interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByExternalID(ctx context.Context, externalID string) (*models.User, error)
	GetByUserName(ctx context.Context, userName string) (*models.User, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.User, error)
	UpdateProfile(ctx context.Context, u *models.User) (models.Outcome, error)
	DeleteByID(ctx context.Context, id primitive.ObjectID) (models.Outcome, error)
	AddSavedPost(ctx context.Context, id primitive.ObjectID, postID string) error
	RemoveSavedPost(ctx context.Context, id primitive.ObjectID, postID string) error
}

// MongoRepository implements Repository using MongoDB
type MongoRepository struct {
	col *mongo.Collection
}

// NewMongoRepository creates a new repository for the given collection
func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Create(ctx context.Context, u *models.User) error {
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	if u.SavedPosts == nil {
		u.SavedPosts = []string{}
	}
	res, err := r.col.InsertOne(ctx, u)
	if err != nil {
		return database.WriteError("insert user", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		u.ID = oid
	}
	return nil
}

func (r *MongoRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	if err := r.col.FindOne(ctx, filter).Decode(&u); err != nil {
		if database.IsNoDocuments(err) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *MongoRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoRepository) GetByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"externalId": externalID})
}

func (r *MongoRepository) GetByUserName(ctx context.Context, userName string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"userName": userName})
}

func (r *MongoRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*models.User{}
	for cur.Next(ctx) {
		var u models.User
		if err := cur.Decode(&u); err != nil {
			return nil, err
		}
		out = append(out, &u)
	}
	return out, cur.Err()
}

func (r *MongoRepository) UpdateProfile(ctx context.Context, u *models.User) (models.Outcome, error) {
	u.UpdatedAt = time.Now().UTC()
	set := bson.M{
		"userName":  u.UserName,
		"email":     u.Email,
		"img":       u.Img,
		"updatedAt": u.UpdatedAt,
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": u.ID}, bson.M{"$set": set})
	if err != nil {
		return models.NotFound, database.WriteError("update user", err)
	}
	if res.MatchedCount == 0 {
		return models.NotFound, nil
	}
	return models.Updated, nil
}

func (r *MongoRepository) DeleteByID(ctx context.Context, id primitive.ObjectID) (models.Outcome, error) {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return models.NotFound, database.WriteError("delete user", err)
	}
	if res.DeletedCount == 0 {
		return models.NotFound, nil
	}
	return models.Deleted, nil
}

func (r *MongoRepository) AddSavedPost(ctx context.Context, id primitive.ObjectID, postID string) error {
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$addToSet": bson.M{"savedPosts": postID}})
	return database.WriteError("save post", err)
}

func (r *MongoRepository) RemoveSavedPost(ctx context.Context, id primitive.ObjectID, postID string) error {
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$pull": bson.M{"savedPosts": postID}})
	return database.WriteError("unsave post", err)
}
