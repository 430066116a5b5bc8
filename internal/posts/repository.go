package posts

import (
	"context"
	"regexp"
	"time"

	"github.com/xmoure/blog-api-server/internal/database"
	"github.com/xmoure/blog-api-server/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Sort orders accepted by List.
const (
	SortNewest   = "newest"
	SortOldest   = "oldest"
	SortPopular  = "popular"
	SortTrending = "trending"
)

// TrendingWindow limits the trending sort to recent posts.
const TrendingWindow = 7 * 24 * time.Hour

// Query selects a page of posts.
type Query struct {
	Category string
	Author   *primitive.ObjectID
	Search   string
	Featured bool
	Sort     string
	Page     int
	Limit    int
	// Now anchors the trending window; zero means time.Now().
	Now time.Time
}

// Edit carries the owner-editable fields; nil fields are left unchanged.
type Edit struct {
	Title       *string
	Description *string
	Category    *string
	Content     *string
	Img         *string
}

// Repository defines persistence operations for posts.
// Lookups return (nil, nil) when nothing matches.
type Repository interface {
	Create(ctx context.Context, p *models.Post) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	GetBySlug(ctx context.Context, slug string) (*models.Post, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	List(ctx context.Context, q Query) ([]*models.Post, int64, error)
	Update(ctx context.Context, id primitive.ObjectID, e Edit) (*models.Post, error)
	ToggleFeatured(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	IncrementVisit(ctx context.Context, slug string) error
	DeleteByID(ctx context.Context, id primitive.ObjectID) (models.Outcome, error)
	DeleteByOwner(ctx context.Context, owner primitive.ObjectID) (int64, error)
}

// MongoRepository implements Repository using MongoDB.
// The unique index on "slug" is created by database.EnsureIndexes.
type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Create(ctx context.Context, p *models.Post) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	res, err := r.col.InsertOne(ctx, p)
	if err != nil {
		return database.WriteError("insert post", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		p.ID = oid
	}
	return nil
}

func (r *MongoRepository) findOne(ctx context.Context, filter bson.M) (*models.Post, error) {
	var p models.Post
	if err := r.col.FindOne(ctx, filter).Decode(&p); err != nil {
		if database.IsNoDocuments(err) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *MongoRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoRepository) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	return r.findOne(ctx, bson.M{"slug": slug})
}

func (r *MongoRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{"slug": slug}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func filterFor(q Query) bson.M {
	filter := bson.M{}
	if q.Category != "" {
		filter["category"] = q.Category
	}
	if q.Author != nil {
		filter["user"] = *q.Author
	}
	if q.Search != "" {
		filter["title"] = bson.M{"$regex": regexp.QuoteMeta(q.Search), "$options": "i"}
	}
	if q.Featured {
		filter["isFeatured"] = true
	}
	if q.Sort == SortTrending {
		now := q.Now
		if now.IsZero() {
			now = time.Now()
		}
		filter["createdAt"] = bson.M{"$gte": now.Add(-TrendingWindow)}
	}
	return filter
}

func sortFor(s string) bson.D {
	switch s {
	case SortOldest:
		return bson.D{{Key: "createdAt", Value: 1}}
	case SortPopular, SortTrending:
		return bson.D{{Key: "visit", Value: -1}}
	}
	return bson.D{{Key: "createdAt", Value: -1}}
}

func (r *MongoRepository) List(ctx context.Context, q Query) ([]*models.Post, int64, error) {
	filter := filterFor(q)
	opts := options.Find().
		SetSort(sortFor(q.Sort)).
		SetSkip(int64((q.Page - 1) * q.Limit)).
		SetLimit(int64(q.Limit))
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)
	out := []*models.Post{}
	for cur.Next(ctx) {
		var p models.Post
		if err := cur.Decode(&p); err != nil {
			return nil, 0, err
		}
		out = append(out, &p)
	}
	if err := cur.Err(); err != nil {
		return nil, 0, err
	}
	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *MongoRepository) Update(ctx context.Context, id primitive.ObjectID, e Edit) (*models.Post, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if e.Title != nil {
		set["title"] = *e.Title
	}
	if e.Description != nil {
		set["description"] = *e.Description
	}
	if e.Category != nil {
		set["category"] = *e.Category
	}
	if e.Content != nil {
		set["content"] = *e.Content
	}
	if e.Img != nil {
		set["img"] = *e.Img
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var p models.Post
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&p); err != nil {
		if database.IsNoDocuments(err) {
			return nil, nil
		}
		return nil, database.WriteError("update post", err)
	}
	return &p, nil
}

// ToggleFeatured flips isFeatured in a single pipeline update so concurrent toggles
// never read a stale value.
func (r *MongoRepository) ToggleFeatured(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "isFeatured", Value: bson.D{{Key: "$not", Value: bson.A{"$isFeatured"}}}},
			{Key: "updatedAt", Value: "$$NOW"},
		}}},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var p models.Post
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, pipeline, opts).Decode(&p); err != nil {
		if database.IsNoDocuments(err) {
			return nil, nil
		}
		return nil, database.WriteError("feature post", err)
	}
	return &p, nil
}

func (r *MongoRepository) IncrementVisit(ctx context.Context, slug string) error {
	_, err := r.col.UpdateOne(ctx, bson.M{"slug": slug}, bson.M{"$inc": bson.M{"visit": 1}})
	return database.WriteError("increment visit", err)
}

func (r *MongoRepository) DeleteByID(ctx context.Context, id primitive.ObjectID) (models.Outcome, error) {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return models.NotFound, database.WriteError("delete post", err)
	}
	if res.DeletedCount == 0 {
		return models.NotFound, nil
	}
	return models.Deleted, nil
}

func (r *MongoRepository) DeleteByOwner(ctx context.Context, owner primitive.ObjectID) (int64, error) {
	res, err := r.col.DeleteMany(ctx, bson.M{"user": owner})
	if err != nil {
		return 0, database.WriteError("delete posts by owner", err)
	}
	return res.DeletedCount, nil
}
