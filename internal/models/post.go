package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const DefaultDescription = "general"

type Post struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	User        primitive.ObjectID `bson:"user" json:"user"`
	Img         string             `bson:"img,omitempty" json:"img,omitempty"`
	Title       string             `bson:"title" json:"title"`
	Slug        string             `bson:"slug" json:"slug"` // unique, never changes after insert
	Description string             `bson:"description" json:"description"`
	Category    string             `bson:"category,omitempty" json:"category,omitempty"`
	Content     string             `bson:"content" json:"content"`
	IsFeatured  bool               `bson:"isFeatured" json:"isFeatured"`
	Visit       int64              `bson:"visit" json:"visit"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// PostView is a post with its author populated.
type PostView struct {
	*Post
	Author *Author `json:"author,omitempty"`
}
